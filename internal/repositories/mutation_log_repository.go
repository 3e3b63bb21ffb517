package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MutationLogEntry is one applied canvas mutation, recorded for audit
// and debugging. The payload is the raw mutation event as received.
type MutationLogEntry struct {
	ID        uuid.UUID       `json:"id"`
	DiagramID uuid.UUID       `json:"diagram_id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Op        string          `json:"op"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type MutationLogRepository struct {
	pool *pgxpool.Pool
}

func NewMutationLogRepository(pool *pgxpool.Pool) *MutationLogRepository {
	return &MutationLogRepository{pool: pool}
}

func (r *MutationLogRepository) Record(ctx context.Context, e *MutationLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage(`{}`)
	}
	query := `
		INSERT INTO mutation_log (id, diagram_id, user_id, op, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, e.ID, e.DiagramID, e.UserID, e.Op, e.Payload, time.Now())
	return err
}

func (r *MutationLogRepository) ListByDiagram(ctx context.Context, diagramID uuid.UUID, limit int) ([]MutationLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, diagram_id, user_id, op, payload, created_at
		FROM mutation_log WHERE diagram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, diagramID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MutationLogEntry
	for rows.Next() {
		var e MutationLogEntry
		if err := rows.Scan(&e.ID, &e.DiagramID, &e.UserID, &e.Op, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
