package repositories

import (
	"context"
	"errors"
	"time"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DiagramRepository struct {
	pool *pgxpool.Pool
}

func NewDiagramRepository(pool *pgxpool.Pool) *DiagramRepository {
	return &DiagramRepository{pool: pool}
}

const diagramColumns = `id, name, owner_type, owner_id, is_public, mode,
		viewport_x, viewport_y, viewport_zoom, created_at, updated_at`

func scanDiagram(row pgx.Row) (*models.Diagram, error) {
	var d models.Diagram
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.OwnerType,
		&d.OwnerID,
		&d.IsPublic,
		&d.Mode,
		&d.Viewport.X,
		&d.Viewport.Y,
		&d.Viewport.Zoom,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DiagramRepository) Create(ctx context.Context, d *models.Diagram) error {
	d.Prepare()

	query := `
		INSERT INTO diagrams (id, name, owner_type, owner_id, is_public, mode,
			viewport_x, viewport_y, viewport_zoom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`

	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.Name,
		d.OwnerType,
		d.OwnerID,
		d.IsPublic,
		d.Mode,
		d.Viewport.X,
		d.Viewport.Y,
		d.Viewport.Zoom,
		now,
	)
	return err
}

func (r *DiagramRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Diagram, error) {
	query := `SELECT ` + diagramColumns + ` FROM diagrams WHERE id = $1`
	return scanDiagram(r.pool.QueryRow(ctx, query, id))
}

func (r *DiagramRepository) ListByOwner(ctx context.Context, ownerType models.OwnerType, ownerID uuid.UUID) ([]models.Diagram, error) {
	query := `SELECT ` + diagramColumns + `
		FROM diagrams WHERE owner_type = $1 AND owner_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagrams []models.Diagram
	for rows.Next() {
		var d models.Diagram
		err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.OwnerType,
			&d.OwnerID,
			&d.IsPublic,
			&d.Mode,
			&d.Viewport.X,
			&d.Viewport.Y,
			&d.Viewport.Zoom,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}

	return diagrams, rows.Err()
}

func (r *DiagramRepository) Update(ctx context.Context, d *models.Diagram) error {
	query := `
		UPDATE diagrams SET
			name = $2, is_public = $3, mode = $4,
			viewport_x = $5, viewport_y = $6, viewport_zoom = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.Name,
		d.IsPublic,
		d.Mode,
		d.Viewport.X,
		d.Viewport.Y,
		d.Viewport.Zoom,
	)
	return err
}

// Delete removes the diagram; tables, columns, relationships, nodes,
// share links and grants go with it via ON DELETE CASCADE.
func (r *DiagramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errors.New("diagram not found")
	}
	return nil
}

func (r *DiagramRepository) Touch(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE diagrams SET updated_at = NOW() WHERE id = $1`, id)
	return err
}
