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

// ShareRepository stores share links and access grants.
type ShareRepository struct {
	pool *pgxpool.Pool
}

func NewShareRepository(pool *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{pool: pool}
}

const linkColumns = `id, diagram_id, name, token, role, created_at, expires_at, revoked_at`

func scanLink(row pgx.Row) (*models.ShareLink, error) {
	var l models.ShareLink
	err := row.Scan(&l.ID, &l.DiagramID, &l.Name, &l.Token, &l.Role, &l.CreatedAt, &l.ExpiresAt, &l.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *ShareRepository) CreateLink(ctx context.Context, l *models.ShareLink) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	query := `
		INSERT INTO share_links (id, diagram_id, name, token, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		l.ID, l.DiagramID, l.Name, l.Token, l.Role, time.Now(), l.ExpiresAt)
	return err
}

func (r *ShareRepository) GetLinkByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	query := `SELECT ` + linkColumns + ` FROM share_links WHERE token = $1`
	return scanLink(r.pool.QueryRow(ctx, query, token))
}

func (r *ShareRepository) GetLinkByID(ctx context.Context, id uuid.UUID) (*models.ShareLink, error) {
	query := `SELECT ` + linkColumns + ` FROM share_links WHERE id = $1`
	return scanLink(r.pool.QueryRow(ctx, query, id))
}

func (r *ShareRepository) ListLinks(ctx context.Context, diagramID uuid.UUID) ([]models.ShareLink, error) {
	query := `SELECT ` + linkColumns + ` FROM share_links WHERE diagram_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.ShareLink
	for rows.Next() {
		var l models.ShareLink
		if err := rows.Scan(&l.ID, &l.DiagramID, &l.Name, &l.Token, &l.Role, &l.CreatedAt, &l.ExpiresAt, &l.RevokedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// RevokeLink marks a link revoked. Revocation is permanent; links never
// reactivate.
func (r *ShareRepository) RevokeLink(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE share_links SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errors.New("share link not found or already revoked")
	}
	return nil
}

func (r *ShareRepository) UpsertGrant(ctx context.Context, g *models.AccessGrant) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	query := `
		INSERT INTO access_grants (id, diagram_id, subject_type, subject_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (diagram_id, subject_type, subject_id)
		DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.pool.Exec(ctx, query,
		g.ID, g.DiagramID, g.SubjectType, g.SubjectID, g.Role, time.Now())
	return err
}

func (r *ShareRepository) ListGrants(ctx context.Context, diagramID uuid.UUID) ([]models.AccessGrant, error) {
	query := `
		SELECT id, diagram_id, subject_type, subject_id, role, created_at
		FROM access_grants WHERE diagram_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.AccessGrant
	for rows.Next() {
		var g models.AccessGrant
		if err := rows.Scan(&g.ID, &g.DiagramID, &g.SubjectType, &g.SubjectID, &g.Role, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *ShareRepository) DeleteGrant(ctx context.Context, diagramID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM access_grants WHERE id = $1 AND diagram_id = $2`, id, diagramID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errors.New("grant not found")
	}
	return nil
}
