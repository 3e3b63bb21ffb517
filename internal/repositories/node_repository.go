package repositories

import (
	"context"
	"fmt"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NodeRepository stores the free-form nodes and edges of flow and mind
// diagrams. Database-mode diagrams derive their graph instead and never
// touch these tables.
type NodeRepository struct {
	pool *pgxpool.Pool
}

func NewNodeRepository(pool *pgxpool.Pool) *NodeRepository {
	return &NodeRepository{pool: pool}
}

// ListNodes returns the stored (raw, un-defaulted) node records in
// insertion order. Callers normalize them through the graph package.
func (r *NodeRepository) ListNodes(ctx context.Context, diagramID uuid.UUID) ([]models.RawNode, error) {
	query := `
		SELECT id, kind, x, y, width, height, data
		FROM diagram_nodes WHERE diagram_id = $1
		ORDER BY position, id
	`
	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []models.RawNode
	for rows.Next() {
		var n models.RawNode
		var w, h *float64
		if err := rows.Scan(&n.ID, &n.Kind, &n.Position.X, &n.Position.Y, &w, &h, &n.Data); err != nil {
			return nil, err
		}
		if w != nil && h != nil {
			n.Size = &models.Size{Width: *w, Height: *h}
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *NodeRepository) ListEdges(ctx context.Context, diagramID uuid.UUID) ([]models.DiagramEdge, error) {
	query := `
		SELECT id, source, target,
			COALESCE(source_handle, ''), COALESCE(target_handle, ''),
			COALESCE(label, ''), COALESCE(style, '')
		FROM diagram_edges WHERE diagram_id = $1
		ORDER BY position, id
	`
	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []models.DiagramEdge
	for rows.Next() {
		var e models.DiagramEdge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle, &e.TargetHandle, &e.Label, &e.Style); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// ReplaceAll swaps the diagram's canvas content for the given nodes and
// edges in one transaction. Saves are last-write-wins; a rebuild from
// the latest snapshot always supersedes a slower one.
func (r *NodeRepository) ReplaceAll(ctx context.Context, diagramID uuid.UUID, nodes []models.DiagramNode, edges []models.DiagramEdge) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM diagram_edges WHERE diagram_id = $1`, diagramID); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM diagram_nodes WHERE diagram_id = $1`, diagramID); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	for i, n := range nodes {
		var w, h *float64
		if n.Size != nil {
			w, h = &n.Size.Width, &n.Size.Height
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO diagram_nodes (id, diagram_id, kind, x, y, width, height, data, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			n.ID, diagramID, n.Kind, n.Position.X, n.Position.Y, w, h, n.Data, i)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range edges {
		_, err := tx.Exec(ctx,
			`INSERT INTO diagram_edges (id, diagram_id, source, target, source_handle, target_handle, label, style, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, diagramID, e.Source, e.Target, nullable(e.SourceHandle), nullable(e.TargetHandle), nullable(e.Label), nullable(e.Style), i)
		if err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
