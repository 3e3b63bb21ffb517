package repositories

import (
	"context"
	"fmt"

	"backend/internal/graph"
	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaRepository loads and mutates the relational schema of a
// database-mode diagram: its tables, columns and relationships.
type SchemaRepository struct {
	pool *pgxpool.Pool
}

func NewSchemaRepository(pool *pgxpool.Pool) *SchemaRepository {
	return &SchemaRepository{pool: pool}
}

// Snapshot returns the diagram's tables (columns populated, ordered by
// stored position) and relationships, as one consistent read.
func (r *SchemaRepository) Snapshot(ctx context.Context, diagramID uuid.UUID) ([]models.Table, []models.Relationship, error) {
	tables, err := r.listTables(ctx, diagramID)
	if err != nil {
		return nil, nil, err
	}
	rels, err := r.listRelationships(ctx, diagramID)
	if err != nil {
		return nil, nil, err
	}
	return tables, rels, nil
}

func (r *SchemaRepository) listTables(ctx context.Context, diagramID uuid.UUID) ([]models.Table, error) {
	query := `
		SELECT id, diagram_id, name, x, y, width
		FROM diagram_tables WHERE diagram_id = $1
		ORDER BY position, name
	`
	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.Table
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.DiagramID, &t.Name, &t.X, &t.Y, &t.Width); err != nil {
			return nil, err
		}
		t.Columns = []models.Column{}
		index[t.ID] = len(tables)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	colQuery := `
		SELECT c.id, c.table_id, c.name, c.data_type, c.nullable, c.is_primary, c.is_unique, c.default_value
		FROM table_columns c
		JOIN diagram_tables t ON t.id = c.table_id
		WHERE t.diagram_id = $1
		ORDER BY c.position, c.id
	`
	colRows, err := r.pool.Query(ctx, colQuery, diagramID)
	if err != nil {
		return nil, err
	}
	defer colRows.Close()

	for colRows.Next() {
		var c models.Column
		if err := colRows.Scan(&c.ID, &c.TableID, &c.Name, &c.Type, &c.Nullable, &c.Primary, &c.Unique, &c.Default); err != nil {
			return nil, err
		}
		if i, ok := index[c.TableID]; ok {
			tables[i].Columns = append(tables[i].Columns, c)
		}
	}
	return tables, colRows.Err()
}

func (r *SchemaRepository) listRelationships(ctx context.Context, diagramID uuid.UUID) ([]models.Relationship, error) {
	query := `
		SELECT id, diagram_id, from_column_id, to_column_id, rel_type
		FROM relationships WHERE diagram_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []models.Relationship
	for rows.Next() {
		var rel models.Relationship
		if err := rows.Scan(&rel.ID, &rel.DiagramID, &rel.FromColumnID, &rel.ToColumnID, &rel.Type); err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// ApplyDelta persists one schema delta in a single transaction.
// Deletions run last so cascades from the delta win over row-level FK
// cascades and the log reflects what the core decided.
func (r *SchemaRepository) ApplyDelta(ctx context.Context, diagramID uuid.UUID, d *graph.Delta) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, mv := range d.MovedTables {
		_, err := tx.Exec(ctx,
			`UPDATE diagram_tables SET x = $2, y = $3 WHERE id = $1 AND diagram_id = $4`,
			mv.TableID, mv.X, mv.Y, diagramID)
		if err != nil {
			return fmt.Errorf("failed to move table: %w", err)
		}
	}

	for _, rn := range d.RenamedTables {
		_, err := tx.Exec(ctx,
			`UPDATE diagram_tables SET name = $2 WHERE id = $1 AND diagram_id = $3`,
			rn.TableID, rn.Name, diagramID)
		if err != nil {
			return fmt.Errorf("failed to rename table: %w", err)
		}
	}

	// Additions append: position is the next slot after whatever the
	// diagram/table already holds, so snapshot ordering stays stable.
	for _, t := range d.AddedTables {
		_, err := tx.Exec(ctx,
			`INSERT INTO diagram_tables (id, diagram_id, name, x, y, width, position)
			 VALUES ($1, $2, $3, $4, $5, $6,
			   (SELECT COALESCE(MAX(position) + 1, 0) FROM diagram_tables WHERE diagram_id = $2))`,
			t.ID, diagramID, t.Name, t.X, t.Y, t.Width)
		if err != nil {
			return fmt.Errorf("failed to add table: %w", err)
		}
	}

	for _, c := range d.AddedColumns {
		_, err := tx.Exec(ctx,
			`INSERT INTO table_columns (table_id, name, data_type, nullable, is_primary, is_unique, default_value, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7,
			   (SELECT COALESCE(MAX(position) + 1, 0) FROM table_columns WHERE table_id = $1))`,
			c.TableID, c.Name, c.Type, c.Nullable, c.Primary, c.Unique, c.Default)
		if err != nil {
			return fmt.Errorf("failed to add column: %w", err)
		}
	}

	for _, rel := range d.AddedRelationships {
		_, err := tx.Exec(ctx,
			`INSERT INTO relationships (id, diagram_id, from_column_id, to_column_id, rel_type)
			 VALUES ($1, $2, $3, $4, $5)`,
			rel.ID, diagramID, rel.FromColumnID, rel.ToColumnID, rel.Type)
		if err != nil {
			return fmt.Errorf("failed to add relationship: %w", err)
		}
	}

	for _, relID := range d.DeletedRelationshipIDs {
		if _, err := tx.Exec(ctx,
			`DELETE FROM relationships WHERE id = $1 AND diagram_id = $2`, relID, diagramID); err != nil {
			return fmt.Errorf("failed to delete relationship: %w", err)
		}
	}

	for _, colID := range d.DeletedColumnIDs {
		if _, err := tx.Exec(ctx, `DELETE FROM table_columns WHERE id = $1`, colID); err != nil {
			return fmt.Errorf("failed to delete column: %w", err)
		}
	}

	for _, tableID := range d.DeletedTableIDs {
		if _, err := tx.Exec(ctx,
			`DELETE FROM diagram_tables WHERE id = $1 AND diagram_id = $2`, tableID, diagramID); err != nil {
			return fmt.Errorf("failed to delete table: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ReplaceSchema swaps the diagram's whole schema for an imported one.
// Imported column ids are synthetic parser ids; rows are inserted with
// real bigserial ids and relationships remapped through the returned
// mapping, all in one transaction.
func (r *SchemaRepository) ReplaceSchema(ctx context.Context, diagramID uuid.UUID, tables []models.Table, rels []models.Relationship) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM relationships WHERE diagram_id = $1`, diagramID); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM diagram_tables WHERE diagram_id = $1`, diagramID); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}

	idMap := make(map[int64]int64)
	for ti := range tables {
		t := &tables[ti]
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO diagram_tables (id, diagram_id, name, x, y, width, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, diagramID, t.Name, t.X, t.Y, t.Width, ti)
		if err != nil {
			return fmt.Errorf("failed to insert table %q: %w", t.Name, err)
		}

		for ci, c := range t.Columns {
			var realID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO table_columns (table_id, name, data_type, nullable, is_primary, is_unique, default_value, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 RETURNING id`,
				t.ID, c.Name, c.Type, c.Nullable, c.Primary, c.Unique, c.Default, ci,
			).Scan(&realID)
			if err != nil {
				return fmt.Errorf("failed to insert column %q.%q: %w", t.Name, c.Name, err)
			}
			idMap[c.ID] = realID
		}
	}

	for _, rel := range rels {
		from, okFrom := idMap[rel.FromColumnID]
		to, okTo := idMap[rel.ToColumnID]
		if !okFrom || !okTo {
			// Validated upstream; a miss here means the caller skipped
			// validation, so refuse rather than persist a dangle.
			return fmt.Errorf("relationship %s references an unknown column", rel.ID)
		}
		if rel.ID == uuid.Nil {
			rel.ID = uuid.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO relationships (id, diagram_id, from_column_id, to_column_id, rel_type)
			 VALUES ($1, $2, $3, $4, $5)`,
			rel.ID, diagramID, from, to, rel.Type)
		if err != nil {
			return fmt.Errorf("failed to insert relationship: %w", err)
		}
	}

	return tx.Commit(ctx)
}
