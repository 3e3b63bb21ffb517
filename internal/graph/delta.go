package graph

import (
	"errors"
	"fmt"

	"backend/internal/models"

	"github.com/google/uuid"
)

// ErrUnresolvedReference reports a mutation aimed at a table, column or
// relationship that is not part of the schema snapshot. Rendering
// recovers from unresolved references silently; mutations surface them.
var ErrUnresolvedReference = errors.New("unresolved reference")

// Mutation operations accepted from the canvas.
const (
	OpMoveNode           = "move-node"
	OpRenameTable        = "rename-table"
	OpAddTable           = "add-table"
	OpDeleteTable        = "delete-table"
	OpAddColumn          = "add-column"
	OpDeleteColumn       = "delete-column"
	OpAddRelationship    = "add-relationship"
	OpDeleteRelationship = "delete-relationship"
)

// Mutation is one canvas edit event. Only the fields relevant to Op are
// read.
type Mutation struct {
	Op             string               `json:"op"`
	TableID        uuid.UUID            `json:"table_id,omitempty"`
	ColumnID       int64                `json:"column_id,omitempty"`
	RelationshipID uuid.UUID            `json:"relationship_id,omitempty"`
	Name           string               `json:"name,omitempty"`
	Position       *models.Point        `json:"position,omitempty"`
	Column         *models.Column       `json:"column,omitempty"`
	Relationship   *models.Relationship `json:"relationship,omitempty"`
}

// TablePosition records a table's new canvas placement.
type TablePosition struct {
	TableID uuid.UUID `json:"table_id"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
}

// TableRename records a table's new name.
type TableRename struct {
	TableID uuid.UUID `json:"table_id"`
	Name    string    `json:"name"`
}

// Delta is the schema change set a mutation produces, in persistable
// form. Cascades are already resolved: deleting a column or table lists
// every relationship that referenced it.
type Delta struct {
	MovedTables            []TablePosition       `json:"moved_tables,omitempty"`
	RenamedTables          []TableRename         `json:"renamed_tables,omitempty"`
	AddedTables            []models.Table        `json:"added_tables,omitempty"`
	DeletedTableIDs        []uuid.UUID           `json:"deleted_table_ids,omitempty"`
	AddedColumns           []models.Column       `json:"added_columns,omitempty"`
	DeletedColumnIDs       []int64               `json:"deleted_column_ids,omitempty"`
	AddedRelationships     []models.Relationship `json:"added_relationships,omitempty"`
	DeletedRelationshipIDs []uuid.UUID           `json:"deleted_relationship_ids,omitempty"`
}

// Empty reports whether the delta changes nothing.
func (d *Delta) Empty() bool {
	return len(d.MovedTables) == 0 && len(d.RenamedTables) == 0 &&
		len(d.AddedTables) == 0 && len(d.DeletedTableIDs) == 0 &&
		len(d.AddedColumns) == 0 && len(d.DeletedColumnIDs) == 0 &&
		len(d.AddedRelationships) == 0 && len(d.DeletedRelationshipIDs) == 0
}

// ApplyMutation translates one canvas mutation into the schema delta to
// persist. Pure: it inspects the snapshot, produces the delta and has
// no side effects, so a rebuild from a fresh snapshot can always be
// re-run after it.
func ApplyMutation(tables []models.Table, relationships []models.Relationship, m Mutation) (Delta, error) {
	switch m.Op {
	case OpMoveNode:
		if m.Position == nil {
			return Delta{}, fmt.Errorf("%w: move-node requires a position", ErrInvalidArgument)
		}
		if findTable(tables, m.TableID) == nil {
			return Delta{}, fmt.Errorf("%w: table %s", ErrUnresolvedReference, m.TableID)
		}
		p := clampPoint(*m.Position)
		return Delta{MovedTables: []TablePosition{{TableID: m.TableID, X: p.X, Y: p.Y}}}, nil

	case OpRenameTable:
		if m.Name == "" {
			return Delta{}, fmt.Errorf("%w: rename-table requires a name", ErrInvalidArgument)
		}
		if findTable(tables, m.TableID) == nil {
			return Delta{}, fmt.Errorf("%w: table %s", ErrUnresolvedReference, m.TableID)
		}
		return Delta{RenamedTables: []TableRename{{TableID: m.TableID, Name: m.Name}}}, nil

	case OpAddTable:
		if m.Name == "" {
			return Delta{}, fmt.Errorf("%w: add-table requires a name", ErrInvalidArgument)
		}
		t := models.Table{
			ID:    uuid.New(),
			Name:  m.Name,
			Width: MinTableWidth,
		}
		if m.Position != nil {
			p := clampPoint(*m.Position)
			t.X, t.Y = p.X, p.Y
		}
		return Delta{AddedTables: []models.Table{t}}, nil

	case OpDeleteTable:
		t := findTable(tables, m.TableID)
		if t == nil {
			return Delta{}, fmt.Errorf("%w: table %s", ErrUnresolvedReference, m.TableID)
		}
		owned := make(map[int64]bool, len(t.Columns))
		d := Delta{DeletedTableIDs: []uuid.UUID{t.ID}}
		for _, c := range t.Columns {
			owned[c.ID] = true
			d.DeletedColumnIDs = append(d.DeletedColumnIDs, c.ID)
		}
		for _, rel := range relationships {
			if owned[rel.FromColumnID] || owned[rel.ToColumnID] {
				d.DeletedRelationshipIDs = append(d.DeletedRelationshipIDs, rel.ID)
			}
		}
		return d, nil

	case OpAddColumn:
		if m.Column == nil || m.Column.Name == "" {
			return Delta{}, fmt.Errorf("%w: add-column requires a named column", ErrInvalidArgument)
		}
		if findTable(tables, m.TableID) == nil {
			return Delta{}, fmt.Errorf("%w: table %s", ErrUnresolvedReference, m.TableID)
		}
		col := *m.Column
		col.TableID = m.TableID
		return Delta{AddedColumns: []models.Column{col}}, nil

	case OpDeleteColumn:
		if findColumn(tables, m.ColumnID) == nil {
			return Delta{}, fmt.Errorf("%w: column %d", ErrUnresolvedReference, m.ColumnID)
		}
		d := Delta{DeletedColumnIDs: []int64{m.ColumnID}}
		for _, rel := range relationships {
			if rel.FromColumnID == m.ColumnID || rel.ToColumnID == m.ColumnID {
				d.DeletedRelationshipIDs = append(d.DeletedRelationshipIDs, rel.ID)
			}
		}
		return d, nil

	case OpAddRelationship:
		if m.Relationship == nil {
			return Delta{}, fmt.Errorf("%w: add-relationship requires a relationship", ErrInvalidArgument)
		}
		rel := *m.Relationship
		if findColumn(tables, rel.FromColumnID) == nil {
			return Delta{}, fmt.Errorf("%w: column %d", ErrUnresolvedReference, rel.FromColumnID)
		}
		if findColumn(tables, rel.ToColumnID) == nil {
			return Delta{}, fmt.Errorf("%w: column %d", ErrUnresolvedReference, rel.ToColumnID)
		}
		if rel.Type != models.OneToOne {
			rel.Type = models.OneToMany
		}
		if rel.ID == uuid.Nil {
			rel.ID = uuid.New()
		}
		return Delta{AddedRelationships: []models.Relationship{rel}}, nil

	case OpDeleteRelationship:
		for _, rel := range relationships {
			if rel.ID == m.RelationshipID {
				return Delta{DeletedRelationshipIDs: []uuid.UUID{rel.ID}}, nil
			}
		}
		return Delta{}, fmt.Errorf("%w: relationship %s", ErrUnresolvedReference, m.RelationshipID)

	default:
		return Delta{}, fmt.Errorf("%w: unknown op %q", ErrInvalidArgument, m.Op)
	}
}

func findTable(tables []models.Table, id uuid.UUID) *models.Table {
	for i := range tables {
		if tables[i].ID == id {
			return &tables[i]
		}
	}
	return nil
}

func findColumn(tables []models.Table, id int64) *models.Column {
	for i := range tables {
		for j := range tables[i].Columns {
			if tables[i].Columns[j].ID == id {
				return &tables[i].Columns[j]
			}
		}
	}
	return nil
}
