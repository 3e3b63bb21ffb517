package models

import (
	"strings"

	"github.com/google/uuid"
)

// Column ids are integers (bigserial) rather than UUIDs: the canvas
// derives connection-handle ids from them, so they must be compact and
// strictly positive.
type Column struct {
	ID       int64     `json:"id"`
	TableID  uuid.UUID `json:"table_id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Nullable bool      `json:"nullable"`
	Primary  bool      `json:"primary"`
	Unique   bool      `json:"unique"`
	Default  *string   `json:"default,omitempty"`
}

// Table is one relational table in a database-mode diagram. X, Y and
// Width carry the persisted canvas placement of its node.
type Table struct {
	ID        uuid.UUID `json:"id"`
	DiagramID uuid.UUID `json:"diagram_id"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Columns   []Column  `json:"columns"`
}

type RelationshipType string

const (
	OneToOne  RelationshipType = "one_to_one"
	OneToMany RelationshipType = "one_to_many"
)

type Relationship struct {
	ID           uuid.UUID        `json:"id"`
	DiagramID    uuid.UUID        `json:"diagram_id"`
	FromColumnID int64            `json:"from_column_id"`
	ToColumnID   int64            `json:"to_column_id"`
	Type         RelationshipType `json:"type"`
}

// columnTypes is the fixed vocabulary offered by the editor. Imported
// columns may carry any free-text type (SQL paste round-trips verbatim);
// this set only drives normalization and the type picker.
var columnTypes = map[string]bool{
	"int": true, "bigint": true, "smallint": true,
	"varchar": true, "char": true, "text": true,
	"timestamp": true, "timestamptz": true, "time": true, "date": true,
	"boolean": true, "numeric": true, "decimal": true,
	"real": true, "double": true,
	"json": true, "jsonb": true, "uuid": true, "bytea": true,
}

// KnownColumnType reports whether t (case-insensitive, ignoring any
// length suffix like varchar(50)) is in the editor's type vocabulary.
func KnownColumnType(t string) bool {
	base := strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	return columnTypes[base]
}
