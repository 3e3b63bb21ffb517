package importer

import (
	"fmt"
	"strings"

	"backend/internal/models"
)

// ExportSQL serializes the schema as CREATE TABLE statements with the
// relationships appended as FOREIGN KEY constraints. Identifiers are
// quoted. The record set is validated first so generation never emits
// an orphaned constraint.
func ExportSQL(tables []models.Table, relationships []models.Relationship) string {
	tables = dedupeColumns(tables)
	valid, _ := ValidateRelationships(tables, relationships)

	// column id -> owning table / column, for the FK clauses
	type colRef struct {
		table  string
		column string
	}
	refs := make(map[int64]colRef)
	for i := range tables {
		for _, c := range tables[i].Columns {
			refs[c.ID] = colRef{table: tables[i].Name, column: c.Name}
		}
	}

	fksByTable := make(map[string][]models.Relationship)
	for _, rel := range valid {
		from := refs[rel.FromColumnID]
		fksByTable[from.table] = append(fksByTable[from.table], rel)
	}

	var sb strings.Builder
	for ti := range tables {
		t := &tables[ti]
		fks := fksByTable[t.Name]

		sb.WriteString(fmt.Sprintf("CREATE TABLE %q (\n", t.Name))
		for i, col := range t.Columns {
			def := fmt.Sprintf("  %q %s", col.Name, col.Type)
			if col.Primary {
				def += " PRIMARY KEY"
			}
			if col.Unique {
				def += " UNIQUE"
			}
			if !col.Nullable && !col.Primary {
				def += " NOT NULL"
			}
			if col.Default != nil && *col.Default != "" {
				def += " DEFAULT " + *col.Default
			}
			if i < len(t.Columns)-1 || len(fks) > 0 {
				def += ","
			}
			sb.WriteString(def + "\n")
		}
		for i, rel := range fks {
			from := refs[rel.FromColumnID]
			to := refs[rel.ToColumnID]
			def := fmt.Sprintf("  FOREIGN KEY (%q) REFERENCES %q(%q)", from.column, to.table, to.column)
			if i < len(fks)-1 {
				def += ","
			}
			sb.WriteString(def + "\n")
		}
		sb.WriteString(");\n\n")
	}
	return sb.String()
}

// ExportMigration wraps the DDL in a transaction so a partial apply
// rolls back.
func ExportMigration(tables []models.Table, relationships []models.Relationship) string {
	var sb strings.Builder
	sb.WriteString("BEGIN;\n\n")
	sb.WriteString(ExportSQL(tables, relationships))
	sb.WriteString("COMMIT;\n")
	return sb.String()
}
