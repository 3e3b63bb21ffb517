// Package importer maps raw SQL or JSON payloads onto the schema model
// and serializes the model back out. Imports are tolerant: invalid
// pieces are dropped with a warning and the valid subset still lands.
package importer

import (
	"fmt"
	"regexp"
	"strings"

	"backend/internal/models"

	"github.com/google/uuid"
)

// Result is a parsed import. Column ids are synthetic sequential ids
// assigned by the parser so relationships resolve within the result;
// persistence remaps them onto real ids. Warnings describe every piece
// that was dropped or coerced.
type Result struct {
	Tables        []models.Table        `json:"tables"`
	Relationships []models.Relationship `json:"relationships"`
	Warnings      []string              `json:"warnings"`
}

var (
	createTableRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?("?[\w.]+"?(?:\."?\w+"?)?)\s*\((.*)\)\s*$`)
	foreignKeyRe  = regexp.MustCompile(`(?i)^(?:CONSTRAINT\s+\S+\s+)?FOREIGN\s+KEY\s*\(\s*"?(\w+)"?\s*\)\s*REFERENCES\s+"?([\w.]+?)"?\s*\(\s*"?(\w+)"?\s*\)`)
	primaryKeyRe  = regexp.MustCompile(`(?i)^(?:CONSTRAINT\s+\S+\s+)?PRIMARY\s+KEY\s*\(([^)]*)\)`)
	uniqueRe      = regexp.MustCompile(`(?i)^(?:CONSTRAINT\s+\S+\s+)?UNIQUE\s*\(([^)]*)\)`)
	columnDefRe   = regexp.MustCompile(`^"?(\w+)"?\s+(\w+(?:\s+\w+)*?(?:\s*\([^)]*\))?)(\s+.*)?$`)
)

type pendingFK struct {
	fromTable  string
	fromColumn string
	toTable    string
	toColumn   string
}

// ParseSQL parses pasted CREATE TABLE text into tables, columns and the
// relationships implied by FOREIGN KEY clauses. Statements that are not
// CREATE TABLE, and clauses that do not parse, are skipped with a
// warning rather than failing the import.
func ParseSQL(text string) Result {
	var res Result
	var fks []pendingFK

	nextColumnID := int64(1)
	byTable := map[string]*models.Table{}

	for _, stmt := range splitStatements(text) {
		m := createTableRe.FindStringSubmatch(stmt)
		if m == nil {
			if s := strings.TrimSpace(stmt); s != "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("skipped non-CREATE-TABLE statement: %.40q", s))
			}
			continue
		}

		name := unquoteIdentifier(m[1])
		if _, dup := byTable[name]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate table %q skipped", name))
			continue
		}

		table := models.Table{ID: uuid.New(), Name: name, Width: 200}
		pkCols := map[string]bool{}
		uniqueCols := map[string]bool{}

		for _, item := range splitTopLevel(m[2]) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			if fk := foreignKeyRe.FindStringSubmatch(item); fk != nil {
				fks = append(fks, pendingFK{
					fromTable:  name,
					fromColumn: fk[1],
					toTable:    unquoteIdentifier(fk[2]),
					toColumn:   fk[3],
				})
				continue
			}
			if pk := primaryKeyRe.FindStringSubmatch(item); pk != nil {
				for _, c := range strings.Split(pk[1], ",") {
					pkCols[unquoteIdentifier(strings.TrimSpace(c))] = true
				}
				continue
			}
			if uq := uniqueRe.FindStringSubmatch(item); uq != nil {
				for _, c := range strings.Split(uq[1], ",") {
					uniqueCols[unquoteIdentifier(strings.TrimSpace(c))] = true
				}
				continue
			}
			if strings.HasPrefix(strings.ToUpper(item), "CONSTRAINT") ||
				strings.HasPrefix(strings.ToUpper(item), "CHECK") {
				continue
			}

			col, ok := parseColumnDef(item, nextColumnID)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("table %q: unparsable column definition %.40q", name, item))
				continue
			}
			col.TableID = table.ID
			table.Columns = append(table.Columns, col)
			nextColumnID++
		}

		for i := range table.Columns {
			if pkCols[table.Columns[i].Name] {
				table.Columns[i].Primary = true
				table.Columns[i].Nullable = false
			}
			if uniqueCols[table.Columns[i].Name] {
				table.Columns[i].Unique = true
			}
		}

		byTable[name] = &table
		res.Tables = append(res.Tables, table)
	}

	// Resolve foreign keys now that every table is parsed; forward
	// references within one paste are legal SQL.
	for _, fk := range fks {
		from := findColumnByName(res.Tables, fk.fromTable, fk.fromColumn)
		to := findColumnByName(res.Tables, fk.toTable, fk.toColumn)
		if from == nil || to == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"foreign key %s.%s -> %s.%s references a missing column, dropped",
				fk.fromTable, fk.fromColumn, fk.toTable, fk.toColumn))
			continue
		}
		relType := models.OneToMany
		if from.Unique || from.Primary {
			relType = models.OneToOne
		}
		res.Relationships = append(res.Relationships, models.Relationship{
			ID:           uuid.New(),
			FromColumnID: from.ID,
			ToColumnID:   to.ID,
			Type:         relType,
		})
	}

	return res
}

// parseColumnDef parses one `name type [constraints]` item. Unknown
// types are kept verbatim so the export path round-trips whatever the
// user pasted.
func parseColumnDef(item string, id int64) (models.Column, bool) {
	m := columnDefRe.FindStringSubmatch(item)
	if m == nil {
		return models.Column{}, false
	}

	typ, rest := splitTypeAndConstraints(m[2], m[3])
	col := models.Column{
		ID:       id,
		Name:     m[1],
		Type:     normalizeType(typ),
		Nullable: true,
	}

	upper := strings.ToUpper(rest)
	if strings.Contains(upper, "PRIMARY KEY") {
		col.Primary = true
		col.Nullable = false
	}
	if strings.Contains(upper, "NOT NULL") {
		col.Nullable = false
	}
	if strings.Contains(upper, "UNIQUE") {
		col.Unique = true
	}
	if d := extractDefault(rest); d != "" {
		col.Default = &d
	}
	return col, true
}

// splitTypeAndConstraints separates the type from the constraint tail.
// Multi-word types honored: double precision, timestamp with[out] time
// zone, character varying(n). Anything else past word one is a
// constraint keyword.
func splitTypeAndConstraints(typ, tail string) (string, string) {
	words := strings.Fields(strings.TrimSpace(typ + " " + tail))
	cut := len(words)
	for i := 1; i < len(words); i++ {
		w := strings.ToUpper(words[i])
		if j := strings.IndexByte(w, '('); j >= 0 {
			w = w[:j]
		}
		switch w {
		case "PRECISION", "VARYING", "WITH", "WITHOUT", "TIME", "ZONE":
			continue
		}
		cut = i
		break
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}

var defaultRe = regexp.MustCompile(`(?i)DEFAULT\s+('[^']*'|\S+)`)

func extractDefault(constraints string) string {
	m := defaultRe.FindStringSubmatch(constraints)
	if m == nil {
		return ""
	}
	return m[1]
}

// normalizeType folds common SQL spellings onto the editor's type
// vocabulary, passing unrecognized types through verbatim.
func normalizeType(t string) string {
	dt := strings.ToLower(strings.TrimSpace(t))
	switch {
	case dt == "integer" || dt == "int4" || dt == "serial":
		return "int"
	case dt == "bigserial" || dt == "int8":
		return "bigint"
	case strings.HasPrefix(dt, "character varying"):
		return "varchar" + dt[len("character varying"):]
	case dt == "character" || strings.HasPrefix(dt, "character("):
		return "char" + strings.TrimPrefix(dt, "character")
	case strings.HasPrefix(dt, "timestamp with time zone"):
		return "timestamptz"
	case strings.HasPrefix(dt, "timestamp without time zone") || dt == "timestamp":
		return "timestamp"
	case strings.HasPrefix(dt, "time without time zone"):
		return "time"
	case dt == "double precision" || dt == "float8":
		return "double"
	case dt == "bool":
		return "boolean"
	case models.KnownColumnType(dt):
		return dt
	default:
		return strings.TrimSpace(t)
	}
}

// splitStatements splits on semicolons outside of quotes.
func splitStatements(text string) []string {
	var out []string
	var cur strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuote != 0:
			cur.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"':
			inQuote = c
			cur.WriteByte(c)
		case c == ';':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, cur.String())
	}
	return out
}

// splitTopLevel splits a CREATE TABLE body on commas at paren depth 0.
func splitTopLevel(body string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '(':
			depth++
			cur.WriteByte(c)
		case ')':
			depth--
			cur.WriteByte(c)
		case ',':
			if depth == 0 {
				out = append(out, cur.String())
				cur.Reset()
			} else {
				cur.WriteByte(c)
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func unquoteIdentifier(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	// schema-qualified names keep only the table part
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return strings.Trim(s, `"`)
}

func findColumnByName(tables []models.Table, tableName, columnName string) *models.Column {
	for i := range tables {
		if !strings.EqualFold(tables[i].Name, tableName) {
			continue
		}
		for j := range tables[i].Columns {
			if strings.EqualFold(tables[i].Columns[j].Name, columnName) {
				return &tables[i].Columns[j]
			}
		}
	}
	return nil
}
