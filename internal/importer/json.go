package importer

import (
	"encoding/json"
	"fmt"

	"backend/internal/models"

	"github.com/google/uuid"
)

// Payload is the JSON exchange shape for a database-mode diagram.
type Payload struct {
	Name          string                `json:"name,omitempty"`
	Tables        []models.Table        `json:"tables"`
	Relationships []models.Relationship `json:"relationships"`
}

// ParseJSON decodes a diagram payload and drops every relationship
// whose columns are not present in the accompanying table set. A
// partially valid payload still imports; only a payload that is not
// JSON at all fails.
func ParseJSON(text string) (Result, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Result{}, fmt.Errorf("invalid JSON payload: %w", err)
	}

	res := Result{Tables: p.Tables}
	for i := range res.Tables {
		if res.Tables[i].ID == uuid.Nil {
			res.Tables[i].ID = uuid.New()
		}
		if res.Tables[i].Columns == nil {
			res.Tables[i].Columns = []models.Column{}
		}
	}

	valid, dropped := ValidateRelationships(res.Tables, p.Relationships)
	res.Relationships = valid
	for _, rel := range dropped {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"relationship %d -> %d references a missing column, dropped",
			rel.FromColumnID, rel.ToColumnID))
	}
	return res, nil
}

// ValidateRelationships partitions relationships into those whose two
// column ids exist in the table set and those that dangle. Input order
// is preserved in both partitions.
func ValidateRelationships(tables []models.Table, relationships []models.Relationship) (valid, dropped []models.Relationship) {
	known := make(map[int64]bool)
	for i := range tables {
		for _, c := range tables[i].Columns {
			known[c.ID] = true
		}
	}
	for _, rel := range relationships {
		if known[rel.FromColumnID] && known[rel.ToColumnID] {
			valid = append(valid, rel)
		} else {
			dropped = append(dropped, rel)
		}
	}
	return valid, dropped
}

// ExportJSON serializes a diagram's schema as an importable payload.
// The handed-off record set is made internally consistent first:
// dangling relationships and duplicate column ids are removed.
func ExportJSON(name string, tables []models.Table, relationships []models.Relationship) ([]byte, error) {
	tables = dedupeColumns(tables)
	valid, _ := ValidateRelationships(tables, relationships)
	return json.MarshalIndent(Payload{
		Name:          name,
		Tables:        tables,
		Relationships: valid,
	}, "", "  ")
}

// dedupeColumns drops repeated column ids, keeping the first
// occurrence. Duplicates would make handle addressing ambiguous.
func dedupeColumns(tables []models.Table) []models.Table {
	seen := make(map[int64]bool)
	out := make([]models.Table, len(tables))
	for i := range tables {
		out[i] = tables[i]
		cols := make([]models.Column, 0, len(tables[i].Columns))
		for _, c := range tables[i].Columns {
			if c.ID > 0 && seen[c.ID] {
				continue
			}
			if c.ID > 0 {
				seen[c.ID] = true
			}
			cols = append(cols, c)
		}
		out[i].Columns = cols
	}
	return out
}
