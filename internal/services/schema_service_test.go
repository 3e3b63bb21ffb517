package services

import (
	"strings"
	"testing"

	"backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mermaidFixture() ([]models.Table, []models.Relationship) {
	diagramID := uuid.New()
	users := models.Table{
		ID: uuid.New(), DiagramID: diagramID, Name: "users",
		Columns: []models.Column{
			{ID: 1, Name: "id", Type: "BIGINT", Primary: true},
			{ID: 2, Name: "email", Type: "VARCHAR(255)", Unique: true},
		},
	}
	orders := models.Table{
		ID: uuid.New(), DiagramID: diagramID, Name: "orders",
		Columns: []models.Column{
			{ID: 3, Name: "id", Type: "BIGINT", Primary: true},
			{ID: 4, Name: "user_id", Type: "BIGINT"},
		},
	}
	rel := models.Relationship{
		ID: uuid.New(), DiagramID: diagramID,
		FromColumnID: 4, ToColumnID: 1, Type: models.OneToMany,
	}
	return []models.Table{users, orders}, []models.Relationship{rel}
}

func TestGenerateMermaidBasic(t *testing.T) {
	tables, rels := mermaidFixture()

	out := GenerateMermaid(tables, rels)

	assert.Contains(t, out, "erDiagram\n")
	assert.Contains(t, out, `    USERS ||--o{ ORDERS : ""`)
	assert.Contains(t, out, "    USERS {\n")
	assert.Contains(t, out, "    ORDERS {\n")
	assert.Contains(t, out, "bigint id PK")
	assert.Contains(t, out, "varchar email")
	assert.Contains(t, out, "bigint user_id FK")
}

func TestGenerateMermaidOneToOne(t *testing.T) {
	tables, rels := mermaidFixture()
	rels[0].Type = models.OneToOne

	out := GenerateMermaid(tables, rels)

	assert.Contains(t, out, `USERS ||--|| ORDERS`)
	assert.NotContains(t, out, "||--o{")
}

func TestGenerateMermaidDeduplicatesRelationshipLines(t *testing.T) {
	tables, rels := mermaidFixture()
	second := rels[0]
	second.ID = uuid.New()
	rels = append(rels, second)

	out := GenerateMermaid(tables, rels)

	require.Equal(t, 1, strings.Count(out, "USERS ||--o{ ORDERS"))
}

func TestGenerateMermaidSkipsDanglingRelationships(t *testing.T) {
	tables, rels := mermaidFixture()
	rels = append(rels, models.Relationship{
		ID: uuid.New(), FromColumnID: 99, ToColumnID: 1, Type: models.OneToMany,
	})

	out := GenerateMermaid(tables, rels)

	assert.Equal(t, 1, strings.Count(out, "||--o{"))
}

func TestMermaidTypeStripsPrecision(t *testing.T) {
	assert.Equal(t, "varchar", mermaidType("VARCHAR(255)"))
	assert.Equal(t, "numeric", mermaidType("NUMERIC(10,2)"))
	assert.Equal(t, "timestamp_with_time_zone", mermaidType("TIMESTAMP WITH TIME ZONE"))
}
