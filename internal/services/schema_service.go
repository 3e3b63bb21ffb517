package services

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/access"
	"backend/internal/models"
	"backend/internal/repositories"

	"github.com/google/uuid"
)

type SchemaService struct {
	schemaRepo *repositories.SchemaRepository
	diagramSvc *DiagramService
}

func NewSchemaService(schemaRepo *repositories.SchemaRepository, diagramSvc *DiagramService) *SchemaService {
	return &SchemaService{
		schemaRepo: schemaRepo,
		diagramSvc: diagramSvc,
	}
}

// Snapshot returns the diagram's tables and relationships after an
// access check.
func (s *SchemaService) Snapshot(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext) ([]models.Table, []models.Relationship, error) {
	if _, _, err := s.diagramSvc.Get(ctx, diagramID, viewer); err != nil {
		return nil, nil, err
	}
	return s.schemaRepo.Snapshot(ctx, diagramID)
}

// ReplaceSchema swaps a diagram's schema wholesale, remapping the
// incoming synthetic column ids to the real ones the database assigns.
func (s *SchemaService) ReplaceSchema(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, tables []models.Table, rels []models.Relationship) error {
	_, role, err := s.diagramSvc.Get(ctx, diagramID, viewer)
	if err != nil {
		return err
	}
	if !role.CanMutate() {
		return access.ErrAccessDenied
	}
	return s.schemaRepo.ReplaceSchema(ctx, diagramID, tables, rels)
}

// VisualizeSchema renders the diagram's schema as a Mermaid ER diagram.
func (s *SchemaService) VisualizeSchema(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext) (string, error) {
	tables, rels, err := s.Snapshot(ctx, diagramID, viewer)
	if err != nil {
		return "", err
	}
	return GenerateMermaid(tables, rels), nil
}

// GenerateMermaid produces Mermaid erDiagram source for a schema.
// Relationship cardinality maps one_to_one to ||--|| and one_to_many to
// ||--o{; duplicates between the same table pair collapse to one line.
func GenerateMermaid(tables []models.Table, relationships []models.Relationship) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	tableByColumn := make(map[int64]*models.Table)
	for i := range tables {
		for j := range tables[i].Columns {
			tableByColumn[tables[i].Columns[j].ID] = &tables[i]
		}
	}
	fkColumns := make(map[int64]bool)

	if len(relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range relationships {
			from, okFrom := tableByColumn[rel.FromColumnID]
			to, okTo := tableByColumn[rel.ToColumnID]
			if !okFrom || !okTo {
				continue
			}
			fkColumns[rel.FromColumnID] = true

			relType := "||--o{"
			if rel.Type == models.OneToOne {
				relType = "||--||"
			}

			key := fmt.Sprintf("%s:%s:%s", to.Name, relType, from.Name)
			if seen[key] {
				continue
			}
			seen[key] = true

			// Mermaid requires a label even when there is nothing to say.
			sb.WriteString(fmt.Sprintf("    %s %s %s : \"\"\n",
				strings.ToUpper(to.Name),
				relType,
				strings.ToUpper(from.Name)))
		}
		sb.WriteString("\n")
	}

	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("    %s {\n", strings.ToUpper(table.Name)))

		for _, col := range table.Columns {
			annotations := ""
			if col.Primary {
				annotations = " PK"
			}
			if fkColumns[col.ID] {
				annotations += " FK"
			}
			sb.WriteString(fmt.Sprintf("        %s %s%s\n",
				mermaidType(col.Type),
				col.Name,
				annotations))
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

// mermaidType strips precision arguments; Mermaid chokes on commas
// inside attribute types.
func mermaidType(dataType string) string {
	dt := strings.ToLower(dataType)
	if i := strings.IndexByte(dt, '('); i >= 0 {
		dt = dt[:i]
	}
	return strings.ReplaceAll(strings.TrimSpace(dt), " ", "_")
}
