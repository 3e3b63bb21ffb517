package services

import (
	"context"
	"fmt"

	"backend/internal/access"
	"backend/internal/importer"
	"backend/internal/models"
	"backend/internal/repositories"

	"github.com/google/uuid"
)

type ImportService struct {
	schemaRepo  *repositories.SchemaRepository
	diagramRepo *repositories.DiagramRepository
	diagramSvc  *DiagramService
}

func NewImportService(schemaRepo *repositories.SchemaRepository, diagramRepo *repositories.DiagramRepository, diagramSvc *DiagramService) *ImportService {
	return &ImportService{
		schemaRepo:  schemaRepo,
		diagramRepo: diagramRepo,
		diagramSvc:  diagramSvc,
	}
}

// ImportReport is what an import hands back: the counts that landed
// plus any warnings the parser swallowed instead of failing on.
type ImportReport struct {
	Tables        int      `json:"tables"`
	Relationships int      `json:"relationships"`
	Warnings      []string `json:"-"`
}

// ImportSQL parses DDL and replaces the diagram's schema with the
// result. Parsing is best-effort: unsupported statements and dangling
// foreign keys surface as warnings, not errors.
func (s *ImportService) ImportSQL(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, ddl string) (*ImportReport, error) {
	res := importer.ParseSQL(ddl)
	return s.replace(ctx, diagramID, viewer, res)
}

// ImportJSON parses a schema payload and replaces the diagram's schema.
func (s *ImportService) ImportJSON(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, payload string) (*ImportReport, error) {
	res, err := importer.ParseJSON(payload)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, diagramID, viewer, res)
}

func (s *ImportService) replace(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, res importer.Result) (*ImportReport, error) {
	diagram, role, err := s.diagramSvc.Get(ctx, diagramID, viewer)
	if err != nil {
		return nil, err
	}
	if !role.CanMutate() {
		return nil, access.ErrAccessDenied
	}
	if diagram.Mode != models.ModeDB {
		return nil, fmt.Errorf("schema import requires a database-mode diagram")
	}

	valid, dropped := importer.ValidateRelationships(res.Tables, res.Relationships)
	warnings := res.Warnings
	for _, rel := range dropped {
		warnings = append(warnings, fmt.Sprintf("dropped relationship %d -> %d: unresolved column", rel.FromColumnID, rel.ToColumnID))
	}

	if err := s.schemaRepo.ReplaceSchema(ctx, diagramID, res.Tables, valid); err != nil {
		return nil, err
	}
	_ = s.diagramRepo.Touch(ctx, diagramID)

	return &ImportReport{
		Tables:        len(res.Tables),
		Relationships: len(valid),
		Warnings:      warnings,
	}, nil
}

// Export renders the diagram's schema in the requested format: json,
// sql (plain DDL), migration (DDL wrapped in a transaction) or mermaid.
// It returns the body and the content type to serve it with.
func (s *ImportService) Export(ctx context.Context, diagramID uuid.UUID, viewer ViewerContext, format string) ([]byte, string, error) {
	diagram, _, err := s.diagramSvc.Get(ctx, diagramID, viewer)
	if err != nil {
		return nil, "", err
	}

	tables, rels, err := s.schemaRepo.Snapshot(ctx, diagramID)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "json", "":
		body, err := importer.ExportJSON(diagram.Name, tables, rels)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil
	case "sql":
		return []byte(importer.ExportSQL(tables, rels)), "application/sql", nil
	case "migration":
		return []byte(importer.ExportMigration(tables, rels)), "application/sql", nil
	case "mermaid":
		return []byte(GenerateMermaid(tables, rels)), "text/plain; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}
