package handlers

import (
	"net/http"
	"strconv"

	"backend/internal/graph"
	"backend/internal/models"
	"backend/internal/responses"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// SchemaHandler exposes the table/column/relationship operations of a
// database-mode diagram. Every edit goes through the mutation pipeline
// so cascades and access checks apply uniformly.
type SchemaHandler struct {
	schemaService  *services.SchemaService
	diagramService *services.DiagramService
}

func NewSchemaHandler(schemaService *services.SchemaService, diagramService *services.DiagramService) *SchemaHandler {
	return &SchemaHandler{
		schemaService:  schemaService,
		diagramService: diagramService,
	}
}

// GetSchema handles GET /api/v1/diagrams/:id/schema
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	tables, rels, err := h.schemaService.Snapshot(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to retrieve schema")
		return
	}

	res := gin.H{
		"tables":        tables,
		"relationships": rels,
	}
	responses.Success(c, http.StatusOK, res, "Schema retrieved successfully")
}

// VisualizeSchema handles GET /api/v1/diagrams/:id/schema/visualize
func (h *SchemaHandler) VisualizeSchema(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	mermaid, err := h.schemaService.VisualizeSchema(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to visualize schema")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"mermaid": mermaid}, "Schema visualization generated successfully")
}

// CreateTable handles POST /api/v1/diagrams/:id/tables
func (h *SchemaHandler) CreateTable(c *gin.Context) {
	var req struct {
		Name     string        `json:"name" binding:"required"`
		Position *models.Point `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	h.mutate(c, graph.Mutation{
		Op:       graph.OpAddTable,
		Name:     req.Name,
		Position: req.Position,
	})
}

// UpdateTable handles PATCH /api/v1/diagrams/:id/tables/:tableId.
// A name renames the table; a position moves it.
func (h *SchemaHandler) UpdateTable(c *gin.Context) {
	tableID, err := utils.ParseUUID(c.Param("tableId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	var req struct {
		Name     string        `json:"name"`
		Position *models.Point `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	switch {
	case req.Name != "":
		h.mutate(c, graph.Mutation{Op: graph.OpRenameTable, TableID: tableID, Name: req.Name})
	case req.Position != nil:
		h.mutate(c, graph.Mutation{Op: graph.OpMoveNode, TableID: tableID, Position: req.Position})
	default:
		responses.Fail(c, http.StatusBadRequest, nil, "Nothing to update")
	}
}

// DeleteTable handles DELETE /api/v1/diagrams/:id/tables/:tableId
func (h *SchemaHandler) DeleteTable(c *gin.Context) {
	tableID, err := utils.ParseUUID(c.Param("tableId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	h.mutate(c, graph.Mutation{Op: graph.OpDeleteTable, TableID: tableID})
}

// CreateColumn handles POST /api/v1/diagrams/:id/tables/:tableId/columns
func (h *SchemaHandler) CreateColumn(c *gin.Context) {
	tableID, err := utils.ParseUUID(c.Param("tableId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return
	}

	var col models.Column
	if err := c.ShouldBindJSON(&col); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid column")
		return
	}

	h.mutate(c, graph.Mutation{Op: graph.OpAddColumn, TableID: tableID, Column: &col})
}

// DeleteColumn handles DELETE /api/v1/diagrams/:id/columns/:columnId
func (h *SchemaHandler) DeleteColumn(c *gin.Context) {
	columnID, err := strconv.ParseInt(c.Param("columnId"), 10, 64)
	if err != nil || columnID <= 0 {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid column id")
		return
	}

	h.mutate(c, graph.Mutation{Op: graph.OpDeleteColumn, ColumnID: columnID})
}

// CreateRelationship handles POST /api/v1/diagrams/:id/relationships
func (h *SchemaHandler) CreateRelationship(c *gin.Context) {
	var rel models.Relationship
	if err := c.ShouldBindJSON(&rel); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid relationship")
		return
	}

	h.mutate(c, graph.Mutation{Op: graph.OpAddRelationship, Relationship: &rel})
}

// DeleteRelationship handles DELETE /api/v1/diagrams/:id/relationships/:relId
func (h *SchemaHandler) DeleteRelationship(c *gin.Context) {
	relID, err := utils.ParseUUID(c.Param("relId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid relationship id")
		return
	}

	h.mutate(c, graph.Mutation{Op: graph.OpDeleteRelationship, RelationshipID: relID})
}

func (h *SchemaHandler) mutate(c *gin.Context, m graph.Mutation) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	delta, err := h.diagramService.ApplyMutation(c.Request.Context(), id, viewerFrom(c), m)
	if err != nil {
		failDomain(c, err, "Failed to apply schema change")
		return
	}

	responses.Success(c, http.StatusOK, delta, "Schema updated successfully")
}
