package handlers

import (
	"net/http"
	"strconv"

	"backend/internal/graph"
	"backend/internal/models"
	"backend/internal/responses"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DiagramHandler struct {
	diagramService *services.DiagramService
}

func NewDiagramHandler(diagramService *services.DiagramService) *DiagramHandler {
	return &DiagramHandler{diagramService: diagramService}
}

// CreateDiagram handles POST /api/v1/diagrams
func (h *DiagramHandler) CreateDiagram(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer.UserID == uuid.Nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req struct {
		Name     string           `json:"name" binding:"required"`
		Mode     string           `json:"mode"`
		IsPublic bool             `json:"is_public"`
		Viewport *models.Viewport `json:"viewport"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	diagram := &models.Diagram{
		Name:      req.Name,
		OwnerType: models.OwnerUser,
		OwnerID:   viewer.UserID,
		IsPublic:  req.IsPublic,
		Mode:      models.DiagramMode(req.Mode),
	}
	if req.Viewport != nil {
		diagram.Viewport = *req.Viewport
	}
	diagram.Prepare()

	if err := h.diagramService.Create(c.Request.Context(), diagram); err != nil {
		failDomain(c, err, "Failed to create diagram")
		return
	}

	responses.Success(c, http.StatusCreated, diagram, "Diagram created successfully")
}

// ListDiagrams handles GET /api/v1/diagrams
func (h *DiagramHandler) ListDiagrams(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer.UserID == uuid.Nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	diagrams, err := h.diagramService.ListOwned(c.Request.Context(), viewer.UserID)
	if err != nil {
		failDomain(c, err, "Failed to retrieve diagrams")
		return
	}

	responses.Success(c, http.StatusOK, diagrams, "Diagrams retrieved successfully")
}

// GetDiagram handles GET /api/v1/diagrams/:id
func (h *DiagramHandler) GetDiagram(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	diagram, role, err := h.diagramService.Get(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to retrieve diagram")
		return
	}

	res := gin.H{
		"diagram": diagram,
		"role":    role,
	}
	responses.Success(c, http.StatusOK, res, "Diagram retrieved successfully")
}

// UpdateDiagram handles PUT /api/v1/diagrams/:id
func (h *DiagramHandler) UpdateDiagram(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Name     string           `json:"name" binding:"required"`
		IsPublic bool             `json:"is_public"`
		Viewport *models.Viewport `json:"viewport"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	viewer := viewerFrom(c)
	diagram, _, err := h.diagramService.Get(c.Request.Context(), id, viewer)
	if err != nil {
		failDomain(c, err, "Failed to retrieve diagram")
		return
	}

	diagram.Name = req.Name
	diagram.IsPublic = req.IsPublic
	if req.Viewport != nil {
		diagram.Viewport = *req.Viewport
	}

	if err := h.diagramService.Update(c.Request.Context(), diagram, viewer); err != nil {
		failDomain(c, err, "Failed to update diagram")
		return
	}

	responses.Success(c, http.StatusOK, diagram, "Diagram updated successfully")
}

// DeleteDiagram handles DELETE /api/v1/diagrams/:id
func (h *DiagramHandler) DeleteDiagram(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	if err := h.diagramService.Delete(c.Request.Context(), id, viewerFrom(c)); err != nil {
		failDomain(c, err, "Failed to delete diagram")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Diagram deleted successfully")
}

// GetGraph handles GET /api/v1/diagrams/:id/graph
func (h *DiagramHandler) GetGraph(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	g, err := h.diagramService.GetGraph(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to build graph")
		return
	}

	responses.Success(c, http.StatusOK, g, "Graph retrieved successfully")
}

// ApplyMutation handles POST /api/v1/diagrams/:id/mutations
func (h *DiagramHandler) ApplyMutation(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var m graph.Mutation
	if err := c.ShouldBindJSON(&m); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid mutation")
		return
	}

	delta, err := h.diagramService.ApplyMutation(c.Request.Context(), id, viewerFrom(c), m)
	if err != nil {
		failDomain(c, err, "Failed to apply mutation")
		return
	}

	responses.Success(c, http.StatusOK, delta, "Mutation applied successfully")
}

// SaveCanvas handles PUT /api/v1/diagrams/:id/canvas
func (h *DiagramHandler) SaveCanvas(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Nodes []models.RawNode     `json:"nodes"`
		Edges []models.DiagramEdge `json:"edges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	g, err := h.diagramService.SaveCanvas(c.Request.Context(), id, viewerFrom(c), req.Nodes, req.Edges)
	if err != nil {
		failDomain(c, err, "Failed to save canvas")
		return
	}

	responses.Success(c, http.StatusOK, g, "Canvas saved successfully")
}

// AddTopic handles POST /api/v1/diagrams/:id/topics
func (h *DiagramHandler) AddTopic(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		ParentID string `json:"parent_id"`
		Text     string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	topic, err := h.diagramService.AddMindTopic(c.Request.Context(), id, viewerFrom(c), req.ParentID, req.Text)
	if err != nil {
		failDomain(c, err, "Failed to add topic")
		return
	}

	responses.Success(c, http.StatusCreated, topic, "Topic added successfully")
}

// MoveTopic handles PUT /api/v1/diagrams/:id/topics/:topicId/parent
func (h *DiagramHandler) MoveTopic(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		ParentID string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.diagramService.MoveMindTopic(c.Request.Context(), id, viewerFrom(c), c.Param("topicId"), req.ParentID); err != nil {
		failDomain(c, err, "Failed to move topic")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Topic moved successfully")
}

// DeleteTopic handles DELETE /api/v1/diagrams/:id/topics/:topicId
func (h *DiagramHandler) DeleteTopic(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	removed, err := h.diagramService.DeleteMindTopic(c.Request.Context(), id, viewerFrom(c), c.Param("topicId"))
	if err != nil {
		failDomain(c, err, "Failed to delete topic")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"removed": removed}, "Topic deleted successfully")
}

// History handles GET /api/v1/diagrams/:id/history
func (h *DiagramHandler) History(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.diagramService.History(c.Request.Context(), id, viewerFrom(c), limit)
	if err != nil {
		failDomain(c, err, "Failed to retrieve history")
		return
	}

	responses.Success(c, http.StatusOK, entries, "History retrieved successfully")
}
