package handlers

import (
	"net/http"
	"time"

	"backend/internal/access"
	"backend/internal/models"
	"backend/internal/responses"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	shareService *services.ShareService
}

func NewShareHandler(shareService *services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// CreateLink handles POST /api/v1/diagrams/:id/share-links
func (h *ShareHandler) CreateLink(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Name      string     `json:"name"`
		Role      string     `json:"role" binding:"required"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	link, err := h.shareService.CreateLink(c.Request.Context(), id, viewerFrom(c),
		req.Name, access.ParseRole(req.Role), req.ExpiresAt)
	if err != nil {
		failDomain(c, err, "Failed to create share link")
		return
	}

	responses.Success(c, http.StatusCreated, link, "Share link created successfully")
}

// ListLinks handles GET /api/v1/diagrams/:id/share-links
func (h *ShareHandler) ListLinks(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	links, err := h.shareService.ListLinks(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to retrieve share links")
		return
	}

	responses.Success(c, http.StatusOK, links, "Share links retrieved successfully")
}

// RevokeLink handles DELETE /api/v1/diagrams/:id/share-links/:linkId
func (h *ShareHandler) RevokeLink(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}
	linkID, err := utils.ParseUUID(c.Param("linkId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid link id")
		return
	}

	if err := h.shareService.RevokeLink(c.Request.Context(), id, linkID, viewerFrom(c)); err != nil {
		failDomain(c, err, "Failed to revoke share link")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Share link revoked successfully")
}

// UpsertGrant handles PUT /api/v1/diagrams/:id/grants
func (h *ShareHandler) UpsertGrant(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	var req struct {
		SubjectType string `json:"subject_type" binding:"required"`
		SubjectID   string `json:"subject_id"   binding:"required"`
		Role        string `json:"role"         binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	subjectID, err := utils.ParseUUID(req.SubjectID)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid subject id")
		return
	}

	grant, err := h.shareService.UpsertGrant(c.Request.Context(), id, viewerFrom(c),
		models.SubjectType(req.SubjectType), subjectID, access.ParseRole(req.Role))
	if err != nil {
		failDomain(c, err, "Failed to save grant")
		return
	}

	responses.Success(c, http.StatusOK, grant, "Grant saved successfully")
}

// ListGrants handles GET /api/v1/diagrams/:id/grants
func (h *ShareHandler) ListGrants(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	grants, err := h.shareService.ListGrants(c.Request.Context(), id, viewerFrom(c))
	if err != nil {
		failDomain(c, err, "Failed to retrieve grants")
		return
	}

	responses.Success(c, http.StatusOK, grants, "Grants retrieved successfully")
}

// DeleteGrant handles DELETE /api/v1/diagrams/:id/grants/:grantId
func (h *ShareHandler) DeleteGrant(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}
	grantID, err := utils.ParseUUID(c.Param("grantId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid grant id")
		return
	}

	if err := h.shareService.DeleteGrant(c.Request.Context(), id, grantID, viewerFrom(c)); err != nil {
		failDomain(c, err, "Failed to delete grant")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Grant deleted successfully")
}
