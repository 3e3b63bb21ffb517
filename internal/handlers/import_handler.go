package handlers

import (
	"io"
	"net/http"

	"backend/internal/responses"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Imports are capped well above any reasonable schema dump.
const maxImportBytes = 4 << 20

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Import handles POST /api/v1/diagrams/:id/import. The body is raw SQL
// or JSON; ?format= selects the parser and defaults to sql.
func (h *ImportHandler) Import(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Failed to read request body")
		return
	}
	if len(body) == 0 {
		responses.Fail(c, http.StatusBadRequest, nil, "Empty import body")
		return
	}

	var report *services.ImportReport
	switch format := c.DefaultQuery("format", "sql"); format {
	case "sql":
		report, err = h.importService.ImportSQL(c.Request.Context(), id, viewerFrom(c), string(body))
	case "json":
		report, err = h.importService.ImportJSON(c.Request.Context(), id, viewerFrom(c), string(body))
	default:
		responses.Fail(c, http.StatusBadRequest, nil, "Unsupported import format")
		return
	}
	if err != nil {
		failDomain(c, err, "Failed to import schema")
		return
	}

	responses.SuccessWithWarnings(c, http.StatusOK, report, report.Warnings, "Schema imported successfully")
}

// Export handles GET /api/v1/diagrams/:id/export?format=json|sql|migration|mermaid
func (h *ImportHandler) Export(c *gin.Context) {
	id, ok := diagramIDParam(c)
	if !ok {
		return
	}

	body, contentType, err := h.importService.Export(c.Request.Context(), id, viewerFrom(c), c.Query("format"))
	if err != nil {
		failDomain(c, err, "Failed to export schema")
		return
	}

	c.Data(http.StatusOK, contentType, body)
}
