package handlers

import (
	"errors"
	"net/http"

	"backend/internal/access"
	"backend/internal/graph"
	"backend/internal/responses"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// viewerFrom assembles the viewer identity for a request: the user id
// the auth middleware stored (if any) plus a ?share= token.
func viewerFrom(c *gin.Context) services.ViewerContext {
	viewer := services.ViewerContext{ShareToken: c.Query("share")}
	if v, exists := c.Get("userId"); exists {
		if id, ok := v.(uuid.UUID); ok {
			viewer.UserID = id
		}
	}
	return viewer
}

// failDomain maps service errors onto HTTP statuses so every handler
// reports access and reference problems the same way.
func failDomain(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, access.ErrAccessDenied):
		responses.Fail(c, http.StatusForbidden, err, "Access denied")
	case errors.Is(err, services.ErrDiagramNotFound), errors.Is(err, services.ErrShareLinkNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Not found")
	case errors.Is(err, graph.ErrInvalidArgument):
		responses.Fail(c, http.StatusBadRequest, err, message)
	case errors.Is(err, graph.ErrUnresolvedReference):
		responses.Fail(c, http.StatusUnprocessableEntity, err, message)
	default:
		responses.Fail(c, http.StatusInternalServerError, err, message)
	}
}

func diagramIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid diagram id")
		return uuid.Nil, false
	}
	return id, true
}
