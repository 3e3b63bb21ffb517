package handlers

import (
	"net/http"

	"backend/internal/responses"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer.UserID == uuid.Nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), viewer.UserID)
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to retrieve user")
		return
	}
	if user == nil {
		responses.Fail(c, http.StatusNotFound, nil, "User not found")
		return
	}

	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// ChangePassword handles PUT /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer.UserID == uuid.Nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password"     binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), viewer.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Failed to change password")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Password changed successfully")
}
