package routes

import (
	"backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

type UserRoutes struct {
	handler      *handlers.UserHandler
	authenticate gin.HandlerFunc
}

func NewUserRoutes(handler *handlers.UserHandler, authenticate gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{handler: handler, authenticate: authenticate}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(r.authenticate)
	{
		users.GET("/me", r.handler.Me)
		users.PUT("/me/password", r.handler.ChangePassword)
	}
}
