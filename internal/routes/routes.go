package routes

import (
	"net/http"

	"backend/internal/handlers"
	"backend/internal/middlewares"
	"backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	router *gin.Engine,
	redisRepo *repositories.RedisRepository,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	diagramHandler *handlers.DiagramHandler,
	schemaHandler *handlers.SchemaHandler,
	shareHandler *handlers.ShareHandler,
	importHandler *handlers.ImportHandler,
) {
	api := router.Group("/api/v1")

	authenticate := middlewares.Authenticate(redisRepo)
	maybeAuthenticate := middlewares.MaybeAuthenticate(redisRepo)

	authRoutes := NewAuthRoutes(authHandler, authenticate)
	authRoutes.RegisterRoutes(api)

	userRoutes := NewUserRoutes(userHandler, authenticate)
	userRoutes.RegisterRoutes(api)

	diagramRoutes := NewDiagramRoutes(diagramHandler, schemaHandler, shareHandler, importHandler,
		authenticate, maybeAuthenticate)
	diagramRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
