package routes

import (
	"backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// DiagramRoutes wires diagram CRUD plus the nested schema, sharing and
// import/export surfaces. Read routes take MaybeAuthenticate so a share
// link or a public diagram works without a session; everything the
// access gate must still approve per diagram.
type DiagramRoutes struct {
	diagram *handlers.DiagramHandler
	schema  *handlers.SchemaHandler
	share   *handlers.ShareHandler
	imports *handlers.ImportHandler

	authenticate      gin.HandlerFunc
	maybeAuthenticate gin.HandlerFunc
}

func NewDiagramRoutes(
	diagram *handlers.DiagramHandler,
	schema *handlers.SchemaHandler,
	share *handlers.ShareHandler,
	imports *handlers.ImportHandler,
	authenticate gin.HandlerFunc,
	maybeAuthenticate gin.HandlerFunc,
) *DiagramRoutes {
	return &DiagramRoutes{
		diagram:           diagram,
		schema:            schema,
		share:             share,
		imports:           imports,
		authenticate:      authenticate,
		maybeAuthenticate: maybeAuthenticate,
	}
}

func (r *DiagramRoutes) RegisterRoutes(router *gin.RouterGroup) {
	diagrams := router.Group("/diagrams")

	// Owning and listing diagrams always needs an account.
	authed := diagrams.Group("")
	authed.Use(r.authenticate)
	{
		authed.POST("", r.diagram.CreateDiagram)
		authed.GET("", r.diagram.ListDiagrams)
		authed.DELETE("/:id", r.diagram.DeleteDiagram)

		authed.POST("/:id/share-links", r.share.CreateLink)
		authed.GET("/:id/share-links", r.share.ListLinks)
		authed.DELETE("/:id/share-links/:linkId", r.share.RevokeLink)

		authed.PUT("/:id/grants", r.share.UpsertGrant)
		authed.GET("/:id/grants", r.share.ListGrants)
		authed.DELETE("/:id/grants/:grantId", r.share.DeleteGrant)
	}

	// Share links and public diagrams open these without a session.
	open := diagrams.Group("")
	open.Use(r.maybeAuthenticate)
	{
		open.GET("/:id", r.diagram.GetDiagram)
		open.PUT("/:id", r.diagram.UpdateDiagram)
		open.GET("/:id/graph", r.diagram.GetGraph)
		open.POST("/:id/mutations", r.diagram.ApplyMutation)
		open.PUT("/:id/canvas", r.diagram.SaveCanvas)
		open.GET("/:id/history", r.diagram.History)

		open.GET("/:id/schema", r.schema.GetSchema)
		open.GET("/:id/schema/visualize", r.schema.VisualizeSchema)
		open.POST("/:id/tables", r.schema.CreateTable)
		open.PATCH("/:id/tables/:tableId", r.schema.UpdateTable)
		open.DELETE("/:id/tables/:tableId", r.schema.DeleteTable)
		open.POST("/:id/tables/:tableId/columns", r.schema.CreateColumn)
		open.DELETE("/:id/columns/:columnId", r.schema.DeleteColumn)
		open.POST("/:id/relationships", r.schema.CreateRelationship)
		open.DELETE("/:id/relationships/:relId", r.schema.DeleteRelationship)

		open.POST("/:id/topics", r.diagram.AddTopic)
		open.PUT("/:id/topics/:topicId/parent", r.diagram.MoveTopic)
		open.DELETE("/:id/topics/:topicId", r.diagram.DeleteTopic)

		open.POST("/:id/import", r.imports.Import)
		open.GET("/:id/export", r.imports.Export)
	}
}
