package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"interior-design-backend/internal/config"
	"interior-design-backend/internal/middleware"
	"interior-design-backend/internal/services"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg *config.Config, designs *services.DesignService, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxImageSize

	projects := NewProjectsHandler(designs)
	refinements := NewRefinementsHandler(designs)
	assistant := NewAssistantHandler(designs)
	favorites := NewFavoritesHandler(designs)
	state := NewStateHandler(designs)
	styles := NewStylesHandler()

	// Health check (no auth)
	router.GET("/health", HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/styles", styles.GetStyles)

	// Projects
	api.POST("/projects", projects.CreateProject)
	api.GET("/projects", projects.ListProjects)
	api.GET("/projects/:project_id", projects.GetProject)
	api.PATCH("/projects/:project_id", projects.RenameProject)
	api.DELETE("/projects/:project_id", projects.DeleteProject)
	api.POST("/projects/:project_id/styles/:style/retry", projects.RetryStyle)
	api.GET("/projects/:project_id/styles/:style/versions/:index", projects.GetVersion)
	api.POST("/projects/:project_id/styles/:style/comments", projects.AddComment)

	// Refinements
	api.POST("/projects/:project_id/styles/:style/previews", refinements.Preview)
	api.POST("/previews/:preview_id/commit", refinements.Commit)
	api.DELETE("/previews/:preview_id", refinements.Discard)

	// Stories, analysis and chat
	api.POST("/projects/:project_id/styles/:style/story", assistant.GenerateStory)
	api.POST("/projects/:project_id/styles/:style/story/continue", assistant.ContinueStory)
	api.POST("/analyze", assistant.Analyze)
	api.POST("/chat", assistant.Chat)

	// Favorites and navigation state
	api.GET("/favorites", favorites.ListFavorites)
	api.POST("/favorites", favorites.AddFavorite)
	api.DELETE("/favorites/:favorite_id", favorites.RemoveFavorite)
	api.GET("/state", state.GetState)
	api.PUT("/state", state.SaveState)

	return router
}
