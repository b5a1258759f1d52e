package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

type FavoritesHandler struct {
	designs *services.DesignService
}

func NewFavoritesHandler(designs *services.DesignService) *FavoritesHandler {
	return &FavoritesHandler{designs: designs}
}

func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	favorites, err := h.designs.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to list favorites", err)
		return
	}
	c.JSON(http.StatusOK, models.FavoriteListResponse{Favorites: favorites})
}

// AddFavorite godoc
// @Summary     Save a version as a favorite
// @Description A project keeps at most one favorite per style; a duplicate returns 409
// @Tags        favorites
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.FavoriteRequest true "Project, style and version"
// @Success     201 {object} models.Favorite
// @Failure     409 {object} models.ErrorResponse
// @Router      /favorites [post]
func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		badRequest(c, "invalid project id", err)
		return
	}

	favorite, err := h.designs.AddFavorite(c.Request.Context(), userID, projectID, req.StyleName, req.Index)
	if err != nil {
		respondError(c, "failed to add favorite", err)
		return
	}
	c.JSON(http.StatusCreated, favorite)
}

func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	favoriteID, err := uuid.Parse(c.Param("favorite_id"))
	if err != nil {
		badRequest(c, "invalid favorite id", nil)
		return
	}

	if err := h.designs.RemoveFavorite(c.Request.Context(), userID, favoriteID); err != nil {
		respondError(c, "failed to remove favorite", err)
		return
	}
	c.Status(http.StatusNoContent)
}
