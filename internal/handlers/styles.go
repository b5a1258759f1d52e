package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

type StylesHandler struct{}

func NewStylesHandler() *StylesHandler {
	return &StylesHandler{}
}

// GetStyles godoc
// @Summary     List design styles
// @Description Returns the style catalog and the supported aspect ratios for project creation
// @Tags        styles
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StylesResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /styles [get]
func (h *StylesHandler) GetStyles(c *gin.Context) {
	c.JSON(http.StatusOK, models.StylesResponse{
		Styles:       services.StyleCatalog(),
		AspectRatios: services.AspectRatios(),
	})
}
