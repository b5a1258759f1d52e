package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

type RefinementsHandler struct {
	designs *services.DesignService
}

func NewRefinementsHandler(designs *services.DesignService) *RefinementsHandler {
	return &RefinementsHandler{designs: designs}
}

// Preview godoc
// @Summary     Preview a refinement
// @Description Applies a free-text edit to one version of a style. The result is held for a while
// @Description and only becomes a version when committed.
// @Tags        refinements
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string                true "Project ID (UUID)"
// @Param       style      path string                true "Style name"
// @Param       request    body models.PreviewRequest true "Version index and instruction"
// @Success     201 {object} models.PreviewResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/styles/{style}/previews [post]
func (h *RefinementsHandler) Preview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	p, err := h.designs.PreviewRefinement(c.Request.Context(), userID, projectID, c.Param("style"), req.Index, req.Instruction)
	if err != nil {
		respondError(c, "failed to refine design", err)
		return
	}

	c.JSON(http.StatusCreated, models.PreviewResponse{
		PreviewID: p.ID.String(),
		ProjectID: p.ProjectID.String(),
		StyleName: p.StyleName,
		Index:     p.BaseIndex,
		Content:   p.Content,
		ExpiresAt: p.ExpiresAt,
	})
}

func (h *RefinementsHandler) Commit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	previewID, err := uuid.Parse(c.Param("preview_id"))
	if err != nil {
		badRequest(c, "invalid preview id", nil)
		return
	}

	variation, err := h.designs.CommitPreview(c.Request.Context(), userID, previewID)
	if err != nil {
		respondError(c, "failed to commit refinement", err)
		return
	}
	c.JSON(http.StatusOK, variation)
}

func (h *RefinementsHandler) Discard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	previewID, err := uuid.Parse(c.Param("preview_id"))
	if err != nil {
		badRequest(c, "invalid preview id", nil)
		return
	}

	if err := h.designs.DiscardPreview(c.Request.Context(), userID, previewID); err != nil {
		respondError(c, "failed to discard refinement", err)
		return
	}
	c.Status(http.StatusNoContent)
}
