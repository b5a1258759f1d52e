package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

// AssistantHandler serves the text features: stories, quick analysis and chat.
type AssistantHandler struct {
	designs *services.DesignService
}

func NewAssistantHandler(designs *services.DesignService) *AssistantHandler {
	return &AssistantHandler{designs: designs}
}

func (h *AssistantHandler) GenerateStory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.StoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request", err)
			return
		}
	}

	text, err := h.designs.GenerateStory(c.Request.Context(), userID, projectID, c.Param("style"), req.Index, req.Context)
	if err != nil {
		respondError(c, "failed to generate story", err)
		return
	}
	c.JSON(http.StatusOK, models.TextResponse{Text: text})
}

func (h *AssistantHandler) ContinueStory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.ContinueStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	text, err := h.designs.ContinueStory(c.Request.Context(), userID, projectID, c.Param("style"), req.Index, req.Context, req.History)
	if err != nil {
		respondError(c, "failed to continue story", err)
		return
	}
	c.JSON(http.StatusOK, models.TextResponse{Text: text})
}

// Analyze godoc
// @Summary     Caption a room photo
// @Tags        assistant
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Room photo"
// @Success     200 {object} models.TextResponse
// @Router      /analyze [post]
func (h *AssistantHandler) Analyze(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	image, err := readImage(c, "image")
	if err != nil {
		badRequest(c, "invalid image", err)
		return
	}

	text, err := h.designs.AnalyzeImage(c.Request.Context(), image)
	if err != nil {
		respondError(c, "failed to analyze image", err)
		return
	}
	c.JSON(http.StatusOK, models.TextResponse{Text: text})
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	parts, err := h.designs.Chat(c.Request.Context(), req.History)
	if err != nil {
		respondError(c, "chat failed", err)
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Parts: parts})
}
