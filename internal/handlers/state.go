package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

type StateHandler struct {
	designs *services.DesignService
}

func NewStateHandler(designs *services.DesignService) *StateHandler {
	return &StateHandler{designs: designs}
}

func (h *StateHandler) GetState(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	state, err := h.designs.GetState(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to load state", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *StateHandler) SaveState(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	state := models.AppState{CurrentView: req.CurrentView}
	if req.CurrentProjectID != nil {
		id, err := uuid.Parse(*req.CurrentProjectID)
		if err != nil {
			badRequest(c, "invalid project id", err)
			return
		}
		state.CurrentProjectID = &id
	}

	saved, err := h.designs.SaveState(c.Request.Context(), userID, state)
	if err != nil {
		respondError(c, "failed to save state", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
