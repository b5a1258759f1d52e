package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

type ProjectsHandler struct {
	designs *services.DesignService
}

func NewProjectsHandler(designs *services.DesignService) *ProjectsHandler {
	return &ProjectsHandler{designs: designs}
}

// CreateProject godoc
// @Summary     Create a project from a room photo
// @Description Analyzes the photo, saves the project and starts generating each requested style
// @Description in the background. Poll the project to see each style's slot settle.
// @Tags        projects
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image        formData file   true  "Room photo (jpeg, png or webp)"
// @Param       name         formData string false "Project name"
// @Param       styles       formData string false "Comma-separated style names"
// @Param       aspect_ratio formData string false "Aspect ratio, e.g. 4:3"
// @Success     202 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	image, err := readImage(c, "image")
	if err != nil {
		badRequest(c, "invalid image", err)
		return
	}

	var styles []string
	for _, v := range c.PostFormArray("styles") {
		styles = append(styles, strings.Split(v, ",")...)
	}

	project, err := h.designs.CreateProject(c.Request.Context(), userID, services.CreateProjectInput{
		Name:        c.PostForm("name"),
		Image:       image,
		Styles:      styles,
		AspectRatio: c.PostForm("aspect_ratio"),
	})
	if err != nil {
		respondError(c, "failed to create project", err)
		return
	}

	c.JSON(http.StatusAccepted, project)
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.designs.ListProjects(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "failed to list projects", err)
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = summarize(p)
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

func summarize(p models.Project) models.ProjectSummary {
	s := models.ProjectSummary{
		ID:           p.ID.String(),
		Name:         p.Name,
		ThumbnailURL: p.OriginalImage.URL,
		StyleCount:   len(p.Variations),
		CreatedAt:    p.CreatedAt,
	}
	for _, slot := range p.Slots {
		switch slot.Status {
		case models.SlotPending:
			s.PendingStyles++
		case models.SlotFailed:
			s.FailedStyles++
		}
	}
	return s
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	project, err := h.designs.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, "project not found", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectsHandler) RenameProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.RenameProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	project, err := h.designs.RenameProject(c.Request.Context(), userID, projectID, req.Name)
	if err != nil {
		respondError(c, "failed to rename project", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject godoc
// @Summary     Delete a project
// @Description Deletes the project, its favorites and its stored images
// @Tags        projects
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	if err := h.designs.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, "failed to delete project", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectsHandler) RetryStyle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.RetryStyleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request", err)
			return
		}
	}

	project, err := h.designs.RetryStyle(c.Request.Context(), userID, projectID, c.Param("style"), req.AspectRatio)
	if err != nil {
		respondError(c, "failed to retry style", err)
		return
	}
	c.JSON(http.StatusAccepted, project)
}

func (h *ProjectsHandler) GetVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid version index", err)
		return
	}

	content, err := h.designs.GetVersion(c.Request.Context(), userID, projectID, c.Param("style"), index)
	if err != nil {
		respondError(c, "failed to get version", err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *ProjectsHandler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	comment, err := h.designs.AddComment(c.Request.Context(), userID, projectID, c.Param("style"), req.Text)
	if err != nil {
		respondError(c, "failed to add comment", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
