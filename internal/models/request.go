package models

type RenameProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type RetryStyleRequest struct {
	AspectRatio string `json:"aspect_ratio,omitempty" example:"1:1"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type PreviewRequest struct {
	// Index of the version the instruction applies to (0 = base image). Omitted means the latest.
	Index       *int   `json:"index,omitempty" binding:"omitempty,min=0"`
	Instruction string `json:"instruction" binding:"required" example:"add a wool rug"`
}

type StoryRequest struct {
	Index   int    `json:"index" binding:"min=0"`
	Context string `json:"context,omitempty"`
}

type ContinueStoryRequest struct {
	Index   int           `json:"index" binding:"min=0"`
	Context string        `json:"context,omitempty"`
	History []ChatMessage `json:"history" binding:"required,dive"`
}

type ChatRequest struct {
	History []ChatMessage `json:"history" binding:"required,min=1,dive"`
}

type FavoriteRequest struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	StyleName string `json:"style_name" binding:"required"`
	Index     int    `json:"index" binding:"min=0"`
}

type StateRequest struct {
	CurrentView      string  `json:"current_view" binding:"required"`
	CurrentProjectID *string `json:"current_project_id,omitempty" binding:"omitempty,uuid"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
