package models

import "time"

type ProjectSummary struct {
	ID            string    `json:"project_id"`
	Name          string    `json:"name"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	StyleCount    int       `json:"style_count"`
	PendingStyles int       `json:"pending_styles"`
	FailedStyles  int       `json:"failed_styles"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type PreviewResponse struct {
	PreviewID string         `json:"preview_id"`
	ProjectID string         `json:"project_id"`
	StyleName string         `json:"style_name"`
	Index     int            `json:"index"`
	Content   VersionContent `json:"content"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type ChatResponse struct {
	Parts []ChatPart `json:"parts"`
}

type FavoriteListResponse struct {
	Favorites []Favorite `json:"favorites"`
}

type StyleOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StylesResponse struct {
	Styles       []StyleOption `json:"styles"`
	AspectRatios []string      `json:"aspect_ratios"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
