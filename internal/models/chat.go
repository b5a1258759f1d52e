package models

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type ChatMessage struct {
	Role string `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"required"`
}

type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatPart is one piece of a chat reply: either text or a list of web sources.
type ChatPart struct {
	Text    string   `json:"text,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}
