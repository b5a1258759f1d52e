package models

import (
	"time"

	"github.com/google/uuid"
)

type FurnitureItem struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Link        string `json:"link" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"required"`
}

// StyleDetails is the descriptive half of a design: text, palette and furniture.
type StyleDetails struct {
	Description              string          `json:"description"`
	ColorPalette             []string        `json:"color_palette"`
	FurnitureRecommendations []FurnitureItem `json:"furniture_recommendations"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Iteration is one committed refinement. Immutable once created.
type Iteration struct {
	Instruction              string          `json:"instruction"`
	Image                    ImagePayload    `json:"image"`
	Description              string          `json:"description"`
	ColorPalette             []string        `json:"color_palette"`
	FurnitureRecommendations []FurnitureItem `json:"furniture_recommendations"`
	CreatedAt                time.Time       `json:"created_at"`
}

type StyleVariation struct {
	StyleName                string          `json:"style_name"`
	Description              string          `json:"description"`
	ColorPalette             []string        `json:"color_palette"`
	FurnitureRecommendations []FurnitureItem `json:"furniture_recommendations"`
	Image                    ImagePayload    `json:"image"`
	Iterations               []Iteration     `json:"iterations"`
	Comments                 []Comment       `json:"comments"`
}

// VersionContent is what a single version of a variation shows.
type VersionContent struct {
	Index                    int             `json:"index"`
	Instruction              string          `json:"instruction,omitempty"`
	Image                    ImagePayload    `json:"image"`
	Description              string          `json:"description"`
	ColorPalette             []string        `json:"color_palette"`
	FurnitureRecommendations []FurnitureItem `json:"furniture_recommendations"`
}

// Snapshot copies the content into a standalone variation with no history or comments.
func (c VersionContent) Snapshot(styleName string) StyleVariation {
	return StyleVariation{
		StyleName:                styleName,
		Description:              c.Description,
		ColorPalette:             append([]string(nil), c.ColorPalette...),
		FurnitureRecommendations: append([]FurnitureItem(nil), c.FurnitureRecommendations...),
		Image:                    c.Image.Clone(),
		Iterations:               []Iteration{},
		Comments:                 []Comment{},
	}
}

type SlotStatus string

const (
	SlotPending   SlotStatus = "pending"
	SlotCompleted SlotStatus = "completed"
	SlotFailed    SlotStatus = "failed"
)

// GenerationSlot tracks background generation of one style for a project.
type GenerationSlot struct {
	StyleName   string     `json:"style_name"`
	AspectRatio string     `json:"aspect_ratio"`
	Status      SlotStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Project struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	OriginalImage ImagePayload     `json:"original_image"`
	Analysis      string           `json:"analysis"`
	Variations    []StyleVariation `json:"variations"`
	Slots         []GenerationSlot `json:"slots"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Variation returns the variation with the given style name.
func (p *Project) Variation(styleName string) (*StyleVariation, bool) {
	for i := range p.Variations {
		if p.Variations[i].StyleName == styleName {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// PutVariation inserts or replaces a variation, keeping style names unique.
func (p *Project) PutVariation(v StyleVariation) {
	if existing, ok := p.Variation(v.StyleName); ok {
		*existing = v
		return
	}
	p.Variations = append(p.Variations, v)
}

// Slot returns the generation slot for a style.
func (p *Project) Slot(styleName string) (*GenerationSlot, bool) {
	for i := range p.Slots {
		if p.Slots[i].StyleName == styleName {
			return &p.Slots[i], true
		}
	}
	return nil, false
}

// PutSlot inserts or replaces the slot for a style.
func (p *Project) PutSlot(s GenerationSlot) {
	if existing, ok := p.Slot(s.StyleName); ok {
		*existing = s
		return
	}
	p.Slots = append(p.Slots, s)
}

type Favorite struct {
	ID           uuid.UUID      `json:"id"`
	ProjectID    uuid.UUID      `json:"project_id"`
	ProjectName  string         `json:"project_name"`
	StyleName    string         `json:"style_name"`
	VersionIndex int            `json:"version_index"`
	CreatedAt    time.Time      `json:"created_at"`
	Variation    StyleVariation `json:"variation"`
}

// AppState is the navigation record kept per user.
type AppState struct {
	CurrentView      string     `json:"current_view"`
	CurrentProjectID *uuid.UUID `json:"current_project_id,omitempty"`
}

// Refinement is an uncommitted edit result: the new image and its regenerated details.
type Refinement struct {
	Image   ImagePayload `json:"image"`
	Details StyleDetails `json:"details"`
}
