// Package history implements the linear version model of a style variation:
// version 0 is the base design and version k is the k-th committed refinement.
// Committing an edit made from an earlier version drops every later version.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interior-design-backend/internal/models"
)

var (
	ErrIndexOutOfRange  = errors.New("version index out of range")
	ErrImageMissing     = errors.New("version has no image data")
	ErrEmptyInstruction = errors.New("instruction is empty")
)

// Refiner produces an edited image and fresh details for it.
type Refiner interface {
	RefineDesign(ctx context.Context, image models.ImagePayload, instruction, styleName string) (models.Refinement, error)
}

// Candidate is an uncommitted refinement, remembered together with the version it was made from.
type Candidate struct {
	StyleName   string            `json:"style_name"`
	BaseIndex   int               `json:"base_index"`
	Instruction string            `json:"instruction"`
	Result      models.Refinement `json:"result"`
}

// Content returns what the candidate would show once committed.
func (c Candidate) Content() models.VersionContent {
	return models.VersionContent{
		Index:                    c.BaseIndex + 1,
		Instruction:              c.Instruction,
		Image:                    c.Result.Image,
		Description:              c.Result.Details.Description,
		ColorPalette:             c.Result.Details.ColorPalette,
		FurnitureRecommendations: c.Result.Details.FurnitureRecommendations,
	}
}

// Latest is the index of the newest version.
func Latest(v models.StyleVariation) int {
	return len(v.Iterations)
}

func checkIndex(v models.StyleVariation, index int) error {
	if index < 0 || index > len(v.Iterations) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, index, len(v.Iterations))
	}
	return nil
}

// SelectVersion returns the content of version index.
func SelectVersion(v models.StyleVariation, index int) (models.VersionContent, error) {
	if err := checkIndex(v, index); err != nil {
		return models.VersionContent{}, err
	}
	if index == 0 {
		return models.VersionContent{
			Index:                    0,
			Image:                    v.Image,
			Description:              v.Description,
			ColorPalette:             v.ColorPalette,
			FurnitureRecommendations: v.FurnitureRecommendations,
		}, nil
	}
	it := v.Iterations[index-1]
	return models.VersionContent{
		Index:                    index,
		Instruction:              it.Instruction,
		Image:                    it.Image,
		Description:              it.Description,
		ColorPalette:             it.ColorPalette,
		FurnitureRecommendations: it.FurnitureRecommendations,
	}, nil
}

// PreviewRefinement refines the image shown at index. v is only read.
func PreviewRefinement(ctx context.Context, refiner Refiner, v models.StyleVariation, index int, instruction string) (Candidate, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return Candidate{}, ErrEmptyInstruction
	}
	current, err := SelectVersion(v, index)
	if err != nil {
		return Candidate{}, err
	}
	if !current.Image.Present() {
		return Candidate{}, fmt.Errorf("%w: %s version %d", ErrImageMissing, v.StyleName, index)
	}

	result, err := refiner.RefineDesign(ctx, current.Image, instruction, v.StyleName)
	if err != nil {
		return Candidate{}, err
	}

	return Candidate{
		StyleName:   v.StyleName,
		BaseIndex:   index,
		Instruction: instruction,
		Result:      result,
	}, nil
}

// CommitRefinement keeps versions 0..index of v and appends the candidate as version index+1.
// The returned variation shares no iteration slice with v; v itself is left untouched.
func CommitRefinement(v models.StyleVariation, index int, instruction string, candidate models.Refinement) (models.StyleVariation, error) {
	if err := checkIndex(v, index); err != nil {
		return models.StyleVariation{}, err
	}
	if !candidate.Image.Present() && !candidate.Image.Stored() {
		return models.StyleVariation{}, fmt.Errorf("%w: refinement result", ErrImageMissing)
	}

	iterations := make([]models.Iteration, index, index+1)
	copy(iterations, v.Iterations[:index])
	iterations = append(iterations, models.Iteration{
		Instruction:              strings.TrimSpace(instruction),
		Image:                    candidate.Image,
		Description:              candidate.Details.Description,
		ColorPalette:             append([]string(nil), candidate.Details.ColorPalette...),
		FurnitureRecommendations: append([]models.FurnitureItem(nil), candidate.Details.FurnitureRecommendations...),
		CreatedAt:                time.Now().UTC(),
	})

	out := v
	out.Iterations = iterations
	out.Comments = append([]models.Comment(nil), v.Comments...)
	if out.Comments == nil {
		out.Comments = []models.Comment{}
	}
	return out, nil
}

// Commit applies a previewed candidate at the version it was made from.
func Commit(v models.StyleVariation, c Candidate) (models.StyleVariation, error) {
	return CommitRefinement(v, c.BaseIndex, c.Instruction, c.Result)
}

// DiscardPreview drops a candidate. Nothing was written when it was made, so there is nothing to undo.
func DiscardPreview(Candidate) {}
