package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"interior-design-backend/internal/history"
	"interior-design-backend/internal/models"
)

// Preview is a refinement waiting to be committed or discarded.
type Preview struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	StyleName string
	BaseIndex int
	Content   models.VersionContent
	ExpiresAt time.Time
}

func (s *DesignService) variation(ctx context.Context, userID string, projectID uuid.UUID, style string) (models.Project, models.StyleVariation, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return models.Project{}, models.StyleVariation{}, err
	}
	v, ok := project.Variation(style)
	if !ok {
		return models.Project{}, models.StyleVariation{}, fmt.Errorf("style %q: %w", style, ErrNotFound)
	}
	return project, *v, nil
}

func (s *DesignService) GetVersion(ctx context.Context, userID string, projectID uuid.UUID, style string, index int) (models.VersionContent, error) {
	_, v, err := s.variation(ctx, userID, projectID, style)
	if err != nil {
		return models.VersionContent{}, err
	}
	return history.SelectVersion(v, index)
}

// PreviewRefinement refines version index (the latest when index is nil) and keeps the
// result aside. Nothing in the project changes until CommitPreview.
func (s *DesignService) PreviewRefinement(ctx context.Context, userID string, projectID uuid.UUID, style string, index *int, instruction string) (Preview, error) {
	_, v, err := s.variation(ctx, userID, projectID, style)
	if err != nil {
		return Preview{}, err
	}

	at := history.Latest(v)
	if index != nil {
		at = *index
	}
	if _, err := history.SelectVersion(v, at); err != nil {
		return Preview{}, err
	}

	v, err = s.hydrateVersion(v, at)
	if err != nil {
		return Preview{}, err
	}

	candidate, err := history.PreviewRefinement(ctx, s.gen, v, at, instruction)
	if err != nil {
		return Preview{}, err
	}

	p := s.previews.put(userID, projectID, candidate)
	s.log.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID, "style": style, "index": at, "preview_id": p.ID}).Info("refinement previewed")

	return Preview{
		ID:        p.ID,
		ProjectID: projectID,
		StyleName: candidate.StyleName,
		BaseIndex: candidate.BaseIndex,
		Content:   candidate.Content(),
		ExpiresAt: p.ExpiresAt,
	}, nil
}

// CommitPreview makes a preview the newest version. Versions after the one the
// preview was made from are dropped.
func (s *DesignService) CommitPreview(ctx context.Context, userID string, previewID uuid.UUID) (models.StyleVariation, error) {
	p, ok := s.previews.get(userID, previewID)
	if !ok {
		return models.StyleVariation{}, fmt.Errorf("preview %s: %w", previewID, ErrNotFound)
	}

	candidate := p.Candidate
	name := fmt.Sprintf("%s-%d-%s", slug(candidate.StyleName), candidate.BaseIndex+1, previewID.String()[:8])
	img, err := s.offload(userID, p.ProjectID, name, candidate.Result.Image)
	if err != nil {
		return models.StyleVariation{}, err
	}
	candidate.Result.Image = img

	var committed models.StyleVariation
	var dropped []models.Iteration
	_, err = s.updateProject(ctx, userID, p.ProjectID, func(project *models.Project) error {
		v, ok := project.Variation(candidate.StyleName)
		if !ok {
			return fmt.Errorf("style %q: %w", candidate.StyleName, ErrNotFound)
		}
		updated, err := history.Commit(*v, candidate)
		if err != nil {
			return err
		}
		dropped = append([]models.Iteration(nil), v.Iterations[candidate.BaseIndex:]...)
		*v = updated
		committed = stripVariation(updated)
		return nil
	})
	if err != nil {
		return models.StyleVariation{}, err
	}

	s.previews.remove(userID, previewID)
	s.removeOrphans(ctx, userID, dropped)
	s.log.WithFields(logrus.Fields{"user_id": userID, "project_id": p.ProjectID, "style": candidate.StyleName, "version": candidate.BaseIndex + 1}).Info("refinement committed")
	return committed, nil
}

func (s *DesignService) DiscardPreview(ctx context.Context, userID string, previewID uuid.UUID) error {
	p, ok := s.previews.remove(userID, previewID)
	if !ok {
		return fmt.Errorf("preview %s: %w", previewID, ErrNotFound)
	}
	history.DiscardPreview(p.Candidate)
	return nil
}

// GenerateStory narrates the design shown at version index.
func (s *DesignService) GenerateStory(ctx context.Context, userID string, projectID uuid.UUID, style string, index int, roomContext string) (string, error) {
	project, image, err := s.versionImage(ctx, userID, projectID, style, index)
	if err != nil {
		return "", err
	}
	return s.gen.GenerateStory(ctx, image, style, storyContext(project, roomContext))
}

func (s *DesignService) ContinueStory(ctx context.Context, userID string, projectID uuid.UUID, style string, index int, roomContext string, transcript []models.ChatMessage) (string, error) {
	if len(transcript) == 0 {
		return "", fmt.Errorf("%w: story history is required", ErrInvalidInput)
	}
	project, image, err := s.versionImage(ctx, userID, projectID, style, index)
	if err != nil {
		return "", err
	}
	return s.gen.ContinueStory(ctx, transcript, image, style, storyContext(project, roomContext))
}

func (s *DesignService) Chat(ctx context.Context, transcript []models.ChatMessage) ([]models.ChatPart, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w: chat history is required", ErrInvalidInput)
	}
	return s.gen.Chat(ctx, transcript)
}

func (s *DesignService) versionImage(ctx context.Context, userID string, projectID uuid.UUID, style string, index int) (models.Project, models.ImagePayload, error) {
	project, v, err := s.variation(ctx, userID, projectID, style)
	if err != nil {
		return models.Project{}, models.ImagePayload{}, err
	}
	content, err := history.SelectVersion(v, index)
	if err != nil {
		return models.Project{}, models.ImagePayload{}, err
	}
	image, err := s.hydrate(content.Image)
	if err != nil {
		return models.Project{}, models.ImagePayload{}, err
	}
	return project, image, nil
}

func storyContext(project models.Project, extra string) string {
	if extra != "" {
		return extra
	}
	return project.Analysis
}
