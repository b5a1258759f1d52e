package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"interior-design-backend/internal/history"
	"interior-design-backend/internal/models"
)

// ImageStore offloads image bytes so snapshots only carry references.
type ImageStore interface {
	Save(userID string, projectID uuid.UUID, name string, img models.ImagePayload) (models.ImagePayload, error)
	Load(img models.ImagePayload) (models.ImagePayload, error)
	Delete(storagePath string) error
	DeleteProject(userID string, projectID uuid.UUID) error
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// offload uploads img when an image store is configured. Without one the bytes stay inline.
func (s *DesignService) offload(userID string, projectID uuid.UUID, name string, img models.ImagePayload) (models.ImagePayload, error) {
	if s.images == nil || !img.Present() || img.Stored() {
		return img, nil
	}
	saved, err := s.images.Save(userID, projectID, name, img)
	if err != nil {
		return img, fmt.Errorf("failed to store image %s: %w", name, err)
	}
	return saved, nil
}

// hydrate makes sure img holds bytes, fetching them from the image store if needed.
func (s *DesignService) hydrate(img models.ImagePayload) (models.ImagePayload, error) {
	if img.Present() {
		return img, nil
	}
	if s.images == nil || !img.Stored() {
		return img, history.ErrImageMissing
	}
	loaded, err := s.images.Load(img)
	if err != nil {
		return img, fmt.Errorf("failed to load image %s: %w", img.StoragePath, err)
	}
	return loaded, nil
}

// hydrateVersion returns a copy of v whose image at index holds bytes.
func (s *DesignService) hydrateVersion(v models.StyleVariation, index int) (models.StyleVariation, error) {
	if index == 0 {
		img, err := s.hydrate(v.Image)
		if err != nil {
			return v, err
		}
		v.Image = img
		return v, nil
	}
	if index < 0 || index > len(v.Iterations) {
		return v, nil
	}
	iterations := append([]models.Iteration(nil), v.Iterations...)
	img, err := s.hydrate(iterations[index-1].Image)
	if err != nil {
		return v, err
	}
	iterations[index-1].Image = img
	v.Iterations = iterations
	return v, nil
}

func stripStored(img models.ImagePayload) models.ImagePayload {
	if img.Stored() {
		return img.WithoutData()
	}
	return img
}

func stripVariation(v models.StyleVariation) models.StyleVariation {
	v.Image = stripStored(v.Image)
	if len(v.Iterations) > 0 {
		iterations := make([]models.Iteration, len(v.Iterations))
		for i, it := range v.Iterations {
			it.Image = stripStored(it.Image)
			iterations[i] = it
		}
		v.Iterations = iterations
	}
	return v
}

// persistable drops bytes that image storage already holds.
func persistable(p models.Project) models.Project {
	p.OriginalImage = stripStored(p.OriginalImage)
	if len(p.Variations) > 0 {
		variations := make([]models.StyleVariation, len(p.Variations))
		for i, v := range p.Variations {
			variations[i] = stripVariation(v)
		}
		p.Variations = variations
	}
	return p
}

// removeOrphans deletes stored images of iterations dropped by a commit. Images a
// favorite still points at are kept.
func (s *DesignService) removeOrphans(ctx context.Context, userID string, dropped []models.Iteration) {
	if s.images == nil || len(dropped) == 0 {
		return
	}

	favorites, err := s.snaps.Favorites(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("skipping orphaned image cleanup")
		return
	}
	referenced := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		referenced[f.Variation.Image.StoragePath] = true
	}

	for _, it := range dropped {
		path := it.Image.StoragePath
		if path == "" || referenced[path] {
			continue
		}
		if err := s.images.Delete(path); err != nil {
			s.log.WithError(err).WithField("storage_path", path).Warn("failed to delete orphaned image")
		}
	}
}
