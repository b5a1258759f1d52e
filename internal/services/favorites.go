package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"interior-design-backend/internal/history"
	"interior-design-backend/internal/models"
)

// AddFavorite saves a copy of one version of a style. A project keeps at most one
// favorite per style; a second request fails with ErrAlreadyExists and changes nothing.
func (s *DesignService) AddFavorite(ctx context.Context, userID string, projectID uuid.UUID, style string, index int) (models.Favorite, error) {
	unlock := s.lock(userID)
	defer unlock()

	favorites, err := s.snaps.Favorites(ctx, userID)
	if err != nil {
		return models.Favorite{}, err
	}
	for _, f := range favorites {
		if f.ProjectID == projectID && f.StyleName == style {
			return models.Favorite{}, fmt.Errorf("favorite for %s/%s: %w", projectID, style, ErrAlreadyExists)
		}
	}

	projects, err := s.snaps.Projects(ctx, userID)
	if err != nil {
		return models.Favorite{}, err
	}
	i := indexOfProject(projects, projectID)
	if i < 0 {
		return models.Favorite{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	v, ok := projects[i].Variation(style)
	if !ok {
		return models.Favorite{}, fmt.Errorf("style %q: %w", style, ErrNotFound)
	}
	content, err := history.SelectVersion(*v, index)
	if err != nil {
		return models.Favorite{}, err
	}

	favorite := models.Favorite{
		ID:           uuid.New(),
		ProjectID:    projectID,
		ProjectName:  projects[i].Name,
		StyleName:    style,
		VersionIndex: index,
		CreatedAt:    time.Now().UTC(),
		Variation:    stripVariation(content.Snapshot(style)),
	}

	favorites = append([]models.Favorite{favorite}, favorites...)
	if err := s.snaps.SaveFavorites(ctx, userID, favorites); err != nil {
		return models.Favorite{}, err
	}
	return favorite, nil
}

func (s *DesignService) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	return s.snaps.Favorites(ctx, userID)
}

func (s *DesignService) RemoveFavorite(ctx context.Context, userID string, favoriteID uuid.UUID) error {
	unlock := s.lock(userID)
	defer unlock()

	favorites, err := s.snaps.Favorites(ctx, userID)
	if err != nil {
		return err
	}
	for i, f := range favorites {
		if f.ID == favoriteID {
			favorites = append(favorites[:i], favorites[i+1:]...)
			return s.snaps.SaveFavorites(ctx, userID, favorites)
		}
	}
	return fmt.Errorf("favorite %s: %w", favoriteID, ErrNotFound)
}
