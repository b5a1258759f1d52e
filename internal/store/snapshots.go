package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"interior-design-backend/internal/models"
)

const (
	KeyAppState  = "app_state"
	KeyProjects  = "projects"
	KeyFavorites = "favorites"
)

//go:embed seed/*.json
var seedFS embed.FS

// Snapshots reads and writes the three per-user collections. Each write replaces
// the whole collection; reads of a missing record fall back to the bundled seed.
type Snapshots struct {
	kv KV
}

func NewSnapshots(kv KV) *Snapshots {
	return &Snapshots{kv: kv}
}

func (s *Snapshots) State(ctx context.Context, user string) (models.AppState, error) {
	var state models.AppState
	err := s.load(ctx, user, KeyAppState, &state)
	return state, err
}

func (s *Snapshots) SaveState(ctx context.Context, user string, state models.AppState) error {
	return s.save(ctx, user, KeyAppState, state)
}

func (s *Snapshots) Projects(ctx context.Context, user string) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.load(ctx, user, KeyProjects, &projects)
	return projects, err
}

func (s *Snapshots) SaveProjects(ctx context.Context, user string, projects []models.Project) error {
	if projects == nil {
		projects = []models.Project{}
	}
	return s.save(ctx, user, KeyProjects, projects)
}

func (s *Snapshots) Favorites(ctx context.Context, user string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	err := s.load(ctx, user, KeyFavorites, &favorites)
	return favorites, err
}

func (s *Snapshots) SaveFavorites(ctx context.Context, user string, favorites []models.Favorite) error {
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	return s.save(ctx, user, KeyFavorites, favorites)
}

// Reset clears every record of a user so the next read returns seed data.
func (s *Snapshots) Reset(ctx context.Context, user string) error {
	for _, key := range []string{KeyAppState, KeyProjects, KeyFavorites} {
		if err := s.kv.Clear(ctx, user, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *Snapshots) load(ctx context.Context, user, key string, out any) error {
	raw, err := s.kv.Get(ctx, user, key)
	if errors.Is(err, ErrNotFound) {
		raw, err = seedFS.ReadFile("seed/" + key + ".json")
		if err != nil {
			return fmt.Errorf("failed to read seed %s: %w", key, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Snapshots) save(ctx context.Context, user, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, user, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
