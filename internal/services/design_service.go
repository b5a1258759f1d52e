package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"interior-design-backend/internal/gateway"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/store"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
)

// Generator is the set of generation calls the service makes. *gateway.Gateway implements it.
type Generator interface {
	AnalyzeRoom(ctx context.Context, image models.ImagePayload) (string, error)
	AnalyzeRoomDetailed(ctx context.Context, image models.ImagePayload) (string, error)
	GenerateStyleVariation(ctx context.Context, image models.ImagePayload, roomDescription, styleName, aspectRatio string) (models.StyleVariation, error)
	RefineDesign(ctx context.Context, image models.ImagePayload, instruction, styleName string) (models.Refinement, error)
	GenerateStory(ctx context.Context, image models.ImagePayload, styleName, roomContext string) (string, error)
	ContinueStory(ctx context.Context, history []models.ChatMessage, image models.ImagePayload, styleName, roomContext string) (string, error)
	Chat(ctx context.Context, history []models.ChatMessage) ([]models.ChatPart, error)
}

type Options struct {
	// Images is optional; without it image bytes are kept inside the snapshots.
	Images           ImageStore
	StyleConcurrency int
	PreviewTTL       time.Duration
	Logger           logrus.FieldLogger
}

// DesignService runs every user-facing operation. Mutations for one user are
// serialized and each one rewrites the affected collections in full.
type DesignService struct {
	gen         Generator
	snaps       *store.Snapshots
	images      ImageStore
	previews    *previewCache
	concurrency int
	log         logrus.FieldLogger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	bg     context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

func NewDesignService(gen Generator, snaps *store.Snapshots, opts Options) *DesignService {
	if opts.StyleConcurrency < 1 {
		opts.StyleConcurrency = 3
	}
	if opts.PreviewTTL <= 0 {
		opts.PreviewTTL = 30 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	bg, cancel := context.WithCancel(context.Background())
	return &DesignService{
		gen:         gen,
		snaps:       snaps,
		images:      opts.Images,
		previews:    newPreviewCache(opts.PreviewTTL),
		concurrency: opts.StyleConcurrency,
		log:         opts.Logger,
		locks:       make(map[string]*sync.Mutex),
		bg:          bg,
		cancel:      cancel,
	}
}

// Wait blocks until all background style generation has finished.
func (s *DesignService) Wait() {
	s.jobs.Wait()
}

// Close cancels background generation and waits for it to stop.
func (s *DesignService) Close() {
	s.cancel()
	s.jobs.Wait()
}

func (s *DesignService) lock(userID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// updateProject applies fn to one project under the user lock and saves the collection.
func (s *DesignService) updateProject(ctx context.Context, userID string, projectID uuid.UUID, fn func(p *models.Project) error) (models.Project, error) {
	unlock := s.lock(userID)
	defer unlock()

	projects, err := s.snaps.Projects(ctx, userID)
	if err != nil {
		return models.Project{}, err
	}
	i := indexOfProject(projects, projectID)
	if i < 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	if err := fn(&projects[i]); err != nil {
		return models.Project{}, err
	}
	projects[i] = persistable(projects[i])

	if err := s.snaps.SaveProjects(ctx, userID, projects); err != nil {
		return models.Project{}, err
	}
	return projects[i], nil
}

func indexOfProject(projects []models.Project, id uuid.UUID) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

type CreateProjectInput struct {
	Name        string
	Image       models.ImagePayload
	Styles      []string
	AspectRatio string
}

// CreateProject analyzes the room, saves the project with one pending slot per style
// and starts generating the styles in the background. A failed analysis creates nothing.
func (s *DesignService) CreateProject(ctx context.Context, userID string, in CreateProjectInput) (models.Project, error) {
	if !in.Image.Present() {
		return models.Project{}, fmt.Errorf("%w: room image is required", ErrInvalidInput)
	}
	aspect := in.AspectRatio
	if aspect == "" {
		aspect = DefaultAspectRatio
	}
	if !validAspectRatio(aspect) {
		return models.Project{}, fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidInput, aspect)
	}
	styles := uniqueStyles(in.Styles)
	if len(styles) == 0 {
		styles = append([]string(nil), DefaultStyles...)
	}

	analysis, err := s.gen.AnalyzeRoomDetailed(ctx, in.Image)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to analyze room: %w", err)
	}

	now := time.Now().UTC()
	project := models.Project{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(in.Name),
		Analysis:   analysis,
		Variations: []models.StyleVariation{},
		CreatedAt:  now,
	}
	if project.Name == "" {
		project.Name = "Room " + now.Format("Jan 2 15:04")
	}

	original, err := s.offload(userID, project.ID, "original", in.Image)
	if err != nil {
		return models.Project{}, err
	}
	project.OriginalImage = original
	for _, style := range styles {
		project.Slots = append(project.Slots, models.GenerationSlot{
			StyleName:   style,
			AspectRatio: aspect,
			Status:      models.SlotPending,
			UpdatedAt:   now,
		})
	}

	unlock := s.lock(userID)
	projects, err := s.snaps.Projects(ctx, userID)
	if err == nil {
		projects = append([]models.Project{persistable(project)}, projects...)
		err = s.snaps.SaveProjects(ctx, userID, projects)
	}
	unlock()
	if err != nil {
		return models.Project{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "project_id": project.ID, "styles": styles}).Info("project created")
	s.generateStyles(userID, project.ID, in.Image, analysis, styles, aspect)

	return persistable(project), nil
}

func uniqueStyles(styles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range styles {
		st = strings.TrimSpace(st)
		if st == "" || seen[strings.ToLower(st)] {
			continue
		}
		seen[strings.ToLower(st)] = true
		out = append(out, st)
	}
	return out
}

// generateStyles runs one background job per style, at most s.concurrency at a time.
// Each style settles its own slot; one failure does not stop the others.
// analysis describes the room so every style redesigns the uploaded space.
func (s *DesignService) generateStyles(userID string, projectID uuid.UUID, image models.ImagePayload, analysis string, styles []string, aspectRatio string) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()

		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for _, style := range styles {
			g.Go(func() error {
				s.generateStyle(s.bg, userID, projectID, image, analysis, style, aspectRatio)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (s *DesignService) generateStyle(ctx context.Context, userID string, projectID uuid.UUID, image models.ImagePayload, analysis, style, aspectRatio string) {
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID, "style": style})
	start := time.Now()

	variation, err := s.gen.GenerateStyleVariation(ctx, image, analysis, style, aspectRatio)
	if err == nil {
		variation.Image, err = s.offload(userID, projectID, slug(style)+"-0", variation.Image)
	}

	_, saveErr := s.updateProject(context.Background(), userID, projectID, func(p *models.Project) error {
		slot := models.GenerationSlot{StyleName: style, AspectRatio: aspectRatio, UpdatedAt: time.Now().UTC()}
		if err != nil {
			slot.Status = models.SlotFailed
			slot.Error = err.Error()
			slot.ErrorKind = string(gateway.KindOf(err))
		} else {
			slot.Status = models.SlotCompleted
			p.PutVariation(variation)
		}
		p.PutSlot(slot)
		return nil
	})

	switch {
	case saveErr != nil:
		log.WithError(saveErr).Warn("dropping generated style")
	case err != nil:
		log.WithError(err).WithField("kind", gateway.KindOf(err)).Error("style generation failed")
	default:
		log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Info("style generated")
	}
}

// RetryStyle regenerates one style that failed or was never requested.
func (s *DesignService) RetryStyle(ctx context.Context, userID string, projectID uuid.UUID, style, aspectRatio string) (models.Project, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		return models.Project{}, fmt.Errorf("%w: style name is required", ErrInvalidInput)
	}
	if aspectRatio != "" && !validAspectRatio(aspectRatio) {
		return models.Project{}, fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidInput, aspectRatio)
	}

	var original models.ImagePayload
	var analysis string
	project, err := s.updateProject(ctx, userID, projectID, func(p *models.Project) error {
		if _, ok := p.Variation(style); ok {
			return fmt.Errorf("style %q: %w", style, ErrAlreadyExists)
		}
		slot, ok := p.Slot(style)
		if ok && slot.Status == models.SlotPending {
			return fmt.Errorf("style %q is still generating: %w", style, ErrConflict)
		}
		if aspectRatio == "" {
			aspectRatio = DefaultAspectRatio
			if ok && slot.AspectRatio != "" {
				aspectRatio = slot.AspectRatio
			}
		}
		original = p.OriginalImage
		analysis = p.Analysis
		p.PutSlot(models.GenerationSlot{
			StyleName:   style,
			AspectRatio: aspectRatio,
			Status:      models.SlotPending,
			UpdatedAt:   time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}

	image, err := s.hydrate(original)
	if err != nil {
		s.failSlot(userID, projectID, style, aspectRatio, err)
		return models.Project{}, err
	}

	s.generateStyles(userID, projectID, image, analysis, []string{style}, aspectRatio)
	return project, nil
}

func (s *DesignService) failSlot(userID string, projectID uuid.UUID, style, aspectRatio string, cause error) {
	_, err := s.updateProject(context.Background(), userID, projectID, func(p *models.Project) error {
		p.PutSlot(models.GenerationSlot{
			StyleName:   style,
			AspectRatio: aspectRatio,
			Status:      models.SlotFailed,
			Error:       cause.Error(),
			UpdatedAt:   time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to mark style as failed")
	}
}

func (s *DesignService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.snaps.Projects(ctx, userID)
}

func (s *DesignService) GetProject(ctx context.Context, userID string, projectID uuid.UUID) (models.Project, error) {
	projects, err := s.snaps.Projects(ctx, userID)
	if err != nil {
		return models.Project{}, err
	}
	i := indexOfProject(projects, projectID)
	if i < 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return projects[i], nil
}

func (s *DesignService) RenameProject(ctx context.Context, userID string, projectID uuid.UUID, name string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.updateProject(ctx, userID, projectID, func(p *models.Project) error {
		p.Name = name
		return nil
	})
}

// DeleteProject removes the project, every favorite taken from it and its stored images.
func (s *DesignService) DeleteProject(ctx context.Context, userID string, projectID uuid.UUID) error {
	unlock := s.lock(userID)
	defer unlock()

	projects, err := s.snaps.Projects(ctx, userID)
	if err != nil {
		return err
	}
	i := indexOfProject(projects, projectID)
	if i < 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	remaining := make([]models.Project, 0, len(projects)-1)
	remaining = append(remaining, projects[:i]...)
	remaining = append(remaining, projects[i+1:]...)

	favorites, err := s.snaps.Favorites(ctx, userID)
	if err != nil {
		return err
	}
	kept := make([]models.Favorite, 0, len(favorites))
	for _, f := range favorites {
		if f.ProjectID != projectID {
			kept = append(kept, f)
		}
	}

	// Favorites go first: if the project write then fails they are put back, so a
	// failed delete leaves both collections as they were.
	if err := s.snaps.SaveFavorites(ctx, userID, kept); err != nil {
		return err
	}
	if err := s.snaps.SaveProjects(ctx, userID, remaining); err != nil {
		if restoreErr := s.snaps.SaveFavorites(ctx, userID, favorites); restoreErr != nil {
			s.log.WithError(restoreErr).WithField("project_id", projectID).Error("failed to restore favorites")
		}
		return err
	}

	state, err := s.snaps.State(ctx, userID)
	if err == nil && state.CurrentProjectID != nil && *state.CurrentProjectID == projectID {
		state.CurrentProjectID = nil
		if err := s.snaps.SaveState(ctx, userID, state); err != nil {
			s.log.WithError(err).Warn("failed to reset navigation state")
		}
	}

	s.previews.dropProject(userID, projectID)
	if s.images != nil {
		if err := s.images.DeleteProject(userID, projectID); err != nil {
			s.log.WithError(err).WithField("project_id", projectID).Warn("failed to delete stored images")
		}
	}
	return nil
}

func (s *DesignService) AddComment(ctx context.Context, userID string, projectID uuid.UUID, style, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	comment := models.Comment{ID: uuid.New(), Text: text, CreatedAt: time.Now().UTC()}
	_, err := s.updateProject(ctx, userID, projectID, func(p *models.Project) error {
		v, ok := p.Variation(style)
		if !ok {
			return fmt.Errorf("style %q: %w", style, ErrNotFound)
		}
		v.Comments = append(v.Comments, comment)
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// AnalyzeImage returns a quick caption for an image that is not part of any project.
func (s *DesignService) AnalyzeImage(ctx context.Context, image models.ImagePayload) (string, error) {
	if !image.Present() {
		return "", fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	return s.gen.AnalyzeRoom(ctx, image)
}

func (s *DesignService) GetState(ctx context.Context, userID string) (models.AppState, error) {
	return s.snaps.State(ctx, userID)
}

func (s *DesignService) SaveState(ctx context.Context, userID string, state models.AppState) (models.AppState, error) {
	if strings.TrimSpace(state.CurrentView) == "" {
		return models.AppState{}, fmt.Errorf("%w: current view is required", ErrInvalidInput)
	}

	unlock := s.lock(userID)
	defer unlock()

	if state.CurrentProjectID != nil {
		projects, err := s.snaps.Projects(ctx, userID)
		if err != nil {
			return models.AppState{}, err
		}
		if indexOfProject(projects, *state.CurrentProjectID) < 0 {
			return models.AppState{}, fmt.Errorf("project %s: %w", *state.CurrentProjectID, ErrNotFound)
		}
	}
	if err := s.snaps.SaveState(ctx, userID, state); err != nil {
		return models.AppState{}, err
	}
	return state, nil
}
