package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"interior-design-backend/internal/history"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
	"interior-design-backend/internal/store"
)

const user = "user-1"

func createProject(t *testing.T, f *fixture, styles ...string) models.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), user, services.CreateProjectInput{
		Name:        "Living room",
		Image:       roomPhoto(),
		Styles:      styles,
		AspectRatio: "1:1",
	})
	require.NoError(t, err)
	f.svc.Wait()
	return p
}

func TestCreateProject_GeneratesStylesInBackground(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	created := createProject(t, f, "Modern", "Boho", "modern", "Japandi")

	require.Len(t, created.Slots, 3)
	for _, slot := range created.Slots {
		assert.Equal(t, models.SlotPending, slot.Status)
	}
	assert.NotEmpty(t, created.Analysis)

	got, err := f.svc.GetProject(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Variations, 3)
	for _, slot := range got.Slots {
		assert.Equal(t, models.SlotCompleted, slot.Status, slot.StyleName)
	}
	v, ok := got.Variation("Boho")
	require.True(t, ok)
	assert.Empty(t, v.Iterations)
	assert.Equal(t, created.Analysis, f.gen.roomFor("Boho"))
}

func TestCreateProject_DefaultsAndValidation(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	p, err := f.svc.CreateProject(ctx, user, services.CreateProjectInput{Image: roomPhoto()})
	require.NoError(t, err)
	f.svc.Wait()
	assert.NotEmpty(t, p.Name)
	assert.Len(t, p.Slots, len(services.DefaultStyles))
	assert.Equal(t, services.DefaultAspectRatio, p.Slots[0].AspectRatio)

	_, err = f.svc.CreateProject(ctx, user, services.CreateProjectInput{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.CreateProject(ctx, user, services.CreateProjectInput{Image: roomPhoto(), AspectRatio: "7:5"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCreateProject_AnalysisFailureCreatesNothing(t *testing.T) {
	f := newFixture(false)
	f.gen.analyzeErr = errQuota

	_, err := f.svc.CreateProject(context.Background(), user, services.CreateProjectInput{Image: roomPhoto()})

	assert.ErrorIs(t, err, errQuota)
	projects, err := f.svc.ListProjects(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProject_StyleFailuresAreIndependent(t *testing.T) {
	f := newFixture(false)
	f.gen.failStyle("Industrial", errQuota)

	p := createProject(t, f, "Modern", "Industrial")

	got, err := f.svc.GetProject(context.Background(), user, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Variations, 1)

	failed, ok := got.Slot("Industrial")
	require.True(t, ok)
	assert.Equal(t, models.SlotFailed, failed.Status)
	assert.Equal(t, "quota_exceeded", failed.ErrorKind)
	assert.NotEmpty(t, failed.Error)

	done, ok := got.Slot("Modern")
	require.True(t, ok)
	assert.Equal(t, models.SlotCompleted, done.Status)
}

func TestCreateProject_RespectsConcurrencyLimit(t *testing.T) {
	f := newFixture(false)
	f.gen.styleDelay = 20 * time.Millisecond

	createProject(t, f, "A", "B", "C", "D", "E")

	assert.LessOrEqual(t, f.gen.maxRunning.Load(), int32(2))
}

func TestRetryStyle(t *testing.T) {
	f := newFixture(true)
	f.gen.failStyle("Industrial", errQuota)
	ctx := context.Background()
	p := createProject(t, f, "Modern", "Industrial")

	_, err := f.svc.RetryStyle(ctx, user, p.ID, "Modern", "")
	assert.ErrorIs(t, err, services.ErrAlreadyExists)

	f.gen.failStyle("Industrial", nil)
	updated, err := f.svc.RetryStyle(ctx, user, p.ID, "Industrial", "")
	require.NoError(t, err)
	slot, _ := updated.Slot("Industrial")
	assert.Equal(t, models.SlotPending, slot.Status)
	assert.Equal(t, "1:1", slot.AspectRatio)
	f.svc.Wait()

	got, err := f.svc.GetProject(ctx, user, p.ID)
	require.NoError(t, err)
	_, ok := got.Variation("Industrial")
	assert.True(t, ok)
	assert.Equal(t, p.Analysis, f.gen.roomFor("Industrial"))

	_, err = f.svc.RetryStyle(ctx, user, uuid.New(), "Industrial", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestImagesAreOffloaded(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	p := createProject(t, f, "Modern")

	assert.False(t, p.OriginalImage.Present())
	assert.True(t, p.OriginalImage.Stored())

	got, err := f.svc.GetProject(ctx, user, p.ID)
	require.NoError(t, err)
	v, _ := got.Variation("Modern")
	assert.False(t, v.Image.Present())
	assert.NotEmpty(t, v.Image.URL)
	assert.Equal(t, 2, f.images.count())

	_, err = f.svc.PreviewRefinement(ctx, user, p.ID, "Modern", nil, "add a lamp")
	require.NoError(t, err)
	require.Len(t, f.gen.refinedFrom, 1)
	assert.Equal(t, []byte("Modern"), f.gen.refinedFrom[0].Data)
}

func TestRenameAndComment(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	p := createProject(t, f, "Modern")

	renamed, err := f.svc.RenameProject(ctx, user, p.ID, "  Den ")
	require.NoError(t, err)
	assert.Equal(t, "Den", renamed.Name)

	_, err = f.svc.RenameProject(ctx, user, p.ID, " ")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	c, err := f.svc.AddComment(ctx, user, p.ID, "Modern", "love the rug")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)

	_, err = f.svc.AddComment(ctx, user, p.ID, "Gothic", "hm")
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, _ := f.svc.GetProject(ctx, user, p.ID)
	v, _ := got.Variation("Modern")
	require.Len(t, v.Comments, 1)
	assert.Equal(t, "love the rug", v.Comments[0].Text)
}

func TestDeleteProject_Cascades(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	p := createProject(t, f, "Modern")
	other := createProject(t, f, "Modern")

	_, err := f.svc.AddFavorite(ctx, user, p.ID, "Modern", 0)
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, user, other.ID, "Modern", 0)
	require.NoError(t, err)
	_, err = f.svc.SaveState(ctx, user, models.AppState{CurrentView: "project", CurrentProjectID: &p.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, user, p.ID))

	_, err = f.svc.GetProject(ctx, user, p.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	favorites, err := f.svc.ListFavorites(ctx, user)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, other.ID, favorites[0].ProjectID)

	state, err := f.svc.GetState(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, state.CurrentProjectID)

	assert.Equal(t, []uuid.UUID{p.ID}, f.images.deleted)
	assert.ErrorIs(t, f.svc.DeleteProject(ctx, user, p.ID), services.ErrNotFound)
}

func TestDeleteProject_FailedWriteLeavesEverything(t *testing.T) {
	diskFull := errors.New("disk full")

	for _, key := range []string{store.KeyFavorites, store.KeyProjects} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(true)
			ctx := context.Background()
			p := createProject(t, f, "Modern")
			_, err := f.svc.AddFavorite(ctx, user, p.ID, "Modern", 0)
			require.NoError(t, err)

			f.kv.failSet(key, diskFull)
			err = f.svc.DeleteProject(ctx, user, p.ID)
			assert.ErrorIs(t, err, diskFull)
			f.kv.failSet(key, nil)

			_, err = f.svc.GetProject(ctx, user, p.ID)
			assert.NoError(t, err)
			favorites, err := f.svc.ListFavorites(ctx, user)
			require.NoError(t, err)
			require.Len(t, favorites, 1)
			assert.Equal(t, p.ID, favorites[0].ProjectID)
			assert.Empty(t, f.images.deleted)

			require.NoError(t, f.svc.DeleteProject(ctx, user, p.ID))
			favorites, err = f.svc.ListFavorites(ctx, user)
			require.NoError(t, err)
			assert.Empty(t, favorites)
		})
	}
}

func TestFavorites_Uniqueness(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	p := createProject(t, f, "Modern")

	fav, err := f.svc.AddFavorite(ctx, user, p.ID, "Modern", 0)
	require.NoError(t, err)
	assert.Equal(t, "Living room", fav.ProjectName)
	assert.Empty(t, fav.Variation.Iterations)

	before, err := f.svc.ListFavorites(ctx, user)
	require.NoError(t, err)

	_, err = f.svc.AddFavorite(ctx, user, p.ID, "Modern", 0)
	assert.ErrorIs(t, err, services.ErrAlreadyExists)

	after, err := f.svc.ListFavorites(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.svc.AddFavorite(ctx, user, p.ID, "Modern", 3)
	assert.ErrorIs(t, err, services.ErrAlreadyExists)

	require.NoError(t, f.svc.RemoveFavorite(ctx, user, fav.ID))
	_, err = f.svc.AddFavorite(ctx, user, p.ID, "Modern", 3)
	assert.ErrorIs(t, err, history.ErrIndexOutOfRange)
	assert.ErrorIs(t, f.svc.RemoveFavorite(ctx, user, fav.ID), services.ErrNotFound)
}

func TestFavorite_SnapshotsSelectedVersion(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	p := createProject(t, f, "Modern")

	prev, err := f.svc.PreviewRefinement(ctx, user, p.ID, "Modern", nil, "add a rug")
	require.NoError(t, err)
	_, err = f.svc.CommitPreview(ctx, user, prev.ID)
	require.NoError(t, err)

	fav, err := f.svc.AddFavorite(ctx, user, p.ID, "Modern", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, fav.VersionIndex)
	assert.Equal(t, []byte("add a rug"), fav.Variation.Image.Data)
	assert.Empty(t, fav.Variation.Iterations)
	assert.Empty(t, fav.Variation.Comments)
}

func TestState(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	state, err := f.svc.GetState(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "upload", state.CurrentView)

	missing := uuid.New()
	_, err = f.svc.SaveState(ctx, user, models.AppState{CurrentView: "project", CurrentProjectID: &missing})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = f.svc.SaveState(ctx, user, models.AppState{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = f.svc.SaveState(ctx, user, models.AppState{CurrentView: "favorites"})
	require.NoError(t, err)
	state, err = f.svc.GetState(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "favorites", state.CurrentView)
}

func TestUsersAreIsolated(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	p := createProject(t, f, "Modern")

	_, err := f.svc.GetProject(ctx, "someone-else", p.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	prev, err := f.svc.PreviewRefinement(ctx, user, p.ID, "Modern", nil, "x")
	require.NoError(t, err)
	_, err = f.svc.CommitPreview(ctx, "someone-else", prev.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAnalyzeAndChat(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	caption, err := f.svc.AnalyzeImage(ctx, roomPhoto())
	require.NoError(t, err)
	assert.NotEmpty(t, caption)

	_, err = f.svc.AnalyzeImage(ctx, models.ImagePayload{})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	parts, err := f.svc.Chat(ctx, []models.ChatMessage{{Role: models.RoleUser, Text: "hi"}})
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = f.svc.Chat(ctx, nil)
	assert.True(t, errors.Is(err, services.ErrInvalidInput))
}
