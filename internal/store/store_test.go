package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"interior-design-backend/internal/database"
	"interior-design-backend/internal/logging"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/store"
)

func exerciseKV(t *testing.T, kv store.KV) {
	ctx := context.Background()
	ns := "user-" + uuid.NewString()

	_, err := kv.Get(ctx, ns, "projects")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set(ctx, ns, "projects", []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, ns, "projects", []byte(`[1,2]`)))

	got, err := kv.Get(ctx, ns, "projects")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))

	_, err = kv.Get(ctx, "other-"+ns, "projects")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Clear(ctx, ns, "projects"))
	_, err = kv.Get(ctx, ns, "projects")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Clear(ctx, ns, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, store.NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	value := []byte(`{"a":1}`)
	require.NoError(t, kv.Set(ctx, "u", "k", value))
	value[2] = 'X'

	got, err := kv.Get(ctx, "u", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestPostgresStore(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dbURL)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.NewMigrator(db, logging.Discard()).Run(ctx))
	exerciseKV(t, store.NewPostgresStore(db))
}

func TestSnapshots_SeedFallback(t *testing.T) {
	snaps := store.NewSnapshots(store.NewMemoryStore())
	ctx := context.Background()

	state, err := snaps.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "upload", state.CurrentView)
	assert.Nil(t, state.CurrentProjectID)

	projects, err := snaps.Projects(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	favorites, err := snaps.Favorites(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestSnapshots_RoundTripAndReset(t *testing.T) {
	snaps := store.NewSnapshots(store.NewMemoryStore())
	ctx := context.Background()

	id := uuid.New()
	project := models.Project{
		ID:   id,
		Name: "Living room",
		Variations: []models.StyleVariation{{
			StyleName:  "Modern",
			Iterations: []models.Iteration{{Instruction: "add a rug"}},
		}},
	}
	require.NoError(t, snaps.SaveProjects(ctx, "u1", []models.Project{project}))
	require.NoError(t, snaps.SaveState(ctx, "u1", models.AppState{CurrentView: "project", CurrentProjectID: &id}))

	projects, err := snaps.Projects(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "add a rug", projects[0].Variations[0].Iterations[0].Instruction)

	other, err := snaps.Projects(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, snaps.Reset(ctx, "u1"))
	state, err := snaps.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "upload", state.CurrentView)
}
