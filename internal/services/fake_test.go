package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"interior-design-backend/internal/gateway"
	"interior-design-backend/internal/logging"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
	"interior-design-backend/internal/store"
)

type fakeGenerator struct {
	mu          sync.Mutex
	analyzeErr  error
	styleErrs   map[string]error
	styleDelay  time.Duration
	refineCalls int
	refinedFrom []models.ImagePayload
	rooms       map[string]string
	storyImages []models.ImagePayload

	running    atomic.Int32
	maxRunning atomic.Int32
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{styleErrs: map[string]error{}, rooms: map[string]string{}}
}

func (f *fakeGenerator) failStyle(style string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.styleErrs, style)
		return
	}
	f.styleErrs[style] = err
}

// roomFor returns the room description the last generation of style received.
func (f *fakeGenerator) roomFor(style string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[style]
}

func (f *fakeGenerator) AnalyzeRoom(ctx context.Context, image models.ImagePayload) (string, error) {
	return "A compact living room.", nil
}

func (f *fakeGenerator) AnalyzeRoomDetailed(ctx context.Context, image models.ImagePayload) (string, error) {
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	return "A long, detailed description of a compact living room.", nil
}

func (f *fakeGenerator) GenerateStyleVariation(ctx context.Context, image models.ImagePayload, roomDescription, styleName, aspectRatio string) (models.StyleVariation, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		max := f.maxRunning.Load()
		if n <= max || f.maxRunning.CompareAndSwap(max, n) {
			break
		}
	}
	if f.styleDelay > 0 {
		time.Sleep(f.styleDelay)
	}

	f.mu.Lock()
	err := f.styleErrs[styleName]
	f.rooms[styleName] = roomDescription
	f.mu.Unlock()
	if err != nil {
		return models.StyleVariation{}, err
	}

	return models.StyleVariation{
		StyleName:    styleName,
		Description:  styleName + " design",
		ColorPalette: []string{"#1", "#2", "#3", "#4", "#5"},
		Image:        models.ImagePayload{MimeType: "image/jpeg", Data: []byte(styleName)},
		Iterations:   []models.Iteration{},
		Comments:     []models.Comment{},
	}, nil
}

func (f *fakeGenerator) RefineDesign(ctx context.Context, image models.ImagePayload, instruction, styleName string) (models.Refinement, error) {
	f.mu.Lock()
	f.refineCalls++
	f.refinedFrom = append(f.refinedFrom, image)
	f.mu.Unlock()
	return models.Refinement{
		Image:   models.ImagePayload{MimeType: "image/png", Data: []byte(instruction)},
		Details: models.StyleDetails{Description: instruction, ColorPalette: []string{"#a"}},
	}, nil
}

func (f *fakeGenerator) GenerateStory(ctx context.Context, image models.ImagePayload, styleName, roomContext string) (string, error) {
	f.mu.Lock()
	f.storyImages = append(f.storyImages, image)
	f.mu.Unlock()
	return "Once upon a " + styleName + " morning.", nil
}

func (f *fakeGenerator) ContinueStory(ctx context.Context, history []models.ChatMessage, image models.ImagePayload, styleName, roomContext string) (string, error) {
	return "And then the evening came.", nil
}

func (f *fakeGenerator) Chat(ctx context.Context, history []models.ChatMessage) ([]models.ChatPart, error) {
	return []models.ChatPart{{Text: "Try linen curtains."}}, nil
}

// memoryImages is an ImageStore keeping objects in a map.
type memoryImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []uuid.UUID
}

func newMemoryImages() *memoryImages {
	return &memoryImages{objects: map[string][]byte{}}
}

func (m *memoryImages) Save(userID string, projectID uuid.UUID, name string, img models.ImagePayload) (models.ImagePayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := userID + "/" + projectID.String() + "/" + name + "." + img.Extension()
	m.objects[path] = append([]byte(nil), img.Data...)
	img.StoragePath = path
	img.URL = "https://cdn.example/" + path
	return img, nil
}

func (m *memoryImages) Load(img models.ImagePayload) (models.ImagePayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[img.StoragePath]
	if !ok {
		return img, errors.New("object not found")
	}
	img.Data = append([]byte(nil), data...)
	return img, nil
}

func (m *memoryImages) Delete(storagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storagePath)
	return nil
}

func (m *memoryImages) has(storagePath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[storagePath]
	return ok
}

func (m *memoryImages) DeleteProject(userID string, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, projectID)
	return nil
}

func (m *memoryImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// flakyKV wraps a KV and fails writes to chosen keys.
type flakyKV struct {
	store.KV
	mu       sync.Mutex
	failKeys map[string]error
}

func (k *flakyKV) failSet(key string, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err == nil {
		delete(k.failKeys, key)
		return
	}
	k.failKeys[key] = err
}

func (k *flakyKV) Set(ctx context.Context, namespace, key string, value []byte) error {
	k.mu.Lock()
	err := k.failKeys[key]
	k.mu.Unlock()
	if err != nil {
		return err
	}
	return k.KV.Set(ctx, namespace, key, value)
}

type fixture struct {
	kv     *flakyKV
	gen    *fakeGenerator
	images *memoryImages
	snaps  *store.Snapshots
	svc    *services.DesignService
}

func newFixture(withImages bool) *fixture {
	f := &fixture{
		kv:  &flakyKV{KV: store.NewMemoryStore(), failKeys: map[string]error{}},
		gen: newFakeGenerator(),
	}
	f.snaps = store.NewSnapshots(f.kv)
	opts := services.Options{StyleConcurrency: 2, Logger: logging.Discard()}
	if withImages {
		f.images = newMemoryImages()
		opts.Images = f.images
	}
	f.svc = services.NewDesignService(f.gen, f.snaps, opts)
	return f
}

func roomPhoto() models.ImagePayload {
	return models.ImagePayload{MimeType: "image/jpeg", Data: []byte("room")}
}

var errQuota = &gateway.Error{Kind: gateway.KindQuotaExceeded, Op: "generate_styled_image", Reason: "quota"}

func errNotFound() error {
	return services.ErrNotFound
}
