package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"interior-design-backend/internal/history"
)

type preview struct {
	ID        uuid.UUID
	UserID    string
	ProjectID uuid.UUID
	Candidate history.Candidate
	ExpiresAt time.Time
}

// previewCache holds uncommitted refinements until they are committed, discarded or expire.
type previewCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]preview
}

func newPreviewCache(ttl time.Duration) *previewCache {
	return &previewCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]preview),
	}
}

func (c *previewCache) put(userID string, projectID uuid.UUID, candidate history.Candidate) preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	p := preview{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Candidate: candidate,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.entries[p.ID] = p
	return p
}

// get returns a live preview owned by userID.
func (c *previewCache) get(userID string, id uuid.UUID) (preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()

	p, ok := c.entries[id]
	if !ok || p.UserID != userID {
		return preview{}, false
	}
	return p, true
}

func (c *previewCache) remove(userID string, id uuid.UUID) (preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.entries[id]
	if !ok || p.UserID != userID {
		return preview{}, false
	}
	delete(c.entries, id)
	return p, true
}

// dropProject forgets every preview made for a project.
func (c *previewCache) dropProject(userID string, projectID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, p := range c.entries {
		if p.UserID == userID && p.ProjectID == projectID {
			delete(c.entries, id)
		}
	}
}

func (c *previewCache) sweepLocked() {
	now := c.now()
	for id, p := range c.entries {
		if now.After(p.ExpiresAt) {
			delete(c.entries, id)
		}
	}
}
