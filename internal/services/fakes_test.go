package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/models"
)

// memStorage is an in-memory ObjectStorage with switchable failures.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	failCopy   bool
	failDelete bool
	failExists bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) put(key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memStorage) Name() string { return "mem" }

func (m *memStorage) Copy(_ context.Context, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCopy {
		return fmt.Errorf("copy unavailable")
	}
	src, ok := m.objects[srcKey]
	if !ok {
		return fmt.Errorf("source %s does not exist", srcKey)
	}
	m.objects[dstKey] = src
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return fmt.Errorf("delete unavailable")
	}
	delete(m.objects, key)
	return nil
}

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failExists {
		return false, fmt.Errorf("exists unavailable")
	}
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, 0, fmt.Errorf("object %s does not exist", key)
	}
	return io.NopCloser(bytes.NewReader(content)), int64(len(content)), nil
}

func (m *memStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64) error {
	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.put(key, content)
	return nil
}

// memMediaStore mimics the repository's decision semantics in memory:
// same-status updates are no-ops, illegal transitions fail, approval
// clears the original path.
type memMediaStore struct {
	mu      sync.Mutex
	records map[string]*models.MediaRecord
	queue   map[string]bool

	failApply bool
	applied   []models.DecisionUpdate
}

func newMemMediaStore() *memMediaStore {
	return &memMediaStore{
		records: make(map[string]*models.MediaRecord),
		queue:   make(map[string]bool),
	}
}

func (m *memMediaStore) GetByID(_ context.Context, id string) (*models.MediaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: media %s", moderr.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *memMediaStore) UpsertIngested(_ context.Context, id, ownerUID, mediaType, originalPath string) (*models.MediaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	rec, ok := m.records[id]
	if !ok {
		rec = &models.MediaRecord{ID: id, CreatedAt: now}
		m.records[id] = rec
	}
	rec.OwnerUID = ownerUID
	rec.Type = mediaType
	rec.Status = models.StatusProcessing
	rec.OriginalPath = &originalPath
	rec.PublicPath = nil
	rec.PublicURL = nil
	rec.UpdatedAt = now
	cp := *rec
	return &cp, nil
}

func (m *memMediaStore) ApplyDecision(_ context.Context, update models.DecisionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApply {
		return fmt.Errorf("database unavailable")
	}
	rec, ok := m.records[update.MediaID]
	if !ok {
		return fmt.Errorf("%w: media %s", moderr.ErrNotFound, update.MediaID)
	}
	if rec.Status == update.Status {
		return nil
	}
	if !rec.Status.CanTransition(update.Status) {
		return fmt.Errorf("%w: cannot move %s from %s to %s", moderr.ErrInvalidState, update.MediaID, rec.Status, update.Status)
	}

	rec.Status = update.Status
	rec.GoreScore = update.GoreScore
	rec.Provider = update.Provider
	rec.Flags = update.Flags
	if update.Status == models.StatusApproved {
		rec.OriginalPath = nil
		rec.PublicPath = update.PublicPath
		rec.PublicURL = update.PublicURL
	}
	if update.ReviewedBy != nil {
		rec.ReviewedBy = update.ReviewedBy
		rec.ReviewedAt = update.ReviewedAt
	}
	rec.UpdatedAt = time.Now().UTC()

	if update.Status == models.StatusNeedsReview {
		m.queue[update.MediaID] = true
	} else {
		delete(m.queue, update.MediaID)
	}

	m.applied = append(m.applied, update)
	return nil
}

func (m *memMediaStore) record(id string) *models.MediaRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *memMediaStore) queued(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue[id]
}

// fixedScorer returns the same result for every item.
type fixedScorer struct {
	result models.ScoreResult
	err    error
	calls  int
}

func (f *fixedScorer) Score(_ context.Context, _ string, _ []byte) (models.ScoreResult, error) {
	f.calls++
	if f.err != nil {
		return models.ScoreResult{}, f.err
	}
	return f.result, nil
}
