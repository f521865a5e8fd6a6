package media

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository keeps records in memory. Used by tests and available as
// a database-free mode for local development.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*MediaRecord
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*MediaRecord),
	}
}

func (r *MemoryRepository) Create(rec *MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; exists {
		return fmt.Errorf("media record already exists: %s", rec.ID)
	}

	stored := *rec
	r.records[rec.ID] = &stored
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *MemoryRepository) List() ([]*MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*MediaRecord, 0, len(r.order))
	for _, id := range r.order {
		rec := *r.records[id]
		records = append(records, &rec)
	}

	// Newest first, matching the SQL ordering.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	return records, nil
}

func (r *MemoryRepository) GetByID(id string) (*MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.records[id]
	if !exists {
		return nil, fmt.Errorf("media record not found")
	}
	rec := *stored
	return &rec, nil
}

func (r *MemoryRepository) UpdateStatus(id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.records[id]
	if !exists {
		return fmt.Errorf("media record not found")
	}
	stored.Status = status
	return nil
}

func (r *MemoryRepository) MarkCompleted(id, thumbnail string, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.records[id]
	if !exists {
		return fmt.Errorf("media record not found")
	}
	stored.Status = StatusCompleted
	stored.Thumbnail = thumbnail
	stored.Kind = kind
	return nil
}

func (r *MemoryRepository) MarkFailed(id string) error {
	return r.UpdateStatus(id, StatusFailed)
}
