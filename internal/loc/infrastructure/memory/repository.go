package memory

import (
	"context"
	"sort"
	"sync"

	loc "trade-finance-cloud/internal/loc/domain"
)

// Repository is an in-memory store for letters of credit. Status
// updates are guarded by the expected predecessor under the lock, so
// concurrent transitions on one id serialize with exactly one winner.
type Repository struct {
	mu   sync.RWMutex
	data map[string]*loc.LetterOfCredit
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]*loc.LetterOfCredit)}
}

// Create inserts a new record.
func (r *Repository) Create(ctx context.Context, record *loc.LetterOfCredit) error {
	_ = ctx
	if record == nil {
		return loc.ErrNilRecord
	}
	r.mu.Lock()
	r.data[record.ID] = record.Clone()
	r.mu.Unlock()
	return nil
}

// Get loads a record by id.
func (r *Repository) Get(ctx context.Context, id string) (*loc.LetterOfCredit, error) {
	_ = ctx
	r.mu.RLock()
	record := r.data[id]
	r.mu.RUnlock()
	if record == nil {
		return nil, loc.ErrNotFound
	}
	return record.Clone(), nil
}

// UpdateStatus advances a record's status only when the stored status
// equals from.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to loc.Status) (*loc.LetterOfCredit, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.data[id]
	if record == nil {
		return nil, loc.ErrNotFound
	}
	if record.Status != from {
		return nil, loc.ErrInvalidState
	}
	record.Status = to
	return record.Clone(), nil
}

// List returns all records ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]*loc.LetterOfCredit, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]*loc.LetterOfCredit, 0, len(r.data))
	for _, record := range r.data {
		out = append(out, record.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
