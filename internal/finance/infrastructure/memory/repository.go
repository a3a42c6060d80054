package memory

import (
	"context"
	"sort"
	"sync"

	finance "trade-finance-cloud/internal/finance/domain"
)

// Repository is an in-memory store for credit lines.
type Repository struct {
	mu   sync.RWMutex
	data map[string]*finance.CreditLine
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]*finance.CreditLine)}
}

// Create inserts a new credit line.
func (r *Repository) Create(ctx context.Context, record *finance.CreditLine) error {
	_ = ctx
	if record == nil {
		return finance.ErrNilRecord
	}
	r.mu.Lock()
	r.data[record.ID] = record.Clone()
	r.mu.Unlock()
	return nil
}

// Get loads a credit line by id.
func (r *Repository) Get(ctx context.Context, id string) (*finance.CreditLine, error) {
	_ = ctx
	r.mu.RLock()
	record := r.data[id]
	r.mu.RUnlock()
	if record == nil {
		return nil, finance.ErrNotFound
	}
	return record.Clone(), nil
}

// AddRepayment accumulates a repayment atomically.
func (r *Repository) AddRepayment(ctx context.Context, id string, amount float64) (*finance.CreditLine, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.data[id]
	if record == nil {
		return nil, finance.ErrNotFound
	}
	record.RepaidAmount += amount
	return record.Clone(), nil
}

// List returns all credit lines ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]*finance.CreditLine, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]*finance.CreditLine, 0, len(r.data))
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
