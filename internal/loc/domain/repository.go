package loc

import "context"

// Repository persists letters of credit.
//
// UpdateStatus must be atomic with respect to concurrent transitions on
// the same id: the update applies only when the stored status equals
// from, so racing callers serialize and exactly one wins.
type Repository interface {
	Create(ctx context.Context, record *LetterOfCredit) error
	Get(ctx context.Context, id string) (*LetterOfCredit, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (*LetterOfCredit, error)
	List(ctx context.Context) ([]*LetterOfCredit, error)
}
