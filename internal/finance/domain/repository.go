package finance

import "context"

// Repository persists credit lines.
type Repository interface {
	Create(ctx context.Context, record *CreditLine) error
	Get(ctx context.Context, id string) (*CreditLine, error)
	AddRepayment(ctx context.Context, id string, amount float64) (*CreditLine, error)
	List(ctx context.Context) ([]*CreditLine, error)
}
