package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	finance "trade-finance-cloud/internal/finance/domain"
)

// Repository is a Postgres store for credit lines.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the credit_lines table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("finance repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS credit_lines (
	id TEXT PRIMARY KEY,
	applicant TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	interest_rate DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL,
	repaid_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Create inserts a new credit line.
func (r *Repository) Create(ctx context.Context, record *finance.CreditLine) error {
	if r == nil || r.db == nil {
		return errors.New("finance repo: nil db")
	}
	if record == nil {
		return finance.ErrNilRecord
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO credit_lines (
	id, applicant, amount, interest_rate, status, repaid_amount, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)`, record.ID, record.Applicant, record.Amount, record.InterestRate, record.Status, record.RepaidAmount, record.CreatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Get loads a credit line by id.
func (r *Repository) Get(ctx context.Context, id string) (*finance.CreditLine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("finance repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, applicant, amount, interest_rate, status, repaid_amount, created_at
FROM credit_lines
WHERE id = $1
LIMIT 1`, id)
	return scanRecord(row)
}

// AddRepayment accumulates a repayment atomically.
func (r *Repository) AddRepayment(ctx context.Context, id string, amount float64) (*finance.CreditLine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("finance repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE credit_lines
SET repaid_amount = repaid_amount + $1
WHERE id = $2`, amount, id)
	if err != nil {
		return nil, unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, unavailable(err)
	}
	if affected == 0 {
		return nil, finance.ErrNotFound
	}
	return r.Get(ctx, id)
}

// List returns all credit lines ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]*finance.CreditLine, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("finance repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, applicant, amount, interest_rate, status, repaid_amount, created_at
FROM credit_lines
ORDER BY created_at, id`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var out []*finance.CreditLine
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*finance.CreditLine, error) {
	var record finance.CreditLine
	err := row.Scan(&record.ID, &record.Applicant, &record.Amount, &record.InterestRate, &record.Status, &record.RepaidAmount, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, finance.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &record, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", finance.ErrUnavailable, err)
}
