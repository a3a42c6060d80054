package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	loc "trade-finance-cloud/internal/loc/domain"
)

// Repository is a Postgres store for letters of credit. Transitions are
// serialized per id by a status-guarded UPDATE.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the locs table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("loc repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS locs (
	id TEXT PRIMARY KEY,
	buyer_id TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	commodity TEXT NOT NULL,
	latest_price DOUBLE PRECISION,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Create inserts a new record.
func (r *Repository) Create(ctx context.Context, record *loc.LetterOfCredit) error {
	if r == nil || r.db == nil {
		return errors.New("loc repo: nil db")
	}
	if record == nil {
		return loc.ErrNilRecord
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO locs (
	id, buyer_id, seller_id, amount, commodity, latest_price, status, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`, record.ID, record.BuyerID, record.SellerID, record.Amount, record.Commodity, nullFloat(record.LatestPrice), string(record.Status), record.CreatedAt)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Get loads a record by id.
func (r *Repository) Get(ctx context.Context, id string) (*loc.LetterOfCredit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("loc repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, buyer_id, seller_id, amount, commodity, latest_price, status, created_at
FROM locs
WHERE id = $1
LIMIT 1`, id)
	return scanRecord(row)
}

// UpdateStatus advances a record's status only when the stored status
// equals from.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to loc.Status) (*loc.LetterOfCredit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("loc repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE locs
SET status = $1
WHERE id = $2 AND status = $3`, string(to), id, string(from))
	if err != nil {
		return nil, unavailable(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, unavailable(err)
	}
	if affected == 0 {
		// Distinguish unknown id from a lost transition race.
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, loc.ErrInvalidState
	}
	return r.Get(ctx, id)
}

// List returns all records ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]*loc.LetterOfCredit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("loc repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, buyer_id, seller_id, amount, commodity, latest_price, status, created_at
FROM locs
ORDER BY created_at, id`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var out []*loc.LetterOfCredit
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

func scanRecord(row rowScanner) (*loc.LetterOfCredit, error) {
	var (
		record loc.LetterOfCredit
		price  sql.NullFloat64
		status string
	)
	err := row.Scan(&record.ID, &record.BuyerID, &record.SellerID, &record.Amount, &record.Commodity, &price, &status, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, loc.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if price.Valid {
		value := price.Float64
		record.LatestPrice = &value
	}
	parsed, ok := loc.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("loc repo: corrupt status %q", status)
	}
	record.Status = parsed
	return &record, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", loc.ErrUnavailable, err)
}
