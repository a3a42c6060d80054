package finance

import (
	"strings"
	"time"
)

const (
	// StatusPending is the initial credit-line status.
	StatusPending = "pending"

	daysPerYear = 365
)

// CreditLine is a disbursement ledger entry. Interest is computed on
// demand, never stored.
type CreditLine struct {
	ID           string    `json:"id"`
	Applicant    string    `json:"applicant"`
	Amount       float64   `json:"amount"`
	InterestRate float64   `json:"interest_rate"`
	Status       string    `json:"status"`
	RepaidAmount float64   `json:"repaid_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks creation inputs.
func (c *CreditLine) Validate() error {
	if c == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(c.Applicant) == "" {
		return ErrEmptyApplicant
	}
	if c.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if c.InterestRate <= 0 {
		return ErrNonPositiveRate
	}
	return nil
}

// Interest computes simple interest accrued over the given days.
func (c *CreditLine) Interest(days int) float64 {
	if c == nil || days <= 0 {
		return 0
	}
	return c.Amount * (c.InterestRate / 100) * (float64(days) / daysPerYear)
}

// Clone returns a copy.
func (c *CreditLine) Clone() *CreditLine {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
