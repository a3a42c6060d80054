package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"trade-finance-cloud/internal/auth"
	finance "trade-finance-cloud/internal/finance/domain"
)

// Risk scoring is a placeholder until an external model is wired in.
const stubRiskScore = 0.8

// ApplyRequest carries the fields of a new credit line.
type ApplyRequest struct {
	Applicant    string  `json:"applicant"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
}

// InterestResult is the on-demand interest computation output.
type InterestResult struct {
	CreditID string  `json:"credit_id"`
	Interest float64 `json:"interest"`
	Days     int     `json:"days"`
}

// Service manages the credit-line ledger.
type Service struct {
	repo finance.Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo finance.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("finance service: nil repository")
	}
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Apply opens a new credit line in pending status. Buyers only.
func (s *Service) Apply(ctx context.Context, req ApplyRequest, role auth.Role) (*finance.CreditLine, error) {
	if role != auth.RoleBuyer {
		return nil, auth.ErrForbidden
	}
	record := &finance.CreditLine{
		ID:           uuid.NewString(),
		Applicant:    req.Applicant,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		Status:       finance.StatusPending,
		CreatedAt:    s.now(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get loads a credit line.
func (s *Service) Get(ctx context.Context, id string) (*finance.CreditLine, error) {
	return s.repo.Get(ctx, id)
}

// List returns all credit lines.
func (s *Service) List(ctx context.Context) ([]*finance.CreditLine, error) {
	return s.repo.List(ctx)
}

// Interest computes accrued interest over the given window.
func (s *Service) Interest(ctx context.Context, id string, days int) (InterestResult, error) {
	if days <= 0 {
		return InterestResult{}, finance.ErrNonPositiveDays
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return InterestResult{}, err
	}
	return InterestResult{CreditID: id, Interest: record.Interest(days), Days: days}, nil
}

// Repay accumulates a repayment. Buyers only.
func (s *Service) Repay(ctx context.Context, id string, amount float64, role auth.Role) (*finance.CreditLine, error) {
	if role != auth.RoleBuyer {
		return nil, auth.ErrForbidden
	}
	if amount <= 0 {
		return nil, finance.ErrNonPositiveRepayment
	}
	return s.repo.AddRepayment(ctx, id, amount)
}

// RiskScore returns the risk score for an existing credit line.
func (s *Service) RiskScore(ctx context.Context, id string, role auth.Role) (float64, error) {
	if role != auth.RoleBank {
		return 0, auth.ErrForbidden
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return 0, err
	}
	return stubRiskScore, nil
}
