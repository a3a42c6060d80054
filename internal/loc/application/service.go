package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"trade-finance-cloud/internal/auth"
	loc "trade-finance-cloud/internal/loc/domain"
	"trade-finance-cloud/internal/observability/metrics"
)

const defaultPriceTimeout = 3 * time.Second

// PriceSource answers synchronous price lookups during apply. It may
// be the in-process price store or a remote service.
type PriceSource interface {
	LatestPrice(ctx context.Context, country, commodity string) (price float64, ok bool, err error)
}

// ApplyRequest carries the fields of a new application.
type ApplyRequest struct {
	BuyerID   string  `json:"buyer_id"`
	SellerID  string  `json:"seller_id"`
	Amount    float64 `json:"amount"`
	Commodity string  `json:"commodity"`
}

// Service drives the letter-of-credit lifecycle. Every transition is
// gated by the caller's role and by the current status; illegal calls
// fail without mutating the record.
type Service struct {
	repo           loc.Repository
	prices         PriceSource
	defaultCountry string
	priceTimeout   time.Duration
	logger         *log.Logger
	now            func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultCountry sets the country used for apply-time price lookups.
func WithDefaultCountry(country string) Option {
	return func(s *Service) {
		if country != "" {
			s.defaultCountry = country
		}
	}
}

// WithPriceTimeout bounds the apply-time price lookup.
func WithPriceTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.priceTimeout = timeout
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(repo loc.Repository, prices PriceSource, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("loc service: nil repository")
	}
	s := &Service{
		repo:           repo,
		prices:         prices,
		defaultCountry: "IN",
		priceTimeout:   defaultPriceTimeout,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Apply creates a new letter of credit in PENDING, stamped with the
// most recent commodity price when one is available. Price-source
// failure degrades to a nil price; it never fails the application.
func (s *Service) Apply(ctx context.Context, req ApplyRequest, role auth.Role) (*loc.LetterOfCredit, error) {
	if role != auth.RoleBuyer {
		metrics.ObserveTransition("apply", metrics.ResultError)
		return nil, auth.ErrForbidden
	}

	record := &loc.LetterOfCredit{
		ID:        uuid.NewString(),
		BuyerID:   req.BuyerID,
		SellerID:  req.SellerID,
		Amount:    req.Amount,
		Commodity: req.Commodity,
		Status:    loc.StatusPending,
		CreatedAt: s.now(),
	}
	if err := record.Validate(); err != nil {
		metrics.ObserveTransition("apply", metrics.ResultError)
		return nil, err
	}

	record.LatestPrice = s.fetchPrice(ctx, req.Commodity)

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.ObserveTransition("apply", metrics.ResultError)
		return nil, err
	}
	metrics.ObserveTransition("apply", metrics.ResultSuccess)
	return record, nil
}

// Issue moves PENDING to ISSUED. Banks only.
func (s *Service) Issue(ctx context.Context, id string, role auth.Role) (*loc.LetterOfCredit, error) {
	return s.transition(ctx, "issue", id, role, auth.RoleBank, loc.StatusPending, loc.StatusIssued)
}

// Verify moves ISSUED to VERIFIED. Banks only.
func (s *Service) Verify(ctx context.Context, id string, role auth.Role) (*loc.LetterOfCredit, error) {
	return s.transition(ctx, "verify", id, role, auth.RoleBank, loc.StatusIssued, loc.StatusVerified)
}

// Complete moves VERIFIED to COMPLETED. Sellers only.
func (s *Service) Complete(ctx context.Context, id string, role auth.Role) (*loc.LetterOfCredit, error) {
	return s.transition(ctx, "complete", id, role, auth.RoleSeller, loc.StatusVerified, loc.StatusCompleted)
}

// Get loads a record. Role-agnostic.
func (s *Service) Get(ctx context.Context, id string) (*loc.LetterOfCredit, error) {
	return s.repo.Get(ctx, id)
}

// List returns all records. Role-agnostic.
func (s *Service) List(ctx context.Context) ([]*loc.LetterOfCredit, error) {
	return s.repo.List(ctx)
}

func (s *Service) transition(ctx context.Context, name, id string, role, required auth.Role, from, to loc.Status) (*loc.LetterOfCredit, error) {
	if role != required {
		metrics.ObserveTransition(name, metrics.ResultError)
		return nil, auth.ErrForbidden
	}
	record, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		metrics.ObserveTransition(name, metrics.ResultError)
		return nil, err
	}
	metrics.ObserveTransition(name, metrics.ResultSuccess)
	return record, nil
}

func (s *Service) fetchPrice(ctx context.Context, commodity string) *float64 {
	if s.prices == nil {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.priceTimeout)
	defer cancel()

	price, ok, err := s.prices.LatestPrice(lookupCtx, s.defaultCountry, commodity)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("loc apply price lookup failed, creating without price: commodity=%s err=%v", commodity, err)
		}
		return nil
	}
	if !ok {
		return nil
	}
	return &price
}
