package application

import (
	"context"
	"errors"
	"math"
	"testing"

	"trade-finance-cloud/internal/auth"
	finance "trade-finance-cloud/internal/finance/domain"
	"trade-finance-cloud/internal/finance/infrastructure/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(memory.NewRepository())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func openLine(t *testing.T, service *Service) *finance.CreditLine {
	t.Helper()
	record, err := service.Apply(context.Background(), ApplyRequest{
		Applicant:    "buyer-1",
		Amount:       10000,
		InterestRate: 12,
	}, auth.RoleBuyer)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return record
}

func TestApply_OpensPendingLine(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)

	if record.Status != finance.StatusPending {
		t.Fatalf("expected pending status, got %q", record.Status)
	}
	if record.ID == "" {
		t.Fatal("expected a generated id")
	}
	if record.RepaidAmount != 0 {
		t.Fatalf("expected zero repaid amount, got %v", record.RepaidAmount)
	}
}

func TestApply_RoleGated(t *testing.T) {
	service := newTestService(t)
	for _, role := range []auth.Role{auth.RoleBank, auth.RoleSeller, auth.RoleAdmin} {
		_, err := service.Apply(context.Background(), ApplyRequest{
			Applicant: "buyer-1", Amount: 100, InterestRate: 10,
		}, role)
		if !errors.Is(err, auth.ErrForbidden) {
			t.Fatalf("role %s: expected ErrForbidden, got %v", role, err)
		}
	}
}

func TestApply_Validation(t *testing.T) {
	service := newTestService(t)
	cases := []struct {
		name string
		req  ApplyRequest
		want error
	}{
		{"empty applicant", ApplyRequest{Amount: 100, InterestRate: 10}, finance.ErrEmptyApplicant},
		{"zero amount", ApplyRequest{Applicant: "b", InterestRate: 10}, finance.ErrNonPositiveAmount},
		{"zero rate", ApplyRequest{Applicant: "b", Amount: 100}, finance.ErrNonPositiveRate},
	}
	for _, tc := range cases {
		if _, err := service.Apply(context.Background(), tc.req, auth.RoleBuyer); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestInterest_SimpleAccrual(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)

	result, err := service.Interest(context.Background(), record.ID, 365)
	if err != nil {
		t.Fatalf("interest: %v", err)
	}
	// 10000 at 12% over a full year.
	if math.Abs(result.Interest-1200) > 1e-9 {
		t.Fatalf("expected 1200, got %v", result.Interest)
	}

	result, err = service.Interest(context.Background(), record.ID, 30)
	if err != nil {
		t.Fatalf("interest: %v", err)
	}
	want := 10000 * 0.12 * (30.0 / 365.0)
	if math.Abs(result.Interest-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, result.Interest)
	}
}

func TestInterest_RejectsNonPositiveDays(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)

	if _, err := service.Interest(context.Background(), record.ID, 0); !errors.Is(err, finance.ErrNonPositiveDays) {
		t.Fatalf("expected ErrNonPositiveDays, got %v", err)
	}
	if _, err := service.Interest(context.Background(), "missing", 30); !errors.Is(err, finance.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepay_Accumulates(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)
	ctx := context.Background()

	if _, err := service.Repay(ctx, record.ID, 1500, auth.RoleBuyer); err != nil {
		t.Fatalf("first repay: %v", err)
	}
	updated, err := service.Repay(ctx, record.ID, 500, auth.RoleBuyer)
	if err != nil {
		t.Fatalf("second repay: %v", err)
	}
	if updated.RepaidAmount != 2000 {
		t.Fatalf("expected accumulated 2000, got %v", updated.RepaidAmount)
	}
}

func TestRepay_Guards(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)
	ctx := context.Background()

	if _, err := service.Repay(ctx, record.ID, 100, auth.RoleBank); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.Repay(ctx, record.ID, 0, auth.RoleBuyer); !errors.Is(err, finance.ErrNonPositiveRepayment) {
		t.Fatalf("expected ErrNonPositiveRepayment, got %v", err)
	}
	if _, err := service.Repay(ctx, "missing", 100, auth.RoleBuyer); !errors.Is(err, finance.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRiskScore(t *testing.T) {
	service := newTestService(t)
	record := openLine(t, service)
	ctx := context.Background()

	score, err := service.RiskScore(ctx, record.ID, auth.RoleBank)
	if err != nil {
		t.Fatalf("risk score: %v", err)
	}
	if score != stubRiskScore {
		t.Fatalf("expected %v, got %v", stubRiskScore, score)
	}

	if _, err := service.RiskScore(ctx, record.ID, auth.RoleBuyer); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.RiskScore(ctx, "missing", auth.RoleBank); !errors.Is(err, finance.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
