package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trade-finance-cloud/internal/auth"
	"trade-finance-cloud/internal/finance/application"
	finance "trade-finance-cloud/internal/finance/domain"
	"trade-finance-cloud/internal/finance/infrastructure/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	service, err := application.NewService(memory.NewRepository())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func doAs(t *testing.T, handler *Handler, role auth.Role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if role != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), role, "user-1"))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func openLine(t *testing.T, handler *Handler) finance.CreditLine {
	t.Helper()
	resp := doAs(t, handler, auth.RoleBuyer, http.MethodPost, "/api/v1/credit-lines",
		`{"applicant":"buyer-1","amount":10000,"interest_rate":12}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var record finance.CreditLine
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decode apply response: %v", err)
	}
	return record
}

func TestHandler_ApplyAndGet(t *testing.T) {
	handler := newTestHandler(t)
	record := openLine(t, handler)

	resp := doAs(t, handler, "", http.MethodGet, "/api/v1/credit-lines/"+record.ID, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}

	resp = doAs(t, handler, "", http.MethodGet, "/api/v1/credit-lines", "")
	var records []finance.CreditLine
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestHandler_InterestDefaultsTo30Days(t *testing.T) {
	handler := newTestHandler(t)
	record := openLine(t, handler)

	resp := doAs(t, handler, "", http.MethodGet, "/api/v1/credit-lines/"+record.ID+"/interest", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result application.InterestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Days != 30 {
		t.Fatalf("expected default 30 days, got %d", result.Days)
	}

	resp = doAs(t, handler, "", http.MethodGet, "/api/v1/credit-lines/"+record.ID+"/interest?days=abc", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer days, got %d", resp.Code)
	}
	resp = doAs(t, handler, "", http.MethodGet, "/api/v1/credit-lines/"+record.ID+"/interest?days=-1", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative days, got %d", resp.Code)
	}
}

func TestHandler_Repay(t *testing.T) {
	handler := newTestHandler(t)
	record := openLine(t, handler)

	resp := doAs(t, handler, auth.RoleBuyer, http.MethodPost, "/api/v1/credit-lines/"+record.ID+"/repay?amount=2500", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		RepaidAmount float64 `json:"repaid_amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.RepaidAmount != 2500 {
		t.Fatalf("expected repaid 2500, got %v", result.RepaidAmount)
	}

	resp = doAs(t, handler, auth.RoleBuyer, http.MethodPost, "/api/v1/credit-lines/"+record.ID+"/repay", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without amount, got %d", resp.Code)
	}
	resp = doAs(t, handler, auth.RoleBank, http.MethodPost, "/api/v1/credit-lines/"+record.ID+"/repay?amount=10", "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for bank repay, got %d", resp.Code)
	}
}

func TestHandler_RiskScore(t *testing.T) {
	handler := newTestHandler(t)
	record := openLine(t, handler)

	resp := doAs(t, handler, auth.RoleBank, http.MethodGet, "/api/v1/credit-lines/"+record.ID+"/risk-score", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result struct {
		RiskScore float64 `json:"risk_score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.RiskScore != 0.8 {
		t.Fatalf("expected 0.8, got %v", result.RiskScore)
	}

	resp = doAs(t, handler, auth.RoleBank, http.MethodGet, "/api/v1/credit-lines/missing/risk-score", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown line, got %d", resp.Code)
	}
}
