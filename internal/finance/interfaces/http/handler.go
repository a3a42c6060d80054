package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"trade-finance-cloud/internal/auth"
	"trade-finance-cloud/internal/finance/application"
	finance "trade-finance-cloud/internal/finance/domain"
)

// Handler provides credit-line HTTP endpoints.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("finance handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes /api/v1/credit-lines requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/credit-lines")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleApply(w, r)
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(path, "/interest") && r.Method == http.MethodGet:
		h.handleInterest(w, r, strings.TrimSuffix(path, "/interest"))
	case strings.HasSuffix(path, "/repay") && r.Method == http.MethodPost:
		h.handleRepay(w, r, strings.TrimSuffix(path, "/repay"))
	case strings.HasSuffix(path, "/risk-score") && r.Method == http.MethodGet:
		h.handleRiskScore(w, r, strings.TrimSuffix(path, "/risk-score"))
	case !strings.Contains(path, "/") && r.Method == http.MethodGet:
		h.handleGet(w, r, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req application.ApplyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	record, err := h.service.Apply(r.Context(), req, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*finance.CreditLine{}
	}
	writeJSON(w, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, record)
}

func (h *Handler) handleInterest(w http.ResponseWriter, r *http.Request, id string) {
	days := 30
	if value := r.URL.Query().Get("days"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			http.Error(w, "days must be an integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	result, err := h.service.Interest(r.Context(), id, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) handleRepay(w http.ResponseWriter, r *http.Request, id string) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		http.Error(w, "amount is required", http.StatusBadRequest)
		return
	}

	record, err := h.service.Repay(r.Context(), id, amount, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"credit_id":     record.ID,
		"repaid_amount": record.RepaidAmount,
	})
}

func (h *Handler) handleRiskScore(w http.ResponseWriter, r *http.Request, id string) {
	score, err := h.service.RiskScore(r.Context(), id, auth.RoleFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"credit_id":  id,
		"risk_score": score,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case finance.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, finance.ErrNotFound):
		http.Error(w, "credit line not found", http.StatusNotFound)
	case errors.Is(err, finance.ErrUnavailable):
		http.Error(w, "storage unavailable", http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
