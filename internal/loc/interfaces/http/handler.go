package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"trade-finance-cloud/internal/audit"
	"trade-finance-cloud/internal/auth"
	"trade-finance-cloud/internal/loc/application"
	loc "trade-finance-cloud/internal/loc/domain"
)

// Handler provides letter-of-credit HTTP endpoints.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("loc handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/loc requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/loc")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path == "apply" && r.Method == http.MethodPost:
		h.handleApply(w, r)
	case r.Method == http.MethodPost:
		h.handleTransition(w, r, path)
	case r.Method == http.MethodGet:
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
	h.logAudit(r, "loc.apply", record)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, path string) {
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id, action := parts[0], parts[1]
	role := auth.RoleFromContext(r.Context())

	var (
		record *loc.LetterOfCredit
		err    error
	)
	switch action {
	case "issue":
		record, err = h.service.Issue(r.Context(), id, role)
	case "verify":
		record, err = h.service.Verify(r.Context(), id, role)
	case "complete":
		record, err = h.service.Complete(r.Context(), id, role)
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, record)
	h.logAudit(r, "loc."+action, record)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, path string) {
	if strings.Contains(path, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	record, err := h.service.Get(r.Context(), path)
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
		records = []*loc.LetterOfCredit{}
	}
	writeJSON(w, records)
}

func (h *Handler) logAudit(r *http.Request, action string, record *loc.LetterOfCredit) {
	if h.auditLogger == nil || record == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"commodity": record.Commodity,
		"amount":    record.Amount,
		"status":    record.Status,
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "loc",
		ResourceID:   record.ID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case loc.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, loc.ErrNotFound):
		http.Error(w, "loc not found", http.StatusNotFound)
	case errors.Is(err, loc.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, loc.ErrUnavailable):
		http.Error(w, "storage unavailable", http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
