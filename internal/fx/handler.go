package fx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// Handler serves currency rate and conversion queries.
type Handler struct {
	service *Service
}

// NewHandler constructs a handler.
func NewHandler(service *Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("fx handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes /api/v1/rates and /api/v1/convert.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/rates":
		h.handleRates(w, r)
	case "/api/v1/convert":
		h.handleConvert(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	rates := h.service.Rates(r.Context(), base)
	writeJSON(w, rates)
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		http.Error(w, "amount is required", http.StatusBadRequest)
		return
	}

	converted, err := h.service.Convert(r.Context(), from, to, amount)
	if err != nil {
		if errors.Is(err, ErrUnknownCurrency) {
			http.Error(w, "invalid currency code", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{
		"from":      from,
		"to":        to,
		"amount":    amount,
		"converted": converted,
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
