package http

import (
	"encoding/json"
	"net/http"

	"trade-finance-cloud/internal/pricefeed/application"
	pricefeed "trade-finance-cloud/internal/pricefeed/domain"
)

// PricesHandler serves point-in-time price history queries.
type PricesHandler struct {
	store *application.Store
}

// NewPricesHandler constructs a handler.
func NewPricesHandler(store *application.Store) *PricesHandler {
	return &PricesHandler{store: store}
}

// ServeHTTP handles GET /api/v1/prices.
func (h *PricesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.store == nil {
		http.Error(w, "price store not ready", http.StatusServiceUnavailable)
		return
	}

	key := pricefeed.NewKey(r.URL.Query().Get("country"), r.URL.Query().Get("commodity"))
	if !key.Valid() {
		http.Error(w, "country and commodity are required", http.StatusBadRequest)
		return
	}

	history := h.store.History(key)
	if history == nil {
		history = []pricefeed.Observation{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(history)
}
