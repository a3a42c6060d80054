package interfaces

import (
	"errors"
	"net/http"
	"strings"

	"trade-finance-cloud/internal/loc/application"
	loc "trade-finance-cloud/internal/loc/domain"
	"trade-finance-cloud/internal/observability/metrics"
)

// ExportHandler serves the LoC register in CSV, XLSX or PDF.
type ExportHandler struct {
	service *application.Service
}

// NewExportHandler constructs an export handler.
func NewExportHandler(service *application.Service) (*ExportHandler, error) {
	if service == nil {
		return nil, errors.New("loc export: nil service")
	}
	return &ExportHandler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/exports/locs.{csv,xlsx,pdf}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// The format gates everything else: only known formats may reach
	// storage or become metric label values.
	format := strings.TrimPrefix(r.URL.Path, "/api/v1/exports/locs.")
	var (
		build       func([]*loc.LetterOfCredit) ([]byte, error)
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		build, contentType, filename = BuildRegisterCSV, "text/csv", "locs.csv"
	case "xlsx":
		build, contentType, filename = BuildRegisterXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "locs.xlsx"
	case "pdf":
		build, contentType, filename = BuildRegisterPDF, "application/pdf", "locs.pdf"
	default:
		http.Error(w, "unsupported export format", http.StatusNotFound)
		return
	}

	records, err := h.service.List(r.Context())
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError)
		if errors.Is(err, loc.ErrUnavailable) {
			http.Error(w, "storage unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload, err := build(records)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	metrics.ObserveExport(format, metrics.ResultSuccess)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(payload)
}
