// Package statements provides HTTP API handlers for statement reconstruction.
package statements

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"financial_statements/pkg/core/export"
	"financial_statements/pkg/core/ingest"
	coreStatements "financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/tables"
)

// MaxDocumentBytes bounds the filing body accepted by HandleReconstruct.
const MaxDocumentBytes = 64 << 20

// Handler holds dependencies for statement endpoints.
type Handler struct {
	Reconstructor *coreStatements.Reconstructor
	Extractor     *ingest.Extractor
	logger        *slog.Logger
}

// NewHandler creates a new statements handler. extractor may be nil, in which case
// the history endpoint answers 503.
func NewHandler(r *coreStatements.Reconstructor, extractor *ingest.Extractor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{Reconstructor: r, Extractor: extractor, logger: logger}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/statements/reconstruct", h.HandleReconstruct)
	mux.HandleFunc("/api/statements/history", h.HandleHistory)
}

// HandleReconstruct handles POST /api/statements/reconstruct
// Body is the raw filing HTML; ?format=json|md|html selects the response.
func (h *Handler) HandleReconstruct(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "md" && format != "html" {
		http.Error(w, fmt.Sprintf("Unknown format %q", format), http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxDocumentBytes)
	doc, err := tables.ReadDocumentType(body, r.Header.Get("Content-Type"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
		return
	}

	filing := h.Reconstructor.ReconstructDocument(doc)
	h.logger.Info("[API] reconstructed document", "present", len(filing.Present()))

	switch format {
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, export.RenderFilingMarkdown(filing))
	case "html":
		out, err := export.RenderHTML(export.RenderFilingMarkdown(filing))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, out)
	default:
		writeJSON(w, filing)
	}
}

// HandleHistory handles GET /api/statements/history?ticker=AAPL&limit=3
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET, OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Extractor == nil {
		http.Error(w, "History extraction not configured", http.StatusServiceUnavailable)
		return
	}

	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx := r.Context()
	records, err := h.Extractor.Records(ctx, ticker)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ingest.ErrTickerNotFound) {
			status = http.StatusNotFound
		}
		h.logger.Warn("[API] history lookup failed", "ticker", ticker, "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	results, err := h.Extractor.Walker.WalkHistory(ctx, records, h.Extractor.Fetcher)
	if err != nil {
		// client went away; partial results are not worth sending
		h.logger.Warn("[API] history walk cancelled", "ticker", ticker, "error", err)
		return
	}

	writeJSON(w, results)
}

func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
