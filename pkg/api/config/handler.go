package config

import (
	"encoding/json"
	"net/http"

	coreConfig "financial_statements/pkg/core/config"
)

// Response is the effective reconstruction and walk configuration. Secrets such as
// the database DSN are not included.
type Response struct {
	MatchPolicy      string              `json:"match_policy"`
	MalformedNumbers string              `json:"malformed_numbers"`
	Forms            []string            `json:"forms"`
	Limit            int                 `json:"limit"`
	Pacing           string              `json:"pacing"`
	SECRate          float64             `json:"sec_rate"`
	Concurrency      int                 `json:"concurrency"`
	Headings         map[string][]string `json:"headings"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config *coreConfig.Config
}

// NewHandler creates a new config handler
func NewHandler(cfg *coreConfig.Config) *Handler {
	return &Handler{Config: cfg}
}

// Register mounts the endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", h.HandleConfig)
}

// HandleConfig handles GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	headings, err := h.Config.HeadingSet()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := Response{
		MatchPolicy:      h.Config.Policy().String(),
		MalformedNumbers: h.Config.Malformed().String(),
		Forms:            h.Config.Forms,
		Limit:            h.Config.Limit,
		Pacing:           h.Config.PacingDuration().String(),
		SECRate:          h.Config.SECRate,
		Concurrency:      h.Config.Concurrency,
		Headings:         make(map[string][]string, len(headings)),
	}
	for st, titles := range headings {
		resp.Headings[st.Key()] = titles
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
