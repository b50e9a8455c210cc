package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	coreConfig "financial_statements/pkg/core/config"
)

func TestHandleConfig(t *testing.T) {
	cfg := &coreConfig.Config{
		MatchPolicy: "merge",
		Headings:    map[string][]string{"balance_sheet": {"STATEMENTS OF FINANCIAL POSITION"}},
		Database:    coreConfig.DatabaseConfig{DSN: "postgres://user:secret@db/statements"},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	rec := httptest.NewRecorder()
	NewHandler(cfg).HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.MatchPolicy != "merge" || resp.Pacing != "1s" || resp.Concurrency != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
	bs := resp.Headings["balance_sheet"]
	if len(bs) == 0 || bs[len(bs)-1] != "STATEMENTS OF FINANCIAL POSITION" {
		t.Errorf("expected configured alias in headings, got %v", bs)
	}

	var raw map[string]any
	json.Unmarshal(rec.Body.Bytes(), &raw)
	if _, ok := raw["database"]; ok {
		t.Error("database settings must not be exposed")
	}
}

func TestHandleConfig_Method(t *testing.T) {
	cfg := &coreConfig.Config{}
	cfg.Finalize(nil)

	rec := httptest.NewRecorder()
	NewHandler(cfg).HandleConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
