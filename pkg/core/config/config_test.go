package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"financial_statements/pkg/core/cells"
	"financial_statements/pkg/core/statements"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"pacing", cfg.PacingDuration(), time.Second},
		{"sec_rate", cfg.SECRate, 10.0},
		{"concurrency", cfg.Concurrency, 2},
		{"match_policy", cfg.Policy(), statements.MatchFirstValid},
		{"malformed_numbers", cfg.Malformed(), cells.MalformedFail},
		{"forms", len(cfg.Forms), 1},
		{"output_dir", cfg.OutputDir, "financials"},
		{"server_addr", cfg.Server.Addr, ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_FS_USER_AGENT", "Research Desk desk@example.com")
	t.Setenv("TEST_FS_PACING", "2s")
	t.Setenv("TEST_FS_SEC_RATE", "5")
	t.Setenv("TEST_FS_CONCURRENCY", "4")
	t.Setenv("TEST_FS_MATCH_POLICY", "merge")
	t.Setenv("TEST_FS_MALFORMED", "label")
	t.Setenv("TEST_FS_LIMIT", "3")
	t.Setenv("TEST_DATABASE_URL", "postgres://fallback/db")

	env := &Env{
		UserAgent:        "TEST_FS_USER_AGENT",
		Pacing:           "TEST_FS_PACING",
		SECRate:          "TEST_FS_SEC_RATE",
		Concurrency:      "TEST_FS_CONCURRENCY",
		MatchPolicy:      "TEST_FS_MATCH_POLICY",
		MalformedNumbers: "TEST_FS_MALFORMED",
		Limit:            "TEST_FS_LIMIT",
		DatabaseDSN:      "TEST_FS_DATABASE_DSN",
		DatabaseURL:      "TEST_DATABASE_URL",
	}

	cfg := Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"user_agent", cfg.UserAgent, "Research Desk desk@example.com"},
		{"pacing", cfg.PacingDuration(), 2 * time.Second},
		{"sec_rate", cfg.SECRate, 5.0},
		{"concurrency", cfg.Concurrency, 4},
		{"match_policy", cfg.Policy(), statements.MatchMerge},
		{"malformed_numbers", cfg.Malformed(), cells.MalformedLabel},
		{"limit", cfg.Limit, 3},
		{"database_dsn", cfg.Database.DSN, "postgres://fallback/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}

	t.Setenv("TEST_FS_DATABASE_DSN", "postgres://primary/db")
	cfg = Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Database.DSN != "postgres://primary/db" {
		t.Errorf("expected FS DSN to win over DATABASE_URL, got %q", cfg.Database.DSN)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"pacing too short", Config{Pacing: "100ms"}},
		{"pacing unparseable", Config{Pacing: "soon"}},
		{"rate above SEC ceiling", Config{SECRate: 50}},
		{"negative concurrency", Config{Concurrency: -1}},
		{"negative limit", Config{Limit: -2}},
		{"unknown match policy", Config{MatchPolicy: "newest"}},
		{"unknown malformed policy", Config{MalformedNumbers: "ignore"}},
		{"unknown heading key", Config{Headings: map[string][]string{"notes": {"NOTES"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.yaml")
	data := `
user_agent: "Acme Research research@acme.test"
pacing: 3s
match_policy: last
forms: ["10-K", "10-K/A"]
headings:
  balance_sheet:
    - CONSOLIDATED STATEMENTS OF FINANCIAL POSITION
database:
  dsn: postgres://localhost/statements
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UserAgent != "Acme Research research@acme.test" && os.Getenv("FS_USER_AGENT") == "" {
		t.Errorf("unexpected user agent %q", cfg.UserAgent)
	}
	if len(cfg.Forms) != 2 || cfg.Forms[1] != "10-K/A" {
		t.Errorf("unexpected forms %v", cfg.Forms)
	}

	headings, err := cfg.HeadingSet()
	if err != nil {
		t.Fatalf("HeadingSet() error = %v", err)
	}
	if got := headings[statements.BalanceSheet]; len(got) != 2 || got[1] != "CONSOLIDATED STATEMENTS OF FINANCIAL POSITION" {
		t.Errorf("expected alias appended, got %v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestMerge(t *testing.T) {
	base := Config{Pacing: "1s", Concurrency: 2, OutputDir: "financials"}
	base.Merge(&Config{Concurrency: 6, Server: ServerConfig{Addr: ":9090"}})

	if base.Concurrency != 6 || base.Server.Addr != ":9090" {
		t.Errorf("expected overlay values, got %+v", base)
	}
	if base.Pacing != "1s" || base.OutputDir != "financials" {
		t.Errorf("expected zero overlay fields to keep base values, got %+v", base)
	}
}
