// Package config loads the YAML configuration of the statements tools and applies
// .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"financial_statements/pkg/core/cells"
	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is read when Load is given no path and the file exists.
const DefaultPath = "config/statements.yaml"

// MinPacing is the shortest wait allowed between two filing fetches.
const MinPacing = time.Second

// Config holds every setting of the CLI and API server.
type Config struct {
	UserAgent        string              `yaml:"user_agent"`
	CacheDir         string              `yaml:"cache_dir"`
	OutputDir        string              `yaml:"output_dir"`
	CIKCache         string              `yaml:"cik_cache"`
	Pacing           string              `yaml:"pacing"`
	SECRate          float64             `yaml:"sec_rate"`
	Concurrency      int                 `yaml:"concurrency"`
	MatchPolicy      string              `yaml:"match_policy"`
	MalformedNumbers string              `yaml:"malformed_numbers"`
	Forms            []string            `yaml:"forms"`
	Limit            int                 `yaml:"limit"`
	Headings         map[string][]string `yaml:"headings"`
	Database         DatabaseConfig      `yaml:"database"`
	Server           ServerConfig        `yaml:"server"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	UserAgent        string
	CacheDir         string
	OutputDir        string
	CIKCache         string
	Pacing           string
	SECRate          string
	Concurrency      string
	MatchPolicy      string
	MalformedNumbers string
	Limit            string
	DatabaseDSN      string
	DatabaseURL      string // fallback when DatabaseDSN is unset
	ServerAddr       string
}

// DefaultEnv is the FS_ prefixed variable set.
var DefaultEnv = &Env{
	UserAgent:        "FS_USER_AGENT",
	CacheDir:         "FS_CACHE_DIR",
	OutputDir:        "FS_OUTPUT_DIR",
	CIKCache:         "FS_CIK_CACHE",
	Pacing:           "FS_PACING",
	SECRate:          "FS_SEC_RATE",
	Concurrency:      "FS_CONCURRENCY",
	MatchPolicy:      "FS_MATCH_POLICY",
	MalformedNumbers: "FS_MALFORMED_NUMBERS",
	Limit:            "FS_LIMIT",
	DatabaseDSN:      "FS_DATABASE_DSN",
	DatabaseURL:      "DATABASE_URL",
	ServerAddr:       "FS_SERVER_ADDR",
}

// Load reads .env, then the YAML file at path (DefaultPath when empty and present),
// then finalizes with DefaultEnv.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Finalize(DefaultEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.CacheDir != "" {
		c.CacheDir = overlay.CacheDir
	}
	if overlay.OutputDir != "" {
		c.OutputDir = overlay.OutputDir
	}
	if overlay.CIKCache != "" {
		c.CIKCache = overlay.CIKCache
	}
	if overlay.Pacing != "" {
		c.Pacing = overlay.Pacing
	}
	if overlay.SECRate != 0 {
		c.SECRate = overlay.SECRate
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MatchPolicy != "" {
		c.MatchPolicy = overlay.MatchPolicy
	}
	if overlay.MalformedNumbers != "" {
		c.MalformedNumbers = overlay.MalformedNumbers
	}
	if len(overlay.Forms) > 0 {
		c.Forms = overlay.Forms
	}
	if overlay.Limit != 0 {
		c.Limit = overlay.Limit
	}
	if len(overlay.Headings) > 0 {
		c.Headings = overlay.Headings
	}
	if overlay.Database.DSN != "" {
		c.Database.DSN = overlay.Database.DSN
	}
	if overlay.Server.Addr != "" {
		c.Server.Addr = overlay.Server.Addr
	}
}

// PacingDuration returns Pacing as a time.Duration.
func (c *Config) PacingDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pacing)
	return d
}

// Policy returns the parsed match policy.
func (c *Config) Policy() statements.MatchPolicy {
	p, _ := statements.ParseMatchPolicy(c.MatchPolicy)
	return p
}

// Malformed returns the parsed malformed-number policy.
func (c *Config) Malformed() cells.MalformedPolicy {
	p, _ := cells.ParseMalformedPolicy(c.MalformedNumbers)
	return p
}

// HeadingSet returns the default headings extended with the configured aliases.
func (c *Config) HeadingSet() (statements.Headings, error) {
	return statements.DefaultHeadings().With(c.Headings)
}

func (c *Config) loadDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = ingest.DefaultUserAgent
	}
	if c.CacheDir == "" {
		c.CacheDir = ".cache/edgar/filings"
	}
	if c.OutputDir == "" {
		c.OutputDir = "financials"
	}
	if c.CIKCache == "" {
		c.CIKCache = ".cache/edgar/company_tickers.json"
	}
	if c.Pacing == "" {
		c.Pacing = ingest.DefaultPacing.String()
	}
	if c.SECRate == 0 {
		c.SECRate = ingest.DefaultRate
	}
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
	if c.MatchPolicy == "" {
		c.MatchPolicy = statements.MatchFirstValid.String()
	}
	if c.MalformedNumbers == "" {
		c.MalformedNumbers = cells.MalformedFail.String()
	}
	if len(c.Forms) == 0 {
		c.Forms = append([]string(nil), ingest.DefaultForms...)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString(&c.UserAgent, env.UserAgent)
	setString(&c.CacheDir, env.CacheDir)
	setString(&c.OutputDir, env.OutputDir)
	setString(&c.CIKCache, env.CIKCache)
	setString(&c.Pacing, env.Pacing)
	setString(&c.MatchPolicy, env.MatchPolicy)
	setString(&c.MalformedNumbers, env.MalformedNumbers)
	setString(&c.Server.Addr, env.ServerAddr)

	if v := lookup(env.SECRate); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			c.SECRate = r
		}
	}
	if v := lookup(env.Concurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := lookup(env.Limit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Limit = n
		}
	}

	if v := lookup(env.DatabaseDSN); v != "" {
		c.Database.DSN = v
	} else if c.Database.DSN == "" {
		setString(&c.Database.DSN, env.DatabaseURL)
	}
}

func (c *Config) validate() error {
	var errs []error

	if strings.TrimSpace(c.UserAgent) == "" {
		errs = append(errs, fmt.Errorf("user_agent is required by SEC"))
	}
	if d, err := time.ParseDuration(c.Pacing); err != nil {
		errs = append(errs, fmt.Errorf("invalid pacing %q: %w", c.Pacing, err))
	} else if d < MinPacing {
		errs = append(errs, fmt.Errorf("pacing %s is below the minimum of %s", d, MinPacing))
	}
	if c.SECRate <= 0 || c.SECRate > ingest.DefaultRate {
		errs = append(errs, fmt.Errorf("sec_rate must be in (0, %d], got %v", ingest.DefaultRate, c.SECRate))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative, got %d", c.Limit))
	}
	if _, err := statements.ParseMatchPolicy(c.MatchPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := cells.ParseMalformedPolicy(c.MalformedNumbers); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.HeadingSet(); err != nil {
		errs = append(errs, fmt.Errorf("headings: %w", err))
	}

	return errors.Join(errs...)
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func setString(dst *string, name string) {
	if v := lookup(name); v != "" {
		*dst = v
	}
}
