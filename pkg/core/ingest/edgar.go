// Package ingest fetches 10-K filings from SEC EDGAR and walks a company's filing history.
// API Documentation: https://www.sec.gov/developer
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	// SEC EDGAR endpoints
	SECSubmissionsURL = "https://data.sec.gov/submissions"
	SECArchivesURL    = "https://www.sec.gov/Archives/edgar/data"
	SECTickersURL     = "https://www.sec.gov/files/company_tickers.json"

	// DefaultUserAgent is sent when none is configured. SEC rejects requests without one.
	DefaultUserAgent = "FinancialStatements/1.0 (contact@example.com)"

	// DefaultRate is SEC's published fair-access ceiling in requests per second.
	DefaultRate = 10
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// Submissions is the company submissions document.
type Submissions struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings holds filing attributes as parallel arrays.
type RecentFilings struct {
	AccessionNumber       []string `json:"accessionNumber"` // e.g., "0000320193-24-000123"
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"` // fiscal period end
	Form                  []string `json:"form"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
}

// FilingRecord identifies one filing. The walker treats it as an opaque key.
type FilingRecord struct {
	CIK                   string    `json:"cik"`
	AccessionNumber       string    `json:"accession_number"`
	FilingDate            time.Time `json:"filing_date"`
	ReportDate            time.Time `json:"report_date"`
	Form                  string    `json:"form"`
	PrimaryDocument       string    `json:"primary_document"`
	PrimaryDocDescription string    `json:"primary_doc_description,omitempty"`
}

// AccessionNoDashes is the accession number as it appears in archive paths.
func (r FilingRecord) AccessionNoDashes() string {
	return strings.ReplaceAll(r.AccessionNumber, "-", "")
}

// Label names the filing for sheets and logs: the report date when known.
func (r FilingRecord) Label() string {
	if !r.ReportDate.IsZero() {
		return r.ReportDate.Format("2006-01-02")
	}
	return r.AccessionNumber
}

// =============================================================================
// SEC EDGAR CLIENT
// =============================================================================

// EDGARClient handles SEC EDGAR requests. Every request carries the configured
// User-Agent and waits on the client's rate limiter.
type EDGARClient struct {
	httpClient     *http.Client
	userAgent      string
	limiter        *rate.Limiter
	submissionsURL string
	archivesURL    string
	tickersURL     string
	logger         *slog.Logger
}

// ClientOption customizes an EDGARClient.
type ClientOption func(*EDGARClient)

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *EDGARClient) { c.httpClient = httpClient }
}

// WithUserAgent sets the User-Agent sent to SEC.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *EDGARClient) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRate sets the request ceiling in requests per second.
func WithRate(perSecond float64) ClientOption {
	return func(c *EDGARClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
		}
	}
}

// WithBaseURLs points the client at another host, e.g. an httptest server.
func WithBaseURLs(submissions, archives, tickers string) ClientOption {
	return func(c *EDGARClient) {
		c.submissionsURL = strings.TrimRight(submissions, "/")
		c.archivesURL = strings.TrimRight(archives, "/")
		c.tickersURL = tickers
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *EDGARClient) { c.logger = logger }
}

// NewEDGARClient creates a new SEC EDGAR client.
func NewEDGARClient(opts ...ClientOption) *EDGARClient {
	c := &EDGARClient{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		userAgent:      DefaultUserAgent,
		limiter:        rate.NewLimiter(rate.Limit(DefaultRate), DefaultRate),
		submissionsURL: SECSubmissionsURL,
		archivesURL:    SECArchivesURL,
		tickersURL:     SECTickersURL,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSubmissions retrieves the submissions document for a CIK. The CIK is
// zero-padded to 10 digits if needed.
func (c *EDGARClient) FetchSubmissions(ctx context.Context, cik string) (*Submissions, error) {
	url := fmt.Sprintf("%s/CIK%s.json", c.submissionsURL, PadCIK(cik))

	resp, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var subs Submissions
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("failed to parse submissions for CIK %s: %w", cik, err)
	}
	if subs.CIK == "" {
		subs.CIK = strings.TrimLeft(cik, "0")
	}
	return &subs, nil
}

// Filings denormalizes the recent filing arrays, in listing order (newest first).
//
// A filing matches when its form or its primary document description equals one of
// forms; nil forms matches everything. limit <= 0 means no limit.
func (c *EDGARClient) Filings(subs *Submissions, forms []string, limit int) []FilingRecord {
	recent := subs.Filings.Recent
	wanted := make(map[string]bool, len(forms))
	for _, f := range forms {
		wanted[strings.ToUpper(f)] = true
	}

	records := make([]FilingRecord, 0)
	for i := range recent.AccessionNumber {
		form := at(recent.Form, i)
		desc := at(recent.PrimaryDocDescription, i)
		if len(wanted) > 0 && !wanted[strings.ToUpper(form)] && !wanted[strings.ToUpper(desc)] {
			continue
		}

		filingDate, _ := time.Parse("2006-01-02", at(recent.FilingDate, i))
		reportDate, _ := time.Parse("2006-01-02", at(recent.ReportDate, i))

		records = append(records, FilingRecord{
			CIK:                   strings.TrimLeft(subs.CIK, "0"),
			AccessionNumber:       recent.AccessionNumber[i],
			FilingDate:            filingDate,
			ReportDate:            reportDate,
			Form:                  form,
			PrimaryDocument:       at(recent.PrimaryDocument, i),
			PrimaryDocDescription: desc,
		})

		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records
}

// DocumentURL builds the archive URL of the filing's primary document.
// Format: {archives}/{cik}/{accession-no-dashes}/{document}
func (c *EDGARClient) DocumentURL(record FilingRecord) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		c.archivesURL, strings.TrimLeft(record.CIK, "0"), record.AccessionNoDashes(), record.PrimaryDocument)
}

// FetchDocument downloads the primary document and decodes it to UTF-8 using the
// declared or sniffed charset.
func (c *EDGARClient) FetchDocument(ctx context.Context, record FilingRecord) (string, error) {
	if record.PrimaryDocument == "" {
		return "", &FetchError{Accession: record.AccessionNumber, Err: ErrNoDocument}
	}

	url := c.DocumentURL(record)
	resp, err := c.get(ctx, url, "text/html")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: url, Accession: record.AccessionNumber, Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &FetchError{URL: url, Accession: record.AccessionNumber, Err: err}
	}

	c.logger.Debug("[EDGAR] fetched document",
		"accession", record.AccessionNumber, "bytes", len(body))
	return string(body), nil
}

// FetchTickers downloads the raw ticker → CIK mapping file.
func (c *EDGARClient) FetchTickers(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, c.tickersURL, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: c.tickersURL, Err: err}
	}
	return data, nil
}

func (c *EDGARClient) get(ctx context.Context, url, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	return resp, nil
}

// PadCIK zero-pads a CIK to the 10 digits used by the submissions API.
func PadCIK(cik string) string {
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
