package statements

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"financial_statements/pkg/core/cells"
	"financial_statements/pkg/core/tables"
)

// =============================================================================
// MATCH POLICY
// =============================================================================

// MatchPolicy decides how several tables found for one statement are combined.
type MatchPolicy int

const (
	// MatchFirstValid builds each candidate in document order and keeps the first
	// that has a Date row. Table-of-contents hits fall through this way.
	MatchFirstValid MatchPolicy = iota
	// MatchFirst builds only the first candidate.
	MatchFirst
	// MatchLast builds only the last candidate; later matches override earlier ones.
	MatchLast
	// MatchMerge concatenates every candidate into a single table.
	MatchMerge
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchFirst:
		return "first"
	case MatchLast:
		return "last"
	case MatchMerge:
		return "merge"
	}
	return "first-valid"
}

// ParseMatchPolicy maps the configuration spelling onto a policy.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-valid":
		return MatchFirstValid, nil
	case "first":
		return MatchFirst, nil
	case "last":
		return MatchLast, nil
	case "merge":
		return MatchMerge, nil
	}
	return MatchFirstValid, fmt.Errorf("unknown match policy %q", s)
}

// =============================================================================
// RESULTS
// =============================================================================

// Result is the outcome for one statement: a table, or an absent marker with the reason.
type Result struct {
	Statement Statement
	Heading   string
	Matches   int
	Policy    MatchPolicy
	Table     *tables.StatementTable
	Err       error
}

// Absent reports whether no table could be reconstructed.
func (r Result) Absent() bool {
	return r.Table == nil
}

type resultJSON struct {
	Heading string                 `json:"heading,omitempty"`
	Matches int                    `json:"matches"`
	Policy  string                 `json:"policy"`
	Table   *tables.StatementTable `json:"table"`
	Error   string                 `json:"error,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Heading: r.Heading,
		Matches: r.Matches,
		Policy:  r.Policy.String(),
		Table:   r.Table,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// ReconstructedFiling holds one Result per statement. It is fully populated by
// Reconstruct and not modified afterwards.
type ReconstructedFiling struct {
	Statements map[Statement]Result
}

// Table returns the reconstructed table for st, if present.
func (f *ReconstructedFiling) Table(st Statement) (*tables.StatementTable, bool) {
	r, ok := f.Statements[st]
	if !ok || r.Absent() {
		return nil, false
	}
	return r.Table, true
}

// Present lists the statements that were reconstructed, in canonical order.
func (f *ReconstructedFiling) Present() []Statement {
	var out []Statement
	for _, st := range All {
		if _, ok := f.Table(st); ok {
			out = append(out, st)
		}
	}
	return out
}

func (f *ReconstructedFiling) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Statements)
}

// =============================================================================
// RECONSTRUCTOR
// =============================================================================

// Reconstructor runs the locator and builder for every statement of a filing.
type Reconstructor struct {
	headings  Headings
	policy    MatchPolicy
	malformed cells.MalformedPolicy
	locator   *tables.Locator
	builder   *tables.Builder
	logger    *slog.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithHeadings replaces the heading set.
func WithHeadings(h Headings) Option {
	return func(r *Reconstructor) { r.headings = h }
}

// WithMatchPolicy sets how multiple matches are combined.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(r *Reconstructor) { r.policy = p }
}

// WithMalformedPolicy sets how unconvertible numeric tokens are treated.
func WithMalformedPolicy(p cells.MalformedPolicy) Option {
	return func(r *Reconstructor) { r.malformed = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconstructor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconstructor creates a reconstructor with the default headings and the
// first-valid match policy.
func NewReconstructor(opts ...Option) *Reconstructor {
	r := &Reconstructor{
		headings:  DefaultHeadings(),
		policy:    MatchFirstValid,
		malformed: cells.MalformedFail,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.locator = tables.NewLocator(r.logger)
	r.builder = tables.NewBuilder(cells.NewNormalizer(r.malformed, r.logger), r.logger)
	return r
}

// Reconstruct parses documentText and reconstructs every statement. A failure on one
// statement marks only that statement absent.
func (r *Reconstructor) Reconstruct(documentText string) *ReconstructedFiling {
	doc, err := tables.ParseDocument(documentText)
	if err != nil {
		return r.absentAll(err)
	}
	return r.ReconstructDocument(doc)
}

// ReconstructDocument is Reconstruct for an already parsed document.
func (r *Reconstructor) ReconstructDocument(doc *tables.Document) *ReconstructedFiling {
	located := r.locator.LocateAll(doc, r.headings.all())

	filing := &ReconstructedFiling{Statements: make(map[Statement]Result, len(All))}
	for _, st := range All {
		res := r.reconstruct(st, located)
		if res.Err != nil {
			r.logger.Warn("[Reconstructor] statement absent",
				"statement", st.Key(), "matches", res.Matches, "error", res.Err)
		} else {
			r.logger.Debug("[Reconstructor] statement built",
				"statement", st.Key(), "heading", res.Heading,
				"rows", len(res.Table.Rows), "periods", len(res.Table.Periods))
		}
		filing.Statements[st] = res
	}
	return filing
}

// Candidates returns every raw table found for st, canonical heading first, without
// building any of them. Callers wanting their own merge or override rule start here.
func (r *Reconstructor) Candidates(doc *tables.Document, st Statement) []tables.RawTable {
	located := r.locator.LocateAll(doc, r.headings[st])
	var out []tables.RawTable
	for _, h := range r.headings[st] {
		if loc := located[h]; loc != nil {
			out = append(out, loc.Tables...)
		}
	}
	return out
}

func (r *Reconstructor) reconstruct(st Statement, located map[string]*tables.Located) Result {
	res := Result{Statement: st, Policy: r.policy}

	var candidates []tables.RawTable
	matched := false
	for _, h := range r.headings[st] {
		loc := located[h]
		if loc == nil {
			continue
		}
		if loc.Matches > 0 {
			matched = true
		}
		candidates = append(candidates, loc.Tables...)
	}
	res.Matches = len(candidates)

	if !matched {
		res.Err = &tables.StructureError{Heading: st.Title(), Err: tables.ErrNoHeading}
		return res
	}
	if len(candidates) == 0 {
		res.Err = &tables.StructureError{Heading: st.Title(), Err: tables.ErrNoTable}
		return res
	}

	res.Table, res.Heading, res.Err = r.apply(candidates)
	if res.Err != nil {
		res.Table = nil
	}
	return res
}

func (r *Reconstructor) apply(candidates []tables.RawTable) (*tables.StatementTable, string, error) {
	switch r.policy {
	case MatchFirst:
		t, err := r.builder.Build(candidates[:1])
		return t, candidates[0].Heading, err

	case MatchLast:
		last := candidates[len(candidates)-1]
		t, err := r.builder.Build([]tables.RawTable{last})
		return t, last.Heading, err

	case MatchMerge:
		t, err := r.builder.Build(candidates)
		return t, candidates[0].Heading, err

	case MatchFirstValid:
		var firstErr error
		for _, c := range candidates {
			t, err := r.builder.Build([]tables.RawTable{c})
			if err == nil {
				return t, c.Heading, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, "", firstErr
	}

	return nil, "", fmt.Errorf("unknown match policy %d", int(r.policy))
}

func (r *Reconstructor) absentAll(err error) *ReconstructedFiling {
	r.logger.Warn("[Reconstructor] document unreadable", "error", err)
	filing := &ReconstructedFiling{Statements: make(map[Statement]Result, len(All))}
	for _, st := range All {
		filing.Statements[st] = Result{Statement: st, Policy: r.policy, Err: err}
	}
	return filing
}
