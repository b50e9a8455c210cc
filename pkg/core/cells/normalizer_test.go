package cells

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func kinds(row Row) []Kind {
	out := make([]Kind, len(row))
	for i, tok := range row {
		out[i] = tok.Kind
	}
	return out
}

func TestNormalize_HeaderRow(t *testing.T) {
	row, err := Normalize([]string{"", "March 31, 2023", "$", "March 31, 2022"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []Kind{KindLabel, KindDate, KindDate}
	got := kinds(row)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), row)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if !row.IsDateRow() {
		t.Errorf("expected row to be indexed by %q, got %q", DateLabel, row.Label())
	}
}

func TestNormalize_SingleDateMarker(t *testing.T) {
	row, err := Normalize([]string{"January 1, 2024", "June 30, 2024", "December 31, 2024"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	markers := 0
	for _, tok := range row {
		if tok.IsDateMarker() {
			markers++
		}
	}
	if markers != 1 {
		t.Errorf("expected exactly one Date marker, got %d in %v", markers, row)
	}
	if len(row) != 4 {
		t.Errorf("expected 4 tokens, got %d", len(row))
	}
}

func TestNormalize_MarkerBeforeFirstDate(t *testing.T) {
	row, err := Normalize([]string{"Three Months Ended", "March 31, 2023"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	// "Three Months Ended" mentions no month, so it keeps position 0.
	if row[0].Text != "Three Months Ended" || !row[1].IsDateMarker() || row[2].Kind != KindDate {
		t.Errorf("unexpected order: %v", row)
	}
}

func TestNormalize_DataRow(t *testing.T) {
	row, err := Normalize([]string{"Total Revenue", "$", "1,234", "", "(45)"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(row) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(row), row)
	}
	if row.Label() != "Total Revenue" {
		t.Errorf("expected label Total Revenue, got %q", row.Label())
	}
	if row[1].Kind != KindNumber || row[1].Value.IntPart() != 1234 || !row[1].Integral {
		t.Errorf("expected 1234, got %+v", row[1])
	}
	if row[2].Kind != KindNumber || row[2].Value.IntPart() != -45 {
		t.Errorf("expected -45, got %+v", row[2])
	}
}

func TestNormalize_EmptyRow(t *testing.T) {
	row, err := Normalize([]string{"", "$", ""})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(row) != 0 {
		t.Errorf("expected empty row, got %v", row)
	}
}

func TestNormalize_MalformedPolicy(t *testing.T) {
	tokens := []string{"Other", "(12"}

	_, err := NewNormalizer(MalformedFail, nil).Normalize(tokens)
	if !errors.Is(err, ErrMalformedNumber) {
		t.Fatalf("expected ErrMalformedNumber, got %v", err)
	}

	row, err := NewNormalizer(MalformedLabel, nil).Normalize(tokens)
	if err != nil {
		t.Fatalf("label policy returned error: %v", err)
	}
	if row[1].Kind != KindLabel || row[1].Text != "(12" {
		t.Errorf("expected malformed token kept as label, got %+v", row[1])
	}
}

func TestNormalize_MalformedLabelWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if _, err := NewNormalizer(MalformedLabel, logger).Normalize([]string{"Other", "(12"}); err != nil {
		t.Fatalf("label policy returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "keeping malformed number as label") {
		t.Errorf("expected a warning for the kept token, got %q", out)
	}
}

func TestParseMalformedPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    MalformedPolicy
		wantErr bool
	}{
		{"", MalformedFail, false},
		{"fail", MalformedFail, false},
		{"LABEL", MalformedLabel, false},
		{"ignore", MalformedFail, true},
	}

	for _, tc := range tests {
		got, err := ParseMalformedPolicy(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("Input %q: error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("Input %q: expected %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestToken_JSON(t *testing.T) {
	row, err := Normalize([]string{"Net income", "(1,234.5)", "March 31, 2023"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back Row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != len(row) {
		t.Fatalf("expected %d tokens, got %d", len(row), len(back))
	}
	for i := range row {
		if back[i].Kind != row[i].Kind || back[i].String() != row[i].String() {
			t.Errorf("token %d: expected %+v, got %+v", i, row[i], back[i])
		}
	}
	if back[1].Integral {
		t.Errorf("decimal token should not round-trip as integral")
	}
}
