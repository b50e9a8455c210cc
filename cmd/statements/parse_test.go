package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const filingHTML = `<html><body>
<p>CONSOLIDATED BALANCE SHEETS</p>
<table>
  <tr><td></td><td>December 31, 2024</td><td>December 31, 2023</td></tr>
  <tr><td>Total assets</td><td>$</td><td>1,200</td><td>$</td><td>1,100</td></tr>
</table>
</body></html>`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		parseStatement = ""
		parseFormat = "json"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filing.htm")
	if err := os.WriteFile(path, []byte(filingHTML), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runRoot(t, "parse", path, "--format", "md", "--statement", "balance_sheet")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out, "## CONSOLIDATED BALANCE SHEETS") || !strings.Contains(out, "| Total assets | 1200 | 1100 |") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "CASH FLOWS") {
		t.Errorf("expected only the requested statement:\n%s", out)
	}
}

func TestParseCommand_UnknownStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filing.htm")
	if err := os.WriteFile(path, []byte(filingHTML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runRoot(t, "parse", path, "--statement", "notes"); err == nil {
		t.Error("expected error for an unknown statement")
	}
}
