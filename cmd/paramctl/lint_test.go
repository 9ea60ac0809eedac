package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunLintValid(t *testing.T) {
	setupRepository(t, map[string]string{"discount.yaml": discountYAML})

	cmd, out := testCommand()
	if err := runLint(cmd, nil); err != nil {
		t.Fatalf("runLint() error = %v", err)
	}
	if !strings.Contains(out.String(), "✓ discount (3 entries)") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "1 parameters checked, 1 valid, 0 invalid") {
		t.Errorf("summary missing from %q", out.String())
	}
}

func TestRunLintInvalid(t *testing.T) {
	setupRepository(t, map[string]string{
		"discount.yaml": discountYAML,
		"broken.yaml":   brokenYAML,
	})

	cmd, out := testCommand()
	if err := runLint(cmd, nil); err == nil {
		t.Fatal("runLint() with an unknown type code should return error")
	}
	if !strings.Contains(out.String(), "✗ broken:") {
		t.Errorf("output %q does not report broken", out.String())
	}
	if !strings.Contains(out.String(), "✓ discount") {
		t.Errorf("output %q does not report discount", out.String())
	}
}

func TestRunLintNamed(t *testing.T) {
	setupRepository(t, map[string]string{
		"discount.yaml": discountYAML,
		"broken.yaml":   brokenYAML,
	})

	cmd, _ := testCommand()
	if err := runLint(cmd, []string{"discount"}); err != nil {
		t.Errorf("runLint(discount) error = %v", err)
	}
	if err := runLint(cmd, []string{"missing"}); err == nil {
		t.Error("runLint(missing) should return error")
	}
}

func TestRunLintJSON(t *testing.T) {
	setupRepository(t, map[string]string{
		"discount.yaml": discountYAML,
		"broken.yaml":   brokenYAML,
	})
	lintFlags.format = "json"

	cmd, out := testCommand()
	_ = runLint(cmd, nil)

	var report struct {
		Results []LintResult `json:"results"`
		Valid   bool         `json:"valid"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if report.Valid {
		t.Error("report should be invalid")
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}
	// List returns names sorted
	if report.Results[0].Parameter != "broken" || report.Results[0].Valid || report.Results[0].Error == "" {
		t.Errorf("results[0] = %+v", report.Results[0])
	}
	if report.Results[1].Parameter != "discount" || !report.Results[1].Valid || report.Results[1].Entries != 3 {
		t.Errorf("results[1] = %+v", report.Results[1])
	}
}

func TestRunLintBadFormat(t *testing.T) {
	setupRepository(t, nil)
	lintFlags.format = "csv"

	cmd, _ := testCommand()
	if err := runLint(cmd, nil); err == nil {
		t.Error("runLint() with csv format should return error")
	}
}
