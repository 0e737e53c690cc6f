package fixtures

import (
	"fmt"
	"strings"
)

// ExpectedColumns are tried in order when looking for the outcome column
var ExpectedColumns = []string{"expected", "expected_result", "expected_outcome", "result"}

// Expected returns the expected outcome of the row: true for Pass.
// Unrecognised or missing values are an error so a typo never silently
// flips a row.
func (r Row) Expected() (bool, error) {
	for _, c := range ExpectedColumns {
		if !r.table.Has(c) {
			continue
		}
		return ParseOutcome(r.Get(c))
	}
	return false, fmt.Errorf("row %d: no expected-outcome column", r.Index)
}

// ParseOutcome reads Pass/Fail style markers
func ParseOutcome(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "pass", "passed", "true", "yes", "y", "1", "success", "ok", "valid":
		return true, nil
	case "fail", "failed", "false", "no", "n", "0", "failure", "error", "invalid", "reject", "rejected":
		return false, nil
	}
	return false, fmt.Errorf("unrecognised expected outcome %q", v)
}

// KnownIssue returns the known_issue note, if any. A non-empty note marks a
// row whose expectation encodes a documented site defect.
func (r Row) KnownIssue() string {
	return r.Get("known_issue")
}
