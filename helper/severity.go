package helper

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jokarl/lintscope/lint"
)

// Resolver is anything that resolves issue severities, such as a
// *scope.Node.
type Resolver interface {
	Severity(issue *lint.Issue) lint.Severity
}

// Severities maps issues to expected severities.
type Severities map[*lint.Issue]lint.Severity

// AssertSeverities resolves every issue in want with r and reports all
// mismatches in a single diff keyed by issue id.
//
// Example:
//
//	helper.AssertSeverities(t, node, helper.Severities{
//	    unusedResources: lint.IGNORE,
//	    hardcodedText:   lint.ERROR,
//	})
func AssertSeverities(t *testing.T, r Resolver, want Severities) {
	t.Helper()

	wantByID := make(map[string]string, len(want))
	gotByID := make(map[string]string, len(want))
	for issue, sev := range want {
		wantByID[issue.ID] = sev.String()
		gotByID[issue.ID] = r.Severity(issue).String()
	}

	if diff := cmp.Diff(wantByID, gotByID); diff != "" {
		t.Errorf("severities mismatch (-want +got):\n%s", diff)
	}
}

// AssertActive verifies that every issue resolves to something other than
// IGNORE.
func AssertActive(t *testing.T, r Resolver, issues ...*lint.Issue) {
	t.Helper()
	var ignored []string
	for _, issue := range issues {
		if r.Severity(issue) == lint.IGNORE {
			ignored = append(ignored, issue.ID)
		}
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		t.Errorf("expected issues to be active, got IGNORE for %v", ignored)
	}
}
