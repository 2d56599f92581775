// Package lint provides the issue model and the severity resolution rules
// used by lintscope.
//
// This package is pure: it knows nothing about directories, files or how
// directives are stored. The scope package layers directive sets into a
// directory hierarchy and calls Resolve for every (location, issue) pair.
//
// Key types:
//   - Severity: Outcome levels (FATAL, ERROR, WARNING, INFORMATIONAL, IGNORE)
//   - Category: Tree of classification labels for issues
//   - Issue: Read-only identity of a rule (id, category, default severity)
//   - Registry: Lookup of known issues and categories
//   - DirectiveSet: One scope's enable/disable/override directives and flags
//   - Transaction: Bulk-edit bracket for mutating a DirectiveSet
package lint

import (
	"fmt"
	"strings"
)

// Severity represents the outcome level of an issue in a given scope.
// Values are ordered: a larger value is more severe, so severities can be
// compared directly (FATAL > ERROR > WARNING > INFORMATIONAL > IGNORE).
type Severity int

const (
	// IGNORE means the issue is inactive in the scope.
	IGNORE Severity = iota + 1
	// INFORMATIONAL indicates a finding that is reported but never fails a run.
	INFORMATIONAL
	// WARNING indicates a potential problem that may need attention.
	WARNING
	// ERROR indicates a problem that should fail the run.
	ERROR
	// FATAL indicates a problem severe enough to abort release builds.
	FATAL
)

var severityNames = map[Severity]string{
	IGNORE:        "IGNORE",
	INFORMATIONAL: "INFORMATIONAL",
	WARNING:       "WARNING",
	ERROR:         "ERROR",
	FATAL:         "FATAL",
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= IGNORE && s <= FATAL
}

// ParseSeverity converts a severity name to a Severity. Matching is
// case-insensitive and accepts "info" as a short form of INFORMATIONAL.
//
// Example:
//
//	sev, err := lint.ParseSeverity("warning") // lint.WARNING
func ParseSeverity(name string) (Severity, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "INFO" {
		return INFORMATIONAL, nil
	}
	for sev, n := range severityNames {
		if n == key {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// MinSeverity returns the less severe of a and b.
func MinSeverity(a, b Severity) Severity {
	if a < b {
		return a
	}
	return b
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}
