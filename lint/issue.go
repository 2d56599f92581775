package lint

// Issue is the read-only identity of a rule that lintscope can report.
// Issues are compared by ID; the same *Issue should be shared by every
// caller that reports it.
//
// Example:
//
//	var UnusedResources = &lint.Issue{
//	    ID:              "UnusedResources",
//	    Category:        lint.Performance,
//	    DefaultSeverity: lint.WARNING,
//	}
type Issue struct {
	// ID is the unique, stable issue id.
	ID string
	// Category classifies the issue.
	Category *Category
	// DefaultSeverity is the built-in severity of the issue.
	DefaultSeverity Severity
	// DisabledByDefault marks issues that only run when explicitly enabled
	// or when a scope sets CheckAllWarnings.
	DisabledByDefault bool
	// SuppressNames, when non-empty, means the issue has its own in-source
	// suppression convention. Directive- and flag-driven tuning is bypassed
	// for such issues.
	SuppressNames []string
	// Summary is a one-line description used in listings.
	Summary string
}

// HasOwnSuppression reports whether the issue defines its own suppression
// mechanism.
func (i *Issue) HasOwnSuppression() bool {
	return len(i.SuppressNames) > 0
}

// String returns the issue id.
func (i *Issue) String() string {
	return i.ID
}

// Well-known issue ids with special handling during resolution.
const (
	// BaselineIssueID reports how many findings a baseline file filtered.
	// It is never promoted by WarningsAsErrors.
	BaselineIssueID = "LintBaseline"
	// LintErrorIssueID reports problems in lintscope's own configuration.
	LintErrorIssueID = "LintError"
	// InterproceduralIssueID is excluded from CheckAllWarnings because it is
	// much slower than other checks.
	InterproceduralIssueID = "WrongThreadInterprocedural"
)

// Built-in meta issues.
var (
	BaselineIssue = &Issue{
		ID:              BaselineIssueID,
		Category:        Lint,
		DefaultSeverity: INFORMATIONAL,
		Summary:         "Baseline applied",
	}
	LintErrorIssue = &Issue{
		ID:              LintErrorIssueID,
		Category:        Lint,
		DefaultSeverity: ERROR,
		Summary:         "Lint failure",
	}
	InterproceduralIssue = &Issue{
		ID:                InterproceduralIssueID,
		Category:          Correctness,
		DefaultSeverity:   ERROR,
		DisabledByDefault: true,
		Summary:           "Wrong thread (interprocedural)",
	}
)
