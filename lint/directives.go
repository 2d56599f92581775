package lint

import (
	"fmt"
	"regexp"
)

// AllIssues is the wildcard key accepted by Severities, IgnorePaths and
// IgnorePatterns. It matches every issue.
const AllIssues = "all"

// Flags are scope-wide switches that adjust the outcome of every issue.
// They correspond to the global command-line flags of the analysis driver.
type Flags struct {
	// FatalOnly turns every non-FATAL result into IGNORE.
	FatalOnly bool
	// WarningsAsErrors promotes WARNING results to ERROR.
	WarningsAsErrors bool
	// IgnoreWarnings turns WARNING results into IGNORE.
	IgnoreWarnings bool
	// CheckAllWarnings runs issues that are disabled by default.
	CheckAllWarnings bool
	// AllowSuppress lets directives tune issues that define their own
	// suppression mechanism.
	AllowSuppress bool
}

// Directives is the plain, mutable description of one scope's directives.
// Directive sources fill it in and hand it to NewDirectiveSet; the
// resolution engine only ever reads the resulting DirectiveSet.
//
// Example:
//
//	ds := lint.NewDirectiveSet(lint.Directives{
//	    DisabledIDs:       lint.NewSet("UnusedResources"),
//	    EnabledCategories: lint.NewSet("Security"),
//	    SeverityOverrides: map[string]lint.Severity{"HardcodedText": lint.ERROR},
//	    Flags:             lint.Flags{WarningsAsErrors: true},
//	})
type Directives struct {
	// DisabledIDs are issue ids forced to IGNORE.
	DisabledIDs Set
	// DisabledCategories are category names forced to IGNORE, including
	// their child categories.
	DisabledCategories Set
	// EnabledIDs are issue ids that must be active.
	EnabledIDs Set
	// EnabledCategories are category names whose issues must be active.
	EnabledCategories Set
	// ExactIDs, when non-nil, is the only set of issue ids allowed to run
	// (Lint issues excepted).
	ExactIDs Set
	// ExactCategories, when non-nil, is the only set of categories allowed
	// to run (Lint issues excepted).
	ExactCategories Set
	// SeverityOverrides pins the severity of an issue id. Overrides beat
	// every directive except an explicit disable.
	SeverityOverrides map[string]Severity
	// Severities are the persisted severities of the scope, keyed by issue
	// id, category name or AllIssues. A match replaces the inherited
	// baseline for the scope.
	Severities map[string]Severity
	// IgnorePaths maps an issue id (or AllIssues) to scope-relative path
	// prefixes or doublestar globs whose findings are suppressed.
	IgnorePaths map[string][]string
	// IgnorePatterns maps an issue id (or AllIssues) to regular expressions
	// matched against the finding message and the scope-relative path.
	IgnorePatterns map[string][]string
	// Options holds per-issue option values, keyed by issue id then option
	// name.
	Options map[string]map[string]string
	// Baseline is the path of a baseline file declared by the scope.
	Baseline string
	// Flags are the scope-wide switches.
	Flags Flags
}

// Clone returns a deep copy of d. Nil sets stay nil.
func (d Directives) Clone() Directives {
	out := d
	out.DisabledIDs = d.DisabledIDs.Clone()
	out.DisabledCategories = d.DisabledCategories.Clone()
	out.EnabledIDs = d.EnabledIDs.Clone()
	out.EnabledCategories = d.EnabledCategories.Clone()
	out.ExactIDs = d.ExactIDs.Clone()
	out.ExactCategories = d.ExactCategories.Clone()
	out.SeverityOverrides = cloneSeverities(d.SeverityOverrides)
	out.Severities = cloneSeverities(d.Severities)
	out.IgnorePaths = cloneLists(d.IgnorePaths)
	out.IgnorePatterns = cloneLists(d.IgnorePatterns)
	if d.Options != nil {
		out.Options = make(map[string]map[string]string, len(d.Options))
		for id, opts := range d.Options {
			m := make(map[string]string, len(opts))
			for k, v := range opts {
				m[k] = v
			}
			out.Options[id] = m
		}
	}
	return out
}

// Validate checks values that would otherwise be silently ignored: unknown
// severities and regular expressions that do not compile.
func (d Directives) Validate() error {
	for id, sev := range d.SeverityOverrides {
		if !sev.Valid() {
			return fmt.Errorf("severity override for %q: invalid severity %d", id, int(sev))
		}
	}
	for key, sev := range d.Severities {
		if !sev.Valid() {
			return fmt.Errorf("severity for %q: invalid severity %d", key, int(sev))
		}
	}
	for id, patterns := range d.IgnorePatterns {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("ignore pattern for %q: %w", id, err)
			}
		}
	}
	return nil
}

func cloneSeverities(m map[string]Severity) map[string]Severity {
	if m == nil {
		return nil
	}
	out := make(map[string]Severity, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneLists(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DirectiveSet is the read-only, resolved form of one scope's Directives.
// It can only be changed through a Transaction (see Begin).
type DirectiveSet struct {
	d        Directives
	patterns map[string][]*regexp.Regexp
	editing  bool
}

// NewDirectiveSet copies d into a new DirectiveSet. Invalid ignore patterns
// are dropped; call Directives.Validate first to report them.
func NewDirectiveSet(d Directives) *DirectiveSet {
	ds := &DirectiveSet{d: d.Clone()}
	ds.compile()
	return ds
}

// EmptyDirectiveSet returns a set with no directives.
func EmptyDirectiveSet() *DirectiveSet {
	return NewDirectiveSet(Directives{})
}

func (ds *DirectiveSet) compile() {
	ds.patterns = make(map[string][]*regexp.Regexp, len(ds.d.IgnorePatterns))
	for id, patterns := range ds.d.IgnorePatterns {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			ds.patterns[id] = append(ds.patterns[id], re)
		}
	}
}

// Directives returns a copy of the underlying directives.
func (ds *DirectiveSet) Directives() Directives {
	return ds.d.Clone()
}

// Flags returns the scope-wide flags.
func (ds *DirectiveSet) Flags() Flags {
	return ds.d.Flags
}

// Baseline returns the baseline file declared by the scope, or "".
func (ds *DirectiveSet) Baseline() string {
	return ds.d.Baseline
}

// Editing reports whether a Transaction is open on the set.
func (ds *DirectiveSet) Editing() bool {
	return ds.editing
}

// DefaultSeverity returns the computed default severity of issue in this
// scope: IGNORE for issues disabled by default, unless CheckAllWarnings is
// set and the issue is not the interprocedural check.
func (ds *DirectiveSet) DefaultSeverity(issue *Issue) Severity {
	return ds.defaultSeverity(issue, false)
}

// defaultSeverity is DefaultSeverity with CheckAllWarnings also taken as
// set when checkAll is true.
func (ds *DirectiveSet) defaultSeverity(issue *Issue, checkAll bool) Severity {
	if !issue.DisabledByDefault {
		return issue.DefaultSeverity
	}
	if (checkAll || ds.d.Flags.CheckAllWarnings) && issue.ID != InterproceduralIssueID {
		return issue.DefaultSeverity
	}
	return IGNORE
}

// PersistedSeverity looks up the scope's own severity for issue by id,
// category, parent category and finally AllIssues.
func (ds *DirectiveSet) PersistedSeverity(issue *Issue) (Severity, bool) {
	if len(ds.d.Severities) == 0 {
		return 0, false
	}
	if sev, ok := ds.d.Severities[issue.ID]; ok {
		return sev, true
	}
	if c := issue.Category; c != nil {
		if sev, ok := ds.d.Severities[c.Name]; ok {
			return sev, true
		}
		if c.Parent != nil {
			if sev, ok := ds.d.Severities[c.Parent.Name]; ok {
				return sev, true
			}
		}
	}
	sev, ok := ds.d.Severities[AllIssues]
	return sev, ok
}

// Override returns the pinned severity for id, if any.
func (ds *DirectiveSet) Override(id string) (Severity, bool) {
	sev, ok := ds.d.SeverityOverrides[id]
	return sev, ok
}

// IsDisabled reports whether issue is disabled by id or category.
func (ds *DirectiveSet) IsDisabled(issue *Issue) bool {
	return ds.d.DisabledIDs.Has(issue.ID) || issue.Category.In(ds.d.DisabledCategories)
}

// IsEnabled reports whether issue is enabled by id or category.
func (ds *DirectiveSet) IsEnabled(issue *Issue) bool {
	return ds.d.EnabledIDs.Has(issue.ID) || issue.Category.In(ds.d.EnabledCategories)
}

// Option returns the raw value of option name for issue id.
func (ds *DirectiveSet) Option(id, name string) (string, bool) {
	v, ok := ds.d.Options[id][name]
	return v, ok
}

// IgnorePaths returns the ignore paths for id followed by those for
// AllIssues.
func (ds *DirectiveSet) IgnorePaths(id string) []string {
	paths := append([]string(nil), ds.d.IgnorePaths[id]...)
	return append(paths, ds.d.IgnorePaths[AllIssues]...)
}

// IgnorePatterns returns the compiled ignore patterns for id followed by
// those for AllIssues.
func (ds *DirectiveSet) IgnorePatterns(id string) []*regexp.Regexp {
	patterns := append([]*regexp.Regexp(nil), ds.patterns[id]...)
	return append(patterns, ds.patterns[AllIssues]...)
}
