package lint

// Step names the precedence rule that decided a severity.
type Step string

const (
	StepOwnSuppression   Step = "own-suppression"
	StepDisabled         Step = "disabled"
	StepOverride         Step = "override"
	StepExactID          Step = "exact-id"
	StepExactCategory    Step = "exact-category"
	StepEnabled          Step = "enabled"
	StepBaseline         Step = "baseline"
	StepFatalOnly        Step = "fatal-only"
	StepWarningsAsErrors Step = "warnings-as-errors"
	StepIgnoreWarnings   Step = "ignore-warnings"
)

// Decision is the outcome of resolving one issue in one scope.
type Decision struct {
	// Severity is the final severity.
	Severity Severity
	// Step is the precedence rule that produced the severity before the
	// scope flags were applied.
	Step Step
	// Adjustments lists the flags that changed the severity afterwards.
	Adjustments []Step
}

// BaselineFunc returns the resolved severity of an issue in the parent
// scope. A nil BaselineFunc marks the root of the chain.
type BaselineFunc func() Severity

// resolution carries one Resolve call through the precedence table. The
// baseline is computed at most once, and only by rules that need it.
type resolution struct {
	issue    *Issue
	ds       *DirectiveSet
	parent   BaselineFunc
	checkAll bool

	base     Severity
	haveBase bool
}

func (r *resolution) baseline() Severity {
	if r.haveBase {
		return r.base
	}
	switch {
	case r.issue.HasOwnSuppression():
		r.base = r.ds.defaultSeverity(r.issue, r.checkAll)
	default:
		if sev, ok := r.ds.PersistedSeverity(r.issue); ok {
			r.base = sev
		} else if r.parent != nil {
			r.base = r.parent()
		} else {
			r.base = r.ds.defaultSeverity(r.issue, r.checkAll)
		}
	}
	r.haveBase = true
	return r.base
}

// visible returns the baseline, or a severity that is guaranteed to be
// active when the baseline is IGNORE.
func (r *resolution) visible() Severity {
	sev := r.baseline()
	if sev != IGNORE {
		return sev
	}
	if sev = r.issue.DefaultSeverity; sev != IGNORE && sev.Valid() {
		return sev
	}
	return WARNING
}

// precedenceRule is one row of the precedence table. apply returns ok=false
// to fall through to the next row.
type precedenceRule struct {
	step  Step
	apply func(r *resolution) (sev Severity, ok bool)
}

// precedence is evaluated top to bottom; the first rule that applies wins.
// The baseline row always applies.
var precedence = []precedenceRule{
	{StepDisabled, func(r *resolution) (Severity, bool) {
		return IGNORE, r.ds.IsDisabled(r.issue)
	}},
	{StepOverride, func(r *resolution) (Severity, bool) {
		return r.ds.Override(r.issue.ID)
	}},
	{StepExactID, func(r *resolution) (Severity, bool) {
		exact := r.ds.d.ExactIDs
		switch {
		case exact == nil:
			return 0, false
		case exact.Has(r.issue.ID):
			return r.visible(), true
		case !r.issue.Category.IsLint():
			return IGNORE, true
		}
		return 0, false
	}},
	{StepExactCategory, func(r *resolution) (Severity, bool) {
		exact := r.ds.d.ExactCategories
		switch {
		case exact == nil:
			return 0, false
		case r.issue.Category.In(exact):
			return r.visible(), true
		case !r.issue.Category.IsLint(), r.ds.d.DisabledCategories.Has(Lint.Name):
			return IGNORE, true
		}
		return 0, false
	}},
	{StepEnabled, func(r *resolution) (Severity, bool) {
		if r.ds.IsEnabled(r.issue) {
			return r.visible(), true
		}
		return 0, false
	}},
	{StepBaseline, func(r *resolution) (Severity, bool) {
		return r.baseline(), true
	}},
}

// flagRule adjusts a resolved severity according to a scope flag. stop ends
// the adjustment pass.
type flagRule struct {
	step  Step
	apply func(issue *Issue, flags Flags, sev Severity) (out Severity, changed, stop bool)
}

var flagAdjustments = []flagRule{
	{StepFatalOnly, func(_ *Issue, f Flags, sev Severity) (Severity, bool, bool) {
		if f.FatalOnly && sev != FATAL {
			return IGNORE, sev != IGNORE, true
		}
		return sev, false, f.FatalOnly
	}},
	{StepWarningsAsErrors, func(issue *Issue, f Flags, sev Severity) (Severity, bool, bool) {
		if f.WarningsAsErrors && sev == WARNING && issue.ID != BaselineIssueID {
			return ERROR, true, false
		}
		return sev, false, false
	}},
	{StepIgnoreWarnings, func(_ *Issue, f Flags, sev Severity) (Severity, bool, bool) {
		if f.IgnoreWarnings && sev == WARNING {
			return IGNORE, true, false
		}
		return sev, false, false
	}},
}

// Resolve returns the effective severity of issue in a scope with
// directives ds. parent supplies the resolved severity of the enclosing
// scope and is only called when the baseline is needed.
func Resolve(issue *Issue, ds *DirectiveSet, parent BaselineFunc) Severity {
	return Explain(issue, ds, parent).Severity
}

// Explain is like Resolve but also reports which rules decided the result.
//
// Issues with their own suppression mechanism resolve to their computed
// default severity unless the scope sets AllowSuppress; in that case the
// default becomes the baseline and the remaining rules apply.
func Explain(issue *Issue, ds *DirectiveSet, parent BaselineFunc) Decision {
	return ExplainInherited(issue, ds, parent, Flags{})
}

// ExplainInherited is like Explain for a scope resolved on behalf of a
// descendant scope whose flags are inherited. Only CheckAllWarnings is
// inherited: set in any scope of a chain, it widens the computed default
// severity all the way to the root, where the default is taken.
//
// Example:
//
//	leaf := ds.Flags()
//	base := func() lint.Severity {
//	    return lint.ExplainInherited(issue, parentDS, nil, leaf).Severity
//	}
//	d := lint.ExplainInherited(issue, ds, base, leaf)
func ExplainInherited(issue *Issue, ds *DirectiveSet, parent BaselineFunc, inherited Flags) Decision {
	if ds == nil {
		ds = EmptyDirectiveSet()
	}
	r := &resolution{
		issue:    issue,
		ds:       ds,
		parent:   parent,
		checkAll: inherited.CheckAllWarnings,
	}
	if issue.HasOwnSuppression() && !ds.d.Flags.AllowSuppress {
		return Decision{Severity: r.baseline(), Step: StepOwnSuppression}
	}

	var d Decision
	for _, rule := range precedence {
		if sev, ok := rule.apply(r); ok {
			d.Severity, d.Step = sev, rule.step
			break
		}
	}

	flags := ds.d.Flags
	for _, rule := range flagAdjustments {
		sev, changed, stop := rule.apply(issue, flags, d.Severity)
		if changed {
			d.Severity = sev
			d.Adjustments = append(d.Adjustments, rule.step)
		}
		if stop {
			break
		}
	}
	return d
}
