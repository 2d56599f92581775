// Package config reads and writes the on-disk directive files used by the
// lintscope command.
//
// Each directory may carry a primary lint.hcl file and a secondary lint.yml
// file. Both describe the same directives:
//
//	disable  = ["UnusedResources", "Typography"]
//	enable   = ["Security"]
//	check    = ["HardcodedText"]
//	baseline = "baseline.xml"
//	severity = { all = "warning", Correctness = "error" }
//
//	flags {
//	  warnings_as_errors = true
//	}
//
//	issue "HardcodedText" {
//	  override      = "fatal"
//	  ignore        = ["res/values/**", "gen/"]
//	  ignore_regexp = ["(?i)generated"]
//	  options       = { max = "3" }
//	}
//
// Names in disable, enable and check are classified as issue ids or
// category names using a lint.Registry.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jokarl/lintscope/lint"
)

// document is the format-neutral shape of a directive file.
type document struct {
	Disable  []string             `yaml:"disable,omitempty"`
	Enable   []string             `yaml:"enable,omitempty"`
	Check    *[]string            `yaml:"check,omitempty"`
	Baseline string               `yaml:"baseline,omitempty"`
	Severity map[string]string    `yaml:"severity,omitempty"`
	Flags    *flagsDoc            `yaml:"flags,omitempty"`
	Issues   map[string]*issueDoc `yaml:"issues,omitempty"`
}

type flagsDoc struct {
	FatalOnly        bool `hcl:"fatal_only,optional" yaml:"fatal_only,omitempty"`
	WarningsAsErrors bool `hcl:"warnings_as_errors,optional" yaml:"warnings_as_errors,omitempty"`
	IgnoreWarnings   bool `hcl:"ignore_warnings,optional" yaml:"ignore_warnings,omitempty"`
	CheckAllWarnings bool `hcl:"check_all_warnings,optional" yaml:"check_all_warnings,omitempty"`
	AllowSuppress    bool `hcl:"allow_suppress,optional" yaml:"allow_suppress,omitempty"`
}

type issueDoc struct {
	ID           string            `hcl:"id,label" yaml:"-"`
	Severity     string            `hcl:"severity,optional" yaml:"severity,omitempty"`
	Override     string            `hcl:"override,optional" yaml:"override,omitempty"`
	Ignore       []string          `hcl:"ignore,optional" yaml:"ignore,omitempty"`
	IgnoreRegexp []string          `hcl:"ignore_regexp,optional" yaml:"ignore_regexp,omitempty"`
	Options      map[string]string `hcl:"options,optional" yaml:"options,omitempty"`
}

// toDirectives converts doc to directives, classifying names with reg.
func (doc *document) toDirectives(reg *lint.Registry) (lint.Directives, error) {
	var d lint.Directives
	if len(doc.Disable) > 0 {
		d.DisabledIDs, d.DisabledCategories = reg.Split(doc.Disable)
	}
	if len(doc.Enable) > 0 {
		d.EnabledIDs, d.EnabledCategories = reg.Split(doc.Enable)
	}
	if doc.Check != nil {
		d.ExactIDs, d.ExactCategories = reg.SplitExact(*doc.Check)
	}
	d.Baseline = doc.Baseline

	for name, value := range doc.Severity {
		sev, err := lint.ParseSeverity(value)
		if err != nil {
			return lint.Directives{}, fmt.Errorf("severity for %q: %w", name, err)
		}
		if d.Severities == nil {
			d.Severities = map[string]lint.Severity{}
		}
		d.Severities[name] = sev
	}

	if f := doc.Flags; f != nil {
		d.Flags = lint.Flags{
			FatalOnly:        f.FatalOnly,
			WarningsAsErrors: f.WarningsAsErrors,
			IgnoreWarnings:   f.IgnoreWarnings,
			CheckAllWarnings: f.CheckAllWarnings,
			AllowSuppress:    f.AllowSuppress,
		}
	}

	for id, issue := range doc.Issues {
		if err := issue.apply(id, &d); err != nil {
			return lint.Directives{}, err
		}
	}

	if err := d.Validate(); err != nil {
		return lint.Directives{}, err
	}
	return d, nil
}

func (issue *issueDoc) apply(id string, d *lint.Directives) error {
	if issue.Severity != "" {
		sev, err := lint.ParseSeverity(issue.Severity)
		if err != nil {
			return fmt.Errorf("issue %q: severity: %w", id, err)
		}
		if d.Severities == nil {
			d.Severities = map[string]lint.Severity{}
		}
		d.Severities[id] = sev
	}
	if issue.Override != "" {
		sev, err := lint.ParseSeverity(issue.Override)
		if err != nil {
			return fmt.Errorf("issue %q: override: %w", id, err)
		}
		if d.SeverityOverrides == nil {
			d.SeverityOverrides = map[string]lint.Severity{}
		}
		d.SeverityOverrides[id] = sev
	}
	if len(issue.Ignore) > 0 {
		if d.IgnorePaths == nil {
			d.IgnorePaths = map[string][]string{}
		}
		d.IgnorePaths[id] = append(d.IgnorePaths[id], issue.Ignore...)
	}
	if len(issue.IgnoreRegexp) > 0 {
		if d.IgnorePatterns == nil {
			d.IgnorePatterns = map[string][]string{}
		}
		d.IgnorePatterns[id] = append(d.IgnorePatterns[id], issue.IgnoreRegexp...)
	}
	if len(issue.Options) > 0 {
		if d.Options == nil {
			d.Options = map[string]map[string]string{}
		}
		if d.Options[id] == nil {
			d.Options[id] = map[string]string{}
		}
		for k, v := range issue.Options {
			d.Options[id][k] = v
		}
	}
	return nil
}

// fromDirectives is the inverse of toDirectives. Persisted severities are
// written to the top-level severity map; everything keyed by a single issue
// goes to that issue's entry.
func fromDirectives(d lint.Directives) *document {
	doc := &document{
		Disable:  union(d.DisabledIDs, d.DisabledCategories),
		Enable:   union(d.EnabledIDs, d.EnabledCategories),
		Baseline: d.Baseline,
	}
	if d.ExactIDs != nil || d.ExactCategories != nil {
		check := union(d.ExactIDs, d.ExactCategories)
		if check == nil {
			check = []string{}
		}
		doc.Check = &check
	}
	for name, sev := range d.Severities {
		if doc.Severity == nil {
			doc.Severity = map[string]string{}
		}
		doc.Severity[name] = severityName(sev)
	}
	if d.Flags != (lint.Flags{}) {
		doc.Flags = &flagsDoc{
			FatalOnly:        d.Flags.FatalOnly,
			WarningsAsErrors: d.Flags.WarningsAsErrors,
			IgnoreWarnings:   d.Flags.IgnoreWarnings,
			CheckAllWarnings: d.Flags.CheckAllWarnings,
			AllowSuppress:    d.Flags.AllowSuppress,
		}
	}

	issue := func(id string) *issueDoc {
		if doc.Issues == nil {
			doc.Issues = map[string]*issueDoc{}
		}
		if doc.Issues[id] == nil {
			doc.Issues[id] = &issueDoc{ID: id}
		}
		return doc.Issues[id]
	}
	for id, sev := range d.SeverityOverrides {
		issue(id).Override = severityName(sev)
	}
	for id, paths := range d.IgnorePaths {
		if len(paths) > 0 {
			issue(id).Ignore = append([]string(nil), paths...)
		}
	}
	for id, patterns := range d.IgnorePatterns {
		if len(patterns) > 0 {
			issue(id).IgnoreRegexp = append([]string(nil), patterns...)
		}
	}
	for id, opts := range d.Options {
		if len(opts) == 0 {
			continue
		}
		entry := issue(id)
		entry.Options = make(map[string]string, len(opts))
		for k, v := range opts {
			entry.Options[k] = v
		}
	}
	return doc
}

// names returns every name referenced by the classified lists, for
// validation against a registry.
func (doc *document) names() []string {
	names := append(append([]string(nil), doc.Disable...), doc.Enable...)
	if doc.Check != nil {
		names = append(names, *doc.Check...)
	}
	return names
}

// sortedIssueIDs returns the issue keys of doc in a stable order.
func (doc *document) sortedIssueIDs() []string {
	ids := make([]string, 0, len(doc.Issues))
	for id := range doc.Issues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func union(a, b lint.Set) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := append(a.Sorted(), b.Sorted()...)
	sort.Strings(out)
	return out
}

func severityName(sev lint.Severity) string {
	return strings.ToLower(sev.String())
}
