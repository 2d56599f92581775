// Package plugin provides conversion functions between lint types and
// protobuf well-known types.
//
// Directive sets travel as a google.protobuf.Struct. Sets become lists of
// names, severities travel as their lowercase names, and a set that is
// present but empty is kept as an empty list so exact allow-lists survive
// the trip.

package plugin

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jokarl/lintscope/lint"
)

const (
	fieldDisabledIDs        = "disabled_ids"
	fieldDisabledCategories = "disabled_categories"
	fieldEnabledIDs         = "enabled_ids"
	fieldEnabledCategories  = "enabled_categories"
	fieldExactIDs           = "exact_ids"
	fieldExactCategories    = "exact_categories"
	fieldSeverityOverrides  = "severity_overrides"
	fieldSeverities         = "severities"
	fieldIgnorePaths        = "ignore_paths"
	fieldIgnorePatterns     = "ignore_patterns"
	fieldOptions            = "options"
	fieldBaseline           = "baseline"
	fieldFlags              = "flags"
)

// toProtoDirectives converts directives to a Struct.
func toProtoDirectives(d lint.Directives) (*structpb.Struct, error) {
	m := map[string]interface{}{}
	putSet(m, fieldDisabledIDs, d.DisabledIDs)
	putSet(m, fieldDisabledCategories, d.DisabledCategories)
	putSet(m, fieldEnabledIDs, d.EnabledIDs)
	putSet(m, fieldEnabledCategories, d.EnabledCategories)
	putSet(m, fieldExactIDs, d.ExactIDs)
	putSet(m, fieldExactCategories, d.ExactCategories)
	putSeverities(m, fieldSeverityOverrides, d.SeverityOverrides)
	putSeverities(m, fieldSeverities, d.Severities)
	putLists(m, fieldIgnorePaths, d.IgnorePaths)
	putLists(m, fieldIgnorePatterns, d.IgnorePatterns)

	if len(d.Options) > 0 {
		opts := make(map[string]interface{}, len(d.Options))
		for id, values := range d.Options {
			inner := make(map[string]interface{}, len(values))
			for k, v := range values {
				inner[k] = v
			}
			opts[id] = inner
		}
		m[fieldOptions] = opts
	}
	if d.Baseline != "" {
		m[fieldBaseline] = d.Baseline
	}
	if d.Flags != (lint.Flags{}) {
		m[fieldFlags] = map[string]interface{}{
			"fatal_only":         d.Flags.FatalOnly,
			"warnings_as_errors": d.Flags.WarningsAsErrors,
			"ignore_warnings":    d.Flags.IgnoreWarnings,
			"check_all_warnings": d.Flags.CheckAllWarnings,
			"allow_suppress":     d.Flags.AllowSuppress,
		}
	}
	return structpb.NewStruct(m)
}

// fromProtoDirectives converts a Struct back to directives.
func fromProtoDirectives(s *structpb.Struct) (lint.Directives, error) {
	var d lint.Directives
	if s == nil {
		return d, nil
	}
	fields := s.GetFields()

	d.DisabledIDs = getSet(fields, fieldDisabledIDs)
	d.DisabledCategories = getSet(fields, fieldDisabledCategories)
	d.EnabledIDs = getSet(fields, fieldEnabledIDs)
	d.EnabledCategories = getSet(fields, fieldEnabledCategories)
	d.ExactIDs = getSet(fields, fieldExactIDs)
	d.ExactCategories = getSet(fields, fieldExactCategories)

	var err error
	if d.SeverityOverrides, err = getSeverities(fields, fieldSeverityOverrides); err != nil {
		return lint.Directives{}, err
	}
	if d.Severities, err = getSeverities(fields, fieldSeverities); err != nil {
		return lint.Directives{}, err
	}
	d.IgnorePaths = getLists(fields, fieldIgnorePaths)
	d.IgnorePatterns = getLists(fields, fieldIgnorePatterns)

	if opts := fields[fieldOptions].GetStructValue(); opts != nil {
		d.Options = make(map[string]map[string]string, len(opts.GetFields()))
		for id, v := range opts.GetFields() {
			inner := map[string]string{}
			for k, val := range v.GetStructValue().GetFields() {
				inner[k] = val.GetStringValue()
			}
			d.Options[id] = inner
		}
	}
	d.Baseline = fields[fieldBaseline].GetStringValue()

	if flags := fields[fieldFlags].GetStructValue(); flags != nil {
		f := flags.GetFields()
		d.Flags = lint.Flags{
			FatalOnly:        f["fatal_only"].GetBoolValue(),
			WarningsAsErrors: f["warnings_as_errors"].GetBoolValue(),
			IgnoreWarnings:   f["ignore_warnings"].GetBoolValue(),
			CheckAllWarnings: f["check_all_warnings"].GetBoolValue(),
			AllowSuppress:    f["allow_suppress"].GetBoolValue(),
		}
	}
	return d, nil
}

func putSet(m map[string]interface{}, key string, s lint.Set) {
	if s == nil {
		return
	}
	m[key] = stringsToList(s.Sorted())
}

func putSeverities(m map[string]interface{}, key string, sevs map[string]lint.Severity) {
	if len(sevs) == 0 {
		return
	}
	out := make(map[string]interface{}, len(sevs))
	for k, sev := range sevs {
		out[k] = strings.ToLower(sev.String())
	}
	m[key] = out
}

func putLists(m map[string]interface{}, key string, lists map[string][]string) {
	if len(lists) == 0 {
		return
	}
	out := make(map[string]interface{}, len(lists))
	for k, items := range lists {
		out[k] = stringsToList(items)
	}
	m[key] = out
}

func stringsToList(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func listToStrings(l *structpb.ListValue) []string {
	out := make([]string, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		out = append(out, v.GetStringValue())
	}
	return out
}

func getSet(fields map[string]*structpb.Value, key string) lint.Set {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	return lint.NewSet(listToStrings(v.GetListValue())...)
}

func getSeverities(fields map[string]*structpb.Value, key string) (map[string]lint.Severity, error) {
	s := fields[key].GetStructValue()
	if s == nil {
		return nil, nil
	}
	out := make(map[string]lint.Severity, len(s.GetFields()))
	for k, v := range s.GetFields() {
		sev, err := lint.ParseSeverity(v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", key, k, err)
		}
		out[k] = sev
	}
	return out, nil
}

func getLists(fields map[string]*structpb.Value, key string) map[string][]string {
	s := fields[key].GetStructValue()
	if s == nil {
		return nil
	}
	out := make(map[string][]string, len(s.GetFields()))
	for k, v := range s.GetFields() {
		out[k] = listToStrings(v.GetListValue())
	}
	return out
}
