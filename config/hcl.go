package config

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/jokarl/lintscope/lint"
	"github.com/zclconf/go-cty/cty"
)

type hclDocument struct {
	Disable  []string          `hcl:"disable,optional"`
	Enable   []string          `hcl:"enable,optional"`
	Check    *[]string         `hcl:"check,optional"`
	Baseline string            `hcl:"baseline,optional"`
	Severity map[string]string `hcl:"severity,optional"`
	Flags    *flagsDoc         `hcl:"flags,block"`
	Issues   []*issueDoc       `hcl:"issue,block"`
}

func decodeHCL(src []byte, filename string) (*document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var raw hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	doc := &document{
		Disable:  raw.Disable,
		Enable:   raw.Enable,
		Check:    raw.Check,
		Baseline: raw.Baseline,
		Severity: raw.Severity,
		Flags:    raw.Flags,
	}
	for _, issue := range raw.Issues {
		if doc.Issues == nil {
			doc.Issues = map[string]*issueDoc{}
		}
		if prev, ok := doc.Issues[issue.ID]; ok {
			prev.merge(issue)
			continue
		}
		doc.Issues[issue.ID] = issue
	}
	return doc, nil
}

// merge folds a repeated issue block into the first one.
func (issue *issueDoc) merge(other *issueDoc) {
	if other.Severity != "" {
		issue.Severity = other.Severity
	}
	if other.Override != "" {
		issue.Override = other.Override
	}
	issue.Ignore = append(issue.Ignore, other.Ignore...)
	issue.IgnoreRegexp = append(issue.IgnoreRegexp, other.IgnoreRegexp...)
	for k, v := range other.Options {
		if issue.Options == nil {
			issue.Options = map[string]string{}
		}
		issue.Options[k] = v
	}
}

// ParseHCL parses an HCL directive file. filename is only used in
// diagnostics.
func ParseHCL(src []byte, filename string, reg *lint.Registry) (lint.Directives, error) {
	doc, err := decodeHCL(src, filename)
	if err != nil {
		return lint.Directives{}, err
	}
	return doc.toDirectives(reg)
}

// EncodeHCL renders d as an HCL directive file that ParseHCL reads back to
// the same directives.
func EncodeHCL(d lint.Directives) []byte {
	doc := fromDirectives(d)

	f := hclwrite.NewEmptyFile()
	body := f.Body()
	if len(doc.Disable) > 0 {
		body.SetAttributeValue("disable", stringList(doc.Disable))
	}
	if len(doc.Enable) > 0 {
		body.SetAttributeValue("enable", stringList(doc.Enable))
	}
	if doc.Check != nil {
		body.SetAttributeValue("check", stringList(*doc.Check))
	}
	if doc.Baseline != "" {
		body.SetAttributeValue("baseline", cty.StringVal(doc.Baseline))
	}
	if len(doc.Severity) > 0 {
		body.SetAttributeValue("severity", stringMap(doc.Severity))
	}

	if fl := doc.Flags; fl != nil {
		body.AppendNewline()
		fb := body.AppendNewBlock("flags", nil).Body()
		setTrue(fb, "fatal_only", fl.FatalOnly)
		setTrue(fb, "warnings_as_errors", fl.WarningsAsErrors)
		setTrue(fb, "ignore_warnings", fl.IgnoreWarnings)
		setTrue(fb, "check_all_warnings", fl.CheckAllWarnings)
		setTrue(fb, "allow_suppress", fl.AllowSuppress)
	}

	for _, id := range doc.sortedIssueIDs() {
		issue := doc.Issues[id]
		body.AppendNewline()
		ib := body.AppendNewBlock("issue", []string{id}).Body()
		if issue.Severity != "" {
			ib.SetAttributeValue("severity", cty.StringVal(issue.Severity))
		}
		if issue.Override != "" {
			ib.SetAttributeValue("override", cty.StringVal(issue.Override))
		}
		if len(issue.Ignore) > 0 {
			ib.SetAttributeValue("ignore", stringList(issue.Ignore))
		}
		if len(issue.IgnoreRegexp) > 0 {
			ib.SetAttributeValue("ignore_regexp", stringList(issue.IgnoreRegexp))
		}
		if len(issue.Options) > 0 {
			ib.SetAttributeValue("options", stringMap(issue.Options))
		}
	}
	return f.Bytes()
}

func setTrue(body *hclwrite.Body, name string, v bool) {
	if v {
		body.SetAttributeValue(name, cty.True)
	}
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, item := range items {
		vals[i] = cty.StringVal(item)
	}
	return cty.ListVal(vals)
}

func stringMap(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}
