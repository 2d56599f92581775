package lint

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDirectiveSet_Copies(t *testing.T) {
	d := Directives{
		DisabledIDs: NewSet("A"),
		Options:     map[string]map[string]string{"A": {"k": "v"}},
	}
	ds := NewDirectiveSet(d)

	d.DisabledIDs["B"] = struct{}{}
	d.Options["A"]["k"] = "changed"

	if ds.IsDisabled(&Issue{ID: "B", Category: Correctness}) {
		t.Error("DirectiveSet shares DisabledIDs with its input")
	}
	if v, _ := ds.Option("A", "k"); v != "v" {
		t.Errorf("Option() = %q, want %q", v, "v")
	}
}

func TestDirectives_ClonePreservesNil(t *testing.T) {
	d := Directives{ExactCategories: NewSet()}
	got := d.Clone()
	if got.ExactIDs != nil {
		t.Error("Clone() turned nil ExactIDs into a non-nil set")
	}
	if got.ExactCategories == nil {
		t.Error("Clone() turned empty ExactCategories into nil")
	}
}

func TestDirectives_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Directives
		wantErr bool
	}{
		{"empty", Directives{}, false},
		{"good", Directives{
			SeverityOverrides: map[string]Severity{"A": ERROR},
			IgnorePatterns:    map[string][]string{"A": {`^gen/`}},
		}, false},
		{"bad override", Directives{SeverityOverrides: map[string]Severity{"A": 0}}, true},
		{"bad severity", Directives{Severities: map[string]Severity{"A": 17}}, true},
		{"bad pattern", Directives{IgnorePatterns: map[string][]string{"A": {"("}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.d.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectiveSet_PersistedSeverityOrder(t *testing.T) {
	issue := &Issue{ID: "M", Category: Messages, DefaultSeverity: WARNING}
	tests := []struct {
		name       string
		severities map[string]Severity
		want       Severity
		wantOK     bool
	}{
		{"none", nil, 0, false},
		{"by id", map[string]Severity{"M": FATAL, "Messages": ERROR, AllIssues: IGNORE}, FATAL, true},
		{"by category", map[string]Severity{"Messages": ERROR, "Correctness": INFORMATIONAL}, ERROR, true},
		{"by parent category", map[string]Severity{"Correctness": INFORMATIONAL, AllIssues: IGNORE}, INFORMATIONAL, true},
		{"by all", map[string]Severity{AllIssues: IGNORE}, IGNORE, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDirectiveSet(Directives{Severities: tt.severities})
			got, ok := ds.PersistedSeverity(issue)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PersistedSeverity() = %s, %v; want %s, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDirectiveSet_IgnoreLists(t *testing.T) {
	ds := NewDirectiveSet(Directives{
		IgnorePaths: map[string][]string{
			"A":       {"src/a"},
			AllIssues: {"build/"},
		},
		IgnorePatterns: map[string][]string{
			"A":       {"bad(", "ok"},
			AllIssues: {"generated"},
		},
	})

	if diff := cmp.Diff([]string{"src/a", "build/"}, ds.IgnorePaths("A")); diff != "" {
		t.Errorf("IgnorePaths mismatch (-want +got):\n%s", diff)
	}
	if got := len(ds.IgnorePatterns("A")); got != 2 {
		t.Errorf("IgnorePatterns(\"A\") has %d entries, want 2 (invalid pattern dropped)", got)
	}
	if got := len(ds.IgnorePatterns("B")); got != 1 {
		t.Errorf("IgnorePatterns(\"B\") has %d entries, want 1", got)
	}
}
