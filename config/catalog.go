package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jokarl/lintscope/lint"
)

// catalogDoc is the YAML shape of an issue catalog:
//
//	categories:
//	  - name: Compose
//	    parent: Correctness
//	    priority: 85
//	issues:
//	  - id: HardcodedText
//	    category: Internationalization
//	    severity: warning
//	  - id: ExperimentalCheck
//	    category: Compose
//	    severity: error
//	    disabled_by_default: true
type catalogDoc struct {
	Categories []struct {
		Name     string `yaml:"name"`
		Parent   string `yaml:"parent,omitempty"`
		Priority int    `yaml:"priority,omitempty"`
	} `yaml:"categories"`
	Issues []struct {
		ID                string   `yaml:"id"`
		Category          string   `yaml:"category"`
		Severity          string   `yaml:"severity"`
		DisabledByDefault bool     `yaml:"disabled_by_default,omitempty"`
		SuppressNames     []string `yaml:"suppress_names,omitempty"`
		Summary           string   `yaml:"summary,omitempty"`
	} `yaml:"issues"`
}

// ParseCatalog reads an issue catalog and returns a registry holding the
// built-in issues plus the catalog's issues. Categories not declared by the
// catalog are looked up among the built-in categories.
func ParseCatalog(src []byte) (*lint.Registry, error) {
	var doc catalogDoc
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	categories := map[string]*lint.Category{}
	for _, c := range lint.BuiltinCategories() {
		categories[c.Name] = c
	}
	var custom []*lint.Category
	for _, c := range doc.Categories {
		if c.Name == "" {
			return nil, errors.New("category without name")
		}
		var cat *lint.Category
		if c.Parent != "" {
			parent, ok := categories[c.Parent]
			if !ok {
				return nil, fmt.Errorf("category %q: unknown parent %q", c.Name, c.Parent)
			}
			cat = lint.NewSubCategory(parent, c.Name, c.Priority)
		} else {
			cat = lint.NewCategory(c.Name, c.Priority)
		}
		categories[c.Name] = cat
		custom = append(custom, cat)
	}

	reg := lint.NewRegistry()
	reg.Categories = custom
	seen := map[string]bool{}
	for _, issue := range reg.Issues {
		seen[issue.ID] = true
	}
	for _, i := range doc.Issues {
		if i.ID == "" {
			return nil, errors.New("issue without id")
		}
		if seen[i.ID] {
			return nil, fmt.Errorf("issue %q declared twice", i.ID)
		}
		seen[i.ID] = true

		cat, ok := categories[i.Category]
		if !ok {
			return nil, fmt.Errorf("issue %q: unknown category %q (known: %s)", i.ID, i.Category, categoryNames(categories))
		}
		sev, err := lint.ParseSeverity(i.Severity)
		if err != nil {
			return nil, fmt.Errorf("issue %q: %w", i.ID, err)
		}
		reg.Issues = append(reg.Issues, &lint.Issue{
			ID:                i.ID,
			Category:          cat,
			DefaultSeverity:   sev,
			DisabledByDefault: i.DisabledByDefault,
			SuppressNames:     i.SuppressNames,
			Summary:           i.Summary,
		})
	}
	return reg, nil
}

// LoadCatalog reads an issue catalog from path.
func LoadCatalog(path string) (*lint.Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := ParseCatalog(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func categoryNames(categories map[string]*lint.Category) string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	return strings.Join(lint.NewSet(names...).Sorted(), ", ")
}
