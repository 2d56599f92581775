// Package helper provides testing utilities for code built on lintscope.
// Use Source to drive a scope.Hierarchy without touching the filesystem.
//
// Example:
//
//	func TestMyCheck(t *testing.T) {
//	    src := helper.NewSource()
//	    src.Add("/work", lint.Directives{DisabledIDs: lint.NewSet("UnusedResources")})
//	    src.Add("/work/app", lint.Directives{Flags: lint.Flags{WarningsAsErrors: true}})
//
//	    h := scope.NewHierarchy(src, scope.Options{RootDir: "/work"})
//	    node, _ := h.ResolveForFolder("/work/app/src", nil)
//
//	    helper.AssertSeverities(t, node, helper.Severities{
//	        unusedResources: lint.IGNORE,
//	        hardcodedText:   lint.ERROR,
//	    })
//	}
package helper

import (
	"os"
	"path/filepath"

	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/scope"
)

// ConfigName is the file name Source binds to each directory.
const ConfigName = "lint.hcl"

// Source is an in-memory scope.DirectiveSource and scope.Writer.
// Use NewSource to create an instance.
type Source struct {
	files     map[string]*lint.DirectiveSet
	secondary map[string]string
	failures  map[string]error
	loads     map[string]int
	// Saved records every file written through Save, in order.
	Saved []string
}

// Ensure Source implements the hierarchy contracts.
var (
	_ scope.DirectiveSource = (*Source)(nil)
	_ scope.Writer          = (*Source)(nil)
)

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{
		files:     map[string]*lint.DirectiveSet{},
		secondary: map[string]string{},
		failures:  map[string]error{},
		loads:     map[string]int{},
	}
}

// Add binds directives to dir and returns the path of dir's configuration
// file.
func (s *Source) Add(dir string, d lint.Directives) string {
	file := filepath.Join(dir, ConfigName)
	s.files[file] = lint.NewDirectiveSet(d)
	return file
}

// AddSecondary layers directives under primary, stored as a file with the
// given name in the same directory.
func (s *Source) AddSecondary(primary, name string, d lint.Directives) string {
	file := filepath.Join(filepath.Dir(primary), name)
	s.files[file] = lint.NewDirectiveSet(d)
	s.secondary[primary] = file
	return file
}

// Fail makes dir's configuration file exist but fail to load with err.
func (s *Source) Fail(dir string, err error) string {
	file := filepath.Join(dir, ConfigName)
	s.failures[file] = err
	return file
}

// Loads returns how many times file was loaded.
func (s *Source) Loads(file string) int {
	return s.loads[file]
}

// ConfigFile implements scope.DirectiveSource.
func (s *Source) ConfigFile(dir string) string {
	file := filepath.Join(dir, ConfigName)
	if _, ok := s.files[file]; ok {
		return file
	}
	if _, ok := s.failures[file]; ok {
		return file
	}
	return ""
}

// Secondary implements scope.DirectiveSource.
func (s *Source) Secondary(file string) string {
	return s.secondary[file]
}

// Load implements scope.DirectiveSource.
func (s *Source) Load(file string) (*lint.DirectiveSet, error) {
	s.loads[file]++
	if err, ok := s.failures[file]; ok {
		return nil, err
	}
	ds, ok := s.files[file]
	if !ok {
		return nil, os.ErrNotExist
	}
	return ds, nil
}

// Save implements scope.Writer by storing a copy of ds.
func (s *Source) Save(dir, file string, ds *lint.DirectiveSet) (string, error) {
	if file == "" {
		file = filepath.Join(dir, ConfigName)
	}
	s.files[file] = lint.NewDirectiveSet(ds.Directives())
	s.Saved = append(s.Saved, file)
	return file, nil
}
