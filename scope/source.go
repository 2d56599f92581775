package scope

import "github.com/jokarl/lintscope/lint"

// DirectiveSource materializes directive sets from configuration files.
// The hierarchy never parses configuration itself; it only asks a source
// which file belongs to a directory and what that file contains.
//
// Example:
//
//	type staticSource struct{}
//
//	func (staticSource) ConfigFile(dir string) string { return "" }
//	func (staticSource) Secondary(file string) string { return "" }
//	func (staticSource) Load(file string) (*lint.DirectiveSet, error) {
//	    return lint.EmptyDirectiveSet(), nil
//	}
type DirectiveSource interface {
	// ConfigFile returns the configuration file of dir, or "" when the
	// directory has no configuration of its own.
	ConfigFile(dir string) string

	// Secondary returns a lower-priority configuration file in the same
	// directory as file, or "". The hierarchy layers it under file as
	// file's parent scope.
	Secondary(file string) string

	// Load reads the directives stored in file.
	Load(file string) (*lint.DirectiveSet, error)
}

// Writer persists a directive set when a bulk edit commits.
type Writer interface {
	// Save writes ds to file. When file is "", the writer chooses the
	// default configuration file for dir and returns its path.
	Save(dir, file string, ds *lint.DirectiveSet) (string, error)
}

// BaselineFilter is consulted by Node.IsIgnored after the scope's own ignore
// directives. It typically wraps a baseline file of previously recorded
// findings.
type BaselineFilter interface {
	IsIgnored(issue *lint.Issue, location, message string) bool
}

// BaselineFilterFunc adapts a function to BaselineFilter.
type BaselineFilterFunc func(issue *lint.Issue, location, message string) bool

// IsIgnored calls f.
func (f BaselineFilterFunc) IsIgnored(issue *lint.Issue, location, message string) bool {
	return f(issue, location, message)
}

// Project identifies a build project whose root directory carries the
// project-level scope.
type Project struct {
	// Name is the project name, used for logging.
	Name string
	// Dir is the canonical root directory of the project.
	Dir string
}
