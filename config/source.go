package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/scope"
)

const (
	// PrimaryFile is the directive file a directory is looked up by.
	PrimaryFile = "lint.hcl"
	// SecondaryFile is layered under PrimaryFile in the same directory,
	// or used alone when the directory has no PrimaryFile.
	SecondaryFile = "lint.yml"
)

// FileSource reads directive files from disk and writes committed edits
// back to them.
//
// Example:
//
//	src := config.NewFileSource(lint.NewRegistry(), logger)
//	h := scope.NewHierarchy(src, scope.Options{RootDir: config.DefaultRootDir()})
type FileSource struct {
	registry *lint.Registry
	logger   hclog.Logger
}

var (
	_ scope.DirectiveSource = (*FileSource)(nil)
	_ scope.Writer          = (*FileSource)(nil)
)

// NewFileSource returns a FileSource classifying names with reg. A nil
// logger discards output.
func NewFileSource(reg *lint.Registry, logger hclog.Logger) *FileSource {
	if reg == nil {
		reg = lint.NewRegistry()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileSource{registry: reg, logger: logger}
}

// ConfigFile returns dir's lint.hcl, or its lint.yml when there is no
// lint.hcl.
func (s *FileSource) ConfigFile(dir string) string {
	for _, name := range []string{PrimaryFile, SecondaryFile} {
		file := filepath.Join(dir, name)
		if isFile(file) {
			return file
		}
	}
	return ""
}

// Secondary returns the lint.yml next to a lint.hcl file.
func (s *FileSource) Secondary(file string) string {
	if filepath.Base(file) != PrimaryFile {
		return ""
	}
	sec := filepath.Join(filepath.Dir(file), SecondaryFile)
	if isFile(sec) {
		return sec
	}
	return ""
}

// Load reads file, choosing the format by extension.
func (s *FileSource) Load(file string) (*lint.DirectiveSet, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var doc *document
	switch filepath.Ext(file) {
	case ".hcl":
		doc, err = decodeHCL(src, file)
	case ".yml", ".yaml":
		doc, err = decodeYAML(src, file)
	default:
		return nil, fmt.Errorf("unsupported directive file %s", file)
	}
	if err != nil {
		return nil, err
	}

	if unknown := s.registry.Unknown(doc.names()...); len(unknown) > 0 {
		s.logger.Warn("unknown issue or category", "file", file, "names", unknown)
	}
	d, err := doc.toDirectives(s.registry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	s.logger.Debug("read directive file", "file", file)
	return lint.NewDirectiveSet(d), nil
}

// Save writes ds to file, or to dir's lint.hcl when file is "".
func (s *FileSource) Save(dir, file string, ds *lint.DirectiveSet) (string, error) {
	if file == "" {
		file = filepath.Join(dir, PrimaryFile)
	}

	var (
		out []byte
		err error
	)
	switch filepath.Ext(file) {
	case ".hcl":
		out = EncodeHCL(ds.Directives())
	case ".yml", ".yaml":
		out, err = EncodeYAML(ds.Directives())
	default:
		err = fmt.Errorf("unsupported directive file %s", file)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(file, out, 0o644); err != nil {
		return "", err
	}
	s.logger.Debug("wrote directive file", "file", file)
	return file, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DefaultRootDir returns the directory named by LINTSCOPE_ROOT, or the
// user's home directory. Folder lookups stop climbing there.
func DefaultRootDir() string {
	if dir := os.Getenv("LINTSCOPE_ROOT"); dir != "" {
		return filepath.Clean(dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}
