package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jokarl/lintscope/config"
	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/plugin"
	"github.com/jokarl/lintscope/scope"
)

// options holds the persistent flags shared by every command.
type options struct {
	disable          []string
	enable           []string
	check            []string
	severity         map[string]string
	fatalOnly        bool
	noWarn           bool
	warningsAsErrors bool
	checkAllWarnings bool
	allowSuppress    bool

	root         string
	fallback     string
	catalog      string
	logLevel     string
	sourcePlugin string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "lintscope",
		Short: "Resolve lint issue severities from directory-scoped directives",
		Long: `Resolve lint issue severities from directory-scoped directives.

Each directory may carry a lint.hcl file and a lint.yml file layered under
it. A directory without directives inherits from its nearest ancestor, up
to the root directory (--root, LINTSCOPE_ROOT or the home directory).
Command-line flags are layered over the directory's directives.`,
		SilenceUsage: true,
	}
	bindFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(
		newSeverityCmd(opts),
		newExplainCmd(opts),
		newIssuesCmd(opts),
		newSetCmd(opts),
	)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringSliceVar(&opts.disable, "disable", nil, "Disable the given issue ids or categories")
	fs.StringSliceVar(&opts.enable, "enable", nil, "Enable the given issue ids or categories")
	fs.StringSliceVar(&opts.check, "check", nil, "Only check the given issue ids or categories")
	fs.StringToStringVar(&opts.severity, "severity", nil, "Override severities, e.g. HardcodedText=error")
	fs.BoolVar(&opts.fatalOnly, "fatal-only", false, "Only report fatal issues")
	fs.BoolVarP(&opts.noWarn, "nowarn", "w", false, "Ignore warnings")
	fs.BoolVar(&opts.warningsAsErrors, "Werror", false, "Treat warnings as errors")
	fs.BoolVar(&opts.checkAllWarnings, "check-all-warnings", false, "Check issues that are disabled by default")
	fs.BoolVar(&opts.allowSuppress, "allow-suppress", false, "Allow directives to tune issues with their own suppression")

	fs.StringVar(&opts.root, "root", "", "Directory where directive lookups stop (default LINTSCOPE_ROOT or home)")
	fs.StringVar(&opts.fallback, "config", "", "Directive file used when no directory directives apply")
	fs.StringVar(&opts.catalog, "catalog", "", "YAML issue catalog")
	fs.StringVar(&opts.logLevel, "log-level", envOr("LINTSCOPE_LOG_LEVEL", "warn"), "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.sourcePlugin, "source-plugin", "", "Read directives through the given plugin executable")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// session is the state built from the persistent flags for one command.
type session struct {
	logger    hclog.Logger
	registry  *lint.Registry
	hierarchy *scope.Hierarchy
	flags     *lint.DirectiveSet
	plugin    *plugin.Client
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "lintscope",
		Level:  hclog.LevelFromString(o.logLevel),
		Output: cmd.ErrOrStderr(),
	})

	reg := lint.NewRegistry()
	if o.catalog != "" {
		var err error
		if reg, err = config.LoadCatalog(o.catalog); err != nil {
			return nil, err
		}
	}

	flags, err := o.directives(reg, logger)
	if err != nil {
		return nil, err
	}

	files := config.NewFileSource(reg, logger)
	s := &session{logger: logger, registry: reg, flags: flags}
	var source scope.DirectiveSource = files
	if o.sourcePlugin != "" {
		if s.plugin, err = plugin.Launch(o.sourcePlugin, logger); err != nil {
			return nil, err
		}
		source = s.plugin.Source()
	}

	root := o.root
	if root == "" {
		root = config.DefaultRootDir()
	}
	if root != "" {
		if root, err = filepath.Abs(root); err != nil {
			s.close()
			return nil, err
		}
	}
	s.hierarchy = scope.NewHierarchy(source, scope.Options{
		RootDir: root,
		Logger:  logger.Named("scope"),
		Writer:  files,
	})

	if o.fallback != "" {
		fallback, err := filepath.Abs(o.fallback)
		if err == nil {
			_, err = s.hierarchy.LoadFallback(fallback)
		}
		if err != nil {
			s.close()
			return nil, err
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.plugin != nil {
		s.plugin.Close()
	}
}

// directives converts the command-line flags to a directive set that is
// layered over the directory scope.
func (o *options) directives(reg *lint.Registry, logger hclog.Logger) (*lint.DirectiveSet, error) {
	var d lint.Directives
	names := append(append(append([]string(nil), o.disable...), o.enable...), o.check...)
	for id := range o.severity {
		names = append(names, id)
	}
	if unknown := reg.Unknown(names...); len(unknown) > 0 {
		logger.Warn("unknown issue or category", "names", unknown)
	}

	if len(o.disable) > 0 {
		d.DisabledIDs, d.DisabledCategories = reg.Split(o.disable)
	}
	if len(o.enable) > 0 {
		d.EnabledIDs, d.EnabledCategories = reg.Split(o.enable)
	}
	if len(o.check) > 0 {
		d.ExactIDs, d.ExactCategories = reg.SplitExact(o.check)
	}
	for id, level := range o.severity {
		sev, err := lint.ParseSeverity(level)
		if err != nil {
			return nil, fmt.Errorf("--severity %s: %w", id, err)
		}
		if d.SeverityOverrides == nil {
			d.SeverityOverrides = map[string]lint.Severity{}
		}
		d.SeverityOverrides[id] = sev
	}
	d.Flags = lint.Flags{
		FatalOnly:        o.fatalOnly,
		WarningsAsErrors: o.warningsAsErrors,
		IgnoreWarnings:   o.noWarn,
		CheckAllWarnings: o.checkAllWarnings,
		AllowSuppress:    o.allowSuppress,
	}
	return lint.NewDirectiveSet(d), nil
}

// scopeFor returns the flag overlay on top of the scope governing path. A
// path that is not a directory is resolved through its parent directory.
func (s *session) scopeFor(path string) (*scope.Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	base, err := s.hierarchy.ResolveForFolder(dir, nil)
	if err != nil {
		var serr *scope.SourceError
		if !errors.As(err, &serr) {
			return nil, err
		}
		s.logger.Warn("ignoring unreadable directives", "file", serr.File, "error", serr.Err)
	}
	return s.hierarchy.Overlay(base, s.flags)
}

// issue looks up id in the registry.
func (s *session) issue(id string) (*lint.Issue, error) {
	issue := s.registry.Issue(id)
	if issue == nil {
		return nil, fmt.Errorf("unknown issue %q (known: %s)", id, strings.Join(s.registry.IssueIDs(), ", "))
	}
	return issue, nil
}

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return abs, nil
}
