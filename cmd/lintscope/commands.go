package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/scope"
)

func newSeverityCmd(opts *options) *cobra.Command {
	var ids []string
	cmd := &cobra.Command{
		Use:   "severity PATH...",
		Short: "Print the resolved severity of each issue for the given paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			issues := make([]*lint.Issue, 0, len(ids))
			if len(ids) == 0 {
				ids = s.registry.IssueIDs()
			}
			for _, id := range ids {
				issue, err := s.issue(id)
				if err != nil {
					return err
				}
				issues = append(issues, issue)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, path := range args {
				node, err := s.scopeFor(path)
				if err != nil {
					return err
				}
				for _, issue := range issues {
					fmt.Fprintf(w, "%s\t%s\t%s\n", path, issue.ID, node.Severity(issue))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&ids, "issue", nil, "Only print the given issue ids")
	return cmd
}

func newExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain ISSUE PATH",
		Short: "Show how the severity of an issue was decided for a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			issue, err := s.issue(args[0])
			if err != nil {
				return err
			}
			node, err := s.scopeFor(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			d := node.Explain(issue)
			fmt.Fprintf(out, "issue:    %s (%s)\n", issue.ID, issue.Category)
			fmt.Fprintf(out, "severity: %s\n", d.Severity)
			fmt.Fprintf(out, "decided:  %s\n", d.Step)
			if len(d.Adjustments) > 0 {
				steps := make([]string, len(d.Adjustments))
				for i, a := range d.Adjustments {
					steps[i] = string(a)
				}
				fmt.Fprintf(out, "adjusted: %s\n", strings.Join(steps, ", "))
			}
			fmt.Fprintln(out, "scopes:")
			for _, n := range node.Chain() {
				fmt.Fprintf(out, "  %s\n", describe(n))
			}
			return nil
		},
	}
}

func describe(n *scope.Node) string {
	switch {
	case n.File() != "":
		return n.File()
	case n.IsPlaceholder():
		return n.Dir() + " (no directives)"
	default:
		return "command line"
	}
}

func newIssuesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "issues",
		Short: "List the known issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tSEVERITY\tSUMMARY")
			for _, id := range s.registry.IssueIDs() {
				issue := s.registry.Issue(id)
				sev := issue.DefaultSeverity.String()
				if issue.DisabledByDefault {
					sev += " (disabled)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", issue.ID, issue.Category, sev, issue.Summary)
			}
			return w.Flush()
		},
	}
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set ISSUE LEVEL [DIR]",
		Short: "Persist the severity of an issue or category in a directory's directives",
		Long: `Persist the severity of an issue or category in a directory's directives.

The severity is written to the directory's lint.hcl, which is created when
the directory has no directive file yet. DIR defaults to the current
directory.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			key := args[0]
			if !s.registry.IsKnown(key) && key != lint.AllIssues {
				return fmt.Errorf("unknown issue or category %q", key)
			}
			sev, err := lint.ParseSeverity(args[1])
			if err != nil {
				return err
			}
			dir := "."
			if len(args) == 3 {
				dir = args[2]
			}
			dir, err = absDir(dir)
			if err != nil {
				return err
			}

			node, err := s.hierarchy.ResolveForProject(scope.Project{Name: dir, Dir: dir})
			if err != nil {
				return err
			}
			tx, err := node.Edit()
			if err != nil {
				return err
			}
			tx.SetSeverity(key, sev)
			if err := tx.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s = %s\n", node.File(), key, sev)
			return nil
		},
	}
}
