package scope

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jokarl/lintscope/lint"
)

// Node is one scope in a Hierarchy: a directive set bound to a directory
// and, usually, the configuration file it was loaded from.
type Node struct {
	h            *Hierarchy
	id           NodeID
	dir          string
	file         string
	directives   *lint.DirectiveSet
	projectLevel bool
	placeholder  bool
}

// ID returns the node's handle within its hierarchy.
func (n *Node) ID() NodeID { return n.id }

// Dir returns the directory the node is bound to. Fallback nodes are not
// bound to a directory and return "".
func (n *Node) Dir() string { return n.dir }

// File returns the configuration file backing the node, or "" for
// placeholders and overlays.
func (n *Node) File() string { return n.file }

// Directives returns the node's own directive set.
func (n *Node) Directives() *lint.DirectiveSet { return n.directives }

// IsProjectLevel reports whether the node is the project scope, or an
// ancestor of one.
func (n *Node) IsProjectLevel() bool { return n.projectLevel }

// IsPlaceholder reports whether the node stands in for a project directory
// that has no configuration file yet.
func (n *Node) IsPlaceholder() bool { return n.placeholder }

// Parent returns the node's parent scope, or nil at the top of the chain.
func (n *Node) Parent() *Node {
	return n.h.parent(n)
}

// Chain returns n followed by each of its ancestors.
func (n *Node) Chain() []*Node {
	var chain []*Node
	seen := map[NodeID]bool{}
	for cur := n; cur != nil && !seen[cur.id]; cur = cur.Parent() {
		seen[cur.id] = true
		chain = append(chain, cur)
	}
	return chain
}

func (n *Node) String() string {
	switch {
	case n.file != "":
		return n.file
	case n.dir != "":
		return n.dir + string(filepath.Separator)
	default:
		return fmt.Sprintf("node#%d", n.id)
	}
}

// explain resolves issue in n with the flags inherited from the scope that
// started the resolution. CheckAllWarnings set anywhere below an ancestor
// is passed on to it.
func (n *Node) explain(issue *lint.Issue, inherited lint.Flags) lint.Decision {
	if n.directives.Flags().CheckAllWarnings {
		inherited.CheckAllWarnings = true
	}
	var base lint.BaselineFunc
	if parent := n.Parent(); parent != nil {
		base = func() lint.Severity {
			return parent.explain(issue, inherited).Severity
		}
	}
	return lint.ExplainInherited(issue, n.directives, base, inherited)
}

// Severity resolves the effective severity of issue in this scope.
func (n *Node) Severity(issue *lint.Issue) lint.Severity {
	return n.explain(issue, lint.Flags{}).Severity
}

// Explain resolves the severity of issue in this scope and reports which
// rule decided it.
func (n *Node) Explain(issue *lint.Issue) lint.Decision {
	return n.explain(issue, lint.Flags{})
}

// IsIgnored reports whether a finding of issue at location with the given
// message is suppressed by this scope, any of its ancestors, or the
// hierarchy's baseline filter.
//
// Ignore paths are matched against location relative to each scope's
// directory. Paths containing glob metacharacters are matched with
// doublestar semantics, other paths by prefix. Ignore patterns are matched
// against both the relative location and the message.
func (n *Node) IsIgnored(issue *lint.Issue, location, message string) bool {
	if location != "" && !filepath.IsAbs(location) && n.dir != "" {
		location = filepath.Join(n.dir, location)
	}

	seen := map[NodeID]bool{}
	for cur := n; cur != nil && !seen[cur.id]; cur = cur.Parent() {
		seen[cur.id] = true
		if cur.ignores(issue, location, message) {
			return true
		}
	}
	return n.h.baseline != nil && n.h.baseline.IsIgnored(issue, location, message)
}

func (n *Node) ignores(issue *lint.Issue, location, message string) bool {
	rel := location
	if n.dir != "" && filepath.IsAbs(location) {
		if r, err := filepath.Rel(n.dir, location); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	for _, p := range n.directives.IgnorePaths(issue.ID) {
		p = filepath.ToSlash(p)
		if strings.ContainsAny(p, "*?[{") {
			if ok, _ := doublestar.Match(p, rel); ok {
				return true
			}
			continue
		}
		if rel == p || strings.HasPrefix(rel, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	for _, re := range n.directives.IgnorePatterns(issue.ID) {
		if re.MatchString(rel) || (message != "" && re.MatchString(message)) {
			return true
		}
	}
	return false
}

// Option returns the value of a per-issue option, searching this scope and
// then its ancestors, or def when no scope sets it.
func (n *Node) Option(issueID, name, def string) string {
	seen := map[NodeID]bool{}
	for cur := n; cur != nil && !seen[cur.id]; cur = cur.Parent() {
		seen[cur.id] = true
		if v, ok := cur.directives.Option(issueID, name); ok {
			return v
		}
	}
	return def
}

// OptionInt is Option for integer values. Values that do not parse yield
// def.
func (n *Node) OptionInt(issueID, name string, def int) int {
	v := n.Option(issueID, name, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		n.h.logger.Warn("ignoring non-integer option", "issue", issueID, "option", name, "value", v)
		return def
	}
	return i
}

// OptionBool is Option for boolean values. Values that do not parse yield
// def.
func (n *Node) OptionBool(issueID, name string, def bool) bool {
	v := n.Option(issueID, name, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		n.h.logger.Warn("ignoring non-boolean option", "issue", issueID, "option", name, "value", v)
		return def
	}
	return b
}

// Edit begins a bulk edit of the node's directive set. Edits are visible to
// resolution immediately; Commit persists them through the hierarchy's
// Writer once. Committing an edit on a placeholder creates its
// configuration file.
func (n *Node) Edit() (*lint.Transaction, error) {
	return n.directives.Begin(n.h.persist(n))
}
