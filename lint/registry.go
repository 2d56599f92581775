package lint

import "sort"

// Registry provides lookup of known issues and categories. Directive readers
// use it to decide whether a name refers to an issue id or a category.
//
// Example:
//
//	reg := &lint.Registry{
//	    Issues: append(lint.BuiltinIssues(), &lint.Issue{
//	        ID:              "HardcodedText",
//	        Category:        lint.Internationalization,
//	        DefaultSeverity: lint.WARNING,
//	    }),
//	}
//
// Issues and Categories must not be modified after the first lookup.
type Registry struct {
	// Issues is the list of issues in this registry.
	Issues []*Issue
	// Categories lists extra categories beyond those referenced by Issues
	// and the built-in categories.
	Categories []*Category

	byID       map[string]*Issue
	byCategory map[string]*Category
}

// BuiltinIssues returns the meta issues every registry should carry.
func BuiltinIssues() []*Issue {
	return []*Issue{BaselineIssue, LintErrorIssue, InterproceduralIssue}
}

// NewRegistry returns a registry holding the built-in issues plus issues.
func NewRegistry(issues ...*Issue) *Registry {
	return &Registry{Issues: append(BuiltinIssues(), issues...)}
}

func (r *Registry) index() {
	if r.byID != nil {
		return
	}
	r.byID = make(map[string]*Issue, len(r.Issues))
	r.byCategory = make(map[string]*Category)
	addCategory := func(c *Category) {
		for ; c != nil; c = c.Parent {
			if _, ok := r.byCategory[c.Name]; !ok {
				r.byCategory[c.Name] = c
			}
		}
	}
	for _, c := range BuiltinCategories() {
		addCategory(c)
	}
	for _, c := range r.Categories {
		addCategory(c)
	}
	for _, issue := range r.Issues {
		r.byID[issue.ID] = issue
		addCategory(issue.Category)
	}
}

// Issue returns the issue with the given id, or nil if not found.
func (r *Registry) Issue(id string) *Issue {
	r.index()
	return r.byID[id]
}

// Category returns the category with the given name, or nil if not found.
func (r *Registry) Category(name string) *Category {
	r.index()
	return r.byCategory[name]
}

// IssueIDs returns the ids of all issues, sorted.
func (r *Registry) IssueIDs() []string {
	r.index()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CategoryList returns all known categories ordered by descending priority,
// then by name.
func (r *Registry) CategoryList() []*Category {
	r.index()
	out := make([]*Category, 0, len(r.byCategory))
	for _, c := range r.byCategory {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IsKnown reports whether name is an issue id or category name.
func (r *Registry) IsKnown(name string) bool {
	return r.Issue(name) != nil || r.Category(name) != nil
}

// Unknown returns the names that are neither an issue id nor a category,
// in input order. The special name "all" is always known.
func (r *Registry) Unknown(names ...string) []string {
	var unknown []string
	for _, name := range names {
		if name == AllIssues || r.IsKnown(name) {
			continue
		}
		unknown = append(unknown, name)
	}
	return unknown
}

// Split classifies names into issue ids and category names. Names that are
// neither are treated as issue ids so that directives for issues the
// registry does not know about still take effect.
func (r *Registry) Split(names []string) (ids, categories Set) {
	ids = NewSet()
	categories = NewSet()
	for _, name := range names {
		if r.Issue(name) == nil && r.Category(name) != nil {
			categories[name] = struct{}{}
			continue
		}
		ids[name] = struct{}{}
	}
	return ids, categories
}

// SplitExact is Split for exact-check lists. An empty names list yields an
// empty id set, so nothing but Lint issues runs. Otherwise a set is only
// returned for the kinds of names present, since a non-nil empty set
// excludes everything of its kind.
func (r *Registry) SplitExact(names []string) (ids, categories Set) {
	if len(names) == 0 {
		return NewSet(), nil
	}
	ids, categories = r.Split(names)
	if len(ids) == 0 {
		ids = nil
	}
	if len(categories) == 0 {
		categories = nil
	}
	return ids, categories
}
