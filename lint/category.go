package lint

// Category is a classification label for issues. Categories form a shallow
// tree: a category has at most one parent, and a directive naming a parent
// category also matches issues in its child categories.
type Category struct {
	// Name is the unique category name (e.g., "Correctness").
	Name string
	// Parent is the enclosing category, or nil for a top-level category.
	Parent *Category
	// Priority orders categories in listings; higher sorts first.
	Priority int
}

// NewCategory creates a top-level category.
func NewCategory(name string, priority int) *Category {
	return &Category{Name: name, Priority: priority}
}

// NewSubCategory creates a category nested under parent.
func NewSubCategory(parent *Category, name string, priority int) *Category {
	return &Category{Name: name, Parent: parent, Priority: priority}
}

// String returns the category name, qualified by its parent if any
// (e.g., "Correctness:Messages").
func (c *Category) String() string {
	if c == nil {
		return ""
	}
	if c.Parent != nil {
		return c.Parent.Name + ":" + c.Name
	}
	return c.Name
}

// IsLint reports whether c is the Lint category, which holds issues about
// lintscope itself and is exempt from exact allow-lists.
func (c *Category) IsLint() bool {
	return c != nil && c.Name == Lint.Name
}

// In reports whether c or its parent is named in set.
func (c *Category) In(set Set) bool {
	if c == nil || set == nil {
		return false
	}
	if set.Has(c.Name) {
		return true
	}
	return c.Parent != nil && set.Has(c.Parent.Name)
}

// Built-in categories.
var (
	Lint                 = NewCategory("Lint", 110)
	Correctness          = NewCategory("Correctness", 100)
	Messages             = NewSubCategory(Correctness, "Messages", 95)
	Security             = NewCategory("Security", 90)
	Performance          = NewCategory("Performance", 80)
	Usability            = NewCategory("Usability", 70)
	Typography           = NewSubCategory(Usability, "Typography", 76)
	Icons                = NewSubCategory(Usability, "Icons", 73)
	Accessibility        = NewCategory("Accessibility", 60)
	Internationalization = NewCategory("Internationalization", 50)
	Bidirectional        = NewSubCategory(Internationalization, "Bidirectional", 40)
	Interoperability     = NewCategory("Interoperability", 45)
	Kotlin               = NewSubCategory(Interoperability, "Kotlin", 44)
)

// BuiltinCategories returns the built-in categories, parents before children.
func BuiltinCategories() []*Category {
	return []*Category{
		Lint,
		Correctness, Messages,
		Security,
		Performance,
		Usability, Typography, Icons,
		Accessibility,
		Internationalization, Bidirectional,
		Interoperability, Kotlin,
	}
}
