package lint

import "sort"

// Set is a set of issue ids or category names.
//
// A nil Set and an empty Set differ where it matters: DirectiveSet uses a
// nil exact allow-list to mean "no restriction" and an empty one to mean
// "nothing but Lint issues may run".
type Set map[string]struct{}

// NewSet returns a non-nil Set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports whether item is in the set. It is safe on a nil Set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy of s, preserving nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for item := range s {
		out[item] = struct{}{}
	}
	return out
}
