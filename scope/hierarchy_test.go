package scope

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jokarl/lintscope/lint"
)

type fakeSource struct {
	files       map[string]*lint.DirectiveSet
	secondary   map[string]string
	failing     map[string]bool
	loads       map[string]int
	configCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files:       map[string]*lint.DirectiveSet{},
		secondary:   map[string]string{},
		failing:     map[string]bool{},
		loads:       map[string]int{},
		configCalls: map[string]int{},
	}
}

// add registers dir/lint.hcl with the given directives and returns its path.
func (s *fakeSource) add(dir string, d lint.Directives) string {
	file := filepath.Join(dir, "lint.hcl")
	s.files[file] = lint.NewDirectiveSet(d)
	return file
}

func (s *fakeSource) ConfigFile(dir string) string {
	s.configCalls[dir]++
	file := filepath.Join(dir, "lint.hcl")
	if _, ok := s.files[file]; ok || s.failing[file] {
		return file
	}
	return ""
}

func (s *fakeSource) Secondary(file string) string {
	return s.secondary[file]
}

func (s *fakeSource) Load(file string) (*lint.DirectiveSet, error) {
	s.loads[file]++
	if s.failing[file] {
		return nil, errors.New("permission denied")
	}
	ds, ok := s.files[file]
	if !ok {
		return nil, os.ErrNotExist
	}
	return ds, nil
}

type savedFile struct {
	Dir, File string
}

type fakeWriter struct {
	saves []savedFile
}

func (w *fakeWriter) Save(dir, file string, ds *lint.DirectiveSet) (string, error) {
	w.saves = append(w.saves, savedFile{Dir: dir, File: file})
	if file == "" {
		file = filepath.Join(dir, "lint.hcl")
	}
	return file, nil
}

var issueX = &lint.Issue{ID: "X", Category: lint.Correctness, DefaultSeverity: lint.WARNING}

func TestResolveForFolder_Cached(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	first, err := h.ResolveForFolder("/r/a", nil)
	if err != nil {
		t.Fatalf("ResolveForFolder() error = %v", err)
	}
	second, _ := h.ResolveForFolder("/r/a/", nil)
	if first != second {
		t.Error("ResolveForFolder() returned different nodes for the same directory")
	}
	if got := src.loads["/r/a/lint.hcl"]; got != 1 {
		t.Errorf("source loaded %d times, want 1", got)
	}
	if byFile, _ := h.ResolveForFile("/r/a/lint.hcl"); byFile != first {
		t.Error("ResolveForFile() and ResolveForFolder() disagree")
	}
}

func TestResolveForFolder_NearestAncestor(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{})
	src.add("/r/a", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	got, err := h.ResolveForFolder("/r/a/b/c", nil)
	if err != nil {
		t.Fatalf("ResolveForFolder() error = %v", err)
	}
	if got == nil || got.File() != "/r/a/lint.hcl" {
		t.Fatalf("ResolveForFolder() = %v, want /r/a/lint.hcl", got)
	}
	if p := got.Parent(); p == nil || p.File() != "/r/lint.hcl" {
		t.Errorf("Parent() = %v, want /r/lint.hcl", p)
	}
	if p := got.Parent().Parent(); p != nil {
		t.Errorf("root scope has parent %v", p)
	}
}

func TestResolveForFolder_NotFoundCached(t *testing.T) {
	src := newFakeSource()
	h := NewHierarchy(src, Options{RootDir: "/r"})

	for i := 0; i < 2; i++ {
		got, err := h.ResolveForFolder("/r/a", nil)
		if err != nil || got != nil {
			t.Fatalf("ResolveForFolder() = %v, %v; want nil, nil", got, err)
		}
	}
	if got := src.configCalls["/r/a"]; got != 1 {
		t.Errorf("ConfigFile(/r/a) called %d times, want 1", got)
	}
}

func TestResolveForFolder_StopsAtRoot(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r/w"})

	got, _ := h.ResolveForFolder("/r/w/x", nil)
	if got != nil {
		t.Errorf("ResolveForFolder() = %v, want nil above root", got)
	}

	def := h.newNode("", "", nil)
	h2 := NewHierarchy(src, Options{RootDir: "/r/w"})
	if got, _ := h2.ResolveForFolder("/r/w/y", def); got != def {
		t.Errorf("ResolveForFolder() = %v, want default node", got)
	}
}

func TestLinkParent_RejectsCycle(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	src.add("/r/b", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	a, _ := h.ResolveForFolder("/r/a", nil)
	b, _ := h.ResolveForFolder("/r/b", nil)

	if err := h.LinkParent(a, b); err != nil {
		t.Fatalf("LinkParent(a, b) error = %v", err)
	}
	err := h.LinkParent(b, a)
	if !errors.Is(err, ErrCyclicConfiguration) {
		t.Fatalf("LinkParent(b, a) error = %v, want ErrCyclicConfiguration", err)
	}
	var cerr *CycleError
	if !errors.As(err, &cerr) || len(cerr.Chain) < 3 {
		t.Errorf("CycleError chain = %v, want the looping chain", cerr)
	}
	if p := b.Parent(); p == a {
		t.Error("cyclical link was committed")
	}
	if p := a.Parent(); p != b {
		t.Errorf("a.Parent() = %v, want b", p)
	}
	if got := a.Severity(issueX); got != lint.WARNING {
		t.Errorf("Severity() = %s, want WARNING", got)
	}
}

func TestLinkParent_RejectsSelf(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})
	a, _ := h.ResolveForFolder("/r/a", nil)

	if err := h.LinkParent(a, a); !errors.Is(err, ErrCyclicConfiguration) {
		t.Errorf("LinkParent(a, a) error = %v, want ErrCyclicConfiguration", err)
	}
}

func TestResolveForFolder_LoopingParentDir(t *testing.T) {
	src := newFakeSource()
	parents := map[string]string{"/x": "/y", "/y": "/x"}
	h := NewHierarchy(src, Options{ParentDir: func(dir string) string { return parents[dir] }})

	for i := 0; i < 2; i++ {
		if _, err := h.ResolveForFolder("/x", nil); !errors.Is(err, ErrCyclicConfiguration) {
			t.Errorf("ResolveForFolder() call %d error = %v, want ErrCyclicConfiguration", i+1, err)
		}
	}
}

func TestResolveForFolder_CycleIsSticky(t *testing.T) {
	src := newFakeSource()
	src.add("/x", lint.Directives{})
	src.add("/y", lint.Directives{})
	parents := map[string]string{"/x": "/y", "/y": "/x"}
	h := NewHierarchy(src, Options{ParentDir: func(dir string) string { return parents[dir] }})

	_, err := h.ResolveForFolder("/x", nil)
	var first *CycleError
	if !errors.As(err, &first) {
		t.Fatalf("ResolveForFolder() error = %v, want *CycleError", err)
	}
	want := []string{"/x/lint.hcl", "/y/lint.hcl", "/x/lint.hcl"}
	if diff := cmp.Diff(want, first.Chain); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}

	lookups := []struct {
		name    string
		resolve func() (*Node, error)
	}{
		{"folder again", func() (*Node, error) { return h.ResolveForFolder("/x", nil) }},
		{"other folder in loop", func() (*Node, error) { return h.ResolveForFolder("/y", nil) }},
		{"file", func() (*Node, error) { return h.ResolveForFile("/x/lint.hcl") }},
		{"folder below loop", func() (*Node, error) { return h.ResolveForFolder("/x/sub", nil) }},
	}
	parents["/x/sub"] = "/x"
	for _, tt := range lookups {
		t.Run(tt.name, func(t *testing.T) {
			node, err := tt.resolve()
			if !errors.Is(err, ErrCyclicConfiguration) || node != nil {
				t.Errorf("lookup = %v, %v; want nil, cycle error", node, err)
			}
		})
	}
}

func TestParentOf_RootDirectoryParticipates(t *testing.T) {
	src := newFakeSource()
	src.add("/", lint.Directives{EnabledIDs: lint.NewSet("X")})
	src.add("/r", lint.Directives{DisabledIDs: lint.NewSet("X")})
	src.add("/r/a", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	a, err := h.ResolveForFolder("/r/a", nil)
	if err != nil {
		t.Fatalf("ResolveForFolder() error = %v", err)
	}
	root := a.Parent()
	if root == nil || root.File() != "/r/lint.hcl" {
		t.Fatalf("Parent() = %v, want the root directory's /r/lint.hcl", root)
	}
	if p := root.Parent(); p != nil {
		t.Errorf("root scope Parent() = %v, want nil above the root directory", p)
	}
	if got := a.Severity(issueX); got != lint.IGNORE {
		t.Errorf("Severity() = %s, want IGNORE from the root directory", got)
	}
}

func TestResolveForFolder_DefaultNotCached(t *testing.T) {
	src := newFakeSource()
	h := NewHierarchy(src, Options{RootDir: "/r"})
	def := h.newNode("", "", nil)

	if got, _ := h.ResolveForFolder("/r/a", def); got != def {
		t.Fatalf("ResolveForFolder(def) = %v, want default node", got)
	}
	if got, _ := h.ResolveForFolder("/r/a", nil); got != nil {
		t.Errorf("ResolveForFolder(nil) = %v, want nil; the default must not be cached", got)
	}
}

func TestResolveForProject(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{DisabledIDs: lint.NewSet("X")})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	other, _ := h.ResolveForFolder("/r/other", nil)
	if other.IsProjectLevel() {
		t.Fatal("node is project-level before any project lookup")
	}

	project, err := h.ResolveForProject(Project{Name: "app", Dir: "/r/app"})
	if err != nil {
		t.Fatalf("ResolveForProject() error = %v", err)
	}
	if !project.IsPlaceholder() || project.File() != "" || project.Dir() != "/r/app" {
		t.Errorf("project node = %v, want placeholder bound to /r/app", project)
	}
	if !project.IsProjectLevel() {
		t.Error("project node is not project-level")
	}
	if !other.IsProjectLevel() {
		t.Error("ancestor of project node is not project-level")
	}
	if got := project.Severity(issueX); got != lint.IGNORE {
		t.Errorf("placeholder Severity() = %s, want inherited IGNORE", got)
	}
	if again, _ := h.ResolveForProject(Project{Name: "app", Dir: "/r/app"}); again != project {
		t.Error("ResolveForProject() not cached")
	}
	if folder, _ := h.ResolveForFolder("/r/app/src", nil); folder != project {
		t.Errorf("ResolveForFolder() under project = %v, want placeholder", folder)
	}
}

func TestResolveForFile_Secondary(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{})
	primary := src.add("/r/a", lint.Directives{})
	src.files["/r/a/lint.yml"] = lint.NewDirectiveSet(lint.Directives{DisabledIDs: lint.NewSet("X")})
	src.secondary[primary] = "/r/a/lint.yml"
	h := NewHierarchy(src, Options{RootDir: "/r"})

	node, err := h.ResolveForFile(primary)
	if err != nil {
		t.Fatalf("ResolveForFile() error = %v", err)
	}
	want := []string{"/r/a/lint.hcl", "/r/a/lint.yml", "/r/lint.hcl"}
	var got []string
	for _, n := range node.Chain() {
		got = append(got, n.File())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	if leaf := h.ScopeLeaf(node); leaf.File() != "/r/a/lint.yml" {
		t.Errorf("ScopeLeaf() = %v, want /r/a/lint.yml", leaf)
	}
	if got := node.Severity(issueX); got != lint.IGNORE {
		t.Errorf("Severity() = %s, want IGNORE from secondary", got)
	}
}

func TestResolveForFolder_UnreadableSource(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{})
	src.failing["/r/a/lint.hcl"] = true
	h := NewHierarchy(src, Options{RootDir: "/r"})

	got, err := h.ResolveForFolder("/r/a", nil)
	var serr *SourceError
	if !errors.As(err, &serr) || serr.File != "/r/a/lint.hcl" {
		t.Fatalf("ResolveForFolder() error = %v, want SourceError for /r/a/lint.hcl", err)
	}
	if got == nil || got.File() != "/r/lint.hcl" {
		t.Fatalf("ResolveForFolder() = %v, want inherited /r/lint.hcl", got)
	}

	again, err := h.ResolveForFolder("/r/a", nil)
	if err != nil || again != got {
		t.Errorf("second ResolveForFolder() = %v, %v; want cached node", again, err)
	}
	if n := src.loads["/r/a/lint.hcl"]; n != 1 {
		t.Errorf("unreadable source loaded %d times, want 1", n)
	}
}

func TestFallback(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	src.files["/etc/lint.hcl"] = lint.NewDirectiveSet(lint.Directives{DisabledIDs: lint.NewSet("X")})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	a, _ := h.ResolveForFolder("/r/a", nil)
	if got := a.Severity(issueX); got != lint.WARNING {
		t.Fatalf("Severity() without fallback = %s, want WARNING", got)
	}

	fallback, err := h.LoadFallback("/etc/lint.hcl")
	if err != nil {
		t.Fatalf("LoadFallback() error = %v", err)
	}
	if p := a.Parent(); p != fallback {
		t.Errorf("Parent() = %v, want fallback", p)
	}
	if got := a.Severity(issueX); got != lint.IGNORE {
		t.Errorf("Severity() with fallback = %s, want IGNORE", got)
	}
	if got, _ := h.ResolveForFolder("/r/b", nil); got != fallback {
		t.Errorf("ResolveForFolder() without configuration = %v, want fallback", got)
	}
	if fallback.Parent() != nil {
		t.Error("fallback has a parent")
	}
}

func TestFallback_Replaced(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	src.files["/etc/one.hcl"] = lint.NewDirectiveSet(lint.Directives{DisabledIDs: lint.NewSet("X")})
	src.files["/etc/two.hcl"] = lint.NewDirectiveSet(lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	a, _ := h.ResolveForFolder("/r/a", nil)
	one, err := h.LoadFallback("/etc/one.hcl")
	if err != nil {
		t.Fatalf("LoadFallback(one) error = %v", err)
	}
	two, err := h.LoadFallback("/etc/two.hcl")
	if err != nil {
		t.Fatalf("LoadFallback(two) error = %v", err)
	}

	samePtr := cmp.Comparer(func(x, y *Node) bool { return x == y })
	if diff := cmp.Diff([]*Node{a, two, one}, a.Chain(), samePtr); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	if got := a.Severity(issueX); got != lint.IGNORE {
		t.Errorf("Severity() = %s, want IGNORE from the first fallback", got)
	}

	if err := h.SetFallback(one); !errors.Is(err, ErrCyclicConfiguration) {
		t.Errorf("reinstalling first fallback error = %v, want ErrCyclicConfiguration", err)
	}
	if h.Fallback() != two {
		t.Errorf("Fallback() = %v, want unchanged", h.Fallback())
	}
}

func TestSetFallback_RejectsSelfInheritance(t *testing.T) {
	src := newFakeSource()
	src.add("/r/a", lint.Directives{})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	a, _ := h.ResolveForFolder("/r/a", nil)
	overlay, err := h.Overlay(a, lint.EmptyDirectiveSet())
	if err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}
	// a has no parent, so it would inherit the overlay it sits under.
	if err := h.SetFallback(overlay); !errors.Is(err, ErrCyclicConfiguration) {
		t.Fatalf("SetFallback() error = %v, want ErrCyclicConfiguration", err)
	}
	if h.Fallback() != nil {
		t.Errorf("Fallback() = %v, want nil", h.Fallback())
	}
	if p := a.Parent(); p != nil {
		t.Errorf("Parent() = %v, want nil", p)
	}
}

func TestCheckAllWarnings_AppliesThroughChain(t *testing.T) {
	off := &lint.Issue{ID: "Off", Category: lint.Correctness, DefaultSeverity: lint.WARNING, DisabledByDefault: true}
	src := newFakeSource()
	src.add("/r", lint.Directives{})
	src.add("/r/a", lint.Directives{Flags: lint.Flags{CheckAllWarnings: true}})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	base, _ := h.ResolveForFolder("/r/b", nil)
	if base == nil || base.File() != "/r/lint.hcl" {
		t.Fatalf("ResolveForFolder() = %v, want /r/lint.hcl", base)
	}
	if got := base.Severity(off); got != lint.IGNORE {
		t.Errorf("without flag = %s, want IGNORE", got)
	}

	overlay, _ := h.Overlay(base, lint.NewDirectiveSet(lint.Directives{Flags: lint.Flags{CheckAllWarnings: true}}))
	if got := overlay.Severity(off); got != lint.WARNING {
		t.Errorf("overlay over configured scope = %s, want WARNING", got)
	}

	a, _ := h.ResolveForFolder("/r/a/src", nil)
	if got := a.Severity(off); got != lint.WARNING {
		t.Errorf("scope with flag over configured root = %s, want WARNING", got)
	}
	if got := a.Severity(lint.InterproceduralIssue); got != lint.IGNORE {
		t.Errorf("interprocedural issue = %s, want IGNORE", got)
	}
	if got := base.Severity(off); got != lint.IGNORE {
		t.Errorf("ancestor after descendant lookups = %s, want IGNORE", got)
	}
}

func TestOverlay(t *testing.T) {
	src := newFakeSource()
	src.add("/r", lint.Directives{DisabledIDs: lint.NewSet("X")})
	h := NewHierarchy(src, Options{RootDir: "/r"})

	base, _ := h.ResolveForFolder("/r", nil)
	flags := lint.NewDirectiveSet(lint.Directives{EnabledIDs: lint.NewSet("X")})
	overlay, err := h.Overlay(base, flags)
	if err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}
	if got := overlay.Severity(issueX); got != lint.WARNING {
		t.Errorf("overlay Severity() = %s, want WARNING", got)
	}
	if got := base.Severity(issueX); got != lint.IGNORE {
		t.Errorf("base Severity() = %s, want IGNORE", got)
	}
	if got, _ := h.ResolveForFolder("/r", nil); got != base {
		t.Error("overlay replaced the cached folder node")
	}
}

func TestNode_EditPersists(t *testing.T) {
	src := newFakeSource()
	w := &fakeWriter{}
	h := NewHierarchy(src, Options{RootDir: "/r", Writer: w})

	project, _ := h.ResolveForProject(Project{Name: "app", Dir: "/r/app"})
	tx, err := project.Edit()
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	tx.DisableID("X")
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if diff := cmp.Diff([]savedFile{{Dir: "/r/app"}}, w.saves); diff != "" {
		t.Errorf("saves mismatch (-want +got):\n%s", diff)
	}
	if project.IsPlaceholder() || project.File() != "/r/app/lint.hcl" {
		t.Errorf("after commit node = %v, want bound to /r/app/lint.hcl", project)
	}
	if got, _ := h.ResolveForFile("/r/app/lint.hcl"); got != project {
		t.Error("created file not bound to the placeholder node")
	}
	if got := project.Severity(issueX); got != lint.IGNORE {
		t.Errorf("Severity() after edit = %s, want IGNORE", got)
	}
}
