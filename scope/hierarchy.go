// Package scope resolves which directive set governs a file, directory or
// project and links those sets into parent chains.
//
// A Hierarchy owns every Node it creates. Nodes are addressed internally by
// NodeID handles into an arena, and parent links are stored in the
// hierarchy rather than in the nodes, so a chain can be re-linked without
// touching the nodes themselves. Every link is checked for cycles before it
// is committed.
//
// A Hierarchy is not safe for concurrent use.
package scope

import (
	"errors"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/jokarl/lintscope/lint"
)

// NodeID is a handle to a Node inside its Hierarchy.
type NodeID int

// lookup is a cached lookup result. A zero lookup with found == false
// records that the answer is "no node", which is distinct from the key
// being absent from the cache.
type lookup struct {
	id    NodeID
	found bool
}

var notFound = lookup{}

func foundNode(n *Node) lookup {
	if n == nil {
		return notFound
	}
	return lookup{id: n.id, found: true}
}

// Options configures a Hierarchy.
type Options struct {
	// RootDir is the directory where folder lookups stop climbing. When
	// empty, lookups climb to the filesystem root.
	RootDir string

	// Logger receives cache and link diagnostics. Defaults to a null logger.
	Logger hclog.Logger

	// ParentDir returns the parent of dir, or "" when dir has none.
	// Defaults to filepath.Dir with the filesystem root mapped to "".
	ParentDir func(dir string) string

	// Baseline is consulted by Node.IsIgnored after every scope's own
	// ignore directives.
	Baseline BaselineFilter

	// Writer persists committed bulk edits. When nil and the source
	// implements Writer, the source is used. When neither is available,
	// edits stay in memory.
	Writer Writer
}

// Hierarchy resolves directive sets for directories, files and projects,
// caching every answer.
//
// Example:
//
//	h := scope.NewHierarchy(source, scope.Options{RootDir: "/work"})
//	node, err := h.ResolveForFolder("/work/app/src", nil)
//	if err != nil {
//	    return err
//	}
//	sev := node.Severity(issue)
type Hierarchy struct {
	source    DirectiveSource
	writer    Writer
	baseline  BaselineFilter
	logger    hclog.Logger
	rootDir   string
	parentDir func(string) string

	nodes     []*Node
	byDir     map[string]lookup
	byFile    map[string]NodeID
	byProject map[Project]NodeID
	parentOf  map[NodeID]lookup
	resolving map[string]bool
	fallback  *Node
	fallbacks map[NodeID]bool
	broken    map[NodeID]*CycleError
}

// NewHierarchy returns an empty hierarchy reading directives from source.
func NewHierarchy(source DirectiveSource, opts Options) *Hierarchy {
	h := &Hierarchy{
		source:    source,
		writer:    opts.Writer,
		baseline:  opts.Baseline,
		logger:    opts.Logger,
		parentDir: opts.ParentDir,
		byDir:     map[string]lookup{},
		byFile:    map[string]NodeID{},
		byProject: map[Project]NodeID{},
		parentOf:  map[NodeID]lookup{},
		resolving: map[string]bool{},
		fallbacks: map[NodeID]bool{},
		broken:    map[NodeID]*CycleError{},
	}
	if opts.RootDir != "" {
		h.rootDir = filepath.Clean(opts.RootDir)
	}
	if h.logger == nil {
		h.logger = hclog.NewNullLogger()
	}
	if h.parentDir == nil {
		h.parentDir = defaultParentDir
	}
	if h.writer == nil {
		if w, ok := source.(Writer); ok {
			h.writer = w
		}
	}
	return h
}

func defaultParentDir(dir string) string {
	parent := filepath.Dir(dir)
	if parent == dir {
		return ""
	}
	return parent
}

// RootDir returns the directory where folder lookups stop climbing.
func (h *Hierarchy) RootDir() string {
	return h.rootDir
}

// Node returns the node with the given handle, or nil.
func (h *Hierarchy) Node(id NodeID) *Node {
	if int(id) < 0 || int(id) >= len(h.nodes) {
		return nil
	}
	return h.nodes[id]
}

func (h *Hierarchy) newNode(dir, file string, ds *lint.DirectiveSet) *Node {
	if ds == nil {
		ds = lint.EmptyDirectiveSet()
	}
	n := &Node{h: h, id: NodeID(len(h.nodes)), dir: dir, file: file, directives: ds}
	h.nodes = append(h.nodes, n)
	return n
}

func (h *Hierarchy) nodeFor(l lookup) *Node {
	if !l.found {
		return nil
	}
	return h.nodes[l.id]
}

// ResolveForFile returns the node bound to a configuration file, loading it
// on first use. When the source reports a secondary file next to it, the
// secondary node is linked as the file's parent. The parent of the chain is
// resolved eagerly so malformed chains are reported here.
func (h *Hierarchy) ResolveForFile(file string) (*Node, error) {
	file = filepath.Clean(file)
	if id, ok := h.byFile[file]; ok {
		if err := h.chainError(h.nodes[id]); err != nil {
			return nil, err
		}
		return h.nodes[id], nil
	}

	ds, err := h.source.Load(file)
	if err != nil {
		h.logger.Warn("failed to load configuration", "file", file, "error", err)
		return nil, &SourceError{File: file, Err: err}
	}

	var secondary *Node
	if sec := h.source.Secondary(file); sec != "" {
		sec = filepath.Clean(sec)
		if sec != file {
			if id, ok := h.byFile[sec]; ok {
				secondary = h.nodes[id]
			} else {
				secds, err := h.source.Load(sec)
				if err != nil {
					h.logger.Warn("failed to load configuration", "file", sec, "error", err)
					return nil, &SourceError{File: sec, Err: err}
				}
				secondary = h.newNode(filepath.Dir(sec), sec, secds)
				h.byFile[sec] = secondary.id
			}
		}
	}

	dir := filepath.Dir(file)
	node := h.newNode(dir, file, ds)
	h.byFile[file] = node.id
	if _, ok := h.byDir[dir]; !ok {
		h.byDir[dir] = foundNode(node)
	}
	h.logger.Debug("loaded configuration", "file", file, "node", node.id)

	tail := node
	if secondary != nil {
		if err := h.LinkParent(node, secondary); err != nil {
			h.markBroken(node, err)
			return nil, err
		}
		tail = secondary
	}
	if _, err := h.ParentOf(tail); err != nil {
		h.markBroken(node, err)
		return nil, err
	}
	return node, nil
}

// ResolveForFolder returns the node governing dir: the node of dir's own
// configuration file if it has one, otherwise the nearest ancestor's. When
// no directory up to the root directory has configuration, def is returned,
// or the fallback node when def is nil. Every answer, including "no node",
// is cached per directory; def and the fallback are applied on top of the
// cached answer.
//
// When dir's own configuration cannot be read, the directory is treated as
// having no local directives: the inherited node is returned and cached
// together with a *SourceError. A lookup whose chain contains a cycle fails
// with the same *CycleError every time it is repeated.
func (h *Hierarchy) ResolveForFolder(dir string, def *Node) (*Node, error) {
	dir = filepath.Clean(dir)
	if l, ok := h.byDir[dir]; ok {
		node := h.nodeFor(l)
		if err := h.chainError(node); err != nil {
			return nil, err
		}
		return h.orDefault(node, def), nil
	}
	if h.resolving[dir] {
		return nil, &CycleError{Chain: []string{dir, dir}}
	}
	h.resolving[dir] = true
	defer delete(h.resolving, dir)

	if file := h.source.ConfigFile(dir); file != "" {
		node, err := h.ResolveForFile(file)
		if err == nil {
			if _, ok := h.byDir[dir]; !ok {
				h.byDir[dir] = foundNode(node)
			}
			return node, nil
		}
		if !isSourceError(err) {
			return nil, err
		}
		inherited, perr := h.inheritedFor(dir)
		if perr != nil {
			return nil, perr
		}
		h.byDir[dir] = foundNode(inherited)
		return h.orDefault(inherited, def), err
	}

	inherited, err := h.inheritedFor(dir)
	if err != nil {
		return nil, err
	}
	h.byDir[dir] = foundNode(inherited)
	h.logger.Trace("cached folder lookup", "dir", dir, "found", inherited != nil)
	return h.orDefault(inherited, def), nil
}

// inheritedFor resolves the node dir inherits when it has no directives of
// its own.
func (h *Hierarchy) inheritedFor(dir string) (*Node, error) {
	if dir == h.rootDir {
		return nil, nil
	}
	parent := h.parentDir(dir)
	if parent == "" {
		return nil, nil
	}
	h.logger.Trace("climbing to parent directory", "dir", dir, "parent", parent)
	l, cached := h.byDir[filepath.Clean(parent)]
	if cached {
		node := h.nodeFor(l)
		if err := h.chainError(node); err != nil {
			return nil, err
		}
		return node, nil
	}
	node, err := h.ResolveForFolder(parent, nil)
	if err != nil && !isSourceError(err) {
		return nil, err
	}
	if h.isFallback(node) {
		return nil, nil
	}
	return node, nil
}

func (h *Hierarchy) orDefault(node, def *Node) *Node {
	switch {
	case node != nil:
		return node
	case def != nil:
		return def
	default:
		return h.fallback
	}
}

// ResolveForProject returns the project-level node of p. When the project
// directory has no configuration file, an empty placeholder node is bound
// to it so edits on the project scope have somewhere to land. The node and
// every node above it are marked project-level.
func (h *Hierarchy) ResolveForProject(p Project) (*Node, error) {
	p.Dir = filepath.Clean(p.Dir)
	if id, ok := h.byProject[p]; ok {
		return h.nodes[id], nil
	}

	var node *Node
	if file := h.source.ConfigFile(p.Dir); file != "" {
		n, err := h.ResolveForFile(file)
		if err != nil {
			return nil, err
		}
		node = n
	} else {
		node = h.newNode(p.Dir, "", nil)
		node.placeholder = true
		if _, ok := h.byDir[p.Dir]; !ok {
			h.byDir[p.Dir] = foundNode(node)
		}
		if _, err := h.ParentOf(node); err != nil {
			return nil, err
		}
		h.logger.Debug("created project placeholder", "project", p.Name, "dir", p.Dir)
	}

	h.markProjectLevel(node)
	h.byProject[p] = node.id
	return node, nil
}

// ParentOf returns the parent of node. Unless a parent was linked
// explicitly, it is computed once by resolving the parent directory of the
// node's bound directory, stopping at the root directory, and cached. A
// project-level node passes that status to its parent. Nodes without a
// parent inherit from the fallback node, if one is installed.
func (h *Hierarchy) ParentOf(node *Node) (*Node, error) {
	if err := h.broken[node.id]; err != nil {
		return nil, err
	}
	if l, ok := h.parentOf[node.id]; ok {
		if !l.found {
			return h.fallbackFor(node), nil
		}
		return h.nodes[l.id], nil
	}

	var parent *Node
	if node.dir != "" && node.dir != h.rootDir {
		if dir := h.parentDir(node.dir); dir != "" {
			p, err := h.ResolveForFolder(dir, nil)
			if err != nil && !isSourceError(err) {
				h.markBroken(node, err)
				return nil, err
			}
			if !h.isFallback(p) {
				parent = p
			}
		}
	}

	if parent == nil {
		h.parentOf[node.id] = notFound
		return h.fallbackFor(node), nil
	}
	if err := h.LinkParent(node, parent); err != nil {
		h.markBroken(node, err)
		return nil, err
	}
	return parent, nil
}

// fallbackFor returns the node inherited by node when it has no parent of
// its own. Nodes that were ever installed as the fallback inherit nothing,
// which keeps a chain of replaced fallbacks from looping back on itself.
func (h *Hierarchy) fallbackFor(node *Node) *Node {
	if h.fallback == nil || h.fallbacks[node.id] {
		return nil
	}
	return h.fallback
}

func (h *Hierarchy) isFallback(node *Node) bool {
	return node != nil && h.fallbacks[node.id]
}

// markBroken records that node's parent chain contains a cycle. Every node
// named by a *CycleError is marked too, so lookups that reach any of them
// keep failing.
func (h *Hierarchy) markBroken(node *Node, err error) {
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		return
	}
	h.broken[node.id] = cerr
	for _, id := range cerr.nodes {
		if _, ok := h.broken[id]; !ok {
			h.broken[id] = cerr
		}
	}
}

// chainError returns the *CycleError recorded for node or any of its
// ancestors.
func (h *Hierarchy) chainError(node *Node) error {
	if node == nil {
		return nil
	}
	for _, id := range h.chainIDs(node.id) {
		if err := h.broken[id]; err != nil {
			return err
		}
	}
	return nil
}

// parent returns node's parent, logging errors. A node whose chain is
// broken has no usable parent; the error is kept so lookups report it.
func (h *Hierarchy) parent(node *Node) *Node {
	p, err := h.ParentOf(node)
	if err != nil {
		h.logger.Error("failed to resolve parent scope", "dir", node.dir, "error", err)
		return nil
	}
	return p
}

// LinkParent sets the parent of child, replacing any previous link. A nil
// parent removes the link so it is recomputed on the next ParentOf. When the
// new link would close a loop, the previous link is restored and a
// *CycleError is returned.
func (h *Hierarchy) LinkParent(child, parent *Node) error {
	if parent == nil {
		delete(h.parentOf, child.id)
		return nil
	}

	prev, had := h.parentOf[child.id]
	h.parentOf[child.id] = foundNode(parent)
	if h.hasCycle(child.id) {
		err := h.cycleError(child.id)
		if had {
			h.parentOf[child.id] = prev
		} else {
			delete(h.parentOf, child.id)
		}
		h.logger.Error("rejected cyclical parent link", "child", child.String(), "parent", parent.String())
		return err
	}

	if child.projectLevel {
		parent.projectLevel = true
	}
	return nil
}

// edge returns the parent of id as ParentOf would report it from the
// cache: the linked parent, or the fallback for a node cached as having
// none.
func (h *Hierarchy) edge(id NodeID) (NodeID, bool) {
	l, ok := h.parentOf[id]
	if l.found {
		return l.id, true
	}
	if ok {
		if f := h.fallbackFor(h.nodes[id]); f != nil {
			return f.id, true
		}
	}
	return 0, false
}

// hasCycle walks the parent edges from id with a slow and a fast cursor.
// The cursors only meet if the chain loops.
func (h *Hierarchy) hasCycle(id NodeID) bool {
	slow, fast := id, id
	for {
		next, ok := h.edge(slow)
		if !ok {
			return false
		}
		slow = next

		for i := 0; i < 2; i++ {
			if next, ok = h.edge(fast); !ok {
				return false
			}
			fast = next
		}
		if slow == fast {
			return true
		}
	}
}

// chainIDs lists id and its ancestors. When the chain loops, the first
// repeated node closes the list.
func (h *Hierarchy) chainIDs(id NodeID) []NodeID {
	seen := map[NodeID]bool{}
	var chain []NodeID
	for {
		chain = append(chain, id)
		if seen[id] {
			return chain
		}
		seen[id] = true
		next, ok := h.edge(id)
		if !ok {
			return chain
		}
		id = next
	}
}

func (h *Hierarchy) cycleError(id NodeID) *CycleError {
	ids := h.chainIDs(id)
	err := &CycleError{Chain: make([]string, len(ids)), nodes: ids}
	for i, id := range ids {
		err.Chain[i] = h.nodes[id].String()
	}
	return err
}

func (h *Hierarchy) markProjectLevel(node *Node) {
	seen := map[NodeID]bool{}
	for n := node; n != nil && !h.isFallback(n) && !seen[n.id]; n = h.parent(n) {
		seen[n.id] = true
		n.projectLevel = true
	}
}

// ScopeLeaf returns the last node in node's parent chain that is bound to
// the same directory as node. Secondary configuration files share their
// primary file's directory, so this finds the bottom of a directory's
// stack.
func (h *Hierarchy) ScopeLeaf(node *Node) *Node {
	leaf := node
	for {
		p := h.parent(leaf)
		if p == nil || p.dir != node.dir {
			return leaf
		}
		leaf = p
	}
}

// Overlay creates a node carrying ds that is bound to base's directory and
// has base as its parent. Overlays are not cached by directory or file; they
// layer transient directives, such as command-line flags, over a scope.
func (h *Hierarchy) Overlay(base *Node, ds *lint.DirectiveSet) (*Node, error) {
	dir := ""
	if base != nil {
		dir = base.dir
	}
	node := h.newNode(dir, "", ds)
	if base == nil {
		h.parentOf[node.id] = notFound
		return node, nil
	}
	if err := h.LinkParent(node, base); err != nil {
		return nil, err
	}
	return node, nil
}

// SetFallback installs node as the scope inherited by every node that has
// no other parent. A previously installed fallback becomes the parent of
// the new one. Installing a node whose own chain would inherit from itself
// fails with a *CycleError and leaves the previous fallback in place.
func (h *Hierarchy) SetFallback(node *Node) error {
	if node == nil {
		h.fallback = nil
		return nil
	}
	prev := h.fallback
	prevLink, hadLink := h.parentOf[node.id]
	if prev != nil && prev != node {
		if err := h.LinkParent(node, prev); err != nil {
			return err
		}
	} else if !hadLink {
		h.parentOf[node.id] = notFound
	}

	wasFallback := h.fallbacks[node.id]
	h.fallbacks[node.id] = true
	h.fallback = node
	if h.hasCycle(node.id) {
		err := h.cycleError(node.id)
		h.fallback = prev
		if !wasFallback {
			delete(h.fallbacks, node.id)
		}
		if hadLink {
			h.parentOf[node.id] = prevLink
		} else {
			delete(h.parentOf, node.id)
		}
		h.logger.Error("rejected cyclical fallback", "node", node.String())
		return err
	}
	return nil
}

// LoadFallback loads file through the source and installs it as the
// fallback scope.
func (h *Hierarchy) LoadFallback(file string) (*Node, error) {
	file = filepath.Clean(file)
	ds, err := h.source.Load(file)
	if err != nil {
		return nil, &SourceError{File: file, Err: err}
	}
	node := h.newNode("", file, ds)
	if err := h.SetFallback(node); err != nil {
		return nil, err
	}
	h.logger.Debug("installed fallback configuration", "file", file)
	return node, nil
}

// Fallback returns the installed fallback node, or nil.
func (h *Hierarchy) Fallback() *Node {
	return h.fallback
}

func (h *Hierarchy) persist(node *Node) lint.CommitFunc {
	if h.writer == nil {
		return nil
	}
	return func(ds *lint.DirectiveSet) error {
		dir := node.dir
		if dir == "" && node.file != "" {
			dir = filepath.Dir(node.file)
		}
		file, err := h.writer.Save(dir, node.file, ds)
		if err != nil {
			return err
		}
		if node.file == "" && file != "" {
			node.file = filepath.Clean(file)
			node.placeholder = false
			h.byFile[node.file] = node.id
			h.logger.Info("created configuration file", "file", node.file)
		}
		return nil
	}
}
