package doc

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Snapshot is an immutable state of the document. Nodes reachable from Root
// must never be modified, use transactions instead.
type Snapshot struct {
	root    *html.Node
	version uint64
}

// Root returns root node (synthetic body element).
func (s *Snapshot) Root() *html.Node {
	return s.root
}

// Version is incremented with every committed transaction.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// NodeAt returns node addressed by path.
func (s *Snapshot) NodeAt(path NodePath) (*html.Node, error) {
	return nodeAt(s.root, path)
}

// PathOf returns path of the node which must belong to this snapshot.
func (s *Snapshot) PathOf(n *html.Node) (NodePath, error) {
	return pathOf(s.root, n)
}

// Walk visits element nodes in document order. Path passed to fn is owned by
// the callee. Returning false from fn skips node's descendants.
func (s *Snapshot) Walk(fn func(n *html.Node, path NodePath) bool) {
	var walk func(parent *html.Node, path NodePath)
	walk = func(parent *html.Node, path NodePath) {
		i := 0
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				p := path.Child(i)
				if fn(c, p) {
					walk(c, p)
				}
			}
			i++
		}
	}
	walk(s.root, nil)
}

// FindByAttr returns first element in document order which has attribute
// with requested value.
func (s *Snapshot) FindByAttr(key, val string) (*html.Node, NodePath, bool) {
	var (
		found *html.Node
		where NodePath
	)
	s.Walk(func(n *html.Node, path NodePath) bool {
		if found != nil {
			return false
		}
		if v, ok := Attr(n, key); ok && v == val {
			found, where = n, path
			return false
		}
		return true
	})
	return found, where, found != nil
}

// HTML renders snapshot as html fragment.
func (s *Snapshot) HTML() (string, error) {
	return renderChildren(s.root)
}

// Resolve validates position and prepares ancestor chain for it.
func (s *Snapshot) Resolve(pos Position) (*ResolvedPos, error) {
	if pos.Offset < 0 {
		return nil, fmt.Errorf("negative offset %d", pos.Offset)
	}
	nodes := make([]*html.Node, 0, len(pos.Path)+1)
	current := s.root
	nodes = append(nodes, current)
	for i, index := range pos.Path {
		child := childAt(current, index)
		if child == nil {
			return nil, fmt.Errorf("position %v is out of document (failed at index %d, step %d)", pos.Path, index, i)
		}
		current = child
		nodes = append(nodes, current)
	}
	limit := childCount(current)
	if current.Type == html.TextNode {
		limit = utf8.RuneCountInString(current.Data)
	}
	if pos.Offset > limit {
		return nil, fmt.Errorf("offset %d is out of range for %v (max %d)", pos.Offset, pos.Path, limit)
	}
	return &ResolvedPos{pos: Position{Path: pos.Path.Clone(), Offset: pos.Offset}, nodes: nodes}, nil
}

// ResolvedPos gives access to ancestors of a cursor position. Depth 0 is the
// root, Depth() is the innermost node (often a text node).
type ResolvedPos struct {
	pos   Position
	nodes []*html.Node
}

// Pos returns resolved position.
func (r *ResolvedPos) Pos() Position {
	return r.pos
}

// Depth returns depth of the innermost node.
func (r *ResolvedPos) Depth() int {
	return len(r.nodes) - 1
}

// Node returns ancestor at depth, nil when depth is out of range.
func (r *ResolvedPos) Node(depth int) *html.Node {
	if depth < 0 || depth >= len(r.nodes) {
		return nil
	}
	return r.nodes[depth]
}

// Parent returns the node directly containing the innermost one.
func (r *ResolvedPos) Parent() *html.Node {
	return r.Node(r.Depth() - 1)
}

// Before returns path of the ancestor at depth. Root (depth 0) has empty path.
func (r *ResolvedPos) Before(depth int) NodePath {
	if depth <= 0 || depth >= len(r.nodes) {
		return NodePath{}
	}
	return r.pos.Path[:depth].Clone()
}

// After returns path of the sibling slot right after ancestor at depth.
func (r *ResolvedPos) After(depth int) NodePath {
	p := r.Before(depth)
	if len(p) > 0 {
		p[len(p)-1]++
	}
	return p
}
