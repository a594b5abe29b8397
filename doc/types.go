// Package doc is a small transactional document engine built on top of
// golang.org/x/net/html node trees. Every committed transaction produces a new
// immutable snapshot, which makes undo/redo a matter of swapping snapshots and
// keeps readers safe from half applied changes.
package doc

import (
	"slices"

	"golang.org/x/net/html"
)

// Attribute names engine users agree on.
const (
	AttrBlockID = "data-block-id"
	AttrStyle   = "style"
)

// NodePath represents the traversal steps from the root to a target node.
// Example: [0, 1, 3] means root -> child[0] -> child[1] -> child[3]. Indices
// count all child nodes including text and comments.
type NodePath []int

// Clone returns independent copy of the path.
func (p NodePath) Clone() NodePath {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Child returns path to the i-th child of the node addressed by p.
func (p NodePath) Child(i int) NodePath {
	out := make(NodePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// Parent returns path to the parent node, root has no parent.
func (p NodePath) Parent() (NodePath, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1].Clone(), true
}

// Equal reports whether both paths address the same node.
func (p NodePath) Equal(o NodePath) bool {
	return slices.Equal(p, o)
}

// Position is a cursor: the node the caret is in and a character offset
// inside of it.
type Position struct {
	Path   NodePath
	Offset int
}

// Equal reports whether positions are the same.
func (p Position) Equal(o Position) bool {
	return p.Offset == o.Offset && p.Path.Equal(o.Path)
}

// EventType distinguishes notifications delivered to listeners.
type EventType int

const (
	// EventCreate is delivered once, when editor is mounted.
	EventCreate EventType = iota
	// EventTransaction is delivered after every committed change, including undo and redo.
	EventTransaction
	// EventSelection is delivered when cursor moves.
	EventSelection
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventTransaction:
		return "transaction"
	case EventSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Event carries notification payload. Tx is nil for create and selection events.
type Event struct {
	Type      EventType
	Snapshot  *Snapshot
	Tx        *Tx
	Selection Position
}

// Listener receives editor notifications.
type Listener func(Event)

// Attr returns value of the attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}
