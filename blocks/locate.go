// Package blocks binds structural nodes of the document to their identities
// and style records: it finds the block under the cursor, assigns identities
// to new nodes, writes presentation back onto nodes and duplicates or removes
// blocks by identity.
package blocks

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"mailbuilder/common"
	"mailbuilder/doc"
	"mailbuilder/ident"
)

// Location describes structural node enclosing a cursor. ID is empty when
// the node has not been assigned identity yet.
type Location struct {
	ID    ident.BlockID
	Kind  common.BlockKind
	Level int
	Path  doc.NodePath
}

// KindOf classifies element. Level is only set for headings.
func KindOf(n *html.Node) (common.BlockKind, int, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", 0, false
	}
	switch n.DataAtom {
	case atom.P:
		return common.BlockKindParagraph, 0, true
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return common.BlockKindHeading, int(n.Data[1] - '0'), true
	case atom.Li:
		return common.BlockKindListItem, 0, true
	}
	return "", 0, false
}

// IDOf returns identity carried by the node.
func IDOf(n *html.Node) ident.BlockID {
	v, _ := doc.Attr(n, doc.AttrBlockID)
	return ident.BlockID(v)
}

// Locate finds the nearest styleable ancestor of the cursor. List items take
// priority over paragraphs and headings, so a paragraph inside a list item
// resolves to the list item. Returns nil when cursor is invalid or there is no
// styleable ancestor. Only ancestors of the cursor are inspected.
func Locate(s *doc.Snapshot, pos doc.Position) *Location {
	if s == nil {
		return nil
	}
	rp, err := s.Resolve(pos)
	if err != nil {
		return nil
	}

	find := func(match func(common.BlockKind) bool) *Location {
		for depth := rp.Depth(); depth > 0; depth-- {
			n := rp.Node(depth)
			kind, level, ok := KindOf(n)
			if !ok || !match(kind) {
				continue
			}
			return &Location{ID: IDOf(n), Kind: kind, Level: level, Path: rp.Before(depth)}
		}
		return nil
	}

	if loc := find(func(k common.BlockKind) bool { return k == common.BlockKindListItem }); loc != nil {
		return loc
	}
	return find(func(k common.BlockKind) bool { return k != common.BlockKindListItem })
}

func (l Location) String() string {
	if l.Kind == common.BlockKindHeading {
		return fmt.Sprintf("%s(h%d)@%v", l.ID, l.Level, l.Path)
	}
	return fmt.Sprintf("%s(%s)@%v", l.ID, l.Kind, l.Path)
}

// Find returns location of the node carrying identity. It scans the whole
// document.
func Find(s *doc.Snapshot, id ident.BlockID) *Location {
	if s == nil || id == "" {
		return nil
	}
	n, path, ok := s.FindByAttr(doc.AttrBlockID, string(id))
	if !ok {
		return nil
	}
	kind, level, _ := KindOf(n)
	return &Location{ID: id, Kind: kind, Level: level, Path: path}
}

// LiveIDs returns set of identities present in the document.
func LiveIDs(s *doc.Snapshot) map[ident.BlockID]struct{} {
	live := make(map[ident.BlockID]struct{})
	s.Walk(func(n *html.Node, _ doc.NodePath) bool {
		if id := IDOf(n); id != "" {
			live[id] = struct{}{}
		}
		return true
	})
	return live
}
