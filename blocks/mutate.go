package blocks

import (
	"slices"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mailbuilder/doc"
	"mailbuilder/ident"
)

// DuplicateHook receives identity of the original and of its copy.
type DuplicateHook func(from, to ident.BlockID)

type duplicateObserver struct {
	id int
	fn DuplicateHook
}

// Mutator duplicates and removes blocks by identity. It does not touch style
// records, use OnDuplicate hook to copy them.
type Mutator struct {
	editor *doc.Editor
	alloc  *ident.Allocator
	hooks  []duplicateObserver
	nextID int
	log    *zap.Logger
}

// NewMutator creates mutator for the editor.
func NewMutator(editor *doc.Editor, alloc *ident.Allocator, log *zap.Logger) *Mutator {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = ident.Default
	}
	return &Mutator{editor: editor, alloc: alloc, log: log.Named("mutate")}
}

// OnDuplicate registers hook called after duplicate is committed, for the
// copied block and for every nested block inside of it.
func (m *Mutator) OnDuplicate(fn DuplicateHook) (unsubscribe func()) {
	m.nextID++
	id := m.nextID
	m.hooks = append(m.hooks, duplicateObserver{id: id, fn: fn})
	return func() {
		m.hooks = slices.DeleteFunc(m.hooks, func(o duplicateObserver) bool { return o.id == id })
	}
}

// Duplicate inserts copy of the block right after it. The copy and all
// nested blocks get fresh identities. Returns false when identity is not in
// the document.
func (m *Mutator) Duplicate(id ident.BlockID) (ident.BlockID, bool) {
	snap := m.editor.Snapshot()
	loc := Find(snap, id)
	if loc == nil {
		return "", false
	}
	n, err := snap.NodeAt(loc.Path)
	if err != nil {
		return "", false
	}

	clone := doc.CloneNode(n)
	live := LiveIDs(snap)
	var pairs [][2]ident.BlockID
	var reassign func(*html.Node)
	reassign = func(n *html.Node) {
		if old := IDOf(n); old != "" {
			fresh := m.alloc.NewBlockID()
			for {
				if _, taken := live[fresh]; !taken {
					break
				}
				fresh = m.alloc.NewBlockID()
			}
			live[fresh] = struct{}{}
			setID(n, fresh)
			pairs = append(pairs, [2]ident.BlockID{old, fresh})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			reassign(c)
		}
	}
	reassign(clone)

	if err := m.editor.Apply(doc.NewTx().InsertAfter(loc.Path, clone)); err != nil {
		m.log.Warn("Unable to duplicate block", zap.String("id", string(id)), zap.Error(err))
		return "", false
	}
	m.log.Debug("Block duplicated", zap.String("from", string(id)), zap.String("to", string(pairs[0][1])), zap.Int("nested", len(pairs)-1))

	hooks := slices.Clone(m.hooks)
	for _, p := range pairs {
		for _, h := range hooks {
			h.fn(p[0], p[1])
		}
	}
	return pairs[0][1], true
}

// Remove deletes the block. Style record is left alone. Returns false when
// identity is not in the document.
func (m *Mutator) Remove(id ident.BlockID) bool {
	loc := Find(m.editor.Snapshot(), id)
	if loc == nil {
		return false
	}
	if err := m.editor.Apply(doc.NewTx().Delete(loc.Path)); err != nil {
		m.log.Warn("Unable to remove block", zap.String("id", string(id)), zap.Error(err))
		return false
	}
	m.log.Debug("Block removed", zap.String("id", string(id)))
	return true
}

func setID(n *html.Node, id ident.BlockID) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == doc.AttrBlockID {
			n.Attr[i].Val = string(id)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: doc.AttrBlockID, Val: string(id)})
}
