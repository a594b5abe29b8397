package blocks

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mailbuilder/common"
	"mailbuilder/doc"
	"mailbuilder/ident"
)

// MetaSync marks transactions committed by the synchronizer.
const MetaSync = "blocks.sync"

// Created describes node which received a new identity. Source is set when
// node carried identity of another node (pasted or cloned copy) and had to
// be re-identified.
type Created struct {
	ID     ident.BlockID
	Kind   common.BlockKind
	Level  int
	Path   doc.NodePath
	Attrs  []html.Attribute
	Source ident.BlockID
}

// Style returns inline style node had when identity was assigned.
func (c Created) Style() string {
	for _, a := range c.Attrs {
		if a.Namespace == "" && a.Key == doc.AttrStyle {
			return a.Val
		}
	}
	return ""
}

type createdObserver struct {
	id int
	fn func(Created)
}

// Synchronizer assigns identities to structural nodes lacking them. All
// assignments discovered during a single pass are committed as one
// transaction merged into the previous undo step.
type Synchronizer struct {
	editor    *doc.Editor
	alloc     *ident.Allocator
	watched   []common.BlockKind
	observers []createdObserver
	nextID    int
	detach    func()
	log       *zap.Logger
}

// NewSynchronizer creates synchronizer watching given kinds, all structural
// kinds are watched when none specified.
func NewSynchronizer(editor *doc.Editor, alloc *ident.Allocator, log *zap.Logger, kinds ...common.BlockKind) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = ident.Default
	}
	if len(kinds) == 0 {
		kinds = common.BlockKindValues()
	}
	return &Synchronizer{
		editor:  editor,
		alloc:   alloc,
		watched: kinds,
		log:     log.Named("sync"),
	}
}

// OnCreated registers observer invoked for every newly minted identity after
// transaction is committed.
func (s *Synchronizer) OnCreated(fn func(Created)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, createdObserver{id: id, fn: fn})
	return func() {
		s.observers = slices.DeleteFunc(s.observers, func(o createdObserver) bool { return o.id == id })
	}
}

// Run traverses current document and assigns missing identities. Nodes with
// identity already seen earlier in document order are re-identified. When
// nothing needs to change no transaction is committed and no observers are
// notified.
func (s *Synchronizer) Run() ([]Created, error) {
	snap := s.editor.Snapshot()

	var created []Created
	seen := make(map[ident.BlockID]struct{})
	snap.Walk(func(n *html.Node, path doc.NodePath) bool {
		kind, level, ok := KindOf(n)
		if !ok || !slices.Contains(s.watched, kind) {
			return true
		}
		id := IDOf(n)
		if id != "" {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				return true
			}
		}
		c := Created{
			ID:     s.alloc.NewBlockID(),
			Kind:   kind,
			Level:  level,
			Path:   path,
			Attrs:  slices.Clone(n.Attr),
			Source: id,
		}
		seen[c.ID] = struct{}{}
		created = append(created, c)
		return true
	})

	if len(created) == 0 {
		return nil, nil
	}

	tx := doc.NewTx().AppendToHistory().SetMeta(MetaSync, len(created))
	for _, c := range created {
		tx.SetAttr(c.Path, doc.AttrBlockID, string(c.ID))
	}
	if err := s.editor.Apply(tx); err != nil {
		return nil, fmt.Errorf("unable to assign block identities: %w", err)
	}
	s.log.Debug("Assigned block identities", zap.Int("count", len(created)))

	observers := slices.Clone(s.observers)
	for _, c := range created {
		for _, o := range observers {
			o.fn(c)
		}
	}
	return created, nil
}

// Attach makes synchronizer run on document creation and after every
// transaction it did not commit itself. Calling Attach again is a no-op.
func (s *Synchronizer) Attach() {
	if s.detach != nil {
		return
	}
	s.detach = s.editor.Subscribe(func(ev doc.Event) {
		switch ev.Type {
		case doc.EventCreate:
		case doc.EventTransaction:
			if ev.Tx.Meta(MetaSync) != nil {
				return
			}
		default:
			return
		}
		if _, err := s.Run(); err != nil {
			s.log.Error("Synchronization failed", zap.Error(err))
		}
	})
}

// Detach stops reacting to editor events.
func (s *Synchronizer) Detach() {
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}
