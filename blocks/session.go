package blocks

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mailbuilder/common"
	"mailbuilder/css"
	"mailbuilder/doc"
	"mailbuilder/ident"
	"mailbuilder/style"
)

// SessionOptions controls how session is created.
type SessionOptions struct {
	// Seed makes email class name deterministic.
	Seed string
	// Allocator mints identities, ident.Default when nil.
	Allocator *ident.Allocator
	// AdoptInline reads existing style attributes into the registry, so
	// pre-styled content keeps its presentation.
	AdoptInline bool
	// HistoryDepth limits undo steps, doc.DefaultHistoryDepth when 0.
	HistoryDepth int
}

// Export is a snapshot of session output.
type Export struct {
	Fragment  string
	EmailCSS  string
	ClassName string
	Styles    map[ident.BlockID]style.Record
	Collected []ident.BlockID
}

// Session wires the document editor with style registry and block
// operations. It is created per edited template and dropped with it.
type Session struct {
	Editor  *doc.Editor
	Styles  *style.Registry
	Email   *style.EmailStyles
	Sync    *Synchronizer
	Applier *Applicator
	Mutator *Mutator

	parser   *css.Parser
	adopt    bool
	cleanups []func()
	log      *zap.Logger
}

// NewSession parses content, assigns identities to all structural nodes and
// seeds their style records.
func NewSession(content string, opts SessionOptions, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	editor, err := doc.New(content, log)
	if err != nil {
		return nil, fmt.Errorf("unable to create editor: %w", err)
	}
	if opts.HistoryDepth > 0 {
		editor.SetHistoryDepth(opts.HistoryDepth)
	}
	alloc := opts.Allocator
	if alloc == nil {
		alloc = ident.Default
	}

	s := &Session{
		Editor:  editor,
		Styles:  style.NewRegistry(log),
		Email:   style.NewEmailStyles(opts.Seed, alloc, log),
		Sync:    NewSynchronizer(editor, alloc, log),
		Applier: NewApplicator(editor, log),
		Mutator: NewMutator(editor, alloc, log),
		parser:  css.NewParser(log),
		adopt:   opts.AdoptInline,
		log:     log.Named("session"),
	}

	s.adoptExisting()
	s.cleanups = append(s.cleanups,
		s.Sync.OnCreated(s.blockCreated),
		s.Mutator.OnDuplicate(s.blockDuplicated),
		s.Sync.Detach,
		editor.Subscribe(s.historyRestored),
	)
	s.Sync.Attach()
	editor.Mount()
	return s, nil
}

// Close detaches session from the editor.
func (s *Session) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

// adoptExisting registers blocks which already carry identities.
func (s *Session) adoptExisting() {
	seen := make(map[ident.BlockID]struct{})
	s.Editor.Snapshot().Walk(func(n *html.Node, _ doc.NodePath) bool {
		kind, level, ok := KindOf(n)
		id := IDOf(n)
		if !ok || id == "" {
			return true
		}
		if _, dup := seen[id]; dup {
			// synchronizer re-identifies it
			return true
		}
		seen[id] = struct{}{}
		s.register(id, kind, level, n.Attr)
		return true
	})
}

func (s *Session) register(id ident.BlockID, kind common.BlockKind, level int, attrs []html.Attribute) {
	s.adoptStyle(id, kind, level, attrs, s.adopt)
}

func (s *Session) adoptStyle(id ident.BlockID, kind common.BlockKind, level int, attrs []html.Attribute, inline bool) {
	s.Styles.Track(id, kind, level)
	if inline {
		for _, a := range attrs {
			if a.Namespace == "" && a.Key == doc.AttrStyle && a.Val != "" {
				s.Styles.Put(id, style.ParseInline(s.parser, a.Val, kind, level))
				return
			}
		}
	}
	s.Styles.Seed(id, kind, level)
}

// historyRestored re-registers blocks brought back by undo or redo after
// their records were collected. Restored nodes keep identity and inline
// style, so the style attribute is the source of their record.
func (s *Session) historyRestored(ev doc.Event) {
	if ev.Type != doc.EventTransaction || ev.Tx == nil || ev.Tx.Meta(doc.MetaHistory) == nil {
		return
	}
	seen := make(map[ident.BlockID]struct{})
	ev.Snapshot.Walk(func(n *html.Node, _ doc.NodePath) bool {
		kind, level, ok := KindOf(n)
		id := IDOf(n)
		if !ok || id == "" {
			return true
		}
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}
		if _, _, tracked := s.Styles.Kind(id); !tracked {
			s.log.Debug("Block restored from history", zap.String("id", string(id)))
			s.adoptStyle(id, kind, level, n.Attr, true)
		}
		return true
	})
}

func (s *Session) blockCreated(c Created) {
	if c.Source != "" && s.Styles.Copy(c.Source, c.ID) {
		s.Styles.Track(c.ID, c.Kind, c.Level)
		return
	}
	s.register(c.ID, c.Kind, c.Level, c.Attrs)
}

func (s *Session) blockDuplicated(from, to ident.BlockID) {
	if !s.Styles.Copy(from, to) {
		if kind, level, ok := s.Styles.Kind(from); ok {
			s.Styles.Seed(to, kind, level)
		}
	}
}

// Current returns block under the cursor, nil when cursor is outside of any
// identified block.
func (s *Session) Current() *Location {
	loc := Locate(s.Editor.Snapshot(), s.Editor.Selection())
	if loc == nil || loc.ID == "" {
		return nil
	}
	return loc
}

// CurrentStyle returns style of the block under the cursor.
func (s *Session) CurrentStyle() (style.Record, bool) {
	loc := s.Current()
	if loc == nil {
		return style.Record{}, false
	}
	return s.Styles.Get(loc.ID), true
}

// Select moves cursor to the start of the block.
func (s *Session) Select(id ident.BlockID) bool {
	loc := Find(s.Editor.Snapshot(), id)
	if loc == nil {
		return false
	}
	return s.Editor.SetSelection(doc.Position{Path: loc.Path}) == nil
}

// SetStyle updates property of the block under the cursor, registry first
// and then the node.
func (s *Session) SetStyle(key string, value any) bool {
	loc := s.Current()
	if loc == nil {
		return false
	}
	return s.setStyle(loc, key, value)
}

// SetBlockStyle updates property of the block with identity.
func (s *Session) SetBlockStyle(id ident.BlockID, key string, value any) bool {
	loc := Find(s.Editor.Snapshot(), id)
	if loc == nil {
		return false
	}
	return s.setStyle(loc, key, value)
}

func (s *Session) setStyle(loc *Location, key string, value any) bool {
	if _, _, ok := s.Styles.Kind(loc.ID); !ok {
		s.Styles.Track(loc.ID, loc.Kind, loc.Level)
	}
	rec := s.Styles.Set(loc.ID, key, value)
	return s.Applier.ApplyToNode(loc.ID, loc.Kind, &rec)
}

// ClearStyle removes inline style of the block and drops its record.
func (s *Session) ClearStyle(id ident.BlockID) bool {
	loc := Find(s.Editor.Snapshot(), id)
	if loc == nil {
		return false
	}
	s.Styles.Delete(id)
	s.Styles.Track(id, loc.Kind, loc.Level)
	return s.Applier.ApplyToNode(id, loc.Kind, nil)
}

// Reset restores defaults for all blocks, or blocks of given kinds only, and
// writes them onto the document in one transaction.
func (s *Session) Reset(kinds ...common.BlockKind) error {
	var ids []ident.BlockID
	if len(kinds) == 0 {
		ids = s.Styles.ResetAll()
	} else {
		for _, k := range kinds {
			ids = append(ids, s.Styles.ResetKind(k)...)
		}
	}
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		kind, _, _ := s.Styles.Kind(id)
		rec := s.Styles.Get(id)
		items = append(items, Item{ID: id, Kind: kind, Record: &rec})
	}
	_, err := s.Applier.Apply(items...)
	return err
}

// Duplicate copies block and its styles.
func (s *Session) Duplicate(id ident.BlockID) (ident.BlockID, bool) {
	return s.Mutator.Duplicate(id)
}

// DuplicateCurrent copies block under the cursor.
func (s *Session) DuplicateCurrent() (ident.BlockID, bool) {
	loc := s.Current()
	if loc == nil {
		return "", false
	}
	return s.Mutator.Duplicate(loc.ID)
}

// Remove deletes block. Its style record stays until Collect, so undo brings
// the block back with the same presentation.
func (s *Session) Remove(id ident.BlockID) bool {
	return s.Mutator.Remove(id)
}

// RemoveCurrent deletes block under the cursor.
func (s *Session) RemoveCurrent() bool {
	loc := s.Current()
	if loc == nil {
		return false
	}
	return s.Mutator.Remove(loc.ID)
}

// Undo reverts last change of the document.
func (s *Session) Undo() bool {
	return s.Editor.Undo()
}

// Redo reapplies last undone change.
func (s *Session) Redo() bool {
	return s.Editor.Redo()
}

// Collect drops style records of blocks no longer present in the document.
func (s *Session) Collect() []ident.BlockID {
	live := LiveIDs(s.Editor.Snapshot())
	return s.Styles.Collect(func(id ident.BlockID) bool {
		_, ok := live[id]
		return ok
	})
}

// Export collects orphaned records and renders current state.
func (s *Session) Export() (*Export, error) {
	collected := s.Collect()
	fragment, err := s.Editor.HTML()
	if err != nil {
		return nil, fmt.Errorf("unable to render document: %w", err)
	}
	email := s.Email.Get()
	out := &Export{
		Fragment:  fragment,
		EmailCSS:  style.EmailCSS(email),
		ClassName: email.ClassName,
		Styles:    make(map[ident.BlockID]style.Record, s.Styles.Len()),
		Collected: collected,
	}
	for _, id := range s.Styles.IDs() {
		out.Styles[id] = s.Styles.Get(id)
	}
	return out, nil
}
