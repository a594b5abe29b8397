package doc

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DefaultHistoryDepth limits number of undo steps kept by the editor.
const DefaultHistoryDepth = 100

type subscription struct {
	id int
	fn Listener
}

// Editor owns the current snapshot, selection and undo history and notifies
// listeners about changes. Editor is driven by a single goroutine, it is not
// safe for concurrent use.
type Editor struct {
	current   *Snapshot
	selection Position
	undo      []*Snapshot
	redo      []*Snapshot
	depth     int
	mounted   bool

	listeners []subscription
	nextID    int
	queue     []Event
	busy      bool

	log *zap.Logger
}

// New parses html fragment and creates editor for it.
func New(content string, log *zap.Logger) (*Editor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	nodes, err := ParseNodes(content)
	if err != nil {
		return nil, err
	}
	root := newRoot()
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Editor{
		current: &Snapshot{root: root},
		depth:   DefaultHistoryDepth,
		log:     log.Named("doc"),
	}, nil
}

// SetHistoryDepth changes number of undo steps kept, values below 1 disable history.
func (e *Editor) SetHistoryDepth(depth int) {
	e.depth = max(depth, 0)
	if len(e.undo) > e.depth {
		e.undo = e.undo[len(e.undo)-e.depth:]
	}
}

// Snapshot returns current immutable state of the document.
func (e *Editor) Snapshot() *Snapshot {
	return e.current
}

// HTML renders current document.
func (e *Editor) HTML() (string, error) {
	return e.current.HTML()
}

// Selection returns current cursor.
func (e *Editor) Selection() Position {
	return Position{Path: e.selection.Path.Clone(), Offset: e.selection.Offset}
}

// Subscribe registers listener and returns function to remove it.
func (e *Editor) Subscribe(fn Listener) (unsubscribe func()) {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, subscription{id: id, fn: fn})
	return func() {
		for i := range e.listeners {
			if e.listeners[i].id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Mount announces document creation to listeners. Only the first call has
// any effect.
func (e *Editor) Mount() {
	if e.mounted {
		return
	}
	e.mounted = true
	e.emit(Event{Type: EventCreate, Snapshot: e.current, Selection: e.Selection()})
}

// SetSelection moves cursor. Position must resolve in the current document.
func (e *Editor) SetSelection(pos Position) error {
	if _, err := e.current.Resolve(pos); err != nil {
		return fmt.Errorf("unable to set selection: %w", err)
	}
	if e.selection.Equal(pos) {
		return nil
	}
	e.selection = Position{Path: pos.Path.Clone(), Offset: pos.Offset}
	e.emit(Event{Type: EventSelection, Snapshot: e.current, Selection: e.Selection()})
	return nil
}

// Apply commits transaction. Either all steps are applied or document is left
// untouched. Empty transactions are ignored.
func (e *Editor) Apply(tx *Tx) error {
	if tx == nil || tx.Len() == 0 {
		return nil
	}

	root := CloneNode(e.current.root)
	for i, s := range tx.steps {
		if err := s.apply(root); err != nil {
			return fmt.Errorf("transaction step %d (%s) failed: %w", i, s.Type, err)
		}
	}
	next := &Snapshot{root: root, version: e.current.version + 1}

	if tx.selection != nil {
		if _, err := next.Resolve(*tx.selection); err != nil {
			return fmt.Errorf("transaction selection is invalid: %w", err)
		}
	}

	if !tx.appendToHistory && e.depth > 0 {
		e.undo = append(e.undo, e.current)
		if len(e.undo) > e.depth {
			e.undo = e.undo[len(e.undo)-e.depth:]
		}
	}
	e.redo = e.redo[:0]
	e.current = next

	if tx.selection != nil {
		e.selection = *tx.selection
	} else {
		e.selection = clampPosition(next, e.selection)
	}

	e.log.Debug("Transaction committed", zap.Int("steps", tx.Len()), zap.Uint64("version", next.version), zap.Bool("appended", tx.appendToHistory))
	e.emit(Event{Type: EventTransaction, Snapshot: next, Tx: tx, Selection: e.Selection()})
	return nil
}

// CanUndo reports whether there is a step to undo.
func (e *Editor) CanUndo() bool {
	return len(e.undo) > 0
}

// CanRedo reports whether there is a step to redo.
func (e *Editor) CanRedo() bool {
	return len(e.redo) > 0
}

// Undo restores previous snapshot. Returns false if there is nothing to undo.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.current)
	e.restore(prev, "undo")
	return true
}

// Redo reapplies previously undone snapshot. Returns false if there is nothing to redo.
func (e *Editor) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.current)
	e.restore(next, "redo")
	return true
}

func (e *Editor) restore(s *Snapshot, how string) {
	// restored state gets a new version so listeners could tell it from the one they saw
	version := e.current.version + 1
	e.current = &Snapshot{root: s.root, version: version}
	e.selection = clampPosition(e.current, e.selection)
	e.log.Debug("History restored", zap.String("direction", how), zap.Uint64("version", version))
	e.emit(Event{Type: EventTransaction, Snapshot: e.current, Tx: NewTx().SetMeta(MetaHistory, how), Selection: e.Selection()})
}

// emit delivers event to listeners. Events raised by listeners are queued and
// delivered after the current round completes.
func (e *Editor) emit(ev Event) {
	e.queue = append(e.queue, ev)
	if e.busy {
		return
	}
	e.busy = true
	defer func() { e.busy = false }()

	for len(e.queue) > 0 {
		ev := e.queue[0]
		e.queue = e.queue[1:]
		// listeners may unsubscribe while being notified
		listeners := append([]subscription(nil), e.listeners...)
		for _, l := range listeners {
			l.fn(ev)
		}
	}
}

// clampPosition shortens position until it resolves in the snapshot.
func clampPosition(s *Snapshot, pos Position) Position {
	p := Position{Path: pos.Path.Clone(), Offset: pos.Offset}
	for {
		if _, err := s.Resolve(p); err == nil {
			return p
		}
		if len(p.Path) == 0 {
			return Position{}
		}
		p.Path = p.Path[:len(p.Path)-1]
		p.Offset = 0
	}
}

// ErrNotElement is returned when element was expected at path.
var ErrNotElement = errors.New("not an element")

// ElementAt returns element at path in the current snapshot.
func (e *Editor) ElementAt(path NodePath) (*html.Node, error) {
	n, err := e.current.NodeAt(path)
	if err != nil {
		return nil, err
	}
	if n.Type != html.ElementNode {
		return nil, fmt.Errorf("node at %v: %w", path, ErrNotElement)
	}
	return n, nil
}
