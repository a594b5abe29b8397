package doc

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// StepType names atomic change.
type StepType string

const (
	StepSetAttr    StepType = "SET_ATTR"    // Change/Add an attribute
	StepRemoveAttr StepType = "REMOVE_ATTR" // Remove an attribute
	StepInsertNode StepType = "INSERT_NODE" // Insert a new node
	StepDeleteNode StepType = "DELETE_NODE" // Remove a node
	StepSetText    StepType = "SET_TEXT"    // Replace element content with text
)

// Step is a single change of the transaction. Paths are evaluated against the
// document as modified by preceding steps of the same transaction.
type Step struct {
	Type  StepType
	Path  NodePath
	Key   string     // attribute name
	Value string     // attribute value or text
	Index int        // child index for insertion
	Node  *html.Node // node to insert
}

// Meta keys set by the engine.
const (
	MetaHistory = "history" // "undo" or "redo"
)

// Tx accumulates steps to be committed to the document at once.
type Tx struct {
	steps           []Step
	appendToHistory bool
	selection       *Position
	meta            map[string]any
}

// NewTx creates empty transaction.
func NewTx() *Tx {
	return &Tx{}
}

// SetAttr sets attribute on element at path.
func (tx *Tx) SetAttr(path NodePath, key, value string) *Tx {
	tx.steps = append(tx.steps, Step{Type: StepSetAttr, Path: path.Clone(), Key: key, Value: value})
	return tx
}

// RemoveAttr removes attribute from element at path. Missing attribute is not an error.
func (tx *Tx) RemoveAttr(path NodePath, key string) *Tx {
	tx.steps = append(tx.steps, Step{Type: StepRemoveAttr, Path: path.Clone(), Key: key})
	return tx
}

// Insert puts a copy of node into parent at index. Index equal to children
// count appends.
func (tx *Tx) Insert(parent NodePath, index int, n *html.Node) *Tx {
	tx.steps = append(tx.steps, Step{Type: StepInsertNode, Path: parent.Clone(), Index: index, Node: CloneNode(n)})
	return tx
}

// InsertAfter puts a copy of node right after the node at path.
func (tx *Tx) InsertAfter(path NodePath, n *html.Node) *Tx {
	parent, ok := path.Parent()
	if !ok {
		// root has no siblings, let apply report it
		tx.steps = append(tx.steps, Step{Type: StepInsertNode, Path: nil, Index: -1, Node: CloneNode(n)})
		return tx
	}
	return tx.Insert(parent, path[len(path)-1]+1, n)
}

// Delete removes node at path.
func (tx *Tx) Delete(path NodePath) *Tx {
	tx.steps = append(tx.steps, Step{Type: StepDeleteNode, Path: path.Clone()})
	return tx
}

// SetText replaces content of the element at path with a single text node.
func (tx *Tx) SetText(path NodePath, text string) *Tx {
	tx.steps = append(tx.steps, Step{Type: StepSetText, Path: path.Clone(), Value: text})
	return tx
}

// SetSelection requests cursor to be moved when transaction is committed.
func (tx *Tx) SetSelection(pos Position) *Tx {
	p := Position{Path: pos.Path.Clone(), Offset: pos.Offset}
	tx.selection = &p
	return tx
}

// AppendToHistory merges transaction into the previous undo step instead of
// creating a new one.
func (tx *Tx) AppendToHistory() *Tx {
	tx.appendToHistory = true
	return tx
}

// SetMeta attaches arbitrary information listeners may inspect.
func (tx *Tx) SetMeta(key string, val any) *Tx {
	if tx.meta == nil {
		tx.meta = make(map[string]any)
	}
	tx.meta[key] = val
	return tx
}

// Meta returns previously attached information.
func (tx *Tx) Meta(key string) any {
	if tx == nil {
		return nil
	}
	return tx.meta[key]
}

// Len returns number of steps.
func (tx *Tx) Len() int {
	return len(tx.steps)
}

// Steps returns copy of accumulated steps.
func (tx *Tx) Steps() []Step {
	out := make([]Step, len(tx.steps))
	copy(out, tx.steps)
	return out
}

func (s Step) apply(root *html.Node) error {
	switch s.Type {
	case StepSetAttr, StepRemoveAttr, StepSetText:
		n, err := nodeAt(root, s.Path)
		if err != nil {
			return err
		}
		if n.Type != html.ElementNode {
			return fmt.Errorf("node at %v is not an element", s.Path)
		}
		switch s.Type {
		case StepSetAttr:
			setAttr(n, s.Key, s.Value)
		case StepRemoveAttr:
			removeAttr(n, s.Key)
		case StepSetText:
			for c := n.FirstChild; c != nil; c = n.FirstChild {
				n.RemoveChild(c)
			}
			if len(s.Value) > 0 {
				n.AppendChild(&html.Node{Type: html.TextNode, Data: s.Value})
			}
		}
	case StepInsertNode:
		if s.Node == nil {
			return fmt.Errorf("nothing to insert at %v", s.Path)
		}
		parent, err := nodeAt(root, s.Path)
		if err != nil {
			return err
		}
		if parent.Type != html.ElementNode {
			return fmt.Errorf("node at %v cannot have children", s.Path)
		}
		count := childCount(parent)
		if s.Index < 0 || s.Index > count {
			return fmt.Errorf("insertion index %d is out of range for %v (children %d)", s.Index, s.Path, count)
		}
		// steps could be applied more than once (undo/redo replay), always insert a copy
		n := CloneNode(s.Node)
		if s.Index == count {
			parent.AppendChild(n)
		} else {
			parent.InsertBefore(n, childAt(parent, s.Index))
		}
	case StepDeleteNode:
		if len(s.Path) == 0 {
			return errors.New("root cannot be deleted")
		}
		n, err := nodeAt(root, s.Path)
		if err != nil {
			return err
		}
		n.Parent.RemoveChild(n)
	default:
		return fmt.Errorf("unknown step type %q", s.Type)
	}
	return nil
}
