package mail

import (
	"slices"

	"go.uber.org/zap"

	"mailbuilder/ident"
)

// DefaultModelHistory limits undo steps of the Model.
const DefaultModelHistory = 50

// Model is a headless editor over flat ordered list of blocks. Every change
// is a single undo step. Model is not connected to the document editor and
// has its own identity rules: blocks without identity get one on insertion.
type Model struct {
	blocks []Block
	undo   [][]Block
	redo   [][]Block
	depth  int
	alloc  *ident.Allocator
	log    *zap.Logger
}

// NewModel creates model with copy of blocks.
func NewModel(blocks []Block, alloc *ident.Allocator, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = ident.Default
	}
	m := &Model{blocks: cloneBlocks(blocks), depth: DefaultModelHistory, alloc: alloc, log: log.Named("model")}
	for i := range m.blocks {
		if m.blocks[i].ID == "" {
			m.blocks[i].ID = string(alloc.NewBlockID())
		}
	}
	return m
}

// Blocks returns copy of current blocks.
func (m *Model) Blocks() []Block {
	return cloneBlocks(m.blocks)
}

// Len returns number of blocks.
func (m *Model) Len() int {
	return len(m.blocks)
}

// HTML renders current blocks.
func (m *Model) HTML() string {
	return ToHTML(m.blocks)
}

func (m *Model) index(id string) int {
	return slices.IndexFunc(m.blocks, func(b Block) bool { return b.ID == id })
}

func (m *Model) commit(next []Block) {
	m.undo = append(m.undo, m.blocks)
	if len(m.undo) > m.depth {
		m.undo = m.undo[len(m.undo)-m.depth:]
	}
	m.redo = nil
	m.blocks = next
}

// Add inserts block at index (appends when index is out of range) and
// returns its identity.
func (m *Model) Add(b Block, index int) string {
	b = b.Clone()
	if b.ID == "" || m.index(b.ID) >= 0 {
		b.ID = string(m.alloc.NewBlockID())
	}
	if index < 0 || index > len(m.blocks) {
		index = len(m.blocks)
	}
	next := cloneBlocks(m.blocks)
	next = slices.Insert(next, index, b)
	m.commit(next)
	return b.ID
}

// Update changes block in place. Identity can not be changed.
func (m *Model) Update(id string, fn func(*Block)) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	next := cloneBlocks(m.blocks)
	fn(&next[i])
	next[i].ID = id
	m.commit(next)
	return true
}

// SetStyle sets single style property of the block, nil value removes it.
func (m *Model) SetStyle(id, key string, value any) bool {
	return m.Update(id, func(b *Block) {
		if value == nil {
			delete(b.Styles, key)
			return
		}
		if b.Styles == nil {
			b.Styles = make(map[string]any)
		}
		b.Styles[key] = value
	})
}

// Move puts block to the new position.
func (m *Model) Move(id string, index int) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	index = min(max(index, 0), len(m.blocks)-1)
	if index == i {
		return true
	}
	next := cloneBlocks(m.blocks)
	b := next[i]
	next = slices.Delete(next, i, i+1)
	next = slices.Insert(next, index, b)
	m.commit(next)
	return true
}

// Duplicate inserts copy of the block after it, copy gets new identity.
func (m *Model) Duplicate(id string) (string, bool) {
	i := m.index(id)
	if i < 0 {
		return "", false
	}
	b := m.blocks[i].Clone()
	b.ID = string(m.alloc.NewBlockID())
	next := cloneBlocks(m.blocks)
	next = slices.Insert(next, i+1, b)
	m.commit(next)
	return b.ID, true
}

// Remove deletes block.
func (m *Model) Remove(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	next := cloneBlocks(m.blocks)
	next = slices.Delete(next, i, i+1)
	m.commit(next)
	return true
}

// Undo reverts last change.
func (m *Model) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	m.redo = append(m.redo, m.blocks)
	m.blocks = m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	return true
}

// Redo reapplies last undone change.
func (m *Model) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	m.undo = append(m.undo, m.blocks)
	m.blocks = m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	return true
}
