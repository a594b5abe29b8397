package blocks

import (
	"fmt"

	"go.uber.org/zap"

	"mailbuilder/common"
	"mailbuilder/doc"
	"mailbuilder/ident"
	"mailbuilder/style"
)

// Item addresses presentation change of a single block. Nil or empty Record
// clears inline style.
type Item struct {
	ID     ident.BlockID
	Kind   common.BlockKind
	Record *style.Record
}

// Applicator writes style records onto document nodes as inline style.
type Applicator struct {
	editor *doc.Editor
	log    *zap.Logger
}

// NewApplicator creates applicator for the editor.
func NewApplicator(editor *doc.Editor, log *zap.Logger) *Applicator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applicator{editor: editor, log: log.Named("apply")}
}

// ApplyToNode writes record onto the node carrying identity, wherever it is
// now. Nil or empty record removes style attribute. Returns false when identity is not
// in the document.
func (a *Applicator) ApplyToNode(id ident.BlockID, kind common.BlockKind, rec *style.Record) bool {
	n, err := a.Apply(Item{ID: id, Kind: kind, Record: rec})
	if err != nil {
		a.log.Warn("Unable to apply style", zap.String("id", string(id)), zap.Error(err))
		return false
	}
	return n == 1
}

// Apply writes several records in one transaction. Returns number of blocks
// found in the document.
func (a *Applicator) Apply(items ...Item) (int, error) {
	snap := a.editor.Snapshot()
	tx := doc.NewTx()

	found := 0
	for _, it := range items {
		n, path, ok := snap.FindByAttr(doc.AttrBlockID, string(it.ID))
		if !ok {
			a.log.Debug("Block not found", zap.String("id", string(it.ID)))
			continue
		}
		found++

		current, has := doc.Attr(n, doc.AttrStyle)
		var value string
		if it.Record != nil && *it.Record != (style.Record{}) {
			value = style.InlineStyle(it.Kind, *it.Record)
		}
		switch {
		case value == "" && has:
			tx.RemoveAttr(path, doc.AttrStyle)
		case value != "" && value != current:
			tx.SetAttr(path, doc.AttrStyle, value)
		}
	}

	if err := a.editor.Apply(tx); err != nil {
		return found, fmt.Errorf("unable to apply styles: %w", err)
	}
	return found, nil
}
