package doc

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func mustEditor(t *testing.T, content string) *Editor {
	t.Helper()
	e, err := New(content, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func mustHTML(t *testing.T, e *Editor) string {
	t.Helper()
	s, err := e.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return s
}

func TestEditorApply(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tx      func() *Tx
		want    string
		wantErr bool
	}{
		{
			name:    "set attribute",
			content: "<p>a</p>",
			tx:      func() *Tx { return NewTx().SetAttr(NodePath{0}, AttrBlockID, "x") },
			want:    `<p data-block-id="x">a</p>`,
		},
		{
			name:    "remove attribute",
			content: `<p style="color: red">a</p>`,
			tx:      func() *Tx { return NewTx().RemoveAttr(NodePath{0}, AttrStyle) },
			want:    `<p>a</p>`,
		},
		{
			name:    "insert after",
			content: "<p>a</p><p>c</p>",
			tx: func() *Tx {
				n, _ := ParseNode("<p>b</p>")
				return NewTx().InsertAfter(NodePath{0}, n)
			},
			want: "<p>a</p><p>b</p><p>c</p>",
		},
		{
			name:    "delete",
			content: "<p>a</p><p>b</p>",
			tx:      func() *Tx { return NewTx().Delete(NodePath{0}) },
			want:    "<p>b</p>",
		},
		{
			name:    "set text escapes",
			content: "<p>a</p>",
			tx:      func() *Tx { return NewTx().SetText(NodePath{0}, "<b>") },
			want:    "<p>&lt;b&gt;</p>",
		},
		{
			name:    "failing step keeps document",
			content: "<p>a</p>",
			tx: func() *Tx {
				return NewTx().SetAttr(NodePath{0}, "id", "1").SetAttr(NodePath{5}, "id", "2")
			},
			want:    "<p>a</p>",
			wantErr: true,
		},
		{
			name:    "root cannot be deleted",
			content: "<p>a</p>",
			tx:      func() *Tx { return NewTx().Delete(nil) },
			want:    "<p>a</p>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustEditor(t, tt.content)
			before := e.Snapshot()
			err := e.Apply(tt.tx())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := mustHTML(t, e); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
			if tt.wantErr && e.Snapshot() != before {
				t.Errorf("failed transaction replaced snapshot")
			}
		})
	}
}

func TestEditorSnapshotsAreImmutable(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	old := e.Snapshot()
	if err := e.Apply(NewTx().SetAttr(NodePath{0}, "id", "1")); err != nil {
		t.Fatal(err)
	}
	s, _ := old.HTML()
	if s != "<p>a</p>" {
		t.Errorf("old snapshot changed: %q", s)
	}
	if e.Snapshot().Version() != old.Version()+1 {
		t.Errorf("version = %d, want %d", e.Snapshot().Version(), old.Version()+1)
	}
}

func TestEditorEmptyTxIsIgnored(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	var events int
	e.Subscribe(func(Event) { events++ })
	if err := e.Apply(NewTx()); err != nil {
		t.Fatal(err)
	}
	if events != 0 || e.CanUndo() {
		t.Errorf("empty transaction committed: events=%d canUndo=%v", events, e.CanUndo())
	}
}

func TestEditorUndoRedo(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	if e.Undo() || e.Redo() {
		t.Fatal("undo/redo on fresh editor should report nothing to do")
	}
	if err := e.Apply(NewTx().SetAttr(NodePath{0}, "id", "1")); err != nil {
		t.Fatal(err)
	}
	// appended transaction becomes part of the same undo step
	if err := e.Apply(NewTx().SetAttr(NodePath{0}, "class", "c").AppendToHistory()); err != nil {
		t.Fatal(err)
	}
	if got := mustHTML(t, e); got != `<p id="1" class="c">a</p>` {
		t.Fatalf("HTML() = %q", got)
	}

	var meta []any
	e.Subscribe(func(ev Event) { meta = append(meta, ev.Tx.Meta(MetaHistory)) })

	if !e.Undo() {
		t.Fatal("Undo() = false")
	}
	if got := mustHTML(t, e); got != "<p>a</p>" {
		t.Errorf("after undo HTML() = %q", got)
	}
	if e.CanUndo() {
		t.Errorf("appended transaction created separate undo step")
	}
	if !e.Redo() {
		t.Fatal("Redo() = false")
	}
	if got := mustHTML(t, e); got != `<p id="1" class="c">a</p>` {
		t.Errorf("after redo HTML() = %q", got)
	}
	if len(meta) != 2 || meta[0] != "undo" || meta[1] != "redo" {
		t.Errorf("history meta = %v", meta)
	}
}

func TestEditorNewChangeClearsRedo(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	_ = e.Apply(NewTx().SetAttr(NodePath{0}, "id", "1"))
	e.Undo()
	_ = e.Apply(NewTx().SetAttr(NodePath{0}, "id", "2"))
	if e.CanRedo() {
		t.Errorf("redo stack survived new change")
	}
}

func TestEditorHistoryDepth(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	e.SetHistoryDepth(2)
	for _, v := range []string{"1", "2", "3"} {
		_ = e.Apply(NewTx().SetAttr(NodePath{0}, "id", v))
	}
	var n int
	for e.Undo() {
		n++
	}
	if n != 2 {
		t.Errorf("undo steps = %d, want 2", n)
	}
	if got := mustHTML(t, e); got != `<p id="1">a</p>` {
		t.Errorf("HTML() = %q", got)
	}
}

func TestEditorMountOnce(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	var created int
	e.Subscribe(func(ev Event) {
		if ev.Type == EventCreate {
			created++
		}
	})
	e.Mount()
	e.Mount()
	if created != 1 {
		t.Errorf("create events = %d, want 1", created)
	}
}

func TestEditorQueuedDispatch(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	var order []string
	e.Subscribe(func(ev Event) {
		order = append(order, "first:"+ev.Type.String())
		if ev.Type == EventCreate {
			// change made from listener must not be delivered re-entrantly
			if err := e.Apply(NewTx().SetAttr(NodePath{0}, "id", "1")); err != nil {
				t.Error(err)
			}
		}
	})
	e.Subscribe(func(ev Event) {
		order = append(order, "second:"+ev.Type.String())
	})
	e.Mount()
	want := "first:create,second:create,first:transaction,second:transaction"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("dispatch order = %s, want %s", got, want)
	}
}

func TestEditorUnsubscribe(t *testing.T) {
	e := mustEditor(t, "<p>a</p>")
	var n int
	unsubscribe := e.Subscribe(func(Event) { n++ })
	_ = e.Apply(NewTx().SetAttr(NodePath{0}, "id", "1"))
	unsubscribe()
	_ = e.Apply(NewTx().SetAttr(NodePath{0}, "id", "2"))
	if n != 1 {
		t.Errorf("events after unsubscribe = %d, want 1", n)
	}
}

func TestEditorSelection(t *testing.T) {
	e := mustEditor(t, "<p>hello</p><p>x</p>")
	var selections int
	e.Subscribe(func(ev Event) {
		if ev.Type == EventSelection {
			selections++
		}
	})
	pos := Position{Path: NodePath{1, 0}, Offset: 1}
	if err := e.SetSelection(pos); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSelection(pos); err != nil {
		t.Fatal(err)
	}
	if selections != 1 {
		t.Errorf("selection events = %d, want 1", selections)
	}
	if err := e.SetSelection(Position{Path: NodePath{0, 0}, Offset: 10}); err == nil {
		t.Errorf("SetSelection() accepted offset past text end")
	}

	// deleting selected node moves cursor to the closest valid ancestor
	if err := e.Apply(NewTx().Delete(NodePath{1})); err != nil {
		t.Fatal(err)
	}
	got := e.Selection()
	if len(got.Path) != 0 || got.Offset != 0 {
		t.Errorf("Selection() = %+v, want root", got)
	}
}

func TestResolvedPos(t *testing.T) {
	e := mustEditor(t, "<ul><li><p>text</p></li></ul>")
	rp, err := e.Snapshot().Resolve(Position{Path: NodePath{0, 0, 0, 0}, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if rp.Depth() != 4 {
		t.Fatalf("Depth() = %d, want 4", rp.Depth())
	}
	if n := rp.Node(2); n.Data != "li" {
		t.Errorf("Node(2) = %s, want li", n.Data)
	}
	if n := rp.Parent(); n.Data != "p" {
		t.Errorf("Parent() = %s, want p", n.Data)
	}
	if p := rp.Before(2); !p.Equal(NodePath{0, 0}) {
		t.Errorf("Before(2) = %v", p)
	}
	if p := rp.After(2); !p.Equal(NodePath{0, 1}) {
		t.Errorf("After(2) = %v", p)
	}
	if rp.Node(9) != nil {
		t.Errorf("Node(9) should be nil")
	}
}

func TestFindByAttr(t *testing.T) {
	e := mustEditor(t, `<p data-block-id="a">1</p><ul><li data-block-id="b">2</li></ul>`)
	n, path, ok := e.Snapshot().FindByAttr(AttrBlockID, "b")
	if !ok || n.Data != "li" || !path.Equal(NodePath{1, 0}) {
		t.Errorf("FindByAttr() = %v %v %v", n, path, ok)
	}
	if _, _, ok := e.Snapshot().FindByAttr(AttrBlockID, "zzz"); ok {
		t.Errorf("FindByAttr() found missing id")
	}
}
