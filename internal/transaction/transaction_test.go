package transaction

import (
	"testing"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
	"github.com/foliodoc/collabdoc/internal/delta"
	"github.com/foliodoc/collabdoc/internal/selection"
)

// fakeTarget is a minimal Target used to drive the builder in isolation,
// without pulling in the document facade.
type fakeTarget struct {
	seq  delta.Sequence
	sel  selection.Selection
	attr attrs.Attributes
}

func (f *fakeTarget) Delta() delta.Sequence               { return f.seq }
func (f *fakeTarget) Selection() selection.Selection       { return f.sel }
func (f *fakeTarget) MergeAttributes(a attrs.Attributes)   { f.attr = attrs.Merge(f.attr, a) }

func TestInsertThenInsertAt(t *testing.T) {
	target := &fakeTarget{sel: selection.Collapsed(0)}
	tr := New(target)
	tr.Insert("Hello World", attrs.Attributes{})

	if len(tr.Ops()) != 1 {
		t.Fatalf("Ops() len = %d, want 1", len(tr.Ops()))
	}
	if tr.Cursor() != 11 {
		t.Fatalf("Cursor() = %d, want 11", tr.Cursor())
	}

	target.seq = delta.Sequence{{Payload: delta.NewText("Hello World")}}
	target.sel = selection.Collapsed(0)
	tr2 := New(target)
	tr2.InsertAt(5, " Today", attrs.Attributes{})

	ops := tr2.Ops()
	if len(ops) != 2 || ops[0].Kind != delta.OpRetain || ops[0].Count != 5 {
		t.Fatalf("InsertAt prefix = %+v, want Retain(5) first", ops)
	}
}

// Grapheme-aware backspace: deleting 1 unit at a position following a
// multi-byte grapheme cluster deletes the whole cluster, not one byte.
func TestGraphemeAwareBackspace(t *testing.T) {
	family := "\U0001F468‍\U0001F468‍\U0001F467‍\U0001F467"
	s := "Hi " + family
	target := &fakeTarget{
		seq: delta.Sequence{{Payload: delta.NewText(s)}},
		sel: selection.Collapsed(len(s)),
	}
	tr := New(target)
	tr.Delete(1)

	ops := tr.Ops()
	if len(ops) != 2 || ops[1].Kind != delta.OpDelete {
		t.Fatalf("Ops() = %+v, want [Retain, Delete]", ops)
	}
	if ops[1].Count != len(family) {
		t.Fatalf("Delete count = %d, want %d (whole grapheme cluster)", ops[1].Count, len(family))
	}
}

func TestDeletePlainByteNotExtended(t *testing.T) {
	target := &fakeTarget{
		seq: delta.Sequence{{Payload: delta.NewText("abc")}},
		sel: selection.Collapsed(3),
	}
	tr := New(target)
	tr.Delete(1)

	ops := tr.Ops()
	if ops[len(ops)-1].Count != 1 {
		t.Fatalf("Delete count = %d, want 1 for plain ascii", ops[len(ops)-1].Count)
	}
}

func TestDeleteRangeIgnoresN(t *testing.T) {
	target := &fakeTarget{
		seq: delta.Sequence{{Payload: delta.NewText("Hello World")}},
		sel: selection.Selection{Start: 2, End: 7},
	}
	tr := New(target)
	tr.Delete(1)

	ops := tr.Ops()
	if len(ops) != 1 || ops[0].Kind != delta.OpDelete || ops[0].Count != 5 {
		t.Fatalf("Ops() = %+v, want single Delete(5)", ops)
	}
}

// ensureBlockAtFront prepends a paragraph when the document has no leading
// block, and bumps the local cursor so later remap sees the shift.
func TestEnsureBlockAtFrontBumpsCursor(t *testing.T) {
	target := &fakeTarget{sel: selection.Collapsed(0)}
	tr := New(target)
	tr.Insert("Hello World", attrs.Attributes{})
	fired := tr.EnsureBlockAtFront()

	if !fired {
		t.Fatalf("EnsureBlockAtFront() = false, want true")
	}
	if !tr.HasBlockAtFront() {
		t.Fatalf("HasBlockAtFront() = false, want true")
	}
	if tr.Cursor() != 12 {
		t.Fatalf("Cursor() = %d, want 12 (11 for the text plus 1 for the block)", tr.Cursor())
	}
	ops := tr.Ops()
	if ops[0].Kind != delta.OpInsert || !ops[0].Payload.IsBlock() {
		t.Fatalf("Ops()[0] = %+v, want a block insert prepended", ops[0])
	}
}

func TestEnsureBlockAtFrontNoOpWhenBlockPresent(t *testing.T) {
	target := &fakeTarget{
		seq: delta.Sequence{{Payload: delta.NewBlock(blocktype.Paragraph)}},
		sel: selection.Collapsed(1),
	}
	tr := New(target)
	fired := tr.EnsureBlockAtFront()
	if fired {
		t.Fatalf("EnsureBlockAtFront() = true, want false (block already present)")
	}
}

// convertIfNeeded swaps an existing differing block instead of inserting.
func TestConvertIfNeeded(t *testing.T) {
	target := &fakeTarget{
		seq: delta.Sequence{{Payload: delta.NewBlock(blocktype.Blockquote)}},
		sel: selection.Collapsed(1),
	}
	tr := New(target)
	swapped := tr.ConvertIfNeeded(blocktype.Unordered, attrs.Attributes{})

	if !swapped {
		t.Fatalf("ConvertIfNeeded() = false, want true")
	}
	ops := tr.Ops()
	if len(ops) == 0 || ops[len(ops)-1].Kind != delta.OpSwap {
		t.Fatalf("Ops() = %+v, want a trailing Swap", ops)
	}
}
