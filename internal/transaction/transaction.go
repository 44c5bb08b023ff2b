// Package transaction implements the cursor-relative operation builder: the
// piece that turns method calls like insert/delete/format into the flat
// operation list the applier consumes.
package transaction

import (
	"errors"

	"github.com/foliodoc/collabdoc/internal/apply"
	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
	"github.com/foliodoc/collabdoc/internal/delta"
	"github.com/foliodoc/collabdoc/internal/grapheme"
	"github.com/foliodoc/collabdoc/internal/selection"
)

// ErrNegativeCount is the panic value raised by Retain/Delete/DeleteAt/
// FormatAt when given a negative length. The document facade recovers from
// this specific panic and treats it as a cancelled transaction; any other
// panic value propagates.
var ErrNegativeCount = errors.New("transaction: negative count")

// Target is the minimal surface a transaction needs from the document it is
// building operations against.
type Target interface {
	Delta() delta.Sequence
	Selection() selection.Selection
	MergeAttributes(a attrs.Attributes)
}

// Transaction accumulates operations against a Target, relative to a local
// cursor that starts at the target's current selection.
type Transaction struct {
	target          Target
	cursor          int
	ops             delta.Ops
	hasBlockAtFront bool
}

// New starts a transaction builder over target.
func New(target Target) *Transaction {
	return &Transaction{target: target, cursor: target.Selection().FromX()}
}

// Ops returns the accumulated operation list.
func (tr *Transaction) Ops() delta.Ops { return tr.ops }

// HasBlockAtFront reports whether ensureBlockAtFront fired during this
// transaction.
func (tr *Transaction) HasBlockAtFront() bool { return tr.hasBlockAtFront }

// Cursor returns the transaction-local cursor's current position.
func (tr *Transaction) Cursor() int { return tr.cursor }

// prefix performs the delete-or-retain-prefix step every builder method
// begins with: delete the current selection if it's a range, else retain
// forward to an absolute position if one was given.
func (tr *Transaction) prefix(at *int) {
	sel := tr.target.Selection()
	if !sel.IsCollapsed() {
		tr.ops = append(tr.ops, delta.Delete(sel.DistanceX()))
		return
	}
	if at == nil {
		return
	}
	if *at <= tr.cursor {
		tr.cursor = 0
	}
	if n := *at - tr.cursor; n > 0 {
		tr.ops = append(tr.ops, delta.Retain(n))
	}
	tr.cursor = *at
}

// Insert inserts s at the cursor.
func (tr *Transaction) Insert(s string, a attrs.Attributes) {
	tr.prefix(nil)
	tr.ops = append(tr.ops, delta.InsertText(s, a))
	tr.cursor += len(s)
}

// InsertAt inserts s at an absolute position.
func (tr *Transaction) InsertAt(at int, s string, a attrs.Attributes) {
	tr.prefix(&at)
	tr.ops = append(tr.ops, delta.InsertText(s, a))
	tr.cursor += len(s)
}

// Block inserts a block marker at the cursor.
func (tr *Transaction) Block(bt blocktype.BlockType, a attrs.Attributes) {
	tr.prefix(nil)
	tr.ops = append(tr.ops, delta.InsertBlock(bt, a))
	tr.cursor++
}

// BlockAt inserts a block marker at an absolute position.
func (tr *Transaction) BlockAt(at int, bt blocktype.BlockType, a attrs.Attributes) {
	tr.prefix(&at)
	tr.ops = append(tr.ops, delta.InsertBlock(bt, a))
	tr.cursor++
}

// Convert swaps the unit at the cursor for a block marker.
func (tr *Transaction) Convert(bt blocktype.BlockType, a attrs.Attributes) {
	tr.prefix(nil)
	tr.ops = append(tr.ops, delta.SwapBlock(bt, a))
	tr.cursor++
}

// ConvertAt swaps the unit at an absolute position for a block marker.
func (tr *Transaction) ConvertAt(at int, bt blocktype.BlockType, a attrs.Attributes) {
	tr.prefix(&at)
	tr.ops = append(tr.ops, delta.SwapBlock(bt, a))
	tr.cursor++
}

// Replace swaps the unit at the cursor for a text run.
func (tr *Transaction) Replace(s string, a attrs.Attributes) {
	tr.prefix(nil)
	tr.ops = append(tr.ops, delta.SwapText(s, a))
	tr.cursor += len(s)
}

// ReplaceAt swaps the unit at an absolute position for a text run.
func (tr *Transaction) ReplaceAt(at int, s string, a attrs.Attributes) {
	tr.prefix(&at)
	tr.ops = append(tr.ops, delta.SwapText(s, a))
	tr.cursor += len(s)
}

// Format overlays a onto the current selection's span, and also merges a
// into the target's ambient attributes.
func (tr *Transaction) Format(a attrs.Attributes) {
	sel := tr.target.Selection()
	n := sel.DistanceX()
	tr.ops = append(tr.ops, delta.RetainFormat(n, a))
	tr.target.MergeAttributes(a)
}

// FormatAt overlays a onto an absolute span [at, at+n).
func (tr *Transaction) FormatAt(at, n int, a attrs.Attributes) {
	if n < 0 {
		panic(ErrNegativeCount)
	}
	tr.prefix(&at)
	tr.ops = append(tr.ops, delta.RetainFormat(n, a))
}

// Delete removes n units backward from the cursor. A collapsed selection
// with n == 1 is grapheme-aware: it deletes one user-perceived character,
// which may span more than one byte. A range selection deletes the range
// instead, ignoring n.
func (tr *Transaction) Delete(n int) {
	if n < 0 {
		panic(ErrNegativeCount)
	}
	sel := tr.target.Selection()
	if !sel.IsCollapsed() {
		tr.ops = append(tr.ops, delta.Delete(sel.DistanceX()))
		tr.cursor = sel.FromX()
		return
	}
	if n == 1 {
		if s, ok := tr.fetchStringAt(tr.cursor - 1); ok {
			if l := grapheme.LastLen(s); l > 1 {
				n = l
			}
		}
	}
	if n <= 0 {
		return
	}
	if retainN := tr.cursor - n; retainN > 0 {
		tr.ops = append(tr.ops, delta.Retain(retainN))
	}
	tr.ops = append(tr.ops, delta.Delete(n))
	tr.cursor -= n
}

// DeleteAt removes n units starting at an absolute position.
func (tr *Transaction) DeleteAt(at, n int) {
	if n < 0 {
		panic(ErrNegativeCount)
	}
	tr.prefix(&at)
	if n > 0 {
		tr.ops = append(tr.ops, delta.Delete(n))
	}
}

// Retain advances the cursor by n without touching content.
func (tr *Transaction) Retain(n int) {
	if n < 0 {
		panic(ErrNegativeCount)
	}
	if n > 0 {
		tr.ops = append(tr.ops, delta.Retain(n))
		tr.cursor += n
	}
}

// Clear deletes the entire document.
func (tr *Transaction) Clear() {
	total := tr.target.Delta().Length()
	tr.ops = append(tr.ops, delta.Delete(total))
}

// fetchStringAt simulates ops against the target's delta and returns the
// text of the entry covering pos, truncated to end exactly at pos
// (inclusive), so grapheme.LastLen can measure the cluster ending there.
func (tr *Transaction) fetchStringAt(pos int) (string, bool) {
	if pos < 0 {
		return "", false
	}
	seq := tr.simulate()
	d := 0
	for _, e := range seq {
		l := e.Length()
		if pos >= d && pos < d+l {
			if e.Payload.IsText() {
				local := pos - d
				return (*e.Payload.Text)[:local+1], true
			}
			return "", false
		}
		d += l
	}
	return "", false
}

// simulate applies the operations accumulated so far to a copy of the
// target's delta, without mutating the target.
func (tr *Transaction) simulate() delta.Sequence {
	return apply.ProcessOperations(tr.ops, tr.target.Delta())
}

// EnsureBlockAtFront unshifts a paragraph block at the front of the
// document if, after simulating the ops accumulated so far, the first
// entry is absent or a text run. Returns whether it fired.
func (tr *Transaction) EnsureBlockAtFront() bool {
	tr.hasBlockAtFront = true
	seq := tr.simulate()
	if len(seq) > 0 && seq[0].Payload.IsBlock() {
		return false
	}
	tr.ops = append(delta.Ops{delta.InsertBlock(blocktype.Paragraph, attrs.Attributes{})}, tr.ops...)
	tr.cursor++
	return true
}

// ConvertIfNeeded swaps the block immediately before the cursor for bt if
// it differs, instead of inserting a fresh block. Returns whether it swapped
// an existing block (true) or inserted a new one (false).
func (tr *Transaction) ConvertIfNeeded(bt blocktype.BlockType, a attrs.Attributes) bool {
	if tr.cursor > 0 {
		seq := tr.simulate()
		d := 0
		for _, e := range seq {
			l := e.Length()
			if tr.cursor-1 >= d && tr.cursor-1 < d+l {
				if e.Payload.IsBlock() && *e.Payload.Block != bt {
					tr.ConvertAt(tr.cursor-1, bt, a)
					return true
				}
				break
			}
			d += l
		}
	}
	tr.Block(bt, a)
	return false
}
