// Package delta defines the document's sum-type building blocks: a Payload
// is either a text run or a block marker, a Delta entry pairs a payload with
// attributes, and an Op is one of the four operation shapes (insert, retain,
// delete, swap) a transaction emits against the document.
//
// Length is measured in bytes of the UTF-8 encoding of the run (this repo's
// resolution of the "code units, not graphemes" design note — see
// DESIGN.md). Grapheme boundaries matter only to the transaction builder's
// backspace, never to Payload.Length.
package delta

import (
	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
)

// Payload is the sum type carried by a Delta entry or an Insert/Swap
// operation: exactly one of Text or Block is set.
type Payload struct {
	Text  *string
	Block *blocktype.BlockType
}

// NewText builds a text payload.
func NewText(s string) Payload {
	return Payload{Text: &s}
}

// NewBlock builds a block payload.
func NewBlock(t blocktype.BlockType) Payload {
	return Payload{Block: &t}
}

// IsText reports whether p carries a text run.
func (p Payload) IsText() bool { return p.Text != nil }

// IsBlock reports whether p carries a block marker.
func (p Payload) IsBlock() bool { return p.Block != nil }

// IsZero reports whether p carries neither a text run nor a block marker.
func (p Payload) IsZero() bool { return p.Text == nil && p.Block == nil }

// Length is the payload's contribution to a Delta entry's length: the byte
// length of the text, or 1 for a block.
func (p Payload) Length() int {
	if p.Text != nil {
		return len(*p.Text)
	}
	return 1
}

// Equal is structural equality.
func (p Payload) Equal(o Payload) bool {
	if p.IsText() != o.IsText() {
		return false
	}
	if p.IsText() {
		return *p.Text == *o.Text
	}
	if p.IsBlock() != o.IsBlock() {
		return false
	}
	if p.IsBlock() {
		return *p.Block == *o.Block
	}
	return true
}

// Entry is one element of the document's delta sequence: a payload plus the
// attributes it carries.
type Entry struct {
	Payload    Payload
	Attributes attrs.Attributes
}

// Length is the entry's contribution to the document length.
func (e Entry) Length() int { return e.Payload.Length() }

// Sequence is the document's delta: an ordered list of entries.
type Sequence []Entry

// Length sums every entry's length.
func (s Sequence) Length() int {
	n := 0
	for _, e := range s {
		n += e.Length()
	}
	return n
}

// Clone returns an independent copy of s, safe to mutate without aliasing
// the original (used by Document.Clone, and so by TransactSimulate).
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// OpKind tags which of the four operation shapes an Op carries.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpRetain OpKind = "retain"
	OpDelete OpKind = "delete"
	OpSwap   OpKind = "swap"
)

// Op is one element of an operation list: insert, retain, delete, or swap.
// Only the fields relevant to Kind are meaningful; the rest are zero.
type Op struct {
	Kind       OpKind
	Payload    Payload          // Insert, Swap
	Attributes attrs.Attributes // Insert, Swap, Retain (overlay)
	Count      int              // Retain, Delete
}

// Ops is an operation list, as accumulated by a transaction and consumed by
// the applier.
type Ops []Op

// InsertText builds an Insert op carrying a text run.
func InsertText(s string, a attrs.Attributes) Op {
	return Op{Kind: OpInsert, Payload: NewText(s), Attributes: a}
}

// InsertBlock builds an Insert op carrying a block marker.
func InsertBlock(t blocktype.BlockType, a attrs.Attributes) Op {
	return Op{Kind: OpInsert, Payload: NewBlock(t), Attributes: a}
}

// Retain builds a plain retain op (no attribute overlay).
func Retain(n int) Op {
	return Op{Kind: OpRetain, Count: n}
}

// RetainFormat builds a retain-with-attrs overlay op.
func RetainFormat(n int, a attrs.Attributes) Op {
	return Op{Kind: OpRetain, Count: n, Attributes: a}
}

// Delete builds a delete op.
func Delete(n int) Op {
	return Op{Kind: OpDelete, Count: n}
}

// SwapText builds a Swap op carrying a text run.
func SwapText(s string, a attrs.Attributes) Op {
	return Op{Kind: OpSwap, Payload: NewText(s), Attributes: a}
}

// SwapBlock builds a Swap op carrying a block marker.
func SwapBlock(t blocktype.BlockType, a attrs.Attributes) Op {
	return Op{Kind: OpSwap, Payload: NewBlock(t), Attributes: a}
}

// HasOverlay reports whether a retain op carries an attribute overlay.
func (o Op) HasOverlay() bool {
	return o.Kind == OpRetain && !o.Attributes.IsEmpty()
}
