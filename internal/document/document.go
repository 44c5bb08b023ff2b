// Package document implements the Document facade: the holder of a delta
// sequence, selection, and ambient attributes, exposing apply/transact and
// the selection-remap step that follows every commit.
package document

import (
	"github.com/foliodoc/collabdoc/internal/apply"
	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
	"github.com/foliodoc/collabdoc/internal/delta"
	"github.com/foliodoc/collabdoc/internal/grapheme"
	"github.com/foliodoc/collabdoc/internal/selection"
	"github.com/foliodoc/collabdoc/internal/transaction"
)

// Notifier receives the four lifecycle events a commit can emit. Embedders
// that don't care about a given event can embed NoopNotifier and override
// only the ones they need.
type Notifier interface {
	BeforeTransaction(doc *Document, tr *transaction.Transaction)
	AfterTransaction(doc *Document, tr *transaction.Transaction)
	BeforeApply(doc *Document, ops delta.Ops)
	AfterApply(doc *Document, ops delta.Ops)
}

// NoopNotifier implements Notifier with no-ops, for embedders that only
// want one or two of the four events.
type NoopNotifier struct{}

func (NoopNotifier) BeforeTransaction(*Document, *transaction.Transaction) {}
func (NoopNotifier) AfterTransaction(*Document, *transaction.Transaction)  {}
func (NoopNotifier) BeforeApply(*Document, delta.Ops)                      {}
func (NoopNotifier) AfterApply(*Document, delta.Ops)                       {}

// Document holds the mutable state of one editable document: its delta
// sequence, current selection, and ambient (whole-document) attributes.
type Document struct {
	delta      delta.Sequence
	sel        selection.Selection
	attributes attrs.Attributes
	notifier   Notifier
}

// New constructs a Document. A nil delta starts empty; a nil/zero
// attributes starts with no ambient formatting.
func New(a attrs.Attributes, d delta.Sequence) *Document {
	return &Document{delta: d, attributes: a}
}

// SetNotifier installs the notifier that Apply/Transact report lifecycle
// events to. Pass nil to stop receiving events.
func (d *Document) SetNotifier(n Notifier) { d.notifier = n }

// Delta returns the document's current delta sequence.
func (d *Document) Delta() delta.Sequence { return d.delta }

// Selection returns the document's current selection.
func (d *Document) Selection() selection.Selection { return d.sel }

// SetSelection replaces the document's selection directly (e.g. to track a
// remote cursor move that isn't itself a content edit).
func (d *Document) SetSelection(s selection.Selection) { d.sel = s }

// Attributes returns the document's ambient attributes.
func (d *Document) Attributes() attrs.Attributes { return d.attributes }

// MergeAttributes overlays a onto the document's ambient attributes. Part
// of the transaction.Target interface: Format calls this as a side effect.
func (d *Document) MergeAttributes(a attrs.Attributes) {
	d.attributes = attrs.Merge(d.attributes, a)
}

// Length is the sum of every entry's length.
func (d *Document) Length() int { return d.delta.Length() }

// DeltaAt returns the entry covering pos, or nil if pos is out of range.
func (d *Document) DeltaAt(pos int) *delta.Entry {
	if pos < 0 {
		return nil
	}
	cursor := 0
	for idx := range d.delta {
		l := d.delta[idx].Length()
		if pos >= cursor && pos < cursor+l {
			return &d.delta[idx]
		}
		cursor += l
	}
	return nil
}

// Fetched is the result of FetchAt: exactly one of Text or Block is set.
type Fetched struct {
	Text  string
	Block blocktype.BlockType
	IsSet bool
}

// FetchAt returns the grapheme cluster or block payload at pos. For text
// entries the result is the single user-perceived character at pos, which
// may span more than one byte.
func (d *Document) FetchAt(pos int) Fetched {
	if pos < 0 {
		return Fetched{}
	}
	cursor := 0
	for idx := range d.delta {
		e := d.delta[idx]
		l := e.Length()
		if pos >= cursor && pos < cursor+l {
			if e.Payload.IsBlock() {
				return Fetched{Block: *e.Payload.Block, IsSet: true}
			}
			local := pos - cursor
			for _, g := range grapheme.Split(*e.Payload.Text) {
				if local < len(g) {
					return Fetched{Text: g, IsSet: true}
				}
				local -= len(g)
			}
			return Fetched{}
		}
		cursor += l
	}
	return Fetched{}
}

// Apply folds a raw operation list into the document's delta, firing
// BeforeApply/AfterApply.
func (d *Document) Apply(ops delta.Ops) {
	if d.notifier != nil {
		d.notifier.BeforeApply(d, ops)
	}
	d.delta = apply.ProcessOperations(ops, d.delta)
	if d.notifier != nil {
		d.notifier.AfterApply(d, ops)
	}
}

// Transact runs fn against a fresh Transaction builder. If fn returns true,
// or the builder produced no operations, the transaction is discarded with
// no effect. A negative count passed to a builder method also discards the
// transaction (the fatal-assertion case in the error-handling design).
//
// Otherwise the operations are committed (via Apply) and the selection is
// remapped. cb, if non-nil, runs once after commit instead of firing the
// BeforeTransaction/AfterTransaction events.
func (d *Document) Transact(fn func(tr *transaction.Transaction) bool, cb func(doc *Document, tr *transaction.Transaction)) {
	tr := transaction.New(d)

	cancel := d.runBuilder(fn, tr)
	if cancel || len(tr.Ops()) == 0 {
		return
	}

	if cb == nil && d.notifier != nil {
		d.notifier.BeforeTransaction(d, tr)
	}
	d.commit(tr)
	if cb != nil {
		cb(d, tr)
	} else if d.notifier != nil {
		d.notifier.AfterTransaction(d, tr)
	}
}

// runBuilder invokes fn, converting a transaction.ErrNegativeCount panic
// into a cancelled transaction. Any other panic propagates.
func (d *Document) runBuilder(fn func(tr *transaction.Transaction) bool, tr *transaction.Transaction) (cancel bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == transaction.ErrNegativeCount {
				cancel = true
				return
			}
			panic(r)
		}
	}()
	return fn(tr)
}

// commit applies the transaction's operations and remaps the selection.
func (d *Document) commit(tr *transaction.Transaction) {
	ops := tr.Ops()
	d.Apply(ops)
	d.sel = selection.Selection{
		Start: Remap(ops, d.sel.Start, tr.HasBlockAtFront()),
		End:   Remap(ops, d.sel.End, tr.HasBlockAtFront()),
	}
}

// TransactSimulate runs fn against a deep clone of d and returns the clone,
// without mutating d. The clone carries no notifier.
func (d *Document) TransactSimulate(fn func(tr *transaction.Transaction) bool) *Document {
	clone := d.Clone()
	clone.Transact(fn, nil)
	return clone
}

// Clone returns an independent copy of d.
func (d *Document) Clone() *Document {
	return &Document{
		delta:      d.delta.Clone(),
		sel:        d.sel,
		attributes: d.attributes,
	}
}
