package document

import (
	"testing"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
	"github.com/foliodoc/collabdoc/internal/delta"
	"github.com/foliodoc/collabdoc/internal/selection"
	"github.com/foliodoc/collabdoc/internal/transaction"
)

func TestTransactInsertThenInsertAt(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hello World", attrs.Attributes{})
		return false
	}, nil)

	if doc.Length() != 11 {
		t.Fatalf("Length() = %d, want 11", doc.Length())
	}

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.InsertAt(5, " Today", attrs.Attributes{})
		return false
	}, nil)

	d := doc.Delta()
	if len(d) != 3 || *d[0].Payload.Text != "Hello" || *d[1].Payload.Text != " Today" || *d[2].Payload.Text != " World" {
		t.Fatalf("Delta() = %+v, want 3 adjacent unmerged runs", d)
	}
}

// Scenario 2 (adapted to byte-length indexing): grapheme-aware backspace at
// a collapsed selection deletes the whole multi-byte cluster in one call.
func TestTransactGraphemeAwareBackspace(t *testing.T) {
	family := "\U0001F468‍\U0001F468‍\U0001F467‍\U0001F467"
	s := "Hello " + family + " World"
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert(s, attrs.Attributes{})
		return false
	}, nil)
	doc.SetSelection(selection.Collapsed(len("Hello " + family)))

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Delete(1)
		return false
	}, nil)

	got := doc.Delta()
	if len(got) != 2 || *got[0].Payload.Text != "Hello " || *got[1].Payload.Text != " World" {
		t.Fatalf("Delta() after grapheme backspace = %+v", got)
	}
}

// Scenario 6: convertIfNeeded swaps a differing block in place.
func TestTransactConvertIfNeeded(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Block(blocktype.Blockquote, attrs.Attributes{})
		return false
	}, nil)
	doc.SetSelection(selection.Collapsed(1))

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.ConvertIfNeeded(blocktype.Unordered, attrs.Attributes{})
		return false
	}, nil)

	d := doc.Delta()
	if len(d) != 1 || !d[0].Payload.IsBlock() || *d[0].Payload.Block != blocktype.Unordered {
		t.Fatalf("Delta() = %+v, want single Unordered block", d)
	}
}

// Cancellation: a transaction function returning true discards ops; the
// document is unchanged and no events fire.
func TestTransactCancelLeavesDocumentUnchanged(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("should not land", attrs.Attributes{})
		return true
	}, nil)

	if doc.Length() != 0 {
		t.Fatalf("Length() = %d, want 0 (cancelled transaction)", doc.Length())
	}
}

// A negative count passed to a builder method aborts the whole transaction
// rather than panicking past the document facade.
func TestTransactNegativeCountAborts(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("kept before the bad call", attrs.Attributes{})
		tr.Retain(-1)
		return false
	}, nil)

	if doc.Length() != 0 {
		t.Fatalf("Length() = %d, want 0 (whole transaction aborted on negative count)", doc.Length())
	}
}

func TestTransactEmptyOpsIsNoOp(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		return false
	}, nil)
	if doc.Length() != 0 {
		t.Fatalf("Length() = %d, want 0", doc.Length())
	}
}

// Idempotence of a no-op apply: applying an empty op list leaves delta and
// selection bit-identical.
func TestApplyEmptyOpsIsIdempotent(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hello", attrs.Attributes{})
		return false
	}, nil)
	before := doc.Delta()
	beforeSel := doc.Selection()

	doc.Apply(nil)

	after := doc.Delta()
	if len(before) != len(after) || *before[0].Payload.Text != *after[0].Payload.Text {
		t.Fatalf("Apply(nil) mutated delta: before %+v after %+v", before, after)
	}
	if doc.Selection() != beforeSel {
		t.Fatalf("Apply(nil) mutated selection: before %+v after %+v", beforeSel, doc.Selection())
	}
}

func TestTransactSimulateDoesNotMutateOriginal(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hello", attrs.Attributes{})
		return false
	}, nil)

	clone := doc.TransactSimulate(func(tr *transaction.Transaction) bool {
		tr.Insert(" World", attrs.Attributes{})
		return false
	})

	if doc.Length() != 5 {
		t.Fatalf("original Length() = %d, want 5 (unaffected by simulate)", doc.Length())
	}
	if clone.Length() != 11 {
		t.Fatalf("clone Length() = %d, want 11", clone.Length())
	}
}

func TestFormatMergesIntoDocumentAttributes(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hello", attrs.Attributes{})
		return false
	}, nil)
	doc.SetSelection(selection.Selection{Start: 0, End: 5})

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Format(attrs.Attributes{Bold: attrs.BoolPtr(true)})
		return false
	}, nil)

	if doc.Attributes().Bold == nil || !*doc.Attributes().Bold {
		t.Fatalf("Attributes().Bold = %v, want true", doc.Attributes().Bold)
	}
}

// Event notifications: a notifier observes all four lifecycle hooks in the
// expected pairing, unless a commit callback suppresses the transaction
// pair.
type funcNotifier struct {
	beforeTransaction func()
	afterTransaction  func()
	beforeApply       func()
	afterApply        func()
}

func (f funcNotifier) BeforeTransaction(*Document, *transaction.Transaction) {
	if f.beforeTransaction != nil {
		f.beforeTransaction()
	}
}
func (f funcNotifier) AfterTransaction(*Document, *transaction.Transaction) {
	if f.afterTransaction != nil {
		f.afterTransaction()
	}
}
func (f funcNotifier) BeforeApply(*Document, delta.Ops) {
	if f.beforeApply != nil {
		f.beforeApply()
	}
}
func (f funcNotifier) AfterApply(*Document, delta.Ops) {
	if f.afterApply != nil {
		f.afterApply()
	}
}

func TestNotifierFiresBeforeAndAfterApply(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	var events []string
	doc.SetNotifier(funcNotifier{
		beforeApply: func() { events = append(events, "beforeApply") },
		afterApply:  func() { events = append(events, "afterApply") },
	})

	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hi", attrs.Attributes{})
		return false
	}, nil)

	if len(events) != 2 || events[0] != "beforeApply" || events[1] != "afterApply" {
		t.Fatalf("events = %v, want [beforeApply, afterApply]", events)
	}
}

func TestNotifierSuppressedByCallback(t *testing.T) {
	doc := New(attrs.Attributes{}, nil)
	var transactionEvents []string
	doc.SetNotifier(funcNotifier{
		beforeTransaction: func() { transactionEvents = append(transactionEvents, "before") },
		afterTransaction:  func() { transactionEvents = append(transactionEvents, "after") },
	})

	called := false
	doc.Transact(func(tr *transaction.Transaction) bool {
		tr.Insert("Hi", attrs.Attributes{})
		return false
	}, func(d *Document, tr *transaction.Transaction) {
		called = true
	})

	if !called {
		t.Fatalf("commit callback was not invoked")
	}
	if len(transactionEvents) != 0 {
		t.Fatalf("transaction events fired despite a commit callback: %v", transactionEvents)
	}
}
