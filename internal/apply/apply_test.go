package apply

import (
	"testing"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
	"github.com/foliodoc/collabdoc/internal/delta"
)

func text(s string) delta.Entry { return delta.Entry{Payload: delta.NewText(s)} }

func textA(s string, a attrs.Attributes) delta.Entry {
	return delta.Entry{Payload: delta.NewText(s), Attributes: a}
}

func block(t blocktype.BlockType) delta.Entry {
	return delta.Entry{Payload: delta.NewBlock(t)}
}

func assertSeq(t *testing.T, got, want delta.Sequence) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d\ngot:  %+v\nwant: %+v", len(got), len(want), got, want)
	}
	for idx := range want {
		if !got[idx].Payload.Equal(want[idx].Payload) {
			t.Fatalf("entry %d payload = %+v, want %+v", idx, got[idx].Payload, want[idx].Payload)
		}
		if !attrs.Equal(got[idx].Attributes, want[idx].Attributes) {
			t.Fatalf("entry %d attrs = %+v, want %+v", idx, got[idx].Attributes, want[idx].Attributes)
		}
	}
}

// Scenario 1: insert then insert-at, splitting the middle run in two.
func TestScenarioInsertThenInsertAt(t *testing.T) {
	seq := ProcessOperations(delta.Ops{delta.InsertText("Hello World", attrs.Attributes{})}, nil)
	assertSeq(t, seq, delta.Sequence{text("Hello World")})

	seq = ProcessOperations(delta.Ops{
		delta.Retain(5),
		delta.InsertText(" Today", attrs.Attributes{}),
	}, seq)
	assertSeq(t, seq, delta.Sequence{text("Hello"), text(" Today"), text(" World")})
}

// Scenario 3 (adapted to byte-length indexing): an overlay format spans
// several runs, including a mid-run split at its start, full-entry merges
// for runs it wholly covers, and leaves the final run untouched because the
// overlay's end lands exactly on its boundary.
func TestScenarioOverlayFormatAcrossRuns(t *testing.T) {
	bold := attrs.Attributes{Bold: attrs.BoolPtr(true)}
	boldUnderline := attrs.Attributes{Bold: attrs.BoolPtr(true), Underline: &attrs.LineDecoration{Bool: attrs.BoolPtr(true)}}

	seq := delta.Sequence{
		block(blocktype.Paragraph),
		text("Hello"),
		textA(" W", bold),
		textA("o", boldUnderline),
		textA("rld", bold),
	}

	got := ProcessOperations(delta.Ops{
		delta.Retain(2),
		delta.RetainFormat(7, attrs.Attributes{Bold: attrs.BoolPtr(false)}),
	}, seq)

	boldFalse := attrs.Attributes{Bold: attrs.BoolPtr(false)}
	boldFalseUnderline := attrs.Attributes{Bold: attrs.BoolPtr(false), Underline: &attrs.LineDecoration{Bool: attrs.BoolPtr(true)}}

	want := delta.Sequence{
		block(blocktype.Paragraph),
		text("H"),
		textA("ello", boldFalse),
		textA(" W", boldFalse),
		textA("o", boldFalseUnderline),
		textA("rld", bold),
	}
	assertSeq(t, got, want)
}

// Scenario 4: swap at mid-text, splitting the targeted run's first unit out
// and leaving the remainder as a new adjacent entry.
func TestScenarioSwapAtMidText(t *testing.T) {
	seq := delta.Sequence{
		block(blocktype.Blockquote),
		block(blocktype.Unordered),
		text("ello"),
		block(blocktype.Ordered),
	}

	got := ProcessOperations(delta.Ops{
		delta.Retain(2),
		delta.SwapText("blah", attrs.Attributes{}),
	}, seq)

	want := delta.Sequence{
		block(blocktype.Blockquote),
		block(blocktype.Unordered),
		text("blah"),
		text("llo"),
		block(blocktype.Ordered),
	}
	assertSeq(t, got, want)
}

// Scenario 6: convertIfNeeded swaps one block marker for another in place.
func TestScenarioConvertBlock(t *testing.T) {
	seq := delta.Sequence{block(blocktype.Blockquote)}

	got := ProcessOperations(delta.Ops{
		delta.SwapBlock(blocktype.Unordered, attrs.Attributes{}),
	}, seq)

	assertSeq(t, got, delta.Sequence{block(blocktype.Unordered)})
}

// A delete that spans more than one entry rewrites its own remaining count
// as it consumes each entry in turn.
func TestDeleteAcrossMultipleEntries(t *testing.T) {
	seq := delta.Sequence{text("Hello"), text(" World")}

	got := ProcessOperations(delta.Ops{
		delta.Retain(3),
		delta.Delete(5),
	}, seq)

	assertSeq(t, got, delta.Sequence{text("Hel"), text("rld")})
}

// A delete that removes an entire entry exactly (dLength == n) drops it
// cleanly without leaving a zero-length run behind.
func TestDeleteExactEntryLength(t *testing.T) {
	seq := delta.Sequence{text("Hello"), text(" World")}

	got := ProcessOperations(delta.Ops{
		delta.Retain(5),
		delta.Delete(6),
	}, seq)

	assertSeq(t, got, delta.Sequence{text("Hello")})
}

// Deleting a block marker removes the whole entry regardless of its
// requested count, then continues deleting into the next entry with the
// remaining count.
func TestDeleteSpanningBlock(t *testing.T) {
	seq := delta.Sequence{block(blocktype.Paragraph), text("Hello")}

	got := ProcessOperations(delta.Ops{delta.Delete(3)}, seq)

	assertSeq(t, got, delta.Sequence{text("llo")})
}

// Applying an empty op list is a no-op: the sequence is unchanged.
func TestNoOpCommit(t *testing.T) {
	seq := delta.Sequence{text("Hello")}
	got := ProcessOperations(nil, seq)
	assertSeq(t, got, seq)
}

// Out-of-range positions (retain or delete reaching past the end of the
// document) fall through the loop silently: the op list still consumes,
// but produces no mutation beyond what existed.
func TestOutOfRangeRetainIsSilent(t *testing.T) {
	seq := delta.Sequence{text("Hi")}
	got := ProcessOperations(delta.Ops{delta.Retain(50)}, seq)
	assertSeq(t, got, seq)
}
