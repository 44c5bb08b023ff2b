// Package apply implements the applier: the position-indexed splice engine
// that folds an operation list into a delta sequence. It is the core of the
// operational delta model — a single flat loop sharing cursor/index state
// across all four operation kinds, splitting entries and merging overlay
// attributes into them as the operations require. Adjacent runs are never
// merged into one entry here.
package apply

import (
	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/delta"
)

// ProcessOperations folds ops into seq and returns the resulting sequence.
// seq is not mutated; ops is copied internally since multi-step deletes
// rewrite their own remaining count as they consume entries.
func ProcessOperations(ops delta.Ops, seq delta.Sequence) delta.Sequence {
	working := make(delta.Sequence, len(seq))
	copy(working, seq)
	remaining := make(delta.Ops, len(ops))
	copy(remaining, ops)

	var cursor, i, dPos, dLength, q int
	var anchor int
	var anchorSet bool

	refresh := func() {
		if i < len(working) {
			dLength = working[i].Length()
		} else {
			dLength = 0
		}
	}
	refresh()

	for q < len(remaining) {
		op := remaining[q]
		switch op.Kind {

		case delta.OpRetain:
			if op.Attributes.IsEmpty() {
				cursor += op.Count
				q++
				anchorSet = false
				refresh()
				continue
			}
			if !anchorSet {
				anchor = cursor
				cursor += op.Count
				anchorSet = true
			}
			if i >= len(working) {
				q++
				anchorSet = false
				continue
			}
			switch {
			case anchor >= dPos+dLength:
				i++
				dPos += dLength
			case anchor > dPos:
				left, right := splitEntry(working[i], anchor-dPos)
				working = splice(working, i, 1, left, right)
				i++
				dPos = anchor
			case cursor >= dPos+dLength:
				merged := working[i]
				merged.Attributes = attrs.Merge(merged.Attributes, op.Attributes)
				working[i] = merged
				i++
				dPos += dLength
			case cursor > dPos:
				left, right := splitEntry(working[i], cursor-dPos)
				left.Attributes = attrs.Merge(left.Attributes, op.Attributes)
				working = splice(working, i, 1, left, right)
				dPos = cursor
				q++
				i++
				anchorSet = false
			default:
				q++
				i++
				anchorSet = false
			}
			refresh()

		case delta.OpInsert:
			entry := delta.Entry{Payload: op.Payload, Attributes: op.Attributes}
			L := op.Payload.Length()
			switch {
			case i >= len(working):
				working = append(working, entry)
				i++
				q++
				dPos = cursor + L
				cursor = dPos
			case cursor >= dPos+dLength:
				i++
				dPos += dLength
			case cursor == dPos:
				working = splice(working, i, 0, entry)
				i++
				q++
				dPos += L
				cursor = dPos
			case cursor > dPos && working[i].Payload.IsText():
				left, right := splitEntry(working[i], cursor-dPos)
				working = splice(working, i, 1, left, entry, right)
				i++
				q++
				dPos = cursor
			default:
				q++
			}
			refresh()

		case delta.OpSwap:
			entry := delta.Entry{Payload: op.Payload, Attributes: op.Attributes}
			L := op.Payload.Length()
			switch {
			case i >= len(working):
				working = append(working, entry)
				i++
				q++
				dPos = cursor + L
				cursor = dPos
			case cursor >= dPos+dLength:
				i++
				dPos += dLength
			case cursor == dPos:
				if working[i].Payload.IsText() {
					tail := tailOf(*working[i].Payload.Text)
					if tail != "" {
						remainder := delta.Entry{Payload: delta.NewText(tail), Attributes: working[i].Attributes}
						working = splice(working, i, 1, entry, remainder)
					} else {
						working = splice(working, i, 1, entry)
					}
				} else {
					working = splice(working, i, 1, entry)
				}
				dPos = cursor + L
				cursor = dPos
				q++
				i++
			case cursor > dPos && working[i].Payload.IsText():
				left, right := splitEntry(working[i], cursor-dPos)
				replacement := []delta.Entry{left, entry}
				if tail := tailOf(*right.Payload.Text); tail != "" {
					replacement = append(replacement, delta.Entry{Payload: delta.NewText(tail), Attributes: right.Attributes})
				}
				working = splice(working, i, 1, replacement...)
				dPos = cursor
				q++
				i++
			default:
				q++
			}
			refresh()

		case delta.OpDelete:
			n := op.Count
			switch {
			case i >= len(working):
				q++
			case cursor >= dPos+dLength:
				i++
				dPos += dLength
			case working[i].Payload.IsText() && cursor == dPos:
				text := *working[i].Payload.Text
				switch {
				case dLength > n:
					working[i] = delta.Entry{Payload: delta.NewText(text[n:]), Attributes: working[i].Attributes}
					q++
				case dLength == n:
					working = splice(working, i, 1)
					q++
				default:
					working = splice(working, i, 1)
					remaining[q].Count = n - dLength
				}
			case working[i].Payload.IsText() && cursor > dPos:
				left, right := splitEntry(working[i], cursor-dPos)
				working = splice(working, i, 1, left, right)
				dPos = cursor
				i++
			case !working[i].Payload.IsText():
				working = splice(working, i, 1)
				dPos = cursor
				if n > 1 {
					remaining[q].Count = n - 1
				} else {
					q++
				}
			default:
				q++
			}
			refresh()
		}
	}

	return working
}

// splitEntry splits a text entry's payload at byte offset at, keeping the
// entry's attributes unchanged on both halves. Only valid for text entries.
func splitEntry(e delta.Entry, at int) (delta.Entry, delta.Entry) {
	s := *e.Payload.Text
	left := delta.Entry{Payload: delta.NewText(s[:at]), Attributes: e.Attributes}
	right := delta.Entry{Payload: delta.NewText(s[at:]), Attributes: e.Attributes}
	return left, right
}

// tailOf returns s with its first byte removed, or "" if s has at most one
// byte. Swap replaces exactly one unit at the cursor; this is what remains
// of a multi-byte text run once that unit is carved out.
func tailOf(s string) string {
	if len(s) <= 1 {
		return ""
	}
	return s[1:]
}

// splice removes removeCount entries from seq starting at i and inserts the
// given entries in their place, returning a new sequence.
func splice(seq delta.Sequence, i, removeCount int, insert ...delta.Entry) delta.Sequence {
	out := make(delta.Sequence, 0, len(seq)-removeCount+len(insert))
	out = append(out, seq[:i]...)
	out = append(out, insert...)
	out = append(out, seq[i+removeCount:]...)
	return out
}
