package document

import "github.com/foliodoc/collabdoc/internal/delta"

// Remap translates a pre-commit offset through ops to its post-commit
// position. Retain advances the walk's cursor; Delete shifts pos back by the
// deleted count for anything past the walk's cursor, and a pos inside the
// deleted span lands on the span's start; Insert shifts pos forward for anything at
// or after the insertion point; Swap is neutral (doesn't shift anything).
//
// hasBlockAtFront nudges a result of 0 up to 1: when a paragraph was
// prepended, the cursor belongs after the synthetic block, not before it.
func Remap(ops delta.Ops, pos int, hasBlockAtFront bool) int {
	cursor := 0
	for _, op := range ops {
		switch op.Kind {
		case delta.OpRetain:
			cursor += op.Count
		case delta.OpDelete:
			if pos > cursor {
				pos -= op.Count
				if pos < cursor {
					pos = cursor
				}
			}
		case delta.OpInsert:
			l := op.Payload.Length()
			if pos >= cursor {
				pos += l
				cursor += l
			}
		case delta.OpSwap:
			// neutral: neither pos nor cursor move.
		}
		if cursor > pos {
			break
		}
	}
	if pos == 0 && hasBlockAtFront {
		return 1
	}
	return pos
}
