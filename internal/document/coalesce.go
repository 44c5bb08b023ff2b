package document

import (
	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/delta"
)

// MinimizeDelta merges adjacent text entries with structurally equal
// attributes into a single entry. The applier deliberately leaves these
// unmerged after a commit (§4.4/§9); this is the optional separate pass
// downstream renderers or serializers may run when they want a minimal
// representation. It is never called from Apply or Transact.
func MinimizeDelta(seq delta.Sequence) delta.Sequence {
	if len(seq) == 0 {
		return seq
	}
	out := make(delta.Sequence, 0, len(seq))
	out = append(out, seq[0])
	for _, e := range seq[1:] {
		last := &out[len(out)-1]
		if last.Payload.IsText() && e.Payload.IsText() && attrs.Equal(last.Attributes, e.Attributes) {
			merged := *last.Payload.Text + *e.Payload.Text
			last.Payload = delta.NewText(merged)
			continue
		}
		out = append(out, e)
	}
	return out
}
