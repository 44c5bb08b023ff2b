// Package grapheme exposes the pure `graphemes(s) -> []string` segmentation
// function the core operation algebra treats as an external black box: the
// transaction builder's grapheme-aware backspace and Document.FetchAt are
// its callers.
package grapheme

import "github.com/rivo/uniseg"

// Split returns the user-perceived characters of s, in order. Each returned
// string is one grapheme cluster and may span multiple bytes or multiple
// Unicode code points (e.g. a ZWJ emoji sequence).
func Split(s string) []string {
	if s == "" {
		return nil
	}
	g := uniseg.NewGraphemes(s)
	out := make([]string, 0, len(s))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// LastLen returns the byte length of the last grapheme cluster in s, or 0 if
// s is empty. This is exactly what grapheme-aware backspace needs: how many
// bytes to delete for one user-perceived character at the end of a run.
func LastLen(s string) int {
	clusters := Split(s)
	if len(clusters) == 0 {
		return 0
	}
	return len(clusters[len(clusters)-1])
}
