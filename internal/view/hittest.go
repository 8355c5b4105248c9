package view

import "github.com/toanminhbui/viral/internal/board"

// Label hit boxes use a cheap text-extent approximation rather than
// measured glyph widths; the margin absorbs the error.
const (
	HitCharWidth  float32 = 8
	HitLineHeight float32 = 16
	HitMargin     float32 = 4
)

// HitLabel finds the topmost label whose box contains the world point.
// The box is anchored at the label position, extends right by the
// approximate text width and up by one line height, padded by a small
// margin on every side. Elements are scanned newest-first so that
// overlapping labels resolve to the most recently added one.
func HitLabel(snapshot []board.Element, at board.Point) (string, bool) {
	for i := len(snapshot) - 1; i >= 0; i-- {
		e := snapshot[i]
		if e.Kind != board.KindLabel || e.Label == nil {
			continue
		}
		w := float32(len([]rune(e.Label.Text))) * HitCharWidth
		if at.X >= e.Label.X-HitMargin && at.X <= e.Label.X+w+HitMargin &&
			at.Y >= e.Label.Y-HitLineHeight-HitMargin && at.Y <= e.Label.Y+HitMargin {
			return e.ID, true
		}
	}
	return "", false
}
