// Package view maps between screen positions on the fyne canvas and
// world coordinates on the shared plane. The only supported transform
// is translation by a pan offset; scale is fixed at 1.
package view

import (
	"fyne.io/fyne/v2"

	"github.com/toanminhbui/viral/internal/board"
)

// Default pan offset, chosen so the world origin starts away from the
// toolbar edge rather than in the window corner.
const (
	DefaultPanX float32 = 400
	DefaultPanY float32 = 300
)

// Transform holds the mutable pan offset for one session. It is not
// persisted and is touched only from the event thread.
type Transform struct {
	pan fyne.Position
}

func NewTransform() *Transform {
	return &Transform{pan: fyne.NewPos(DefaultPanX, DefaultPanY)}
}

// ToWorld converts a pointer position on the widget to world coordinates.
func (t *Transform) ToWorld(screen fyne.Position) board.Point {
	return board.Point{X: screen.X - t.pan.X, Y: screen.Y - t.pan.Y}
}

// ToScreen converts a world point back to a widget position.
func (t *Transform) ToScreen(p board.Point) fyne.Position {
	return fyne.NewPos(p.X+t.pan.X, p.Y+t.pan.Y)
}

// PanBy shifts the view by a pointer delta.
func (t *Transform) PanBy(dx, dy float32) {
	t.pan.X += dx
	t.pan.Y += dy
}

// ResetPan restores the default offset.
func (t *Transform) ResetPan() {
	t.pan = fyne.NewPos(DefaultPanX, DefaultPanY)
}

// Pan returns the current offset.
func (t *Transform) Pan() fyne.Position {
	return t.pan
}
