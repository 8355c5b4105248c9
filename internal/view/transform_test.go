package view

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"

	"github.com/toanminhbui/viral/internal/board"
)

func TestToWorldToScreenInverse(t *testing.T) {
	tr := NewTransform()
	tr.PanBy(17.5, -33.25)

	screens := []fyne.Position{
		fyne.NewPos(0, 0),
		fyne.NewPos(123.5, 456.25),
		fyne.NewPos(-10, 9999),
	}
	for _, s := range screens {
		back := tr.ToScreen(tr.ToWorld(s))
		if math.Abs(float64(back.X-s.X)) > 1e-4 || math.Abs(float64(back.Y-s.Y)) > 1e-4 {
			t.Errorf("round trip of %v gave %v", s, back)
		}
	}
}

func TestPanByAccumulates(t *testing.T) {
	tr := NewTransform()
	tr.PanBy(20, -5)
	tr.PanBy(20, -5)

	got := tr.Pan()
	if got.X != DefaultPanX+40 || got.Y != DefaultPanY-10 {
		t.Errorf("pan = %v, want (%v, %v)", got, DefaultPanX+40, DefaultPanY-10)
	}

	tr.ResetPan()
	if tr.Pan() != fyne.NewPos(DefaultPanX, DefaultPanY) {
		t.Errorf("ResetPan gave %v", tr.Pan())
	}
}

func TestToWorldSubtractsPan(t *testing.T) {
	tr := NewTransform()
	w := tr.ToWorld(fyne.NewPos(DefaultPanX, DefaultPanY))
	if w != (board.Point{X: 0, Y: 0}) {
		t.Errorf("screen point at pan offset should map to world origin, got %v", w)
	}
}
