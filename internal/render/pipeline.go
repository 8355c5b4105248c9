// Package render turns board elements into fyne canvas objects under
// the session's pan transform. The same per-element rules serve both
// the full pass (poll reconciliation, panning) and the incremental
// path (a single remote insert), so composed output is identical
// either way.
package render

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/view"
)

// LabelTextSize is the fixed font size for board labels; there is no
// zoom, so it never changes.
const LabelTextSize float32 = 14

// Pipeline draws elements for one session. FallbackColor and
// FallbackWidth stand in for elements persisted without their own;
// EditingID names the label currently under local edit, which the full
// pass leaves out because the live entry overlay represents it.
type Pipeline struct {
	View          *view.Transform
	FallbackColor string
	FallbackWidth float32
	EditingID     string
}

func NewPipeline(v *view.Transform) *Pipeline {
	return &Pipeline{View: v, FallbackColor: "#000000", FallbackWidth: 3}
}

// Objects builds the full draw pass over a store snapshot, in
// insertion order so later elements paint on top.
func (p *Pipeline) Objects(snapshot []board.Element) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	for _, e := range snapshot {
		if e.ID == p.EditingID && e.Kind == board.KindLabel {
			continue
		}
		objs = append(objs, p.ElementObjects(e)...)
	}
	return objs
}

// ElementObjects draws exactly one element. Invalid elements (payload
// missing or garbled on the wire) produce nothing rather than failing
// the pass.
func (p *Pipeline) ElementObjects(e board.Element) []fyne.CanvasObject {
	if !e.Valid() {
		return nil
	}
	switch e.Kind {
	case board.KindStroke:
		color := e.Stroke.Color
		if color == "" {
			color = p.FallbackColor
		}
		width := e.Stroke.Width
		if width <= 0 {
			width = p.FallbackWidth
		}
		return p.polyline(e.Stroke.Points, color, width)
	case board.KindLabel:
		color := e.Label.Color
		if color == "" {
			color = p.FallbackColor
		}
		t := canvas.NewText(e.Label.Text, ParseColor(color))
		t.TextSize = LabelTextSize
		pos := p.View.ToScreen(board.Point{X: e.Label.X, Y: e.Label.Y})
		// The anchor is the text baseline; the hit box extends up
		// from it by one line height, and so does the drawn text.
		t.Move(fyne.NewPos(pos.X, pos.Y-view.HitLineHeight))
		return []fyne.CanvasObject{t}
	}
	return nil
}

// LiveStroke draws the in-flight point buffer with the live tool
// settings, on top of everything already drawn.
func (p *Pipeline) LiveStroke(points []board.Point, color string, width float32) []fyne.CanvasObject {
	return p.polyline(points, color, width)
}

// Segment draws the single polyline segment between two world points,
// used while a draw gesture extends the buffer one point at a time.
func (p *Pipeline) Segment(from, to board.Point, color string, width float32) fyne.CanvasObject {
	l := canvas.NewLine(ParseColor(color))
	l.StrokeWidth = width
	l.Position1 = p.View.ToScreen(from)
	l.Position2 = p.View.ToScreen(to)
	return l
}

// Dot marks a single world point, so a just-started stroke is visible
// before the pointer has moved.
func (p *Pipeline) Dot(at board.Point, color string, width float32) fyne.CanvasObject {
	c := canvas.NewCircle(ParseColor(color))
	pos := p.View.ToScreen(at)
	r := width / 2
	if r < 1 {
		r = 1
	}
	c.Move(fyne.NewPos(pos.X-r, pos.Y-r))
	c.Resize(fyne.NewSize(2*r, 2*r))
	return c
}

func (p *Pipeline) polyline(points []board.Point, color string, width float32) []fyne.CanvasObject {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		// A single point is not a line; render it as a dot.
		return []fyne.CanvasObject{p.Dot(points[0], color, width)}
	}
	objs := make([]fyne.CanvasObject, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		objs = append(objs, p.Segment(points[i], points[i+1], color, width))
	}
	return objs
}
