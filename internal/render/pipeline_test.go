package render

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/canvas"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/view"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(view.NewTransform())
}

func TestStrokeTwoPointsOneLine(t *testing.T) {
	p := newTestPipeline()
	e := board.Element{
		ID:   "s-1",
		Kind: board.KindStroke,
		Stroke: &board.StrokePayload{
			Points: []board.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
			Color:  "#ff0000",
			Width:  3,
		},
	}

	objs := p.Objects([]board.Element{e})
	if len(objs) != 1 {
		t.Fatalf("got %d objects, want exactly 1 line segment", len(objs))
	}
	line, ok := objs[0].(*canvas.Line)
	if !ok {
		t.Fatalf("object is %T, want *canvas.Line", objs[0])
	}
	if line.StrokeWidth != 3 {
		t.Errorf("stroke width = %v, want 3", line.StrokeWidth)
	}
	if line.StrokeColor != (color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("stroke color = %v, want red", line.StrokeColor)
	}
	want1 := p.View.ToScreen(board.Point{X: 0, Y: 0})
	want2 := p.View.ToScreen(board.Point{X: 10, Y: 10})
	if line.Position1 != want1 || line.Position2 != want2 {
		t.Errorf("segment (%v -> %v), want (%v -> %v)", line.Position1, line.Position2, want1, want2)
	}
}

func TestSinglePointStrokeIsDot(t *testing.T) {
	p := newTestPipeline()
	e := board.Element{
		ID:     "s-1",
		Kind:   board.KindStroke,
		Stroke: &board.StrokePayload{Points: []board.Point{{X: 5, Y: 5}}, Color: "#00ff00", Width: 4},
	}
	objs := p.ElementObjects(e)
	if len(objs) != 1 {
		t.Fatalf("got %d objects, want 1", len(objs))
	}
	if _, ok := objs[0].(*canvas.Circle); !ok {
		t.Fatalf("single-point stroke rendered as %T, want *canvas.Circle", objs[0])
	}
}

func TestLabelRendersAsText(t *testing.T) {
	p := newTestPipeline()
	e := board.Element{
		ID:    "l-1",
		Kind:  board.KindLabel,
		Label: &board.LabelPayload{Text: "hi there", X: 30, Y: 40, Color: "#0000ff"},
	}
	objs := p.ElementObjects(e)
	if len(objs) != 1 {
		t.Fatalf("got %d objects, want 1", len(objs))
	}
	txt, ok := objs[0].(*canvas.Text)
	if !ok {
		t.Fatalf("object is %T, want *canvas.Text", objs[0])
	}
	if txt.Text != "hi there" {
		t.Errorf("text = %q", txt.Text)
	}
	if txt.TextSize != LabelTextSize {
		t.Errorf("text size = %v, want %v", txt.TextSize, LabelTextSize)
	}
	anchor := p.View.ToScreen(board.Point{X: 30, Y: 40})
	if txt.Position().X != anchor.X || txt.Position().Y != anchor.Y-view.HitLineHeight {
		t.Errorf("text at %v, anchor %v", txt.Position(), anchor)
	}
}

func TestFullPassSkipsEditingLabel(t *testing.T) {
	p := newTestPipeline()
	p.EditingID = "l-edit"
	snap := []board.Element{
		{ID: "l-edit", Kind: board.KindLabel, Label: &board.LabelPayload{Text: "editing"}},
		{ID: "l-keep", Kind: board.KindLabel, Label: &board.LabelPayload{Text: "kept"}},
	}
	objs := p.Objects(snap)
	if len(objs) != 1 {
		t.Fatalf("got %d objects, want 1 (edited label excluded)", len(objs))
	}
	if txt := objs[0].(*canvas.Text); txt.Text != "kept" {
		t.Errorf("surviving text = %q", txt.Text)
	}
}

func TestInvalidElementsProduceNothing(t *testing.T) {
	p := newTestPipeline()
	snap := []board.Element{
		{ID: "bad-1", Kind: board.KindStroke},                                       // payload never decoded
		{ID: "bad-2", Kind: board.KindStroke, Stroke: &board.StrokePayload{}},       // no points
		{ID: "bad-3", Kind: "sticker"},                                              // unknown kind
		{ID: "ok", Kind: board.KindLabel, Label: &board.LabelPayload{Text: "fine"}}, // control
	}
	objs := p.Objects(snap)
	if len(objs) != 1 {
		t.Fatalf("malformed elements leaked into the pass: %d objects", len(objs))
	}
}

func TestFallbackColorAndWidth(t *testing.T) {
	p := newTestPipeline()
	p.FallbackColor = "#00ff00"
	p.FallbackWidth = 7
	e := board.Element{
		ID:     "s-1",
		Kind:   board.KindStroke,
		Stroke: &board.StrokePayload{Points: []board.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
	}
	line := p.ElementObjects(e)[0].(*canvas.Line)
	if line.StrokeWidth != 7 {
		t.Errorf("width = %v, want fallback 7", line.StrokeWidth)
	}
	if line.StrokeColor != (color.NRGBA{G: 0xff, A: 0xff}) {
		t.Errorf("color = %v, want fallback green", line.StrokeColor)
	}
}

func TestFullAndIncrementalAgreeUnderPan(t *testing.T) {
	mkPipe := func() *Pipeline {
		p := NewPipeline(view.NewTransform())
		p.View.PanBy(-120, 65)
		return p
	}
	e := board.Element{
		ID:     "s-1",
		Kind:   board.KindStroke,
		Stroke: &board.StrokePayload{Points: []board.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, Color: "#ff0000", Width: 2},
	}

	full := mkPipe().Objects([]board.Element{e})
	incr := mkPipe().ElementObjects(e)
	if len(full) != len(incr) {
		t.Fatalf("full pass %d objects, incremental %d", len(full), len(incr))
	}
	for i := range full {
		fl := full[i].(*canvas.Line)
		il := incr[i].(*canvas.Line)
		if fl.Position1 != il.Position1 || fl.Position2 != il.Position2 {
			t.Errorf("segment %d differs: full (%v->%v) incremental (%v->%v)",
				i, fl.Position1, fl.Position2, il.Position1, il.Position2)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.Color
	}{
		{"#ff0000", color.NRGBA{R: 0xff, A: 0xff}},
		{"#0f0", color.NRGBA{G: 0xff, A: 0xff}},
		{" #0000ff ", color.NRGBA{B: 0xff, A: 0xff}},
		{"", color.Black},
		{"banana", color.Black},
		{"#12345", color.Black},
	}
	for _, tc := range cases {
		if got := ParseColor(tc.in); got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
