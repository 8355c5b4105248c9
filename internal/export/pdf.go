package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/render"
)

const (
	pdfMargin = 20.0
	pdfScale  = 0.5
)

// PDF writes the board content as a single-page PDF. World coordinates
// are shifted so the top-left of the content lands at the page margin,
// then scaled down; labels keep their anchor positions.
func PDF(w io.Writer, elems []board.Element) error {
	p := gofpdf.New("L", "pt", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "", 12)

	minX, minY := contentOrigin(elems)

	tx := func(x float32) float64 { return pdfMargin + float64(x-minX)*pdfScale }
	ty := func(y float32) float64 { return pdfMargin + float64(y-minY)*pdfScale }

	for _, e := range elems {
		if !e.Valid() {
			continue
		}
		switch e.Kind {
		case board.KindStroke:
			r, g, b, _ := render.ParseColor(e.Stroke.Color).RGBA()
			p.SetDrawColor(int(r>>8), int(g>>8), int(b>>8))
			lw := float64(e.Stroke.Width) * pdfScale
			if lw < 0.5 {
				lw = 0.5
			}
			p.SetLineWidth(lw)
			pts := e.Stroke.Points
			for i := 1; i < len(pts); i++ {
				p.Line(tx(pts[i-1].X), ty(pts[i-1].Y), tx(pts[i].X), ty(pts[i].Y))
			}
		case board.KindLabel:
			r, g, b, _ := render.ParseColor(e.Label.Color).RGBA()
			p.SetTextColor(int(r>>8), int(g>>8), int(b>>8))
			p.Text(tx(e.Label.X), ty(e.Label.Y), e.Label.Text)
		}
	}
	return p.Output(w)
}

func contentOrigin(elems []board.Element) (minX, minY float32) {
	first := true
	note := func(x, y float32) {
		if first || x < minX {
			minX = x
		}
		if first || y < minY {
			minY = y
		}
		first = false
	}
	for _, e := range elems {
		if !e.Valid() {
			continue
		}
		switch e.Kind {
		case board.KindStroke:
			for _, pt := range e.Stroke.Points {
				note(pt.X, pt.Y)
			}
		case board.KindLabel:
			note(e.Label.X, e.Label.Y)
		}
	}
	return minX, minY
}
