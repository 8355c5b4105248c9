package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/toanminhbui/viral/internal/render"
)

// Palette offered in the toolbar; values are what gets persisted in
// element payloads.
var paletteHex = []string{
	"#000000", // black
	"#ff0000", // red
	"#00aa00", // green
	"#0000ff", // blue
	"#ff9900", // orange
}

// --- Custom widget for color swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// NewToolbar builds the tool strip: mode selection, color palette and
// stroke width. It only configures the board widget; all drawing logic
// stays in BoardWidget.
func NewToolbar(b *BoardWidget) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			b.SetMode(ModeDraw)
		}), // Pen
		widget.NewToolbarAction(theme.DocumentIcon(), func() {
			b.SetMode(ModeText)
		}), // Text
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), func() {
			b.SetMode(ModePan)
		}), // Pan
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.HomeIcon(), func() {
			b.ResetPan()
		}), // Recenter
	)

	colorBox := container.NewHBox()
	for _, hex := range paletteHex {
		colorBox.Add(newColorSwatch(hex, b.SetColor))
	}

	widthSlider := widget.NewSlider(1.0, 20.0)
	widthSlider.SetValue(3.0)
	widthSlider.OnChanged = func(val float64) {
		b.SetStrokeWidth(float32(val))
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), widthSlider)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderBox,
		layout.NewSpacer(),
	)
}
