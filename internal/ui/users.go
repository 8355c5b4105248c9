package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// UserPanel shows everyone who has contributed to the board this
// session, and who is actively drawing right now. Purely presentational;
// the sync engine feeds it through SetUsers.
type UserPanel struct {
	box    *fyne.Container
	known  *widget.Label
	active *widget.Label
}

func NewUserPanel() *UserPanel {
	p := &UserPanel{
		known:  widget.NewLabel("nobody yet"),
		active: widget.NewLabel("-"),
	}
	p.known.Wrapping = fyne.TextWrapWord
	p.active.Wrapping = fyne.TextWrapWord
	p.box = container.NewVBox(
		widget.NewLabelWithStyle("On this board", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.known,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Drawing now", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.active,
	)
	return p
}

func (p *UserPanel) Object() fyne.CanvasObject {
	return p.box
}

// SetUsers updates both lists. Call from the UI thread.
func (p *UserPanel) SetUsers(known, active []string) {
	if len(known) == 0 {
		p.known.SetText("nobody yet")
	} else {
		p.known.SetText(fmt.Sprintf("%s (%d)", strings.Join(known, ", "), len(known)))
	}
	if len(active) == 0 {
		p.active.SetText("-")
	} else {
		p.active.SetText(strings.Join(active, ", "))
	}
}
