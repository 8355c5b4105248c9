package ui

import (
	"image/color"
	"math"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/render"
	"github.com/toanminhbui/viral/internal/view"
)

// Mode is the tool selected in the toolbar; it gates which pointer
// transitions are legal.
type Mode int

const (
	ModeDraw Mode = iota
	ModeText
	ModePan
)

type phase int

const (
	phaseIdle phase = iota
	phaseDrawing
	phasePanning
	phaseEditing
)

// A pan gesture that moved less than this many pixels counts as a
// click and is hit-tested against labels.
const clickThreshold = 5

// BoardWidget is the drawing surface. It owns the interaction state
// machine: pointer and key events mutate the element store, drive the
// render pipeline and hand fresh elements to the sync layer through
// the On* callbacks.
type BoardWidget struct {
	widget.BaseWidget

	store *board.Store
	view  *view.Transform
	pipe  *render.Pipeline

	site   string
	author string

	mode        Mode
	toolColor   string
	strokeWidth float32

	phase   phase
	buffer  []board.Point // in-flight stroke, world coordinates
	panDown fyne.Position

	editID     string
	editAnchor board.Point
	entry      *overlayEntry

	mu       sync.RWMutex
	baseObjs []fyne.CanvasObject // committed elements
	liveObjs []fyne.CanvasObject // in-flight stroke segments

	// OnNewElement fires when a local gesture created an element; the
	// store already holds it optimistically.
	OnNewElement func(board.Element)
	// OnUpdateLabel fires after an existing label's text was edited.
	OnUpdateLabel func(board.Element)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(store *board.Store) *BoardWidget {
	tr := view.NewTransform()
	b := &BoardWidget{
		store:       store,
		view:        tr,
		pipe:        render.NewPipeline(tr),
		site:        board.NewSite(),
		mode:        ModeDraw,
		toolColor:   "#000000",
		strokeWidth: 3,
	}
	b.entry = newOverlayEntry(b.commitEdit, b.cancelEdit)
	b.entry.Hide()
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) SetAuthor(name string) { b.author = name }
func (b *BoardWidget) Author() string        { return b.author }

// SetMode switches the active tool. Switching away from an in-progress
// text edit commits it first.
func (b *BoardWidget) SetMode(m Mode) {
	if b.phase == phaseEditing {
		b.commitEdit()
	}
	b.mode = m
}

func (b *BoardWidget) Mode() Mode { return b.mode }

func (b *BoardWidget) SetColor(hex string) {
	b.toolColor = hex
	b.pipe.FallbackColor = hex
}

func (b *BoardWidget) SetStrokeWidth(w float32) {
	b.strokeWidth = w
	b.pipe.FallbackWidth = w
}

// ResetPan recenters the view on the default offset.
func (b *BoardWidget) ResetPan() {
	b.view.ResetPan()
	b.FullRedraw()
}

// FullRedraw rebuilds every canvas object from the store snapshot
// under the current pan. Used after poll reconciliation and while
// panning; the per-element path handles everything else.
func (b *BoardWidget) FullRedraw() {
	objs := b.pipe.Objects(b.store.Snapshot())
	// A reconciliation can land mid-gesture; the in-flight buffer is
	// rebuilt on top so the live stroke survives the pass.
	var live []fyne.CanvasObject
	if b.phase == phaseDrawing && len(b.buffer) > 0 {
		live = b.pipe.LiveStroke(b.buffer, b.toolColor, b.strokeWidth)
	}
	b.mu.Lock()
	b.baseObjs = objs
	b.liveObjs = live
	b.mu.Unlock()
	b.Refresh()
}

// ApplyRemote draws one merged remote element on top of the existing
// surface without touching anything already drawn.
func (b *BoardWidget) ApplyRemote(e board.Element) {
	objs := b.pipe.ElementObjects(e)
	b.mu.Lock()
	b.baseObjs = append(b.baseObjs, objs...)
	b.mu.Unlock()
	b.Refresh()
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if b.phase == phaseEditing {
		// A click outside the overlay is a focus loss: commit.
		b.commitEdit()
	}
	if b.phase != phaseIdle {
		return
	}
	switch b.mode {
	case ModeDraw:
		w := b.view.ToWorld(e.Position)
		b.phase = phaseDrawing
		b.buffer = []board.Point{w}
		b.mu.Lock()
		b.liveObjs = []fyne.CanvasObject{b.pipe.Dot(w, b.toolColor, b.strokeWidth)}
		b.mu.Unlock()
		b.Refresh()
	case ModePan:
		b.phase = phasePanning
		b.panDown = e.Position
	case ModeText:
		b.startEdit("", "", b.view.ToWorld(e.Position))
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	switch b.phase {
	case phaseDrawing:
		w := b.view.ToWorld(e.Position)
		prev := b.buffer[len(b.buffer)-1]
		b.buffer = append(b.buffer, w)
		seg := b.pipe.Segment(prev, w, b.toolColor, b.strokeWidth)
		b.mu.Lock()
		b.liveObjs = append(b.liveObjs, seg)
		b.mu.Unlock()
		b.Refresh()
	case phasePanning:
		// Every element moves on screen, so panning is a full pass.
		b.view.PanBy(e.Dragged.DX, e.Dragged.DY)
		b.FullRedraw()
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	switch b.phase {
	case phaseDrawing:
		b.finishStroke()
	case phasePanning:
		b.phase = phaseIdle
		dx := float64(e.Position.X - b.panDown.X)
		dy := float64(e.Position.Y - b.panDown.Y)
		if math.Hypot(dx, dy) < clickThreshold {
			// A click, not a drag: maybe the user tapped a label.
			w := b.view.ToWorld(e.Position)
			if id, ok := view.HitLabel(b.store.Snapshot(), w); ok {
				el, _ := b.store.Get(id)
				b.startEdit(id, el.Label.Text, board.Point{X: el.Label.X, Y: el.Label.Y})
			}
		}
	}
}

func (b *BoardWidget) finishStroke() {
	b.phase = phaseIdle
	if len(b.buffer) == 0 {
		return
	}
	el := board.NewStroke(b.site, b.author, b.buffer, b.toolColor, b.strokeWidth)
	b.buffer = nil
	if err := b.store.Append(el); err != nil {
		// Ids are minted locally; a collision would be a bug.
		return
	}
	objs := b.pipe.ElementObjects(el)
	b.mu.Lock()
	b.liveObjs = nil
	b.baseObjs = append(b.baseObjs, objs...)
	b.mu.Unlock()
	b.Refresh()
	if b.OnNewElement != nil {
		b.OnNewElement(el)
	}
}

// startEdit opens the live input overlay, either over an existing
// label (id set, prefilled) or at a fresh anchor for a new one.
func (b *BoardWidget) startEdit(id, prefill string, anchor board.Point) {
	b.phase = phaseEditing
	b.editID = id
	b.editAnchor = anchor
	b.pipe.EditingID = id

	pos := b.view.ToScreen(anchor)
	b.entry.SetText(prefill)
	b.entry.Move(fyne.NewPos(pos.X, pos.Y-view.HitLineHeight-4))
	b.entry.Resize(fyne.NewSize(180, 36))
	b.entry.Show()
	// The edited label leaves the batch pass; the overlay stands in
	// for it until commit or cancel.
	b.FullRedraw()
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(b); c != nil {
			c.Focus(b.entry)
		}
	}
}

func (b *BoardWidget) commitEdit() {
	if b.phase != phaseEditing {
		return
	}
	text := strings.TrimSpace(b.entry.Text)
	id := b.editID
	anchor := b.editAnchor
	b.closeOverlay()

	if text == "" {
		// Nothing to commit; a prefilled label reappears unchanged.
		b.FullRedraw()
		return
	}
	if id != "" {
		if err := b.store.UpdateLabelText(id, text, anchor); err != nil {
			// The label vanished under us; drop the edit.
			b.FullRedraw()
			return
		}
		b.FullRedraw()
		if el, ok := b.store.Get(id); ok && b.OnUpdateLabel != nil {
			b.OnUpdateLabel(el)
		}
		return
	}
	el := board.NewLabel(b.site, b.author, text, anchor, b.toolColor)
	if err := b.store.Append(el); err != nil {
		b.FullRedraw()
		return
	}
	objs := b.pipe.ElementObjects(el)
	b.mu.Lock()
	b.baseObjs = append(b.baseObjs, objs...)
	b.mu.Unlock()
	b.Refresh()
	if b.OnNewElement != nil {
		b.OnNewElement(el)
	}
}

func (b *BoardWidget) cancelEdit() {
	if b.phase != phaseEditing {
		return
	}
	b.closeOverlay()
	b.FullRedraw()
}

func (b *BoardWidget) closeOverlay() {
	b.phase = phaseIdle
	b.editID = ""
	b.pipe.EditingID = ""
	b.entry.Hide()
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	// Wheel and trackpad scrolling pan the view; there is no zoom.
	b.view.PanBy(e.Scrolled.DX, e.Scrolled.DY)
	b.FullRedraw()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}
func (b *BoardWidget) DragEnd()                       {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	return r
}

type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	b := r.board
	b.mu.RLock()
	defer b.mu.RUnlock()
	objs := make([]fyne.CanvasObject, 0, len(b.baseObjs)+len(b.liveObjs)+2)
	objs = append(objs, r.background)
	objs = append(objs, b.baseObjs...)
	objs = append(objs, b.liveObjs...)
	objs = append(objs, b.entry)
	return objs
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Destroy() {}

// overlayEntry is the live text input shown while a label is being
// created or edited. Enter and focus loss commit; Escape discards.
type overlayEntry struct {
	widget.Entry
	onCommit func()
	onCancel func()
}

func newOverlayEntry(onCommit, onCancel func()) *overlayEntry {
	e := &overlayEntry{onCommit: onCommit, onCancel: onCancel}
	e.ExtendBaseWidget(e)
	return e
}

func (e *overlayEntry) TypedKey(k *fyne.KeyEvent) {
	switch k.Name {
	case fyne.KeyEscape:
		e.onCancel()
	case fyne.KeyReturn, fyne.KeyEnter:
		e.onCommit()
	default:
		e.Entry.TypedKey(k)
	}
}

func (e *overlayEntry) FocusLost() {
	e.Entry.FocusLost()
	// commitEdit is a no-op if the edit already ended.
	e.onCommit()
}
