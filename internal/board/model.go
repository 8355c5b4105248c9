package board

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the two element variants. The wire names ("draw",
// "text") are what the remote store persists in its type column.
type Kind string

const (
	KindStroke Kind = "draw"
	KindLabel  Kind = "text"
)

// Point is a position in world coordinates (pan-independent).
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// StrokePayload is the variant payload for a freehand polyline.
type StrokePayload struct {
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
	Width  float32 `json:"width,omitempty"`
}

// LabelPayload is the variant payload for text placed at a point.
type LabelPayload struct {
	Text  string  `json:"text"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Color string  `json:"color,omitempty"`
}

// Element is one unit of board content. Exactly one of Stroke/Label is
// set, matching Kind. Elements are immutable once created, except that
// a Label's payload may be rewritten through Store.UpdateLabelText.
type Element struct {
	ID        string
	Kind      Kind
	Author    string
	Timestamp int64
	Stroke    *StrokePayload
	Label     *LabelPayload
}

// Valid reports whether the element carries a usable payload for its
// kind. Remote records with missing or garbled payloads decode into
// invalid elements, which the renderer skips instead of failing the
// whole pass.
func (e Element) Valid() bool {
	switch e.Kind {
	case KindStroke:
		return e.Stroke != nil && len(e.Stroke.Points) >= 1
	case KindLabel:
		return e.Label != nil
	}
	return false
}

// NewStroke builds a stroke element from an in-flight point buffer.
func NewStroke(site, author string, points []Point, color string, width float32) Element {
	pts := make([]Point, len(points))
	copy(pts, points)
	return Element{
		ID:        NewID(site),
		Kind:      KindStroke,
		Author:    author,
		Timestamp: Now(),
		Stroke:    &StrokePayload{Points: pts, Color: color, Width: width},
	}
}

// NewLabel builds a text element anchored at a world position.
func NewLabel(site, author, text string, at Point, color string) Element {
	return Element{
		ID:        NewID(site),
		Kind:      KindLabel,
		Author:    author,
		Timestamp: Now(),
		Label:     &LabelPayload{Text: text, X: at.X, Y: at.Y, Color: color},
	}
}

// Record is the wire/store shape of an element: a flat envelope with a
// kind-specific JSON payload.
type Record struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Author    string          `json:"author"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Record encodes the element for persistence.
func (e Element) Record() (Record, error) {
	var payload any
	switch e.Kind {
	case KindStroke:
		payload = e.Stroke
	case KindLabel:
		payload = e.Label
	default:
		return Record{}, fmt.Errorf("unknown element kind %q", e.Kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", e.Kind, err)
	}
	return Record{
		ID:        e.ID,
		Type:      string(e.Kind),
		Author:    e.Author,
		Timestamp: e.Timestamp,
		Payload:   raw,
	}, nil
}

// FromRecord decodes a persisted record. Decoding is tolerant: a
// payload that does not parse, or a type we do not know, yields an
// element with no payload set. Valid() reports false for those and the
// renderer leaves them out.
func FromRecord(r Record) Element {
	e := Element{
		ID:        r.ID,
		Kind:      Kind(r.Type),
		Author:    r.Author,
		Timestamp: r.Timestamp,
	}
	switch e.Kind {
	case KindStroke:
		var p StrokePayload
		if err := json.Unmarshal(r.Payload, &p); err == nil && len(p.Points) > 0 {
			e.Stroke = &p
		}
	case KindLabel:
		var p LabelPayload
		if err := json.Unmarshal(r.Payload, &p); err == nil {
			e.Label = &p
		}
	}
	return e
}

// FromRecords decodes a full collection, preserving order.
func FromRecords(rs []Record) []Element {
	out := make([]Element, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromRecord(r))
	}
	return out
}
