package export

import (
	"bytes"
	"testing"

	"github.com/toanminhbui/viral/internal/board"
)

func TestPDFWritesDocument(t *testing.T) {
	elems := []board.Element{
		{
			ID:   "s-1",
			Kind: board.KindStroke,
			Stroke: &board.StrokePayload{
				Points: []board.Point{{X: -50, Y: -50}, {X: 0, Y: 0}, {X: 100, Y: 40}},
				Color:  "#ff0000",
				Width:  3,
			},
		},
		{
			ID:    "l-1",
			Kind:  board.KindLabel,
			Label: &board.LabelPayload{Text: "hello", X: 10, Y: 10, Color: "#0000ff"},
		},
		{ID: "bad", Kind: board.KindStroke}, // malformed, must be skipped
	}

	var buf bytes.Buffer
	if err := PDF(&buf, elems); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}

func TestPDFEmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, nil); err != nil {
		t.Fatalf("PDF on empty board: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}
