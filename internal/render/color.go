package render

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseColor turns a CSS-style hex string (#rgb or #rrggbb) into a
// color. Anything unparsable falls back to black, matching how the
// board treats elements persisted without a usable color.
func ParseColor(s string) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}
