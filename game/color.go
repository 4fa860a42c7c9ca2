package game

import "strings"

// Color identifies a stone color. None marks an empty point.
type Color int8

const (
	None Color = iota
	Black
	White
)

func (c Color) Other() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return None
}

func (c Color) String() string {
	switch c {
	case Black:
		return "b"
	case White:
		return "w"
	}
	return "none"
}

// ParseColor accepts the usual one-letter and full-word spellings.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "b", "black":
		return Black, true
	case "w", "white":
		return White, true
	}
	return None, false
}
