package piece

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Color is an RGB triple. The zero value is black.
type Color struct {
	R, G, B uint8
}

// White is the color used when a caller does not pick one.
var White = Color{255, 255, 255}

// RandomColor draws each channel uniformly from [50, 250] so pieces are never
// too dark against the well background nor pure white.
func RandomColor(rng *rand.Rand) Color {
	return Color{
		R: uint8(50 + rng.Intn(201)),
		G: uint8(50 + rng.Intn(201)),
		B: uint8(50 + rng.Intn(201)),
	}
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a #rrggbb string.
func ParseHex(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return c, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
