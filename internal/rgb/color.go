// Package rgb holds the logical color value accepted by the panel and the
// mapping from logical channel order to the order a strip expects on the wire.
package rgb

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

var ErrInvalidColorFormat = errors.New("rgb: invalid color format")

// Color is a logical (red, green, blue) triple.
type Color struct {
	R, G, B uint8
}

// FromUint32 unpacks a 0xRRGGBB value. Bits above the blue, green and red
// bytes are ignored.
func FromUint32(c uint32) Color {
	return Color{
		R: getcolor(c, RED_OFFSET),
		G: getcolor(c, GREEN_OFFSET),
		B: getcolor(c, BLUE_OFFSET),
	}
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// ParseHex parses "RRGGBB". Case is ignored; a leading '#' is not accepted.
func ParseHex(s string) (Color, error) {
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: %q must be 6 hex digits", ErrInvalidColorFormat, s)
	}
	var b [3]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorFormat, s, err)
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}

// ParseHexes parses every code or none of them.
func ParseHexes(codes ...string) ([]Color, error) {
	out := make([]Color, 0, len(codes))
	for i, s := range codes {
		c, err := ParseHex(s)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Hex formats the color as lower case "rrggbb".
func (c Color) Hex() string {
	return hex.EncodeToString([]byte{c.R, c.G, c.B})
}

func (c Color) String() string {
	return c.Hex()
}

// ToNRGBA returns the opaque image/color equivalent.
func (c Color) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
