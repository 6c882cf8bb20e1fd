package rgb

import (
	"errors"
	"fmt"
	"strings"
)

// Channel names one logical color channel.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
)

var ErrInvalidOrder = errors.New("rgb: invalid channel order")

// Order lists the logical channels in the order a strip consumes them.
type Order [3]Channel

// Wire orders found on common strips. GRB is what WS2812B expects.
var (
	GRB = Order{Green, Red, Blue}
	RGB = Order{Red, Green, Blue}
	BRG = Order{Blue, Red, Green}
	RBG = Order{Red, Blue, Green}
	GBR = Order{Green, Blue, Red}
	BGR = Order{Blue, Green, Red}
)

// ParseOrder accepts a permutation of "RGB" such as "GRB", in any case.
func ParseOrder(s string) (Order, error) {
	var o Order
	if len(s) != 3 {
		return o, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
	var seen [3]bool
	for i, r := range strings.ToUpper(s) {
		var ch Channel
		switch r {
		case 'R':
			ch = Red
		case 'G':
			ch = Green
		case 'B':
			ch = Blue
		default:
			return Order{}, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
		}
		if seen[ch] {
			return Order{}, fmt.Errorf("%w: %q repeats %c", ErrInvalidOrder, s, r)
		}
		seen[ch] = true
		o[i] = ch
	}
	return o, nil
}

// Wire returns the channel bytes of c in wire order.
func (o Order) Wire(c Color) [3]byte {
	return [3]byte{c.channel(o[0]), c.channel(o[1]), c.channel(o[2])}
}

// Color is the inverse of Wire.
func (o Order) Color(w [3]byte) Color {
	var c Color
	for i, ch := range o {
		c.set(ch, w[i])
	}
	return c
}

func (o Order) String() string {
	var sb strings.Builder
	for _, ch := range o {
		sb.WriteByte("RGB"[ch])
	}
	return sb.String()
}

func (c Color) channel(ch Channel) byte {
	switch ch {
	case Red:
		return c.R
	case Green:
		return c.G
	default:
		return c.B
	}
}

func (c *Color) set(ch Channel, v byte) {
	switch ch {
	case Red:
		c.R = v
	case Green:
		c.G = v
	default:
		c.B = v
	}
}
