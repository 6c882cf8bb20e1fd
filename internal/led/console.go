package led

import (
	"errors"
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-spiled/internal/rgb"
	"github.com/coreman2200/funtimes-spiled/internal/wire"
)

var errFrameLength = errors.New("led: frame is not a whole number of encoded channels")

// Console is a bus that decodes each frame back into colors and draws it as
// a single row on the terminal. It stands in for the SPI port when none is
// available.
type Console struct {
	drawer display.Drawer
	order  rgb.Order
	last   []rgb.Color
}

// NewConsole prints numLEDs pixels to stdout.
func NewConsole(numLEDs int, order rgb.Order) *Console {
	return NewConsoleDrawer(screen.New(numLEDs), order)
}

// NewConsoleDrawer draws to d instead of the terminal.
func NewConsoleDrawer(d display.Drawer, order rgb.Order) *Console {
	return &Console{drawer: d, order: order}
}

// Tx implements panel.Bus.
func (c *Console) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("led: console bus cannot read")
	}
	colors, err := DecodeFrame(w, c.order)
	if err != nil {
		return err
	}
	c.last = colors
	im := image.NewNRGBA(image.Rect(0, 0, len(colors), 1))
	for x, col := range colors {
		im.SetNRGBA(x, 0, col.ToNRGBA())
	}
	return c.drawer.Draw(c.drawer.Bounds(), im, image.Point{})
}

// Last returns the colors of the most recent frame.
func (c *Console) Last() []rgb.Color {
	return c.last
}

func (c *Console) Close() error {
	return c.drawer.Halt()
}

// DecodeFrame turns an encoded frame back into one color per LED.
func DecodeFrame(frame []byte, order rgb.Order) ([]rgb.Color, error) {
	const perLED = 3 * wire.SymbolsPerByte
	if len(frame)%perLED != 0 {
		return nil, fmt.Errorf("%w: %d bytes", errFrameLength, len(frame))
	}
	out := make([]rgb.Color, 0, len(frame)/perLED)
	for i := 0; i < len(frame); i += perLED {
		var w [3]byte
		for ch := 0; ch < 3; ch++ {
			off := i + ch*wire.SymbolsPerByte
			b, err := wire.DecodeChannel([wire.SymbolsPerByte]byte(frame[off : off+wire.SymbolsPerByte]))
			if err != nil {
				return nil, fmt.Errorf("led %d channel %d: %w", i/perLED, ch, err)
			}
			w[ch] = b
		}
		out = append(out, order.Color(w))
	}
	return out, nil
}
