package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/funtimes-spiled/internal/panel"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
)

// NRZFreq is the only clock nrzled accepts on SPI. It encodes each bit in 4
// bus bits rather than 3, so the strip's native rate does not apply.
const NRZFreq = 2500 * physic.KiloHertz

// NRZ drives the strip through periph's own nrzled encoder. It is kept as a
// reference output to compare against the panel encoder on real hardware.
type NRZ struct {
	d       *nrzled.Dev
	port    spi.Port
	numLEDs int
	buf     []byte
}

// NewNRZ connects p through nrzled.
func NewNRZ(p spi.Port, numLEDs int) (*NRZ, error) {
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: numLEDs,
		Channels:  3,
		Freq:      NRZFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{d: d, port: p, numLEDs: numLEDs}, nil
}

func (n *NRZ) NumLEDs() int { return n.numLEDs }

// SetPixels writes colors in logical RGB order; nrzled reorders to GRB.
// Colors past NumLEDs are dropped.
func (n *NRZ) SetPixels(colors ...rgb.Color) error {
	if len(colors) > n.numLEDs {
		colors = colors[:n.numLEDs]
	}
	n.buf = n.buf[:0]
	for _, c := range colors {
		n.buf = append(n.buf, c.R, c.G, c.B)
	}
	if _, err := n.d.Write(n.buf); err != nil {
		return &panel.BusTransferError{Bytes: n.frameBytes(), Err: err}
	}
	return nil
}

// ClearAll turns every LED off.
func (n *NRZ) ClearAll() error {
	if err := n.d.Halt(); err != nil {
		return &panel.BusTransferError{Bytes: n.frameBytes(), Err: err}
	}
	return nil
}

// frameBytes is the size of every nrzled transfer: 4 bytes per channel plus
// a 3 byte latch.
func (n *NRZ) frameBytes() int {
	return 4*3*n.numLEDs + 3
}

func (n *NRZ) String() string {
	return n.d.String()
}

func (n *NRZ) Close() error {
	if c, ok := n.port.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
