// Package panel assembles WS2812B frames and hands them to an SPI bus.
package panel

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-spiled/internal/rgb"
	"github.com/coreman2200/funtimes-spiled/internal/wire"
)

// BytesPerLED is the encoded size of one LED: 3 channels of 3 bytes each.
const BytesPerLED = 3 * wire.SymbolsPerByte

// Bus performs one physical transfer per Tx call. periph.io's spi.Conn
// satisfies it; r is always nil.
type Bus interface {
	Tx(w, r []byte) error
}

// BusTransferError reports a failed transfer. The frame is not retried.
type BusTransferError struct {
	Bytes int
	Err   error
}

func (e *BusTransferError) Error() string {
	return fmt.Sprintf("panel: bus transfer of %d bytes: %v", e.Bytes, e.Err)
}

func (e *BusTransferError) Unwrap() error { return e.Err }

// Panel owns the frame buffer for one strip. It is not safe for concurrent
// use.
type Panel struct {
	buf     []byte
	bus     Bus
	numLEDs int
	order   rgb.Order
	log     zerolog.Logger
}

type Option func(*Panel)

// WithOrder overrides the wire order, rgb.GRB by default.
func WithOrder(o rgb.Order) Option {
	return func(p *Panel) { p.order = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Panel) { p.log = l }
}

// New returns a panel for numLEDs pixels writing to bus. A negative count
// is treated as 0.
func New(bus Bus, numLEDs int, opts ...Option) *Panel {
	if numLEDs < 0 {
		numLEDs = 0
	}
	p := &Panel{
		bus:     bus,
		numLEDs: numLEDs,
		order:   rgb.GRB,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	p.buf = make([]byte, 0, numLEDs*BytesPerLED)
	return p
}

func (p *Panel) NumLEDs() int { return p.numLEDs }

func (p *Panel) Order() rgb.Order { return p.order }

// Len is the number of encoded bytes waiting for the next Flush.
func (p *Panel) Len() int { return len(p.buf) }

// SetPixels encodes colors in wire order and flushes them. The number of
// colors is not checked against NumLEDs.
func (p *Panel) SetPixels(colors ...rgb.Color) error {
	p.buf = p.buf[:0]
	for _, c := range colors {
		p.push(c)
	}
	return p.Flush()
}

// SetHex parses every code before touching the frame buffer, then behaves
// like SetPixels.
func (p *Panel) SetHex(codes ...string) error {
	colors, err := rgb.ParseHexes(codes...)
	if err != nil {
		return err
	}
	return p.SetPixels(colors...)
}

// ClearAll drives every LED dark.
func (p *Panel) ClearAll() error {
	p.buf = p.buf[:0]
	for i := 0; i < p.numLEDs; i++ {
		p.push(rgb.Color{})
	}
	return p.Flush()
}

// Flush sends the whole frame buffer in a single transfer and empties it,
// whether or not the transfer succeeded.
func (p *Panel) Flush() error {
	n := len(p.buf)
	err := p.bus.Tx(p.buf, nil)
	p.buf = p.buf[:0]
	if err != nil {
		p.log.Error().Err(err).Int("bytes", n).Msg("bus transfer failed")
		return &BusTransferError{Bytes: n, Err: err}
	}
	p.log.Debug().Int("bytes", n).Int("leds", n/BytesPerLED).Msg("frame sent")
	return nil
}

func (p *Panel) push(c rgb.Color) {
	for _, b := range p.order.Wire(c) {
		p.buf = wire.AppendChannel(p.buf, b)
	}
}
