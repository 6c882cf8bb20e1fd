package led

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Oversample is the number of bus bits per native LED bit.
const Oversample = 3

// DefaultNativeHz is the WS2812B native data rate.
const DefaultNativeHz = 800 * physic.KiloHertz

// SPIOpts selects and clocks the bus.
type SPIOpts struct {
	// Dev is passed to spireg.Open, e.g. "/dev/spidev0.0" or "SPI0.0". Empty
	// picks the first port found.
	Dev string
	// Native is the strip's bit rate. The bus is clocked at Oversample times
	// this.
	Native physic.Frequency
	// Speed, when set, replaces Native*Oversample.
	Speed physic.Frequency
}

// BusSpeed returns the SPI clock to request.
func (o SPIOpts) BusSpeed() physic.Frequency {
	if o.Speed > 0 {
		return o.Speed
	}
	n := o.Native
	if n <= 0 {
		n = DefaultNativeHz
	}
	return n * Oversample
}

// SPI is a connected SPI port used as a panel bus.
type SPI struct {
	port spi.PortCloser
	c    spi.Conn
}

// OpenPort initializes the host drivers and opens the port without
// connecting it.
func OpenPort(o SPIOpts) (spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(o.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", o.Dev, err)
	}
	return p, nil
}

// OpenSPI opens the port in mode 0, 8 bits per word, at o.BusSpeed().
// frameBytes is the largest frame the caller will send and is only used to
// warn when the driver cannot take it in one transfer.
func OpenSPI(o SPIOpts, frameBytes int, log zerolog.Logger) (*SPI, error) {
	p, err := OpenPort(o)
	if err != nil {
		return nil, err
	}
	s, err := Connect(p, o.BusSpeed())
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if l, ok := s.c.(conn.Limits); ok && l.MaxTxSize() < frameBytes {
		log.Warn().
			Int("max_tx", l.MaxTxSize()).
			Int("frame_bytes", frameBytes).
			Msg("frame exceeds spi transfer limit; raise spidev bufsiz")
	}
	log.Info().Str("port", p.String()).Stringer("speed", o.BusSpeed()).Msg("spi connected")
	return s, nil
}

// Connect connects an already opened port.
func Connect(p spi.PortCloser, speed physic.Frequency) (*SPI, error) {
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect at %s: %w", speed, err)
	}
	return &SPI{port: p, c: c}, nil
}

// Tx implements panel.Bus.
func (s *SPI) Tx(w, r []byte) error {
	if s.c == nil {
		return fmt.Errorf("spi closed")
	}
	return s.c.Tx(w, r)
}

func (s *SPI) String() string {
	if s.port == nil {
		return "spi{closed}"
	}
	return s.port.String()
}

func (s *SPI) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port, s.c = nil, nil
	return err
}
