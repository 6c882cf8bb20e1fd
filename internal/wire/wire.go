// Package wire expands WS2812B color channels into the 3x oversampled bit
// stream clocked out over SPI.
//
// Every data bit of a channel becomes a 3 slot symbol (low, bit, high). With
// the bus running at 3x the strip's native bit rate each symbol spans exactly
// one native bit period, so a 0 reads as a short pulse and a 1 as a long one.
package wire

import "errors"

// SymbolsPerByte is the number of encoded bytes produced for one channel.
const SymbolsPerByte = 3

// Slot masks over the 24 bit stream: bit 3i is always low, bit 3i+2 always
// high, bit 3i+1 carries data bit i.
const (
	lowSlots  uint32 = 0x249249
	highSlots uint32 = 0x924924
)

var ErrMalformedSymbol = errors.New("wire: malformed symbol")

// Precomputed LUT: byte -> 3 encoded bytes.
var lut [256][SymbolsPerByte]byte

func init() {
	for v := 0; v < 256; v++ {
		lut[v] = EncodeChannel(byte(v))
	}
}

// EncodeChannel converts one channel intensity into its 24 bit symbol stream.
//
// Source bits are taken least significant first and the earliest generated
// slot lands in the least significant bit of each output byte.
func EncodeChannel(b byte) [SymbolsPerByte]byte {
	out := highSlots
	for i := 0; i < 8; i++ {
		out |= uint32(b>>i&1) << (3*i + 1)
	}
	return [SymbolsPerByte]byte{byte(out), byte(out >> 8), byte(out >> 16)}
}

// AppendChannel appends the encoding of b to dst.
func AppendChannel(dst []byte, b byte) []byte {
	e := &lut[b]
	return append(dst, e[0], e[1], e[2])
}

// DecodeChannel recovers the channel intensity from its encoding.
func DecodeChannel(e [SymbolsPerByte]byte) (byte, error) {
	in := uint32(e[0]) | uint32(e[1])<<8 | uint32(e[2])<<16
	if in&(lowSlots|highSlots) != highSlots {
		return 0, ErrMalformedSymbol
	}
	var b byte
	for i := 0; i < 8; i++ {
		b |= byte(in>>(3*i+1)&1) << i
	}
	return b, nil
}
