package panel_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/spi/spitest"

	. "github.com/coreman2200/funtimes-spiled/internal/panel"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
	"github.com/coreman2200/funtimes-spiled/internal/wire"
)

// recorder keeps a copy of every transfer.
type recorder struct {
	frames [][]byte
	err    error
}

func (r *recorder) Tx(w, _ []byte) error {
	r.frames = append(r.frames, append([]byte(nil), w...))
	return r.err
}

func encoded(bs ...byte) []byte {
	var out []byte
	for _, b := range bs {
		e := wire.EncodeChannel(b)
		out = append(out, e[:]...)
	}
	return out
}

func TestSetPixelsTwoLEDs(t *testing.T) {
	rec := &recorder{}
	p := New(rec, 2)

	require.NoError(t, p.SetPixels(rgb.Color{R: 0x33}, rgb.Color{G: 0x33}))
	require.Len(t, rec.frames, 1)
	got := rec.frames[0]
	require.Len(t, got, 18)
	assert.Equal(t, []byte{36, 73, 146}, got[0:3], "green of LED 0")
	assert.Equal(t, []byte{54, 105, 147}, got[3:6], "red of LED 0")
	assert.Equal(t, encoded(0x00, 0x33, 0x00, 0x33, 0x00, 0x00), got)
	assert.Zero(t, p.Len())
}

func TestSetPixelsRoundTrip(t *testing.T) {
	for _, c := range []rgb.Color{{R: 1, G: 2, B: 3}, {R: 0xFF}, {B: 0x80}, {R: 0xAB, G: 0xCD, B: 0xEF}} {
		buf := bytes.Buffer{}
		p := New(spitest.NewRecordRaw(&buf), 1)
		require.NoError(t, p.SetPixels(c))
		assert.Equal(t, encoded(c.G, c.R, c.B), buf.Bytes(), c.String())
	}
}

func TestSetPixelsWithOrder(t *testing.T) {
	buf := bytes.Buffer{}
	p := New(spitest.NewRecordRaw(&buf), 1, WithOrder(rgb.RGB))
	require.NoError(t, p.SetPixels(rgb.Color{R: 1, G: 2, B: 3}))
	assert.Equal(t, encoded(1, 2, 3), buf.Bytes())
	assert.Equal(t, rgb.RGB, p.Order())
}

func TestSetPixelsIgnoresLEDCount(t *testing.T) {
	rec := &recorder{}
	p := New(rec, 1)
	require.NoError(t, p.SetPixels(rgb.Color{}, rgb.Color{}, rgb.Color{}))
	assert.Len(t, rec.frames[0], 3*BytesPerLED)

	require.NoError(t, p.SetPixels())
	assert.Empty(t, rec.frames[1])
}

func TestClearAllIdempotent(t *testing.T) {
	rec := &recorder{}
	p := New(rec, 4)
	require.NoError(t, p.ClearAll())
	require.NoError(t, p.ClearAll())
	require.Len(t, rec.frames, 2)
	assert.Equal(t, rec.frames[0], rec.frames[1])

	want := bytes.Repeat([]byte{36, 73, 146}, 4*3)
	assert.Equal(t, want, rec.frames[0])
	assert.Zero(t, p.Len())
	assert.Equal(t, 4, p.NumLEDs())
}

func TestClearAllPlayback(t *testing.T) {
	pb := &conntest.Playback{
		Ops: []conntest.IO{
			{W: bytes.Repeat([]byte{36, 73, 146}, 2*3)},
			{W: encoded(0x00, 0x33, 0x00)},
		},
	}
	p := New(pb, 2)
	require.NoError(t, p.ClearAll())
	require.NoError(t, p.SetHex("330000"))
	assert.NoError(t, pb.Close())
}

func TestSetHexInvalidLeavesBufferUntouched(t *testing.T) {
	for _, codes := range [][]string{{"33000"}, {"3300000"}, {"330000", "GG0000"}} {
		rec := &recorder{}
		p := New(rec, 2)
		err := p.SetHex(codes...)
		assert.ErrorIs(t, err, rgb.ErrInvalidColorFormat)
		assert.Zero(t, p.Len())
		assert.Empty(t, rec.frames, "no transfer for %v", codes)
	}
}

func TestFlushFailureDrainsBuffer(t *testing.T) {
	cause := errors.New("spi: device gone")
	rec := &recorder{err: cause}
	p := New(rec, 2)

	err := p.SetPixels(rgb.Color{R: 0x33})
	var bte *BusTransferError
	require.ErrorAs(t, err, &bte)
	assert.Equal(t, BytesPerLED, bte.Bytes)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, p.Len())

	// the next frame starts from an empty buffer
	rec.err = nil
	require.NoError(t, p.SetPixels(rgb.Color{B: 1}))
	assert.Equal(t, encoded(0, 0, 1), rec.frames[1])
}

func TestFlushUnexpectedTransfer(t *testing.T) {
	pb := &conntest.Playback{DontPanic: true}
	p := New(pb, 1)
	err := p.ClearAll()
	var bte *BusTransferError
	assert.ErrorAs(t, err, &bte)
}

func TestFlushEmpty(t *testing.T) {
	rec := &recorder{}
	p := New(rec, 3)
	require.NoError(t, p.Flush())
	require.Len(t, rec.frames, 1)
	assert.Empty(t, rec.frames[0])
}

func TestNewNegativeCount(t *testing.T) {
	rec := &recorder{}
	p := New(rec, -1)
	assert.Zero(t, p.NumLEDs())
	require.NoError(t, p.ClearAll())
	assert.Empty(t, rec.frames[0])
}
