package dashlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/icza/bitio"
)

// R565Tag opens the raw-pixel image sub-header.
var R565Tag = [4]byte{'R', '5', '6', '5'}

// R565HeaderSize is the size of the raw-pixel sub-header: the tag plus
// width and height as little-endian uint16.
const R565HeaderSize = 8

// EncodeR565 converts an image to the raw-pixel container: the 8 byte
// sub-header followed by one 16-bit 5-6-5 packed sample per pixel. With
// swap false the samples are little-endian words; with swap true the two
// bytes of every sample are exchanged, for panels that consume the high
// byte first.
func EncodeR565(img image.Image, swap bool) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 1 || h < 1 || w > 0xFFFF || h > 0xFFFF {
		return nil, fmt.Errorf("image dimensions %dx%d do not fit the container", w, h)
	}
	size := R565HeaderSize + w*h*2
	if size > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(R565Tag[:])
	binary.Write(buf, binary.LittleEndian, uint16(w))
	binary.Write(buf, binary.LittleEndian, uint16(h))

	// Packing the three fields MSB first produces the byte swapped sample
	// order directly; the native order is one swap per sample away.
	bw := bitio.NewWriter(buf)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			bw.WriteBits(uint64(r>>11), 5)
			bw.WriteBits(uint64(g>>10), 6)
			bw.WriteBits(uint64(b>>11), 5)
		}
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}

	out := buf.Bytes()
	if !swap {
		for i := R565HeaderSize; i < len(out); i += 2 {
			out[i], out[i+1] = out[i+1], out[i]
		}
	}
	return out, nil
}

// R565Image is a parsed raw-pixel container.
type R565Image struct {
	Width   uint16
	Height  uint16
	Samples []uint16
}

// DecodeR565 parses a raw-pixel container produced with the given byte
// order. It exists for the receiving side and for round-trip tests.
func DecodeR565(payload []byte, swap bool) (*R565Image, error) {
	if len(payload) < R565HeaderSize {
		return nil, ErrTruncatedPayload
	}
	if !bytes.Equal(payload[:4], R565Tag[:]) {
		return nil, fmt.Errorf("bad raw-pixel tag %q", payload[:4])
	}
	w := binary.LittleEndian.Uint16(payload[4:6])
	h := binary.LittleEndian.Uint16(payload[6:8])
	want := R565HeaderSize + int(w)*int(h)*2
	if len(payload) != want {
		return nil, ErrTruncatedPayload
	}
	img := &R565Image{
		Width:   w,
		Height:  h,
		Samples: make([]uint16, int(w)*int(h)),
	}
	for i := range img.Samples {
		off := R565HeaderSize + i*2
		if swap {
			img.Samples[i] = binary.BigEndian.Uint16(payload[off : off+2])
		} else {
			img.Samples[i] = binary.LittleEndian.Uint16(payload[off : off+2])
		}
	}
	return img, nil
}
