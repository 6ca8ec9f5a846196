package dashlink

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pixel(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return img
}

func TestEncodeR565RedPixel(t *testing.T) {
	data, err := EncodeR565(pixel(color.RGBA{R: 255, A: 255}), false)
	assert.NoError(t, err)

	// Sub-header: tag, width=1, height=1.
	assert.Equal(t, []byte{'R', '5', '6', '5', 0x01, 0x00, 0x01, 0x00}, data[:R565HeaderSize])
	// Pure red packs to the word 0xF800, stored little-endian.
	assert.Equal(t, []byte{0x00, 0xF8}, data[R565HeaderSize:])

	swapped, err := EncodeR565(pixel(color.RGBA{R: 255, A: 255}), true)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xF8, 0x00}, swapped[R565HeaderSize:])
}

func TestEncodeR565Channels(t *testing.T) {
	cases := []struct {
		c    color.RGBA
		word uint16
	}{
		{color.RGBA{R: 255, A: 255}, 0xF800},
		{color.RGBA{G: 255, A: 255}, 0x07E0},
		{color.RGBA{B: 255, A: 255}, 0x001F},
		{color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0xFFFF},
		{color.RGBA{A: 255}, 0x0000},
	}
	for _, c := range cases {
		data, err := EncodeR565(pixel(c.c), false)
		assert.NoError(t, err)
		img, err := DecodeR565(data, false)
		assert.NoError(t, err)
		assert.EqualValues(t, 1, img.Width)
		assert.EqualValues(t, 1, img.Height)
		assert.Equal(t, []uint16{c.word}, img.Samples)
	}
}

func TestEncodeR565SwapRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(40 * x), G: 100, B: 200, A: 255})
		img.Set(x, 1, color.RGBA{R: 10, G: uint8(80 * x), B: 30, A: 255})
	}
	native, err := EncodeR565(img, false)
	assert.NoError(t, err)
	swapped, err := EncodeR565(img, true)
	assert.NoError(t, err)

	a, err := DecodeR565(native, false)
	assert.NoError(t, err)
	b, err := DecodeR565(swapped, true)
	assert.NoError(t, err)
	assert.Equal(t, a.Samples, b.Samples)
}

func TestEncodeR565TooLarge(t *testing.T) {
	// 320*320 samples plus the sub-header is 8 bytes over the cap.
	img := image.NewRGBA(image.Rect(0, 0, 320, 320))
	_, err := EncodeR565(img, false)
	assert.Equal(t, ErrPayloadTooLarge, err)
}

func TestDecodeR565Errors(t *testing.T) {
	_, err := DecodeR565([]byte("R56"), false)
	assert.Equal(t, ErrTruncatedPayload, err)

	_, err = DecodeR565([]byte("XXXX\x01\x00\x01\x00\x00\xF8"), false)
	assert.Error(t, err)

	// Declared 2x1 but only one sample present.
	_, err = DecodeR565([]byte("R565\x02\x00\x01\x00\x00\xF8"), false)
	assert.Equal(t, ErrTruncatedPayload, err)
}
