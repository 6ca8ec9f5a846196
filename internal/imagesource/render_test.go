package imagesource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"

	"dashhost/dashlink"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderPassthrough(t *testing.T) {
	data := []byte("raw png bytes")
	out, err := Render{}.Payload(data)
	assert.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = Render{Format: "png"}.Payload(data)
	assert.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestRenderR565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})

	out, err := Render{Format: "r565", Width: 2, Height: 1}.Payload(encodePNG(t, img))
	assert.NoError(t, err)

	decoded, err := dashlink.DecodeR565(out, false)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, decoded.Width)
	assert.EqualValues(t, 1, decoded.Height)
	assert.Equal(t, []uint16{0xF800, 0x07E0}, decoded.Samples)
}

func TestRenderResample(t *testing.T) {
	// A uniform image survives downscaling exactly.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}

	out, err := Render{Format: "r565", Width: 2, Height: 2}.Payload(encodePNG(t, img))
	assert.NoError(t, err)

	decoded, err := dashlink.DecodeR565(out, false)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, decoded.Width)
	assert.EqualValues(t, 2, decoded.Height)
	assert.Equal(t, []uint16{0x001F, 0x001F, 0x001F, 0x001F}, decoded.Samples)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render{Format: "bmp"}.Payload([]byte("whatever"))
	assert.Error(t, err)

	_, err = Render{Format: "r565"}.Payload([]byte("not a png"))
	assert.Error(t, err)
}
