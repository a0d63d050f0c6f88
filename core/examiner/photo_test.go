package examiner

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

// halves returns a w×h image, red on its left half and blue on its right half.
func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		c := color.RGBA{R: 255, A: 255}
		if x >= w/2 {
			c = color.RGBA{B: 255, A: 255}
		}
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func decodePhoto(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, PhotoSize, PhotoSize), img.Bounds())
	return img
}

func TestProcessPhoto(t *testing.T) {
	t.Run("centred", func(t *testing.T) {
		data, err := ProcessPhoto(PhotoUpload{Content: encodePNG(t, halves(400, 200))})
		require.NoError(t, err)
		img := decodePhoto(t, data)

		r, _, b, _ := img.At(10, PhotoSize/2).RGBA()
		assert.Greater(t, r, b)
		r, _, b, _ = img.At(PhotoSize-10, PhotoSize/2).RGBA()
		assert.Greater(t, b, r)
	})

	t.Run("crop box", func(t *testing.T) {
		crop := &CropBox{X: 250, Y: 0, Width: 100, Height: 100}
		data, err := ProcessPhoto(PhotoUpload{Content: encodePNG(t, halves(400, 200)), Crop: crop})
		require.NoError(t, err)
		img := decodePhoto(t, data)

		// only the blue half was selected
		r, _, b, _ := img.At(PhotoSize/2, PhotoSize/2).RGBA()
		assert.Zero(t, r)
		assert.NotZero(t, b)
	})

	t.Run("crop box outside image", func(t *testing.T) {
		crop := &CropBox{X: 1000, Y: 1000, Width: 50, Height: 50}
		data, err := ProcessPhoto(PhotoUpload{Content: encodePNG(t, halves(300, 300)), Crop: crop})
		require.NoError(t, err)
		decodePhoto(t, data)
	})

	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, halves(64, 100), nil))
		data, err := ProcessPhoto(PhotoUpload{Content: &buf})
		require.NoError(t, err)
		decodePhoto(t, data)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ProcessPhoto(PhotoUpload{Content: bytes.NewReader([]byte("not an image"))})
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		assert.Equal(t, ErrInvalidImage, vErr.Err)
		assert.Equal(t, "photo", vErr.Fields[0].Field)
	})
}

func TestCentredSquare(t *testing.T) {
	assert.Equal(t, image.Rect(100, 0, 300, 200), centredSquare(image.Rect(0, 0, 400, 200)))
	assert.Equal(t, image.Rect(10, 60, 110, 160), centredSquare(image.Rect(10, 10, 110, 210)))
	assert.Equal(t, image.Rect(0, 0, 5, 5), centredSquare(image.Rect(0, 0, 5, 5)))
}

func TestStatsCache(t *testing.T) {
	c := NewStatsCache()
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", Stats{Calculations: 1})
	c.Set("b", Stats{Calculations: 2})
	s, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Calculations)
	assert.Equal(t, 2, c.Len())

	c.Invalidate("a", "missing")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestStatsCache_SetIfCurrent(t *testing.T) {
	c := NewStatsCache()

	token := c.Begin("a")
	assert.True(t, c.SetIfCurrent(token, Stats{Calculations: 1}))

	stale := c.Begin("a")
	c.Invalidate("a")
	assert.False(t, c.SetIfCurrent(stale, Stats{Calculations: 1}))
	_, ok := c.Get("a")
	assert.False(t, ok)

	// other examiners are unaffected
	other := c.Begin("b")
	c.Invalidate("a")
	assert.True(t, c.SetIfCurrent(other, Stats{Calculations: 2}))

	beforeClear := c.Begin("c")
	c.Clear()
	assert.False(t, c.SetIfCurrent(beforeClear, Stats{}))

	fresh := c.Begin("a")
	assert.True(t, c.SetIfCurrent(fresh, Stats{Calculations: 3}))
	s, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, s.Calculations)
}
