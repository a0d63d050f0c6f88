package examiner

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/Melvinkheturus/examinerpro-web-sub001/core"
)

const (
	PhotoSize        = 512
	PhotoContentType = "image/png"
)

var ErrInvalidImage = errors.New("unsupported or corrupted image")

type (
	// CropBox is the area selected by the client, in source image pixels.
	CropBox struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	PhotoUpload struct {
		Content io.Reader
		Crop    *CropBox
	}
)

// ProcessPhoto crops the uploaded image to a square (inside the crop box when given, else centred),
// scales it to PhotoSize×PhotoSize and encodes it as PNG.
func ProcessPhoto(upload PhotoUpload) ([]byte, error) {
	src, _, err := image.Decode(upload.Content)
	if err != nil {
		return nil, core.NewValidationError(ErrInvalidImage, core.FieldError{Field: "photo", Error: ErrInvalidImage.Error()})
	}

	area := src.Bounds()
	if upload.Crop != nil && upload.Crop.Width > 0 && upload.Crop.Height > 0 {
		box := image.Rect(upload.Crop.X, upload.Crop.Y, upload.Crop.X+upload.Crop.Width, upload.Crop.Y+upload.Crop.Height).
			Add(area.Min)
		if box = box.Intersect(area); !box.Empty() {
			area = box
		}
	}
	area = centredSquare(area)

	dst := image.NewRGBA(image.Rect(0, 0, PhotoSize, PhotoSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, area, draw.Over, nil)

	var buf bytes.Buffer
	if err = png.Encode(&buf, dst); err != nil {
		return nil, errors.Wrap(err, "encoding photo")
	}
	return buf.Bytes(), nil
}

func centredSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	side := w
	if h < side {
		side = h
	}
	x := r.Min.X + (w-side)/2
	y := r.Min.Y + (h-side)/2
	return image.Rect(x, y, x+side, y+side)
}
