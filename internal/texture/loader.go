package texture

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
)

// TGA has no magic number, so the decoder is picked by extension rather
// than sniffed by image.Decode.
func decoderFor(ext string) (func(io.Reader) (image.Image, error), error) {
	switch ext {
	case ".png":
		return png.Decode, nil
	case ".jpg", ".jpeg":
		return jpeg.Decode, nil
	case ".tga":
		return tga.Decode, nil
	default:
		return nil, fmt.Errorf("texture: unknown extension: %s", ext)
	}
}

// LoadTexture reads a PNG, JPEG or TGA file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	decode, err := decoderFor(strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to NRGBA with its origin at (0, 0).
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
