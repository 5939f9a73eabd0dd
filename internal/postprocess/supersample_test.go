package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func TestDownsampleSize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	out := Downsample(img, 2)
	if out.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("bounds mismatch: %v", out.Bounds())
	}
	if Downsample(img, 1) != img {
		t.Fatalf("factor 1 should return the input")
	}
}

func TestDownsampleNoDarkHalo(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}

	out := Downsample(img, 2)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := out.NRGBAAt(x, y)
			if c.A > 16 && c.G < 240 {
				t.Fatalf("pixel (%d,%d) darkened at the edge: %v", x, y, c)
			}
		}
	}
	if c := out.NRGBAAt(1, 4); c.A < 250 {
		t.Fatalf("interior pixel should be opaque: %v", c)
	}
	if c := out.NRGBAAt(7, 4); c.A != 0 {
		t.Fatalf("far pixel should be transparent: %v", c)
	}
}
