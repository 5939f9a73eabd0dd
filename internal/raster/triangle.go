package raster

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a projected vertex: X/Y in pixels, Z in NDC depth.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Surface describes how a triangle is filled. Texture wins over Color when
// set; Light scales the result per channel.
type Surface struct {
	Texture *image.NRGBA
	Color   [4]float64 // RGBA in [0, 1]
	Light   mgl64.Vec3
}

// RasterizeTriangle fills one triangle with z-buffering and flat lighting.
//
// This is the hot path: no allocation happens in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, s *Surface) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	tex := s.Texture
	hasTex := tex != nil && tex.Rect.Dx() > 0 && tex.Rect.Dy() > 0
	flatR := clamp255(s.Color[0] * s.Light[0] * 255)
	flatG := clamp255(s.Color[1] * s.Light[1] * 255)
	flatB := clamp255(s.Color[2] * s.Light[2] * 255)
	flatA := clamp255(s.Color[3] * 255)

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z >= fb.ZBuf[zIdx] || z < -1 || z > 1 {
				continue
			}

			cr, cg, cb, ca := flatR, flatG, flatB, flatA
			if hasTex {
				u := w0*v[0].U + w1*v[1].U + w2*v[2].U
				vv := w0*v[0].V + w1*v[1].V + w2*v[2].V
				var tr, tg, tb uint8
				tr, tg, tb, ca = SampleTexture(tex, u, vv)
				cr = clamp255(float64(tr) * s.Light[0])
				cg = clamp255(float64(tg) * s.Light[1])
				cb = clamp255(float64(tb) * s.Light[2])
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
