package handedness

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var sampleMats = []mgl64.Mat4{
	mgl64.Ident4(),
	mgl64.Translate3D(1, -2, 3),
	mgl64.Translate3D(0, -1, -27).Mul4(mgl64.HomogRotate3DY(0.7)),
	mgl64.HomogRotate3D(1.3, mgl64.Vec3{1, 2, 3}.Normalize()).Mul4(mgl64.Scale3D(1, 2, 0.5)),
}

func TestConvertIsInvolution(t *testing.T) {
	for i, m := range sampleMats {
		got := Convert(Convert(m, RightToLeft), LeftToRight)
		if !matNear(got, m, 1e-12) {
			t.Fatalf("matrix %d not restored:\ngot=%v\nwant=%v", i, got, m)
		}
		got = Convert(Convert(m, LeftToRight), RightToLeft)
		if !matNear(got, m, 1e-12) {
			t.Fatalf("matrix %d not restored from left-handed:\ngot=%v\nwant=%v", i, got, m)
		}
	}
}

func TestConvertZUpToYUp(t *testing.T) {
	got := Convert(mgl64.Translate3D(0, 0, 1), RightToLeft)
	if !matNear(got, mgl64.Translate3D(0, 1, 0), 1e-12) {
		t.Fatalf("blender up should become y up: %v", got)
	}
	got = Convert(mgl64.Translate3D(1, 2, 3), RightToLeft)
	if !matNear(got, mgl64.Translate3D(1, 3, -2), 1e-12) {
		t.Fatalf("translation mismatch: %v", got)
	}
	got = Convert(mgl64.Translate3D(0, 1, 0), LeftToRight)
	if !matNear(got, mgl64.Translate3D(0, 0, 1), 1e-12) {
		t.Fatalf("y up should become blender up: %v", got)
	}
	if up := ConvertPoint(mgl64.Vec3{0, 0, 1}, RightToLeft); up != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("point up mismatch: %v", up)
	}
}

func TestConvertDirectionsDiffer(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3)
	if matNear(Convert(m, RightToLeft), Convert(m, LeftToRight), 1e-6) {
		t.Fatalf("directions should not apply the same transform")
	}
}

func TestConvertPreservesRotation(t *testing.T) {
	r := mgl64.HomogRotate3D(0.9, mgl64.Vec3{1, -2, 0.5}.Normalize())
	got := Convert(r, RightToLeft).Mat3()
	if !scalar.EqualWithinAbs(got.Det(), 1, 1e-12) {
		t.Fatalf("converted rotation should stay proper, det=%f", got.Det())
	}
}

// A point transformed then converted equals the converted point transformed
// by the converted matrix.
func TestConvertPointCommutes(t *testing.T) {
	r := mgl64.HomogRotate3DX(math.Pi / 3).Mul4(mgl64.Translate3D(0.2, -1, 4))
	p := mgl64.Vec3{0.5, 1, 2}
	for _, d := range []Direction{RightToLeft, LeftToRight} {
		lhs := ConvertPoint(mgl64.TransformCoordinate(p, r), d)
		rhs := mgl64.TransformCoordinate(ConvertPoint(p, d), Convert(r, d))
		if !vecNear(lhs, rhs, 1e-12) {
			t.Fatalf("%s point mismatch: lhs=%v rhs=%v", d, lhs, rhs)
		}
	}
	back := ConvertPoint(ConvertPoint(p, RightToLeft), LeftToRight)
	if !vecNear(back, p, 1e-12) {
		t.Fatalf("point not restored: %v", back)
	}
}

func TestDirectionString(t *testing.T) {
	if RightToLeft.String() != "right-to-left" || LeftToRight.String() != "left-to-right" {
		t.Fatalf("unexpected names: %s %s", RightToLeft, LeftToRight)
	}
	if Direction(5).String() != "Direction(5)" {
		t.Fatalf("unexpected fallback name: %s", Direction(5))
	}
}

func matNear(a, b mgl64.Mat4, tol float64) bool {
	return floats.EqualApprox(a[:], b[:], tol)
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return floats.EqualApprox(a[:], b[:], tol)
}
