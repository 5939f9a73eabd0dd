package dquat

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// ErrInvalidPose is returned when a dual quaternion has a zero rotation part.
var ErrInvalidPose = errors.New("invalid pose")

// DQ is a rigid transform packed as 8 floats:
// [rx, ry, rz, rw, tx, ty, tz, tw]. The first quaternion is the rotation,
// the second is the dual part (0.5 · t · r).
type DQ [8]float64

// Identity returns the dual quaternion with no rotation and no translation.
func Identity() DQ {
	return DQ{0, 0, 0, 1, 0, 0, 0, 0}
}

// FromNumber packs a gonum dual quaternion.
func FromNumber(n dualquat.Number) DQ {
	return DQ{
		n.Real.Imag, n.Real.Jmag, n.Real.Kmag, n.Real.Real,
		n.Dual.Imag, n.Dual.Jmag, n.Dual.Kmag, n.Dual.Real,
	}
}

// Real returns the rotation quaternion.
func (d DQ) Real() quat.Number {
	return quat.Number{Real: d[3], Imag: d[0], Jmag: d[1], Kmag: d[2]}
}

// Dual returns the translation-encoding quaternion.
func (d DQ) Dual() quat.Number {
	return quat.Number{Real: d[7], Imag: d[4], Jmag: d[5], Kmag: d[6]}
}

// Number unpacks d into a gonum dual quaternion.
func (d DQ) Number() dualquat.Number {
	return dualquat.Number{Real: d.Real(), Dual: d.Dual()}
}

// Rotation returns the rotation part as an mgl64 quaternion.
func (d DQ) Rotation() mgl64.Quat {
	return mgl64.Quat{W: d[3], V: mgl64.Vec3{d[0], d[1], d[2]}}
}

// RotationNorm is the length of the rotation quaternion. 1 for valid poses.
func (d DQ) RotationNorm() float64 {
	return quat.Abs(d.Real())
}

// Translation extracts the translation vector: 2 · dual · conj(real).
// The rotation part is assumed to be unit length.
func (d DQ) Translation() mgl64.Vec3 {
	t := quat.Scale(2, quat.Mul(d.Dual(), quat.Conj(d.Real())))
	return mgl64.Vec3{t.Imag, t.Jmag, t.Kmag}
}

// FromRotationTranslation builds the dual quaternion that rotates by r then
// translates by t.
func FromRotationTranslation(r mgl64.Quat, t mgl64.Vec3) DQ {
	r = r.Normalize()
	rq := quat.Number{Real: r.W, Imag: r.V[0], Jmag: r.V[1], Kmag: r.V[2]}
	tq := quat.Number{Imag: t[0], Jmag: t[1], Kmag: t[2]}
	return FromNumber(dualquat.Number{Real: rq, Dual: quat.Scale(0.5, quat.Mul(tq, rq))})
}

// FromMat4 converts a rigid column-major transform into a dual quaternion.
// Scale in the upper 3×3 is not representable and is discarded.
func FromMat4(m mgl64.Mat4) (DQ, error) {
	if m.Mat3().Det() == 0 {
		return DQ{}, ErrInvalidPose
	}
	r := mgl64.Mat4ToQuat(m)
	if r.Len() < 1e-12 {
		return DQ{}, ErrInvalidPose
	}
	return FromRotationTranslation(r, mgl64.Vec3{m[12], m[13], m[14]}), nil
}

// normalized divides both parts by the rotation length.
func (d DQ) normalized() (DQ, error) {
	n := d.RotationNorm()
	if n < 1e-12 || math.IsNaN(n) {
		return DQ{}, ErrInvalidPose
	}
	inv := 1 / n
	var out DQ
	for i := range d {
		out[i] = d[i] * inv
	}
	return out, nil
}

// ToMat4 converts d to a column-major affine matrix.
func ToMat4(d DQ) (mgl64.Mat4, error) {
	d, err := d.normalized()
	if err != nil {
		return mgl64.Mat4{}, err
	}
	m := d.Rotation().Mat4()
	t := d.Translation()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m, nil
}

// Blend performs dual quaternion linear blending between a and b with
// weights (1-t, t). b is negated when its rotation lies in the opposite
// hemisphere so the blend takes the shorter arc.
func Blend(a, b DQ, t float64) DQ {
	wb := t
	if rotDot(a, b) < 0 {
		wb = -t
	}
	wa := 1 - t
	var out DQ
	for i := range out {
		out[i] = a[i]*wa + b[i]*wb
	}
	if n, err := out.normalized(); err == nil {
		return n
	}
	return out
}

// BlendWeighted blends several dual quaternions, aligning every sign to the
// first influence. Used for linear-blend vertex skinning.
func BlendWeighted(dqs []DQ, weights []float64) (DQ, error) {
	if len(dqs) == 0 || len(dqs) != len(weights) {
		return DQ{}, ErrInvalidPose
	}
	var out DQ
	for k, d := range dqs {
		w := weights[k]
		if k > 0 && rotDot(dqs[0], d) < 0 {
			w = -w
		}
		for i := range out {
			out[i] += d[i] * w
		}
	}
	return out.normalized()
}

// Mul composes two transforms: the result applies b first, then a.
func Mul(a, b DQ) DQ {
	return FromNumber(dualquat.Mul(a.Number(), b.Number()))
}

// TransformPoint applies the rigid transform to p.
func TransformPoint(d DQ, p mgl64.Vec3) mgl64.Vec3 {
	pd := dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{Imag: p[0], Jmag: p[1], Kmag: p[2]},
	}
	n := d.Number()
	pp := dualquat.Mul(dualquat.Mul(n, pd), dualquat.Conj(n))
	return mgl64.Vec3{pp.Dual.Imag, pp.Dual.Jmag, pp.Dual.Kmag}
}

// TransformVector rotates v without translating it.
func TransformVector(d DQ, v mgl64.Vec3) mgl64.Vec3 {
	return d.Rotation().Rotate(v)
}

func rotDot(a, b DQ) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}
