// Package handedness converts transforms between Blender's right-handed
// Z-up convention and the Y-up convention WebGL scenes are drawn in.
package handedness

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Direction names the source and target conventions of a conversion.
type Direction int

const (
	RightToLeft Direction = iota
	LeftToRight
)

func (d Direction) String() string {
	switch d {
	case RightToLeft:
		return "right-to-left"
	case LeftToRight:
		return "left-to-right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Column-major change of basis. zUpToYUp maps (x, y, z) to (x, z, -y):
// Y and Z swap and the old Y axis is negated. yUpToZUp is its transpose
// and inverse.
var (
	zUpToYUp = mgl64.Mat4{
		1, 0, 0, 0,
		0, 0, -1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
	yUpToZUp = zUpToYUp.Transpose()
)

func basis(d Direction) (to, from mgl64.Mat4) {
	if d == LeftToRight {
		return yUpToZUp, zUpToYUp
	}
	return zUpToYUp, yUpToZUp
}

// Convert re-expresses m in the target convention as C·m·C⁻¹.
// Convert(Convert(m, RightToLeft), LeftToRight) returns m.
func Convert(m mgl64.Mat4, d Direction) mgl64.Mat4 {
	to, from := basis(d)
	return to.Mul4(m).Mul4(from)
}

// ConvertPoint moves a position or direction into the target convention.
func ConvertPoint(v mgl64.Vec3, d Direction) mgl64.Vec3 {
	if d == LeftToRight {
		return mgl64.Vec3{v[0], -v[2], v[1]}
	}
	return mgl64.Vec3{v[0], v[2], -v[1]}
}
