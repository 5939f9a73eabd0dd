package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Light is the character's per-face lighting: an ambient term plus one
// directional light, both as RGB multipliers.
type Light struct {
	Direction   mgl64.Vec3 // unit vector pointing toward the light, view space
	Ambient     mgl64.Vec3
	Directional mgl64.Vec3
}

// DefaultLight matches the tutorial: light travelling along (1, -1, -4),
// ambient 0.9 and a red directional colour.
func DefaultLight() Light {
	return Light{
		Direction:   mgl64.Vec3{1, -1, -4}.Normalize().Mul(-1),
		Ambient:     mgl64.Vec3{0.9, 0.9, 0.9},
		Directional: mgl64.Vec3{1, 0, 0},
	}
}

// Weight returns the RGB light multiplier for a unit view-space normal.
func (l Light) Weight(normal mgl64.Vec3) mgl64.Vec3 {
	ndl := math.Max(normal.Dot(l.Direction), 0)
	return l.Ambient.Add(l.Directional.Mul(ndl))
}

// Unlit passes colours through unchanged.
func Unlit() mgl64.Vec3 {
	return mgl64.Vec3{1, 1, 1}
}
