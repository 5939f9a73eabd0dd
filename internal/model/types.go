package model

import (
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxInfluences is the number of joints that may deform one vertex.
const MaxInfluences = 4

// Mesh holds triangulated geometry. Triangles index Positions (and Affectors /
// Weights); UVTriangles index UVs and is nil when the mesh has no UVs.
type Mesh struct {
	Positions   []mgl64.Vec3
	Normals     []mgl64.Vec3
	UVs         [][2]float64
	Triangles   [][3]int
	UVTriangles [][3]int

	// Skinning data per position. Unused slots have weight 0.
	Affectors [][MaxInfluences]int
	Weights   [][MaxInfluences]float64
}

// Skinned reports whether the mesh carries joint weights.
func (m *Mesh) Skinned() bool {
	return len(m.Weights) == len(m.Positions) && len(m.Positions) > 0
}

// Bounds returns the axis-aligned bounding box of the mesh positions.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// Character is an animated, skinned model.
type Character struct {
	Mesh     Mesh
	Skeleton *skeleton.Skeleton
}
