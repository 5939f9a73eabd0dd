package raster

import (
	"fmt"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/model"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
)

// SkinPositions deforms the mesh's bind-pose positions by pose, blending up
// to model.MaxInfluences joint dual quaternions per vertex. Vertices with no
// weight keep their bind position. Unskinned meshes are returned as is.
func SkinPositions(mesh *model.Mesh, pose []dquat.DQ) ([]mgl64.Vec3, error) {
	if !mesh.Skinned() {
		return mesh.Positions, nil
	}

	out := make([]mgl64.Vec3, len(mesh.Positions))
	dqs := make([]dquat.DQ, 0, model.MaxInfluences)
	ws := make([]float64, 0, model.MaxInfluences)
	for i, p := range mesh.Positions {
		dqs, ws = dqs[:0], ws[:0]
		for k := 0; k < model.MaxInfluences; k++ {
			w := mesh.Weights[i][k]
			if w <= 0 {
				continue
			}
			j := mesh.Affectors[i][k]
			if j < 0 || j >= len(pose) {
				return nil, fmt.Errorf("raster: vertex %d joint %d of %d: %w", i, j, len(pose), skeleton.ErrIndexOutOfRange)
			}
			dqs = append(dqs, pose[j])
			ws = append(ws, w)
		}
		if len(dqs) == 0 {
			out[i] = p
			continue
		}
		blended, err := dquat.BlendWeighted(dqs, ws)
		if err != nil {
			return nil, fmt.Errorf("raster: vertex %d: %w", i, err)
		}
		out[i] = dquat.TransformPoint(blended, p)
	}
	return out, nil
}
