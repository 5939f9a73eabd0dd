package skeleton

import "github.com/go-gl/mathgl/mgl64"

// BuildWorldMatrices chains each joint's parent-relative bind transform with
// its parent's. Parents are expected to precede children; a joint whose
// parent comes later is treated as a root.
func (s *Skeleton) BuildWorldMatrices() []mgl64.Mat4 {
	worlds := make([]mgl64.Mat4, len(s.joints))
	for i, j := range s.joints {
		local := j.BindLocal
		if local == (mgl64.Mat4{}) {
			local = mgl64.Ident4()
		}
		if j.Parent >= 0 && j.Parent < i {
			worlds[i] = worlds[j.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// BindLocations returns each joint's model-space bind position, taken from
// the translation column of the inverted inverse bind matrix. Joints with a
// singular inverse bind report the origin.
func (s *Skeleton) BindLocations() []mgl64.Vec3 {
	locs := make([]mgl64.Vec3, len(s.joints))
	for i, j := range s.joints {
		if j.BindInverse.Det() == 0 {
			continue
		}
		bind := j.BindInverse.Inv()
		locs[i] = mgl64.Vec3{bind[12], bind[13], bind[14]}
	}
	return locs
}
