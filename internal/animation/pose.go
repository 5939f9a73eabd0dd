package animation

import (
	"fmt"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/go-gl/mathgl/mgl64"
)

// AllJoints returns the indices 0..count-1.
func AllJoints(count int) []int {
	js := make([]int, count)
	for i := range js {
		js[i] = i
	}
	return js
}

// Slice returns a dense per-joint slice. Joints missing from the pose get
// the identity.
func (p Pose) Slice(jointCount int) []dquat.DQ {
	out := make([]dquat.DQ, jointCount)
	for j := range out {
		if dq, ok := p[j]; ok {
			out[j] = dq
		} else {
			out[j] = dquat.Identity()
		}
	}
	return out
}

// Matrices converts the pose into per-joint affine matrices.
func (p Pose) Matrices(jointCount int) ([]mgl64.Mat4, error) {
	out := make([]mgl64.Mat4, jointCount)
	for j, dq := range p.Slice(jointCount) {
		m, err := dquat.ToMat4(dq)
		if err != nil {
			return nil, fmt.Errorf("animation: joint %d: %w", j, err)
		}
		out[j] = m
	}
	return out, nil
}
