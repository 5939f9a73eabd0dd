package attach

import (
	"fmt"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/handedness"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
)

// BindSource is the part of the pose store the hand rig needs.
type BindSource interface {
	JointIndex(name string) (int, bool)
	Bind(j int) (mgl64.Mat4, error)
}

// Hand is the joint a prop is attached to, with its bind pose already
// converted from Blender's Z-up frame to the Y-up scene frame.
type Hand struct {
	JointIndex   int
	Name         string
	Bind         mgl64.Mat4
	BindPosition mgl64.Vec3
}

// NewHand resolves jointName and precomputes its bind matrix and location.
func NewHand(store BindSource, jointName string) (Hand, error) {
	j, ok := store.JointIndex(jointName)
	if !ok {
		return Hand{}, fmt.Errorf("attach: joint %q not found", jointName)
	}
	bind, err := store.Bind(j)
	if err != nil {
		return Hand{}, fmt.Errorf("attach: joint %q: %w", jointName, err)
	}
	bind = handedness.Convert(bind, handedness.RightToLeft)
	return Hand{
		JointIndex:   j,
		Name:         jointName,
		Bind:         bind,
		BindPosition: mgl64.Vec3{bind[12], bind[13], bind[14]},
	}, nil
}

// Animated converts the hand's blended dual quaternion into a Y-up
// matrix that carries the prop from the bind pose to the animated pose.
func (h Hand) Animated(pose []dquat.DQ) (mgl64.Mat4, error) {
	if h.JointIndex < 0 || h.JointIndex >= len(pose) {
		return mgl64.Mat4{}, fmt.Errorf("attach: hand joint %d missing from pose of %d: %w",
			h.JointIndex, len(pose), skeleton.ErrIndexOutOfRange)
	}
	m, err := dquat.ToMat4(pose[h.JointIndex])
	if err != nil {
		return mgl64.Mat4{}, fmt.Errorf("attach: hand joint %d: %w", h.JointIndex, err)
	}
	return handedness.Convert(m, handedness.RightToLeft), nil
}
