package skeleton

import (
	"errors"
	"fmt"
	"math"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrIndexOutOfRange is returned for joint or keyframe indices outside the skeleton.
var ErrIndexOutOfRange = errors.New("index out of range")

// unitTolerance bounds how far a keyframe rotation may drift from unit length.
const unitTolerance = 1e-5

// Joint holds the immutable bind-pose data of one joint.
type Joint struct {
	Index       int
	Name        string
	Parent      int        // -1 for roots
	BindInverse mgl64.Mat4 // model space → joint space, column-major
	BindLocal   mgl64.Mat4 // parent-relative bind transform
}

// Keyframe is one sampled pose: a dual quaternion per joint, in joint order.
type Keyframe struct {
	Time   float64
	Joints []dquat.DQ
}

// Skeleton stores joints and keyframes. It is read-only after New and safe
// for concurrent use.
type Skeleton struct {
	joints    []Joint
	keyframes []Keyframe
	names     map[string]int
}

// New validates and stores skeleton data. Joints must be indexed 0..N-1 in
// order, keyframes ascending in time, and every keyframe must carry N unit
// rotation dual quaternions.
func New(joints []Joint, keyframes []Keyframe) (*Skeleton, error) {
	s := &Skeleton{
		joints:    make([]Joint, len(joints)),
		keyframes: make([]Keyframe, len(keyframes)),
		names:     make(map[string]int, len(joints)),
	}
	copy(s.joints, joints)

	for i, j := range joints {
		if j.Index != i {
			return nil, fmt.Errorf("skeleton: joint at position %d has index %d: %w", i, j.Index, ErrIndexOutOfRange)
		}
		if j.Parent >= len(joints) || j.Parent < -1 {
			return nil, fmt.Errorf("skeleton: joint %d parent %d: %w", i, j.Parent, ErrIndexOutOfRange)
		}
		if j.Name != "" {
			s.names[j.Name] = i
		}
	}

	for k, kf := range keyframes {
		if len(kf.Joints) != len(joints) {
			return nil, fmt.Errorf("skeleton: keyframe %d has %d joints, want %d: %w",
				k, len(kf.Joints), len(joints), ErrIndexOutOfRange)
		}
		if k > 0 && kf.Time < keyframes[k-1].Time {
			return nil, fmt.Errorf("skeleton: keyframe %d time %g before %g", k, kf.Time, keyframes[k-1].Time)
		}
		for j, dq := range kf.Joints {
			if math.Abs(dq.RotationNorm()-1) > unitTolerance {
				return nil, fmt.Errorf("skeleton: keyframe %d joint %d rotation norm %g: %w",
					k, j, dq.RotationNorm(), dquat.ErrInvalidPose)
			}
		}
		s.keyframes[k] = Keyframe{Time: kf.Time, Joints: append([]dquat.DQ(nil), kf.Joints...)}
	}

	return s, nil
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int {
	return len(s.joints)
}

// KeyframeCount returns the number of stored keyframes.
func (s *Skeleton) KeyframeCount() int {
	return len(s.keyframes)
}

func (s *Skeleton) checkJoint(j int) error {
	if j < 0 || j >= len(s.joints) {
		return fmt.Errorf("skeleton: joint %d of %d: %w", j, len(s.joints), ErrIndexOutOfRange)
	}
	return nil
}

func (s *Skeleton) checkKeyframe(k int) error {
	if k < 0 || k >= len(s.keyframes) {
		return fmt.Errorf("skeleton: keyframe %d of %d: %w", k, len(s.keyframes), ErrIndexOutOfRange)
	}
	return nil
}

// Joint returns a copy of joint j.
func (s *Skeleton) Joint(j int) (Joint, error) {
	if err := s.checkJoint(j); err != nil {
		return Joint{}, err
	}
	return s.joints[j], nil
}

// BindInverse returns the inverse bind matrix of joint j.
func (s *Skeleton) BindInverse(j int) (mgl64.Mat4, error) {
	if err := s.checkJoint(j); err != nil {
		return mgl64.Mat4{}, err
	}
	return s.joints[j].BindInverse, nil
}

// Bind returns the model-space bind matrix of joint j (inverse of BindInverse).
func (s *Skeleton) Bind(j int) (mgl64.Mat4, error) {
	inv, err := s.BindInverse(j)
	if err != nil {
		return mgl64.Mat4{}, err
	}
	if inv.Det() == 0 {
		return mgl64.Mat4{}, fmt.Errorf("skeleton: joint %d bind inverse is singular: %w", j, dquat.ErrInvalidPose)
	}
	return inv.Inv(), nil
}

// KeyframeTime returns the sample time of keyframe k in seconds.
func (s *Skeleton) KeyframeTime(k int) (float64, error) {
	if err := s.checkKeyframe(k); err != nil {
		return 0, err
	}
	return s.keyframes[k].Time, nil
}

// KeyframeDualQuat returns joint j's pose at keyframe k.
func (s *Skeleton) KeyframeDualQuat(k, j int) (dquat.DQ, error) {
	if err := s.checkKeyframe(k); err != nil {
		return dquat.DQ{}, err
	}
	if err := s.checkJoint(j); err != nil {
		return dquat.DQ{}, err
	}
	return s.keyframes[k].Joints[j], nil
}

// JointIndex looks up a joint by name.
func (s *Skeleton) JointIndex(name string) (int, bool) {
	j, ok := s.names[name]
	return j, ok
}

// JointName returns the name of joint j, or "" when unnamed or out of range.
func (s *Skeleton) JointName(j int) string {
	if j < 0 || j >= len(s.joints) {
		return ""
	}
	return s.joints[j].Name
}
