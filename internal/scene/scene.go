// Package scene runs the per-frame pipeline: interpolate the character's
// pose, derive the hand's animated matrix and place the held prop on it.
package scene

import (
	"fmt"
	"math"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/animation"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
)

// Options configure a Scene. Zero ParentWorld and Projection take the
// tutorial's camera: the character 27 units in front of the viewer, a 45°
// perspective with a square aspect.
type Options struct {
	Range       animation.Range
	HandJoint   string
	Props       map[attach.Prop]attach.Spec
	ParentWorld mgl64.Mat4
	Projection  mgl64.Mat4
}

// DefaultParentWorld places the character in front of the camera.
func DefaultParentWorld() mgl64.Mat4 {
	return mgl64.Translate3D(0, -1, -27)
}

// DefaultProjection is the tutorial's perspective matrix.
func DefaultProjection() mgl64.Mat4 {
	return mgl64.Perspective(math.Pi/4, 1, 0.1, 100)
}

// Scene holds everything that stays fixed across frames.
type Scene struct {
	skel        *skeleton.Skeleton
	rng         animation.Range
	joints      []int
	hand        attach.Hand
	props       map[attach.Prop]attach.Spec
	parentWorld mgl64.Mat4
	projection  mgl64.Mat4
}

// Frame is the output of one Evaluate call.
type Frame struct {
	Time          float64
	Pose          []dquat.DQ   // per joint, index order
	JointMatrices []mgl64.Mat4 // per joint, for the draw layer
	Held          attach.Prop
	Prop          attach.Spec
	Attachment    attach.Transform
	ParentWorld   mgl64.Mat4
	Projection    mgl64.Mat4
}

// New builds a Scene over skel.
func New(skel *skeleton.Skeleton, opts Options) (*Scene, error) {
	hand, err := attach.NewHand(skel, opts.HandJoint)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	props := opts.Props
	if len(props) == 0 {
		props = attach.DefaultSpecs()
	}
	s := &Scene{
		skel:        skel,
		rng:         opts.Range,
		joints:      animation.AllJoints(skel.JointCount()),
		hand:        hand,
		props:       props,
		parentWorld: opts.ParentWorld,
		projection:  opts.Projection,
	}
	if s.parentWorld == (mgl64.Mat4{}) {
		s.parentWorld = DefaultParentWorld()
	}
	if s.projection == (mgl64.Mat4{}) {
		s.projection = DefaultProjection()
	}
	return s, nil
}

// Skeleton returns the scene's pose store.
func (s *Scene) Skeleton() *skeleton.Skeleton { return s.skel }

// Hand returns the attachment joint.
func (s *Scene) Hand() attach.Hand { return s.hand }

// Evaluate computes the frame at seconds with held in the character's hand.
// Safe for concurrent use.
func (s *Scene) Evaluate(seconds float64, held attach.Prop) (Frame, error) {
	spec, ok := s.props[held]
	if !ok {
		return Frame{}, fmt.Errorf("scene: no spec for prop %s", held)
	}

	pose, err := animation.Interpolate(s.skel, seconds, s.rng, s.joints)
	if err != nil {
		return Frame{}, fmt.Errorf("scene: t=%.3f: %w", seconds, err)
	}
	dense := pose.Slice(s.skel.JointCount())
	mats, err := pose.Matrices(s.skel.JointCount())
	if err != nil {
		return Frame{}, fmt.Errorf("scene: t=%.3f: %w", seconds, err)
	}

	animated, err := s.hand.Animated(dense)
	if err != nil {
		return Frame{}, fmt.Errorf("scene: t=%.3f: %w", seconds, err)
	}

	return Frame{
		Time:          seconds,
		Pose:          dense,
		JointMatrices: mats,
		Held:          held,
		Prop:          spec,
		Attachment:    attach.Compose(s.parentWorld, animated, s.hand.BindPosition, spec.Offset),
		ParentWorld:   s.parentWorld,
		Projection:    s.projection,
	}, nil
}
