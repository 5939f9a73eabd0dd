// Package attach places props rigidly on an animated joint.
package attach

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Prop selects which item the character is holding.
type Prop int

const (
	ShortProp Prop = iota
	LongProp
)

func (p Prop) String() string {
	switch p {
	case ShortProp:
		return "short"
	case LongProp:
		return "long"
	}
	return fmt.Sprintf("Prop(%d)", int(p))
}

// Other returns the prop the toggle switches to.
func (p Prop) Other() Prop {
	if p == LongProp {
		return ShortProp
	}
	return LongProp
}

// ParseProp accepts "short" or "long" (case-insensitive).
func ParseProp(s string) (Prop, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "short-stick", "":
		return ShortProp, nil
	case "long", "long-stick", "monkey":
		return LongProp, nil
	}
	return 0, fmt.Errorf("attach: unknown prop %q", s)
}

// Spec is the static configuration of one prop. Read-only after load.
type Spec struct {
	Name   string
	Offset mgl64.Mat4 // local offset applied before the prop is placed on the joint
	Color  [4]float64 // RGBA 0..1
}

// DefaultOffset moves the stick from above the hand bone into the palm,
// points it at the viewer and tilts it away from the right leg.
func DefaultOffset() mgl64.Mat4 {
	return mgl64.Translate3D(0, -1, -0.1).
		Mul4(mgl64.HomogRotate3DX(math.Pi / 2)).
		Mul4(mgl64.HomogRotate3DZ(math.Pi / 4))
}

// DefaultSpecs returns the green short stick and the blue long stick.
func DefaultSpecs() map[Prop]Spec {
	return map[Prop]Spec{
		ShortProp: {Name: "Short stick", Offset: DefaultOffset(), Color: [4]float64{0, 1, 0, 1}},
		LongProp:  {Name: "Monkey stick", Offset: DefaultOffset(), Color: [4]float64{0, 0, 1, 1}},
	}
}

// Transform is the composed placement of an attached prop for one frame.
type Transform struct {
	HandModelView mgl64.Mat4 // parentWorld · animatedJointLocal
	Placed        mgl64.Mat4 // translate(jointBindPosition) · staticOffset
	Model         mgl64.Mat4 // HandModelView · Placed
}

// Compose builds the prop transform. The operand order is fixed: the static
// offset is applied to the prop's vertices first, the result is moved onto
// the joint's bind location, then the joint's animated motion and finally the
// parent's world transform are applied.
func Compose(parentWorld, animatedJointLocal mgl64.Mat4, jointBindPosition mgl64.Vec3, staticOffset mgl64.Mat4) Transform {
	handMV := parentWorld.Mul4(animatedJointLocal)
	placed := mgl64.Translate3D(jointBindPosition[0], jointBindPosition[1], jointBindPosition[2]).Mul4(staticOffset)
	return Transform{
		HandModelView: handMV,
		Placed:        placed,
		Model:         handMV.Mul4(placed),
	}
}

// Apply transforms a prop vertex the way the prop's vertex shader does:
// offset, add the bind position with w forced to 1, then the hand matrix.
func (t Transform) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, t.Model)
}
