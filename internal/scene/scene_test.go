package scene

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/animation"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/handedness"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

func newSceneSkeleton(t *testing.T) *skeleton.Skeleton {
	t.Helper()
	swing := dquat.FromRotationTranslation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}), mgl64.Vec3{0, 0.5, 0})
	s, err := skeleton.New([]skeleton.Joint{
		{Index: 0, Name: "Root", Parent: -1, BindInverse: mgl64.Ident4()},
		{Index: 1, Name: "Hand_R", Parent: 0, BindInverse: mgl64.Translate3D(-2, -3, 0)},
	}, []skeleton.Keyframe{
		{Time: 0, Joints: []dquat.DQ{dquat.Identity(), dquat.Identity()}},
		{Time: 0.5, Joints: []dquat.DQ{dquat.Identity(), swing}},
		{Time: 1, Joints: []dquat.DQ{dquat.Identity(), dquat.Identity()}},
	})
	if err != nil {
		t.Fatalf("new skeleton failed: %v", err)
	}
	return s
}

func TestEvaluateAtRest(t *testing.T) {
	sc, err := New(newSceneSkeleton(t), Options{Range: animation.Range{Start: 0, End: 2}, HandJoint: "Hand_R"})
	if err != nil {
		t.Fatalf("new scene failed: %v", err)
	}

	f, err := sc.Evaluate(0, attach.ShortProp)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(f.Pose) != 2 || len(f.JointMatrices) != 2 {
		t.Fatalf("pose size mismatch: %d %d", len(f.Pose), len(f.JointMatrices))
	}
	if f.Prop.Name != "Short stick" {
		t.Fatalf("prop mismatch: %s", f.Prop.Name)
	}

	// At rest the hand matrix is the parent's world transform.
	if !matNear(f.Attachment.HandModelView, DefaultParentWorld(), 1e-12) {
		t.Fatalf("hand model view mismatch: %v", f.Attachment.HandModelView)
	}
	want := DefaultParentWorld().
		Mul4(mgl64.Translate3D(2, 0, -3)).
		Mul4(attach.DefaultOffset())
	if !matNear(f.Attachment.Model, want, 1e-12) {
		t.Fatalf("model mismatch:\ngot=%v\nwant=%v", f.Attachment.Model, want)
	}
}

func TestEvaluateAnimatesHeldProp(t *testing.T) {
	sc, err := New(newSceneSkeleton(t), Options{Range: animation.Range{Start: 0, End: 2}, HandJoint: "Hand_R"})
	if err != nil {
		t.Fatalf("new scene failed: %v", err)
	}

	rest, err := sc.Evaluate(0, attach.LongProp)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	mid, err := sc.Evaluate(0.5, attach.LongProp)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if matNear(mid.Attachment.Model, rest.Attachment.Model, 1e-6) {
		t.Fatalf("prop should move with the hand")
	}
	if mid.Prop.Color != [4]float64{0, 0, 1, 1} {
		t.Fatalf("long stick colour mismatch: %v", mid.Prop.Color)
	}

	// The animated swing is carried into the Y-up convention.
	swing, _ := dquat.ToMat4(mid.Pose[1])
	wantHand := DefaultParentWorld().Mul4(handedness.Convert(swing, handedness.RightToLeft))
	if !matNear(mid.Attachment.HandModelView, wantHand, 1e-12) {
		t.Fatalf("hand model view mismatch:\ngot=%v\nwant=%v", mid.Attachment.HandModelView, wantHand)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	sc, err := New(newSceneSkeleton(t), Options{Range: animation.Range{Start: 0, End: 2}, HandJoint: "Hand_R"})
	if err != nil {
		t.Fatalf("new scene failed: %v", err)
	}
	want, err := sc.Evaluate(0.3, attach.ShortProp)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := sc.Evaluate(0.3, attach.ShortProp)
			if err != nil {
				errs <- err
				return
			}
			if got.Attachment.Model != want.Attachment.Model {
				errs <- errors.New("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent evaluate: %v", err)
	}
}

func TestNewAndEvaluateErrors(t *testing.T) {
	skel := newSceneSkeleton(t)
	if _, err := New(skel, Options{HandJoint: "Hand_L"}); err == nil {
		t.Fatalf("expected error for missing hand joint")
	}

	sc, err := New(skel, Options{
		Range:     animation.Range{Start: 0, End: 9},
		HandJoint: "Hand_R",
		Props:     map[attach.Prop]attach.Spec{attach.ShortProp: {Name: "only", Offset: mgl64.Ident4()}},
	})
	if err != nil {
		t.Fatalf("new scene failed: %v", err)
	}
	if _, err := sc.Evaluate(0, attach.LongProp); err == nil {
		t.Fatalf("expected error for unconfigured prop")
	}
	if _, err := sc.Evaluate(0, attach.ShortProp); !errors.Is(err, skeleton.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func matNear(a, b mgl64.Mat4, tol float64) bool {
	return floats.EqualApprox(a[:], b[:], tol)
}
