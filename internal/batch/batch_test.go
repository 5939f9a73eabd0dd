package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/animation"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/model"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/raster"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/scene"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestPlan(t *testing.T) {
	jobs := Plan(6, 4, 6, attach.ShortProp, 2)
	if len(jobs) != 6 {
		t.Fatalf("job count mismatch: %d", len(jobs))
	}
	wantHeld := []attach.Prop{
		attach.ShortProp, attach.ShortProp,
		attach.LongProp, attach.LongProp,
		attach.ShortProp, attach.ShortProp,
	}
	for i, j := range jobs {
		if j.Index != i || j.Held != wantHeld[i] {
			t.Fatalf("job %d mismatch: %+v", i, j)
		}
		if !scalar.EqualWithinAbs(j.Time, 6+float64(i)*0.25, 1e-12) {
			t.Fatalf("job %d time mismatch: %f", i, j.Time)
		}
	}

	for _, j := range Plan(0, 30, 5, attach.LongProp, 0) {
		if j.Held != attach.LongProp {
			t.Fatalf("toggleEvery 0 should never flip: %+v", j)
		}
	}
	if Plan(0, 0, 5, attach.ShortProp, 0) != nil {
		t.Fatalf("zero fps should plan nothing")
	}
}

func newBatchConfig(t *testing.T) Config {
	t.Helper()
	swing := dquat.FromRotationTranslation(mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{})
	skel, err := skeleton.New([]skeleton.Joint{
		{Index: 0, Name: "Root", Parent: -1, BindInverse: mgl64.Ident4()},
		{Index: 1, Name: "Hand_R", Parent: 0, BindInverse: mgl64.Translate3D(-1, -1, 0)},
	}, []skeleton.Keyframe{
		{Time: 0, Joints: []dquat.DQ{dquat.Identity(), dquat.Identity()}},
		{Time: 1, Joints: []dquat.DQ{dquat.Identity(), swing}},
	})
	if err != nil {
		t.Fatalf("skeleton failed: %v", err)
	}

	sc, err := scene.New(skel, scene.Options{
		Range:       animation.Range{Start: 0, End: 1},
		HandJoint:   "Hand_R",
		ParentWorld: mgl64.Translate3D(0, 0, -8),
	})
	if err != nil {
		t.Fatalf("scene failed: %v", err)
	}

	body := model.Mesh{
		Positions: []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}},
		Triangles: [][3]int{{0, 1, 2}},
		Affectors: [][model.MaxInfluences]int{{0}, {0}, {1}},
		Weights:   [][model.MaxInfluences]float64{{1}, {1}, {1}},
	}
	stick := &model.Mesh{
		Positions: []mgl64.Vec3{{-0.1, 0, -0.1}, {0.1, 0, -0.1}, {0, 1, 0.1}},
		Triangles: [][3]int{{0, 1, 2}},
	}

	return Config{
		Scene: sc,
		Render: raster.Options{
			Size:        16,
			Supersample: 2,
			Character:   &model.Character{Mesh: body, Skeleton: skel},
			Props:       map[attach.Prop]*model.Mesh{attach.ShortProp: stick, attach.LongProp: stick},
		},
		OutputDir: t.TempDir(),
		Workers:   3,
	}
}

func TestRunWritesFrames(t *testing.T) {
	cfg := newBatchConfig(t)
	jobs := Plan(0, 4, 5, attach.ShortProp, 2)
	jobs = append(jobs, FrameJob{Index: 5, Time: 0, Held: attach.Prop(7)})

	results := Run(context.Background(), cfg, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("result count mismatch: %d", len(results))
	}
	for i, r := range results[:5] {
		if !r.Success {
			t.Fatalf("frame %d failed: %s", i, r.Error)
		}
		info, err := os.Stat(filepath.Join(cfg.OutputDir, r.Image))
		if err != nil || info.Size() == 0 {
			t.Fatalf("frame %d not written: %v", i, err)
		}
		if r.Image != FrameName(i) {
			t.Fatalf("frame %d name mismatch: %s", i, r.Image)
		}
	}
	if results[5].Success || results[5].Error == "" {
		t.Fatalf("unknown prop should fail its frame only: %+v", results[5])
	}
	if results[1].Model == results[3].Model {
		t.Fatalf("prop should move between frames")
	}

	manifest := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatalf("manifest failed: %v", err)
	}
	raw, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest failed: %v", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("parse manifest failed: %v", err)
	}
	if len(entries) != 6 || entries[2].Held != "long" || entries[2].PropModel == nil {
		t.Fatalf("manifest mismatch: %+v", entries[2])
	}
	if entries[5].PropModel != nil || entries[5].Error == "" {
		t.Fatalf("failed frame entry mismatch: %+v", entries[5])
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := newBatchConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, cfg, Plan(0, 30, 50, attach.ShortProp, 0))
	skipped := 0
	for _, r := range results {
		if r.Error == context.Canceled.Error() {
			skipped++
		}
	}
	if skipped == 0 {
		t.Fatalf("cancelled run should skip frames")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("unexpected context state: %v", ctx.Err())
	}
}
