package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/animation"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/handedness"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/model"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	hand := flag.String("hand", "Hand_R", "Joint the prop attaches to")
	rangeStart := flag.Int("start", 6, "First keyframe of the animation range")
	rangeEnd := flag.Int("end", 17, "Last keyframe of the animation range")
	at := flag.Float64("t", 0.5, "Seconds at which to sample the pose")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [flags] character.json")
		os.Exit(2)
	}
	path := flag.Arg(0)

	c, err := model.LoadCharacter(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	skel := c.Skeleton

	lo, hi := c.Mesh.Bounds()
	fmt.Printf("Vertices: %d, Triangles: %d, Skinned: %v\n", len(c.Mesh.Positions), len(c.Mesh.Triangles), c.Mesh.Skinned())
	fmt.Printf("  BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])

	fmt.Printf("Joints: %d\n", skel.JointCount())
	locations := skel.BindLocations()
	for j := 0; j < skel.JointCount(); j++ {
		joint, _ := skel.Joint(j)
		parent := "-"
		if joint.Parent >= 0 {
			parent = skel.JointName(joint.Parent)
		}
		p := locations[j]
		y := handedness.ConvertPoint(p, handedness.RightToLeft)
		fmt.Printf("  Joint[%2d] %-16s parent=%-16s bind=(%.3f, %.3f, %.3f) y-up=(%.3f, %.3f, %.3f)\n",
			j, joint.Name, parent, p[0], p[1], p[2], y[0], y[1], y[2])
	}

	fmt.Printf("Keyframes: %d\n", skel.KeyframeCount())
	for k := 0; k < skel.KeyframeCount(); k++ {
		t, _ := skel.KeyframeTime(k)
		fmt.Printf("  [%2d] t=%.4f\n", k, t)
	}

	sc, err := scene.New(skel, scene.Options{
		Range:     animation.Range{Start: *rangeStart, End: *rangeEnd},
		HandJoint: *hand,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	h := sc.Hand()
	fmt.Printf("Hand %s (joint %d) bind location, y-up: (%.3f, %.3f, %.3f)\n",
		h.Name, h.JointIndex, h.BindPosition[0], h.BindPosition[1], h.BindPosition[2])

	frame, err := sc.Evaluate(*at, attach.ShortProp)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pose at t=%.3f:\n", *at)
	for j, dq := range frame.Pose {
		r := dq.Rotation()
		angle := 2 * math.Acos(math.Min(1, math.Abs(r.W))) * 180 / math.Pi
		tr := dq.Translation()
		fmt.Printf("  Joint[%2d] rot=%6.1f° trans=(%.3f, %.3f, %.3f)\n", j, angle, tr[0], tr[1], tr[2])
	}
	tip := frame.Attachment.Apply(mgl64.Vec3{0, 1, 0})
	fmt.Printf("Short stick tip in view space: (%.3f, %.3f, %.3f)\n", tip[0], tip[1], tip[2])
}
