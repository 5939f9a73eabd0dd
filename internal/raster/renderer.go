package raster

import (
	"fmt"
	"image"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/attach"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/model"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Options holds the assets and target size shared by every frame.
type Options struct {
	Size        int
	Supersample int
	Character   *model.Character
	Props       map[attach.Prop]*model.Mesh
	Texture     *image.NRGBA // nil draws the character in flat grey
	Light       Light        // zero value takes DefaultLight
}

var untexturedColor = [4]float64{0.63, 0.63, 0.63, 1}

// RenderFrame draws the skinned character and the held prop for frame at
// Size*Supersample pixels square.
func RenderFrame(opts Options, frame scene.Frame) (*image.NRGBA, error) {
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	renderSize := opts.Size * ss
	fb := NewFrameBuffer(renderSize, renderSize)
	light := opts.Light
	if light == (Light{}) {
		light = DefaultLight()
	}

	if c := opts.Character; c != nil {
		positions, err := SkinPositions(&c.Mesh, frame.Pose)
		if err != nil {
			return nil, err
		}
		surface := &Surface{Texture: opts.Texture, Color: untexturedColor}
		drawMesh(fb, &c.Mesh, positions, frame.ParentWorld, frame.Projection, surface, &light)
	}

	if mesh, ok := opts.Props[frame.Held]; ok && mesh != nil {
		surface := &Surface{Color: frame.Prop.Color, Light: Unlit()}
		drawMesh(fb, mesh, mesh.Positions, frame.Attachment.Model, frame.Projection, surface, nil)
	} else if !ok && len(opts.Props) > 0 {
		return nil, fmt.Errorf("raster: no mesh for prop %s", frame.Held)
	}

	return fb.Image(), nil
}

// drawMesh transforms positions by modelView then projection and rasterizes
// every triangle. A nil light leaves surface.Light untouched.
func drawMesh(fb *FrameBuffer, mesh *model.Mesh, positions []mgl64.Vec3, modelView, projection mgl64.Mat4, surface *Surface, light *Light) {
	view := make([]mgl64.Vec3, len(positions))
	screen := make([]Vertex, len(positions))
	visible := make([]bool, len(positions))
	for i, p := range positions {
		view[i] = mgl64.TransformCoordinate(p, modelView)
		clip := projection.Mul4x1(view[i].Vec4(1))
		if clip[3] <= 1e-9 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip[3])
		screen[i] = Vertex{
			X: (ndc[0] + 1) * 0.5 * float64(fb.Width),
			Y: (1 - ndc[1]) * 0.5 * float64(fb.Height),
			Z: ndc[2],
		}
		visible[i] = true
	}

	hasUV := len(mesh.UVTriangles) == len(mesh.Triangles) && len(mesh.UVs) > 0
	for t, tri := range mesh.Triangles {
		if !visible[tri[0]] || !visible[tri[1]] || !visible[tri[2]] {
			continue
		}
		v := [3]Vertex{screen[tri[0]], screen[tri[1]], screen[tri[2]]}
		if hasUV {
			for k, uvi := range mesh.UVTriangles[t] {
				if uvi >= 0 && uvi < len(mesh.UVs) {
					v[k].U, v[k].V = mesh.UVs[uvi][0], mesh.UVs[uvi][1]
				}
			}
		}
		if light != nil {
			n, ok := faceNormal(view[tri[0]], view[tri[1]], view[tri[2]])
			if !ok {
				continue
			}
			surface.Light = light.Weight(n)
		}
		RasterizeTriangle(fb, v, surface)
	}
}

// faceNormal returns the unit normal of a view-space triangle, flipped to
// face the camera at the origin.
func faceNormal(a, b, c mgl64.Vec3) (mgl64.Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}, false
	}
	n = n.Mul(1 / l)
	if n.Dot(a) > 0 {
		n = n.Mul(-1)
	}
	return n, true
}
