package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/chinedufn/webgl-wield-item-tutorial/internal/dquat"
	"github.com/chinedufn/webgl-wield-item-tutorial/internal/skeleton"
	"github.com/go-gl/mathgl/mgl64"
)

// characterFile matches the JSON exported from the COLLADA character.
// Matrices are 16 floats in Blender's row-major order.
type characterFile struct {
	VertexPositions        []float64              `json:"vertexPositions"`
	VertexNormals          []float64              `json:"vertexNormals"`
	VertexUVs              []float64              `json:"vertexUVs"`
	VertexPositionIndices  []int                  `json:"vertexPositionIndices"`
	VertexNormalIndices    []int                  `json:"vertexNormalIndices"`
	VertexUVIndices        []int                  `json:"vertexUVIndices"`
	VertexJointWeights     []map[string]float64   `json:"vertexJointWeights"`
	JointNamePositionIndex map[string]int         `json:"jointNamePositionIndex"`
	JointParents           map[string]*string     `json:"jointParents"`
	JointInverseBindPoses  json.RawMessage        `json:"jointInverseBindPoses"`
	Keyframes              map[string][][]float64 `json:"keyframes"`
}

// propFile matches the JSON exported from a Wavefront OBJ. Faces are groups
// of four indices; a -1 in the last slot marks a triangle.
type propFile struct {
	VertexPositions       []float64 `json:"vertexPositions"`
	VertexNormals         []float64 `json:"vertexNormals"`
	VertexUVs             []float64 `json:"vertexUVs"`
	VertexPositionIndices []int     `json:"vertexPositionIndices"`
	VertexUVIndices       []int     `json:"vertexUVIndices"`
}

// LoadCharacter reads a character JSON file and builds its mesh and skeleton.
func LoadCharacter(path string) (*Character, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	var f characterFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}

	c, err := buildCharacter(&f)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", path, err)
	}
	return c, nil
}

func buildCharacter(f *characterFile) (*Character, error) {
	mesh, err := buildMesh(f.VertexPositions, f.VertexNormals, f.VertexUVs, f.VertexPositionIndices, f.VertexUVIndices, 3)
	if err != nil {
		return nil, err
	}

	if len(f.VertexJointWeights) > 0 {
		if len(f.VertexJointWeights) != len(mesh.Positions) {
			return nil, fmt.Errorf("joint weights for %d vertices, have %d positions",
				len(f.VertexJointWeights), len(mesh.Positions))
		}
		mesh.Affectors, mesh.Weights, err = buildInfluences(f.VertexJointWeights)
		if err != nil {
			return nil, err
		}
	}

	invBinds, err := parseInverseBinds(f.JointInverseBindPoses)
	if err != nil {
		return nil, err
	}
	jointCount := len(invBinds)

	names := make([]string, jointCount)
	for name, idx := range f.JointNamePositionIndex {
		if idx < 0 || idx >= jointCount {
			return nil, fmt.Errorf("joint %q index %d of %d: %w", name, idx, jointCount, skeleton.ErrIndexOutOfRange)
		}
		names[idx] = name
	}

	joints := make([]skeleton.Joint, jointCount)
	for i := range joints {
		joints[i] = skeleton.Joint{
			Index:       i,
			Name:        names[i],
			Parent:      -1,
			BindInverse: invBinds[i],
		}
	}
	resolveParents(joints, f.JointParents, f.JointNamePositionIndex)

	keyframes, err := buildKeyframes(f.Keyframes, jointCount)
	if err != nil {
		return nil, err
	}

	skel, err := skeleton.New(joints, keyframes)
	if err != nil {
		return nil, err
	}
	return &Character{Mesh: *mesh, Skeleton: skel}, nil
}

// rowMajor converts 16 Blender row-major floats to a column-major matrix.
func rowMajor(v []float64) (mgl64.Mat4, error) {
	if len(v) != 16 {
		return mgl64.Mat4{}, fmt.Errorf("matrix has %d values, want 16", len(v))
	}
	var m mgl64.Mat4
	copy(m[:], v)
	return m.Transpose(), nil
}

// parseInverseBinds accepts either an array of matrices or an object keyed by
// joint index.
func parseInverseBinds(raw json.RawMessage) ([]mgl64.Mat4, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing jointInverseBindPoses")
	}

	var list [][]float64
	if err := json.Unmarshal(raw, &list); err != nil {
		var byIndex map[string][]float64
		if err := json.Unmarshal(raw, &byIndex); err != nil {
			return nil, fmt.Errorf("jointInverseBindPoses: %w", err)
		}
		list = make([][]float64, len(byIndex))
		for key, v := range byIndex {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(byIndex) {
				return nil, fmt.Errorf("jointInverseBindPoses key %q: %w", key, skeleton.ErrIndexOutOfRange)
			}
			list[idx] = v
		}
	}

	out := make([]mgl64.Mat4, len(list))
	for i, v := range list {
		m, err := rowMajor(v)
		if err != nil {
			return nil, fmt.Errorf("inverse bind %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

// resolveParents fills Parent and BindLocal from the optional name → parent
// name table. Without it every joint is a root and BindLocal is its bind.
func resolveParents(joints []skeleton.Joint, parents map[string]*string, index map[string]int) {
	binds := make([]mgl64.Mat4, len(joints))
	for i, j := range joints {
		binds[i] = mgl64.Ident4()
		if j.BindInverse.Det() != 0 {
			binds[i] = j.BindInverse.Inv()
		}
	}
	for i := range joints {
		joints[i].BindLocal = binds[i]
		parentName := parents[joints[i].Name]
		if parentName == nil {
			continue
		}
		p, ok := index[*parentName]
		if !ok {
			continue
		}
		joints[i].Parent = p
		joints[i].BindLocal = joints[p].BindInverse.Mul4(binds[i])
	}
}

func buildKeyframes(src map[string][][]float64, jointCount int) ([]skeleton.Keyframe, error) {
	keyframes := make([]skeleton.Keyframe, 0, len(src))
	for key, mats := range src {
		t, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("keyframe time %q: %w", key, err)
		}
		if len(mats) != jointCount {
			return nil, fmt.Errorf("keyframe %s has %d joints, want %d: %w",
				key, len(mats), jointCount, skeleton.ErrIndexOutOfRange)
		}
		dqs := make([]dquat.DQ, jointCount)
		for j, v := range mats {
			m, err := rowMajor(v)
			if err != nil {
				return nil, fmt.Errorf("keyframe %s joint %d: %w", key, j, err)
			}
			dq, err := dquat.FromMat4(m)
			if err != nil {
				return nil, fmt.Errorf("keyframe %s joint %d: %w", key, j, err)
			}
			dqs[j] = dq
		}
		keyframes = append(keyframes, skeleton.Keyframe{Time: t, Joints: dqs})
	}
	sort.Slice(keyframes, func(a, b int) bool { return keyframes[a].Time < keyframes[b].Time })
	return keyframes, nil
}

// buildInfluences keeps the MaxInfluences heaviest joints per vertex and
// renormalizes their weights to sum to 1.
func buildInfluences(src []map[string]float64) ([][MaxInfluences]int, [][MaxInfluences]float64, error) {
	type influence struct {
		joint  int
		weight float64
	}
	affectors := make([][MaxInfluences]int, len(src))
	weights := make([][MaxInfluences]float64, len(src))

	for v, m := range src {
		infl := make([]influence, 0, len(m))
		for key, w := range m {
			j, err := strconv.Atoi(key)
			if err != nil {
				return nil, nil, fmt.Errorf("vertex %d joint %q: %w", v, key, err)
			}
			if w > 0 {
				infl = append(infl, influence{j, w})
			}
		}
		sort.Slice(infl, func(a, b int) bool {
			if infl[a].weight != infl[b].weight {
				return infl[a].weight > infl[b].weight
			}
			return infl[a].joint < infl[b].joint
		})
		if len(infl) > MaxInfluences {
			infl = infl[:MaxInfluences]
		}
		sum := 0.0
		for _, in := range infl {
			sum += in.weight
		}
		for k, in := range infl {
			affectors[v][k] = in.joint
			weights[v][k] = in.weight / sum
		}
	}
	return affectors, weights, nil
}

// LoadProp reads a prop JSON file. Props are drawn untextured, so missing
// UVs are fine.
func LoadProp(path string) (*Mesh, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	var f propFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}
	mesh, err := buildMesh(f.VertexPositions, f.VertexNormals, f.VertexUVs, f.VertexPositionIndices, f.VertexUVIndices, 4)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", path, err)
	}
	return mesh, nil
}

// buildMesh triangulates faces of faceSize indices. For faceSize 4 a negative
// fourth index marks a triangle; quads are split along 0-2.
func buildMesh(positions, normals, uvs []float64, posIdx, uvIdx []int, faceSize int) (*Mesh, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("vertexPositions length %d is not a multiple of 3", len(positions))
	}
	if len(posIdx)%faceSize != 0 {
		return nil, fmt.Errorf("vertexPositionIndices length %d is not a multiple of %d", len(posIdx), faceSize)
	}

	m := &Mesh{
		Positions: vec3s(positions),
		Normals:   vec3s(normals),
	}
	for i := 0; i+1 < len(uvs); i += 2 {
		m.UVs = append(m.UVs, [2]float64{uvs[i], uvs[i+1]})
	}
	hasUV := len(m.UVs) > 0 && len(uvIdx) == len(posIdx)

	for f := 0; f < len(posIdx); f += faceSize {
		face := posIdx[f : f+faceSize]
		n := faceSize
		if faceSize == 4 && face[3] < 0 {
			n = 3
		}
		for k := 0; k < n; k++ {
			if face[k] < 0 || face[k] >= len(m.Positions) {
				return nil, fmt.Errorf("face %d index %d of %d positions", f/faceSize, face[k], len(m.Positions))
			}
		}
		m.Triangles = append(m.Triangles, [3]int{face[0], face[1], face[2]})
		if n == 4 {
			m.Triangles = append(m.Triangles, [3]int{face[0], face[2], face[3]})
		}
		if hasUV {
			uf := uvIdx[f : f+faceSize]
			m.UVTriangles = append(m.UVTriangles, [3]int{uf[0], uf[1], uf[2]})
			if n == 4 {
				m.UVTriangles = append(m.UVTriangles, [3]int{uf[0], uf[2], uf[3]})
			}
		}
	}
	return m, nil
}

func vec3s(flat []float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, mgl64.Vec3{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}
