// Package mesh turns parsed OBJ faces into renderer-ready meshes:
// fan triangulation, vertex deduplication, UV flipping and normal
// synthesis.
package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrInvalidMesh is returned by Validate for inconsistent streams.
var ErrInvalidMesh = errors.New("invalid mesh")

// Vertex is one interleaved vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh holds separate attribute streams sharing one index buffer.
type Mesh struct {
	Name     string // object or group name, "" when merged
	Material string // usemtl name, "" for none

	Positions [][3]float32
	Normals   [][3]float32 // always len(Positions) after Build
	UVs       [][2]float32 // nil when no source vertex had a texcoord
	Indices   []uint32

	// FaceArities lists the corner count of each polygon when the mesh was
	// built without triangulation. Nil for triangle lists.
	FaceArities []int

	NormalsComputed bool
}

// VertexCount returns the number of output vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles the index buffer describes,
// counting the fan of each polygon for untriangulated meshes.
func (m *Mesh) TriangleCount() int {
	if m.FaceArities == nil {
		return len(m.Indices) / 3
	}
	n := 0
	for _, a := range m.FaceArities {
		n += a - 2
	}
	return n
}

// Validate checks stream lengths and index bounds.
func (m *Mesh) Validate() error {
	if m.Normals != nil && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%w: %d uvs for %d positions", ErrInvalidMesh, len(m.UVs), len(m.Positions))
	}
	if m.FaceArities == nil {
		if len(m.Indices)%3 != 0 {
			return fmt.Errorf("%w: %d indices is not a triangle list", ErrInvalidMesh, len(m.Indices))
		}
	} else {
		total := 0
		for _, a := range m.FaceArities {
			if a < 3 {
				return fmt.Errorf("%w: polygon with %d corners", ErrInvalidMesh, a)
			}
			total += a
		}
		if total != len(m.Indices) {
			return fmt.Errorf("%w: arities cover %d of %d indices", ErrInvalidMesh, total, len(m.Indices))
		}
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, len(m.Positions))
		}
	}
	return nil
}

// Vertices returns the streams interleaved. Missing UVs read as zero.
func (m *Mesh) Vertices() []Vertex {
	out := make([]Vertex, len(m.Positions))
	for i := range out {
		out[i].Position = m.Positions[i]
		if i < len(m.Normals) {
			out[i].Normal = m.Normals[i]
		}
		if i < len(m.UVs) {
			out[i].TexCoord = m.UVs[i]
		}
	}
	return out
}

// Bounds returns the bounding box of the positions. Empty meshes return
// the zero box.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			b.Min[k] = math32.Min(b.Min[k], p[k])
			b.Max[k] = math32.Max(b.Max[k], p[k])
		}
	}
	return b
}

// FlipV converts a texcoord between bottom-left and top-left origin.
func FlipV(uv [2]float32) [2]float32 {
	return [2]float32{uv[0], 1 - uv[1]}
}

// arities returns FaceArities, or all-3 for triangle lists.
func (m *Mesh) arities() []int {
	if m.FaceArities != nil {
		return m.FaceArities
	}
	out := make([]int, len(m.Indices)/3)
	for i := range out {
		out[i] = 3
	}
	return out
}

// eachTriangle calls fn for every triangle, fanning polygons.
func (m *Mesh) eachTriangle(fn func(a, b, c uint32)) {
	start := 0
	for _, arity := range m.arities() {
		for _, tri := range Fan(arity) {
			fn(m.Indices[start+tri[0]], m.Indices[start+tri[1]], m.Indices[start+tri[2]])
		}
		start += arity
	}
}
