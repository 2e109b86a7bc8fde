package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FaceNormal returns the unnormalised geometric normal (b-a) x (c-a).
func FaceNormal(a, b, c [3]float32) [3]float32 {
	va := mgl32.Vec3(a)
	n := mgl32.Vec3(b).Sub(va).Cross(mgl32.Vec3(c).Sub(va))
	if !finite(n) {
		return [3]float32{}
	}
	return [3]float32(n)
}

// SmoothNormals assigns every vertex the normalised sum of the unit normals
// of the triangles that use it, in face order. Zero-area triangles add
// nothing; a vertex used only by them gets the zero vector.
func SmoothNormals(m *Mesh) {
	sums := make([]mgl32.Vec3, len(m.Positions))
	m.eachTriangle(func(a, b, c uint32) {
		n := unit(mgl32.Vec3(FaceNormal(m.Positions[a], m.Positions[b], m.Positions[c])))
		sums[a] = sums[a].Add(n)
		sums[b] = sums[b].Add(n)
		sums[c] = sums[c].Add(n)
	})

	m.Normals = make([][3]float32, len(sums))
	for i, s := range sums {
		m.Normals[i] = unit(s)
	}
	m.NormalsComputed = true
}

// FlatNormals unshares every vertex so each face owns its corners, then
// gives all corners of a face its unnormalised geometric normal. For
// untriangulated polygons the normal is the sum over the polygon's fan.
func FlatNormals(m *Mesh) {
	n := len(m.Indices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	indices := make([]uint32, n)
	var uvs [][2]float32
	if m.UVs != nil {
		uvs = make([][2]float32, n)
	}

	for i, idx := range m.Indices {
		positions[i] = m.Positions[idx]
		if uvs != nil {
			uvs[i] = m.UVs[idx]
		}
		indices[i] = uint32(i)
	}

	start := 0
	for _, arity := range m.arities() {
		var sum mgl32.Vec3
		for _, tri := range Fan(arity) {
			fn := FaceNormal(positions[start+tri[0]], positions[start+tri[1]], positions[start+tri[2]])
			sum = sum.Add(mgl32.Vec3(fn))
		}
		if !finite(sum) {
			sum = mgl32.Vec3{}
		}
		for j := 0; j < arity; j++ {
			normals[start+j] = sum
		}
		start += arity
	}

	m.Positions = positions
	m.Normals = normals
	m.UVs = uvs
	m.Indices = indices
	m.NormalsComputed = true
}

// unit normalises v, returning the zero vector for zero or non-finite input.
// mgl32's Normalize divides by zero.
func unit(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || !finite(v) || math32.IsInf(l, 0) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
