package mesh

import "github.com/Faultbox/objimport/pkg/formats"

// Fan returns the corners of the n-2 triangles of an n-gon, all sharing
// corner 0: triangle i is (0, i+1, i+2). Corner order, and therefore
// winding, follows the source polygon.
//
// Fan triangulation is only correct for convex, planar polygons. Concave
// input produces overlapping triangles; no attempt is made to detect it.
func Fan(n int) [][3]int {
	if n < 3 {
		return nil
	}
	tris := make([][3]int, n-2)
	for i := range tris {
		tris[i] = [3]int{0, i + 1, i + 2}
	}
	return tris
}

// TriangulateFace splits a polygon's vertex references into triangles.
func TriangulateFace(refs []formats.VertexRef) [][3]formats.VertexRef {
	fan := Fan(len(refs))
	out := make([][3]formats.VertexRef, len(fan))
	for i, tri := range fan {
		out[i] = [3]formats.VertexRef{refs[tri[0]], refs[tri[1]], refs[tri[2]]}
	}
	return out
}
