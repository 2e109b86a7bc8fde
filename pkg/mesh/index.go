package mesh

import "github.com/Faultbox/objimport/pkg/formats"

// VertexKey identifies one output vertex by its source pool indices.
// Absent attributes are formats.NoIndex. Two references with equal keys
// share an output vertex even when their attribute values differ only by
// pool slot; equal values in different slots stay separate.
type VertexKey struct {
	Position int
	Normal   int
	TexCoord int
}

// IndexBuilder assigns dense output indices to distinct vertex keys in
// first-seen order and materialises their attributes from the source
// pools. One builder serves one mesh.
type IndexBuilder struct {
	src         *formats.OBJ
	dropNormals bool

	keys      map[VertexKey]uint32
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
	indices   []uint32
	arities   []int

	missingNormal bool
	anyTexCoord   bool
}

// NewIndexBuilder creates a builder over the pools of src. With
// dropNormals, source normal indices are left out of the key and the
// resulting mesh always reports missing normals.
func NewIndexBuilder(src *formats.OBJ, dropNormals bool) *IndexBuilder {
	return &IndexBuilder{
		src:         src,
		dropNormals: dropNormals,
		keys:        make(map[VertexKey]uint32),
	}
}

// Key returns the deduplication key for ref under the builder's settings.
func (b *IndexBuilder) Key(ref formats.VertexRef) VertexKey {
	k := VertexKey{Position: ref.Position, Normal: ref.Normal, TexCoord: ref.TexCoord}
	if b.dropNormals {
		k.Normal = formats.NoIndex
	}
	return k
}

// Add looks up or inserts the vertex for ref, appends its output index to
// the index buffer and returns it.
func (b *IndexBuilder) Add(ref formats.VertexRef) uint32 {
	key := b.Key(ref)
	idx, ok := b.keys[key]
	if !ok {
		idx = uint32(len(b.positions))
		b.keys[key] = idx
		b.materialise(key)
	}
	b.indices = append(b.indices, idx)
	return idx
}

func (b *IndexBuilder) materialise(key VertexKey) {
	b.positions = append(b.positions, b.src.Positions[key.Position])

	var n [3]float32
	if key.Normal != formats.NoIndex {
		n = b.src.Normals[key.Normal]
	} else {
		b.missingNormal = true
	}
	b.normals = append(b.normals, n)

	var uv [2]float32
	if key.TexCoord != formats.NoIndex {
		uv = b.src.TexCoords[key.TexCoord]
		b.anyTexCoord = true
	}
	b.uvs = append(b.uvs, FlipV(uv))
}

// AddTriangles fan-triangulates a face and adds every corner.
func (b *IndexBuilder) AddTriangles(refs []formats.VertexRef) {
	for _, tri := range TriangulateFace(refs) {
		for _, ref := range tri {
			b.Add(ref)
		}
	}
}

// AddPolygon adds a face without triangulating it, recording its arity.
func (b *IndexBuilder) AddPolygon(refs []formats.VertexRef) {
	for _, ref := range refs {
		b.Add(ref)
	}
	b.arities = append(b.arities, len(refs))
}

// Len returns the number of distinct output vertices so far.
func (b *IndexBuilder) Len() int { return len(b.positions) }

// HasAllNormals reports whether every output vertex carries a source normal.
func (b *IndexBuilder) HasAllNormals() bool { return !b.missingNormal }

// Mesh returns the assembled attribute streams. Normals is nil unless every
// vertex had a source normal; UVs is nil unless any vertex had a texcoord.
func (b *IndexBuilder) Mesh() *Mesh {
	m := &Mesh{
		Positions:   b.positions,
		Indices:     b.indices,
		FaceArities: b.arities,
	}
	if m.Positions == nil {
		m.Positions = [][3]float32{}
	}
	if m.Indices == nil {
		m.Indices = []uint32{}
	}
	if !b.missingNormal {
		m.Normals = b.normals
		if m.Normals == nil {
			m.Normals = [][3]float32{}
		}
	}
	if b.anyTexCoord {
		m.UVs = b.uvs
	}
	return m
}
