package mesh

import (
	"fmt"
	"strings"

	"github.com/Faultbox/objimport/pkg/formats"
)

// SplitMode selects how faces are grouped into meshes.
type SplitMode int

const (
	// SplitNone merges every face into a single mesh.
	SplitNone SplitMode = iota
	// SplitMaterial produces one mesh per distinct usemtl name, in
	// first-use order.
	SplitMaterial
	// SplitObject starts a new mesh whenever the object, group or material
	// changes between consecutive faces.
	SplitObject
)

// String returns the config spelling of the mode.
func (s SplitMode) String() string {
	switch s {
	case SplitNone:
		return "none"
	case SplitMaterial:
		return "material"
	case SplitObject:
		return "object"
	default:
		return fmt.Sprintf("SplitMode(%d)", int(s))
	}
}

// ParseSplitMode parses "none", "material" or "object".
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return SplitNone, nil
	case "material":
		return SplitMaterial, nil
	case "object":
		return SplitObject, nil
	default:
		return SplitNone, fmt.Errorf("unknown split mode %q", s)
	}
}

// Options controls mesh assembly.
type Options struct {
	// ForceComputeNormals discards source normals and always computes them.
	ForceComputeNormals bool
	// PreferFlatNormals computes flat instead of smooth normals.
	PreferFlatNormals bool
	// Triangulate fans polygons into triangles. When false the index buffer
	// holds polygon corners and Mesh.FaceArities their counts.
	Triangulate bool
	// Split selects how faces are grouped into meshes.
	Split SplitMode
}

// DefaultOptions returns triangulated, smooth-normal, object-split options.
func DefaultOptions() Options {
	return Options{Triangulate: true, Split: SplitObject}
}

// Run is a set of faces that become one mesh.
type Run struct {
	Name     string
	Material string
	Faces    []int // indices into OBJ.Faces, in source order
}

// Partition groups the faces of obj into runs. SplitNone always yields
// exactly one run, possibly empty.
func Partition(obj *formats.OBJ, mode SplitMode) []Run {
	switch mode {
	case SplitMaterial:
		return partitionByMaterial(obj)
	case SplitObject:
		return partitionByObject(obj)
	default:
		run := Run{Faces: make([]int, len(obj.Faces))}
		for i := range obj.Faces {
			run.Faces[i] = i
		}
		if len(obj.Faces) > 0 {
			run.Material = obj.Faces[0].Material
		}
		return []Run{run}
	}
}

func partitionByMaterial(obj *formats.OBJ) []Run {
	var runs []Run
	byName := make(map[string]int)
	for i := range obj.Faces {
		name := obj.Faces[i].Material
		ri, ok := byName[name]
		if !ok {
			ri = len(runs)
			byName[name] = ri
			runs = append(runs, Run{Name: name, Material: name})
		}
		runs[ri].Faces = append(runs[ri].Faces, i)
	}
	return runs
}

func partitionByObject(obj *formats.OBJ) []Run {
	var runs []Run
	var prev *formats.OBJFace
	for i := range obj.Faces {
		f := &obj.Faces[i]
		if prev == nil || f.Object != prev.Object || f.Group != prev.Group || f.Material != prev.Material {
			name := f.Object
			if name == "" {
				name = f.Group
			}
			runs = append(runs, Run{Name: name, Material: f.Material})
		}
		runs[len(runs)-1].Faces = append(runs[len(runs)-1].Faces, i)
		prev = f
	}
	return runs
}

// Build assembles the faces of obj into meshes according to opts.
func Build(obj *formats.OBJ, opts Options) []*Mesh {
	runs := Partition(obj, opts.Split)
	meshes := make([]*Mesh, 0, len(runs))
	for _, run := range runs {
		meshes = append(meshes, BuildRun(obj, run, opts))
	}
	return meshes
}

// BuildRun assembles one run into a mesh with a fresh deduplication map.
func BuildRun(obj *formats.OBJ, run Run, opts Options) *Mesh {
	b := NewIndexBuilder(obj, opts.ForceComputeNormals)
	for _, fi := range run.Faces {
		refs := obj.Faces[fi].Refs
		if opts.Triangulate {
			b.AddTriangles(refs)
		} else {
			b.AddPolygon(refs)
		}
	}

	m := b.Mesh()
	m.Name = run.Name
	m.Material = run.Material
	if m.Normals == nil {
		if opts.PreferFlatNormals {
			FlatNormals(m)
		} else {
			SmoothNormals(m)
		}
	}
	return m
}

// MultiIndexMesh keeps a separate index stream per attribute, as written
// in the source, instead of one index per distinct attribute combination.
type MultiIndexMesh struct {
	Name     string
	Material string

	Positions [][3]float32
	Normals   [][3]float32 // nil unless every corner referenced a normal
	UVs       [][2]float32 // nil unless every corner referenced a texcoord

	PositionIndices []uint32
	NormalIndices   []uint32
	TexCoordIndices []uint32

	FaceArities []int // nil for triangle lists
}

// BuildMultiIndex assembles per-attribute index streams for each run.
// Each attribute pool is compacted to the entries the run references.
func BuildMultiIndex(obj *formats.OBJ, opts Options) []*MultiIndexMesh {
	runs := Partition(obj, opts.Split)
	out := make([]*MultiIndexMesh, 0, len(runs))
	for _, run := range runs {
		out = append(out, buildMultiIndexRun(obj, run, opts))
	}
	return out
}

func buildMultiIndexRun(obj *formats.OBJ, run Run, opts Options) *MultiIndexMesh {
	m := &MultiIndexMesh{Name: run.Name, Material: run.Material}
	posMap := make(map[int]uint32)
	nrmMap := make(map[int]uint32)
	texMap := make(map[int]uint32)
	allNormals := !opts.ForceComputeNormals
	allTex := true

	add := func(ref formats.VertexRef) {
		m.PositionIndices = append(m.PositionIndices, compact(posMap, ref.Position, func() {
			m.Positions = append(m.Positions, obj.Positions[ref.Position])
		}))
		if allNormals && ref.HasNormal() {
			m.NormalIndices = append(m.NormalIndices, compact(nrmMap, ref.Normal, func() {
				m.Normals = append(m.Normals, obj.Normals[ref.Normal])
			}))
		} else {
			allNormals = false
		}
		if allTex && ref.HasTexCoord() {
			m.TexCoordIndices = append(m.TexCoordIndices, compact(texMap, ref.TexCoord, func() {
				m.UVs = append(m.UVs, FlipV(obj.TexCoords[ref.TexCoord]))
			}))
		} else {
			allTex = false
		}
	}

	for _, fi := range run.Faces {
		refs := obj.Faces[fi].Refs
		if opts.Triangulate {
			for _, tri := range TriangulateFace(refs) {
				for _, ref := range tri {
					add(ref)
				}
			}
		} else {
			for _, ref := range refs {
				add(ref)
			}
			m.FaceArities = append(m.FaceArities, len(refs))
		}
	}

	if !allNormals {
		m.Normals, m.NormalIndices = nil, nil
	}
	if !allTex || len(m.PositionIndices) == 0 {
		m.UVs, m.TexCoordIndices = nil, nil
	}
	return m
}

func compact(seen map[int]uint32, src int, insert func()) uint32 {
	if idx, ok := seen[src]; ok {
		return idx
	}
	idx := uint32(len(seen))
	seen[src] = idx
	insert()
	return idx
}
