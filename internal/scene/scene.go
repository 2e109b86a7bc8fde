// Package scene holds imported assets in an arena addressed by opaque
// handles, plus the entities that pair meshes with materials.
package scene

import (
	"fmt"
	"sync"

	"github.com/Faultbox/objimport/pkg/mesh"
)

// MeshHandle addresses a mesh in an Assets arena. Zero means none.
type MeshHandle uint32

// MaterialHandle addresses a material in an Assets arena. Zero means none.
type MaterialHandle uint32

// TextureHandle addresses a texture in an Assets arena. Zero means none.
type TextureHandle uint32

// IsValid reports whether h refers to an asset.
func (h MeshHandle) IsValid() bool { return h != 0 }

// IsValid reports whether h refers to an asset.
func (h MaterialHandle) IsValid() bool { return h != 0 }

// IsValid reports whether h refers to an asset.
func (h TextureHandle) IsValid() bool { return h != 0 }

// Texture is a resolved image reference. Width, Height and Format are
// filled only when the image was decoded.
type Texture struct {
	Label    string
	Path     string // resolved relative to the MTL document
	Width    int
	Height   int
	Format   string
	HasAlpha bool
	Decoded  bool
}

// Material is a PBR parameter set ready for a renderer.
type Material struct {
	Label string
	Name  string // newmtl name, "" for the default material

	BaseColor        [4]float32 // sRGB, alpha from dissolve
	BaseColorTexture TextureHandle
	NormalMap        TextureHandle
	NormalScale      float32 // bump multiplier
	Emissive         [3]float32

	Roughness          float32
	Metallic           float32
	Clearcoat          float32
	ClearcoatRoughness float32
	Anisotropy         float32
	AnisotropyRotation float32

	AlphaBlend bool
	// Substitute is set on the default material used in place of one that
	// could not be loaded.
	Substitute bool
}

// DefaultMaterial returns the material used for faces without usemtl and
// as the substitute under the lenient missing-material policy.
func DefaultMaterial() Material {
	return Material{
		BaseColor:   [4]float32{1, 1, 1, 1},
		NormalScale: 1,
		Roughness:   0.5,
	}
}

// Entity pairs one mesh with one material.
type Entity struct {
	Name     string
	Mesh     MeshHandle
	Material MaterialHandle
}

// Assets is an arena of meshes, materials and textures. Handles are
// 1-based positions and stay valid for the arena's lifetime.
type Assets struct {
	mu        sync.RWMutex
	meshes    []*mesh.Mesh
	materials []Material
	textures  []Texture
}

// NewAssets creates an empty arena.
func NewAssets() *Assets {
	return &Assets{}
}

// AddMesh stores m and labels it Mesh{n}.
func (a *Assets) AddMesh(m *mesh.Mesh) MeshHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.meshes = append(a.meshes, m)
	return MeshHandle(len(a.meshes))
}

// AddMaterial stores mat, labelling it Material{n}.
func (a *Assets) AddMaterial(mat Material) MaterialHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	mat.Label = fmt.Sprintf("Material%d", len(a.materials))
	a.materials = append(a.materials, mat)
	return MaterialHandle(len(a.materials))
}

// AddTexture stores tex, labelled by its path.
func (a *Assets) AddTexture(tex Texture) TextureHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	tex.Label = tex.Path
	a.textures = append(a.textures, tex)
	return TextureHandle(len(a.textures))
}

// Mesh returns the mesh for h.
func (a *Assets) Mesh(h MeshHandle) (*mesh.Mesh, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if h == 0 || int(h) > len(a.meshes) {
		return nil, false
	}
	return a.meshes[h-1], true
}

// MeshLabel returns the label of h, "" when invalid.
func (a *Assets) MeshLabel(h MeshHandle) string {
	if _, ok := a.Mesh(h); !ok {
		return ""
	}
	return fmt.Sprintf("Mesh%d", h-1)
}

// Material returns a copy of the material for h.
func (a *Assets) Material(h MaterialHandle) (Material, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if h == 0 || int(h) > len(a.materials) {
		return Material{}, false
	}
	return a.materials[h-1], true
}

// Texture returns a copy of the texture for h.
func (a *Assets) Texture(h TextureHandle) (Texture, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if h == 0 || int(h) > len(a.textures) {
		return Texture{}, false
	}
	return a.textures[h-1], true
}

// Counts returns how many meshes, materials and textures are stored.
func (a *Assets) Counts() (meshes, materials, textures int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.meshes), len(a.materials), len(a.textures)
}

// Scene is the result of loading a document in scene mode.
type Scene struct {
	Source   string
	Assets   *Assets
	Entities []Entity
}

// New creates an empty scene for the document at source.
func New(source string) *Scene {
	return &Scene{Source: source, Assets: NewAssets()}
}

// Spawn adds an entity and returns its index.
func (s *Scene) Spawn(e Entity) int {
	s.Entities = append(s.Entities, e)
	return len(s.Entities) - 1
}

// TriangleCount sums the triangles of every entity's mesh.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, e := range s.Entities {
		if m, ok := s.Assets.Mesh(e.Mesh); ok {
			n += m.TriangleCount()
		}
	}
	return n
}
