package scene

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/objimport/pkg/mesh"
)

func TestAssets_Handles(t *testing.T) {
	a := NewAssets()

	var zero MeshHandle
	assert.False(t, zero.IsValid())
	_, ok := a.Mesh(zero)
	assert.False(t, ok)

	m0 := &mesh.Mesh{Name: "a"}
	m1 := &mesh.Mesh{Name: "b"}
	h0 := a.AddMesh(m0)
	h1 := a.AddMesh(m1)
	assert.True(t, h0.IsValid())
	assert.NotEqual(t, h0, h1)

	got, ok := a.Mesh(h1)
	require.True(t, ok)
	assert.Same(t, m1, got)
	assert.Equal(t, "Mesh0", a.MeshLabel(h0))
	assert.Equal(t, "Mesh1", a.MeshLabel(h1))
	assert.Equal(t, "", a.MeshLabel(MeshHandle(99)))

	mh := a.AddMaterial(Material{Name: "Red"})
	mat, ok := a.Material(mh)
	require.True(t, ok)
	assert.Equal(t, "Material0", mat.Label)
	assert.Equal(t, "Red", mat.Name)
	_, ok = a.Material(MaterialHandle(5))
	assert.False(t, ok)

	th := a.AddTexture(Texture{Path: "tex/wood.png"})
	tex, ok := a.Texture(th)
	require.True(t, ok)
	assert.Equal(t, "tex/wood.png", tex.Label)

	meshes, materials, textures := a.Counts()
	assert.Equal(t, [3]int{2, 1, 1}, [3]int{meshes, materials, textures})
}

func TestAssets_ConcurrentAdd(t *testing.T) {
	a := NewAssets()
	var wg sync.WaitGroup
	handles := make([]TextureHandle, 50)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = a.AddTexture(Texture{Path: "t.png"})
		}(i)
	}
	wg.Wait()

	seen := make(map[TextureHandle]bool)
	for _, h := range handles {
		assert.False(t, seen[h])
		seen[h] = true
	}
	_, _, n := a.Counts()
	assert.Equal(t, 50, n)
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor)
	assert.Equal(t, float32(0.5), m.Roughness)
	assert.Zero(t, m.Metallic)
	assert.False(t, m.AlphaBlend)
}

func TestScene_Spawn(t *testing.T) {
	s := New("models/house.obj")
	mh := s.Assets.AddMesh(&mesh.Mesh{Indices: []uint32{0, 1, 2, 0, 2, 3}, Positions: make([][3]float32, 4)})
	mat := s.Assets.AddMaterial(DefaultMaterial())

	assert.Equal(t, 0, s.Spawn(Entity{Name: "body", Mesh: mh, Material: mat}))
	assert.Equal(t, 1, s.Spawn(Entity{Name: "ghost"}))
	assert.Equal(t, 2, s.TriangleCount())
}
