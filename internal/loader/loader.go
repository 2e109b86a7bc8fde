// Package loader drives the import pipeline: it reads an OBJ document
// through an asset source, assembles meshes and, in scene mode, resolves
// materials and textures into an asset arena.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objimport/internal/assets"
	"github.com/Faultbox/objimport/internal/logger"
	"github.com/Faultbox/objimport/internal/scene"
	"github.com/Faultbox/objimport/internal/texture"
	"github.com/Faultbox/objimport/pkg/encoding"
	"github.com/Faultbox/objimport/pkg/formats"
	"github.com/Faultbox/objimport/pkg/mesh"
)

// Extensions lists the file extensions the loader registers for.
var Extensions = []string{"obj", "OBJ"}

// CanLoad reports whether path has an .obj extension, in any case.
func CanLoad(p string) bool {
	return strings.EqualFold(path.Ext(encoding.NormalizePath(p)), ".obj")
}

// TextureDecoder inspects texture bytes. texture.Decoder is the default.
type TextureDecoder interface {
	Inspect(name string, data []byte) (texture.Info, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithTextureDecoder replaces the default texture decoder.
func WithTextureDecoder(d TextureDecoder) Option {
	return func(l *Loader) { l.decoder = d }
}

// Loader imports OBJ documents. It holds no per-document state, so one
// Loader may serve concurrent loads.
type Loader struct {
	src     assets.Source
	opts    Options
	log     *zap.Logger
	decoder TextureDecoder
}

// New creates a loader reading through src.
func New(src assets.Source, opts Options, options ...Option) *Loader {
	l := &Loader{
		src:     src,
		opts:    opts,
		log:     logger.Named("loader"),
		decoder: texture.Decoder{},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Options returns the loader's options.
func (l *Loader) Options() Options { return l.opts }

// read fetches bytes, reporting failures as *assets.IOError.
func (l *Loader) read(ctx context.Context, p string) ([]byte, error) {
	data, err := l.src.ReadFile(ctx, p)
	if err != nil {
		var ioErr *assets.IOError
		if errors.As(err, &ioErr) {
			return nil, err
		}
		return nil, &assets.IOError{Path: p, Err: err}
	}
	return data, nil
}

// Parse reads and parses the OBJ document at p.
func (l *Loader) Parse(ctx context.Context, p string) (*formats.OBJ, error) {
	p = encoding.NormalizePath(p)
	data, err := l.read(ctx, p)
	if err != nil {
		return nil, err
	}
	obj, err := formats.ParseOBJ(data, formats.OBJOptions{
		IgnorePoints: l.opts.IgnorePoints,
		IgnoreLines:  l.opts.IgnoreLines,
	})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p, err)
	}

	st := obj.Stats()
	l.log.Debug("parsed OBJ",
		zap.String("path", p),
		zap.Int("positions", st.Positions),
		zap.Int("normals", st.Normals),
		zap.Int("texcoords", st.TexCoords),
		zap.Int("faces", st.Faces),
		zap.Int("triangles", st.Triangles),
		zap.Strings("mtllib", obj.MaterialLibs))
	if len(obj.Skipped) > 0 {
		l.log.Warn("skipped unsupported statements", zap.String("path", p), zap.Any("keywords", obj.Skipped))
	}
	return obj, nil
}

// LoadMesh loads the document as one merged mesh. Materials are not
// resolved in mesh mode.
func (l *Loader) LoadMesh(ctx context.Context, p string) (*mesh.Mesh, error) {
	obj, err := l.Parse(ctx, p)
	if err != nil {
		return nil, err
	}
	opts := l.opts.Mesh
	opts.Split = mesh.SplitNone
	m := mesh.Build(obj, opts)[0]
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("assembling %s: %w", p, err)
	}
	return m, nil
}

// LoadStreams loads the document as meshes with one index stream per
// attribute, split according to the mesh options.
func (l *Loader) LoadStreams(ctx context.Context, p string) ([]*mesh.MultiIndexMesh, error) {
	obj, err := l.Parse(ctx, p)
	if err != nil {
		return nil, err
	}
	return mesh.BuildMultiIndex(obj, l.opts.Mesh), nil
}

// LoadScene loads the document as one entity per sub-mesh, each paired
// with its resolved material.
func (l *Loader) LoadScene(ctx context.Context, p string) (*scene.Scene, error) {
	p = encoding.NormalizePath(p)
	obj, err := l.Parse(ctx, p)
	if err != nil {
		return nil, err
	}

	opts := l.opts.Mesh
	if opts.Split == mesh.SplitNone {
		opts.Split = mesh.SplitMaterial
	}
	meshes := mesh.Build(obj, opts)

	var names []string
	seen := make(map[string]bool)
	for _, m := range meshes {
		if !seen[m.Material] {
			seen[m.Material] = true
			names = append(names, m.Material)
		}
	}

	r := &resolver{
		docPath: p,
		opts:    l.opts,
		read:    l.read,
		decoder: l.decoder,
		log:     l.log,
		cache:   newLibraryCache(l.read),
	}
	found, missing, err := r.resolveMaterials(ctx, obj.MaterialLibs, names)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := missing[name]; err != nil {
			if l.opts.MissingMaterial == MissingMaterialFail {
				return nil, err
			}
			l.log.Warn("substituting default material", zap.String("path", p), zap.Error(err))
		}
	}

	owners := textureOwners(names, found)
	textures, err := r.fetchTextures(ctx, owners)
	if err != nil {
		return nil, err
	}

	b := &sceneBuilder{
		scene:     scene.New(p),
		found:     found,
		textures:  textures,
		loadTex:   l.opts.LoadTextures,
		log:       l.log,
		materials: make(map[MaterialKey]scene.MaterialHandle),
		texHandle: make(map[string]scene.TextureHandle),
	}
	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("assembling %s: %w", p, err)
		}
		mh := b.scene.Assets.AddMesh(m)
		name := m.Name
		if name == "" {
			name = b.scene.Assets.MeshLabel(mh)
		}
		b.scene.Spawn(scene.Entity{Name: name, Mesh: mh, Material: b.material(m.Material)})
	}

	nMeshes, nMaterials, nTextures := b.scene.Assets.Counts()
	l.log.Debug("assembled scene",
		zap.String("path", p),
		zap.Int("entities", len(b.scene.Entities)),
		zap.Int("meshes", nMeshes),
		zap.Int("materials", nMaterials),
		zap.Int("textures", nTextures))
	return b.scene, nil
}

// textureOwners maps each distinct resolved texture path to the first
// material, in mesh order, that names it.
func textureOwners(names []string, found map[string]*resolvedMaterial) map[string]string {
	owners := make(map[string]string)
	for _, name := range names {
		rm := found[name]
		if rm == nil {
			continue
		}
		for _, p := range []string{rm.BaseColor, rm.NormalMap} {
			if p == "" {
				continue
			}
			if _, ok := owners[p]; !ok {
				owners[p] = name
			}
		}
	}
	return owners
}

// sceneBuilder adds materials and textures to the arena once per key.
type sceneBuilder struct {
	scene    *scene.Scene
	found    map[string]*resolvedMaterial
	textures map[string]textureResult
	loadTex  bool
	log      *zap.Logger

	materials  map[MaterialKey]scene.MaterialHandle
	texHandle  map[string]scene.TextureHandle
	substitute scene.MaterialHandle
}

// material returns the handle for a usemtl name, adding it on first use.
func (b *sceneBuilder) material(name string) scene.MaterialHandle {
	rm := b.found[name]
	if rm == nil {
		if name == "" {
			return b.keyed(MaterialKey{}, func() scene.Material { return scene.DefaultMaterial() })
		}
		if !b.substitute.IsValid() {
			mat := scene.DefaultMaterial()
			mat.Substitute = true
			b.substitute = b.scene.Assets.AddMaterial(mat)
		}
		return b.substitute
	}
	return b.keyed(rm.Key, func() scene.Material {
		mat := ConvertMaterial(rm.Source)
		mat.BaseColorTexture = b.texture(rm.BaseColor)
		mat.NormalMap = b.texture(rm.NormalMap)
		return mat
	})
}

func (b *sceneBuilder) keyed(key MaterialKey, build func() scene.Material) scene.MaterialHandle {
	if h, ok := b.materials[key]; ok {
		return h
	}
	h := b.scene.Assets.AddMaterial(build())
	b.materials[key] = h
	return h
}

// texture returns the handle for a resolved path. Textures that failed
// under the lenient policy are dropped with a warning.
func (b *sceneBuilder) texture(p string) scene.TextureHandle {
	if p == "" {
		return 0
	}
	if h, ok := b.texHandle[p]; ok {
		return h
	}
	tex := scene.Texture{Path: p}
	if b.loadTex {
		res, ok := b.textures[p]
		if !ok || res.Err != nil {
			if res.Err != nil {
				b.log.Warn("dropping texture", zap.Error(res.Err))
			}
			b.texHandle[p] = 0
			return 0
		}
		tex.Width, tex.Height = res.Info.Width, res.Info.Height
		tex.Format, tex.HasAlpha = res.Info.Format, res.Info.HasAlpha
		tex.Decoded = true
	}
	h := b.scene.Assets.AddTexture(tex)
	b.texHandle[p] = h
	return h
}
