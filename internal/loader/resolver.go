package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/objimport/internal/texture"
	"github.com/Faultbox/objimport/pkg/encoding"
	"github.com/Faultbox/objimport/pkg/formats"
)

// MaterialKey identifies one resolved material request. The zero key
// stands for the default material.
type MaterialKey struct {
	Library string
	Name    string
}

// libraryCache parses each material library at most once per document
// load. Concurrent requests for the same path share one fetch.
type libraryCache struct {
	read  func(ctx context.Context, path string) ([]byte, error)
	group singleflight.Group

	mu   sync.Mutex
	libs map[string]libraryResult

	parses atomic.Int32
}

type libraryResult struct {
	mtl *formats.MTL
	err error
}

func newLibraryCache(read func(context.Context, string) ([]byte, error)) *libraryCache {
	return &libraryCache{read: read, libs: make(map[string]libraryResult)}
}

// load returns the parsed library at path. Failures are cached too.
func (c *libraryCache) load(ctx context.Context, path string) (*formats.MTL, error) {
	c.mu.Lock()
	res, ok := c.libs[path]
	c.mu.Unlock()
	if ok {
		return res.mtl, res.err
	}

	v, _, _ := c.group.Do(path, func() (any, error) {
		c.mu.Lock()
		if res, ok := c.libs[path]; ok {
			c.mu.Unlock()
			return res, nil
		}
		c.mu.Unlock()

		var res libraryResult
		data, err := c.read(ctx, path)
		if err != nil {
			res.err = err
		} else {
			c.parses.Add(1)
			res.mtl, res.err = formats.ParseMTL(data)
			if res.err != nil {
				res.err = fmt.Errorf("parsing %s: %w", path, res.err)
			}
		}

		c.mu.Lock()
		c.libs[path] = res
		c.mu.Unlock()
		return res, nil
	})
	res = v.(libraryResult)
	return res.mtl, res.err
}

// resolvedMaterial is a material found in a library, with its texture
// references resolved against that library's location.
type resolvedMaterial struct {
	Key       MaterialKey
	Source    *formats.MTLMaterial
	BaseColor string // resolved map_Kd path, "" if none
	NormalMap string // resolved map_Bump path, "" if none
}

// textureResult is the outcome of fetching one texture path.
type textureResult struct {
	Info texture.Info
	Err  error
}

// resolver serves one document load.
type resolver struct {
	docPath string
	opts    Options
	read    func(ctx context.Context, path string) ([]byte, error)
	decoder TextureDecoder
	log     *zap.Logger
	cache   *libraryCache
}

// libraries resolves mtllib names against the OBJ document's directory.
func (r *resolver) libraries(names []string) []string {
	var libs []string
	seen := make(map[string]bool)
	for _, name := range names {
		p := encoding.Sibling(r.docPath, name)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		libs = append(libs, p)
	}
	return libs
}

// fetchLibraries loads every library concurrently. Individual failures are
// kept in the cache and reported per material; only cancellation aborts.
func (r *resolver) fetchLibraries(ctx context.Context, libs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.concurrency())
	for _, lib := range libs {
		g.Go(func() error {
			if _, err := r.cache.load(gctx, lib); err != nil {
				r.log.Warn("material library unavailable", zap.String("library", lib), zap.Error(err))
			}
			return ctx.Err()
		})
	}
	return g.Wait()
}

// resolveMaterials looks up each name in the libraries in declaration
// order; the first library defining it wins. Names that cannot be found
// are returned as errors keyed by name.
func (r *resolver) resolveMaterials(ctx context.Context, objLibs, names []string) (map[string]*resolvedMaterial, map[string]error, error) {
	libs := r.libraries(objLibs)
	if err := r.fetchLibraries(ctx, libs); err != nil {
		return nil, nil, err
	}

	found := make(map[string]*resolvedMaterial)
	missing := make(map[string]error)
	for _, name := range names {
		if name == "" {
			continue
		}
		var failedLib string
		var libErr error
		for _, lib := range libs {
			mtl, err := r.cache.load(ctx, lib)
			if err != nil {
				if libErr == nil {
					failedLib, libErr = lib, err
				}
				continue
			}
			if m, ok := mtl.Material(name); ok {
				found[name] = r.resolveTextures(lib, m)
				break
			}
		}
		if found[name] != nil {
			continue
		}
		if libErr != nil {
			missing[name] = &MaterialLoadError{Library: failedLib, Material: name, Err: libErr}
		} else {
			missing[name] = &MaterialLoadError{Library: strings.Join(libs, ", "), Material: name, Err: ErrMaterialNotFound}
		}
	}
	return found, missing, nil
}

func (r *resolver) resolveTextures(lib string, m *formats.MTLMaterial) *resolvedMaterial {
	rm := &resolvedMaterial{Key: MaterialKey{Library: lib, Name: m.Name}, Source: m}
	if m.DiffuseMap != nil {
		rm.BaseColor = encoding.Sibling(lib, m.DiffuseMap.Path)
	}
	if m.NormalMap != nil {
		rm.NormalMap = encoding.Sibling(lib, m.NormalMap.Path)
	}
	return rm
}

// fetchTextures reads and decodes each distinct path concurrently. Under
// the strict policy the first failure cancels the rest and is returned.
func (r *resolver) fetchTextures(ctx context.Context, owners map[string]string) (map[string]textureResult, error) {
	results := make(map[string]textureResult, len(owners))
	if !r.opts.LoadTextures || len(owners) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.concurrency())
	for path, material := range owners {
		g.Go(func() error {
			var res textureResult
			data, err := r.read(gctx, path)
			if err == nil {
				res.Info, err = r.decoder.Inspect(path, data)
			}
			if err != nil {
				res.Err = &TextureResolutionError{Material: material, Path: path, Err: err}
				if r.opts.MissingMaterial == MissingMaterialFail {
					return res.Err
				}
			}
			mu.Lock()
			results[path] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
