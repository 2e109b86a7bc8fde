package loader

import (
	"fmt"
	"strings"

	"github.com/Faultbox/objimport/internal/config"
	"github.com/Faultbox/objimport/pkg/mesh"
)

// MissingMaterialPolicy decides what happens when a material or one of its
// textures cannot be resolved.
type MissingMaterialPolicy int

const (
	// MissingMaterialFail aborts the load with the resolution error.
	MissingMaterialFail MissingMaterialPolicy = iota
	// MissingMaterialDefault substitutes the default material (or drops the
	// texture), logs a warning and keeps all geometry.
	MissingMaterialDefault
)

// String returns the config spelling of the policy.
func (p MissingMaterialPolicy) String() string {
	switch p {
	case MissingMaterialFail:
		return "fail"
	case MissingMaterialDefault:
		return "default"
	default:
		return fmt.Sprintf("MissingMaterialPolicy(%d)", int(p))
	}
}

// ParseMissingMaterialPolicy parses "fail" or "default".
func ParseMissingMaterialPolicy(s string) (MissingMaterialPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "":
		return MissingMaterialFail, nil
	case "default":
		return MissingMaterialDefault, nil
	default:
		return MissingMaterialFail, fmt.Errorf("unknown missing material policy %q", s)
	}
}

// Options controls a Loader.
type Options struct {
	Mesh mesh.Options

	// SingleIndex selects one index per distinct attribute combination.
	// LoadMesh and LoadScene always produce single-index meshes; when false,
	// callers use LoadStreams for per-attribute index streams.
	SingleIndex  bool
	IgnorePoints bool
	IgnoreLines  bool

	MissingMaterial MissingMaterialPolicy
	// LoadTextures reads and decodes every referenced texture. When false,
	// texture paths are resolved but never fetched.
	LoadTextures   bool
	MaxConcurrency int
}

// DefaultOptions returns the strict, triangulating defaults.
func DefaultOptions() Options {
	return Options{
		Mesh:           mesh.DefaultOptions(),
		SingleIndex:    true,
		IgnorePoints:   true,
		IgnoreLines:    true,
		LoadTextures:   true,
		MaxConcurrency: 8,
	}
}

// OptionsFromConfig converts the import section of a config file.
func OptionsFromConfig(cfg config.ImportConfig) (Options, error) {
	split, err := mesh.ParseSplitMode(cfg.Split)
	if err != nil {
		return Options{}, err
	}
	policy, err := ParseMissingMaterialPolicy(cfg.MissingMaterial)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mesh: mesh.Options{
			ForceComputeNormals: cfg.ForceComputeNormals,
			PreferFlatNormals:   cfg.PreferFlatNormals,
			Triangulate:         cfg.Triangulate,
			Split:               split,
		},
		SingleIndex:     cfg.SingleIndex,
		IgnorePoints:    cfg.IgnorePoints,
		IgnoreLines:     cfg.IgnoreLines,
		MissingMaterial: policy,
		LoadTextures:    cfg.LoadTextures,
		MaxConcurrency:  cfg.MaxConcurrency,
	}, nil
}

func (o Options) concurrency() int {
	if o.MaxConcurrency < 1 {
		return 1
	}
	return o.MaxConcurrency
}
