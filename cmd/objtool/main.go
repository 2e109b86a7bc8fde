// objtool is a CLI utility for inspecting Wavefront OBJ and MTL files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objimport/internal/assets"
	"github.com/Faultbox/objimport/internal/config"
	"github.com/Faultbox/objimport/internal/loader"
	"github.com/Faultbox/objimport/internal/logger"
	"github.com/Faultbox/objimport/internal/scene"
	"github.com/Faultbox/objimport/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case "info":
		err = cmdInfo(ctx, args, os.Stdout)
	case "mesh":
		err = cmdMesh(ctx, args, os.Stdout)
	case "scene":
		err = cmdScene(ctx, args, os.Stdout)
	case "mtl":
		err = cmdMTL(args, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ/MTL utility

Usage:
  objtool <command> [options] <file>

Commands:
  info <file.obj>    Show element counts and referenced materials
  mesh <file.obj>    Load as one merged mesh and show its layout
  scene <file.obj>   Load as a scene with resolved materials
  mtl <file.mtl>     List the materials of a library

Options (info, mesh, scene):
  -config <path>           Config file (default: ./objimport.yaml)
  -root <dir>              Data root, repeatable (default: .)
  -split none|material|object
  -missing-material fail|default
  -force-normals           Always compute normals
  -flat-normals            Compute flat instead of smooth normals
  -no-textures             Resolve texture paths without reading them
  -yaml                    Print the summary as YAML
  -debug                   Enable debug logging

Examples:
  objtool info model.obj
  objtool scene -missing-material default -yaml model.obj
  objtool mtl model.mtl`)
}

// setup parses the shared flags and builds a loader over the data roots.
func setup(name string, args []string) (*loader.Loader, *flag.FlagSet, bool, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	asYAML := fs.Bool("yaml", false, "Print the summary as YAML")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return nil, nil, false, fmt.Errorf("usage: objtool %s [options] <file.obj>", name)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, false, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
		return nil, nil, false, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	opts, err := loader.OptionsFromConfig(cfg.Import)
	if err != nil {
		return nil, nil, false, err
	}

	mgr := assets.NewManager()
	for _, root := range cfg.Data.Roots {
		if err := mgr.AddDir(root); err != nil {
			return nil, nil, false, err
		}
	}
	return loader.New(mgr, opts, loader.WithLogger(logger.Named("objtool"))), fs, *asYAML, nil
}

type infoSummary struct {
	File      string           `yaml:"file"`
	Stats     formats.OBJStats `yaml:"stats"`
	Libraries []string         `yaml:"libraries,omitempty"`
	Materials []string         `yaml:"materials,omitempty"`
	Skipped   map[string]int   `yaml:"skipped,omitempty"`
}

func cmdInfo(ctx context.Context, args []string, w io.Writer) error {
	l, fs, asYAML, err := setup("info", args)
	if err != nil {
		return err
	}
	obj, err := l.Parse(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	s := infoSummary{
		File:      fs.Arg(0),
		Stats:     obj.Stats(),
		Libraries: obj.MaterialLibs,
		Materials: obj.MaterialNames(),
		Skipped:   obj.Skipped,
	}
	if asYAML {
		return writeYAML(w, s)
	}

	fmt.Fprintf(w, "File:       %s\n", s.File)
	fmt.Fprintf(w, "Positions:  %d\n", s.Stats.Positions)
	fmt.Fprintf(w, "Normals:    %d\n", s.Stats.Normals)
	fmt.Fprintf(w, "TexCoords:  %d\n", s.Stats.TexCoords)
	fmt.Fprintf(w, "Faces:      %d (%d triangles)\n", s.Stats.Faces, s.Stats.Triangles)
	fmt.Fprintf(w, "Polylines:  %d\n", s.Stats.Polylines)
	fmt.Fprintf(w, "Points:     %d\n", s.Stats.Points)
	for _, lib := range s.Libraries {
		fmt.Fprintf(w, "Library:    %s\n", lib)
	}
	if len(s.Materials) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Materials:")
		for _, m := range s.Materials {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	if len(s.Skipped) > 0 {
		keys := make([]string, 0, len(s.Skipped))
		for k := range s.Skipped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Skipped statements:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %-10s %d\n", k, s.Skipped[k])
		}
	}
	return nil
}

type meshSummary struct {
	File            string     `yaml:"file"`
	Vertices        int        `yaml:"vertices"`
	Triangles       int        `yaml:"triangles"`
	HasNormals      bool       `yaml:"has_normals"`
	NormalsComputed bool       `yaml:"normals_computed"`
	HasUVs          bool       `yaml:"has_uvs"`
	Min             [3]float32 `yaml:"min,flow"`
	Max             [3]float32 `yaml:"max,flow"`
}

func cmdMesh(ctx context.Context, args []string, w io.Writer) error {
	l, fs, asYAML, err := setup("mesh", args)
	if err != nil {
		return err
	}
	m, err := l.LoadMesh(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	b := m.Bounds()
	s := meshSummary{
		File:            fs.Arg(0),
		Vertices:        m.VertexCount(),
		Triangles:       m.TriangleCount(),
		HasNormals:      m.Normals != nil,
		NormalsComputed: m.NormalsComputed,
		HasUVs:          m.UVs != nil,
		Min:             b.Min,
		Max:             b.Max,
	}
	if asYAML {
		return writeYAML(w, s)
	}

	fmt.Fprintf(w, "File:       %s\n", s.File)
	fmt.Fprintf(w, "Vertices:   %d\n", s.Vertices)
	fmt.Fprintf(w, "Triangles:  %d\n", s.Triangles)
	fmt.Fprintf(w, "Normals:    %v (computed: %v)\n", s.HasNormals, s.NormalsComputed)
	fmt.Fprintf(w, "UVs:        %v\n", s.HasUVs)
	fmt.Fprintf(w, "Bounds:     %v - %v\n", s.Min, s.Max)
	return nil
}

type entitySummary struct {
	Name         string     `yaml:"name"`
	Mesh         string     `yaml:"mesh"`
	Triangles    int        `yaml:"triangles"`
	Material     string     `yaml:"material"`
	MaterialName string     `yaml:"material_name,omitempty"`
	BaseColor    [4]float32 `yaml:"base_color,flow"`
	Textures     []string   `yaml:"textures,omitempty"`
	Substitute   bool       `yaml:"substitute,omitempty"`
}

type sceneSummary struct {
	File     string          `yaml:"file"`
	Entities []entitySummary `yaml:"entities"`
}

func cmdScene(ctx context.Context, args []string, w io.Writer) error {
	l, fs, asYAML, err := setup("scene", args)
	if err != nil {
		return err
	}
	sc, err := l.LoadScene(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	s := sceneSummary{File: fs.Arg(0)}
	for _, e := range sc.Entities {
		es := entitySummary{Name: e.Name, Mesh: sc.Assets.MeshLabel(e.Mesh)}
		if m, ok := sc.Assets.Mesh(e.Mesh); ok {
			es.Triangles = m.TriangleCount()
		}
		if mat, ok := sc.Assets.Material(e.Material); ok {
			es.Material = mat.Label
			es.MaterialName = mat.Name
			es.BaseColor = mat.BaseColor
			es.Substitute = mat.Substitute
			for _, h := range []scene.TextureHandle{mat.BaseColorTexture, mat.NormalMap} {
				if tex, ok := sc.Assets.Texture(h); ok {
					es.Textures = append(es.Textures, tex.Label)
				}
			}
		}
		s.Entities = append(s.Entities, es)
	}
	if asYAML {
		return writeYAML(w, s)
	}

	fmt.Fprintf(w, "File:      %s\n", s.File)
	fmt.Fprintf(w, "Entities:  %d\n", len(s.Entities))
	fmt.Fprintln(w)
	for _, es := range s.Entities {
		name := es.MaterialName
		if es.Substitute {
			name = "(default)"
		}
		fmt.Fprintf(w, "  %-20s %-8s %6d tris  %s %s\n", es.Name, es.Mesh, es.Triangles, es.Material, name)
		for _, tex := range es.Textures {
			fmt.Fprintf(w, "    texture %s\n", tex)
		}
	}
	return nil
}

type mtlSummary struct {
	Name      string     `yaml:"name"`
	Diffuse   [3]float32 `yaml:"diffuse,flow"`
	Roughness float32    `yaml:"roughness"`
	Maps      []string   `yaml:"maps,omitempty"`
}

func cmdMTL(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("mtl", flag.ExitOnError)
	asYAML := fs.Bool("yaml", false, "Print the summary as YAML")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: objtool mtl [-yaml] <file.mtl>")
	}
	lib, err := formats.ParseMTLFile(fs.Arg(0))
	if err != nil {
		return err
	}

	var out []mtlSummary
	for _, name := range lib.Order {
		mat := lib.Materials[name]
		converted := loader.ConvertMaterial(mat)
		s := mtlSummary{
			Name:      name,
			Diffuse:   [3]float32(converted.BaseColor[:3]),
			Roughness: converted.Roughness,
		}
		maps := mat.TextureMaps()
		keys := make([]string, 0, len(maps))
		for k := range maps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.Maps = append(s.Maps, k+" "+maps[k].Path)
		}
		out = append(out, s)
	}
	if *asYAML {
		return writeYAML(w, out)
	}

	fmt.Fprintf(w, "Library:    %s\n", fs.Arg(0))
	fmt.Fprintf(w, "Materials:  %d\n", len(out))
	fmt.Fprintln(w)
	for _, s := range out {
		fmt.Fprintf(w, "  %-20s Kd %v  roughness %.3f\n", s.Name, s.Diffuse, s.Roughness)
		for _, m := range s.Maps {
			fmt.Fprintf(w, "    map %s\n", m)
		}
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		logger.Error("encoding summary", zap.Error(err))
		return err
	}
	return enc.Close()
}
