package config

import (
	"flag"
	"strings"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Flags holds the command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config          string
	debug           bool
	forceNormals    bool
	flatNormals     bool
	split           string
	missingMaterial string
	noTextures      bool
	roots           stringList
	logFormat       string
	logFile         string
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.forceNormals, "force-normals", false, "Discard source normals and compute them")
	fs.BoolVar(&f.flatNormals, "flat-normals", false, "Compute flat instead of smooth normals")
	fs.StringVar(&f.split, "split", "", "Mesh split mode: none, material, object")
	fs.StringVar(&f.missingMaterial, "missing-material", "", "Missing material policy: fail, default")
	fs.BoolVar(&f.noTextures, "no-textures", false, "Resolve texture paths without reading them")
	fs.Var(&f.roots, "root", "Data root directory (repeatable, last wins)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: console, json")
	fs.StringVar(&f.logFile, "log-file", "", "Also log to this file")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.config
}

// applyFlags applies flags set on the command line to the config.
// Flags left at their defaults do not override file values.
func (f *Flags) applyFlags(cfg *Config) {
	if f == nil {
		return
	}
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["debug"] && f.debug {
		cfg.Logging.Level = "debug"
	}
	if set["force-normals"] {
		cfg.Import.ForceComputeNormals = f.forceNormals
	}
	if set["flat-normals"] {
		cfg.Import.PreferFlatNormals = f.flatNormals
	}
	if set["split"] {
		cfg.Import.Split = f.split
	}
	if set["missing-material"] {
		cfg.Import.MissingMaterial = f.missingMaterial
	}
	if set["no-textures"] {
		cfg.Import.LoadTextures = !f.noTextures
	}
	if len(f.roots) > 0 {
		cfg.Data.Roots = append([]string(nil), f.roots...)
	}
	if set["log-format"] {
		cfg.Logging.Format = f.logFormat
	}
	if set["log-file"] {
		cfg.Logging.LogFile = f.logFile
	}
}
