package formats

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ColorSpace tags how the three components of a Color are to be read.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = 0 // Kd r g b
	ColorSpaceXYZ ColorSpace = 1 // Kd xyz x y z (CIE XYZ)
)

// String returns a human-readable color space name.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceRGB:
		return "RGB"
	case ColorSpaceXYZ:
		return "XYZ"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Color is a material color as written in the library.
type Color struct {
	Values [3]float32
	Space  ColorSpace
}

// MapOption is one `-name value...` flag preceding a texture filename.
type MapOption struct {
	Name   string // without the leading '-'
	Values []string
}

// TextureMap references an image file from a material.
type TextureMap struct {
	Path    string // filename as written, relative to the MTL document
	Options []MapOption
}

// Option returns the named option, e.g. "bm" or "imfchan".
func (m *TextureMap) Option(name string) (MapOption, bool) {
	for _, opt := range m.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return MapOption{}, false
}

// BumpMultiplier returns the -bm value, 1 when absent or malformed.
func (m *TextureMap) BumpMultiplier() float32 {
	opt, ok := m.Option("bm")
	if !ok || len(opt.Values) == 0 {
		return 1
	}
	v, err := strconv.ParseFloat(opt.Values[0], 32)
	if err != nil {
		return 1
	}
	return float32(v)
}

// MTLMaterial is one `newmtl` record. Unset parameters are nil.
type MTLMaterial struct {
	Name string

	Ambient  *Color // Ka
	Diffuse  *Color // Kd
	Specular *Color // Ks
	Emissive *Color // Ke

	Shininess      *float32 // Ns
	OpticalDensity *float32 // Ni
	Dissolve       *float32 // d, or 1 - Tr
	Illum          *int     // illum

	// PBR extension parameters.
	Roughness          *float32 // Pr
	Metallic           *float32 // Pm
	Clearcoat          *float32 // Pc
	ClearcoatRoughness *float32 // Pcr
	Anisotropy         *float32 // aniso
	AnisotropyRotation *float32 // anisor

	AmbientMap   *TextureMap // map_Ka
	DiffuseMap   *TextureMap // map_Kd
	SpecularMap  *TextureMap // map_Ks
	EmissiveMap  *TextureMap // map_Ke
	ShininessMap *TextureMap // map_Ns
	NormalMap    *TextureMap // map_Bump, bump, norm
	DissolveMap  *TextureMap // map_d
	RoughnessMap *TextureMap // map_Pr
	MetallicMap  *TextureMap // map_Pm
}

// TextureMaps returns the map references that are set, keyed by keyword.
func (m *MTLMaterial) TextureMaps() map[string]*TextureMap {
	maps := make(map[string]*TextureMap)
	for key, tm := range map[string]*TextureMap{
		"map_Ka":   m.AmbientMap,
		"map_Kd":   m.DiffuseMap,
		"map_Ks":   m.SpecularMap,
		"map_Ke":   m.EmissiveMap,
		"map_Ns":   m.ShininessMap,
		"map_Bump": m.NormalMap,
		"map_d":    m.DissolveMap,
		"map_Pr":   m.RoughnessMap,
		"map_Pm":   m.MetallicMap,
	} {
		if tm != nil {
			maps[key] = tm
		}
	}
	return maps
}

// MTL represents a parsed material library.
type MTL struct {
	Materials map[string]*MTLMaterial
	Order     []string       // material names in order of first definition
	Skipped   map[string]int // unsupported keywords
}

// Material looks up a material by name.
func (m *MTL) Material(name string) (*MTLMaterial, bool) {
	mat, ok := m.Materials[name]
	return mat, ok
}

// ParseMTL parses MTL data from a byte slice.
func ParseMTL(data []byte) (*MTL, error) {
	lx, err := NewLexer(data)
	if err != nil {
		return nil, err
	}

	mtl := &MTL{
		Materials: make(map[string]*MTLMaterial),
		Skipped:   make(map[string]int),
	}
	var cur *MTLMaterial
	for lx.Next() {
		ln := lx.Line()
		if ln.Keyword == "newmtl" {
			cur = &MTLMaterial{Name: ln.Raw}
			if _, exists := mtl.Materials[cur.Name]; !exists {
				mtl.Order = append(mtl.Order, cur.Name)
			}
			mtl.Materials[cur.Name] = cur
			continue
		}
		if cur == nil {
			// Statements before the first newmtl have nothing to apply to.
			mtl.Skipped[ln.Keyword]++
			continue
		}
		if err := parseMTLStatement(cur, ln, mtl.Skipped); err != nil {
			return nil, err
		}
	}
	return mtl, nil
}

// ParseMTLFile parses an MTL file from disk.
func ParseMTLFile(path string) (*MTL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	return ParseMTL(data)
}

func parseMTLStatement(mat *MTLMaterial, ln Line, skipped map[string]int) error {
	if len(ln.Args) > 0 && ln.Args[0] == "spectral" {
		skipped[ln.Keyword+" spectral"]++
		return nil
	}

	var err error
	switch ln.Keyword {
	case "Ka":
		mat.Ambient, err = parseColor(ln)
	case "Kd":
		mat.Diffuse, err = parseColor(ln)
	case "Ks":
		mat.Specular, err = parseColor(ln)
	case "Ke":
		mat.Emissive, err = parseColor(ln)
	case "Ns":
		mat.Shininess, err = parseScalar(ln)
	case "Ni":
		mat.OpticalDensity, err = parseScalar(ln)
	case "d":
		mat.Dissolve, err = parseScalar(ln)
	case "Tr":
		var tr *float32
		if tr, err = parseScalar(ln); err == nil {
			d := 1 - *tr
			mat.Dissolve = &d
		}
	case "illum":
		var v *float32
		if v, err = parseScalar(ln); err == nil {
			illum := int(*v)
			mat.Illum = &illum
		}
	case "Pr":
		mat.Roughness, err = parseScalar(ln)
	case "Pm":
		mat.Metallic, err = parseScalar(ln)
	case "Pc":
		mat.Clearcoat, err = parseScalar(ln)
	case "Pcr":
		mat.ClearcoatRoughness, err = parseScalar(ln)
	case "aniso":
		mat.Anisotropy, err = parseScalar(ln)
	case "anisor":
		mat.AnisotropyRotation, err = parseScalar(ln)
	case "map_Ka":
		mat.AmbientMap = parseTextureMap(ln.Args)
	case "map_Kd":
		mat.DiffuseMap = parseTextureMap(ln.Args)
	case "map_Ks":
		mat.SpecularMap = parseTextureMap(ln.Args)
	case "map_Ke":
		mat.EmissiveMap = parseTextureMap(ln.Args)
	case "map_Ns":
		mat.ShininessMap = parseTextureMap(ln.Args)
	case "map_Bump", "map_bump", "bump", "norm":
		mat.NormalMap = parseTextureMap(ln.Args)
	case "map_d":
		mat.DissolveMap = parseTextureMap(ln.Args)
	case "map_Pr":
		mat.RoughnessMap = parseTextureMap(ln.Args)
	case "map_Pm":
		mat.MetallicMap = parseTextureMap(ln.Args)
	default:
		skipped[ln.Keyword]++
	}
	return err
}

// parseColor parses:
// K? r [g b]
// K? xyz x [y z]
// A single component is replicated to all three.
func parseColor(ln Line) (*Color, error) {
	c := &Color{Space: ColorSpaceRGB}
	args := ln.Args
	if len(args) > 0 && args[0] == "xyz" {
		c.Space = ColorSpaceXYZ
		args = args[1:]
	}
	vals, err := parseFloats(Line{Number: ln.Number, Keyword: ln.Keyword, Args: args}, 1, 3)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 3:
		copy(c.Values[:], vals)
	case 1:
		c.Values = [3]float32{vals[0], vals[0], vals[0]}
	default:
		return nil, &NumericParseError{
			Line:    ln.Number,
			Keyword: ln.Keyword,
			Err:     fmt.Errorf("expected 1 or 3 color components, got %d", len(vals)),
		}
	}
	return c, nil
}

func parseScalar(ln Line) (*float32, error) {
	vals, err := parseFloats(ln, 1, 1)
	if err != nil {
		return nil, err
	}
	return &vals[0], nil
}

// parseTextureMap parses:
// map_?? [-opt value...]... filename with spaces
// Returns nil when no filename remains after the options.
func parseTextureMap(args []string) *TextureMap {
	tm := &TextureMap{}
	i := 0
	for i < len(args) && isOptionName(args[i]) {
		opt := MapOption{Name: args[i][1:]}
		i++
		// The last token is always kept for the filename.
		for i < len(args)-1 && isOptionValue(args[i]) {
			opt.Values = append(opt.Values, args[i])
			i++
		}
		tm.Options = append(tm.Options, opt)
	}
	if i >= len(args) {
		return nil
	}
	tm.Path = strings.Join(args[i:], " ")
	return tm
}

// isOptionName reports tokens like -bm or -imfchan. Negative numbers are values.
func isOptionName(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err != nil
}

// isOptionValue reports numeric tokens, on/off and single characters.
func isOptionValue(tok string) bool {
	if tok == "on" || tok == "off" || len(tok) == 1 {
		return true
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}
