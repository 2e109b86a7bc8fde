package formats

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NoIndex marks an attribute a vertex reference does not carry.
const NoIndex = -1

// VertexRef is one corner of a face: 0-based indices into the position,
// texcoord and normal pools. TexCoord and Normal may be NoIndex.
type VertexRef struct {
	Position int
	TexCoord int
	Normal   int
}

// HasTexCoord reports whether the reference names a texture coordinate.
func (r VertexRef) HasTexCoord() bool { return r.TexCoord != NoIndex }

// HasNormal reports whether the reference names a normal.
func (r VertexRef) HasNormal() bool { return r.Normal != NoIndex }

// OBJFace is a polygon as written in the source, before triangulation.
type OBJFace struct {
	Refs           []VertexRef
	Material       string // from the most recent usemtl, "" if none
	Group          string // from the most recent g
	Object         string // from the most recent o
	SmoothingGroup int    // from the most recent s, 0 = off
	Line           int
}

// OBJPolyline is an `l` element. TexCoords entries may be NoIndex.
type OBJPolyline struct {
	Positions []int
	TexCoords []int
	Material  string
	Line      int
}

// OBJPoint is a `p` element.
type OBJPoint struct {
	Positions []int
	Material  string
	Line      int
}

// OBJOptions controls which optional elements the parser keeps.
type OBJOptions struct {
	IgnorePoints bool // drop `p` elements
	IgnoreLines  bool // drop `l` elements
}

// OBJ represents a parsed Wavefront OBJ document.
type OBJ struct {
	Positions    [][3]float32 // `v`, w dropped
	Normals      [][3]float32 // `vn`
	TexCoords    [][2]float32 // `vt`, w dropped
	Faces        []OBJFace
	Polylines    []OBJPolyline
	Points       []OBJPoint
	MaterialLibs []string       // `mtllib` names in declaration order, unique
	Skipped      map[string]int // unsupported keywords and how often they appeared
}

// OBJStats summarises a parsed document.
type OBJStats struct {
	Positions int
	Normals   int
	TexCoords int
	Faces     int
	Triangles int
	Polylines int
	Points    int
	Materials int // distinct usemtl names referenced by faces
}

// Stats returns element counts for the document.
func (o *OBJ) Stats() OBJStats {
	st := OBJStats{
		Positions: len(o.Positions),
		Normals:   len(o.Normals),
		TexCoords: len(o.TexCoords),
		Faces:     len(o.Faces),
		Polylines: len(o.Polylines),
		Points:    len(o.Points),
	}
	names := make(map[string]struct{})
	for i := range o.Faces {
		st.Triangles += len(o.Faces[i].Refs) - 2
		if o.Faces[i].Material != "" {
			names[o.Faces[i].Material] = struct{}{}
		}
	}
	st.Materials = len(names)
	return st
}

// MaterialNames returns the distinct usemtl names in first-use order.
func (o *OBJ) MaterialNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range o.Faces {
		name := o.Faces[i].Material
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// objParser carries the per-line state of one document.
type objParser struct {
	obj      *OBJ
	opts     OBJOptions
	line     int
	keyword  string
	material string
	group    string
	object   string
	smooth   int
}

// ParseOBJ parses OBJ data from a byte slice.
func ParseOBJ(data []byte, opts OBJOptions) (*OBJ, error) {
	lx, err := NewLexer(data)
	if err != nil {
		return nil, err
	}

	p := &objParser{
		obj:  &OBJ{Skipped: make(map[string]int)},
		opts: opts,
	}
	for lx.Next() {
		if err := p.parseLine(lx.Line()); err != nil {
			return nil, err
		}
	}
	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string, opts OBJOptions) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data, opts)
}

func (p *objParser) parseLine(ln Line) error {
	p.line = ln.Number
	p.keyword = ln.Keyword
	switch ln.Keyword {
	case "v":
		v, err := parseFloats(ln, 3, 4)
		if err != nil {
			return err
		}
		p.obj.Positions = append(p.obj.Positions, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(ln, 3, 3)
		if err != nil {
			return err
		}
		p.obj.Normals = append(p.obj.Normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(ln, 1, 3)
		if err != nil {
			return err
		}
		var uv [2]float32
		copy(uv[:], v)
		p.obj.TexCoords = append(p.obj.TexCoords, uv)
	case "f":
		return p.parseFace(ln)
	case "l":
		if p.opts.IgnoreLines {
			return nil
		}
		return p.parsePolyline(ln)
	case "p":
		if p.opts.IgnorePoints {
			return nil
		}
		return p.parsePoint(ln)
	case "usemtl":
		p.material = ln.Raw
	case "mtllib":
		p.addMaterialLibs(ln.Args)
	case "g":
		p.group = strings.Join(ln.Args, " ")
	case "o":
		p.object = ln.Raw
	case "s":
		p.smooth = parseSmoothingGroup(ln.Args)
	default:
		p.obj.Skipped[ln.Keyword]++
	}
	return nil
}

func (p *objParser) addMaterialLibs(names []string) {
	for _, name := range names {
		dup := false
		for _, existing := range p.obj.MaterialLibs {
			if existing == name {
				dup = true
				break
			}
		}
		if !dup {
			p.obj.MaterialLibs = append(p.obj.MaterialLibs, name)
		}
	}
}

// parseFace parses:
// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (p *objParser) parseFace(ln Line) error {
	if len(ln.Args) < 3 {
		return &MalformedFaceError{Line: ln.Number, Reason: fmt.Sprintf("%d vertices, need at least 3", len(ln.Args))}
	}

	face := OBJFace{
		Refs:           make([]VertexRef, len(ln.Args)),
		Material:       p.material,
		Group:          p.group,
		Object:         p.object,
		SmoothingGroup: p.smooth,
		Line:           ln.Number,
	}
	for i, tok := range ln.Args {
		ref, err := p.parseRef(tok)
		if err != nil {
			return err
		}
		face.Refs[i] = ref
	}
	p.obj.Faces = append(p.obj.Faces, face)
	return nil
}

// parseRef parses one p, p/t, p//n or p/t/n reference.
func (p *objParser) parseRef(tok string) (VertexRef, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return VertexRef{}, &MalformedFaceError{Line: p.line, Reason: fmt.Sprintf("reference %q has more than 3 components", tok)}
	}
	if parts[0] == "" {
		return VertexRef{}, &MalformedFaceError{Line: p.line, Reason: fmt.Sprintf("reference %q has no position", tok)}
	}

	ref := VertexRef{TexCoord: NoIndex, Normal: NoIndex}
	var err error
	if ref.Position, err = p.resolve(parts[0], "position", len(p.obj.Positions)); err != nil {
		return VertexRef{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if ref.TexCoord, err = p.resolve(parts[1], "texcoord", len(p.obj.TexCoords)); err != nil {
			return VertexRef{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if ref.Normal, err = p.resolve(parts[2], "normal", len(p.obj.Normals)); err != nil {
			return VertexRef{}, err
		}
	}
	return ref, nil
}

// resolve converts a 1-based or negative (relative to the pool end) index
// into a 0-based index and checks it against the pool.
func (p *objParser) resolve(tok, pool string, size int) (int, error) {
	val, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &NumericParseError{Line: p.line, Keyword: p.keyword, Token: tok, Err: err}
	}
	if val == 0 {
		return 0, &MalformedFaceError{Line: p.line, Reason: pool + " index 0 is not valid"}
	}

	idx := val - 1
	if val < 0 {
		idx = size + val
	}
	if idx < 0 || idx >= size {
		return 0, &IndexOutOfRangeError{Line: p.line, Pool: pool, Index: val, Size: size}
	}
	return idx, nil
}

// parsePolyline parses:
// l v1[/vt1] v2[/vt2] ...
func (p *objParser) parsePolyline(ln Line) error {
	pl := OBJPolyline{Material: p.material, Line: ln.Number}
	for _, tok := range ln.Args {
		pos, tex, _ := strings.Cut(tok, "/")
		pi, err := p.resolve(pos, "position", len(p.obj.Positions))
		if err != nil {
			return err
		}
		ti := NoIndex
		if tex != "" {
			if ti, err = p.resolve(tex, "texcoord", len(p.obj.TexCoords)); err != nil {
				return err
			}
		}
		pl.Positions = append(pl.Positions, pi)
		pl.TexCoords = append(pl.TexCoords, ti)
	}
	p.obj.Polylines = append(p.obj.Polylines, pl)
	return nil
}

// parsePoint parses:
// p v1 v2 ...
func (p *objParser) parsePoint(ln Line) error {
	pt := OBJPoint{Material: p.material, Line: ln.Number}
	for _, tok := range ln.Args {
		pi, err := p.resolve(tok, "position", len(p.obj.Positions))
		if err != nil {
			return err
		}
		pt.Positions = append(pt.Positions, pi)
	}
	p.obj.Points = append(p.obj.Points, pt)
	return nil
}

// parseSmoothingGroup reads `s off`, `s 0` or `s <n>`. Anything else
// switches smoothing off; groups are informational only.
func parseSmoothingGroup(args []string) int {
	if len(args) == 0 || args[0] == "off" {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseFloats parses between minArgs and maxArgs numeric arguments.
// Arguments beyond maxArgs are ignored.
func parseFloats(ln Line, minArgs, maxArgs int) ([]float32, error) {
	if len(ln.Args) < minArgs {
		return nil, &NumericParseError{
			Line:    ln.Number,
			Keyword: ln.Keyword,
			Err:     fmt.Errorf("expected at least %d values, got %d", minArgs, len(ln.Args)),
		}
	}
	n := len(ln.Args)
	if n > maxArgs {
		n = maxArgs
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		val, err := strconv.ParseFloat(ln.Args[i], 32)
		if err != nil {
			return nil, &NumericParseError{Line: ln.Number, Keyword: ln.Keyword, Token: ln.Args[i], Err: err}
		}
		out[i] = float32(val)
	}
	return out, nil
}
