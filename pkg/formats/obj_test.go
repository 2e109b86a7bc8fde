package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# minimal quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestParseOBJ_Quad(t *testing.T) {
	obj, err := ParseOBJ([]byte(quadOBJ), OBJOptions{})
	require.NoError(t, err)

	assert.Len(t, obj.Positions, 4)
	assert.Empty(t, obj.Normals)
	assert.Empty(t, obj.TexCoords)
	require.Len(t, obj.Faces, 1)
	assert.Len(t, obj.Faces[0].Refs, 4)
	assert.Equal(t, 6, obj.Faces[0].Line)

	st := obj.Stats()
	assert.Equal(t, 1, st.Faces)
	assert.Equal(t, 2, st.Triangles)
}

func TestParseOBJ_FaceReferenceForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 1
vn 0 0 1
vn 0 1 0
vn 1 0 0
f 1/2/3 -1//2 4//
`
	obj, err := ParseOBJ([]byte(src), OBJOptions{})
	require.NoError(t, err)
	require.Len(t, obj.Faces, 1)

	want := []VertexRef{
		{Position: 0, TexCoord: 1, Normal: 2},
		{Position: 3, TexCoord: NoIndex, Normal: 1},
		{Position: 3, TexCoord: NoIndex, Normal: NoIndex},
	}
	assert.Equal(t, want, obj.Faces[0].Refs)
}

func TestParseOBJ_AllSeparatorForms(t *testing.T) {
	tests := []struct {
		name string
		face string
		want VertexRef
	}{
		{"position", "f 1 1 1", VertexRef{0, NoIndex, NoIndex}},
		{"position/texcoord", "f 1/1 1/1 1/1", VertexRef{0, 0, NoIndex}},
		{"position//normal", "f 1//1 1//1 1//1", VertexRef{0, NoIndex, 0}},
		{"position/texcoord/normal", "f 1/1/1 1/1/1 1/1/1", VertexRef{0, 0, 0}},
		{"negative", "f -1/-1/-1 -1/-1/-1 -1/-1/-1", VertexRef{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "v 0 0 0\nvt 0 0\nvn 0 0 1\n" + tt.face + "\n"
			obj, err := ParseOBJ([]byte(src), OBJOptions{})
			require.NoError(t, err)
			require.Len(t, obj.Faces, 1)
			assert.Equal(t, tt.want, obj.Faces[0].Refs[0])
		})
	}
}

func TestParseOBJ_NegativeIndexIsRelativeToCurrentPool(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 5 5 5
f -4 -3 -1
`
	obj, err := ParseOBJ([]byte(src), OBJOptions{})
	require.NoError(t, err)
	require.Len(t, obj.Faces, 2)
	assert.Equal(t, 0, obj.Faces[0].Refs[0].Position)
	assert.Equal(t, 2, obj.Faces[0].Refs[2].Position)
	assert.Equal(t, 0, obj.Faces[1].Refs[0].Position)
	assert.Equal(t, 3, obj.Faces[1].Refs[2].Position)
}

func TestParseOBJ_IgnoresW(t *testing.T) {
	obj, err := ParseOBJ([]byte("v 1 2 3 0.5\nvt 0.25 0.75 1\nvt 0.5\n"), OBJOptions{})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 2, 3}, obj.Positions[0])
	assert.Equal(t, [2]float32{0.25, 0.75}, obj.TexCoords[0])
	assert.Equal(t, [2]float32{0.5, 0}, obj.TexCoords[1])
}

func TestParseOBJ_Context(t *testing.T) {
	src := `mtllib a.mtl b.mtl
mtllib a.mtl c.mtl
v 0 0 0
v 1 0 0
v 0 1 0
o Body
g left arm
usemtl Red
s 1
f 1 2 3
usemtl Blue Steel
s off
f 1 2 3
`
	obj, err := ParseOBJ([]byte(src), OBJOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.mtl", "b.mtl", "c.mtl"}, obj.MaterialLibs)
	require.Len(t, obj.Faces, 2)

	f0 := obj.Faces[0]
	assert.Equal(t, "Red", f0.Material)
	assert.Equal(t, "left arm", f0.Group)
	assert.Equal(t, "Body", f0.Object)
	assert.Equal(t, 1, f0.SmoothingGroup)

	f1 := obj.Faces[1]
	assert.Equal(t, "Blue Steel", f1.Material)
	assert.Equal(t, 0, f1.SmoothingGroup)

	assert.Equal(t, []string{"Red", "Blue Steel"}, obj.MaterialNames())
	assert.Equal(t, 2, obj.Stats().Materials)
}

func TestParseOBJ_UnknownKeywordsSkipped(t *testing.T) {
	src := `v 0 0 0
vp 0.5 0.5
cstype bspline
deg 3
curv 0 1 1
v 1 0 0
v 0 1 0
f 1 2 3
`
	obj, err := ParseOBJ([]byte(src), OBJOptions{})
	require.NoError(t, err)
	assert.Len(t, obj.Faces, 1)
	assert.Equal(t, 1, obj.Skipped["vp"])
	assert.Equal(t, 1, obj.Skipped["cstype"])
	assert.Equal(t, 1, obj.Skipped["curv"])
}

func TestParseOBJ_LinesAndPoints(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nvt 0 0\nl 1/1 2\np 1 2\n"

	obj, err := ParseOBJ([]byte(src), OBJOptions{})
	require.NoError(t, err)
	require.Len(t, obj.Polylines, 1)
	assert.Equal(t, []int{0, 1}, obj.Polylines[0].Positions)
	assert.Equal(t, []int{0, NoIndex}, obj.Polylines[0].TexCoords)
	require.Len(t, obj.Points, 1)
	assert.Equal(t, []int{0, 1}, obj.Points[0].Positions)

	obj, err = ParseOBJ([]byte(src), OBJOptions{IgnoreLines: true, IgnorePoints: true})
	require.NoError(t, err)
	assert.Empty(t, obj.Polylines)
	assert.Empty(t, obj.Points)
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
		line     int
	}{
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrMalformedFace, 3},
		{"zero index", "v 0 0 0\nf 0 1 1\n", ErrMalformedFace, 2},
		{"empty position", "v 0 0 0\nf 1 /1 1\n", ErrMalformedFace, 2},
		{"four components", "v 0 0 0\nf 1/1/1/1 1 1\n", ErrMalformedFace, 2},
		{"position out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", ErrIndexOutOfRange, 3},
		{"negative out of range", "v 0 0 0\nf -2 1 1\n", ErrIndexOutOfRange, 2},
		{"normal out of range", "v 0 0 0\nvn 0 0 1\nf 1//2 1//1 1//1\n", ErrIndexOutOfRange, 3},
		{"texcoord out of range", "v 0 0 0\nf 1/1 1 1\n", ErrIndexOutOfRange, 2},
		{"bad float", "v 0 zero 0\n", ErrNumericParse, 1},
		{"missing component", "\nvn 0 1\n", ErrNumericParse, 2},
		{"bad index", "v 0 0 0\nf 1 x 1\n", ErrNumericParse, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.src), OBJOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Contains(t, err.Error(), "line ")
			assert.Equal(t, tt.line, errorLine(err))
		})
	}
}

func TestParseOBJ_IndexOutOfRangeDetail(t *testing.T) {
	_, err := ParseOBJ([]byte("v 0 0 0\nf 1 1 7\n"), OBJOptions{})
	var idxErr *IndexOutOfRangeError
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, "position", idxErr.Pool)
	assert.Equal(t, 7, idxErr.Index)
	assert.Equal(t, 1, idxErr.Size)
}

func TestParseOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0644))

	obj, err := ParseOBJFile(path, OBJOptions{})
	require.NoError(t, err)
	assert.Len(t, obj.Faces, 1)

	_, err = ParseOBJFile(filepath.Join(t.TempDir(), "missing.obj"), OBJOptions{})
	assert.Error(t, err)
}

// errorLine extracts the line number from any parse error.
func errorLine(err error) int {
	var (
		numErr  *NumericParseError
		faceErr *MalformedFaceError
		idxErr  *IndexOutOfRangeError
		encErr  *EncodingError
	)
	switch {
	case errors.As(err, &numErr):
		return numErr.Line
	case errors.As(err, &faceErr):
		return faceErr.Line
	case errors.As(err, &idxErr):
		return idxErr.Line
	case errors.As(err, &encErr):
		return encErr.Line
	}
	return -1
}
