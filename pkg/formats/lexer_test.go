package formats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Lines(t *testing.T) {
	data := []byte("# header\r\nv 1 2 3\r\n\r\n  vn 0 1 0 # trailing comment\nf 1 2 \\\n 3\nusemtl  Red Metal \n")

	lines, err := Tokenize(data)
	require.NoError(t, err)
	require.Len(t, lines, 4)

	assert.Equal(t, Line{Number: 2, Keyword: "v", Args: []string{"1", "2", "3"}, Raw: "1 2 3"}, lines[0])
	assert.Equal(t, 4, lines[1].Number)
	assert.Equal(t, "vn", lines[1].Keyword)
	assert.Equal(t, []string{"0", "1", "0"}, lines[1].Args)

	// continuation joins the next physical line, numbered from the first
	assert.Equal(t, 5, lines[2].Number)
	assert.Equal(t, []string{"1", "2", "3"}, lines[2].Args)

	assert.Equal(t, "Red Metal", lines[3].Raw)
}

func TestLexer_BlankAndCommentOnly(t *testing.T) {
	lines, err := Tokenize([]byte("\n\n# only comments\n   \t\n#\n"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLexer_NoTrailingNewline(t *testing.T) {
	lines, err := Tokenize([]byte("v 0 0 0\nv 1 1 1"))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[1].Number)
}

func TestLexer_LongToken(t *testing.T) {
	long := make([]byte, 200000)
	for i := range long {
		long[i] = 'a'
	}
	lines, err := Tokenize(append([]byte("o "), long...))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0].Args[0], len(long))
}

func TestLexer_EncodingError(t *testing.T) {
	_, err := NewLexer([]byte("v 0 0 0\nv \xfe\xff 0 0\n"))
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, 2, encErr.Line)
	assert.True(t, errors.Is(err, ErrEncoding))
}

func TestLexer_BOM(t *testing.T) {
	lines, err := Tokenize(append([]byte{0xEF, 0xBB, 0xBF}, "v 1 2 3\n"...))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "v", lines[0].Keyword)
}
