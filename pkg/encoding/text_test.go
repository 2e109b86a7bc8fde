package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUTF8(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		wantOK   bool
		wantOffs int
	}{
		{"plain", []byte("v 1 2 3\n"), "v 1 2 3\n", true, 0},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "v 0 0 0"...), "v 0 0 0", true, 0},
		{"multibyte", []byte("o кубик\n"), "o кубик\n", true, 0},
		{"invalid byte", []byte("v 1\n\xff 2"), "", false, 4},
		{"empty", []byte{}, "", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, offset, ok := DecodeUTF8(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, string(got))
			} else {
				assert.Equal(t, tt.wantOffs, offset)
			}
		})
	}
}

func TestLineAt(t *testing.T) {
	data := []byte("a\nb\nc")
	assert.Equal(t, 1, LineAt(data, 0))
	assert.Equal(t, 2, LineAt(data, 2))
	assert.Equal(t, 3, LineAt(data, 4))
	assert.Equal(t, 3, LineAt(data, 100))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "textures/wood.png", NormalizePath(`textures\wood.png`))
	assert.Equal(t, "a/c.png", NormalizePath("a/b/../c.png"))
	assert.Equal(t, "", NormalizePath("   "))
}

func TestSibling(t *testing.T) {
	tests := []struct {
		doc, ref, want string
	}{
		{"models/house.obj", "house.mtl", "models/house.mtl"},
		{"house.obj", "house.mtl", "house.mtl"},
		{"models/mtl/house.mtl", `..\tex\wood.png`, "models/tex/wood.png"},
		{"models/house.obj", "/abs/wood.png", "/abs/wood.png"},
		{"models/house.obj", `C:\tex\wood.png`, "C:/tex/wood.png"},
		{"models/house.obj", "my texture.png", "models/my texture.png"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Sibling(tt.doc, tt.ref))
		})
	}
}
