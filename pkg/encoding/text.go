// Package encoding provides text decoding utilities for Wavefront OBJ/MTL documents.
package encoding

import (
	"bytes"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf8BOM is the byte order mark some exporters write at the start of a file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HasBOM reports whether data starts with a UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf8BOM)
}

// DecodeUTF8 validates data as UTF-8 text and strips a leading BOM.
// The returned offset is the first byte that is not valid UTF-8 when ok is false.
func DecodeUTF8(data []byte) (text []byte, offset int, ok bool) {
	if !utf8.Valid(data) {
		return nil, invalidOffset(data), false
	}
	if !HasBOM(data) {
		return data, 0, true
	}

	// Validated first: the UTF-8 decoder picked by BOMOverride would
	// otherwise replace bad sequences with U+FFFD.
	decoder := unicode.BOMOverride(transform.Nop)
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return data[len(utf8BOM):], 0, true
	}
	return result, 0, true
}

// invalidOffset returns the index of the first invalid UTF-8 sequence.
func invalidOffset(data []byte) int {
	offset := 0
	for offset < len(data) {
		r, size := utf8.DecodeRune(data[offset:])
		if r == utf8.RuneError && size <= 1 {
			return offset
		}
		offset += size
	}
	return offset
}

// LineAt returns the 1-based line number containing byte offset.
func LineAt(data []byte, offset int) int {
	if offset > len(data) {
		offset = len(data)
	}
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}

// NormalizePath converts a document-relative reference into a clean
// forward-slash path. Exporters on Windows often write backslashes.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// Sibling resolves ref relative to the directory of doc. Absolute refs are
// returned cleaned but otherwise unchanged.
func Sibling(doc, ref string) string {
	ref = NormalizePath(ref)
	if ref == "" || path.IsAbs(ref) || isWindowsAbs(ref) {
		return ref
	}
	dir := path.Dir(NormalizePath(doc))
	if dir == "." {
		return ref
	}
	return path.Join(dir, ref)
}

// isWindowsAbs reports drive-letter paths like C:/textures/wood.png.
func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
