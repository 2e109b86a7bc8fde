package formats

import (
	"bytes"
	"strings"

	"github.com/Faultbox/objimport/pkg/encoding"
)

// Line is one logical line of an OBJ or MTL document.
type Line struct {
	Number  int      // 1-based number of the first physical line
	Keyword string   // first token, e.g. "v", "f", "newmtl"
	Args    []string // remaining whitespace-separated tokens
	Raw     string   // text after the keyword, trimmed, comment removed
}

// Lexer splits a text buffer into logical lines of tokens.
// Comments run from '#' to the end of the line. A trailing backslash
// continues the line on the next physical line.
type Lexer struct {
	data   []byte
	pos    int
	lineNo int
	cur    Line
}

// NewLexer validates data as UTF-8 and returns a lexer over it.
func NewLexer(data []byte) (*Lexer, error) {
	text, offset, ok := encoding.DecodeUTF8(data)
	if !ok {
		return nil, &EncodingError{Line: encoding.LineAt(data, offset), Offset: offset}
	}
	return &Lexer{data: text}, nil
}

// Next advances to the next non-blank logical line.
func (l *Lexer) Next() bool {
	for l.pos < len(l.data) {
		start := l.lineNo + 1
		text := l.readLogical()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		text = strings.TrimSpace(text)
		l.cur = Line{
			Number:  start,
			Keyword: fields[0],
			Args:    fields[1:],
			Raw:     strings.TrimSpace(text[len(fields[0]):]),
		}
		return true
	}
	return false
}

// Line returns the current line. Valid after Next returns true.
func (l *Lexer) Line() Line {
	return l.cur
}

// readLogical joins physical lines ending in a backslash.
func (l *Lexer) readLogical() string {
	var sb strings.Builder
	for l.pos < len(l.data) {
		phys := l.readPhysical()
		trimmed := strings.TrimRight(phys, " \t")
		if strings.HasSuffix(trimmed, "\\") && l.pos < len(l.data) {
			sb.WriteString(trimmed[:len(trimmed)-1])
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(phys)
		break
	}
	return sb.String()
}

// readPhysical returns the next physical line without its LF or CRLF ending.
func (l *Lexer) readPhysical() string {
	rest := l.data[l.pos:]
	end := bytes.IndexByte(rest, '\n')
	var raw []byte
	if end < 0 {
		raw = rest
		l.pos = len(l.data)
	} else {
		raw = rest[:end]
		l.pos += end + 1
	}
	l.lineNo++
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	return string(raw)
}

// Tokenize lexes the whole buffer at once. Mostly useful in tests and tools.
func Tokenize(data []byte) ([]Line, error) {
	lx, err := NewLexer(data)
	if err != nil {
		return nil, err
	}
	var lines []Line
	for lx.Next() {
		lines = append(lines, lx.Line())
	}
	return lines, nil
}
