package formats

import (
	"errors"
	"fmt"
)

// Parse error categories. Every typed error below matches one of these
// with errors.Is.
var (
	ErrEncoding        = errors.New("document is not valid UTF-8 text")
	ErrNumericParse    = errors.New("malformed numeric token")
	ErrMalformedFace   = errors.New("malformed face")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// EncodingError reports input that is not UTF-8 text.
type EncodingError struct {
	Line   int // line containing the first invalid byte
	Offset int // byte offset of the first invalid byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("line %d: invalid UTF-8 at byte %d", e.Line, e.Offset)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// NumericParseError reports a token that should have been a number.
type NumericParseError struct {
	Line    int
	Keyword string
	Token   string
	Err     error
}

func (e *NumericParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Keyword, e.Err)
	}
	return fmt.Sprintf("line %d: %s: cannot parse %q as a number", e.Line, e.Keyword, e.Token)
}

func (e *NumericParseError) Unwrap() []error { return []error{ErrNumericParse, e.Err} }

// MalformedFaceError reports a face with fewer than three vertices or a
// vertex reference that cannot be interpreted.
type MalformedFaceError struct {
	Line   int
	Reason string
}

func (e *MalformedFaceError) Error() string {
	return fmt.Sprintf("line %d: malformed face: %s", e.Line, e.Reason)
}

func (e *MalformedFaceError) Unwrap() error { return ErrMalformedFace }

// IndexOutOfRangeError reports a face reference outside its attribute pool.
type IndexOutOfRangeError struct {
	Line  int
	Pool  string // "position", "texcoord" or "normal"
	Index int    // index as written in the source (1-based or negative)
	Size  int    // pool size at the time the face was read
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("line %d: %s index %d out of range (pool has %d entries)", e.Line, e.Pool, e.Index, e.Size)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }
