package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrMaterialLoad is matched by every *MaterialLoadError.
	ErrMaterialLoad = errors.New("material load failed")
	// ErrMaterialNotFound means no referenced library defines the name.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrTextureResolution is matched by every *TextureResolutionError.
	ErrTextureResolution = errors.New("texture resolution failed")
)

// MaterialLoadError reports a material that could not be resolved, either
// because its library was unreadable or because no library defines it.
type MaterialLoadError struct {
	Library  string // library path, or the searched paths joined by ", "
	Material string
	Err      error
}

func (e *MaterialLoadError) Error() string {
	if e.Library == "" {
		return fmt.Sprintf("material %q: no material library referenced: %v", e.Material, e.Err)
	}
	return fmt.Sprintf("material %q (%s): %v", e.Material, e.Library, e.Err)
}

func (e *MaterialLoadError) Unwrap() []error { return []error{ErrMaterialLoad, e.Err} }

// TextureResolutionError reports a texture a material names that could not
// be read or decoded.
type TextureResolutionError struct {
	Material string
	Path     string
	Err      error
}

func (e *TextureResolutionError) Error() string {
	return fmt.Sprintf("material %q: texture %s: %v", e.Material, e.Path, e.Err)
}

func (e *TextureResolutionError) Unwrap() []error { return []error{ErrTextureResolution, e.Err} }
