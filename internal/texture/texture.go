// Package texture decodes the image files materials reference.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"path"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Info describes a decoded image.
type Info struct {
	Width    int
	Height   int
	Format   string // "tga", "png", "jpeg", ...
	HasAlpha bool   // any pixel with alpha below opaque
}

// Decoder decodes texture bytes by file extension, falling back to
// content sniffing for the registered formats.
type Decoder struct{}

// Decode returns the decoded image and its format name.
func (Decoder) Decode(name string, data []byte) (image.Image, string, error) {
	if strings.EqualFold(path.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, "tga", nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, format, nil
}

// Inspect decodes data and summarises the image.
func (d Decoder) Inspect(name string, data []byte) (Info, error) {
	img, format, err := d.Decode(name, data)
	if err != nil {
		return Info{}, err
	}
	b := img.Bounds()
	return Info{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		HasAlpha: hasAlpha(img),
	}, nil
}

// Extensions lists the file extensions Decoder understands.
func Extensions() []string {
	return []string{".tga", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// ImageToRGBA converts any image.Image to *image.RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, color.RGBAModel.Convert(img.At(x, y)))
		}
	}
	return rgba
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
