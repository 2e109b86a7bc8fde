package loader

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objimport/internal/scene"
	"github.com/Faultbox/objimport/pkg/formats"
)

// xyzToLinearSRGB converts CIE XYZ (D65) to linear sRGB.
var xyzToLinearSRGB = mgl32.Mat3FromRows(
	mgl32.Vec3{3.2404542, -1.5371385, -0.4985314},
	mgl32.Vec3{-0.9692660, 1.8760108, 0.0415560},
	mgl32.Vec3{0.0556434, -0.2040259, 1.0572252},
)

// ColorToSRGB returns a material color as sRGB. RGB values are taken as
// written; XYZ values are converted and clamped to [0, 1].
func ColorToSRGB(c formats.Color) [3]float32 {
	if c.Space != formats.ColorSpaceXYZ {
		return c.Values
	}
	lin := xyzToLinearSRGB.Mul3x1(mgl32.Vec3(c.Values))
	var out [3]float32
	for i, v := range lin {
		out[i] = encodeSRGB(mgl32.Clamp(v, 0, 1))
	}
	return out
}

// encodeSRGB applies the sRGB transfer function to a linear component.
func encodeSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

// shininessToRoughness maps a Phong exponent onto perceptual roughness.
func shininessToRoughness(ns float32) float32 {
	if ns < 0 {
		ns = 0
	}
	return mgl32.Clamp(math32.Sqrt(2/(ns+2)), 0, 1)
}

// ConvertMaterial builds the renderer parameters of an MTL record. Texture
// handles are filled in by the caller.
func ConvertMaterial(m *formats.MTLMaterial) scene.Material {
	out := scene.DefaultMaterial()
	out.Name = m.Name

	if m.Diffuse != nil {
		rgb := ColorToSRGB(*m.Diffuse)
		out.BaseColor = [4]float32{rgb[0], rgb[1], rgb[2], 1}
	}
	if m.Dissolve != nil {
		out.BaseColor[3] = mgl32.Clamp(*m.Dissolve, 0, 1)
	}
	if m.Emissive != nil {
		out.Emissive = ColorToSRGB(*m.Emissive)
	}

	switch {
	case m.Roughness != nil:
		out.Roughness = *m.Roughness
	case m.Shininess != nil:
		out.Roughness = shininessToRoughness(*m.Shininess)
	}
	if m.Metallic != nil {
		out.Metallic = *m.Metallic
	}
	if m.Clearcoat != nil {
		out.Clearcoat = *m.Clearcoat
	}
	if m.ClearcoatRoughness != nil {
		out.ClearcoatRoughness = *m.ClearcoatRoughness
	}
	if m.Anisotropy != nil {
		out.Anisotropy = *m.Anisotropy
	}
	if m.AnisotropyRotation != nil {
		out.AnisotropyRotation = *m.AnisotropyRotation
	}
	if m.NormalMap != nil {
		out.NormalScale = m.NormalMap.BumpMultiplier()
	}

	out.AlphaBlend = m.DissolveMap != nil || out.BaseColor[3] < 1
	return out
}
