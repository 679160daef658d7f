package binding

import (
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// layoutOptions collects the optional settings shared by every layout kind.
// Settings that do not apply to a kind are ignored by it.
type layoutOptions struct {
	label      string
	visibility wgpu.ShaderStage

	// texture
	uploadable bool
	sampleType wgpu.TextureSampleType

	// sampler
	addressModeU, addressModeV, addressModeW wgpu.AddressMode
	magFilter, minFilter                     wgpu.FilterMode
	mipmapFilter                             wgpu.MipmapFilterMode
	lodMinClamp, lodMaxClamp                 float32
	compare                                  wgpu.CompareFunction
	maxAnisotropy                            uint16
}

func defaultLayoutOptions() layoutOptions {
	return layoutOptions{
		visibility:    wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		addressModeU:  wgpu.AddressModeClampToEdge,
		addressModeV:  wgpu.AddressModeClampToEdge,
		addressModeW:  wgpu.AddressModeClampToEdge,
		magFilter:     wgpu.FilterModeLinear,
		minFilter:     wgpu.FilterModeLinear,
		mipmapFilter:  wgpu.MipmapFilterModeNearest,
		lodMinClamp:   0,
		lodMaxClamp:   math.MaxFloat32,
		maxAnisotropy: 1,
	}
}

// LayoutBuilderOption is a functional option used to configure a binding layout during construction.
type LayoutBuilderOption func(*layoutOptions)

// WithLabel sets the debug label of the GPU resources created from the layout.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithLabel(label string) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.label = label
	}
}

// WithVisibility sets the shader stages that can read the resource.
// Defaults to vertex | fragment.
//
// Parameters:
//   - visibility: the shader stage mask
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithVisibility(visibility wgpu.ShaderStage) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.visibility = visibility
	}
}

// WithUploadable marks a texture layout as a pixel upload target (adds CopyDst usage).
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithUploadable() LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.uploadable = true
	}
}

// WithSampleType overrides the sample type derived from a texture layout's format.
//
// Parameters:
//   - sampleType: the sample type declared in the bind group layout
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithSampleType(sampleType wgpu.TextureSampleType) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.sampleType = sampleType
	}
}

// WithAddressMode sets the sampler address mode for the U, V and W axes.
//
// Parameters:
//   - u, v, w: the address modes per axis
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithAddressMode(u, v, w wgpu.AddressMode) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.addressModeU = u
		o.addressModeV = v
		o.addressModeW = w
	}
}

// WithFilterMode sets the sampler magnification, minification and mipmap filters.
//
// Parameters:
//   - mag: the magnification filter
//   - min: the minification filter
//   - mipmap: the mipmap filter
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithFilterMode(mag, min wgpu.FilterMode, mipmap wgpu.MipmapFilterMode) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.magFilter = mag
		o.minFilter = min
		o.mipmapFilter = mipmap
	}
}

// WithCompare turns a sampler layout into a comparison sampler using fn.
//
// Parameters:
//   - fn: the depth comparison function
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithCompare(fn wgpu.CompareFunction) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.compare = fn
	}
}

// WithLodClamp sets the sampler level-of-detail clamp range.
//
// Parameters:
//   - min, max: the LOD clamp bounds
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithLodClamp(min, max float32) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.lodMinClamp = min
		o.lodMaxClamp = max
	}
}

// WithMaxAnisotropy sets the sampler anisotropy clamp.
//
// Parameters:
//   - n: the maximum anisotropy (1 disables anisotropic filtering)
//
// Returns:
//   - LayoutBuilderOption: option function to apply
func WithMaxAnisotropy(n uint16) LayoutBuilderOption {
	return func(o *layoutOptions) {
		o.maxAnisotropy = n
	}
}
