package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// samplerLayoutImpl is the implementation of SamplerLayout.
type samplerLayoutImpl struct {
	opts layoutOptions
}

// SamplerLayout describes a filtering sampler, or a comparison sampler when created WithCompare.
type SamplerLayout interface {
	Layout

	// Compare returns the comparison function, or CompareFunctionUndefined for a plain sampler.
	Compare() wgpu.CompareFunction

	// Descriptor returns the sampler descriptor used at creation.
	//
	// Returns:
	//   - wgpu.SamplerDescriptor: the descriptor
	Descriptor() wgpu.SamplerDescriptor

	// CreateSamplerBinding allocates the sampler.
	//
	// Parameters:
	//   - device: the device to allocate on
	//
	// Returns:
	//   - SamplerBinding: the allocated sampler binding
	//   - error: an error if allocation fails
	CreateSamplerBinding(device gpu.Device) (SamplerBinding, error)
}

var _ SamplerLayout = &samplerLayoutImpl{}

// NewSamplerLayout creates a sampler layout. Defaults to clamp-to-edge addressing with linear
// min/mag filters and a nearest mipmap filter.
//
// Parameters:
//   - options: optional LayoutBuilderOption functions (WithCompare, WithAddressMode, WithFilterMode, ...)
//
// Returns:
//   - SamplerLayout: the sampler layout
func NewSamplerLayout(options ...LayoutBuilderOption) SamplerLayout {
	opts := defaultLayoutOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if opts.label == "" {
		opts.label = KindSampler.String() + "-" + uuid.NewString()
	}
	return &samplerLayoutImpl{opts: opts}
}

func (l *samplerLayoutImpl) Kind() Kind {
	return KindSampler
}

func (l *samplerLayoutImpl) Label() string {
	return l.opts.label
}

func (l *samplerLayoutImpl) Visibility() wgpu.ShaderStage {
	return l.opts.visibility
}

func (l *samplerLayoutImpl) Compare() wgpu.CompareFunction {
	return l.opts.compare
}

func (l *samplerLayoutImpl) BindingLayout() Layout {
	return l
}

func (l *samplerLayoutImpl) Descriptor() wgpu.SamplerDescriptor {
	anisotropy := l.opts.maxAnisotropy
	if anisotropy == 0 {
		anisotropy = 1
	}
	return wgpu.SamplerDescriptor{
		Label:         l.opts.label,
		AddressModeU:  l.opts.addressModeU,
		AddressModeV:  l.opts.addressModeV,
		AddressModeW:  l.opts.addressModeW,
		MagFilter:     l.opts.magFilter,
		MinFilter:     l.opts.minFilter,
		MipmapFilter:  l.opts.mipmapFilter,
		LodMinClamp:   l.opts.lodMinClamp,
		LodMaxClamp:   l.opts.lodMaxClamp,
		Compare:       l.opts.compare,
		MaxAnisotropy: anisotropy,
	}
}

func (l *samplerLayoutImpl) Entry(slot uint32) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    slot,
		Visibility: l.opts.visibility,
	}
	if isComparison(l.opts.compare) {
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	} else {
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	}
	return entry
}

func (l *samplerLayoutImpl) CreateBinding(device gpu.Device) (Binding, error) {
	return l.CreateSamplerBinding(device)
}

func (l *samplerLayoutImpl) CreateSamplerBinding(device gpu.Device) (SamplerBinding, error) {
	desc := l.Descriptor()
	samp, err := device.CreateSampler(&desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", l.opts.label, err)
	}
	common.Logger().Debug("sampler created", "label", l.opts.label, "compare", isComparison(l.opts.compare))
	return &samplerBindingImpl{sampler: samp, compare: l.opts.compare}, nil
}

// samplerBindingImpl is the implementation of SamplerBinding.
type samplerBindingImpl struct {
	sampler *wgpu.Sampler
	compare wgpu.CompareFunction
}

// SamplerBinding is an allocated sampler.
type SamplerBinding interface {
	Binding

	// Sampler returns the underlying GPU sampler.
	Sampler() *wgpu.Sampler

	// Compare returns the comparison function the sampler was created with, or
	// CompareFunctionUndefined for a filtering sampler.
	Compare() wgpu.CompareFunction
}

var _ SamplerBinding = &samplerBindingImpl{}

func (b *samplerBindingImpl) Kind() Kind {
	return KindSampler
}

func (b *samplerBindingImpl) Sampler() *wgpu.Sampler {
	return b.sampler
}

func (b *samplerBindingImpl) Compare() wgpu.CompareFunction {
	return b.compare
}

func (b *samplerBindingImpl) Binding() Binding {
	return b
}

func (b *samplerBindingImpl) Entry(slot uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: slot,
		Sampler: b.sampler,
	}
}

func (b *samplerBindingImpl) Release() {
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
}
