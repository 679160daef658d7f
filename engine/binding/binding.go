package binding

import (
	"errors"

	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Kind identifies the resource type behind a binding slot.
type Kind int

const (
	// KindUniform is a uniform buffer sized to exactly one GPU struct.
	KindUniform Kind = iota

	// KindInstanceArray is a read-only storage buffer holding a packed array of per-instance structs.
	KindInstanceArray

	// KindTexture is a sampled texture.
	KindTexture

	// KindSampler is a texture sampler, optionally a comparison sampler.
	KindSampler
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindInstanceArray:
		return "instance_array"
	case KindTexture:
		return "texture"
	case KindSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

var (
	// ErrSizeMismatch is returned when a buffer write does not cover the binding's full size.
	ErrSizeMismatch = errors.New("binding: write size does not match buffer size")

	// ErrOutOfRange is returned when a partial write would run past the end of the buffer.
	ErrOutOfRange = errors.New("binding: write out of range")

	// ErrSlotGap is returned when slot indices are not contiguous from zero.
	ErrSlotGap = errors.New("binding: slot indices are not contiguous from 0")

	// ErrDuplicateSlot is returned when two entries claim the same slot.
	ErrDuplicateSlot = errors.New("binding: duplicate slot index")

	// ErrSlotMismatch is returned when a binding set and a layout list disagree on their slots.
	ErrSlotMismatch = errors.New("binding: binding set does not match layout slots")

	// ErrKindMismatch is returned when a binding's resource kind differs from its layout's kind.
	ErrKindMismatch = errors.New("binding: binding kind does not match layout kind")

	// ErrLayoutMismatch is returned when a binding of the right kind still cannot fill its layout's slot:
	// a buffer smaller than the layout's minimum binding size, a sampler whose comparison mode differs,
	// or a texture with a different sample type.
	ErrLayoutMismatch = errors.New("binding: binding does not satisfy layout")

	// ErrEmpty is returned when a layout list or binding set has no entries.
	ErrEmpty = errors.New("binding: no entries")
)

// Layout describes a GPU-visible resource slot. It is immutable once constructed and
// realizes a live Binding against a device.
type Layout interface {
	// Kind returns the resource kind this layout describes.
	//
	// Returns:
	//   - Kind: uniform, instance array, texture or sampler
	Kind() Kind

	// Label returns the debug label applied to created GPU resources.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Visibility returns the shader stages that read this resource.
	//
	// Returns:
	//   - wgpu.ShaderStage: the visibility mask
	Visibility() wgpu.ShaderStage

	// Entry returns the bind group layout entry for this resource at the given slot.
	//
	// Parameters:
	//   - slot: the binding index assigned to this layout in a bind group
	//
	// Returns:
	//   - wgpu.BindGroupLayoutEntry: the layout entry
	Entry(slot uint32) wgpu.BindGroupLayoutEntry

	// CreateBinding allocates the live resource described by this layout.
	//
	// Parameters:
	//   - device: the device to allocate the resource on
	//
	// Returns:
	//   - Binding: the allocated binding
	//   - error: an error if allocation fails
	CreateBinding(device gpu.Device) (Binding, error)

	// BindingLayout returns the layout itself, so layouts and handle layouts can be passed interchangeably.
	BindingLayout() Layout
}

// Binding is an allocated GPU resource that can describe itself as a bind group entry.
type Binding interface {
	// Kind returns the resource kind of this binding.
	Kind() Kind

	// Entry returns the bind group entry for this resource at the given slot.
	//
	// Parameters:
	//   - slot: the binding index in the bind group being assembled
	//
	// Returns:
	//   - wgpu.BindGroupEntry: the bind group entry
	Entry(slot uint32) wgpu.BindGroupEntry

	// Release frees the underlying GPU resource.
	Release()

	// Binding returns the binding itself, so bindings and handles can be passed interchangeably.
	Binding() Binding
}

// LayoutSource is anything that carries a binding layout, such as a handle layout.
type LayoutSource interface {
	BindingLayout() Layout
}

// Bindable is anything that owns a binding, such as a handle.
type Bindable interface {
	Binding() Binding
}
