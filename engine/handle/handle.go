// Package handle holds the CPU-side domain objects (camera, light, shape, texture, sampler) that each
// own exactly one binding and know how to serialize their state into it.
package handle

import (
	"errors"

	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
)

var (
	// ErrInvalidIndex is returned when an arena index is stale or was issued by a different arena.
	ErrInvalidIndex = errors.New("handle: invalid arena index")

	// ErrInstanceRange is returned when an instance index is outside a shape's instance count.
	ErrInstanceRange = errors.New("handle: instance index out of range")
)

// Handle is a CPU-side object that owns one binding and writes its state into it.
type Handle interface {
	binding.Bindable

	// Update serializes the current state and writes it to the owned binding.
	// State is recomputed from the handle's fields on every call.
	//
	// Parameters:
	//   - queue: the queue used for the upload
	//
	// Returns:
	//   - error: an error if the write fails
	Update(queue gpu.Queue) error

	// Release frees the owned binding.
	Release()
}

// HandleLayout describes the binding a handle needs and creates handles against a device.
type HandleLayout[H Handle] interface {
	binding.LayoutSource

	// CreateHandle allocates a binding from the layout and wraps it in a new handle with default state.
	//
	// Parameters:
	//   - device: the device to allocate on
	//
	// Returns:
	//   - H: the new handle
	//   - error: an error if the binding could not be allocated
	CreateHandle(device gpu.Device) (H, error)
}
