package binding

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// LayoutEntry is a layout tagged with the slot it occupies in one bind group.
type LayoutEntry struct {
	Slot   uint32
	Layout Layout
}

// LayoutEntries is the ordered list of layouts that make up a pipeline's bind group layout.
// The same layout may appear at different slots in different pipelines.
type LayoutEntries struct {
	entries []LayoutEntry
}

// NewLayoutEntries creates an empty layout list.
//
// Returns:
//   - *LayoutEntries: the empty list
func NewLayoutEntries() *LayoutEntries {
	return &LayoutEntries{}
}

// Add tags src's layout with slot and appends it.
//
// Parameters:
//   - slot: the binding index within the bind group
//   - src: a layout or anything carrying one (handle layouts)
//
// Returns:
//   - *LayoutEntries: the list, for chaining
func (e *LayoutEntries) Add(slot uint32, src LayoutSource) *LayoutEntries {
	e.entries = append(e.entries, LayoutEntry{Slot: slot, Layout: src.BindingLayout()})
	return e
}

// Len returns the number of tagged layouts.
func (e *LayoutEntries) Len() int {
	return len(e.entries)
}

// Validate checks that the slots are unique and contiguous from 0.
//
// Returns:
//   - error: ErrEmpty, ErrDuplicateSlot or ErrSlotGap, or nil if the list is well formed
func (e *LayoutEntries) Validate() error {
	slots := make([]uint32, len(e.entries))
	for i, entry := range e.entries {
		slots[i] = entry.Slot
	}
	return validateSlots(slots)
}

// Sorted returns the tagged layouts ordered by slot.
//
// Returns:
//   - []LayoutEntry: a copy of the entries sorted by slot
func (e *LayoutEntries) Sorted() []LayoutEntry {
	out := slices.Clone(e.entries)
	slices.SortStableFunc(out, func(a, b LayoutEntry) int {
		return int(a.Slot) - int(b.Slot)
	})
	return out
}

// Descriptor builds the bind group layout descriptor after validating the slots.
//
// Parameters:
//   - label: the debug label of the bind group layout
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one entry per slot in slot order
//   - error: a validation error
func (e *LayoutEntries) Descriptor(label string) (wgpu.BindGroupLayoutDescriptor, error) {
	if err := e.Validate(); err != nil {
		return wgpu.BindGroupLayoutDescriptor{}, err
	}
	sorted := e.Sorted()
	entries := make([]wgpu.BindGroupLayoutEntry, len(sorted))
	for i, entry := range sorted {
		entries[i] = entry.Layout.Entry(entry.Slot)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	}, nil
}

// CreateBindGroupLayout validates the list and creates the GPU bind group layout.
//
// Parameters:
//   - device: the device to create the layout on
//   - label: the debug label
//
// Returns:
//   - *wgpu.BindGroupLayout: the created layout
//   - error: a validation or creation error
func (e *LayoutEntries) CreateBindGroupLayout(device gpu.Device, label string) (*wgpu.BindGroupLayout, error) {
	desc, err := e.Descriptor(label)
	if err != nil {
		return nil, err
	}
	layout, err := device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", label, err)
	}
	return layout, nil
}

// SetEntry is a binding tagged with the slot it occupies in one bind group.
type SetEntry struct {
	Slot    uint32
	Binding Binding
}

// Set is the ordered list of live bindings for one entity in one pipeline. It must line up
// slot-for-slot with the pipeline's LayoutEntries.
type Set struct {
	entries []SetEntry
}

// NewSet creates an empty binding set.
//
// Returns:
//   - *Set: the empty set
func NewSet() *Set {
	return &Set{}
}

// Bind tags b's binding with slot and appends it.
//
// Parameters:
//   - slot: the binding index within the bind group
//   - b: a binding or anything owning one (handles)
//
// Returns:
//   - *Set: the set, for chaining
func (s *Set) Bind(slot uint32, b Bindable) *Set {
	s.entries = append(s.entries, SetEntry{Slot: slot, Binding: b.Binding()})
	return s
}

// Len returns the number of tagged bindings.
func (s *Set) Len() int {
	return len(s.entries)
}

// Entries validates the set against layouts and builds the bind group entries in slot order.
//
// Parameters:
//   - layouts: the layout list the set must match
//
// Returns:
//   - []wgpu.BindGroupEntry: one entry per slot
//   - error: a slot validation error, ErrSlotMismatch if the slots differ from the layouts,
//     ErrKindMismatch if a binding's kind differs from the layout at the same slot, or
//     ErrLayoutMismatch if the binding cannot fill that layout
func (s *Set) Entries(layouts *LayoutEntries) ([]wgpu.BindGroupEntry, error) {
	slots := make([]uint32, len(s.entries))
	for i, entry := range s.entries {
		slots[i] = entry.Slot
	}
	if err := validateSlots(slots); err != nil {
		return nil, err
	}
	if err := layouts.Validate(); err != nil {
		return nil, err
	}
	if len(s.entries) != layouts.Len() {
		return nil, fmt.Errorf("%w: %d bindings for %d layouts", ErrSlotMismatch, len(s.entries), layouts.Len())
	}

	sorted := slices.Clone(s.entries)
	slices.SortStableFunc(sorted, func(a, b SetEntry) int {
		return int(a.Slot) - int(b.Slot)
	})
	sortedLayouts := layouts.Sorted()

	out := make([]wgpu.BindGroupEntry, len(sorted))
	for i, entry := range sorted {
		layout := sortedLayouts[i]
		if entry.Slot != layout.Slot {
			return nil, fmt.Errorf("%w: binding slot %d, layout slot %d", ErrSlotMismatch, entry.Slot, layout.Slot)
		}
		if err := checkBinding(entry.Slot, entry.Binding, layout.Layout); err != nil {
			return nil, err
		}
		out[i] = entry.Binding.Entry(entry.Slot)
	}
	return out, nil
}

// CreateBindGroup validates the set and creates the GPU bind group.
//
// Parameters:
//   - device: the device to create the bind group on
//   - layout: the bind group layout created from layouts
//   - layouts: the layout list the set must match
//   - label: the debug label
//
// Returns:
//   - *wgpu.BindGroup: the created bind group
//   - error: a validation or creation error
func (s *Set) CreateBindGroup(device gpu.Device, layout *wgpu.BindGroupLayout, layouts *LayoutEntries, label string) (*wgpu.BindGroup, error) {
	entries, err := s.Entries(layouts)
	if err != nil {
		return nil, err
	}
	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", label, err)
	}
	return group, nil
}

// checkBinding rejects a binding the layout at the same slot cannot accept. Buffers may be larger
// than the layout's minimum binding size, never smaller.
func checkBinding(slot uint32, b Binding, l Layout) error {
	if b.Kind() != l.Kind() {
		return fmt.Errorf("%w: slot %d binds %s, layout expects %s", ErrKindMismatch, slot, b.Kind(), l.Kind())
	}
	switch l := l.(type) {
	case BufferLayout:
		if buf, ok := b.(BufferBinding); ok && buf.Size() < l.Size() {
			return fmt.Errorf("%w: slot %d binds %d bytes, layout needs at least %d", ErrLayoutMismatch, slot, buf.Size(), l.Size())
		}
	case SamplerLayout:
		if s, ok := b.(SamplerBinding); ok && isComparison(s.Compare()) != isComparison(l.Compare()) {
			return fmt.Errorf("%w: slot %d binds a %s sampler, layout expects a %s sampler", ErrLayoutMismatch, slot, samplerType(s.Compare()), samplerType(l.Compare()))
		}
	case TextureLayout:
		if tex, ok := b.(TextureBinding); ok && tex.SampleType() != l.SampleType() {
			return fmt.Errorf("%w: slot %d binds sample type %s, layout expects %s", ErrLayoutMismatch, slot, tex.SampleType(), l.SampleType())
		}
	}
	return nil
}

func isComparison(compare wgpu.CompareFunction) bool {
	return compare != wgpu.CompareFunctionUndefined
}

func samplerType(compare wgpu.CompareFunction) string {
	if isComparison(compare) {
		return "comparison"
	}
	return "filtering"
}

// validateSlots checks that slots are non-empty, unique and cover 0..len(slots)-1.
func validateSlots(slots []uint32) error {
	if len(slots) == 0 {
		return ErrEmpty
	}
	seen := make(map[uint32]bool, len(slots))
	for _, slot := range slots {
		if seen[slot] {
			return fmt.Errorf("%w: %d", ErrDuplicateSlot, slot)
		}
		seen[slot] = true
	}
	for i := range slots {
		if !seen[uint32(i)] {
			return fmt.Errorf("%w: missing slot %d", ErrSlotGap, i)
		}
	}
	return nil
}
