package handle

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/brics-go/engine/gpu"
)

// arenaCount issues a unique id to every arena so indices cannot be used across arenas.
var arenaCount atomic.Uint64

// Index is a typed reference to a handle stored in an Arena. The zero value is never valid.
type Index[H Handle] struct {
	arena uint64
	slot  uint32
	gen   uint32
}

// IsZero reports whether the index was never issued.
func (i Index[H]) IsZero() bool {
	return i.arena == 0
}

// String returns a debug representation of the index.
func (i Index[H]) String() string {
	return fmt.Sprintf("index(%d:%d@%d)", i.arena, i.slot, i.gen)
}

type arenaEntry[H Handle] struct {
	value H
	gen   uint32
	live  bool
}

// Arena owns handles in a slab and hands out generation-checked indices. Scripts hold indices
// and borrow a handle for the duration of one call through With, so no handle is aliased
// outside the arena. Not safe for concurrent use; the frame loop is single-threaded.
type Arena[H Handle] struct {
	id      uint64
	entries []arenaEntry[H]
	free    []uint32
	live    int
}

// NewArena creates an empty arena.
//
// Returns:
//   - *Arena[H]: the arena
func NewArena[H Handle]() *Arena[H] {
	return &Arena[H]{id: arenaCount.Add(1)}
}

// Insert stores h and returns its index.
//
// Parameters:
//   - h: the handle to take ownership of
//
// Returns:
//   - Index[H]: the index of the stored handle
func (a *Arena[H]) Insert(h H) Index[H] {
	a.live++
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		e := &a.entries[slot]
		e.value = h
		e.live = true
		return Index[H]{arena: a.id, slot: slot, gen: e.gen}
	}
	a.entries = append(a.entries, arenaEntry[H]{value: h, gen: 1, live: true})
	return Index[H]{arena: a.id, slot: uint32(len(a.entries) - 1), gen: 1}
}

func (a *Arena[H]) entry(idx Index[H]) (*arenaEntry[H], error) {
	if idx.arena != a.id || int(idx.slot) >= len(a.entries) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIndex, idx)
	}
	e := &a.entries[idx.slot]
	if !e.live || e.gen != idx.gen {
		return nil, fmt.Errorf("%w: %s is stale", ErrInvalidIndex, idx)
	}
	return e, nil
}

// Get returns the handle at idx.
//
// Parameters:
//   - idx: the handle index
//
// Returns:
//   - H: the handle
//   - error: ErrInvalidIndex if idx is stale or foreign
func (a *Arena[H]) Get(idx Index[H]) (H, error) {
	e, err := a.entry(idx)
	if err != nil {
		var zero H
		return zero, err
	}
	return e.value, nil
}

// With borrows the handle at idx for the duration of fn.
//
// Parameters:
//   - idx: the handle index
//   - fn: the function to run against the handle
//
// Returns:
//   - error: ErrInvalidIndex, or the error returned by fn
func (a *Arena[H]) With(idx Index[H], fn func(h H) error) error {
	e, err := a.entry(idx)
	if err != nil {
		return err
	}
	return fn(e.value)
}

// Remove takes the handle at idx out of the arena and invalidates idx. The caller owns the returned
// handle and is responsible for releasing it.
//
// Parameters:
//   - idx: the handle index
//
// Returns:
//   - H: the removed handle
//   - error: ErrInvalidIndex if idx is stale or foreign
func (a *Arena[H]) Remove(idx Index[H]) (H, error) {
	e, err := a.entry(idx)
	if err != nil {
		var zero H
		return zero, err
	}
	h := e.value
	var zero H
	e.value = zero
	e.live = false
	e.gen++
	a.free = append(a.free, idx.slot)
	a.live--
	return h, nil
}

// Len returns the number of live handles.
func (a *Arena[H]) Len() int {
	return a.live
}

// Each calls fn for every live handle in slot order.
//
// Parameters:
//   - fn: the callback receiving each index and handle
func (a *Arena[H]) Each(fn func(idx Index[H], h H)) {
	for slot := range a.entries {
		e := &a.entries[slot]
		if !e.live {
			continue
		}
		fn(Index[H]{arena: a.id, slot: uint32(slot), gen: e.gen}, e.value)
	}
}

// UpdateAll writes the state of every live handle to its binding.
//
// Parameters:
//   - queue: the queue used for the uploads
//
// Returns:
//   - error: the joined errors of every failed update
func (a *Arena[H]) UpdateAll(queue gpu.Queue) error {
	var errs []error
	a.Each(func(_ Index[H], h H) {
		if err := h.Update(queue); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Release releases every live handle and empties the arena. Outstanding indices become stale.
func (a *Arena[H]) Release() {
	a.Each(func(idx Index[H], h H) {
		h.Release()
	})
	for slot := range a.entries {
		e := &a.entries[slot]
		if e.live {
			var zero H
			e.value = zero
			e.live = false
			e.gen++
			a.free = append(a.free, uint32(slot))
		}
	}
	a.live = 0
}
