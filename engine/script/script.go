// Package script holds per-tick behaviors that mutate application state. Scripts never hold a
// handle directly: object controllers borrow theirs from an arena for the length of one update.
package script

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/brics-go/engine/handle"
)

// Script is one unit of per-tick behavior over an application of type A.
type Script[A any] interface {
	// Update runs the behavior once.
	//
	// Parameters:
	//   - app: the application the script reads and mutates
	//
	// Returns:
	//   - error: an error that aborts this script's tick
	Update(app A) error
}

// LogicScript runs a closure over the whole application.
type LogicScript[A any] struct {
	fn func(app A) error
}

var _ Script[any] = &LogicScript[any]{}

// NewLogicScript wraps fn as a Script.
//
// Parameters:
//   - fn: the behavior, called once per Update
//
// Returns:
//   - *LogicScript[A]: the script
func NewLogicScript[A any](fn func(app A) error) *LogicScript[A] {
	return &LogicScript[A]{fn: fn}
}

func (s *LogicScript[A]) Update(app A) error {
	return s.fn(app)
}

// ObjectController runs a closure over one handle borrowed from an arena, plus the application.
type ObjectController[H handle.Handle, A any] struct {
	arena *handle.Arena[H]
	index handle.Index[H]
	fn    func(h H, app A) error
}

// NewObjectController binds fn to the handle at index in arena.
//
// Parameters:
//   - arena: the arena owning the handle
//   - index: the handle's index
//   - fn: the behavior, called once per Update with the borrowed handle
//
// Returns:
//   - *ObjectController[H, A]: the script
func NewObjectController[H handle.Handle, A any](arena *handle.Arena[H], index handle.Index[H], fn func(h H, app A) error) *ObjectController[H, A] {
	return &ObjectController[H, A]{arena: arena, index: index, fn: fn}
}

// Index returns the index of the controlled handle.
func (c *ObjectController[H, A]) Index() handle.Index[H] {
	return c.index
}

// Update borrows the handle and runs the closure. A stale index yields handle.ErrInvalidIndex.
func (c *ObjectController[H, A]) Update(app A) error {
	return c.arena.With(c.index, func(h H) error {
		return c.fn(h, app)
	})
}

// Runner updates an ordered list of scripts.
type Runner[A any] struct {
	scripts []Script[A]
}

// NewRunner creates a Runner over scripts.
//
// Parameters:
//   - scripts: the scripts, updated in this order
//
// Returns:
//   - *Runner[A]: the runner
func NewRunner[A any](scripts ...Script[A]) *Runner[A] {
	return &Runner[A]{scripts: scripts}
}

// Add appends a script.
func (r *Runner[A]) Add(s Script[A]) {
	r.scripts = append(r.scripts, s)
}

// Len returns the number of scripts.
func (r *Runner[A]) Len() int {
	return len(r.scripts)
}

// Update runs every script in order. A failing script does not stop the ones after it.
//
// Parameters:
//   - app: the application passed to each script
//
// Returns:
//   - error: the joined script errors, each tagged with its position, or nil
func (r *Runner[A]) Update(app A) error {
	var errs []error
	for i, s := range r.scripts {
		if err := s.Update(app); err != nil {
			errs = append(errs, fmt.Errorf("script %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
