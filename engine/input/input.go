// Package input tracks the latest mouse and keyboard state reported by the window. The state is
// written by window callbacks and read by scripts on the same goroutine, once per tick.
package input

import (
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Mouse holds the cursor location and the most recently pressed button.
type Mouse struct {
	location mgl32.Vec2
	button   MouseButton
	pressed  bool
}

// Location returns the cursor position in window pixels.
func (m *Mouse) Location() mgl32.Vec2 {
	return m.location
}

// Button returns the button currently held, if any. Only the last pressed button is tracked;
// releasing any button clears it.
//
// Returns:
//   - MouseButton: the held button
//   - bool: false when no button is held
func (m *Mouse) Button() (MouseButton, bool) {
	return m.button, m.pressed
}

// IsDown reports whether button is the button currently held.
func (m *Mouse) IsDown(button MouseButton) bool {
	return m.pressed && m.button == button
}

// Keyboard holds the set of keys currently held.
type Keyboard struct {
	pressed map[Key]struct{}
}

// IsPressed reports whether key is held.
func (k *Keyboard) IsPressed(key Key) bool {
	_, ok := k.pressed[key]
	return ok
}

// Pressed returns the held keys in ascending order.
func (k *Keyboard) Pressed() []Key {
	return slices.Sorted(maps.Keys(k.pressed))
}

// State is the combined mouse and keyboard state.
type State struct {
	Mouse    Mouse
	Keyboard Keyboard
}

// NewState creates an empty input state with the cursor at the origin.
//
// Returns:
//   - *State: the input state
func NewState() *State {
	return &State{
		Keyboard: Keyboard{pressed: make(map[Key]struct{})},
	}
}

// HandleMouseButton records a button press or release.
//
// Parameters:
//   - button: the button that changed
//   - pressed: true on press, false on release
func (s *State) HandleMouseButton(button MouseButton, pressed bool) {
	if pressed {
		s.Mouse.button = button
		s.Mouse.pressed = true
		return
	}
	s.Mouse.pressed = false
}

// HandleCursor records the cursor position.
//
// Parameters:
//   - x: the horizontal position in window pixels
//   - y: the vertical position in window pixels
func (s *State) HandleCursor(x, y float32) {
	s.Mouse.location = mgl32.Vec2{x, y}
}

// HandleKey records a key press or release. Key repeats count as presses.
//
// Parameters:
//   - key: the key that changed
//   - pressed: true on press, false on release
func (s *State) HandleKey(key Key, pressed bool) {
	if pressed {
		s.Keyboard.pressed[key] = struct{}{}
		return
	}
	delete(s.Keyboard.pressed, key)
}
