package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/profiler"
)

// ErrNotConfigured is returned by Run when the engine has no event source or step function.
var ErrNotConfigured = errors.New("engine: window and step function are required")

// EventSource is the part of a window the loop drives. window.Window satisfies it.
type EventSource interface {
	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// WaitEvents processes pending events, blocking up to timeout for new ones.
	// A timeout <= 0 only polls.
	WaitEvents(timeout time.Duration)

	// Wake interrupts a blocked WaitEvents from any goroutine.
	Wake()
}

// engine implements the Engine interface.
// Runs a single-threaded loop on the calling goroutine.
type engine struct {
	window EventSource

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate time.Duration
	step     func(deltaTime float32) error

	redraw atomic.Bool
	quit   atomic.Bool

	now func() time.Time
}

// Engine is the main entry point for an application.
// It waits for either the next tick or a redraw request, then runs one step: input has already been
// dispatched through the window callbacks, so the step runs scripts, updates handles and renders.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the tick rate in ticks per second. Takes effect after the next step.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetStep registers the function run once per tick or redraw.
	// A returned error stops the loop.
	//
	// Parameters:
	//   - step: the frame function, receiving the delta time in seconds since the previous step
	SetStep(step func(deltaTime float32) error)

	// RequestRedraw runs a step as soon as the loop wakes, without waiting for the tick.
	// Safe to call from any goroutine.
	RequestRedraw()

	// Run runs the loop on the calling goroutine until the window closes, Quit is called, or a step
	// fails. A panicking step is recovered and reported as an error.
	//
	// Returns:
	//   - error: the step error that aborted the loop, ErrNotConfigured, or nil on a clean exit
	Run() error

	// Quit stops the loop after the current step. Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, step, tick rate, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
		tickRate: time.Second / 60,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Run() (err error) {
	if e.window == nil || e.step == nil {
		return ErrNotConfigured
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: step panicked: %v", r)
			common.Logger().Error("fatal: engine loop aborted", "error", err)
		}
	}()

	last := e.now()
	next := last.Add(e.tickRate)

	for e.running() {
		wait := next.Sub(e.now())
		if e.redraw.Load() {
			wait = 0
		}
		e.window.WaitEvents(wait)
		if !e.running() {
			break
		}

		now := e.now()
		redraw := e.redraw.Swap(false)
		if now.Before(next) && !redraw {
			continue
		}

		dt := float32(now.Sub(last).Seconds())
		last = now
		next = now.Add(e.tickRate)

		if err := e.step(dt); err != nil {
			common.Logger().Error("fatal: engine loop aborted", "error", err)
			return err
		}

		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}
	}
	return nil
}

func (e *engine) running() bool {
	return !e.quit.Load() && e.window.IsRunning()
}

func (e *engine) RequestRedraw() {
	e.redraw.Store(true)
	if e.window != nil {
		e.window.Wake()
	}
}

func (e *engine) Quit() {
	if e.quit.Swap(true) {
		return
	}
	if e.window != nil {
		e.window.Wake()
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.tickRate = tickInterval(fps)
}

func (e *engine) SetStep(step func(deltaTime float32) error) {
	e.step = step
}

// tickInterval converts a rate to a period, treating rates <= 0 as 60Hz.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
