package graphics

import (
	"github.com/Carmen-Shannon/brics-go/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
// Use the With* functions to create options.
type ManagerBuilderOption func(*manager)

// WithPresentMode sets the surface present mode. Defaults to FIFO.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithPresentMode(mode wgpu.PresentMode) ManagerBuilderOption {
	return func(m *manager) {
		m.presentMode = mode
	}
}

// WithForceFallbackAdapter requests a software adapter when enabled.
//
// Parameters:
//   - enabled: whether to force the fallback adapter
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithForceFallbackAdapter(enabled bool) ManagerBuilderOption {
	return func(m *manager) {
		m.forceFallbackAdapter = enabled
	}
}

// WithCompiler sets the shader compiler used by CreatePipeline and PrecompileShaders.
// Defaults to a SPIR-V compiler with one worker per CPU.
//
// Parameters:
//   - compiler: the shader compiler
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithCompiler(compiler shader.Compiler) ManagerBuilderOption {
	return func(m *manager) {
		m.compiler = compiler
	}
}

// WithRedrawRequester sets the function RequestRedraw calls, typically the engine's RequestRedraw.
// Defaults to waking the window.
//
// Parameters:
//   - request: the redraw request function
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithRedrawRequester(request func()) ManagerBuilderOption {
	return func(m *manager) {
		m.requestRedraw = request
	}
}
