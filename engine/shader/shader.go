// Package shader turns WGSL source files into shader module descriptors. Sources are parsed and
// lowered with naga and, by default, submitted to the device as SPIR-V so that syntax and type
// errors surface at load time with a diagnostic instead of as an opaque device error.
package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
)

// ErrCompile is returned when a shader source fails to read, parse, lower or generate code.
var ErrCompile = errors.New("shader: compilation failed")

// DefaultEntryPoint is the entry point every stage is expected to declare unless overridden.
const DefaultEntryPoint = "main"

// Format selects how a compiled shader is handed to the device.
type Format int

const (
	// FormatSPIRV submits the naga-generated SPIR-V binary.
	FormatSPIRV Format = iota

	// FormatWGSL submits the WGSL source text after naga has validated it.
	FormatWGSL
)

func (f Format) String() string {
	switch f {
	case FormatSPIRV:
		return "spirv"
	case FormatWGSL:
		return "wgsl"
	default:
		return "unknown"
	}
}

// ParseFormat maps a config string to a Format.
//
// Parameters:
//   - s: "spirv" or "wgsl", case-insensitive
//
// Returns:
//   - Format: the matching format
//   - error: an error if s names no known format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spirv", "spir-v", "":
		return FormatSPIRV, nil
	case "wgsl":
		return FormatWGSL, nil
	default:
		return FormatSPIRV, fmt.Errorf("shader: unknown format %q", s)
	}
}

// Module is a compiled shader ready to be created on a device.
type Module struct {
	// Label is the debug label, the file base name for file sources.
	Label string

	// Path is the source file path, empty for in-memory sources.
	Path string

	// Stage is the stage the source was compiled for.
	Stage Stage

	// EntryPoint is the verified entry point name.
	EntryPoint string

	// Format is the form the descriptor carries.
	Format Format

	// Descriptor is the shader module descriptor passed to CreateShaderModule.
	Descriptor *wgpu.ShaderModuleDescriptor
}

// CreateModule creates the shader module on device.
//
// Parameters:
//   - device: the device to create the module on
//
// Returns:
//   - *wgpu.ShaderModule: the created module
//   - error: a creation error
func (m *Module) CreateModule(device gpu.Device) (*wgpu.ShaderModule, error) {
	mod, err := device.CreateShaderModule(m.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s shader module %q: %w", m.Stage, m.Label, err)
	}
	return mod, nil
}

// compileOptions holds the configurable parameters of a single compilation.
type compileOptions struct {
	entryPoint string
	format     Format
}

// CompileOption is a functional option used to configure Compile and CompileFile.
type CompileOption func(*compileOptions)

// WithEntryPoint overrides the entry point the source must declare for its stage.
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - CompileOption: a function that sets the entry point
func WithEntryPoint(name string) CompileOption {
	return func(o *compileOptions) {
		o.entryPoint = name
	}
}

// WithFormat sets the descriptor format. Defaults to FormatSPIRV.
//
// Parameters:
//   - format: the descriptor format
//
// Returns:
//   - CompileOption: a function that sets the format
func WithFormat(format Format) CompileOption {
	return func(o *compileOptions) {
		o.format = format
	}
}

// Compile checks that source declares the entry point for stage, runs it through the naga
// front end and builds the shader module descriptor.
//
// Parameters:
//   - label: the debug label of the module
//   - source: WGSL source text
//   - stage: the stage the module is used for
//   - opts: a variadic list of CompileOption functions
//
// Returns:
//   - *Module: the compiled module
//   - error: ErrCompile wrapping the diagnostic
func Compile(label, source string, stage Stage, opts ...CompileOption) (*Module, error) {
	o := compileOptions{entryPoint: DefaultEntryPoint, format: FormatSPIRV}
	for _, opt := range opts {
		opt(&o)
	}

	if !slices.Contains(entryPoints(source, stage), o.entryPoint) {
		return nil, fmt.Errorf("%w: %s: no @%s entry point named %q", ErrCompile, label, stage, o.entryPoint)
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse: %v", ErrCompile, label, err)
	}
	ir, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: lower: %v", ErrCompile, label, err)
	}

	desc := &wgpu.ShaderModuleDescriptor{Label: label}
	switch o.format {
	case FormatWGSL:
		desc.WGSLDescriptor = &wgpu.ShaderModuleWGSLDescriptor{Code: source}
	default:
		code, err := spirv.NewBackend(spirv.DefaultOptions()).Compile(ir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: spirv: %v", ErrCompile, label, err)
		}
		desc.SPIRVDescriptor = &wgpu.ShaderModuleSPIRVDescriptor{Code: code}
	}

	return &Module{
		Label:      label,
		Stage:      stage,
		EntryPoint: o.entryPoint,
		Format:     o.format,
		Descriptor: desc,
	}, nil
}

// CompileFile reads a WGSL file and compiles it. The module label is the file base name.
//
// Parameters:
//   - path: the WGSL file path
//   - stage: the stage the module is used for
//   - opts: a variadic list of CompileOption functions
//
// Returns:
//   - *Module: the compiled module
//   - error: ErrCompile wrapping the read or compile diagnostic
func CompileFile(path string, stage Stage, opts ...CompileOption) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	m, err := Compile(filepath.Base(path), string(data), stage, opts...)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}
