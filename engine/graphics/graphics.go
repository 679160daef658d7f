// Package graphics owns the WebGPU instance, adapter, device, queue and presentation surface of a
// window, and is the factory for every GPU resource an application creates.
package graphics

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/Carmen-Shannon/brics-go/engine/handle"
	"github.com/Carmen-Shannon/brics-go/engine/pipeline"
	"github.com/Carmen-Shannon/brics-go/engine/renderer"
	"github.com/Carmen-Shannon/brics-go/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the part of a window the manager presents to.
type Window interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
	Wake()
}

// createView produces the default view of a texture. Replaced in tests, where textures are placeholders.
var createView = func(tex *wgpu.Texture) (*wgpu.TextureView, error) {
	return tex.CreateView(nil)
}

// release frees a native object. Replaced in tests for the same reason.
var release = func(r interface{ Release() }) {
	r.Release()
}

type moduleKey struct {
	path  string
	stage shader.Stage
}

type manager struct {
	window Window

	instance     *wgpu.Instance
	adapter      *wgpu.Adapter
	nativeDevice *wgpu.Device
	nativeQueue  *wgpu.Queue
	surface      *wgpuSurface

	device gpu.Device
	queue  gpu.Queue
	target surfaceTarget

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool

	compiler      shader.Compiler
	modules       map[moduleKey]*shader.Module
	reloads       *reloadRegistry
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView
	requestRedraw func()
}

// Manager is the GPU context of one window.
type Manager interface {
	// Device returns the device resources are created on.
	Device() gpu.Device

	// Queue returns the queue buffer writes go through.
	Queue() gpu.Queue

	// CreateBinding allocates the live resource described by a layout.
	//
	// Parameters:
	//   - layout: the binding layout, or anything carrying one
	//
	// Returns:
	//   - binding.Binding: the allocated binding
	//   - error: an allocation error
	CreateBinding(layout binding.LayoutSource) (binding.Binding, error)

	// CreateGeometry uploads vertex bytes and 16-bit indices into a new immutable geometry.
	//
	// Parameters:
	//   - vertices: packed vertex data
	//   - indices: triangle indices
	//
	// Returns:
	//   - pipeline.Geometry: the uploaded geometry
	//   - error: pipeline.ErrEmptyGeometry or an allocation error
	CreateGeometry(vertices []byte, indices []uint16) (pipeline.Geometry, error)

	// PrecompileShaders compiles shader files in parallel and caches the results for CreatePipeline.
	//
	// Parameters:
	//   - reqs: the shader files to compile
	//
	// Returns:
	//   - error: the joined compile errors
	PrecompileShaders(reqs []shader.Request) error

	// CreatePipeline compiles (or takes from the cache) the vertex and fragment shader files and builds a
	// render pipeline. An empty fragmentPath builds a depth-only pipeline.
	//
	// Parameters:
	//   - vertexPath: the WGSL vertex shader file
	//   - fragmentPath: the WGSL fragment shader file, or "" for depth-only
	//   - entries: the slot-tagged layouts of bind group 0
	//   - vertex: the per-vertex attribute description
	//   - opts: pipeline options
	//
	// Returns:
	//   - pipeline.Pipeline: the built pipeline
	//   - error: a compile, validation or creation error
	CreatePipeline(vertexPath, fragmentPath string, entries *binding.LayoutEntries, vertex pipeline.Vertex, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error)

	// AddPipelineEntity builds a bind group from set and appends an entity drawing geometry to p.
	//
	// Parameters:
	//   - p: the pipeline
	//   - geometry: the shared geometry
	//   - set: the slot-tagged bindings
	//   - nInstances: instances per draw
	//
	// Returns:
	//   - int: the entity index
	//   - error: a slot validation or creation error
	AddPipelineEntity(p pipeline.Pipeline, geometry pipeline.Geometry, set *binding.Set, nInstances uint32) (int, error)

	// CreateDepthTextureView creates a Depth32Float render attachment the size of the window. The
	// manager owns one depth target: a successful call releases the texture and view returned by the
	// previous call, so the new view must replace the old one in every pass before the next frame.
	//
	// Returns:
	//   - *wgpu.TextureView: the depth view
	//   - error: a creation error
	CreateDepthTextureView() (*wgpu.TextureView, error)

	// UpdateHandle writes a handle's current state to its binding.
	//
	// Parameters:
	//   - h: the handle
	//
	// Returns:
	//   - error: a write error
	UpdateHandle(h handle.Handle) error

	// UploadTexture copies staged pixels into a texture handle.
	//
	// Parameters:
	//   - tex: the texture handle
	//   - data: the staged pixels
	//
	// Returns:
	//   - error: a staging validation error
	UploadTexture(tex handle.Texture, data common.TextureStagingData) error

	// Render acquires the next frame, encodes every pass of r into one command buffer, submits
	// and presents it.
	//
	// Parameters:
	//   - r: the renderer
	//
	// Returns:
	//   - error: ErrFrameAcquisition when the frame could not be acquired after one retry
	Render(r renderer.Renderer) error

	// RequestRedraw asks the application loop to render as soon as possible.
	RequestRedraw()

	// Resize reconfigures the surface to a new framebuffer size.
	//
	// Parameters:
	//   - width: the framebuffer width
	//   - height: the framebuffer height
	Resize(width, height int)

	// WindowSize returns the framebuffer size of the window.
	WindowSize() (int, int)

	// SurfaceFormat returns the color format of the presentation surface.
	SurfaceFormat() wgpu.TextureFormat

	// EnableHotReload starts watching the shader files of every pipeline created so far.
	//
	// Returns:
	//   - error: a watcher error
	EnableHotReload() error

	// PollReloads rebuilds the pipelines whose shader files changed since the last poll. A reload
	// that fails to compile is logged and the previous pipeline stays in use.
	//
	// Returns:
	//   - int: the number of pipelines rebuilt
	PollReloads() int

	// Release frees the manager's resources. Pipelines and handles are released by their owners.
	Release()
}

var _ Manager = &manager{}

// NewManager acquires an adapter and device compatible with the window's surface and configures the
// surface. It locks the calling goroutine to its OS thread and panics if no adapter or device is
// available.
//
// Parameters:
//   - w: the window to present to
//   - options: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the ready manager
func NewManager(w Window, options ...ManagerBuilderOption) Manager {
	runtime.LockOSThread()

	m := newManager(w, options...)
	m.instance = wgpu.CreateInstance(nil)
	surface := m.instance.CreateSurface(w.SurfaceDescriptor())

	adapter, err := m.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: m.forceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		panic(err)
	}
	m.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "brics device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	m.nativeDevice = device
	m.nativeQueue = device.GetQueue()
	m.device = device
	m.queue = m.nativeQueue

	capabilities := surface.GetCapabilities(adapter)
	m.surfaceFormat = capabilities.Formats[0]
	m.surface = &wgpuSurface{
		surface: surface,
		adapter: adapter,
		device:  device,
		config: wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      m.surfaceFormat,
			PresentMode: m.presentMode,
			AlphaMode:   capabilities.AlphaModes[0],
		},
	}
	m.target = m.surface
	m.surface.resize(w.Width(), w.Height())

	common.Logger().Info("graphics ready", "format", m.surfaceFormat, "present", m.presentMode, "width", w.Width(), "height", w.Height())
	return m
}

// newManager applies options over the defaults without touching the GPU.
func newManager(w Window, options ...ManagerBuilderOption) *manager {
	m := &manager{
		window:      w,
		presentMode: wgpu.PresentModeFifo,
		modules:     make(map[moduleKey]*shader.Module),
		reloads:     newReloadRegistry(),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.compiler == nil {
		m.compiler = shader.NewCompiler()
	}
	if m.requestRedraw == nil {
		m.requestRedraw = w.Wake
	}
	return m
}

func (m *manager) Device() gpu.Device {
	return m.device
}

func (m *manager) Queue() gpu.Queue {
	return m.queue
}

func (m *manager) SurfaceFormat() wgpu.TextureFormat {
	return m.surfaceFormat
}

func (m *manager) WindowSize() (int, int) {
	return m.window.Width(), m.window.Height()
}

func (m *manager) CreateBinding(layout binding.LayoutSource) (binding.Binding, error) {
	return layout.BindingLayout().CreateBinding(m.device)
}

// CreateHandle creates a handle of any kind on the manager's device.
//
// Parameters:
//   - m: the manager
//   - layout: the handle layout
//
// Returns:
//   - H: the new handle
//   - error: an allocation error
func CreateHandle[H handle.Handle](m Manager, layout handle.HandleLayout[H]) (H, error) {
	return layout.CreateHandle(m.Device())
}

func (m *manager) CreateGeometry(vertices []byte, indices []uint16) (pipeline.Geometry, error) {
	return pipeline.NewGeometry(m.device, m.queue, vertices, indices)
}

func (m *manager) PrecompileShaders(reqs []shader.Request) error {
	modules, err := m.compiler.CompileFiles(reqs)
	for _, mod := range modules {
		if mod == nil {
			continue
		}
		m.modules[keyOf(mod.Path, mod.Stage)] = mod
	}
	return err
}

func (m *manager) CreatePipeline(vertexPath, fragmentPath string, entries *binding.LayoutEntries, vertex pipeline.Vertex, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	shaders, entryPoints, err := m.loadShaders(vertexPath, fragmentPath, false)
	if err != nil {
		return nil, err
	}
	defer releaseShaders(shaders)

	// Entry points verified at compile time come first so callers can still override them.
	opts = append([]pipeline.PipelineBuilderOption{entryPoints}, opts...)
	p, err := pipeline.NewPipeline(m.device, shaders, entries, vertex, opts...)
	if err != nil {
		return nil, err
	}
	m.reloads.register(p, vertexPath, fragmentPath)
	return p, nil
}

// loadShaders compiles or looks up both stages and creates their modules. fresh bypasses the cache.
func (m *manager) loadShaders(vertexPath, fragmentPath string, fresh bool) (pipeline.Shaders, pipeline.PipelineBuilderOption, error) {
	vs, err := m.module(vertexPath, shader.StageVertex, fresh)
	if err != nil {
		return pipeline.Shaders{}, nil, err
	}
	shaders := pipeline.Shaders{}
	if shaders.Vertex, err = vs.CreateModule(m.device); err != nil {
		return pipeline.Shaders{}, nil, err
	}

	fragmentEntry := shader.DefaultEntryPoint
	if fragmentPath != "" {
		fs, err := m.module(fragmentPath, shader.StageFragment, fresh)
		if err != nil {
			releaseShaders(shaders)
			return pipeline.Shaders{}, nil, err
		}
		if shaders.Fragment, err = fs.CreateModule(m.device); err != nil {
			releaseShaders(shaders)
			return pipeline.Shaders{}, nil, err
		}
		fragmentEntry = fs.EntryPoint
	}
	return shaders, pipeline.WithEntryPoints(vs.EntryPoint, fragmentEntry), nil
}

// releaseShaders frees the shader modules of one build. A render pipeline keeps what it needs, so
// modules are released once the pipeline is created, whether or not creation succeeded.
func releaseShaders(s pipeline.Shaders) {
	if s.Vertex != nil {
		release(s.Vertex)
	}
	if s.Fragment != nil {
		release(s.Fragment)
	}
}

func (m *manager) module(path string, stage shader.Stage, fresh bool) (*shader.Module, error) {
	key := keyOf(path, stage)
	if mod, ok := m.modules[key]; ok && !fresh {
		return mod, nil
	}
	mod, err := m.compiler.CompileFile(shader.Request{Path: path, Stage: stage})
	if err != nil {
		return nil, fmt.Errorf("%s shader %q: %w", stage, path, err)
	}
	m.modules[key] = mod
	return mod, nil
}

func keyOf(path string, stage shader.Stage) moduleKey {
	return moduleKey{path: absPath(path), stage: stage}
}

// absPath matches the paths the shader watcher reports.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (m *manager) AddPipelineEntity(p pipeline.Pipeline, geometry pipeline.Geometry, set *binding.Set, nInstances uint32) (int, error) {
	return p.AddEntity(m.device, geometry, set, nInstances)
}

func (m *manager) CreateDepthTextureView() (*wgpu.TextureView, error) {
	width, height := m.WindowSize()
	tex, err := m.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth texture",
		Size: wgpu.Extent3D{
			Width:              uint32(max(width, 1)),
			Height:             uint32(max(height, 1)),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}
	view, err := createView(tex)
	if err != nil {
		release(tex)
		return nil, fmt.Errorf("failed to create depth texture view: %w", err)
	}
	m.releaseDepthTarget()
	m.depthTexture, m.depthView = tex, view
	return view, nil
}

func (m *manager) releaseDepthTarget() {
	if m.depthView != nil {
		release(m.depthView)
		m.depthView = nil
	}
	if m.depthTexture != nil {
		release(m.depthTexture)
		m.depthTexture = nil
	}
}

func (m *manager) UpdateHandle(h handle.Handle) error {
	return h.Update(m.queue)
}

func (m *manager) UploadTexture(tex handle.Texture, data common.TextureStagingData) error {
	return tex.Upload(m.nativeQueue, data)
}

func (m *manager) Render(r renderer.Renderer) error {
	surfaceTexture, err := acquireWithRetry(m.target)
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create frame view: %w", err)
	}
	defer view.Release()

	encoder, err := m.nativeDevice.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	r.Submit(encoder, view)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	m.nativeQueue.Submit(commandBuffer)
	m.surface.surface.Present()
	return nil
}

func (m *manager) RequestRedraw() {
	m.requestRedraw()
}

func (m *manager) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if m.surface != nil {
		m.surface.resize(width, height)
	}
	common.Logger().Debug("surface resized", "width", width, "height", height)
}

func (m *manager) Release() {
	m.reloads.close()
	m.releaseDepthTarget()
	if m.surface != nil {
		m.surface.surface.Release()
	}
	if m.nativeQueue != nil {
		m.nativeQueue.Release()
	}
	if m.nativeDevice != nil {
		m.nativeDevice.Release()
	}
	if m.adapter != nil {
		m.adapter.Release()
	}
	if m.instance != nil {
		m.instance.Release()
	}
}
