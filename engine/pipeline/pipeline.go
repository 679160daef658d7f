package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// ErrNoVertexShader is returned when a pipeline is built without a vertex shader module.
var ErrNoVertexShader = errors.New("pipeline: vertex shader module is required")

// Shaders holds the compiled modules for one pipeline. Fragment is nil for depth-only pipelines.
type Shaders struct {
	Vertex   *wgpu.ShaderModule
	Fragment *wgpu.ShaderModule
}

// Entity is one drawable within a pipeline: a shared geometry, a bind group built from a validated
// binding set, and an instance count. Immutable once added.
type Entity struct {
	geometry  Geometry
	bindGroup *wgpu.BindGroup
	instances uint32
}

// Geometry returns the shared geometry drawn by the entity.
func (e *Entity) Geometry() Geometry {
	return e.geometry
}

// BindGroup returns the bind group set at group 0 before drawing the entity.
func (e *Entity) BindGroup() *wgpu.BindGroup {
	return e.bindGroup
}

// Instances returns the number of instances drawn.
func (e *Entity) Instances() uint32 {
	return e.instances
}

// release frees a native object. Replaced in tests, where objects are placeholders.
var release = func(r interface{ Release() }) {
	r.Release()
}

// pipelineImpl is the implementation of Pipeline.
type pipelineImpl struct {
	label   string
	entries *binding.LayoutEntries
	vertex  wgpu.VertexBufferLayout

	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
	renderPipeline  *wgpu.RenderPipeline

	entities []*Entity

	// The following fields are configured through PipelineBuilderOption functions.

	vertexEntry         string
	fragmentEntry       string
	hasColor            bool
	colorFormat         wgpu.TextureFormat
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
	hasDepth            bool
	depthFormat         wgpu.TextureFormat
	depthCompare        wgpu.CompareFunction
	depthWrite          bool
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	frontFace           wgpu.FrontFace
	topology            wgpu.PrimitiveTopology
}

// Pipeline is a compiled render pipeline plus the entities drawn with it. All entities share one
// bind group layout, built from the pipeline's LayoutEntries, bound at group 0.
type Pipeline interface {
	// Label returns the debug label.
	Label() string

	// Entries returns the slot-tagged layouts the bind group layout was built from.
	//
	// Returns:
	//   - *binding.LayoutEntries: the layout list
	Entries() *binding.LayoutEntries

	// BindGroupLayout returns the bind group layout shared by all entities.
	BindGroupLayout() *wgpu.BindGroupLayout

	// RenderPipeline returns the compiled GPU pipeline object.
	RenderPipeline() *wgpu.RenderPipeline

	// AddEntity validates set against the pipeline's layouts, builds a bind group from it and
	// appends an entity drawing geometry nInstances times. The geometry is shared, not copied.
	//
	// Parameters:
	//   - device: the device to create the bind group on
	//   - geometry: the vertex and index buffers to draw
	//   - set: the slot-tagged bindings for this entity
	//   - nInstances: the instance count passed to the draw call
	//
	// Returns:
	//   - int: the entity index
	//   - error: a binding validation error or a bind group creation error
	AddEntity(device gpu.Device, geometry Geometry, set *binding.Set, nInstances uint32) (int, error)

	// Entity returns the entity at index i, or nil if i is out of range.
	Entity(i int) *Entity

	// EntityCount returns the number of entities.
	EntityCount() int

	// Render binds the pipeline, then for each entity in insertion order binds its bind group at
	// group 0, its vertex and index buffers, and issues one indexed draw over all its instances.
	//
	// Parameters:
	//   - pass: the open render pass
	Render(pass gpu.PassEncoder)

	// Reload rebuilds the GPU pipeline object from new shader modules, keeping layouts and entities.
	// On failure the previous pipeline object stays in use.
	//
	// Parameters:
	//   - device: the device to build on
	//   - shaders: the new shader modules
	//
	// Returns:
	//   - error: a creation error
	Reload(device gpu.Device, shaders Shaders) error

	// Release frees the pipeline, its layouts and every entity bind group. Geometry is not released,
	// since it may be shared with other pipelines.
	Release()
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline validates entries and builds the bind group layout, pipeline layout and render
// pipeline.
//
// Parameters:
//   - device: the device to build on
//   - shaders: the compiled shader modules (Fragment required when a color target is set)
//   - entries: the slot-tagged layouts of bind group 0
//   - vertex: the per-vertex attribute description
//   - opts: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the built pipeline
//   - error: a slot validation error, ErrUnknownFormat, or a creation error
func NewPipeline(device gpu.Device, shaders Shaders, entries *binding.LayoutEntries, vertex Vertex, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipelineImpl{
		entries:       entries,
		vertexEntry:   "main",
		fragmentEntry: "main",
		writeMask:     wgpu.ColorWriteMaskAll,
		cullMode:      wgpu.CullModeNone,
		frontFace:     wgpu.FrontFaceCCW,
		topology:      wgpu.PrimitiveTopologyTriangleList,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.label == "" {
		p.label = "pipeline-" + uuid.NewString()
	}

	vertexLayout, err := VertexBufferLayout(vertex)
	if err != nil {
		return nil, err
	}
	p.vertex = vertexLayout

	p.bindGroupLayout, err = entries.CreateBindGroupLayout(device, p.label+" bind group layout")
	if err != nil {
		return nil, err
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.label + " layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindGroupLayout},
	})
	if err != nil {
		release(p.bindGroupLayout)
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", p.label, err)
	}

	if err := p.build(device, shaders); err != nil {
		p.Release()
		return nil, err
	}
	common.Logger().Debug("pipeline created", "label", p.label, "slots", entries.Len(), "color", p.hasColor, "depth", p.hasDepth)
	return p, nil
}

// descriptor assembles the render pipeline descriptor for the given shader modules.
func (p *pipelineImpl) descriptor(shaders Shaders) (*wgpu.RenderPipelineDescriptor, error) {
	if shaders.Vertex == nil {
		return nil, ErrNoVertexShader
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaders.Vertex,
			EntryPoint: p.vertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{p.vertex},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	// Depth-only pipelines have no fragment stage.
	if p.hasColor {
		if shaders.Fragment == nil {
			return nil, fmt.Errorf("pipeline %q has a color target but no fragment shader", p.label)
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     shaders.Fragment,
			EntryPoint: p.fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.colorFormat,
					WriteMask: p.writeMask,
					Blend:     p.blendState,
				},
			},
		}
	}

	if p.hasDepth {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWrite,
			DepthCompare:        p.depthCompare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	return desc, nil
}

func (p *pipelineImpl) build(device gpu.Device, shaders Shaders) error {
	desc, err := p.descriptor(shaders)
	if err != nil {
		return err
	}
	created, err := device.CreateRenderPipeline(desc)
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %q: %w", p.label, err)
	}
	p.renderPipeline = created
	return nil
}

func (p *pipelineImpl) Label() string {
	return p.label
}

func (p *pipelineImpl) Entries() *binding.LayoutEntries {
	return p.entries
}

func (p *pipelineImpl) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *pipelineImpl) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipelineImpl) EntityCount() int {
	return len(p.entities)
}

func (p *pipelineImpl) Entity(i int) *Entity {
	if i < 0 || i >= len(p.entities) {
		return nil
	}
	return p.entities[i]
}

func (p *pipelineImpl) AddEntity(device gpu.Device, geometry Geometry, set *binding.Set, nInstances uint32) (int, error) {
	label := fmt.Sprintf("%s entity %d", p.label, len(p.entities))
	group, err := set.CreateBindGroup(device, p.bindGroupLayout, p.entries, label)
	if err != nil {
		return -1, fmt.Errorf("pipeline %q: %w", p.label, err)
	}
	p.entities = append(p.entities, &Entity{
		geometry:  geometry,
		bindGroup: group,
		instances: nInstances,
	})
	return len(p.entities) - 1, nil
}

func (p *pipelineImpl) Render(pass gpu.PassEncoder) {
	pass.SetPipeline(p.renderPipeline)
	for _, e := range p.entities {
		pass.SetBindGroup(0, e.bindGroup, nil)
		pass.SetVertexBuffer(0, e.geometry.VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(e.geometry.IndexBuffer(), e.geometry.IndexFormat(), 0, wgpu.WholeSize)
		pass.DrawIndexed(e.geometry.IndexCount(), e.instances, 0, 0, 0)
	}
}

func (p *pipelineImpl) Reload(device gpu.Device, shaders Shaders) error {
	previous := p.renderPipeline
	if err := p.build(device, shaders); err != nil {
		return err
	}
	if previous != nil {
		release(previous)
	}
	common.Logger().Info("pipeline reloaded", "label", p.label)
	return nil
}

func (p *pipelineImpl) Release() {
	for _, e := range p.entities {
		if e.bindGroup != nil {
			release(e.bindGroup)
		}
	}
	p.entities = nil
	if p.renderPipeline != nil {
		release(p.renderPipeline)
		p.renderPipeline = nil
	}
	if p.pipelineLayout != nil {
		release(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.bindGroupLayout != nil {
		release(p.bindGroupLayout)
		p.bindGroupLayout = nil
	}
}
