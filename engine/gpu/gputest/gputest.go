// Package gputest provides recording fakes of the gpu interfaces for unit tests.
// Returned native objects are zero-value placeholders and must never be released or used
// with the real WebGPU API.
package gputest

import (
	"sync"

	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Write records a single Queue.WriteBuffer call.
type Write struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// Device records every descriptor passed to it and hands back placeholder objects.
// Setting Err makes every call fail with that error.
type Device struct {
	mu sync.Mutex

	Err error

	Buffers          []*wgpu.BufferDescriptor
	Textures         []*wgpu.TextureDescriptor
	Samplers         []*wgpu.SamplerDescriptor
	BindGroupLayouts []*wgpu.BindGroupLayoutDescriptor
	BindGroups       []*wgpu.BindGroupDescriptor
	PipelineLayouts  []*wgpu.PipelineLayoutDescriptor
	ShaderModules    []*wgpu.ShaderModuleDescriptor
	RenderPipelines  []*wgpu.RenderPipelineDescriptor

	bufferSizes map[*wgpu.Buffer]uint64
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{bufferSizes: make(map[*wgpu.Buffer]uint64)}
}

func (d *Device) CreateBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.Buffers = append(d.Buffers, descriptor)
	buf := &wgpu.Buffer{}
	d.bufferSizes[buf] = descriptor.Size
	return buf, nil
}

func (d *Device) CreateTexture(descriptor *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.Textures = append(d.Textures, descriptor)
	return &wgpu.Texture{}, nil
}

func (d *Device) CreateSampler(descriptor *wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.Samplers = append(d.Samplers, descriptor)
	return &wgpu.Sampler{}, nil
}

func (d *Device) CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.BindGroupLayouts = append(d.BindGroupLayouts, descriptor)
	return &wgpu.BindGroupLayout{}, nil
}

func (d *Device) CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.BindGroups = append(d.BindGroups, descriptor)
	return &wgpu.BindGroup{}, nil
}

func (d *Device) CreatePipelineLayout(descriptor *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.PipelineLayouts = append(d.PipelineLayouts, descriptor)
	return &wgpu.PipelineLayout{}, nil
}

func (d *Device) CreateShaderModule(descriptor *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.ShaderModules = append(d.ShaderModules, descriptor)
	return &wgpu.ShaderModule{}, nil
}

func (d *Device) CreateRenderPipeline(descriptor *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.RenderPipelines = append(d.RenderPipelines, descriptor)
	return &wgpu.RenderPipeline{}, nil
}

// BufferSize returns the size a placeholder buffer was created with.
func (d *Device) BufferSize(buf *wgpu.Buffer) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bufferSizes[buf]
}

// Queue records writes and mirrors them into per-buffer byte images so tests can inspect
// buffer contents after a sequence of writes.
type Queue struct {
	mu sync.Mutex

	Err    error
	Writes []Write

	contents map[*wgpu.Buffer][]byte
}

var _ gpu.Queue = &Queue{}

// NewQueue creates an empty recording queue.
func NewQueue() *Queue {
	return &Queue{contents: make(map[*wgpu.Buffer][]byte)}
}

func (q *Queue) WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	cp := append([]byte(nil), data...)
	q.Writes = append(q.Writes, Write{Buffer: buffer, Offset: bufferOffset, Data: cp})

	end := int(bufferOffset) + len(cp)
	img := q.contents[buffer]
	if len(img) < end {
		grown := make([]byte, end)
		copy(grown, img)
		img = grown
	}
	copy(img[bufferOffset:], cp)
	q.contents[buffer] = img
	return nil
}

// Contents returns the accumulated bytes written to buf.
func (q *Queue) Contents(buf *wgpu.Buffer) []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]byte(nil), q.contents[buf]...)
}

// LastWrite returns the most recent write, or false if none were recorded.
func (q *Queue) LastWrite() (Write, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.Writes) == 0 {
		return Write{}, false
	}
	return q.Writes[len(q.Writes)-1], true
}

// Call records one PassEncoder method invocation.
type Call struct {
	Method string
	Args   []any
}

// Pass records draw commands in order.
type Pass struct {
	Calls []Call
}

var _ gpu.PassEncoder = &Pass{}

func (p *Pass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.Calls = append(p.Calls, Call{Method: "SetPipeline", Args: []any{pipeline}})
}

func (p *Pass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.Calls = append(p.Calls, Call{Method: "SetBindGroup", Args: []any{groupIndex, group}})
}

func (p *Pass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.Calls = append(p.Calls, Call{Method: "SetVertexBuffer", Args: []any{slot, buffer}})
}

func (p *Pass) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.Calls = append(p.Calls, Call{Method: "SetIndexBuffer", Args: []any{buffer, format}})
}

func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.Calls = append(p.Calls, Call{Method: "DrawIndexed", Args: []any{indexCount, instanceCount}})
}

// Methods returns the recorded method names in call order.
func (p *Pass) Methods() []string {
	out := make([]string, len(p.Calls))
	for i, c := range p.Calls {
		out[i] = c.Method
	}
	return out
}
