// Package gpu declares the narrow slice of the WebGPU API that the binding, handle and pipeline
// layers consume. *wgpu.Device, *wgpu.Queue and *wgpu.RenderPassEncoder satisfy these interfaces
// directly; tests substitute recording fakes.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Device is the resource factory subset of *wgpu.Device.
type Device interface {
	CreateBuffer(descriptor *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
	CreateTexture(descriptor *wgpu.TextureDescriptor) (*wgpu.Texture, error)
	CreateSampler(descriptor *wgpu.SamplerDescriptor) (*wgpu.Sampler, error)
	CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)
	CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)
	CreatePipelineLayout(descriptor *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)
	CreateShaderModule(descriptor *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)
	CreateRenderPipeline(descriptor *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)
}

// Queue is the buffer upload subset of *wgpu.Queue.
type Queue interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

// PassEncoder is the draw subset of *wgpu.RenderPassEncoder used by pipelines.
type PassEncoder interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// GPUType is implemented by every CPU-side struct that is uploaded to a GPU buffer.
// Marshal must return exactly Size() bytes laid out as the matching WGSL struct.
type GPUType interface {
	// Size returns the WGSL size of the struct in bytes, including trailing padding.
	Size() int

	// Marshal serializes the struct into a little-endian byte buffer of length Size().
	Marshal() []byte
}

var (
	_ Device      = (*wgpu.Device)(nil)
	_ Queue       = (*wgpu.Queue)(nil)
	_ PassEncoder = (*wgpu.RenderPassEncoder)(nil)
)
