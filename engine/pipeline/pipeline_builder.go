package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipelineImpl)

// WithLabel sets the debug label for the pipeline and its layouts.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - PipelineBuilderOption: a function that sets the label
func WithLabel(label string) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.label = label
	}
}

// WithColorTarget adds a fragment stage writing one color target of the given format.
// Pipelines without a color target are depth-only and skip the fragment stage.
//
// Parameters:
//   - format: the color attachment format, typically the surface format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color target
func WithColorTarget(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.colorFormat = format
		p.hasColor = true
	}
}

// WithBlendState enables blending on the color target.
//
// Parameters:
//   - state: the blend state to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(state wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.blendState = &state
	}
}

// WithWriteMask sets the color write mask. Defaults to all channels.
//
// Parameters:
//   - mask: the color write mask
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.writeMask = mask
	}
}

// WithDepthStencil enables depth testing against an attachment of the given format.
//
// Parameters:
//   - format: the depth attachment format
//   - compare: the depth comparison function
//   - write: whether passing fragments write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepthStencil(format wgpu.TextureFormat, compare wgpu.CompareFunction, write bool) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.depthFormat = format
		p.depthCompare = compare
		p.depthWrite = write
		p.hasDepth = true
	}
}

// WithDepthBias sets the depth bias parameters, used by shadow pipelines against acne.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithCullMode sets the face culling mode. Defaults to none.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order. Defaults to counter-clockwise.
//
// Parameters:
//   - face: the winding order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(face wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.frontFace = face
	}
}

// WithTopology sets the primitive topology. Defaults to triangle list.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.topology = topology
	}
}

// WithEntryPoints overrides the vertex and fragment entry point names. Both default to "main".
//
// Parameters:
//   - vertex: the vertex stage entry point
//   - fragment: the fragment stage entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.vertexEntry = vertex
		p.fragmentEntry = fragment
	}
}
