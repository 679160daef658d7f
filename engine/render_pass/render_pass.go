// Package render_pass groups pipelines into one native render pass with a color and/or depth
// attachment. Attachments may be bound to the per-frame swap chain view or to fixed views.
package render_pass

import (
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/Carmen-Shannon/brics-go/engine/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderPass is the implementation of RenderPass.
type renderPass struct {
	label     string
	color     *ColorAttachment
	depth     *DepthAttachment
	pipelines []pipeline.Pipeline
}

// RenderPass is an ordered list of pipelines drawn into the same attachments.
type RenderPass interface {
	// Label returns the debug label.
	Label() string

	// AddPipeline appends p. Pipelines render in insertion order.
	//
	// Parameters:
	//   - p: the pipeline to draw in this pass
	//
	// Returns:
	//   - int: the pipeline index within the pass
	AddPipeline(p pipeline.Pipeline) int

	// Pipeline returns the pipeline at index i, or nil if i is out of range.
	Pipeline(i int) pipeline.Pipeline

	// PipelineCount returns the number of pipelines.
	PipelineCount() int

	// Color returns the color attachment, or nil for depth-only passes.
	Color() *ColorAttachment

	// Depth returns the depth attachment, or nil for passes without depth.
	Depth() *DepthAttachment

	// SetDepthView replaces the view of a static depth attachment, used after a resize.
	//
	// Parameters:
	//   - view: the new depth texture view
	SetDepthView(view *wgpu.TextureView)

	// Descriptor resolves the attachments against the frame view. A dynamic depth attachment
	// has no swap chain equivalent and resolves to no depth attachment at all.
	//
	// Parameters:
	//   - frame: the swap chain view of the current frame
	//
	// Returns:
	//   - *wgpu.RenderPassDescriptor: the native pass descriptor
	Descriptor(frame *wgpu.TextureView) *wgpu.RenderPassDescriptor

	// Draw renders every pipeline in order into an already open pass.
	//
	// Parameters:
	//   - pass: the open render pass
	Draw(pass gpu.PassEncoder)

	// Encode begins one native pass on encoder, draws every pipeline and ends the pass.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//   - frame: the swap chain view of the current frame
	Encode(encoder *wgpu.CommandEncoder, frame *wgpu.TextureView)
}

var _ RenderPass = &renderPass{}

// NewRenderPass creates a RenderPass with all specified options applied.
//
// Parameters:
//   - options: a variadic list of RenderPassBuilderOption functions
//
// Returns:
//   - RenderPass: the configured pass
func NewRenderPass(options ...RenderPassBuilderOption) RenderPass {
	rp := &renderPass{label: "render pass"}
	for _, opt := range options {
		opt(rp)
	}
	return rp
}

func (rp *renderPass) Label() string {
	return rp.label
}

func (rp *renderPass) Color() *ColorAttachment {
	return rp.color
}

func (rp *renderPass) Depth() *DepthAttachment {
	return rp.depth
}

func (rp *renderPass) PipelineCount() int {
	return len(rp.pipelines)
}

func (rp *renderPass) AddPipeline(p pipeline.Pipeline) int {
	rp.pipelines = append(rp.pipelines, p)
	return len(rp.pipelines) - 1
}

func (rp *renderPass) Pipeline(i int) pipeline.Pipeline {
	if i < 0 || i >= len(rp.pipelines) {
		return nil
	}
	return rp.pipelines[i]
}

func (rp *renderPass) SetDepthView(view *wgpu.TextureView) {
	if rp.depth == nil || rp.depth.View.IsDynamic() {
		return
	}
	rp.depth.View = Static(view)
}

func (rp *renderPass) Descriptor(frame *wgpu.TextureView) *wgpu.RenderPassDescriptor {
	desc := &wgpu.RenderPassDescriptor{Label: rp.label}

	if rp.color != nil {
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{
			{
				View:       rp.color.View.Resolve(frame),
				LoadOp:     rp.color.Load,
				StoreOp:    rp.color.Store,
				ClearValue: rp.color.Clear,
			},
		}
	}

	if rp.depth != nil && !rp.depth.View.IsDynamic() {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            rp.depth.View.Resolve(frame),
			DepthLoadOp:     rp.depth.Load,
			DepthStoreOp:    rp.depth.Store,
			DepthClearValue: rp.depth.ClearDepth,
		}
	}
	return desc
}

func (rp *renderPass) Draw(pass gpu.PassEncoder) {
	for _, p := range rp.pipelines {
		p.Render(pass)
	}
}

func (rp *renderPass) Encode(encoder *wgpu.CommandEncoder, frame *wgpu.TextureView) {
	pass := encoder.BeginRenderPass(rp.Descriptor(frame))
	rp.Draw(pass)
	pass.End()
}
