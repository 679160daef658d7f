package renderer

import (
	"github.com/Carmen-Shannon/brics-go/engine/render_pass"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	passes []render_pass.RenderPass
}

// Renderer defines the interface for the per-frame pass list.
//
// Passes are encoded in insertion order into the same command encoder. Ordering is manual: a pass
// that samples a texture written by another pass, such as a material pass reading a shadow map,
// must be added after it.
type Renderer interface {
	// AddRenderPass appends a pass to the end of the frame.
	//
	// Parameters:
	//   - rp: the pass to append
	//
	// Returns:
	//   - int: the pass index
	AddRenderPass(rp render_pass.RenderPass) int

	// RenderPass retrieves the pass at index i.
	//
	// Parameters:
	//   - i: the pass index returned by AddRenderPass
	//
	// Returns:
	//   - render_pass.RenderPass: the pass, or nil if i is out of range
	RenderPass(i int) render_pass.RenderPass

	// RenderPasses retrieves every pass in encode order.
	//
	// Returns:
	//   - []render_pass.RenderPass: the passes
	RenderPasses() []render_pass.RenderPass

	// Submit encodes every pass in order into encoder, resolving dynamic attachments to frame.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//   - frame: the swap chain view of the current frame
	Submit(encoder *wgpu.CommandEncoder, frame *wgpu.TextureView)
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with all specified options applied.
//
// Parameters:
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) AddRenderPass(rp render_pass.RenderPass) int {
	r.passes = append(r.passes, rp)
	return len(r.passes) - 1
}

func (r *renderer) RenderPass(i int) render_pass.RenderPass {
	if i < 0 || i >= len(r.passes) {
		return nil
	}
	return r.passes[i]
}

func (r *renderer) RenderPasses() []render_pass.RenderPass {
	return r.passes
}

func (r *renderer) Submit(encoder *wgpu.CommandEncoder, frame *wgpu.TextureView) {
	for _, rp := range r.passes {
		rp.Encode(encoder, frame)
	}
}
