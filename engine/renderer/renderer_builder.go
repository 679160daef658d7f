package renderer

import (
	"github.com/Carmen-Shannon/brics-go/engine/render_pass"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithRenderPass appends a pass to the renderer, in the same order AddRenderPass would.
//
// Parameters:
//   - rp: the pass to append
//
// Returns:
//   - RendererBuilderOption: a function that appends the pass
func WithRenderPass(rp render_pass.RenderPass) RendererBuilderOption {
	return func(r *renderer) {
		r.passes = append(r.passes, rp)
	}
}
