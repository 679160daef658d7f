package render_pass

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderPassBuilderOption is a functional option used to configure a RenderPass during construction.
type RenderPassBuilderOption func(*renderPass)

// WithLabel sets the debug label of the pass.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - RenderPassBuilderOption: a function that sets the label
func WithLabel(label string) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.label = label
	}
}

// WithColorAttachment sets the color target of the pass.
//
// Parameters:
//   - view: the attachment view, usually Dynamic() for the swap chain
//   - load: the load operation
//   - store: the store operation
//   - clear: the clear color used when load is LoadOpClear
//
// Returns:
//   - RenderPassBuilderOption: a function that sets the color attachment
func WithColorAttachment(view AttachmentView, load wgpu.LoadOp, store wgpu.StoreOp, clear wgpu.Color) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.color = &ColorAttachment{View: view, Load: load, Store: store, Clear: clear}
	}
}

// WithDepthAttachment sets the depth target of the pass.
//
// Parameters:
//   - view: the attachment view, usually Static() over a depth texture view
//   - load: the depth load operation
//   - store: the depth store operation
//   - clearDepth: the depth clear value used when load is LoadOpClear
//
// Returns:
//   - RenderPassBuilderOption: a function that sets the depth attachment
func WithDepthAttachment(view AttachmentView, load wgpu.LoadOp, store wgpu.StoreOp, clearDepth float32) RenderPassBuilderOption {
	return func(rp *renderPass) {
		rp.depth = &DepthAttachment{View: view, Load: load, Store: store, ClearDepth: clearDepth}
	}
}
