package render_pass

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// AttachmentView is the texture view a pass attachment renders into. A dynamic view stands for
// the swap chain view of the frame being rendered and is only known at submit time; a static view
// is a fixed texture view such as a depth buffer or a shadow map.
type AttachmentView struct {
	dynamic bool
	view    *wgpu.TextureView
}

// Dynamic returns an attachment view resolved to the current frame view at submit time.
func Dynamic() AttachmentView {
	return AttachmentView{dynamic: true}
}

// Static returns an attachment view that always renders into view.
//
// Parameters:
//   - view: the texture view to render into
//
// Returns:
//   - AttachmentView: the static attachment view
func Static(view *wgpu.TextureView) AttachmentView {
	return AttachmentView{view: view}
}

// IsDynamic reports whether the view is resolved per frame.
func (a AttachmentView) IsDynamic() bool {
	return a.dynamic
}

// Resolve returns the frame view for a dynamic attachment and the fixed view otherwise.
//
// Parameters:
//   - frame: the swap chain view of the current frame
//
// Returns:
//   - *wgpu.TextureView: the view to render into
func (a AttachmentView) Resolve(frame *wgpu.TextureView) *wgpu.TextureView {
	if a.dynamic {
		return frame
	}
	return a.view
}

// ColorAttachment describes the single color target of a pass.
type ColorAttachment struct {
	View  AttachmentView
	Load  wgpu.LoadOp
	Store wgpu.StoreOp
	Clear wgpu.Color
}

// DepthAttachment describes the depth target of a pass.
type DepthAttachment struct {
	View       AttachmentView
	Load       wgpu.LoadOp
	Store      wgpu.StoreOp
	ClearDepth float32
}
