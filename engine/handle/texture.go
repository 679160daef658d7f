package handle

import (
	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type textureLayoutImpl struct {
	layout binding.TextureLayout
}

// TextureLayout is the handle layout for 2D textures that are rendered into and sampled.
type TextureLayout interface {
	HandleLayout[Texture]
}

var _ TextureLayout = &textureLayoutImpl{}

// NewTextureLayout creates a texture handle layout.
//
// Parameters:
//   - width, height: the texture size in pixels
//   - format: the texel format
//   - options: binding options (visibility, label, uploadable)
//
// Returns:
//   - TextureLayout: the texture layout
func NewTextureLayout(width, height uint32, format wgpu.TextureFormat, options ...binding.LayoutBuilderOption) TextureLayout {
	return &textureLayoutImpl{
		layout: binding.NewTextureLayout(width, height, format, options...),
	}
}

func (l *textureLayoutImpl) BindingLayout() binding.Layout {
	return l.layout
}

func (l *textureLayoutImpl) CreateHandle(device gpu.Device) (Texture, error) {
	b, err := l.layout.CreateTextureBinding(device)
	if err != nil {
		return nil, err
	}
	return &textureImpl{binding: b}, nil
}

type textureImpl struct {
	binding binding.TextureBinding
}

// Texture is a handle over a texture binding. Its state lives on the GPU, so Update writes nothing.
type Texture interface {
	Handle

	// CreateTextureView creates a view of the texture for use as a render pass attachment.
	//
	// Returns:
	//   - *wgpu.TextureView: the new view, owned by the caller
	//   - error: an error if view creation fails
	CreateTextureView() (*wgpu.TextureView, error)

	// Upload copies RGBA pixels into the texture. The layout must be uploadable.
	//
	// Parameters:
	//   - queue: the queue used for the copy
	//   - data: the staged pixels, matching the texture size
	//
	// Returns:
	//   - error: an error if the staging data does not fit the texture
	Upload(queue *wgpu.Queue, data common.TextureStagingData) error
}

var _ Texture = &textureImpl{}

func (t *textureImpl) Binding() binding.Binding {
	return t.binding
}

func (t *textureImpl) CreateTextureView() (*wgpu.TextureView, error) {
	return t.binding.CreateTextureView()
}

func (t *textureImpl) Upload(queue *wgpu.Queue, data common.TextureStagingData) error {
	return t.binding.Upload(queue, data)
}

func (t *textureImpl) Update(gpu.Queue) error {
	return nil
}

func (t *textureImpl) Release() {
	t.binding.Release()
}
