package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// createView produces the default view of a texture. Replaced in tests, where textures are placeholders.
var createView = func(tex *wgpu.Texture) (*wgpu.TextureView, error) {
	return tex.CreateView(nil)
}

// textureLayoutImpl is the implementation of TextureLayout.
type textureLayoutImpl struct {
	width  uint32
	height uint32
	format wgpu.TextureFormat
	opts   layoutOptions
}

// TextureLayout describes a 2D texture that is both a render attachment and a shader-sampled resource.
type TextureLayout interface {
	Layout

	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texel format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the format
	Format() wgpu.TextureFormat

	// SampleType returns the sample type declared in the bind group layout entry.
	// Depth formats sample as depth, everything else as filterable float, unless overridden.
	//
	// Returns:
	//   - wgpu.TextureSampleType: the sample type
	SampleType() wgpu.TextureSampleType

	// Usage returns the texture usage flags applied at creation.
	//
	// Returns:
	//   - wgpu.TextureUsage: RenderAttachment | TextureBinding, plus CopyDst when uploadable
	Usage() wgpu.TextureUsage

	// CreateTextureBinding allocates the texture and its default view.
	//
	// Parameters:
	//   - device: the device to allocate on
	//
	// Returns:
	//   - TextureBinding: the allocated texture binding
	//   - error: an error if allocation fails
	CreateTextureBinding(device gpu.Device) (TextureBinding, error)
}

var _ TextureLayout = &textureLayoutImpl{}

// NewTextureLayout creates a 2D texture layout.
//
// Parameters:
//   - width, height: the texture size in pixels
//   - format: the texel format
//   - options: optional LayoutBuilderOption functions (WithUploadable, WithSampleType, WithLabel, WithVisibility)
//
// Returns:
//   - TextureLayout: the texture layout
func NewTextureLayout(width, height uint32, format wgpu.TextureFormat, options ...LayoutBuilderOption) TextureLayout {
	opts := defaultLayoutOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if opts.label == "" {
		opts.label = KindTexture.String() + "-" + uuid.NewString()
	}
	return &textureLayoutImpl{
		width:  width,
		height: height,
		format: format,
		opts:   opts,
	}
}

// IsDepthFormat reports whether format holds depth data.
//
// Parameters:
//   - format: the texel format to check
//
// Returns:
//   - bool: true for the depth and depth-stencil formats
func IsDepthFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatDepth24Plus,
		wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float:
		return true
	}
	return false
}

func (l *textureLayoutImpl) Kind() Kind {
	return KindTexture
}

func (l *textureLayoutImpl) Label() string {
	return l.opts.label
}

func (l *textureLayoutImpl) Visibility() wgpu.ShaderStage {
	return l.opts.visibility
}

func (l *textureLayoutImpl) Width() uint32 {
	return l.width
}

func (l *textureLayoutImpl) Height() uint32 {
	return l.height
}

func (l *textureLayoutImpl) Format() wgpu.TextureFormat {
	return l.format
}

func (l *textureLayoutImpl) BindingLayout() Layout {
	return l
}

func (l *textureLayoutImpl) SampleType() wgpu.TextureSampleType {
	if l.opts.sampleType != wgpu.TextureSampleTypeUndefined {
		return l.opts.sampleType
	}
	if IsDepthFormat(l.format) {
		return wgpu.TextureSampleTypeDepth
	}
	return wgpu.TextureSampleTypeFloat
}

func (l *textureLayoutImpl) Usage() wgpu.TextureUsage {
	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	if l.opts.uploadable {
		usage |= wgpu.TextureUsageCopyDst
	}
	return usage
}

func (l *textureLayoutImpl) Entry(slot uint32) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    slot,
		Visibility: l.opts.visibility,
	}
	entry.Texture.SampleType = l.SampleType()
	entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	entry.Texture.Multisampled = false
	return entry
}

func (l *textureLayoutImpl) CreateBinding(device gpu.Device) (Binding, error) {
	return l.CreateTextureBinding(device)
}

func (l *textureLayoutImpl) CreateTextureBinding(device gpu.Device) (TextureBinding, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: l.opts.label,
		Size: wgpu.Extent3D{
			Width:              l.width,
			Height:             l.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        l.format,
		Usage:         l.Usage(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", l.opts.label, err)
	}

	view, err := createView(tex)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", l.opts.label, err)
	}
	common.Logger().Debug("texture created", "label", l.opts.label, "width", l.width, "height", l.height)

	return &textureBindingImpl{
		texture:    tex,
		view:       view,
		width:      l.width,
		height:     l.height,
		sampleType: l.SampleType(),
	}, nil
}

// textureBindingImpl is the implementation of TextureBinding.
type textureBindingImpl struct {
	texture    *wgpu.Texture
	view       *wgpu.TextureView
	width      uint32
	height     uint32
	sampleType wgpu.TextureSampleType
}

// TextureBinding is an allocated texture with a default view used for shader sampling.
type TextureBinding interface {
	Binding

	// Texture returns the underlying GPU texture.
	Texture() *wgpu.Texture

	// View returns the default view bound into bind groups.
	View() *wgpu.TextureView

	// SampleType returns the sample type of the layout the texture was created from.
	SampleType() wgpu.TextureSampleType

	// CreateTextureView creates an additional full view of the texture, suitable as a render attachment.
	// The caller owns the returned view.
	//
	// Returns:
	//   - *wgpu.TextureView: the new view
	//   - error: an error if view creation fails
	CreateTextureView() (*wgpu.TextureView, error)

	// Upload copies RGBA pixels into the texture. The layout must have been created WithUploadable
	// and the staging data must match the texture size.
	//
	// Parameters:
	//   - queue: the queue used for the copy
	//   - data: the pixels to upload
	//
	// Returns:
	//   - error: an error if the staging data does not fit the texture
	Upload(queue *wgpu.Queue, data common.TextureStagingData) error
}

var _ TextureBinding = &textureBindingImpl{}

func (b *textureBindingImpl) Kind() Kind {
	return KindTexture
}

func (b *textureBindingImpl) Texture() *wgpu.Texture {
	return b.texture
}

func (b *textureBindingImpl) View() *wgpu.TextureView {
	return b.view
}

func (b *textureBindingImpl) SampleType() wgpu.TextureSampleType {
	return b.sampleType
}

func (b *textureBindingImpl) Binding() Binding {
	return b
}

func (b *textureBindingImpl) Entry(slot uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding:     slot,
		TextureView: b.view,
	}
}

func (b *textureBindingImpl) CreateTextureView() (*wgpu.TextureView, error) {
	return createView(b.texture)
}

func (b *textureBindingImpl) Upload(queue *wgpu.Queue, data common.TextureStagingData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Width != b.width || data.Height != b.height {
		return fmt.Errorf("staging data is %dx%d, texture is %dx%d", data.Width, data.Height, b.width, b.height)
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.BytesPerRow(),
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *textureBindingImpl) Release() {
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
}
