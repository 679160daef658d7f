package binding

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformLayoutAllocatesOneStruct(t *testing.T) {
	device := gputest.NewDevice()
	layout := NewUniformLayout(80, WithLabel("camera"))

	assert.Equal(t, KindUniform, layout.Kind())
	assert.Equal(t, uint64(80), layout.Size())
	assert.Equal(t, uint64(1), layout.Count())

	b, err := layout.CreateBufferBinding(device)
	require.NoError(t, err)
	require.Len(t, device.Buffers, 1)
	assert.Equal(t, uint64(80), device.Buffers[0].Size)
	assert.Equal(t, "camera", device.Buffers[0].Label)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, device.Buffers[0].Usage)
	assert.Equal(t, uint64(80), b.Size())

	entry := layout.Entry(3)
	assert.Equal(t, uint32(3), entry.Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entry.Buffer.Type)
	assert.Equal(t, uint64(80), entry.Buffer.MinBindingSize)
}

func TestInstanceArrayLayoutAllocatesCountElements(t *testing.T) {
	device := gputest.NewDevice()
	layout := NewInstanceArrayLayout(80, 3)

	assert.Equal(t, KindInstanceArray, layout.Kind())
	assert.Equal(t, uint64(240), layout.Size())
	assert.NotEmpty(t, layout.Label())

	_, err := layout.CreateBinding(device)
	require.NoError(t, err)
	assert.Equal(t, uint64(240), device.Buffers[0].Size)
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, device.Buffers[0].Usage)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, layout.Entry(1).Buffer.Type)
}

func TestBufferWriteRequiresExactSize(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()
	b, err := NewUniformLayout(32).CreateBufferBinding(device)
	require.NoError(t, err)

	err = b.Write(queue, make([]byte, 16))
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Empty(t, queue.Writes)

	data := make([]byte, 32)
	data[0] = 7
	require.NoError(t, b.Write(queue, data))
	w, ok := queue.LastWrite()
	require.True(t, ok)
	assert.Equal(t, uint64(0), w.Offset)
	assert.Equal(t, data, w.Data)
}

func TestBufferWriteAtBoundsChecked(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()
	b, err := NewInstanceArrayLayout(16, 2).CreateBufferBinding(device)
	require.NoError(t, err)

	require.NoError(t, b.WriteAt(queue, 16, make([]byte, 16)))
	assert.ErrorIs(t, b.WriteAt(queue, 17, make([]byte, 16)), ErrOutOfRange)
	assert.Len(t, queue.Writes, 1)
}

func TestCreateBindingPropagatesDeviceError(t *testing.T) {
	device := gputest.NewDevice()
	device.Err = errors.New("out of memory")

	_, err := NewUniformLayout(16, WithLabel("light")).CreateBinding(device)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "light")
	assert.ErrorIs(t, err, device.Err)
}

func TestSamplerLayoutCompare(t *testing.T) {
	plain := NewSamplerLayout()
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, plain.Entry(0).Sampler.Type)

	cmp := NewSamplerLayout(
		WithCompare(wgpu.CompareFunctionLessEqual),
		WithFilterMode(wgpu.FilterModeLinear, wgpu.FilterModeLinear, wgpu.MipmapFilterModeNearest),
	)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, cmp.Entry(5).Sampler.Type)
	desc := cmp.Descriptor()
	assert.Equal(t, wgpu.CompareFunctionLessEqual, desc.Compare)
	assert.Equal(t, wgpu.AddressModeClampToEdge, desc.AddressModeU)
	assert.Equal(t, uint16(1), desc.MaxAnisotropy)

	device := gputest.NewDevice()
	s, err := cmp.CreateSamplerBinding(device)
	require.NoError(t, err)
	assert.Equal(t, KindSampler, s.Kind())
	require.Len(t, device.Samplers, 1)
	assert.Equal(t, wgpu.CompareFunctionLessEqual, device.Samplers[0].Compare)
}

func TestTextureLayoutDepthSampling(t *testing.T) {
	restore := createView
	createView = func(*wgpu.Texture) (*wgpu.TextureView, error) { return &wgpu.TextureView{}, nil }
	t.Cleanup(func() { createView = restore })

	depth := NewTextureLayout(2048, 2048, wgpu.TextureFormatDepth32Float)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, depth.Entry(4).Texture.SampleType)
	assert.Equal(t, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding, depth.Usage())

	color := NewTextureLayout(4, 4, wgpu.TextureFormatRGBA8Unorm, WithUploadable())
	assert.Equal(t, wgpu.TextureSampleTypeFloat, color.SampleType())
	assert.NotZero(t, color.Usage()&wgpu.TextureUsageCopyDst)

	device := gputest.NewDevice()
	tex, err := depth.CreateTextureBinding(device)
	require.NoError(t, err)
	require.Len(t, device.Textures, 1)
	assert.Equal(t, uint32(2048), device.Textures[0].Size.Width)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, device.Textures[0].Format)
	assert.Same(t, tex.View(), tex.Entry(4).TextureView)
}

func TestTextureUploadRejectsMismatchedStaging(t *testing.T) {
	restore := createView
	createView = func(*wgpu.Texture) (*wgpu.TextureView, error) { return &wgpu.TextureView{}, nil }
	t.Cleanup(func() { createView = restore })

	layout := NewTextureLayout(2, 2, wgpu.TextureFormatRGBA8Unorm, WithUploadable())
	tex, err := layout.CreateTextureBinding(gputest.NewDevice())
	require.NoError(t, err)

	// Both checks fail before the queue is touched, so a nil queue is never dereferenced.
	assert.Error(t, tex.Upload(nil, common.TextureStagingData{Width: 2, Height: 2, Pixels: make([]byte, 3)}))
	assert.ErrorContains(t, tex.Upload(nil, common.TextureStagingData{Width: 1, Height: 1, Pixels: make([]byte, 4)}), "texture is 2x2")
}
