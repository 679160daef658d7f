package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/Carmen-Shannon/brics-go/engine/handle"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVertex []wgpu.VertexFormat

func (v testVertex) AttributeFormats() []wgpu.VertexFormat {
	return v
}

var positionNormal = testVertex{wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x3}

// recordReleases swaps the release hook for one that records what would have been freed.
func recordReleases(t *testing.T) *[]any {
	t.Helper()
	var released []any
	original := release
	release = func(r interface{ Release() }) {
		released = append(released, r)
	}
	t.Cleanup(func() { release = original })
	return &released
}

// failingDevice fails pipeline layout or render pipeline creation and records everything else.
type failingDevice struct {
	*gputest.Device
	failLayout bool
	err        error
}

func (d *failingDevice) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	if d.failLayout {
		return nil, d.err
	}
	return d.Device.CreatePipelineLayout(desc)
}

func (d *failingDevice) CreateRenderPipeline(*wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return nil, d.err
}

func TestAttributeDescriptorsPackInOrder(t *testing.T) {
	formats := []wgpu.VertexFormat{
		wgpu.VertexFormatFloat32x3,
		wgpu.VertexFormatFloat32x2,
		wgpu.VertexFormatUint32,
		wgpu.VertexFormatFloat32x4,
	}

	attrs, stride, err := AttributeDescriptors(formats)
	require.NoError(t, err)
	require.Len(t, attrs, 4)
	assert.Equal(t, uint64(40), stride)

	wantOffsets := []uint64{0, 12, 20, 24}
	for i, a := range attrs {
		assert.Equal(t, uint32(i), a.ShaderLocation)
		assert.Equal(t, wantOffsets[i], a.Offset)
		assert.Equal(t, formats[i], a.Format)
	}

	again, _, err := AttributeDescriptors(formats)
	require.NoError(t, err)
	assert.Equal(t, attrs, again)
}

func TestAttributeDescriptorsUnknownFormat(t *testing.T) {
	_, _, err := AttributeDescriptors([]wgpu.VertexFormat{wgpu.VertexFormatFloat32, wgpu.VertexFormat(0xFFFF)})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = VertexBufferLayout(testVertex{wgpu.VertexFormat(0xFFFF)})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestVertexBufferLayout(t *testing.T) {
	layout, err := VertexBufferLayout(positionNormal)
	require.NoError(t, err)
	assert.Equal(t, uint64(24), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	assert.Len(t, layout.Attributes, 2)
}

func TestGeometryUploadPadsIndices(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()

	vertices := make([]byte, 3*24)
	geom, err := NewGeometry(device, queue, vertices, []uint16{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, uint32(3), geom.IndexCount())
	assert.Equal(t, wgpu.IndexFormatUint16, geom.IndexFormat())

	require.Len(t, device.Buffers, 2)
	assert.Equal(t, uint64(72), device.Buffers[0].Size)
	assert.Equal(t, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, device.Buffers[0].Usage)
	assert.Equal(t, uint64(8), device.Buffers[1].Size)
	assert.Equal(t, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, device.Buffers[1].Usage)

	indexBytes := queue.Contents(geom.IndexBuffer())
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0, 0, 0}, indexBytes)
}

func TestGeometryErrors(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()

	_, err := NewGeometry(device, queue, nil, []uint16{0})
	assert.ErrorIs(t, err, ErrEmptyGeometry)
	_, err = NewGeometry32(device, queue, []byte{0, 0, 0, 0}, nil)
	assert.ErrorIs(t, err, ErrEmptyGeometry)

	device.Err = errors.New("out of memory")
	_, err = NewGeometry32(device, queue, []byte{0, 0, 0, 0}, []uint32{0})
	assert.ErrorIs(t, err, device.Err)
}

func newTestLayouts() (*binding.LayoutEntries, handle.CameraLayout, handle.ShapeLayout) {
	cameraLayout := handle.NewCameraLayout()
	shapeLayout := handle.NewShapeLayout(2)
	entries := binding.NewLayoutEntries().
		Add(0, cameraLayout).
		Add(1, shapeLayout)
	return entries, cameraLayout, shapeLayout
}

func TestNewPipelineDescriptor(t *testing.T) {
	device := gputest.NewDevice()
	entries, _, _ := newTestLayouts()
	shaders := Shaders{Vertex: &wgpu.ShaderModule{}, Fragment: &wgpu.ShaderModule{}}

	p, err := NewPipeline(device, shaders, entries, positionNormal,
		WithLabel("material"),
		WithColorTarget(wgpu.TextureFormatBGRA8Unorm),
		WithDepthStencil(wgpu.TextureFormatDepth32Float, wgpu.CompareFunctionLess, true),
		WithCullMode(wgpu.CullModeBack),
	)
	require.NoError(t, err)
	assert.Equal(t, "material", p.Label())

	require.Len(t, device.BindGroupLayouts, 1)
	assert.Len(t, device.BindGroupLayouts[0].Entries, 2)
	require.Len(t, device.PipelineLayouts, 1)
	assert.Len(t, device.PipelineLayouts[0].BindGroupLayouts, 1)

	require.Len(t, device.RenderPipelines, 1)
	desc := device.RenderPipelines[0]
	assert.Equal(t, "main", desc.Vertex.EntryPoint)
	assert.Equal(t, uint64(24), desc.Vertex.Buffers[0].ArrayStride)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)

	require.NotNil(t, desc.Fragment)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Equal(t, wgpu.ColorWriteMaskAll, desc.Fragment.Targets[0].WriteMask)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestNewPipelineDepthOnly(t *testing.T) {
	device := gputest.NewDevice()
	entries, _, _ := newTestLayouts()

	_, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal,
		WithDepthStencil(wgpu.TextureFormatDepth32Float, wgpu.CompareFunctionLess, true),
		WithDepthBias(2, 2.0),
		WithEntryPoints("vs_shadow", "fs_unused"),
	)
	require.NoError(t, err)

	desc := device.RenderPipelines[0]
	assert.Nil(t, desc.Fragment)
	assert.Equal(t, "vs_shadow", desc.Vertex.EntryPoint)
	assert.Equal(t, int32(2), desc.DepthStencil.DepthBias)
	assert.Equal(t, float32(2.0), desc.DepthStencil.DepthBiasSlopeScale)
}

func TestNewPipelineErrors(t *testing.T) {
	recordReleases(t)
	entries, _, _ := newTestLayouts()

	t.Run("missing vertex shader", func(t *testing.T) {
		_, err := NewPipeline(gputest.NewDevice(), Shaders{}, entries, positionNormal)
		assert.ErrorIs(t, err, ErrNoVertexShader)
	})

	t.Run("color target without fragment", func(t *testing.T) {
		_, err := NewPipeline(gputest.NewDevice(), Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal,
			WithColorTarget(wgpu.TextureFormatBGRA8Unorm))
		assert.Error(t, err)
	})

	t.Run("slot gap", func(t *testing.T) {
		gapped := binding.NewLayoutEntries().Add(0, handle.NewCameraLayout()).Add(2, handle.NewLightLayout())
		_, err := NewPipeline(gputest.NewDevice(), Shaders{Vertex: &wgpu.ShaderModule{}}, gapped, positionNormal)
		assert.ErrorIs(t, err, binding.ErrSlotGap)
	})

	t.Run("unknown vertex format", func(t *testing.T) {
		_, err := NewPipeline(gputest.NewDevice(), Shaders{Vertex: &wgpu.ShaderModule{}}, entries, testVertex{wgpu.VertexFormat(0xFFFF)})
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestNewPipelineReleasesLayoutsOnFailure(t *testing.T) {
	errLost := errors.New("device lost")
	entries, _, _ := newTestLayouts()

	t.Run("pipeline layout", func(t *testing.T) {
		released := recordReleases(t)
		device := &failingDevice{Device: gputest.NewDevice(), failLayout: true, err: errLost}

		_, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal)
		assert.ErrorIs(t, err, errLost)
		require.Len(t, device.BindGroupLayouts, 1)
		require.Len(t, *released, 1)
		assert.IsType(t, &wgpu.BindGroupLayout{}, (*released)[0])
	})

	t.Run("render pipeline", func(t *testing.T) {
		released := recordReleases(t)
		device := &failingDevice{Device: gputest.NewDevice(), err: errLost}

		_, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal)
		assert.ErrorIs(t, err, errLost)
		require.Len(t, *released, 2)
		assert.IsType(t, &wgpu.PipelineLayout{}, (*released)[0])
		assert.IsType(t, &wgpu.BindGroupLayout{}, (*released)[1])
	})

	t.Run("missing vertex shader", func(t *testing.T) {
		released := recordReleases(t)

		_, err := NewPipeline(gputest.NewDevice(), Shaders{}, entries, positionNormal)
		assert.ErrorIs(t, err, ErrNoVertexShader)
		assert.Len(t, *released, 2)
	})
}

func TestAddEntityAndRender(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()
	entries, cameraLayout, shapeLayout := newTestLayouts()

	p, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}, Fragment: &wgpu.ShaderModule{}}, entries, positionNormal,
		WithColorTarget(wgpu.TextureFormatBGRA8Unorm))
	require.NoError(t, err)

	cam, err := cameraLayout.CreateHandle(device)
	require.NoError(t, err)
	shapeA, err := shapeLayout.CreateHandle(device)
	require.NoError(t, err)
	shapeB, err := shapeLayout.CreateHandle(device)
	require.NoError(t, err)

	geom, err := NewGeometry(device, queue, make([]byte, 24*3), []uint16{0, 1, 2})
	require.NoError(t, err)

	first, err := p.AddEntity(device, geom, binding.NewSet().Bind(0, cam).Bind(1, shapeA), 2)
	require.NoError(t, err)
	second, err := p.AddEntity(device, geom, binding.NewSet().Bind(1, shapeB).Bind(0, cam), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, p.EntityCount())
	assert.Same(t, p.Entity(0).Geometry(), p.Entity(1).Geometry())
	assert.Nil(t, p.Entity(2))

	pass := &gputest.Pass{}
	p.Render(pass)
	assert.Equal(t, []string{
		"SetPipeline",
		"SetBindGroup", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
		"SetBindGroup", "SetVertexBuffer", "SetIndexBuffer", "DrawIndexed",
	}, pass.Methods())

	assert.Equal(t, []any{uint32(0), p.Entity(0).BindGroup()}, pass.Calls[1].Args)
	assert.Equal(t, []any{geom.IndexBuffer(), wgpu.IndexFormatUint16}, pass.Calls[3].Args)
	assert.Equal(t, []any{uint32(3), uint32(2)}, pass.Calls[4].Args)
	assert.Equal(t, []any{uint32(0), p.Entity(1).BindGroup()}, pass.Calls[5].Args)
}

func TestAddEntityRejectsMismatchedSet(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()
	entries, cameraLayout, shapeLayout := newTestLayouts()

	p, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal)
	require.NoError(t, err)
	geom, err := NewGeometry(device, queue, make([]byte, 24), []uint16{0})
	require.NoError(t, err)

	cam, err := cameraLayout.CreateHandle(device)
	require.NoError(t, err)
	shape, err := shapeLayout.CreateHandle(device)
	require.NoError(t, err)
	light, err := handle.NewLightLayout().CreateHandle(device)
	require.NoError(t, err)

	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, cam), 1)
	assert.ErrorIs(t, err, binding.ErrSlotMismatch)

	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, cam).Bind(0, shape), 1)
	assert.ErrorIs(t, err, binding.ErrDuplicateSlot)

	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, shape).Bind(1, cam), 1)
	assert.ErrorIs(t, err, binding.ErrKindMismatch)

	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, light).Bind(1, shape), 1)
	assert.ErrorIs(t, err, binding.ErrLayoutMismatch, "a light uniform is smaller than the camera slot")

	single, err := handle.NewShapeLayout(1).CreateHandle(device)
	require.NoError(t, err)
	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, cam).Bind(1, single), 1)
	assert.ErrorIs(t, err, binding.ErrLayoutMismatch)

	larger, err := handle.NewShapeLayout(3).CreateHandle(device)
	require.NoError(t, err)
	_, err = p.AddEntity(device, geom, binding.NewSet().Bind(0, cam).Bind(1, larger), 3)
	assert.NoError(t, err)

	assert.Equal(t, 1, p.EntityCount())
}

func TestReloadKeepsPreviousOnFailure(t *testing.T) {
	device := gputest.NewDevice()
	entries, _, _ := newTestLayouts()

	p, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal)
	require.NoError(t, err)
	before := p.RenderPipeline()

	err = p.Reload(device, Shaders{})
	assert.ErrorIs(t, err, ErrNoVertexShader)
	assert.Same(t, before, p.RenderPipeline())

	device.Err = errors.New("device lost")
	err = p.Reload(device, Shaders{Vertex: &wgpu.ShaderModule{}})
	assert.ErrorIs(t, err, device.Err)
	assert.Same(t, before, p.RenderPipeline())
}

func TestReloadReleasesReplacedPipeline(t *testing.T) {
	released := recordReleases(t)
	device := gputest.NewDevice()
	entries, _, _ := newTestLayouts()

	p, err := NewPipeline(device, Shaders{Vertex: &wgpu.ShaderModule{}}, entries, positionNormal)
	require.NoError(t, err)
	before := p.RenderPipeline()

	require.NoError(t, p.Reload(device, Shaders{Vertex: &wgpu.ShaderModule{}}))
	assert.NotSame(t, before, p.RenderPipeline())
	require.Len(t, *released, 1)
	assert.Same(t, before, (*released)[0])
}
