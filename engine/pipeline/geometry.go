package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// ErrEmptyGeometry is returned when a geometry is created without vertices or indices.
var ErrEmptyGeometry = errors.New("pipeline: geometry has no vertices or indices")

// geometryImpl is the implementation of Geometry.
type geometryImpl struct {
	label        string
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
	indexFormat  wgpu.IndexFormat
}

// Geometry is an immutable vertex buffer and index buffer pair. One Geometry may be shared by any number
// of entities across any number of pipelines; it is uploaded once and never written again.
type Geometry interface {
	// Label returns the debug label of the geometry buffers.
	Label() string

	// VertexBuffer returns the GPU vertex buffer.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn per instance.
	IndexCount() uint32

	// IndexFormat returns the index element format (Uint16 or Uint32).
	IndexFormat() wgpu.IndexFormat

	// Release frees both buffers.
	Release()
}

var _ Geometry = &geometryImpl{}

// NewGeometry uploads packed vertex bytes and 16-bit indices.
//
// Parameters:
//   - device: the device to allocate on
//   - queue: the queue used for the one-time upload
//   - vertices: packed vertex data matching the pipeline's Vertex formats
//   - indices: triangle indices
//
// Returns:
//   - Geometry: the uploaded geometry
//   - error: ErrEmptyGeometry, or an allocation or upload error
func NewGeometry(device gpu.Device, queue gpu.Queue, vertices []byte, indices []uint16) (Geometry, error) {
	return newGeometry(device, queue, vertices, common.Uint16sToBytes(indices), uint32(len(indices)), wgpu.IndexFormatUint16)
}

// NewGeometry32 uploads packed vertex bytes and 32-bit indices.
//
// Parameters:
//   - device: the device to allocate on
//   - queue: the queue used for the one-time upload
//   - vertices: packed vertex data matching the pipeline's Vertex formats
//   - indices: triangle indices
//
// Returns:
//   - Geometry: the uploaded geometry
//   - error: ErrEmptyGeometry, or an allocation or upload error
func NewGeometry32(device gpu.Device, queue gpu.Queue, vertices []byte, indices []uint32) (Geometry, error) {
	return newGeometry(device, queue, vertices, common.Uint32sToBytes(indices), uint32(len(indices)), wgpu.IndexFormatUint32)
}

func newGeometry(device gpu.Device, queue gpu.Queue, vertices, indexBytes []byte, indexCount uint32, format wgpu.IndexFormat) (Geometry, error) {
	if len(vertices) == 0 || indexCount == 0 {
		return nil, ErrEmptyGeometry
	}
	label := "geometry-" + uuid.NewString()

	vb, err := createInitializedBuffer(device, queue, label+" vertices", vertices, wgpu.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	ib, err := createInitializedBuffer(device, queue, label+" indices", indexBytes, wgpu.BufferUsageIndex)
	if err != nil {
		vb.Release()
		return nil, err
	}
	common.Logger().Debug("geometry created", "label", label, "vertexBytes", len(vertices), "indices", indexCount)

	return &geometryImpl{
		label:        label,
		vertexBuffer: vb,
		indexBuffer:  ib,
		indexCount:   indexCount,
		indexFormat:  format,
	}, nil
}

// createInitializedBuffer creates a buffer and writes data into it. Queue writes must be 4-byte
// aligned, so the data is zero-padded up to the next multiple of 4.
func createInitializedBuffer(device gpu.Device, queue gpu.Queue, label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	size := common.AlignUp(len(data), 4)
	padded := data
	if size != len(data) {
		padded = make([]byte, size)
		copy(padded, data)
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	if err := queue.WriteBuffer(buf, 0, padded); err != nil {
		buf.Release()
		return nil, fmt.Errorf("failed to upload buffer %q: %w", label, err)
	}
	return buf, nil
}

func (g *geometryImpl) Label() string {
	return g.label
}

func (g *geometryImpl) VertexBuffer() *wgpu.Buffer {
	return g.vertexBuffer
}

func (g *geometryImpl) IndexBuffer() *wgpu.Buffer {
	return g.indexBuffer
}

func (g *geometryImpl) IndexCount() uint32 {
	return g.indexCount
}

func (g *geometryImpl) IndexFormat() wgpu.IndexFormat {
	return g.indexFormat
}

func (g *geometryImpl) Release() {
	if g.vertexBuffer != nil {
		g.vertexBuffer.Release()
		g.vertexBuffer = nil
	}
	if g.indexBuffer != nil {
		g.indexBuffer.Release()
		g.indexBuffer = nil
	}
}
