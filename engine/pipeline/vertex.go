package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnknownFormat is returned when a vertex format has no known byte size.
var ErrUnknownFormat = errors.New("pipeline: unknown vertex format")

// vertexFormatSizes maps each supported vertex format to its size in bytes.
var vertexFormatSizes = map[wgpu.VertexFormat]uint64{
	wgpu.VertexFormatFloat16x2: 4,
	wgpu.VertexFormatFloat16x4: 8,
	wgpu.VertexFormatFloat32:   4,
	wgpu.VertexFormatFloat32x2: 8,
	wgpu.VertexFormatFloat32x3: 12,
	wgpu.VertexFormatFloat32x4: 16,
	wgpu.VertexFormatSint32:    4,
	wgpu.VertexFormatSint32x2:  8,
	wgpu.VertexFormatSint32x3:  12,
	wgpu.VertexFormatSint32x4:  16,
	wgpu.VertexFormatUint32:    4,
	wgpu.VertexFormatUint32x2:  8,
	wgpu.VertexFormatUint32x3:  12,
	wgpu.VertexFormatUint32x4:  16,
}

// Vertex describes the per-vertex attributes of a vertex buffer. The order of the returned formats
// is the shader location order: format i is read at @location(i).
type Vertex interface {
	AttributeFormats() []wgpu.VertexFormat
}

// FormatSize returns the byte size of a vertex format.
//
// Parameters:
//   - format: the vertex format
//
// Returns:
//   - uint64: the size in bytes
//   - error: ErrUnknownFormat if the format is not supported
func FormatSize(format wgpu.VertexFormat) (uint64, error) {
	size, ok := vertexFormatSizes[format]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	return size, nil
}

// AttributeDescriptors assigns shader locations 0..N-1 to formats in order and packs them back to
// back, each offset being the sum of the sizes of the formats before it.
//
// Parameters:
//   - formats: the attribute formats in location order
//
// Returns:
//   - []wgpu.VertexAttribute: one attribute per format
//   - uint64: the total stride of one vertex
//   - error: ErrUnknownFormat if a format is not supported
func AttributeDescriptors(formats []wgpu.VertexFormat) ([]wgpu.VertexAttribute, uint64, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(formats))
	var offset uint64

	for i, format := range formats {
		size, err := FormatSize(format)
		if err != nil {
			return nil, 0, fmt.Errorf("attribute %d: %w", i, err)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: uint32(i),
		})
		offset += size
	}
	return attrs, offset, nil
}

// Stride returns the byte size of one vertex with the given formats.
//
// Parameters:
//   - formats: the attribute formats
//
// Returns:
//   - uint64: the summed format sizes
//   - error: ErrUnknownFormat if a format is not supported
func Stride(formats []wgpu.VertexFormat) (uint64, error) {
	_, stride, err := AttributeDescriptors(formats)
	return stride, err
}

// VertexBufferLayout builds the per-vertex buffer layout for v.
//
// Parameters:
//   - v: the vertex description
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout with stride and attributes
//   - error: ErrUnknownFormat if a format is not supported
func VertexBufferLayout(v Vertex) (wgpu.VertexBufferLayout, error) {
	attrs, stride, err := AttributeDescriptors(v.AttributeFormats())
	if err != nil {
		return wgpu.VertexBufferLayout{}, err
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}
