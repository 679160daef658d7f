package binding

import (
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// bufferLayoutImpl is the implementation of BufferLayout.
type bufferLayoutImpl struct {
	kind     Kind
	elemSize uint64
	count    uint64
	opts     layoutOptions
}

// BufferLayout describes a uniform buffer or a read-only instance-array storage buffer.
type BufferLayout interface {
	Layout

	// Size returns the total buffer size in bytes.
	//
	// Returns:
	//   - uint64: elemSize * count
	Size() uint64

	// ElemSize returns the size of one element in bytes.
	//
	// Returns:
	//   - uint64: the element size
	ElemSize() uint64

	// Count returns the number of elements the buffer holds. Always 1 for uniforms.
	//
	// Returns:
	//   - uint64: the element count
	Count() uint64

	// CreateBufferBinding allocates the buffer and returns it with its concrete type.
	//
	// Parameters:
	//   - device: the device to allocate on
	//
	// Returns:
	//   - BufferBinding: the allocated buffer binding
	//   - error: an error if allocation fails
	CreateBufferBinding(device gpu.Device) (BufferBinding, error)
}

var _ BufferLayout = &bufferLayoutImpl{}

// NewUniformLayout creates a layout for a uniform buffer holding exactly one struct of size bytes.
//
// Parameters:
//   - size: the byte size of the uniform struct
//   - options: optional LayoutBuilderOption functions
//
// Returns:
//   - BufferLayout: the uniform buffer layout
func NewUniformLayout(size int, options ...LayoutBuilderOption) BufferLayout {
	return newBufferLayout(KindUniform, uint64(size), 1, options)
}

// NewInstanceArrayLayout creates a layout for a read-only storage buffer holding count structs
// of elemSize bytes each.
//
// Parameters:
//   - elemSize: the byte size of one element
//   - count: the number of elements
//   - options: optional LayoutBuilderOption functions
//
// Returns:
//   - BufferLayout: the instance array layout
func NewInstanceArrayLayout(elemSize, count int, options ...LayoutBuilderOption) BufferLayout {
	return newBufferLayout(KindInstanceArray, uint64(elemSize), uint64(count), options)
}

func newBufferLayout(kind Kind, elemSize, count uint64, options []LayoutBuilderOption) *bufferLayoutImpl {
	opts := defaultLayoutOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if opts.label == "" {
		opts.label = kind.String() + "-" + uuid.NewString()
	}
	return &bufferLayoutImpl{
		kind:     kind,
		elemSize: elemSize,
		count:    count,
		opts:     opts,
	}
}

func (l *bufferLayoutImpl) Kind() Kind {
	return l.kind
}

func (l *bufferLayoutImpl) Label() string {
	return l.opts.label
}

func (l *bufferLayoutImpl) Visibility() wgpu.ShaderStage {
	return l.opts.visibility
}

func (l *bufferLayoutImpl) Size() uint64 {
	return l.elemSize * l.count
}

func (l *bufferLayoutImpl) ElemSize() uint64 {
	return l.elemSize
}

func (l *bufferLayoutImpl) Count() uint64 {
	return l.count
}

func (l *bufferLayoutImpl) BindingLayout() Layout {
	return l
}

func (l *bufferLayoutImpl) Entry(slot uint32) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    slot,
		Visibility: l.opts.visibility,
	}
	if l.kind == KindUniform {
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	} else {
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	}
	entry.Buffer.MinBindingSize = l.Size()
	return entry
}

func (l *bufferLayoutImpl) CreateBinding(device gpu.Device) (Binding, error) {
	return l.CreateBufferBinding(device)
}

func (l *bufferLayoutImpl) CreateBufferBinding(device gpu.Device) (BufferBinding, error) {
	usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	if l.kind == KindInstanceArray {
		usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: l.opts.label,
		Size:  l.Size(),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer %q: %w", l.kind, l.opts.label, err)
	}
	common.Logger().Debug("buffer created", "label", l.opts.label, "kind", l.kind.String(), "size", l.Size())

	return &bufferBindingImpl{
		kind:   l.kind,
		buffer: buf,
		size:   l.Size(),
	}, nil
}

// bufferBindingImpl is the implementation of BufferBinding.
type bufferBindingImpl struct {
	kind   Kind
	buffer *wgpu.Buffer
	size   uint64
}

// BufferBinding is an allocated uniform or storage buffer.
type BufferBinding interface {
	Binding

	// Buffer returns the underlying GPU buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	Buffer() *wgpu.Buffer

	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: the size
	Size() uint64

	// Write replaces the full buffer contents. len(data) must equal Size().
	//
	// Parameters:
	//   - queue: the queue used for the upload
	//   - data: the new contents
	//
	// Returns:
	//   - error: ErrSizeMismatch if data is not exactly Size() bytes, or the queue error
	Write(queue gpu.Queue, data []byte) error

	// WriteAt overwrites a byte range of the buffer starting at offset.
	//
	// Parameters:
	//   - queue: the queue used for the upload
	//   - offset: the byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: ErrOutOfRange if the range exceeds the buffer, or the queue error
	WriteAt(queue gpu.Queue, offset uint64, data []byte) error
}

var _ BufferBinding = &bufferBindingImpl{}

func (b *bufferBindingImpl) Kind() Kind {
	return b.kind
}

func (b *bufferBindingImpl) Buffer() *wgpu.Buffer {
	return b.buffer
}

func (b *bufferBindingImpl) Size() uint64 {
	return b.size
}

func (b *bufferBindingImpl) Binding() Binding {
	return b
}

func (b *bufferBindingImpl) Entry(slot uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: slot,
		Buffer:  b.buffer,
		Offset:  0,
		Size:    b.size,
	}
}

func (b *bufferBindingImpl) Write(queue gpu.Queue, data []byte) error {
	if uint64(len(data)) != b.size {
		return fmt.Errorf("%w: got %d bytes, buffer holds %d", ErrSizeMismatch, len(data), b.size)
	}
	return queue.WriteBuffer(b.buffer, 0, data)
}

func (b *bufferBindingImpl) WriteAt(queue gpu.Queue, offset uint64, data []byte) error {
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: %d bytes at offset %d, buffer holds %d", ErrOutOfRange, len(data), offset, b.size)
	}
	return queue.WriteBuffer(b.buffer, offset, data)
}

func (b *bufferBindingImpl) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
