package handle

import (
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

type shapeLayoutImpl struct {
	layout binding.BufferLayout
}

// ShapeLayout is the handle layout for instanced shapes: a read-only storage array of ShapeInstance.
type ShapeLayout interface {
	HandleLayout[Shape]

	// Count returns the number of instances each created shape holds.
	Count() int
}

var _ ShapeLayout = &shapeLayoutImpl{}

// NewShapeLayout creates a shape handle layout for count instances.
//
// Parameters:
//   - count: the number of instances (at least 1)
//   - options: binding options (visibility, label) for the instance array
//
// Returns:
//   - ShapeLayout: the shape layout
func NewShapeLayout(count int, options ...binding.LayoutBuilderOption) ShapeLayout {
	if count < 1 {
		count = 1
	}
	return &shapeLayoutImpl{
		layout: binding.NewInstanceArrayLayout(shapeInstanceSize, count, options...),
	}
}

func (l *shapeLayoutImpl) BindingLayout() binding.Layout {
	return l.layout
}

func (l *shapeLayoutImpl) Count() int {
	return int(l.layout.Count())
}

func (l *shapeLayoutImpl) CreateHandle(device gpu.Device) (Shape, error) {
	b, err := l.layout.CreateBufferBinding(device)
	if err != nil {
		return nil, err
	}
	instances := make([]*Transform, l.Count())
	for i := range instances {
		instances[i] = NewTransform()
	}
	return &shapeImpl{
		binding:   b,
		instances: instances,
		scratch:   make([]byte, b.Size()),
	}, nil
}

// Transform is the decomposed per-instance state of a shape. The model matrix is rebuilt as
// T * R * S from these fields on every read, never accumulated.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	color    mgl32.Vec3
}

// NewTransform returns the default instance state: identity model matrix and white color.
//
// Returns:
//   - *Transform: the default transform
func NewTransform() *Transform {
	return &Transform{
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		color:    mgl32.Vec3{1, 1, 1},
	}
}

// Translate adds delta to the position.
func (t *Transform) Translate(delta mgl32.Vec3) *Transform {
	t.position = t.position.Add(delta)
	return t
}

// SetPosition replaces the position.
func (t *Transform) SetPosition(p mgl32.Vec3) *Transform {
	t.position = p
	return t
}

// Rotate applies a rotation of angle radians around axis in the instance's local frame.
//
// Parameters:
//   - axis: the rotation axis (normalized before use)
//   - angle: the angle in radians
//
// Returns:
//   - *Transform: the transform, for chaining
func (t *Transform) Rotate(axis mgl32.Vec3, angle float32) *Transform {
	if !common.HasDirection(axis) {
		return t
	}
	t.rotation = t.rotation.Mul(mgl32.QuatRotate(angle, axis.Normalize())).Normalize()
	return t
}

// Rescale multiplies the scale per axis by multiplier.
func (t *Transform) Rescale(multiplier mgl32.Vec3) *Transform {
	t.scale = mgl32.Vec3{
		t.scale.X() * multiplier.X(),
		t.scale.Y() * multiplier.Y(),
		t.scale.Z() * multiplier.Z(),
	}
	return t
}

// SetColor replaces the instance color.
func (t *Transform) SetColor(color mgl32.Vec3) *Transform {
	t.color = color
	return t
}

func (t *Transform) Position() mgl32.Vec3 {
	return t.position
}

func (t *Transform) Rotation() mgl32.Quat {
	return t.rotation
}

func (t *Transform) Scale() mgl32.Vec3 {
	return t.scale
}

func (t *Transform) Color() mgl32.Vec3 {
	return t.color
}

// Model returns T * R * S for the current fields.
func (t *Transform) Model() mgl32.Mat4 {
	return common.ModelMatrix(t.position, t.rotation, t.scale)
}

// Instance builds the GPU state struct for this transform.
func (t *Transform) Instance() ShapeInstance {
	return ShapeInstance{
		Model: t.Model(),
		Color: t.color,
	}
}

type shapeImpl struct {
	binding   binding.BufferBinding
	instances []*Transform
	scratch   []byte
}

// Shape is an instanced drawable handle. Every Update rewrites the whole instance array.
type Shape interface {
	Handle

	// Count returns the number of instances.
	Count() int

	// Instance returns the mutable transform of instance i.
	//
	// Parameters:
	//   - i: the instance index
	//
	// Returns:
	//   - *Transform: the instance transform
	//   - error: ErrInstanceRange if i is outside [0, Count())
	Instance(i int) (*Transform, error)

	// Translate moves every instance by delta.
	Translate(delta mgl32.Vec3) Shape

	// Rotate rotates every instance around axis by angle radians.
	Rotate(axis mgl32.Vec3, angle float32) Shape

	// Rescale multiplies the scale of every instance by multiplier.
	Rescale(multiplier mgl32.Vec3) Shape

	// SetColor sets the color of every instance.
	SetColor(color mgl32.Vec3) Shape

	// Instances builds the GPU state array in instance order.
	//
	// Returns:
	//   - []ShapeInstance: one element per instance
	Instances() []ShapeInstance
}

var _ Shape = &shapeImpl{}

func (s *shapeImpl) Binding() binding.Binding {
	return s.binding
}

func (s *shapeImpl) Count() int {
	return len(s.instances)
}

func (s *shapeImpl) Instance(i int) (*Transform, error) {
	if i < 0 || i >= len(s.instances) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInstanceRange, i, len(s.instances))
	}
	return s.instances[i], nil
}

func (s *shapeImpl) Translate(delta mgl32.Vec3) Shape {
	for _, t := range s.instances {
		t.Translate(delta)
	}
	return s
}

func (s *shapeImpl) Rotate(axis mgl32.Vec3, angle float32) Shape {
	for _, t := range s.instances {
		t.Rotate(axis, angle)
	}
	return s
}

func (s *shapeImpl) Rescale(multiplier mgl32.Vec3) Shape {
	for _, t := range s.instances {
		t.Rescale(multiplier)
	}
	return s
}

func (s *shapeImpl) SetColor(color mgl32.Vec3) Shape {
	for _, t := range s.instances {
		t.SetColor(color)
	}
	return s
}

func (s *shapeImpl) Instances() []ShapeInstance {
	out := make([]ShapeInstance, len(s.instances))
	for i, t := range s.instances {
		out[i] = t.Instance()
	}
	return out
}

func (s *shapeImpl) Update(queue gpu.Queue) error {
	for i, t := range s.instances {
		inst := t.Instance()
		inst.MarshalTo(s.scratch[i*shapeInstanceSize:])
	}
	return s.binding.Write(queue, s.scratch)
}

func (s *shapeImpl) Release() {
	s.binding.Release()
}
