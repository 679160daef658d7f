package handle

import (
	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// perspectiveNear and perspectiveFar bound every perspective projection built by SetPerspective.
	perspectiveNear float32 = 0.01
	perspectiveFar  float32 = 1000.0
)

// defaultForward is the view direction of a new camera.
var defaultForward = mgl32.Vec3{0, 0, -1}

// projectionKind records which projection the camera was last given so SetAspectRatio can rebuild it.
type projectionKind int

const (
	projectionCustom projectionKind = iota
	projectionPerspective
	projectionOrtho
)

// cameraLayoutImpl is the implementation of CameraLayout.
type cameraLayoutImpl struct {
	layout binding.BufferLayout
}

// CameraLayout is the handle layout for cameras: one uniform sized to CameraUniform.
type CameraLayout interface {
	HandleLayout[Camera]
}

var _ CameraLayout = &cameraLayoutImpl{}

// NewCameraLayout creates a camera handle layout.
//
// Parameters:
//   - options: binding options (visibility, label) for the camera uniform
//
// Returns:
//   - CameraLayout: the camera layout
func NewCameraLayout(options ...binding.LayoutBuilderOption) CameraLayout {
	return &cameraLayoutImpl{
		layout: binding.NewUniformLayout(cameraUniformSize, options...),
	}
}

func (l *cameraLayoutImpl) BindingLayout() binding.Layout {
	return l.layout
}

func (l *cameraLayoutImpl) CreateHandle(device gpu.Device) (Camera, error) {
	b, err := l.layout.CreateBufferBinding(device)
	if err != nil {
		return nil, err
	}
	return newCamera(b), nil
}

// cameraImpl is the implementation of Camera.
type cameraImpl struct {
	binding binding.BufferBinding

	eye    mgl32.Vec3
	center mgl32.Vec3

	projection mgl32.Mat4
	kind       projectionKind
	fovDeg     float32
	aspect     float32
}

// Camera is a view/projection handle. Mutators return the camera for chaining.
type Camera interface {
	Handle

	// Eye returns the viewer position.
	Eye() mgl32.Vec3

	// Center returns the point being looked at.
	Center() mgl32.Vec3

	// Direction returns the normalized vector from eye to center, or -Z if they coincide.
	//
	// Returns:
	//   - mgl32.Vec3: the unit view direction
	Direction() mgl32.Vec3

	// Projection returns the current projection matrix.
	Projection() mgl32.Mat4

	// ViewProjection computes projection * view from the current fields.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Uniform builds the GPU state struct from the current fields.
	//
	// Returns:
	//   - CameraUniform: the uniform ready for Marshal
	Uniform() CameraUniform

	// LookAt places the eye and the center. A center equal to the eye keeps the previous view
	// direction.
	//
	// Parameters:
	//   - eye: the viewer position
	//   - center: the point to look at
	//
	// Returns:
	//   - Camera: the camera, for chaining
	LookAt(eye, center mgl32.Vec3) Camera

	// LookAtDir places the eye and puts the center one unit along dir.
	//
	// Parameters:
	//   - eye: the viewer position
	//   - dir: the view direction (normalized before use; a zero or NaN dir keeps the previous one)
	//
	// Returns:
	//   - Camera: the camera, for chaining
	LookAtDir(eye, dir mgl32.Vec3) Camera

	// SetPerspective sets a perspective projection with near 0.01 and far 1000.
	//
	// Parameters:
	//   - fovDeg: vertical field of view in degrees
	//   - aspect: viewport aspect ratio (width/height)
	//
	// Returns:
	//   - Camera: the camera, for chaining
	SetPerspective(fovDeg, aspect float32) Camera

	// SetOrtho sets an orthographic projection.
	//
	// Parameters:
	//   - left, right, bottom, top: the view volume extents
	//   - near, far: the near and far plane distances
	//
	// Returns:
	//   - Camera: the camera, for chaining
	SetOrtho(left, right, bottom, top, near, far float32) Camera

	// SetProjection installs an arbitrary projection matrix.
	SetProjection(projection mgl32.Mat4) Camera

	// SetAspectRatio rebuilds a perspective projection for a new viewport aspect ratio.
	// Orthographic and custom projections are left unchanged.
	//
	// Parameters:
	//   - aspect: width / height
	//
	// Returns:
	//   - Camera: the camera, for chaining
	SetAspectRatio(aspect float32) Camera

	// Translate moves eye and center by the same delta, preserving the view direction.
	//
	// Parameters:
	//   - x, y, z: the delta
	//
	// Returns:
	//   - Camera: the camera, for chaining
	Translate(x, y, z float32) Camera

	// SetCenter moves the center to (x, y, z) and moves the eye with it, keeping the eye-to-center offset.
	//
	// Parameters:
	//   - x, y, z: the new center
	//
	// Returns:
	//   - Camera: the camera, for chaining
	SetCenter(x, y, z float32) Camera

	// RotateAroundCenter orbits the eye around the center by a yaw of theta and a pitch of phi.
	//
	// Parameters:
	//   - theta: yaw in radians
	//   - phi: pitch in radians
	//
	// Returns:
	//   - Camera: the camera, for chaining
	RotateAroundCenter(theta, phi float32) Camera

	// RotateDirection turns the view direction in place (free look) by a yaw of theta and a pitch of phi.
	//
	// Parameters:
	//   - theta: yaw in radians
	//   - phi: pitch in radians
	//
	// Returns:
	//   - Camera: the camera, for chaining
	RotateDirection(theta, phi float32) Camera
}

var _ Camera = &cameraImpl{}

func newCamera(b binding.BufferBinding) *cameraImpl {
	return &cameraImpl{
		binding:    b,
		eye:        mgl32.Vec3{0, 0, 1},
		center:     mgl32.Vec3{0, 0, 0},
		projection: mgl32.Ident4(),
		kind:       projectionCustom,
	}
}

func (c *cameraImpl) Binding() binding.Binding {
	return c.binding
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	return c.eye
}

func (c *cameraImpl) Center() mgl32.Vec3 {
	return c.center
}

func (c *cameraImpl) Direction() mgl32.Vec3 {
	return common.NormalizeOr(c.center.Sub(c.eye), defaultForward)
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(common.LookAt(c.eye, c.center))
}

func (c *cameraImpl) Uniform() CameraUniform {
	return CameraUniform{
		ViewProj: c.ViewProjection(),
		Position: c.eye,
	}
}

func (c *cameraImpl) LookAt(eye, center mgl32.Vec3) Camera {
	if !common.HasDirection(center.Sub(eye)) {
		center = eye.Add(c.Direction())
	}
	c.eye = eye
	c.center = center
	return c
}

func (c *cameraImpl) LookAtDir(eye, dir mgl32.Vec3) Camera {
	return c.LookAt(eye, eye.Add(common.NormalizeOr(dir, c.Direction())))
}

func (c *cameraImpl) SetPerspective(fovDeg, aspect float32) Camera {
	c.kind = projectionPerspective
	c.fovDeg = fovDeg
	c.aspect = aspect
	c.projection = common.Perspective(fovDeg, aspect, perspectiveNear, perspectiveFar)
	return c
}

func (c *cameraImpl) SetOrtho(left, right, bottom, top, near, far float32) Camera {
	c.kind = projectionOrtho
	c.projection = common.Ortho(left, right, bottom, top, near, far)
	return c
}

func (c *cameraImpl) SetProjection(projection mgl32.Mat4) Camera {
	c.kind = projectionCustom
	c.projection = projection
	return c
}

func (c *cameraImpl) SetAspectRatio(aspect float32) Camera {
	if c.kind != projectionPerspective || aspect <= 0 {
		return c
	}
	return c.SetPerspective(c.fovDeg, aspect)
}

func (c *cameraImpl) Translate(x, y, z float32) Camera {
	delta := mgl32.Vec3{x, y, z}
	c.eye = c.eye.Add(delta)
	c.center = c.center.Add(delta)
	return c
}

func (c *cameraImpl) SetCenter(x, y, z float32) Camera {
	offset := c.eye.Sub(c.center)
	c.center = mgl32.Vec3{x, y, z}
	c.eye = c.center.Add(offset)
	return c
}

func (c *cameraImpl) RotateAroundCenter(theta, phi float32) Camera {
	fromCenter := c.eye.Sub(c.center)
	c.eye = c.center.Add(common.RotateVector(fromCenter, theta, phi))
	return c
}

func (c *cameraImpl) RotateDirection(theta, phi float32) Camera {
	dir := common.RotateVector(c.Direction(), theta, phi)
	c.center = c.eye.Add(dir)
	return c
}

func (c *cameraImpl) Update(queue gpu.Queue) error {
	u := c.Uniform()
	return c.binding.Write(queue, u.Marshal())
}

func (c *cameraImpl) Release() {
	c.binding.Release()
}
