package handle

import (
	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Default light state.
var (
	defaultLightCustom    = mgl32.Vec3{0, -1, 0}
	defaultLightIntensity = float32(1.2)
	defaultLightColor     = mgl32.Vec3{1, 1, 1}
)

type lightLayoutImpl struct {
	layout binding.BufferLayout
}

// LightLayout is the handle layout for lights: one uniform sized to LightUniform.
type LightLayout interface {
	HandleLayout[Light]
}

var _ LightLayout = &lightLayoutImpl{}

// NewLightLayout creates a light handle layout.
//
// Parameters:
//   - options: binding options (visibility, label) for the light uniform
//
// Returns:
//   - LightLayout: the light layout
func NewLightLayout(options ...binding.LayoutBuilderOption) LightLayout {
	return &lightLayoutImpl{
		layout: binding.NewUniformLayout(lightUniformSize, options...),
	}
}

func (l *lightLayoutImpl) BindingLayout() binding.Layout {
	return l.layout
}

func (l *lightLayoutImpl) CreateHandle(device gpu.Device) (Light, error) {
	b, err := l.layout.CreateBufferBinding(device)
	if err != nil {
		return nil, err
	}
	return &lightImpl{
		binding:   b,
		custom:    defaultLightCustom,
		intensity: defaultLightIntensity,
		color:     defaultLightColor,
	}, nil
}

type lightImpl struct {
	binding binding.BufferBinding

	// custom is either a position or a normalized direction, depending on how the shader reads it.
	custom    mgl32.Vec3
	intensity float32
	color     mgl32.Vec3
}

// Light is a point or directional light handle. The same vector field serves as position or direction.
type Light interface {
	Handle

	// SetPosition stores p as the light's custom vector unchanged.
	SetPosition(p mgl32.Vec3) Light

	// SetDirection stores the normalized direction as the light's custom vector.
	//
	// Parameters:
	//   - dir: the light direction (normalized before storing; a zero or NaN dir is ignored)
	//
	// Returns:
	//   - Light: the light, for chaining
	SetDirection(dir mgl32.Vec3) Light

	// Direction returns the custom vector, which is normalized when set through SetDirection.
	Direction() mgl32.Vec3

	// SetIntensity sets the light intensity.
	SetIntensity(intensity float32) Light

	// Intensity returns the light intensity.
	Intensity() float32

	// SetColor sets the light color.
	SetColor(color mgl32.Vec3) Light

	// Color returns the light color.
	Color() mgl32.Vec3

	// Uniform builds the GPU state struct from the current fields.
	Uniform() LightUniform
}

var _ Light = &lightImpl{}

func (l *lightImpl) Binding() binding.Binding {
	return l.binding
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.custom
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) Light {
	l.custom = p
	return l
}

func (l *lightImpl) SetDirection(dir mgl32.Vec3) Light {
	l.custom = common.NormalizeOr(dir, l.custom)
	return l
}

func (l *lightImpl) SetIntensity(intensity float32) Light {
	l.intensity = intensity
	return l
}

func (l *lightImpl) SetColor(color mgl32.Vec3) Light {
	l.color = color
	return l
}

func (l *lightImpl) Uniform() LightUniform {
	return LightUniform{
		Custom:    l.custom,
		Intensity: l.intensity,
		Color:     l.color,
	}
}

func (l *lightImpl) Update(queue gpu.Queue) error {
	u := l.Uniform()
	return l.binding.Write(queue, u.Marshal())
}

func (l *lightImpl) Release() {
	l.binding.Release()
}
