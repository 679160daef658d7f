package handle

import (
	"github.com/Carmen-Shannon/brics-go/engine/binding"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
)

type samplerLayoutImpl struct {
	layout binding.SamplerLayout
}

// SamplerLayout is the handle layout for samplers.
type SamplerLayout interface {
	HandleLayout[Sampler]
}

var _ SamplerLayout = &samplerLayoutImpl{}

// NewSamplerLayout creates a sampler handle layout. Pass binding.WithCompare for a shadow-map sampler.
//
// Parameters:
//   - options: binding options (compare, address and filter modes, visibility, label)
//
// Returns:
//   - SamplerLayout: the sampler layout
func NewSamplerLayout(options ...binding.LayoutBuilderOption) SamplerLayout {
	return &samplerLayoutImpl{
		layout: binding.NewSamplerLayout(options...),
	}
}

func (l *samplerLayoutImpl) BindingLayout() binding.Layout {
	return l.layout
}

func (l *samplerLayoutImpl) CreateHandle(device gpu.Device) (Sampler, error) {
	b, err := l.layout.CreateSamplerBinding(device)
	if err != nil {
		return nil, err
	}
	return &samplerImpl{binding: b}, nil
}

type samplerImpl struct {
	binding binding.SamplerBinding
}

// Sampler is a handle over a sampler binding. Samplers are immutable, so Update writes nothing.
type Sampler interface {
	Handle
}

var _ Sampler = &samplerImpl{}

func (s *samplerImpl) Binding() binding.Binding {
	return s.binding
}

func (s *samplerImpl) Update(gpu.Queue) error {
	return nil
}

func (s *samplerImpl) Release() {
	s.binding.Release()
}
