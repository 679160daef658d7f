package binding

import (
	"testing"

	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutEntriesValidate(t *testing.T) {
	u := NewUniformLayout(16)
	s := NewSamplerLayout()

	tests := []struct {
		name    string
		entries *LayoutEntries
		wantErr error
	}{
		{"empty", NewLayoutEntries(), ErrEmpty},
		{"contiguous", NewLayoutEntries().Add(0, u).Add(1, s), nil},
		{"out of order", NewLayoutEntries().Add(1, s).Add(0, u), nil},
		{"gap", NewLayoutEntries().Add(0, u).Add(2, s), ErrSlotGap},
		{"not from zero", NewLayoutEntries().Add(1, u), ErrSlotGap},
		{"duplicate", NewLayoutEntries().Add(0, u).Add(0, s), ErrDuplicateSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entries.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLayoutEntriesDescriptorSortedBySlot(t *testing.T) {
	camera := NewUniformLayout(80)
	shapes := NewInstanceArrayLayout(80, 2)

	desc, err := NewLayoutEntries().Add(1, shapes).Add(0, camera).Descriptor("material")
	require.NoError(t, err)
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, uint32(0), desc.Entries[0].Binding)
	assert.Equal(t, uint64(80), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint32(1), desc.Entries[1].Binding)
	assert.Equal(t, uint64(160), desc.Entries[1].Buffer.MinBindingSize)
}

func TestSameLayoutAtDifferentSlots(t *testing.T) {
	device := gputest.NewDevice()
	lightCamera := NewUniformLayout(80)
	shapes := NewInstanceArrayLayout(80, 1)

	shadow := NewLayoutEntries().Add(0, lightCamera).Add(1, shapes)
	material := NewLayoutEntries().Add(0, NewUniformLayout(80)).Add(1, shapes).Add(2, lightCamera)

	lc, err := lightCamera.CreateBinding(device)
	require.NoError(t, err)
	sh, err := shapes.CreateBinding(device)
	require.NoError(t, err)
	cam, err := NewUniformLayout(80).CreateBinding(device)
	require.NoError(t, err)

	shadowEntries, err := NewSet().Bind(0, lc).Bind(1, sh).Entries(shadow)
	require.NoError(t, err)
	materialEntries, err := NewSet().Bind(0, cam).Bind(1, sh).Bind(2, lc).Entries(material)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), shadowEntries[0].Binding)
	assert.Equal(t, uint32(2), materialEntries[2].Binding)
	assert.Same(t, shadowEntries[0].Buffer, materialEntries[2].Buffer)
}

func TestSetEntriesMismatch(t *testing.T) {
	device := gputest.NewDevice()
	u := NewUniformLayout(16)
	s := NewSamplerLayout()
	layouts := NewLayoutEntries().Add(0, u).Add(1, s)

	ub, err := u.CreateBinding(device)
	require.NoError(t, err)
	sb, err := s.CreateBinding(device)
	require.NoError(t, err)

	_, err = NewSet().Bind(0, ub).Entries(layouts)
	assert.ErrorIs(t, err, ErrSlotMismatch)

	_, err = NewSet().Bind(0, sb).Bind(1, ub).Entries(layouts)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = NewSet().Bind(0, ub).Bind(2, sb).Entries(layouts)
	assert.ErrorIs(t, err, ErrSlotGap)

	_, err = NewSet().Entries(layouts)
	assert.ErrorIs(t, err, ErrEmpty)

	entries, err := NewSet().Bind(1, sb).Bind(0, ub).Entries(layouts)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.NotNil(t, entries[1].Sampler)
}

func TestSetEntriesChecksLayoutFit(t *testing.T) {
	restore := createView
	createView = func(*wgpu.Texture) (*wgpu.TextureView, error) { return &wgpu.TextureView{}, nil }
	t.Cleanup(func() { createView = restore })

	device := gputest.NewDevice()
	bind := func(l Layout) Binding {
		t.Helper()
		b, err := l.CreateBinding(device)
		require.NoError(t, err)
		return b
	}

	camera := NewUniformLayout(80)
	shapes := NewInstanceArrayLayout(80, 2)
	shadow := NewSamplerLayout(WithCompare(wgpu.CompareFunctionLessEqual))
	depth := NewTextureLayout(4, 4, wgpu.TextureFormatDepth32Float)

	tests := []struct {
		name    string
		layouts *LayoutEntries
		set     *Set
		wantErr error
	}{
		{"uniform too small", NewLayoutEntries().Add(0, camera), NewSet().Bind(0, bind(NewUniformLayout(32))), ErrLayoutMismatch},
		{"uniform exact", NewLayoutEntries().Add(0, camera), NewSet().Bind(0, bind(NewUniformLayout(80))), nil},
		{"fewer instances", NewLayoutEntries().Add(0, shapes), NewSet().Bind(0, bind(NewInstanceArrayLayout(80, 1))), ErrLayoutMismatch},
		{"more instances", NewLayoutEntries().Add(0, shapes), NewSet().Bind(0, bind(NewInstanceArrayLayout(80, 5))), nil},
		{"filtering for comparison", NewLayoutEntries().Add(0, shadow), NewSet().Bind(0, bind(NewSamplerLayout())), ErrLayoutMismatch},
		{"comparison for filtering", NewLayoutEntries().Add(0, NewSamplerLayout()), NewSet().Bind(0, bind(shadow)), ErrLayoutMismatch},
		{"comparison functions may differ", NewLayoutEntries().Add(0, shadow), NewSet().Bind(0, bind(NewSamplerLayout(WithCompare(wgpu.CompareFunctionLess)))), nil},
		{"color texture for depth", NewLayoutEntries().Add(0, depth), NewSet().Bind(0, bind(NewTextureLayout(4, 4, wgpu.TextureFormatRGBA8Unorm))), ErrLayoutMismatch},
		{"depth texture", NewLayoutEntries().Add(0, depth), NewSet().Bind(0, bind(NewTextureLayout(8, 8, wgpu.TextureFormatDepth32Float))), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.set.Entries(tt.layouts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCreateBindGroupRecordsDescriptor(t *testing.T) {
	device := gputest.NewDevice()
	u := NewUniformLayout(16)
	layouts := NewLayoutEntries().Add(0, u)

	layout, err := layouts.CreateBindGroupLayout(device, "pipeline")
	require.NoError(t, err)
	ub, err := u.CreateBinding(device)
	require.NoError(t, err)

	_, err = NewSet().Bind(0, ub).CreateBindGroup(device, layout, layouts, "entity")
	require.NoError(t, err)
	require.Len(t, device.BindGroups, 1)
	assert.Equal(t, "entity", device.BindGroups[0].Label)
	assert.Len(t, device.BindGroups[0].Entries, 1)
}
