package handle

import (
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/stretchr/testify/assert"
)

func TestGPUTypeSizesMatchWGSL(t *testing.T) {
	cam := &CameraUniform{}
	light := &LightUniform{}
	inst := &ShapeInstance{}

	assert.Equal(t, 80, cam.Size())
	assert.Equal(t, 32, light.Size())
	assert.Equal(t, 80, inst.Size())

	assert.Len(t, cam.Marshal(), 80)
	assert.Len(t, light.Marshal(), 32)
	assert.Len(t, inst.Marshal(), 80)

	// vec3 fields start on 16-byte boundaries; f32 packs into the vec3 tail.
	assert.Equal(t, uintptr(64), unsafe.Offsetof(cam.Position))
	assert.Equal(t, uintptr(12), unsafe.Offsetof(light.Intensity))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(light.Color))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(inst.Color))
	assert.Equal(t, uintptr(4), unsafe.Alignof(*cam))
}

func TestMarshalFieldOffsets(t *testing.T) {
	light := &LightUniform{
		Custom:    [3]float32{1, 2, 3},
		Intensity: 1.2,
		Color:     [3]float32{0.5, 0.6, 0.7},
	}
	buf := light.Marshal()
	assert.Equal(t, float32(3), common.Float32At(buf, 8))
	assert.Equal(t, float32(1.2), common.Float32At(buf, 12))
	assert.Equal(t, float32(0.5), common.Float32At(buf, 16))
	assert.Equal(t, float32(0), common.Float32At(buf, 28))

	cam := &CameraUniform{Position: [3]float32{5, 5, -5.5}}
	cam.ViewProj[15] = 1
	buf = cam.Marshal()
	assert.Equal(t, float32(1), common.Float32At(buf, 60))
	assert.Equal(t, float32(-5.5), common.Float32At(buf, 72))
}
