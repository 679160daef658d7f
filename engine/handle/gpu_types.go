package handle

import (
	"unsafe"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu"
)

// CameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL struct below (80 bytes):
//
//	struct Camera {
//	    view_proj: mat4x4<f32>,
//	    position: vec3<f32>,
//	}
type CameraUniform struct {
	ViewProj [16]float32 // offset  0: projection * view (mat4x4<f32>, column-major)
	Position [3]float32  // offset 64: world-space eye position (vec3<f32>)
	_pad     float32     // offset 76: padding to 80 bytes
}

// LightUniform is the GPU-aligned representation of the light uniform buffer.
// Matches the WGSL struct below (32 bytes):
//
//	struct Light {
//	    custom: vec3<f32>,
//	    intensity: f32,
//	    color: vec3<f32>,
//	}
type LightUniform struct {
	Custom    [3]float32 // offset  0: position or normalized direction (vec3<f32>)
	Intensity float32    // offset 12: packs into the vec3 tail (f32)
	Color     [3]float32 // offset 16: light color (vec3<f32>)
	_pad      float32    // offset 28: padding to 32 bytes
}

// ShapeInstance is the GPU-aligned representation of one element of the shape instance array.
// Matches the WGSL struct below (80 bytes, array stride 80):
//
//	struct Instance {
//	    model: mat4x4<f32>,
//	    color: vec3<f32>,
//	}
type ShapeInstance struct {
	Model [16]float32 // offset  0: model matrix T * R * S (mat4x4<f32>, column-major)
	Color [3]float32  // offset 64: instance color (vec3<f32>)
	_pad  float32     // offset 76: padding to 80 bytes
}

var (
	_ gpu.GPUType = &CameraUniform{}
	_ gpu.GPUType = &LightUniform{}
	_ gpu.GPUType = &ShapeInstance{}
)

// Size returns the size of the CameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *CameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the CameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *CameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.ViewProj[:]...)
	common.PutFloat32s(buf, off, g.Position[:]...)
	return buf
}

// Size returns the size of the LightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *LightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the LightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *LightUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := common.PutFloat32s(buf, 0, g.Custom[:]...)
	off = common.PutFloat32s(buf, off, g.Intensity)
	common.PutFloat32s(buf, off, g.Color[:]...)
	return buf
}

// Size returns the size of the ShapeInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *ShapeInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the ShapeInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *ShapeInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the instance into buf, which must hold at least Size() bytes.
// Used to pack the whole instance array without per-element allocations.
//
// Parameters:
//   - buf: the destination slice
func (g *ShapeInstance) MarshalTo(buf []byte) {
	off := common.PutFloat32s(buf, 0, g.Model[:]...)
	off = common.PutFloat32s(buf, off, g.Color[:]...)
	common.PutFloat32s(buf, off, 0) // _pad
}

// cameraUniformSize, lightUniformSize and shapeInstanceSize are the byte sizes used to size bindings.
var (
	cameraUniformSize = (&CameraUniform{}).Size()
	lightUniformSize  = (&LightUniform{}).Size()
	shapeInstanceSize = (&ShapeInstance{}).Size()
)
