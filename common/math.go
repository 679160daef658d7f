package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// UnitY is the world up axis.
var UnitY = mgl32.Vec3{0, 1, 0}

// clipCorrection remaps OpenGL clip-space depth [-1, 1] to the WebGPU range [0, 1].
// Column-major, so the last column carries the 0.5 depth offset.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective creates a right-handed perspective projection matrix targeting WebGPU clip space.
//
// Parameters:
//   - fovYDeg: vertical field of view in degrees
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovYDeg, aspect, near, far float32) mgl32.Mat4 {
	return clipCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(fovYDeg), aspect, near, far))
}

// Ortho creates an orthographic projection matrix targeting WebGPU clip space.
//
// Parameters:
//   - left, right, bottom, top: the view volume extents
//   - near, far: the near and far plane distances
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return clipCorrection.Mul4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// LookAt builds a right-handed view matrix with +Y as up.
//
// Parameters:
//   - eye: the viewer position
//   - center: the point being looked at
//
// Returns:
//   - mgl32.Mat4: the column-major view matrix
func LookAt(eye, center mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, center, UnitY)
}

// ModelMatrix composes a model matrix as T * R * S from decomposed transform fields.
// The result is recomputed from scratch on every call so repeated updates do not accumulate drift.
//
// Parameters:
//   - translation: world-space position
//   - rotation: orientation quaternion (normalized before use)
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func ModelMatrix(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// RotateVector rotates v by a pitch of phi around unitY × v composed with a yaw of theta around unitY,
// and rescales the result to the original magnitude of v.
// The pitch is applied first, around an axis derived from the current vector, so no up/right basis is
// stored between calls and RotateVector(RotateVector(v, t, p), -t, -p) returns v.
// When v is parallel to the up axis the pitch axis is undefined and only the yaw is applied.
//
// Parameters:
//   - v: the vector to rotate
//   - theta: yaw angle in radians
//   - phi: pitch angle in radians
//
// Returns:
//   - mgl32.Vec3: the rotated vector with |result| == |v|
func RotateVector(v mgl32.Vec3, theta, phi float32) mgl32.Vec3 {
	size := v.Len()
	if size == 0 {
		return v
	}

	yaw := mgl32.QuatRotate(theta, UnitY)
	rotation := yaw
	axis := UnitY.Cross(v)
	if axisLen := axis.Len(); axisLen > 1e-6 {
		pitch := mgl32.QuatRotate(phi, axis.Mul(1/axisLen))
		rotation = yaw.Mul(pitch)
	}

	rotated := rotation.Normalize().Rotate(v)
	rotatedLen := rotated.Len()
	if rotatedLen == 0 {
		return rotated
	}
	return rotated.Mul(size / rotatedLen)
}

// directionEpsilon is the length below which a vector has no usable direction.
const directionEpsilon float32 = 1e-6

// HasDirection reports whether v is long enough to normalize. Zero, NaN and infinite vectors have
// no direction.
func HasDirection(v mgl32.Vec3) bool {
	length := math32.Sqrt(v.Dot(v))
	return length >= directionEpsilon && !math32.IsInf(length, 1)
}

// NormalizeOr scales v to unit length, or returns fallback when v has no direction.
//
// Parameters:
//   - v: the vector to normalize
//   - fallback: the result for a degenerate v, returned unchanged
//
// Returns:
//   - mgl32.Vec3: the unit vector or fallback
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if !HasDirection(v) {
		return fallback
	}
	return v.Normalize()
}

// ApproxEqualVec3 reports whether two vectors are equal within tolerance on every component.
//
// Parameters:
//   - a, b: the vectors to compare
//   - tolerance: the maximum allowed absolute difference per component
//
// Returns:
//   - bool: true if every component differs by at most tolerance
func ApproxEqualVec3(a, b mgl32.Vec3, tolerance float32) bool {
	for i := range 3 {
		if math32.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}
