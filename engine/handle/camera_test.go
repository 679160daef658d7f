package handle

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera(t *testing.T) (Camera, *gputest.Device) {
	t.Helper()
	device := gputest.NewDevice()
	cam, err := NewCameraLayout().CreateHandle(device)
	require.NoError(t, err)
	return cam, device
}

func TestCameraDirection(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAt(mgl32.Vec3{5, 5, -5.5}, mgl32.Vec3{0, 0, 0}).SetPerspective(75, 1.0)

	want := mgl32.Vec3{-5, -5, 5.5}.Normalize()
	assert.True(t, common.ApproxEqualVec3(want, cam.Direction(), 1e-6), "direction %v", cam.Direction())
	assert.True(t, common.ApproxEqualVec3(mgl32.Vec3{-0.5623, -0.5623, 0.6092}, cam.Direction(), 1e-2))
}

func TestCameraOrbitInverse(t *testing.T) {
	angles := []struct{ theta, phi float32 }{
		{0.3, 0.2},
		{-1.1, 0.4},
		{2.5, -0.6},
		{0.004, -0.004},
	}
	for _, a := range angles {
		cam, _ := newTestCamera(t)
		eye := mgl32.Vec3{5, 5, -5.5}
		cam.LookAt(eye, mgl32.Vec3{1, 0, 2})

		cam.RotateAroundCenter(a.theta, a.phi).RotateAroundCenter(-a.theta, -a.phi)

		assert.True(t, common.ApproxEqualVec3(eye, cam.Eye(), 1e-4), "theta=%v phi=%v eye=%v", a.theta, a.phi, cam.Eye())
		assert.Equal(t, mgl32.Vec3{1, 0, 2}, cam.Center())
	}
}

func TestCameraOrbitPreservesDistance(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAt(mgl32.Vec3{0, 10, 1}, mgl32.Vec3{})
	before := cam.Eye().Len()

	for range 100 {
		cam.RotateAroundCenter(0.05, -0.02)
	}
	assert.InDelta(t, before, cam.Eye().Len(), 1e-3)
}

func TestCameraOrbitStraightDownSkipsPitch(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAt(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{})

	cam.RotateAroundCenter(0.5, 0.5)
	assert.True(t, common.ApproxEqualVec3(mgl32.Vec3{0, 10, 0}, cam.Eye(), 1e-5))
}

func TestCameraTranslatePreservesDirection(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAt(mgl32.Vec3{0, 10, 1}, mgl32.Vec3{})
	dir := cam.Direction()
	offset := cam.Center().Sub(cam.Eye())

	cam.Translate(1.5, -2, 3.25)

	assert.Equal(t, mgl32.Vec3{1.5, 8, 4.25}, cam.Eye())
	assert.Equal(t, mgl32.Vec3{1.5, -2, 3.25}, cam.Center())
	assert.Equal(t, offset, cam.Center().Sub(cam.Eye()))
	assert.True(t, common.ApproxEqualVec3(dir, cam.Direction(), 1e-7))
}

func TestCameraSetCenterKeepsOffset(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAt(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, 0})

	cam.SetCenter(10, 0, 0)
	assert.Equal(t, mgl32.Vec3{11, 2, 3}, cam.Eye())
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, cam.Center())
}

func TestCameraRotateDirectionKeepsEye(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.LookAtDir(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, -3})
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, cam.Center())

	cam.RotateDirection(0.7, 0.1)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, cam.Eye())
	assert.InDelta(t, 1.0, cam.Center().Sub(cam.Eye()).Len(), 1e-5)
}

func TestCameraUpdateWritesViewProjection(t *testing.T) {
	cam, device := newTestCamera(t)
	queue := gputest.NewQueue()
	cam.LookAt(mgl32.Vec3{0, 10, 1}, mgl32.Vec3{}).SetPerspective(75, 1.5)

	require.NoError(t, cam.Update(queue))
	w, ok := queue.LastWrite()
	require.True(t, ok)
	assert.Equal(t, uint64(0), w.Offset)
	assert.Len(t, w.Data, 80)
	assert.Equal(t, device.BufferSize(w.Buffer), uint64(len(w.Data)))

	want := common.Perspective(75, 1.5, 0.01, 1000).Mul4(common.LookAt(mgl32.Vec3{0, 10, 1}, mgl32.Vec3{}))
	for i := range 16 {
		assert.InDelta(t, want[i], common.Float32At(w.Data, i*4), 1e-5)
	}
	assert.Equal(t, float32(10), common.Float32At(w.Data, 68))

	// Recomputed fresh: changing the aspect ratio alone changes the next write.
	cam.SetAspectRatio(1.0)
	require.NoError(t, cam.Update(queue))
	w2, _ := queue.LastWrite()
	assert.NotEqual(t, w.Data, w2.Data)
}

func TestCameraDegenerateDirectionsKeepPreviousView(t *testing.T) {
	nan := float32(math.NaN())

	cam, _ := newTestCamera(t)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, cam.Direction())

	cam.LookAt(mgl32.Vec3{0, 10, 1}, mgl32.Vec3{})
	dir := cam.Direction()

	cam.LookAtDir(mgl32.Vec3{2, 3, 4}, mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, cam.Eye())
	assert.True(t, common.ApproxEqualVec3(dir, cam.Direction(), 1e-6), "direction %v", cam.Direction())

	cam.LookAtDir(mgl32.Vec3{2, 3, 4}, mgl32.Vec3{nan, 0, 0})
	assert.True(t, common.ApproxEqualVec3(dir, cam.Direction(), 1e-6), "direction %v", cam.Direction())

	cam.LookAt(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{5, 5, 5})
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, cam.Eye())
	assert.NotEqual(t, cam.Eye(), cam.Center())
	assert.True(t, common.ApproxEqualVec3(dir, cam.Direction(), 1e-6), "direction %v", cam.Direction())

	vp := cam.SetPerspective(75, 1).ViewProjection()
	for _, f := range vp {
		assert.False(t, math.IsNaN(float64(f)))
	}
}

func TestCameraSetAspectRatioIgnoresOrtho(t *testing.T) {
	cam, _ := newTestCamera(t)
	cam.SetOrtho(-20, 20, -20, 20, -40, 20)
	before := cam.Projection()

	cam.SetAspectRatio(2)
	assert.Equal(t, before, cam.Projection())
}
