package graphics

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/brics-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrFrameAcquisition is returned by Render when the next surface texture cannot be acquired,
// even after the surface was reconfigured.
var ErrFrameAcquisition = errors.New("graphics: failed to acquire frame")

// surfaceTarget is the part of the presentation surface that frame acquisition depends on.
type surfaceTarget interface {
	// acquire returns the next surface texture.
	acquire() (*wgpu.Texture, error)

	// reconfigure rebuilds the surface configuration at the current size.
	reconfigure()
}

// acquireWithRetry acquires the next frame. A failed acquisition reconfigures the surface and
// tries exactly once more.
func acquireWithRetry(target surfaceTarget) (*wgpu.Texture, error) {
	tex, err := target.acquire()
	if err == nil {
		return tex, nil
	}
	common.Logger().Warn("frame acquisition failed, reconfiguring surface", "error", err)

	target.reconfigure()
	tex, err = target.acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameAcquisition, err)
	}
	return tex, nil
}

// wgpuSurface configures and acquires from a native surface.
type wgpuSurface struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	config  wgpu.SurfaceConfiguration
}

var _ surfaceTarget = &wgpuSurface{}

func (s *wgpuSurface) acquire() (*wgpu.Texture, error) {
	return s.surface.GetCurrentTexture()
}

func (s *wgpuSurface) reconfigure() {
	if s.config.Width == 0 || s.config.Height == 0 {
		return
	}
	s.surface.Configure(s.adapter, s.device, &s.config)
}

// resize records the new size and reconfigures.
func (s *wgpuSurface) resize(width, height int) {
	s.config.Width = uint32(max(width, 0))
	s.config.Height = uint32(max(height, 0))
	s.reconfigure()
}
