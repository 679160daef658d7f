package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/brics-go/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window, binds its callbacks and stores it as the internal window.
// The calling goroutine stays locked to its OS thread: GLFW calls must come from the main thread.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// No OpenGL context; the surface is created by WebGPU.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	gw.bindCallbacks()
	w.internalWindow = gw

	// Framebuffer pixels, which differ from screen coordinates on high-DPI displays.
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// bindCallbacks routes GLFW events to the callbacks registered on the parent window.
// Callbacks run inside WaitEvents, on the loop goroutine.
func (gw *glfwWindow) bindCallbacks() {
	gw.window.SetKeyCallback(gw.handleKey)
	gw.window.SetScrollCallback(gw.handleScroll)
	gw.window.SetMouseButtonCallback(gw.handleMouseButton)
	gw.window.SetCursorPosCallback(gw.handleCursor)
	gw.window.SetFramebufferSizeCallback(gw.handleFramebufferSize)
}

// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
func (gw *glfwWindow) handleKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if gw.parent.onKey == nil || key == glfw.KeyUnknown {
		return
	}
	switch action {
	case glfw.Press, glfw.Repeat:
		gw.parent.onKey(input.Key(key), true)
	case glfw.Release:
		gw.parent.onKey(input.Key(key), false)
	}
}

func (gw *glfwWindow) handleScroll(_ *glfw.Window, _, yoff float64) {
	if gw.parent.onScroll != nil {
		gw.parent.onScroll(float32(yoff))
	}
}

func (gw *glfwWindow) handleMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if gw.parent.onMouseButton != nil {
		gw.parent.onMouseButton(input.MouseButton(button), action == glfw.Press)
	}
}

func (gw *glfwWindow) handleCursor(_ *glfw.Window, xpos, ypos float64) {
	if gw.parent.onMouseMove != nil {
		gw.parent.onMouseMove(float32(xpos), float32(ypos))
	}
}

// handleFramebufferSize reports resizes in pixels. A minimized window reports 0x0.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
func (gw *glfwWindow) handleFramebufferSize(_ *glfw.Window, width, height int) {
	gw.parent.width = width
	gw.parent.height = height
	if gw.parent.onResize != nil {
		gw.parent.onResize(width, height)
	}
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal window is nil, the running flag is cleared, or GLFW reports ShouldClose.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformWaitEvents blocks in GLFW until an event arrives or the timeout elapses.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#WaitEventsTimeout
func platformWaitEvents(w *engineWindow, timeout time.Duration) {
	if w.internalWindow == nil {
		return
	}
	if timeout <= 0 {
		glfw.PollEvents()
		return
	}
	glfw.WaitEventsTimeout(timeout.Seconds())
}

// platformWake posts an empty event so a blocked WaitEventsTimeout returns.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PostEmptyEvent
func platformWake() {
	glfw.PostEmptyEvent()
}
