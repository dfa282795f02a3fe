// Package present hosts scenekit apps in a desktop window: GLFW for the
// window and input, WebGPU to put the software framebuffer on screen.
package present

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/gekko3d/scenekit"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window implements scenekit.FrameScheduler, scenekit.InputSource and
// scenekit.Presenter. All methods must be called from the thread that
// called Open.
type Window struct {
	win    *glfw.Window
	gpu    *blitter
	scroll float64
}

// Open creates a resizable window of the given size in screen coordinates.
func Open(width, height int, title string) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	w := &Window{win: win}
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.scroll += yoff
	})
	win.SetKeyCallback(func(gw *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.SetShouldClose(true)
		}
	})

	w.gpu, err = newBlitter(win)
	if err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Window) Close() {
	if w.gpu != nil {
		w.gpu.release()
		w.gpu = nil
	}
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}

// Host returns the scenekit host backed by this window.
func (w *Window) Host() *scenekit.Host {
	return &scenekit.Host{Input: w, Presenter: w}
}

// Run calls frame once per iteration until the window is closed, ctx is done,
// or frame reports the loop is over.
func (w *Window) Run(ctx context.Context, frame func() (bool, error)) error {
	for !w.win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := frame()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// PollInput pumps GLFW events and copies the window state into in.
func (w *Window) PollInput(in *scenekit.Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		in.SetButton(key, w.win.GetKey(glfwKey) == glfw.Press)
	}
	for button, glfwButton := range buttonToGlfw {
		in.SetButton(button, w.win.GetMouseButton(glfwButton) == glfw.Press)
	}

	x, y := w.win.GetCursorPos()
	in.MoveMouse(x, y)
	in.ScrollY = w.scroll
	w.scroll = 0

	width, height := w.win.GetSize()
	fbWidth, _ := w.win.GetFramebufferSize()
	in.WindowWidth, in.WindowHeight = width, height
	if width > 0 {
		in.DevicePixelRatio = float32(fbWidth) / float32(width)
	}
}

// Present draws img stretched over the window's framebuffer.
func (w *Window) Present(img *image.RGBA) error {
	w.gpu.resize(w.win.GetFramebufferSize())
	return w.gpu.draw(img)
}

var keyToGlfw = map[int]glfw.Key{
	scenekit.KeyA:       glfw.KeyA,
	scenekit.KeyD:       glfw.KeyD,
	scenekit.KeyR:       glfw.KeyR,
	scenekit.KeyS:       glfw.KeyS,
	scenekit.KeyW:       glfw.KeyW,
	scenekit.KeySpace:   glfw.KeySpace,
	scenekit.KeyEnter:   glfw.KeyEnter,
	scenekit.KeyEscape:  glfw.KeyEscape,
	scenekit.KeyTab:     glfw.KeyTab,
	scenekit.KeyRight:   glfw.KeyRight,
	scenekit.KeyLeft:    glfw.KeyLeft,
	scenekit.KeyDown:    glfw.KeyDown,
	scenekit.KeyUp:      glfw.KeyUp,
	scenekit.KeyShift:   glfw.KeyLeftShift,
	scenekit.KeyControl: glfw.KeyLeftControl,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	scenekit.MouseButtonLeft:   glfw.MouseButtonLeft,
	scenekit.MouseButtonRight:  glfw.MouseButtonRight,
	scenekit.MouseButtonMiddle: glfw.MouseButtonMiddle,
}
