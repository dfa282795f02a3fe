package scenekit

import (
	"image"
	"reflect"
)

const (
	KeyA int = iota
	KeyD
	KeyR
	KeyS
	KeyW
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyShift
	KeyControl
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	inputButtonCount
)

// Input is the per-frame snapshot of the host's keyboard, mouse and window state.
// Mouse coordinates are in window (CSS-like) pixels, origin top-left.
type Input struct {
	Pressed      [inputButtonCount]bool
	JustPressed  [inputButtonCount]bool
	JustReleased [inputButtonCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64

	WindowWidth, WindowHeight int
	DevicePixelRatio          float32
}

// SetButton records the host's view of a key or mouse button and derives the edge flags.
func (in *Input) SetButton(button int, down bool) {
	in.JustPressed[button] = down && !in.Pressed[button]
	in.JustReleased[button] = !down && in.Pressed[button]
	in.Pressed[button] = down
}

// MoveMouse sets the cursor position and the delta since the previous position.
func (in *Input) MoveMouse(x, y float64) {
	in.MouseDeltaX = x - in.MouseX
	in.MouseDeltaY = y - in.MouseY
	in.MouseX = x
	in.MouseY = y
}

// InputSource is implemented by hosts that deliver user input.
type InputSource interface {
	PollInput(in *Input)
}

// Presenter is implemented by hosts that display rendered frames.
type Presenter interface {
	Present(img *image.RGBA) error
}

// Host bundles the optional capabilities of the environment the loop runs in.
type Host struct {
	Input     InputSource
	Presenter Presenter
}

// Cursor is the mouse position normalized to [-0.5, 0.5] on both axes, y up.
type Cursor struct {
	X, Y float32
}

// UpdateFromMouse maps window pixels to the normalized cursor using the viewport size.
func (c *Cursor) UpdateFromMouse(mouseX, mouseY float64, sizes *Sizes) {
	if sizes.Width <= 0 || sizes.Height <= 0 {
		return
	}
	c.X = float32(mouseX/float64(sizes.Width) - 0.5)
	c.Y = float32(-(mouseY/float64(sizes.Height) - 0.5))
}

var typeOfHost = reflect.TypeFor[Host]()

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	if !app.hasResource(typeOfHost) {
		cmd.AddResources(&Host{})
	}
	cmd.AddResources(&Input{}, &Cursor{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(host *Host, input *Input, cursor *Cursor, sizes *Sizes) {
	for i := range input.JustPressed {
		input.JustPressed[i] = false
		input.JustReleased[i] = false
	}
	input.MouseDeltaX, input.MouseDeltaY = 0, 0
	input.ScrollY = 0

	if host.Input != nil {
		host.Input.PollInput(input)
	}
	cursor.UpdateFromMouse(input.MouseX, input.MouseY, sizes)
}
