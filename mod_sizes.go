package scenekit

// Sizes is the viewport in window pixels. Width and Height are always positive.
type Sizes struct {
	Width, Height int
	// PixelRatio is the effective device pixel ratio, already capped.
	PixelRatio    float32
	MaxPixelRatio float32
}

func (s *Sizes) Aspect() float32 {
	return float32(s.Width) / float32(s.Height)
}

// ResizeEvent is emitted by Resize for observers that poll Sizes.
type ResizeEvent struct {
	Width, Height int
	PixelRatio    float32
}

type SizesModule struct {
	Width, Height int
	MaxPixelRatio float32
}

func (mod SizesModule) Install(app *App, cmd *Commands) {
	w, h := mod.Width, mod.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	maxRatio := mod.MaxPixelRatio
	if maxRatio <= 0 {
		maxRatio = 2
	}
	cmd.AddResources(&Sizes{Width: w, Height: h, PixelRatio: 1, MaxPixelRatio: maxRatio})
	app.UseSystem(
		System(resizeSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func resizeSystem(cmd *Commands, input *Input, sizes *Sizes, cursor *Cursor) {
	if input.WindowWidth <= 0 || input.WindowHeight <= 0 {
		return
	}
	dpr := input.DevicePixelRatio
	if dpr <= 0 {
		dpr = sizes.PixelRatio
	}
	if input.WindowWidth == sizes.Width && input.WindowHeight == sizes.Height && capRatio(dpr, sizes.MaxPixelRatio) == sizes.PixelRatio {
		return
	}
	if Resize(cmd, ResizeEvent{Width: input.WindowWidth, Height: input.WindowHeight, PixelRatio: dpr}) {
		cursor.UpdateFromMouse(input.MouseX, input.MouseY, sizes)
	}
}

func capRatio(ratio, maxRatio float32) float32 {
	if maxRatio <= 0 {
		maxRatio = 2
	}
	return min(ratio, maxRatio)
}

// Resize applies a new viewport: Sizes, every camera's aspect and projection, and
// the renderer's surface. Events with non-positive sizes are ignored.
func Resize(cmd *Commands, ev ResizeEvent) bool {
	if ev.Width <= 0 || ev.Height <= 0 {
		return false
	}
	app := cmd.App()
	sizes, ok := Resource[Sizes](app)
	if !ok {
		return false
	}
	sizes.Width, sizes.Height = ev.Width, ev.Height
	if ev.PixelRatio > 0 {
		sizes.PixelRatio = capRatio(ev.PixelRatio, sizes.MaxPixelRatio)
	}

	MakeQuery1[CameraComponent](cmd).Map(func(_ EntityId, cam *CameraComponent) bool {
		cam.Aspect = sizes.Aspect()
		cam.UpdateProjectionMatrix()
		return true
	})

	if rr, ok := Resource[RendererResource](app); ok && rr.Renderer != nil {
		rr.Renderer.SetSize(sizes.Width, sizes.Height)
		rr.Renderer.SetPixelRatio(sizes.PixelRatio)
	}
	app.Logger().Debugf("resize: %dx%d @%.2f", sizes.Width, sizes.Height, sizes.PixelRatio)
	return true
}
