package scenekit

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// HeadlessHost schedules a fixed number of frames without a window.
type HeadlessHost struct {
	// Frames is the number of frames to run; 0 runs until ctx is done.
	Frames int
	// Loads, when set, is waited on before every frame so async results land
	// on a predictable frame.
	Loads    *LoadQueue
	Progress io.Writer
	Title    string
}

func (h *HeadlessHost) Run(ctx context.Context, frame func() (bool, error)) error {
	var bar *progressbar.ProgressBar
	if h.Progress != nil && h.Frames > 0 {
		bar = progressbar.NewOptions(h.Frames,
			progressbar.OptionSetWriter(h.Progress),
			progressbar.OptionSetDescription(h.Title),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(h.Progress) }),
		)
		defer bar.Close()
	}
	for i := 0; h.Frames == 0 || i < h.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.Loads != nil {
			if err := h.Loads.WaitIdle(ctx); err != nil {
				return err
			}
		}
		more, err := frame()
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if !more {
			return nil
		}
	}
	return nil
}

// PNGSequence writes every presented frame to Dir as frame-0000.png, frame-0001.png, ...
type PNGSequence struct {
	Dir  string
	next int
}

func (p *PNGSequence) Present(img *image.RGBA) error {
	if p.next == 0 {
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", p.Dir, err)
		}
	}
	path := filepath.Join(p.Dir, fmt.Sprintf("frame-%04d.png", p.next))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	p.next++
	return f.Close()
}

// Written is the number of frames saved so far.
func (p *PNGSequence) Written() int { return p.next }

// FrameRecorder keeps a copy of every presented frame in memory.
type FrameRecorder struct {
	Frames []*image.RGBA
}

func (r *FrameRecorder) Present(img *image.RGBA) error {
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	r.Frames = append(r.Frames, cp)
	return nil
}

// RenderOptions configures RenderHeadless.
type RenderOptions struct {
	Config    Config
	Presenter Presenter
	Progress  io.Writer
	Logger    Logger
}

// RenderHeadless runs an exercise for Config.Frames frames on a fixed step
// clock of 1/FPS seconds, presenting each frame.
func RenderHeadless(ctx context.Context, h Harness, opts RenderOptions) error {
	cfg := opts.Config
	step := time.Second / time.Duration(max(cfg.FPS, 1))
	app, sc, err := h.Build(HarnessOptions{
		Config:     cfg,
		Host:       &Host{Presenter: opts.Presenter},
		TimeSource: StepSource(time.Unix(0, 0), step),
		Logger:     opts.Logger,
	})
	if err != nil {
		return err
	}
	defer sc.Loads.Close()
	return app.Run(ctx, &HeadlessHost{
		Frames:   cfg.Frames,
		Loads:    sc.Loads,
		Progress: opts.Progress,
		Title:    h.Name,
	})
}
