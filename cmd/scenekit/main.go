package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/gekko3d/scenekit"
	"github.com/gekko3d/scenekit/exercises"
	"github.com/gekko3d/scenekit/present"
	"github.com/spf13/cobra"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	width      int
	height     int
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "scenekit",
		Short:        "Run small 3D scenes in a window or render them to PNG",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", scenekit.ConfigFilename, "YAML config file")
	root.PersistentFlags().IntVar(&opts.width, "width", 0, "viewport width (overrides config)")
	root.PersistentFlags().IntVar(&opts.height, "height", 0, "viewport height (overrides config)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "debug logging")

	root.AddCommand(newListCmd(), newRunCmd(opts), newRenderCmd(opts))
	return root
}

func (o *options) load() (scenekit.Config, error) {
	cfg, err := scenekit.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	if o.debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exercises",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, h := range exercises.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", h.Name, h.Description)
			}
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <exercise>",
		Short: "Open an exercise in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := exercises.Lookup(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			win, err := present.Open(cfg.Width, cfg.Height, cfg.Title+" - "+h.Name)
			if err != nil {
				return err
			}
			defer win.Close()

			app, sc, err := h.Build(scenekit.HarnessOptions{Config: cfg, Host: win.Host()})
			if err != nil {
				return err
			}
			defer sc.Loads.Close()
			return app.Run(cmd.Context(), win)
		},
	}
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		frames int
		out    string
		fps    int
	)
	c := &cobra.Command{
		Use:   "render <exercise>",
		Short: "Render an exercise headless to a PNG sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := exercises.Lookup(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				cfg.Frames = frames
			}
			if cmd.Flags().Changed("out") {
				cfg.OutDir = out
			}
			if cmd.Flags().Changed("fps") {
				cfg.FPS = fps
			}
			if cfg.Frames <= 0 {
				return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			seq := &scenekit.PNGSequence{Dir: cfg.OutDir}
			err = scenekit.RenderHeadless(cmd.Context(), h, scenekit.RenderOptions{
				Config:    cfg,
				Presenter: seq,
				Progress:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", seq.Written(), cfg.OutDir)
			return nil
		},
	}
	c.Flags().IntVar(&frames, "frames", 60, "number of frames")
	c.Flags().StringVar(&out, "out", "frames", "output directory")
	c.Flags().IntVar(&fps, "fps", 60, "simulated frames per second")
	return c
}
