// softrender - Software 3D Renderer
// Renders a glTF/GLB model, or a built-in demo scene, to a PNG file or
// interactively in the terminal.
//
// Controls (terminal viewer):
//
//	A/D, Left/Right - Orbit around the model
//	W/S, Up/Down    - Raise/lower the camera
//	+/-, Scroll     - Zoom in/out
//	Space           - Random spin
//	R               - Reset camera
//	M               - Cycle rendering mode (interpolate, plain, line)
//	C               - Toggle backface culling
//	T               - Toggle texture
//	H               - Toggle shadows
//	1/2/3/4         - Toggle edge, normal, landmark and light overlays
//	?               - Toggle status line
//	Esc, Q          - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/taigrr/softrender/internal/config"
	"github.com/taigrr/softrender/internal/logger"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *config.Flags) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	interactive := cfg.Output.Image == ""
	logCfg := cfg.Logger()
	if interactive {
		// Console lines would scroll the alternate screen.
		logCfg.Console = false
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	world, err := buildScene(cfg, log)
	if err != nil {
		return err
	}
	lights, err := cfg.Lighting()
	if err != nil {
		return err
	}
	rc, err := cfg.RenderContext()
	if err != nil {
		return err
	}

	if interactive {
		return runViewer(cfg, world, lights, rc, log)
	}
	return renderImage(cfg, world, lights, rc, log)
}

// renderImage renders a single frame to the configured PNG files.
func renderImage(cfg *config.Config, world *scene.World, lights *render.Lighting, rc render.RenderContext, log *zap.Logger) error {
	gc, err := cfg.GraphicContext()
	if err != nil {
		return err
	}

	engine := render.NewEngine(log, render.NewPNGSink(cfg.Output.Image))
	depth, err := engine.Render(world, lights, cfg.Camera(), rc, gc)
	if err != nil {
		return err
	}

	if cfg.Output.Depth != "" {
		if err := render.SavePNG(cfg.Output.Depth, depth.ToImage()); err != nil {
			return fmt.Errorf("save depth map: %w", err)
		}
	}

	stats := engine.Stats()
	log.Info("frame written",
		zap.String("path", cfg.Output.Image),
		zap.Int("width", gc.Width),
		zap.Int("height", gc.Height),
		zap.Int("shown", stats.TrianglesShown),
		zap.Int("out", stats.TrianglesOut),
		zap.Int("coverage", depth.Coverage()),
	)
	return nil
}
