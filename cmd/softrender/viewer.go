package main

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/softrender/internal/config"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

// viewState holds the toggles driven by the keyboard.
type viewState struct {
	rc      render.RenderContext
	showHUD bool
}

var modeCycle = []render.RenderingMode{
	render.ModeInterpolate,
	render.ModePlain,
	render.ModeLine,
}

// nextMode returns the mode after m in the cycle.
func nextMode(m render.RenderingMode) render.RenderingMode {
	for i, mode := range modeCycle {
		if mode == m {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return modeCycle[0]
}

// handleKey applies a key press to the view and orbit. It returns false
// when the viewer should quit.
func (v *viewState) handleKey(ev uv.KeyPressEvent, orbit *Orbit, cam *render.Camera) bool {
	const spin = 0.04
	switch {
	case ev.MatchString("escape", "ctrl+c", "q"):
		return false
	case ev.MatchString("a", "left"):
		orbit.Impulse(-spin, 0, 0)
	case ev.MatchString("d", "right"):
		orbit.Impulse(spin, 0, 0)
	case ev.MatchString("w", "up"):
		orbit.Impulse(0, spin, 0)
	case ev.MatchString("s", "down"):
		orbit.Impulse(0, -spin, 0)
	case ev.MatchString("+", "="):
		orbit.Impulse(0, 0, -0.03)
	case ev.MatchString("-", "_"):
		orbit.Impulse(0, 0, 0.03)
	case ev.MatchString("space"):
		orbit.Impulse((rand.Float64()-0.5)*0.3, (rand.Float64()-0.5)*0.1, 0)
	case ev.MatchString("r"):
		orbit.Reset(cam)
	case ev.MatchString("m"):
		v.rc.Mode = nextMode(v.rc.Mode)
	case ev.MatchString("c"):
		v.rc.BackfaceCulling = !v.rc.BackfaceCulling
	case ev.MatchString("t"):
		v.rc.Texture = !v.rc.Texture
	case ev.MatchString("h"):
		v.rc.Shadows = !v.rc.Shadows
	case ev.MatchString("1"):
		v.rc.LineOverlay = !v.rc.LineOverlay
	case ev.MatchString("2"):
		v.rc.NormalOverlay = !v.rc.NormalOverlay
	case ev.MatchString("3"):
		v.rc.LandmarkOverlay = !v.rc.LandmarkOverlay
	case ev.MatchString("4"):
		v.rc.LightOverlay = !v.rc.LightOverlay
	case ev.MatchString("?", "shift+/"):
		v.showHUD = !v.showHUD
	}
	return true
}

// status renders the HUD line.
func (v *viewState) status(fps float64, stats render.Stats) string {
	on := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf(" %3.0f FPS | %s | %d/%d tris | cull %s tex %s shadow %s | m mode, ? hide",
		fps, v.rc.Mode, stats.TrianglesShown, stats.TrianglesProcessed,
		on(v.rc.BackfaceCulling), on(v.rc.Texture), on(v.rc.Shadows))
}

// drawStatus writes text on one terminal row.
func drawStatus(scr uv.Screen, row, width int, text string) {
	style := uv.Style{Fg: scene.ColorWhite, Bg: scene.ColorBlack}
	col := 0
	for _, r := range text {
		if col >= width {
			break
		}
		scr.SetCell(col, row, &uv.Cell{Content: string(r), Width: 1, Style: style})
		col++
	}
	for ; col < width; col++ {
		scr.SetCell(col, row, &uv.Cell{Content: " ", Width: 1, Style: style})
	}
}

// fpsCounter averages frame rate over one second windows.
type fpsCounter struct {
	fps    float64
	frames int
	since  time.Time
}

func (f *fpsCounter) tick(now time.Time) {
	f.frames++
	if elapsed := now.Sub(f.since); elapsed >= time.Second {
		f.fps = float64(f.frames) / elapsed.Seconds()
		f.frames = 0
		f.since = now
	}
}

// runViewer renders world in the terminal until the user quits.
func runViewer(cfg *config.Config, world *scene.World, lights *render.Lighting, rc render.RenderContext, log *zap.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown", zap.Error(err))
		}
	}
	defer cleanup()

	sink := render.NewTerminalSink(term, image.Rect(0, 0, width, height-1), term.Display)
	engine := render.NewEngine(log, sink)

	cam := cfg.Camera()
	fps := max(cfg.Output.FPS, 1)
	orbit := NewOrbit(fps, cam)
	view := &viewState{rc: rc, showHUD: true}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	counter := fpsCounter{since: time.Now()}
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				sink.SetArea(image.Rect(0, 0, width, height-1))
			case uv.KeyPressEvent:
				if !view.handleKey(ev, orbit, cam) {
					return nil
				}
			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					orbit.Impulse(0, 0, -0.05)
				case uv.MouseWheelDown:
					orbit.Impulse(0, 0, 0.05)
				}
			}

		case now := <-ticker.C:
			orbit.Step(cam)

			fbWidth, fbHeight := sink.FramebufferSize()
			vp := *cfg
			vp.Viewport.Width, vp.Viewport.Height = fbWidth, fbHeight
			gc, err := vp.GraphicContext()
			if err != nil {
				// Terminal too small to draw into; wait for a resize.
				continue
			}

			// The status row is drawn before Render so the sink's flush
			// includes it.
			if view.showHUD {
				drawStatus(term, height-1, width, view.status(counter.fps, engine.Stats()))
			} else {
				drawStatus(term, height-1, width, "")
			}

			if _, err := engine.Render(world, lights, cam, view.rc, gc); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			counter.tick(now)
		}
	}
}
