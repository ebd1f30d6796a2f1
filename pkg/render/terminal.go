package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softrender/pkg/scene"
)

// TerminalSink presents frames as terminal cells. Each cell shows two
// vertically stacked pixels with the upper half block (▀): the foreground is
// the top pixel and the background the bottom one, so the framebuffer should
// be twice as tall as the drawing area.
type TerminalSink struct {
	screen  uv.Screen
	area    uv.Rectangle
	display func() error
	bg      scene.Color
}

// NewTerminalSink draws into scr over area. display, if set, is called after
// every frame to flush the screen.
func NewTerminalSink(scr uv.Screen, area uv.Rectangle, display func() error) *TerminalSink {
	return &TerminalSink{screen: scr, area: area, display: display}
}

// SetArea changes the drawing area, e.g. after a resize.
func (s *TerminalSink) SetArea(area uv.Rectangle) {
	s.area = area
}

// FramebufferSize returns the framebuffer dimensions matching the area.
func (s *TerminalSink) FramebufferSize() (width, height int) {
	return s.area.Dx(), s.area.Dy() * 2
}

// Clear records the background used for cells the frame does not cover.
func (s *TerminalSink) Clear(bg scene.Color) {
	s.bg = bg
}

// Present draws fb and flushes the screen.
func (s *TerminalSink) Present(fb *Framebuffer) error {
	for row := s.area.Min.Y; row < s.area.Max.Y; row++ {
		topY := (row - s.area.Min.Y) * 2
		botY := topY + 1

		for col := s.area.Min.X; col < s.area.Max.X; col++ {
			x := col - s.area.Min.X
			top, bot := s.bg, s.bg
			if x < fb.Width {
				if topY < fb.Height {
					top = fb.GetPixel(x, topY)
				}
				if botY < fb.Height {
					bot = fb.GetPixel(x, botY)
				}
			}

			s.screen.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(top),
					Bg: rgbaToColor(bot),
				},
			})
		}
	}
	if s.display == nil {
		return nil
	}
	return s.display()
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
