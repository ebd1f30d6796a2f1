package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/taigrr/softrender/pkg/scene"
)

// PNGSink writes every presented frame to a PNG file. A path containing a
// %d verb is formatted with the frame number.
type PNGSink struct {
	Path string

	frames int
}

// NewPNGSink creates a sink writing to path.
func NewPNGSink(path string) *PNGSink {
	return &PNGSink{Path: path}
}

// Clear is a no-op: the framebuffer already carries the background.
func (s *PNGSink) Clear(scene.Color) {}

// Present encodes fb.
func (s *PNGSink) Present(fb *Framebuffer) error {
	path := s.Path
	if strings.Contains(path, "%d") {
		path = fmt.Sprintf(path, s.frames)
	}
	s.frames++
	return SavePNG(path, fb.ToImage())
}

// Frames returns the number of frames written.
func (s *PNGSink) Frames() int { return s.frames }

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
