package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config   string
	Model    string
	Texture  string
	Out      string
	DepthOut string
	Mode     string
	Width    int
	Height   int
	FPS      int
	Debug    bool
}

// ParseFlags parses command-line arguments (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("softrender", flag.ContinueOnError)
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Model, "model", "", "glTF/GLB model to render")
	fs.StringVar(&f.Texture, "texture", "", "Texture image for the demo scene")
	fs.StringVar(&f.Out, "out", "", "Write the frame to this PNG instead of the terminal")
	fs.StringVar(&f.DepthOut, "depth-out", "", "Write the depth map to this PNG")
	fs.StringVar(&f.Mode, "mode", "", "Rendering mode: line, monochrome, plain, interpolate")
	fs.IntVar(&f.Width, "width", 0, "Image width")
	fs.IntVar(&f.Height, "height", 0, "Image height")
	fs.IntVar(&f.FPS, "fps", 0, "Terminal viewer frame rate")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging and overlays")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Render.Overlays.Landmarks = true
		cfg.Render.Overlays.Lights = true
	}
	if f.Model != "" {
		cfg.Scene.Model = f.Model
	}
	if f.Texture != "" {
		cfg.Scene.Texture = f.Texture
	}
	if f.Out != "" {
		cfg.Output.Image = f.Out
	}
	if f.DepthOut != "" {
		cfg.Output.Depth = f.DepthOut
	}
	if f.Mode != "" {
		cfg.Render.Mode = f.Mode
	}
	if f.Width > 0 {
		cfg.Viewport.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewport.Height = f.Height
	}
	if f.FPS > 0 {
		cfg.Output.FPS = f.FPS
	}
}
