// Package config handles renderer configuration loading and management.
package config

import "github.com/taigrr/softrender/internal/logger"

// Config holds all renderer settings.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Render   RenderConfig   `yaml:"render"`
	Camera   CameraConfig   `yaml:"camera"`
	Lights   []LightConfig  `yaml:"lights"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`
}

// Vec is an (x, y, z) triple.
type Vec [3]float64

// RGB is an opaque color.
type RGB [3]uint8

// ViewportConfig holds the image size and projection volume.
type ViewportConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Projection string  `yaml:"projection"` // frustum or orthographic
	FOV        float64 `yaml:"fov"`        // Vertical, degrees
	HalfHeight float64 `yaml:"half_height"`
	Near       float64 `yaml:"near"`
	Far        float64 `yaml:"far"`
}

// RenderConfig holds the per-frame rendering options.
type RenderConfig struct {
	Mode            string         `yaml:"mode"`
	BackfaceCulling bool           `yaml:"backface_culling"`
	Texture         bool           `yaml:"texture"`
	Shadows         bool           `yaml:"shadows"`
	ShadowMapSize   int            `yaml:"shadow_map_size"`
	ShadowBias      float64        `yaml:"shadow_bias"`
	ShadowExtent    float64        `yaml:"shadow_extent"`
	Background      RGB            `yaml:"background"`
	Overlays        OverlaysConfig `yaml:"overlays"`
}

// OverlaysConfig toggles the debug overlays.
type OverlaysConfig struct {
	Lines     bool `yaml:"lines"`
	Normals   bool `yaml:"normals"`
	Landmarks bool `yaml:"landmarks"`
	Lights    bool `yaml:"lights"`
	Color     RGB  `yaml:"color"`
}

// CameraConfig places the camera.
type CameraConfig struct {
	Eye Vec `yaml:"eye"`
	POI Vec `yaml:"poi"`
	Up  Vec `yaml:"up"`
}

// LightConfig describes one light source.
type LightConfig struct {
	Kind        string  `yaml:"kind"` // ambient, directional or point
	Color       RGB     `yaml:"color"`
	Intensity   float64 `yaml:"intensity"`
	Direction   Vec     `yaml:"direction,omitempty"`
	Position    Vec     `yaml:"position,omitempty"`
	CastsShadow bool    `yaml:"casts_shadow"`
}

// SceneConfig selects what to render.
type SceneConfig struct {
	Model   string  `yaml:"model"`   // glTF/GLB path; empty renders the demo scene
	Texture string  `yaml:"texture"` // Image applied to the demo shapes
	FitSize float64 `yaml:"fit_size"`
	Ground  bool    `yaml:"ground"`

	// MaxTextureSize caps the larger side of loaded textures; 0 disables.
	MaxTextureSize int `yaml:"max_texture_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string            `yaml:"level"`
	Console bool              `yaml:"console"`
	File    logger.FileConfig `yaml:"file"`
}

// OutputConfig selects headless image output or the interactive viewer.
type OutputConfig struct {
	Image string `yaml:"image"` // PNG path; empty starts the terminal viewer
	Depth string `yaml:"depth"` // Optional depth map PNG path
	FPS   int    `yaml:"fps"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:      800,
			Height:     600,
			Projection: "frustum",
			FOV:        60,
			HalfHeight: 3,
			Near:       0.1,
			Far:        100,
		},
		Render: RenderConfig{
			Mode:            "interpolate",
			BackfaceCulling: true,
			Texture:         true,
			Shadows:         true,
			ShadowMapSize:   512,
			ShadowBias:      0.005,
			Background:      RGB{20, 20, 30},
			Overlays:        OverlaysConfig{Color: RGB{255, 255, 0}},
		},
		Camera: CameraConfig{
			Eye: Vec{4, 3, 5},
			Up:  Vec{0, 1, 0},
		},
		Lights: []LightConfig{
			{Kind: "ambient", Color: RGB{255, 255, 255}, Intensity: 0.2},
			{Kind: "directional", Color: RGB{255, 255, 255}, Intensity: 0.8, Direction: Vec{-1, -2, -1}, CastsShadow: true},
		},
		Scene: SceneConfig{
			FitSize:        2,
			Ground:         true,
			MaxTextureSize: 1024,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    logger.DefaultFileConfig(""),
		},
		Output: OutputConfig{
			FPS: 30,
		},
	}
}
