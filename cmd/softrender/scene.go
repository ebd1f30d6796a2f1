package main

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/softrender/internal/config"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
	"github.com/taigrr/softrender/pkg/shapes"
)

// buildScene loads the configured model, or the demo shapes when none is
// set, and adds the optional ground plane.
func buildScene(cfg *config.Config, log *zap.Logger) (*scene.World, error) {
	world := scene.NewWorld(cfg.Background())

	var tex scene.Texture
	if cfg.Scene.Texture != "" {
		t, err := render.LoadTexture(cfg.Scene.Texture)
		if err != nil {
			return nil, err
		}
		tex = t.Limit(cfg.Scene.MaxTextureSize)
	}

	size := cfg.Scene.FitSize
	if size <= 0 {
		size = 2
	}

	if cfg.Scene.Model != "" {
		loader := models.NewGLTFLoader()
		loader.MaxTextureSize = cfg.Scene.MaxTextureSize
		root, err := loader.Load(world, cfg.Scene.Model)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		models.Fit(world, root, size)
		log.Info("loaded model",
			zap.String("path", cfg.Scene.Model),
			zap.Int("elements", len(world.Elements)),
			zap.Int("vertices", world.VertexCount()),
			zap.Int("triangles", world.TriangleCount()),
		)
	} else {
		addDemoShapes(world, tex, size)
	}

	if cfg.Scene.Ground {
		ground := shapes.Plane(size*3, size*3, 6)
		ground.Name = "ground"
		ground.Translate(math3d.V3(0, -size/2, 0))
		ground.SetColor(scene.RGB(200, 200, 200))
		checker := render.NewCheckerTexture(64, 64, 8, scene.ColorWhite, scene.RGB(110, 110, 110))
		shapes.ApplyPlanarTexture(ground, checker)
		world.AddRoot(ground)
	}
	return world, nil
}

// addDemoShapes places a cube with a small cube on top and a sphere, all
// resting on y = -size/2.
func addDemoShapes(world *scene.World, tex scene.Texture, size float64) {
	floor := -size / 2
	side := size / 2

	cube := shapes.Cube(side)
	cube.SetColor(scene.RGB(220, 60, 50))
	cube.Translate(math3d.V3(-side, floor+side/2, 0))
	cube.Rotate(math3d.Up(), math.Pi/8)
	if tex != nil {
		shapes.ApplyPlanarTexture(cube, tex)
	}
	idx := world.AddRoot(cube)

	// Child inherits the parent's transform.
	top := shapes.Cube(side / 2)
	top.Name = "cap"
	top.SetColor(scene.ColorYellow)
	top.Translate(math3d.V3(0, side*0.75, 0))
	top.Rotate(math3d.Up(), math.Pi/4)
	_, _ = world.AddChild(idx, top)

	radius := side * 0.6
	ball := shapes.Sphere(radius, 24)
	ball.SetColor(scene.RGB(60, 110, 220))
	ball.Material.SpecularExponent = 32
	ball.Translate(math3d.V3(side, floor+radius, 0))
	world.AddRoot(ball)
}
