// Top-down density preview - regenerates a field on every committed edit and
// plots where its points land, seen from above.
//
// Usage: go run ./cmd/topview -mode baked
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Normaly0/galaxy-gen/editor"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/kernel"
	"github.com/Normaly0/galaxy-gen/ui"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 640
	gridSize     = 512
	// margin is how far past the radius the plot extends.
	margin = 1.2
)

func main() {
	modeName := flag.String("mode", "deferred", "Generation mode: deferred or baked")
	count := flag.Int("count", 100000, "Initial point count")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	mode, err := galaxy.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	rl.InitWindow(windowWidth, windowHeight, "Galaxy Top View")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := galaxy.Defaults()
	params.Count = *count
	if mode == galaxy.Baked {
		params.Size = galaxy.DefaultBakedSize
	}

	ed := editor.New(params, mode)
	panel := ui.NewParamsPanel(ed, ui.AnchorTopRight, 320)

	gen := galaxy.NewGenerator(rand.New(rand.NewSource(*seed)))
	field := gen.Generate(ed.Committed(), mode)
	stats := field.Stats()

	grid := make([]float32, gridSize*gridSize*3)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var t float32
	exposure := float32(4)
	needsPlot := true

	for !rl.WindowShouldClose() {
		if p, ok := panel.Poll(); ok {
			start := time.Now()
			field = gen.Generate(p, mode)
			stats = field.Stats()
			slog.Info("regenerated", "count", field.Count, "ms", time.Since(start).Milliseconds())
			needsPlot = true
		}
		if ed.Animate() {
			t += 0.015
			needsPlot = true
		}

		if needsPlot {
			plot(grid, field, ed.Committed().Radius, t)
			updateTexture(texture, grid, exposure)
			needsPlot = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 20)
		rl.DrawText(fmt.Sprintf("Points: %d  Mean r: %.2f  Std r: %.2f  P90 r: %.2f  Jitter: %.3f",
			stats.Count, stats.MeanRadius, stats.StdRadius, stats.P90Radius, stats.MeanJitter), 15, statsY, 16, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Time: %.2f  Branches: %v", t, stats.BranchCounts), 15, statsY+20, 16, rl.Gray)

		// Exposure and time controls below the panel
		bx := float32(previewSize + 30)
		by := float32(windowHeight - 110)
		rl.DrawText("Exposure", int32(bx), int32(by), 14, rl.Gray)
		newExposure := gui.SliderBar(rl.Rectangle{X: bx, Y: by + 18, Width: 220, Height: 16}, "", "", exposure, 0.5, 20)
		if newExposure != exposure {
			exposure = newExposure
			updateTexture(texture, grid, exposure)
		}
		if gui.Button(rl.Rectangle{X: bx, Y: by + 45, Width: 120, Height: 30}, "Reset Time") {
			t = 0
			needsPlot = true
		}

		panel.Draw()

		rl.DrawText("Press C to copy YAML to clipboard", 15, windowHeight-20, 12, rl.DarkGray)
		if rl.IsKeyPressed(rl.KeyC) {
			if out, err := yaml.Marshal(map[string]galaxy.Parameters{"galaxy": ed.Committed()}); err == nil {
				rl.SetClipboardText(string(out))
			}
		}

		rl.EndDrawing()
	}
}

// plot bins the XZ position of every point into grid, summing colors.
// Deferred points are displaced to time t first.
func plot(grid []float32, f *galaxy.Field, radius float64, t float32) {
	clear(grid)
	extent := float32(radius * margin)
	if extent <= 0 {
		return
	}
	scale := gridSize / (2 * extent)

	for i := 0; i < f.Count; i++ {
		pos := f.Position(i)
		world := mgl32.Vec3{pos[0], pos[1], pos[2]}
		if f.Mode == galaxy.Deferred {
			off := f.RandomOffset(i)
			world = kernel.Displace(kernel.Vertex{
				Position:     world,
				Scale:        f.Scales[i],
				RandomOffset: mgl32.Vec3{off[0], off[1], off[2]},
			}, t)
		}

		px := int((world.X() + extent) * scale)
		py := int((world.Z() + extent) * scale)
		if px < 0 || px >= gridSize || py < 0 || py >= gridSize {
			continue
		}
		c := f.Color(i)
		idx := (py*gridSize + px) * 3
		grid[idx] += c.R
		grid[idx+1] += c.G
		grid[idx+2] += c.B
	}
}

// updateTexture tone maps the summed colors and uploads them.
func updateTexture(texture rl.Texture2D, grid []float32, exposure float32) {
	pixels := make([]color.RGBA, gridSize*gridSize)
	for i := range pixels {
		pixels[i] = color.RGBA{
			R: toneMap(grid[i*3], exposure),
			G: toneMap(grid[i*3+1], exposure),
			B: toneMap(grid[i*3+2], exposure),
			A: 255,
		}
	}
	rl.UpdateTexture(texture, pixels)
}

func toneMap(v, exposure float32) uint8 {
	mapped := 1 - math.Exp(-float64(v*exposure)/16)
	return uint8(mapped*255 + 0.5)
}
