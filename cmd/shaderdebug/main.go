// Shader debug tool - renders one generated field through the GPU point
// programs into an offscreen texture and, optionally, through the CPU
// rasterizer, so the two can be compared side by side.
//
// Usage: go run ./cmd/shaderdebug -mode deferred -time 5 -out gpu.png -cpu cpu.png
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/renderer"
	"github.com/Normaly0/galaxy-gen/scene"
	"github.com/Normaly0/galaxy-gen/snapshot"
)

func main() {
	modeName := flag.String("mode", "deferred", "Render mode: deferred or baked")
	outPath := flag.String("out", "debug.png", "Output PNG path for the GPU render")
	cpuPath := flag.String("cpu", "", "Also render on the CPU to this path")
	count := flag.Int("count", 50000, "Point count")
	size := flag.Float64("size", 0, "Point size (0 = mode default)")
	t := flag.Float64("time", 0, "Animation time uniform")
	seed := flag.Int64("seed", 1, "RNG seed")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	flag.Parse()

	mode, err := galaxy.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := galaxy.Defaults()
	p.Count = *count
	switch {
	case *size > 0:
		p.Size = *size
	case mode == galaxy.Baked:
		p.Size = galaxy.DefaultBakedSize
	}
	p = p.Normalized()

	field := galaxy.NewGenerator(rand.New(rand.NewSource(*seed))).Generate(p, mode)
	material := app.Material{Mode: mode, Size: float32(p.Size), PixelRatio: 1, Height: *height}
	cam := camera.New(mgl32.Vec3{0, 5, 7}, mgl32.Vec3{}, 75, float32(*width), float32(*height))

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	cloud, err := renderer.NewPointCloud(field, material)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to upload point cloud: %v\n", err)
		os.Exit(1)
	}
	defer cloud.Unload()
	cloud.SetTime(float32(*t))

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Render the cloud to texture
	rl.BeginDrawing()
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	rl.BeginMode3D(renderer.RaylibCamera(cam))
	cloud.Draw()
	rl.EndMode3D()
	rl.EndTextureMode()
	rl.EndDrawing()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if !success {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
	fmt.Printf("GPU render written to: %s (%dx%d, %d points, %s)\n", *outPath, *width, *height, field.Count, mode)

	if *cpuPath == "" {
		return
	}

	sc := scene.New()
	canvas := snapshot.NewCanvas(*width, *height, sc, cam)
	res, err := snapshot.Factory{Canvas: canvas}.Build(field, material)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build CPU cloud: %v\n", err)
		os.Exit(1)
	}
	res.SetTime(float32(*t))
	sc.Attach("galaxy", res)
	canvas.Render()

	if err := canvas.SavePNG(*cpuPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write CPU render: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("CPU render written to: %s (%d lit pixels)\n", *cpuPath, canvas.Lit())
}
