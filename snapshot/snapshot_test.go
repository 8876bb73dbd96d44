package snapshot

import (
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/scene"
)

const testSize = 64

func newTestCanvas() *Canvas {
	cam := camera.New(mgl32.Vec3{0, 5, 7}, mgl32.Vec3{}, 75, testSize, testSize)
	return NewCanvas(testSize, testSize, scene.New(), cam)
}

// originField is a single white point at the origin.
func originField(mode galaxy.Mode) *galaxy.Field {
	return &galaxy.Field{
		Count:         1,
		Branches:      1,
		Mode:          mode,
		Positions:     []float32{0, 0, 0},
		Colors:        []float32{1, 1, 1},
		Scales:        []float32{1},
		RandomOffsets: []float32{0, 0, 0},
		Radii:         []float32{0},
	}
}

func buildOn(t *testing.T, c *Canvas, f *galaxy.Field, m app.Material) app.Resource {
	t.Helper()
	res, err := Factory{Canvas: c}.Build(f, m)
	if err != nil {
		t.Fatal(err)
	}
	c.Scene.Attach("galaxy", res)
	return res
}

func TestDeferredPointGlowsAtCenter(t *testing.T) {
	c := newTestCanvas()
	buildOn(t, c, originField(galaxy.Deferred), app.Material{Mode: galaxy.Deferred, Size: 200, PixelRatio: 1, Height: testSize})
	c.Render()

	r, g, b := c.At(testSize/2, testSize/2)
	if r < 0.5 || g < 0.5 || b < 0.5 {
		t.Errorf("center pixel = (%f, %f, %f), expected bright", r, g, b)
	}
	if r, _, _ := c.At(0, 0); r != 0 {
		t.Errorf("corner pixel lit: %f", r)
	}

	// The glow falls off toward the sprite edge
	near, _, _ := c.At(testSize/2+2, testSize/2)
	far, _, _ := c.At(testSize/2+8, testSize/2)
	if !(near > far) {
		t.Errorf("expected falloff, near=%f far=%f", near, far)
	}
}

func TestBakedPointIsFlatSquare(t *testing.T) {
	c := newTestCanvas()
	// World size such that the sprite spans several pixels
	buildOn(t, c, originField(galaxy.Baked), app.Material{Mode: galaxy.Baked, Size: 3, PixelRatio: 1, Height: testSize})
	c.Render()

	center, _, _ := c.At(testSize/2, testSize/2)
	side, _, _ := c.At(testSize/2+2, testSize/2)
	if center != 1 || side != 1 {
		t.Errorf("expected flat intensity 1, got center=%f side=%f", center, side)
	}
}

func TestRenderClearsBetweenFrames(t *testing.T) {
	c := newTestCanvas()
	buildOn(t, c, originField(galaxy.Deferred), app.Material{Mode: galaxy.Deferred, Size: 100, PixelRatio: 1, Height: testSize})

	c.Render()
	first, _, _ := c.At(testSize/2, testSize/2)
	c.Render()
	second, _, _ := c.At(testSize/2, testSize/2)
	if first != second {
		t.Errorf("frames accumulate: %f then %f", first, second)
	}
}

func TestPointBehindCameraIsSkipped(t *testing.T) {
	c := newTestCanvas()
	f := originField(galaxy.Deferred)
	f.Positions = []float32{0, 10, 20}
	buildOn(t, c, f, app.Material{Mode: galaxy.Deferred, Size: 200, PixelRatio: 1, Height: testSize})

	c.Render()
	if n := c.Lit(); n != 0 {
		t.Errorf("expected nothing drawn, %d pixels lit", n)
	}
}

func TestUnloadedCloudDrawsNothing(t *testing.T) {
	c := newTestCanvas()
	res := buildOn(t, c, originField(galaxy.Deferred), app.Material{Mode: galaxy.Deferred, Size: 200, PixelRatio: 1, Height: testSize})

	res.Unload()
	c.Render()
	if n := c.Lit(); n != 0 {
		t.Errorf("unloaded cloud drew %d pixels", n)
	}
}

func TestFactoryRejectsInconsistentField(t *testing.T) {
	c := newTestCanvas()
	f := originField(galaxy.Deferred)
	f.Scales = nil
	if _, err := (Factory{Canvas: c}).Build(f, app.Material{Mode: galaxy.Deferred}); err == nil {
		t.Error("expected an error for mismatched arrays")
	}
	if _, err := (Factory{}).Build(originField(galaxy.Deferred), app.Material{}); err == nil {
		t.Error("expected an error without a canvas")
	}
}

func TestSavePNG(t *testing.T) {
	c := newTestCanvas()
	buildOn(t, c, originField(galaxy.Deferred), app.Material{Mode: galaxy.Deferred, Size: 200, PixelRatio: 1, Height: testSize})
	c.Render()

	path := filepath.Join(t.TempDir(), "galaxy.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != testSize || b.Dy() != testSize {
		t.Errorf("image size %dx%d, want %dx%d", b.Dx(), b.Dy(), testSize, testSize)
	}
}

// The full pipeline renders a generated galaxy through the frame loop.
func TestFrameLoopRendersGalaxy(t *testing.T) {
	cam := camera.New(mgl32.Vec3{0, 5, 7}, mgl32.Vec3{}, 75, 160, 120)
	sc := scene.New()
	c := NewCanvas(160, 120, sc, cam)

	state := app.NewRenderState(Factory{Canvas: c}, sc, cam, rand.New(rand.NewSource(1)), app.Options{Mode: galaxy.Deferred})
	defer state.Shutdown()

	p := galaxy.Defaults()
	p.Count = 5000
	p.Animate = true
	if err := state.Rebuild(p); err != nil {
		t.Fatal(err)
	}

	loop := app.NewFrameLoop(state, nil, c)
	for i := 0; i < 3; i++ {
		if err := loop.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if c.Lit() < 100 {
		t.Errorf("expected a visible galaxy, only %d pixels lit", c.Lit())
	}
	if state.Time() <= 0 {
		t.Error("expected time to advance while animating")
	}
}
