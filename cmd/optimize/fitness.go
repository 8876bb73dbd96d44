package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/config"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/scene"
	"github.com/Normaly0/galaxy-gen/snapshot"
)

// litThreshold is the luminance above which a pixel counts as covered.
const litThreshold = 0.02

// Targets describe the image the optimizer aims for.
type Targets struct {
	Luminance float64 // mean luminance over the frame
	Coverage  float64 // share of pixels above litThreshold
	// ClipWeight scales the penalty for pixels saturated in any channel.
	ClipWeight float64
}

// Measurement summarizes one rendered frame.
type Measurement struct {
	Luminance float64
	Coverage  float64
	Clipped   float64
}

// seedRun is the cached generation and framebuffer for one seed. Fields do
// not depend on the optimized parameters, so they are generated once.
type seedRun struct {
	field  *galaxy.Field
	scene  *scene.Scene
	canvas *snapshot.Canvas
}

// FitnessEvaluator renders headless snapshots and scores them.
type FitnessEvaluator struct {
	params  *ParamVector
	targets Targets
	mode    galaxy.Mode
	runs    []*seedRun

	mu          sync.Mutex
	lastMeasure Measurement // from most recent Evaluate call
}

// NewFitnessEvaluator generates one field per seed and prepares a canvas
// for each.
func NewFitnessEvaluator(params *ParamVector, targets Targets, seeds []int64, cfg *config.Config, width, height int) *FitnessEvaluator {
	fe := &FitnessEvaluator{
		params:  params,
		targets: targets,
		mode:    cfg.Derived.Mode,
	}
	p := cfg.Derived.Params.Normalized()
	for _, seed := range seeds {
		gen := galaxy.NewGenerator(rand.New(rand.NewSource(seed)))
		sc := scene.New()
		fe.runs = append(fe.runs, &seedRun{
			field:  gen.Generate(p, fe.mode),
			scene:  sc,
			canvas: snapshot.NewCanvas(width, height, sc, newCamera(cfg, width, height)),
		})
	}
	return fe
}

// LastMeasurement returns the averaged measurement from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastMeasurement() Measurement {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeasure
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds are rendered in parallel and their measurements averaged.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	v := fe.params.Clamp(x)
	exposure := fe.params.Exposure(v)
	size := fe.params.Size(v)

	results := make([]Measurement, len(fe.runs))
	var wg sync.WaitGroup
	for i, run := range fe.runs {
		wg.Add(1)
		go func(i int, run *seedRun) {
			defer wg.Done()
			results[i] = run.measure(fe.mode, exposure, size)
		}(i, run)
	}
	wg.Wait()

	var avg Measurement
	for _, m := range results {
		avg.Luminance += m.Luminance
		avg.Coverage += m.Coverage
		avg.Clipped += m.Clipped
	}
	n := float64(len(results))
	avg.Luminance /= n
	avg.Coverage /= n
	avg.Clipped /= n

	fe.mu.Lock()
	fe.lastMeasure = avg
	fe.mu.Unlock()

	return fe.targets.score(avg)
}

// score is the relative squared error against the targets plus the clip
// penalty.
func (t Targets) score(m Measurement) float64 {
	lum := (m.Luminance - t.Luminance) / math.Max(t.Luminance, 1e-6)
	cov := (m.Coverage - t.Coverage) / math.Max(t.Coverage, 1e-6)
	return lum*lum + cov*cov + t.ClipWeight*m.Clipped
}

// measure renders the cached field with the given exposure and size.
func (r *seedRun) measure(mode galaxy.Mode, exposure, size float64) Measurement {
	c := r.canvas
	c.Exposure = exposure

	res, err := snapshot.Factory{Canvas: c}.Build(r.field, app.Material{
		Mode:       mode,
		Size:       float32(size),
		PixelRatio: 1,
		Height:     c.Height,
	})
	if err != nil {
		return Measurement{}
	}
	e := r.scene.Attach("galaxy", res)
	c.Render()
	r.scene.Detach(e)
	res.Unload()

	return measureCanvas(c)
}

// measureCanvas computes luminance statistics of the exposed image without
// a background.
func measureCanvas(c *snapshot.Canvas) Measurement {
	var m Measurement
	total := float64(c.Width * c.Height)
	if total == 0 {
		return m
	}
	exposure := float32(c.Exposure)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			r, g, b := c.At(x, y)
			r, g, b = min(r*exposure, 1), min(g*exposure, 1), min(b*exposure, 1)
			lum := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
			m.Luminance += lum
			if lum > litThreshold {
				m.Coverage++
			}
			if r >= 1 || g >= 1 || b >= 1 {
				m.Clipped++
			}
		}
	}
	m.Luminance /= total
	m.Coverage /= total
	m.Clipped /= total
	return m
}

// newCamera places a settled camera from config.
func newCamera(cfg *config.Config, width, height int) *camera.Camera {
	c := cfg.Camera
	cam := camera.New(
		mgl32.Vec3{float32(c.Position[0]), float32(c.Position[1]), float32(c.Position[2])},
		mgl32.Vec3{float32(c.Target[0]), float32(c.Target[1]), float32(c.Target[2])},
		float32(c.FOV), float32(width), float32(height),
	)
	cam.Near = float32(c.Near)
	cam.Far = float32(c.Far)
	cam.Damping = 0
	return cam
}
