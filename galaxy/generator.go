package galaxy

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// DefaultParallelThreshold is the point count above which generation is
// split across worker goroutines. Below it the goroutine overhead dominates.
const DefaultParallelThreshold = 200_000

// cancelCheckMask controls how often a generation loop polls its context.
const cancelCheckMask = 4095

// Generator produces point fields. It is not safe for concurrent use: the
// random source advances on every call, so two calls with identical
// parameters give different (but statistically alike) fields.
type Generator struct {
	rng *rand.Rand

	// ParallelThreshold is the minimum count for chunked generation.
	// Zero or negative disables it.
	ParallelThreshold int
	// Workers caps the number of chunks. Zero means GOMAXPROCS.
	Workers int
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		rng:               rng,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// Generate runs a full generation pass. Count <= 0 yields an empty field;
// every other field of p is normalized first.
func (g *Generator) Generate(p Parameters, mode Mode) *Field {
	f, _ := g.GenerateContext(context.Background(), p, mode)
	return f
}

// GenerateContext is Generate with cancellation. On cancellation it returns
// nil and ctx.Err().
func (g *Generator) GenerateContext(ctx context.Context, p Parameters, mode Mode) (*Field, error) {
	if p.Count <= 0 {
		n := p.Normalized()
		return newField(0, n.Branches, mode), nil
	}
	p = p.Normalized()
	grad := p.Gradient()
	f := newField(p.Count, p.Branches, mode)

	workers := g.workerCount(p.Count)
	if workers <= 1 {
		if err := fillRange(ctx, f, p, grad, g.rng, 0, p.Count); err != nil {
			return nil, err
		}
		return f, nil
	}

	// Each chunk gets its own source seeded from ours so the pass stays a
	// function of the generator state, whatever the scheduling.
	chunk := (p.Count + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, p.Count)
		if start >= end {
			break
		}
		rng := rand.New(rand.NewSource(g.rng.Int63()))
		wg.Add(1)
		go func(w, start, end int, rng *rand.Rand) {
			defer wg.Done()
			errs[w] = fillRange(ctx, f, p, grad, rng, start, end)
		}(w, start, end, rng)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (g *Generator) workerCount(count int) int {
	if g.ParallelThreshold <= 0 || count < g.ParallelThreshold {
		return 1
	}
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return workers
}

// fillRange writes points [start, end) into f. Chunks write disjoint index
// ranges, so no locking is needed.
func fillRange(ctx context.Context, f *Field, p Parameters, grad Gradient, rng *rand.Rand, start, end int) error {
	branches := float64(p.Branches)
	baked := f.Mode == Baked

	for i := start; i < end; i++ {
		if (i-start)&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		// Uniform in radius, not in area: denser-looking outer arms.
		r := rng.Float64() * p.Radius
		branchAngle := float64(i%p.Branches) / branches * 2 * math.Pi
		spinAngle := p.Spin * r

		jx := jitter(rng, p, r)
		jy := jitter(rng, p, r)
		jz := jitter(rng, p, r)

		angle := branchAngle + spinAngle
		x := math.Cos(angle) * r
		z := math.Sin(angle) * r

		i3 := i * 3
		if baked {
			f.Positions[i3] = float32(x + jx)
			f.Positions[i3+1] = float32(jy)
			f.Positions[i3+2] = float32(z + jz)
		} else {
			f.Positions[i3] = float32(x)
			f.Positions[i3+1] = 0
			f.Positions[i3+2] = float32(z)
		}

		f.Scales[i] = rng.Float32()

		f.RandomOffsets[i3] = float32(jx)
		f.RandomOffsets[i3+1] = float32(jy)
		f.RandomOffsets[i3+2] = float32(jz)

		f.Radii[i] = float32(r)

		c := grad.Interpolate(r / p.Radius)
		f.Colors[i3] = c.R
		f.Colors[i3+1] = c.G
		f.Colors[i3+2] = c.B
	}
	return nil
}

// jitter draws one axis of displacement. The exponent pulls most samples
// toward zero while leaving rare large excursions.
func jitter(rng *rand.Rand, p Parameters, r float64) float64 {
	sign := 1.0
	mag := math.Pow(rng.Float64(), p.RandomnessPower)
	if rng.Float64() >= 0.5 {
		sign = -1
	}
	return mag * sign * p.Randomness * r
}
