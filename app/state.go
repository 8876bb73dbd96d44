package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/config"
	"github.com/Normaly0/galaxy-gen/galaxy"
	"github.com/Normaly0/galaxy-gen/scene"
	"github.com/Normaly0/galaxy-gen/telemetry"
)

// nodeName is the scene name of the galaxy drawable.
const nodeName = "galaxy"

// Options configure a RenderState.
type Options struct {
	Mode galaxy.Mode
	// AsyncThreshold is the count above which RequestRebuild generates on a
	// goroutine. Zero or negative keeps every rebuild synchronous.
	AsyncThreshold    int
	ParallelThreshold int
	Workers           int
	MaxPixelRatio     float64
	FieldStats        bool
	HistorySize       int
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:              cfg.Derived.Mode,
		AsyncThreshold:    cfg.Render.AsyncThreshold,
		ParallelThreshold: cfg.Render.ParallelThreshold,
		Workers:           cfg.Render.Workers,
		MaxPixelRatio:     cfg.Screen.MaxPixelRatio,
		FieldStats:        cfg.Telemetry.FieldStats,
		HistorySize:       32,
	}
}

// pendingBuild is an in-flight background generation.
type pendingBuild struct {
	seq    uint64
	cancel context.CancelFunc
}

// asyncResult is what a background generation hands back.
type asyncResult struct {
	seq     uint64
	params  galaxy.Parameters
	field   *galaxy.Field
	elapsed time.Duration
	record  telemetry.GenerationRecord
	err     error
}

// RenderState owns the live point cloud. A galaxy is either absent or live;
// every transition goes through install, which swaps the old resource for
// the new one in a single step on the render thread.
//
// All methods except the background generation goroutines run on the
// render thread.
type RenderState struct {
	opts    Options
	factory ResourceFactory
	scene   *scene.Scene
	camera  *camera.Camera
	rng     *rand.Rand

	resource Resource
	entity   ecs.Entity

	live      galaxy.Parameters // parameters of the installed field
	requested galaxy.Parameters // latest parameters asked for
	time      float32

	width, height int
	pixelRatio    float64

	seq     uint64
	pending *pendingBuild
	results chan asyncResult
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool

	history *telemetry.GenerationLog

	// Optional sinks
	Perf   *telemetry.PerfCollector
	Output *telemetry.OutputManager
}

// NewRenderState creates an absent galaxy; call Rebuild to make it live.
func NewRenderState(factory ResourceFactory, sc *scene.Scene, cam *camera.Camera, rng *rand.Rand, opts Options) *RenderState {
	if opts.MaxPixelRatio <= 0 {
		opts.MaxPixelRatio = 2
	}
	s := &RenderState{
		opts:       opts,
		factory:    factory,
		scene:      sc,
		camera:     cam,
		rng:        rng,
		pixelRatio: 1,
		results:    make(chan asyncResult, 8),
		done:       make(chan struct{}),
		history:    telemetry.NewGenerationLog(opts.HistorySize),
	}
	if cam != nil {
		s.width, s.height = int(cam.ViewportW), int(cam.ViewportH)
	}
	return s
}

// Rebuild generates and installs a new field synchronously, superseding any
// background generation in flight.
func (s *RenderState) Rebuild(p galaxy.Parameters) error {
	if s.closed {
		return fmt.Errorf("render state is shut down")
	}
	p = s.prepare(p)
	s.requested = p
	return s.rebuild(p)
}

func (s *RenderState) rebuild(p galaxy.Parameters) error {
	s.cancelPending()
	s.seq++
	rec := telemetry.NewGenerationRecord(uuid.NewString(), s.seq, s.opts.Mode, p)

	s.phase(telemetry.PhaseGenerate)
	start := time.Now()
	field, err := s.newGenerator().GenerateContext(context.Background(), p, s.opts.Mode)
	if err != nil {
		return fmt.Errorf("generating field: %w", err)
	}
	return s.install(field, p, rec, time.Since(start))
}

// RequestRebuild is Rebuild for interactive edits: counts above the async
// threshold generate on a goroutine and are installed by a later Poll. A
// newer request cancels an older one still in flight.
func (s *RenderState) RequestRebuild(p galaxy.Parameters) error {
	if s.closed {
		return fmt.Errorf("render state is shut down")
	}
	p = s.prepare(p)
	s.requested = p
	if s.opts.AsyncThreshold <= 0 || p.Count <= s.opts.AsyncThreshold {
		return s.rebuild(p)
	}

	s.cancelPending()
	s.seq++
	ctx, cancel := context.WithCancel(context.Background())
	s.pending = &pendingBuild{seq: s.seq, cancel: cancel}

	rec := telemetry.NewGenerationRecord(uuid.NewString(), s.seq, s.opts.Mode, p)
	rec.Async = true
	gen := s.newGenerator()
	seq, mode := s.seq, s.opts.Mode

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		field, err := gen.GenerateContext(ctx, p, mode)
		res := asyncResult{
			seq:     seq,
			params:  p,
			field:   field,
			elapsed: time.Since(start),
			record:  rec,
			err:     err,
		}
		select {
		case s.results <- res:
		case <-s.done:
		}
	}()

	slog.Debug("background generation started", "seq", seq, "count", p.Count)
	return nil
}

// Apply routes an edited parameter set. Edits that change the field request
// a rebuild; an animate toggle only updates the live parameters.
func (s *RenderState) Apply(p galaxy.Parameters) error {
	p = s.prepare(p)
	if p.NeedsRebuild(s.requested) || (s.resource == nil && s.pending == nil) {
		return s.RequestRebuild(p)
	}
	s.requested.Animate = p.Animate
	s.live.Animate = p.Animate
	return nil
}

// Poll installs a finished background generation, if any. Results that were
// superseded or cancelled are discarded.
func (s *RenderState) Poll() error {
	for {
		select {
		case res := <-s.results:
			current := s.pending != nil && res.seq == s.pending.seq
			if current && res.err != nil {
				s.cancelPending()
			}
			if !current || res.err != nil {
				res.record.Discarded = true
				res.record.SetTimings(res.elapsed, 0)
				s.record(res.record)
				continue
			}
			s.pending.cancel()
			s.pending = nil
			if err := s.install(res.field, res.params, res.record, res.elapsed); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Pending reports whether a background generation is in flight.
func (s *RenderState) Pending() bool {
	return s.pending != nil
}

// install uploads field and swaps it in for the live resource.
func (s *RenderState) install(field *galaxy.Field, p galaxy.Parameters, rec telemetry.GenerationRecord, generated time.Duration) error {
	s.phase(telemetry.PhaseUpload)
	start := time.Now()

	res, err := s.factory.Build(field, s.material(p))
	if err != nil {
		return fmt.Errorf("building point cloud: %w", err)
	}
	res.SetTime(s.time)

	// Detach and dispose the old cloud before attaching the new one; both
	// happen here, so a frame never sees two clouds or a disposed one.
	if s.resource != nil {
		if old, ok := s.scene.Detach(s.entity); ok {
			old.Unload()
		}
	}
	s.resource = res
	s.entity = s.scene.Attach(nodeName, res)
	// Animate may have been toggled while the field was generating.
	p.Animate = s.requested.Animate
	s.live = p

	rec.SetTimings(generated, time.Since(start))
	rec.Bytes = field.Bytes()
	if s.opts.FieldStats {
		rec.SetStats(field.Stats())
	}
	s.record(rec)
	return nil
}

// Resize updates the viewport and rescales the live resource by the clamped
// pixel ratio.
func (s *RenderState) Resize(width, height int, dpr float64) {
	s.width, s.height = width, height
	if !(dpr > 0) {
		dpr = 1
	}
	s.pixelRatio = min(dpr, s.opts.MaxPixelRatio)
	if s.camera != nil {
		s.camera.Resize(float32(width), float32(height))
	}
	if s.resource != nil {
		s.resource.Resize(float32(s.pixelRatio), height)
	}
}

// AdvanceTime moves the animation time forward and pushes it to the live
// resource.
func (s *RenderState) AdvanceTime(dt float32) {
	s.time += dt
	if s.resource != nil {
		s.resource.SetTime(s.time)
	}
}

// Shutdown cancels background work and disposes the live resource.
func (s *RenderState) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancelPending()
	close(s.done)
	s.wg.Wait()

	if s.resource != nil {
		if old, ok := s.scene.Detach(s.entity); ok {
			old.Unload()
		}
		s.resource = nil
	}
}

// Live returns the installed resource, or nil while absent.
func (s *RenderState) Live() Resource {
	if s.resource == nil {
		return nil
	}
	n := s.scene.Node(s.entity)
	if n == nil {
		return nil
	}
	res, _ := n.Drawable.(Resource)
	return res
}

// Params returns the parameters of the installed field.
func (s *RenderState) Params() galaxy.Parameters { return s.live }

// Requested returns the latest requested parameters.
func (s *RenderState) Requested() galaxy.Parameters { return s.requested }

// Mode returns the render mode.
func (s *RenderState) Mode() galaxy.Mode { return s.opts.Mode }

// Time returns the animation time.
func (s *RenderState) Time() float32 { return s.time }

// PixelRatio returns the clamped pixel ratio.
func (s *RenderState) PixelRatio() float64 { return s.pixelRatio }

// History returns recent generation records.
func (s *RenderState) History() *telemetry.GenerationLog { return s.history }

func (s *RenderState) material(p galaxy.Parameters) Material {
	return Material{
		Mode:       s.opts.Mode,
		Size:       float32(p.Size),
		PixelRatio: float32(s.pixelRatio),
		Height:     s.height,
	}
}

// prepare applies the clamp policy and the mode's constraints.
func (s *RenderState) prepare(p galaxy.Parameters) galaxy.Parameters {
	n := p.Normalized()
	if n != p {
		slog.Warn("parameters clamped", "count", n.Count, "branches", n.Branches, "radius", n.Radius,
			"randomness", n.Randomness, "randomness_power", n.RandomnessPower)
	}
	if s.opts.Mode == galaxy.Baked {
		n.Animate = false
	}
	return n
}

func (s *RenderState) newGenerator() *galaxy.Generator {
	g := galaxy.NewGenerator(rand.New(rand.NewSource(s.rng.Int63())))
	g.ParallelThreshold = s.opts.ParallelThreshold
	g.Workers = s.opts.Workers
	return g
}

func (s *RenderState) cancelPending() {
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
}

func (s *RenderState) phase(name string) {
	if s.Perf != nil {
		s.Perf.StartPhase(name)
	}
}

func (s *RenderState) record(rec telemetry.GenerationRecord) {
	s.history.Add(rec)
	if rec.Discarded {
		slog.Debug("generation discarded", "generation", rec)
	} else {
		slog.Info("galaxy rebuilt", "generation", rec)
	}
	if err := s.Output.WriteGeneration(rec); err != nil {
		slog.Error("failed to write generation record", "error", err)
	}
}
