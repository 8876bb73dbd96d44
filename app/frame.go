package app

import (
	"log/slog"
	"time"

	"github.com/Normaly0/galaxy-gen/telemetry"
)

// DefaultTimeStep is the animation time added per tick. It is a fixed step,
// so animation speed follows the frame rate.
const DefaultTimeStep = 0.015

// FrameLoop runs one frame per Tick.
type FrameLoop struct {
	State    *RenderState
	Controls Controls // optional
	Renderer Renderer
	Viewport Viewport // optional
	Sources  []ParamSource

	TimeStep float32

	// Optional telemetry
	Perf       *telemetry.PerfCollector
	Output     *telemetry.OutputManager
	StatsEvery time.Duration
	LogStats   bool

	frame     int64
	lastStats time.Time
}

// NewFrameLoop creates a frame loop with the default time step.
func NewFrameLoop(state *RenderState, controls Controls, renderer Renderer) *FrameLoop {
	return &FrameLoop{
		State:    state,
		Controls: controls,
		Renderer: renderer,
		TimeStep: DefaultTimeStep,
	}
}

// Tick runs one frame: apply pending edits and resizes, install finished
// background generations, advance time when animating, update the camera
// and render once. An error means the galaxy could not be rebuilt and is
// fatal to the loop.
func (f *FrameLoop) Tick() error {
	if f.Perf != nil {
		f.Perf.StartTick()
	}

	f.phase(telemetry.PhaseEvents)
	if f.Viewport != nil && f.Viewport.Resized() {
		w, h, dpr := f.Viewport.Size()
		f.State.Resize(w, h, dpr)
	}
	for _, src := range f.Sources {
		if p, ok := src.Poll(); ok {
			if err := f.State.Apply(p); err != nil {
				return err
			}
		}
	}
	if err := f.State.Poll(); err != nil {
		return err
	}

	f.phase(telemetry.PhaseUpdate)
	if f.State.Params().Animate {
		f.State.AdvanceTime(f.TimeStep)
	}
	if f.Controls != nil {
		f.Controls.Update()
	}

	f.phase(telemetry.PhaseRender)
	f.Renderer.Render()

	f.frame++
	if f.Perf != nil {
		f.Perf.EndTick()
		f.Perf.RecordFrame()
		f.flushStats()
	}
	return nil
}

// Frame returns the number of completed ticks.
func (f *FrameLoop) Frame() int64 {
	return f.frame
}

func (f *FrameLoop) phase(name string) {
	if f.Perf != nil {
		f.Perf.StartPhase(name)
	}
}

func (f *FrameLoop) flushStats() {
	if f.StatsEvery <= 0 {
		return
	}
	now := time.Now()
	if f.lastStats.IsZero() {
		f.lastStats = now
		return
	}
	if now.Sub(f.lastStats) < f.StatsEvery {
		return
	}
	f.lastStats = now

	stats := f.Perf.Stats()
	if f.LogStats {
		stats.LogStats()
	}
	if err := f.Output.WritePerf(stats, f.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
