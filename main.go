package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Normaly0/galaxy-gen/app"
	"github.com/Normaly0/galaxy-gen/camera"
	"github.com/Normaly0/galaxy-gen/config"
	"github.com/Normaly0/galaxy-gen/editor"
	"github.com/Normaly0/galaxy-gen/renderer"
	"github.com/Normaly0/galaxy-gen/scene"
	"github.com/Normaly0/galaxy-gen/snapshot"
	"github.com/Normaly0/galaxy-gen/telemetry"
	"github.com/Normaly0/galaxy-gen/ui"
)

// options collects the command line.
type options struct {
	headless  bool
	out       string
	logStats  bool
	maxFrames int64
	width     int
	height    int
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml or config.toml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render a PNG snapshot without a window")
	out := flag.String("out", "galaxy.png", "Snapshot path for -headless")
	mode := flag.String("mode", "", "Render mode: deferred or baked (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited, headless renders 1)")
	watch := flag.Bool("watch", false, "Rebuild when the -config file changes")
	width := flag.Int("width", 0, "Window or snapshot width (0 = use config)")
	height := flag.Int("height", 0, "Window or snapshot height (0 = use config)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *mode != "" {
		if err := cfg.SetMode(*mode); err != nil {
			slog.Error("invalid mode", "error", err)
			os.Exit(1)
		}
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	var sources []app.ParamSource
	if *watch && *configPath != "" {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			slog.Error("failed to watch config", "error", err)
			os.Exit(1)
		}
		defer w.Close()
		sources = append(sources, app.NewConfigSource(w, cfg.Derived.Mode))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		headless:  *headless,
		out:       *out,
		logStats:  *logStats,
		maxFrames: *maxFrames,
		width:     *width,
		height:    *height,
	}

	slog.Info("starting",
		"seed", rngSeed,
		"mode", cfg.Derived.Mode.String(),
		"count", cfg.Derived.Params.Count,
		"headless", opts.headless,
	)

	if opts.headless {
		err = runHeadless(ctx, cfg, opts, rng, output, sources)
	} else {
		err = runWindow(ctx, cfg, opts, rng, output, sources)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("stopped", "error", err)
		os.Exit(1)
	}
}

// runWindow opens the viewer and runs until the window closes.
func runWindow(ctx context.Context, cfg *config.Config, opts options, rng *rand.Rand, output *telemetry.OutputManager, sources []app.ParamSource) error {
	renderer.SetLogger(slog.Default())
	renderer.ForwardTraceLog(rl.LogWarning)

	width, height := cfg.Screen.Width, cfg.Screen.Height
	if opts.width > 0 {
		width = opts.width
	}
	if opts.height > 0 {
		height = opts.height
	}
	if err := renderer.OpenWindow(renderer.WindowOptions{
		Width:     width,
		Height:    height,
		Title:     cfg.Screen.Title,
		TargetFPS: cfg.Screen.TargetFPS,
	}); err != nil {
		return err
	}
	defer renderer.CloseWindow()

	viewport := renderer.NewWindowViewport()
	w, h, dpr := viewport.Size()

	cam := newCamera(cfg, float32(w), float32(h))
	sc := scene.New()
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	// Shutdown runs before CloseWindow so GPU resources go while the context lives
	state := app.NewRenderState(renderer.Factory{}, sc, cam, rng, app.OptionsFromConfig(cfg))
	defer state.Shutdown()
	state.Perf = perf
	state.Output = output
	state.Resize(w, h, dpr)

	if err := state.Rebuild(cfg.Derived.Params); err != nil {
		return err
	}

	panel := ui.NewParamsPanel(editor.New(state.Requested(), cfg.Derived.Mode), ui.AnchorTopRight, 280)
	panel.Current = state.Requested

	hud := ui.NewHUD(func() ui.HUDData {
		live := state.Params()
		data := ui.HUDData{
			Title:      cfg.Screen.Title,
			Mode:       state.Mode().String(),
			Count:      live.Count,
			FPS:        rl.GetFPS(),
			Time:       state.Time(),
			Animate:    live.Animate,
			Generating: state.Pending(),
			Inside:     live.InsideColor,
			Outside:    live.OutsideColor,
		}
		if rec, ok := state.History().Last(); ok {
			data.LastGenMS, data.LastUpMS = rec.GenerateMS, rec.UploadMS
		}
		return data
	})

	controls := renderer.NewOrbitControls(cam, float32(cfg.Camera.RotateSpeed), float32(cfg.Camera.ZoomSpeed))
	controls.Blocked = panel.Hovered

	screen := renderer.NewScreen(sc, cam, renderer.NewBackground(cfg.Derived.Background), hud, panel)

	frames := app.NewFrameLoop(state, controls, screen)
	frames.Viewport = viewport
	frames.Sources = append(sources, panel)
	frames.TimeStep = cfg.Derived.TimeStep32
	frames.Perf = perf
	frames.Output = output
	frames.StatsEvery = time.Duration(cfg.Telemetry.StatsWindow * float64(time.Second))
	frames.LogStats = opts.logStats

	loop := app.NewLoop()
	err := loop.Run(ctx, app.FrameLimit(renderer.WindowRefresher{}, opts.maxFrames), frames.Tick)
	slog.Info("window closed", "frames", loop.Frames())
	return err
}

// runHeadless renders the galaxy on the CPU and writes a PNG.
func runHeadless(ctx context.Context, cfg *config.Config, opts options, rng *rand.Rand, output *telemetry.OutputManager, sources []app.ParamSource) error {
	width, height := cfg.Snapshot.Width, cfg.Snapshot.Height
	if opts.width > 0 {
		width = opts.width
	}
	if opts.height > 0 {
		height = opts.height
	}
	frameCount := opts.maxFrames
	if frameCount <= 0 {
		frameCount = 1
	}

	cam := newCamera(cfg, float32(width), float32(height))
	cam.Damping = 0
	sc := scene.New()

	canvas := snapshot.NewCanvas(width, height, sc, cam)
	canvas.Background = cfg.Derived.Background
	canvas.Exposure = cfg.Snapshot.Exposure

	stateOpts := app.OptionsFromConfig(cfg)
	stateOpts.AsyncThreshold = 0 // every frame must see its field

	state := app.NewRenderState(snapshot.Factory{Canvas: canvas}, sc, cam, rng, stateOpts)
	defer state.Shutdown()
	state.Output = output
	state.Resize(width, height, 1)

	if err := state.Rebuild(cfg.Derived.Params); err != nil {
		return err
	}

	frames := app.NewFrameLoop(state, cam, canvas)
	frames.Sources = sources
	frames.TimeStep = cfg.Derived.TimeStep32

	loop := app.NewLoop()
	if err := loop.Run(ctx, app.FrameLimit(app.Immediate{}, frameCount), frames.Tick); err != nil {
		return err
	}

	if state.Live() == nil {
		return fmt.Errorf("no galaxy installed after %d frames", loop.Frames())
	}
	if err := canvas.SavePNG(opts.out); err != nil {
		return err
	}
	slog.Info("snapshot written",
		"path", opts.out,
		"width", width,
		"height", height,
		"frames", loop.Frames(),
		"time", state.Time(),
		"lit_pixels", canvas.Lit(),
	)
	return nil
}

// newCamera places the orbit camera from config.
func newCamera(cfg *config.Config, width, height float32) *camera.Camera {
	c := cfg.Camera
	cam := camera.New(vec3(c.Position), vec3(c.Target), float32(c.FOV), width, height)
	cam.Near = float32(c.Near)
	cam.Far = float32(c.Far)
	cam.Damping = float32(c.Damping)
	cam.MinDistance = float32(c.MinDistance)
	cam.MaxDistance = float32(c.MaxDistance)
	return cam
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
