// Package main calibrates snapshot exposure and point size with CMA-ES so
// headless renders reach a target brightness and coverage.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/Normaly0/galaxy-gen/config"
)

// EvalRow is one line of optimize_log.csv.
type EvalRow struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	Exposure  float64 `csv:"exposure"`
	Size      float64 `csv:"size"`
	Luminance float64 `csv:"luminance"`
	Coverage  float64 `csv:"coverage"`
	Clipped   float64 `csv:"clipped"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	mode := flag.String("mode", "", "Render mode to calibrate (empty = use config)")
	count := flag.Int("count", 100000, "Point count per render (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	scale := flag.Float64("scale", 0.5, "Render at this share of the snapshot size")
	luminance := flag.Float64("luminance", 0.08, "Target mean luminance")
	coverage := flag.Float64("coverage", 0.25, "Target share of lit pixels")
	clipWeight := flag.Float64("clip-weight", 4, "Penalty weight for saturated pixels")
	maxEvals := flag.Int("max-evals", 120, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *mode != "" {
		if err := baseCfg.SetMode(*mode); err != nil {
			log.Fatalf("invalid mode: %v", err)
		}
	}
	if *count > 0 {
		baseCfg.Derived.Params.Count = *count
	}

	share := *scale
	width := max(int(float64(baseCfg.Snapshot.Width)*share), 16)
	height := max(int(float64(baseCfg.Snapshot.Height)*share), 16)

	params := NewParamVector(baseCfg)

	// Generate seeds for evaluation
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	targets := Targets{Luminance: *luminance, Coverage: *coverage, ClipWeight: *clipWeight}
	evaluator := NewFitnessEvaluator(params, targets, evalSeeds, baseCfg, width, height)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation, seeds run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*dim
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.2,
		Population:   popSize,
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		m := evaluator.LastMeasurement()
		row := []EvalRow{{
			Eval:      evalCount,
			Fitness:   fitness,
			Exposure:  params.Exposure(clamped),
			Size:      params.Size(clamped),
			Luminance: m.Luminance,
			Coverage:  m.Coverage,
			Clipped:   m.Clipped,
		}}
		var werr error
		if evalCount == 1 {
			werr = gocsv.Marshal(row, logFile)
		} else {
			werr = gocsv.MarshalWithoutHeaders(row, logFile)
		}
		if werr != nil {
			log.Printf("failed to log evaluation %d: %v", evalCount, werr)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: exposure=%.3f size=%.4f lum=%.3f cov=%.3f clip=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, params.Exposure(clamped), params.Size(clamped),
			m.Luminance, m.Coverage, m.Clipped, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES calibration of %s mode, population=%d, max_evals=%d\n",
		baseCfg.Derived.Mode, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, %d points at %dx%d\n",
		*seeds, baseCfg.Derived.Params.Count, width, height)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	// Save best config
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	if err := bestCfg.SetMode(baseCfg.Derived.Mode.String()); err != nil {
		log.Fatalf("invalid mode: %v", err)
	}
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		log.Fatalf("failed to apply parameters: %v", err)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
