// kaosu — 3D bin-packing solver
//
// Packs a list of rectangular boxes into bins using a biased random-key
// genetic algorithm, then writes the chosen reports.
//
// All configuration comes from KAOSU_-prefixed environment variables;
// see internal/config. Example:
//
//	KAOSU_INPUT=boxes.csv KAOSU_BIN_WIDTH=1200 KAOSU_BIN_DEPTH=800 \
//	KAOSU_BIN_HEIGHT=1000 KAOSU_EXPORT_PDF=true kaosu
//
// Build:
//
//	go build -o kaosu ./cmd/kaosu
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gosuri/uitable"

	"github.com/bobotu/kaosu-packer/internal/config"
	"github.com/bobotu/kaosu-packer/internal/engine"
	"github.com/bobotu/kaosu-packer/internal/export"
	"github.com/bobotu/kaosu-packer/internal/importer"
	"github.com/bobotu/kaosu-packer/internal/model"
	"github.com/bobotu/kaosu-packer/internal/project"
)

// Exit codes.
const (
	exitOK         = 0
	exitConfig     = 1
	exitInfeasible = 2
	exitIO         = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).
			Error("configuration rejected", "error", err)
		return exitConfig
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	result, err := importItems(cfg.Input)
	if err != nil {
		logger.Error("import failed", "input", cfg.Input, "error", err)
		return exitIO
	}
	for _, w := range result.Warnings {
		logger.Warn("import warning", "detail", w)
	}
	for _, e := range result.Errors {
		logger.Warn("row skipped", "detail", e)
	}

	problem := model.Problem{
		BinSpec:  cfg.BinSpec(),
		Items:    model.ExpandGroups(result.Groups),
		Mode:     cfg.PackingMode(),
		MaxBins:  cfg.MaxBins,
		Rotation: cfg.RotationMode(),
	}
	params := cfg.SolverParams(len(problem.Items))
	logger.Info("instance loaded",
		"groups", len(result.Groups),
		"boxes", len(problem.Items),
		"bin", fmt.Sprintf("%d×%d×%d", problem.BinSpec.Width, problem.BinSpec.Depth, problem.BinSpec.Height),
		"mode", problem.Mode.String(),
		"population", params.PopulationSize,
		"max_generations", params.MaxGenerations,
	)

	solver, err := engine.New(problem, params)
	if err != nil {
		var cfgErr *engine.ConfigError
		var infErr *engine.InfeasibleItemError
		switch {
		case errors.As(err, &cfgErr):
			logger.Error("solver rejected configuration", "field", cfgErr.Field, "reason", cfgErr.Reason)
			return exitConfig
		case errors.As(err, &infErr):
			logger.Error("instance infeasible", "error", infErr)
			return exitInfeasible
		default:
			logger.Error("solver setup failed", "error", err)
			return exitConfig
		}
	}
	solver.Progress = func(s engine.Snapshot) {
		lvl := slog.LevelDebug
		if s.Improved {
			lvl = slog.LevelInfo
		}
		logger.Log(context.Background(), lvl, "generation",
			"gen", s.Generation,
			"best", s.BestFitness,
			"bins", s.BinsUsed,
			"stagnation", s.Stagnation,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("solving", "seed", solver.Seed(), "parallel", params.Parallel)
	sol, err := solver.Run(ctx)
	if err != nil {
		if sol == nil {
			logger.Error("run failed", "error", err)
			return exitConfig
		}
		// Cancelled mid-run: the best found so far is still usable.
		logger.Warn("run interrupted, reporting best so far", "error", err)
	}

	printSummary(problem, sol)

	if code := writeExports(cfg, problem, sol, logger); code != exitOK {
		return code
	}

	if cfg.Job.Name != "" {
		path, err := project.SaveJob(cfg.Job.Dir, project.Job{
			Name:     cfg.Job.Name,
			Bin:      problem.BinSpec,
			Mode:     problem.Mode,
			MaxBins:  problem.MaxBins,
			Rotation: problem.Rotation,
			Groups:   result.Groups,
			Params:   params,
			Solution: sol,
		})
		if err != nil {
			logger.Error("job save failed", "error", err)
			return exitIO
		}
		logger.Info("job saved", "path", path)
	}
	return exitOK
}

// importItems picks the reader by file extension.
func importItems(path string) (*importer.ImportResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.ImportXLSX(path)
	}
	return importer.ImportCSV(path)
}

// printSummary writes the per-bin result table to stdout.
func printSummary(problem model.Problem, sol *model.Solution) {
	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("BIN", "BOXES", "LOAD", "UTILIZATION")
	util := sol.Utilization()
	for i, bin := range sol.Bins {
		table.AddRow(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", len(bin)),
			fmt.Sprintf("%d / %d", sol.BinLoad(i), sol.BinSpec.Volume()),
			fmt.Sprintf("%.1f%%", util[i]),
		)
	}
	fmt.Println(table)
	fmt.Printf("\nbins used: %d   placed: %d/%d   overall utilization: %.1f%%   seed: %d   generations: %d\n",
		sol.BinsUsed(), sol.PlacedCount(), len(problem.Items), sol.TotalUtilization(), sol.Seed, sol.Generations)
	if len(sol.Unplaced) > 0 {
		fmt.Printf("unplaced boxes: %d (bin budget exhausted)\n", len(sol.Unplaced))
	}
}

// writeExports produces every enabled report under the output directory.
func writeExports(cfg *config.Config, problem model.Problem, sol *model.Solution, logger *slog.Logger) int {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Error("cannot create output directory", "dir", cfg.OutputDir, "error", err)
		return exitIO
	}

	type exportStep struct {
		enabled bool
		name    string
		write   func(string, model.Problem, model.Solution) error
	}
	steps := []exportStep{
		{cfg.Export.PDF, "packing_report.pdf", export.WritePDFReport},
		{cfg.Export.Labels, "box_labels.pdf", export.WriteLabelSheet},
		{cfg.Export.XLSX, "packing_manifest.xlsx", export.WriteXLSXManifest},
		{cfg.Export.DXF, "packing_layout.dxf", export.WriteDXF},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		path := filepath.Join(cfg.OutputDir, step.name)
		if err := step.write(path, problem, *sol); err != nil {
			logger.Error("export failed", "file", path, "error", err)
			return exitIO
		}
		logger.Info("export written", "file", path)
	}
	return exitOK
}
