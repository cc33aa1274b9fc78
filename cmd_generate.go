package main

import (
	"context"
	"fmt"
	"time"

	"panomask/internal/batch"
	"panomask/internal/config"
	"panomask/internal/manifest"
	"panomask/internal/morph"
	"panomask/internal/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generate flags
var (
	panoramaDir string
	maskDir     string
	manifestOut string
	workers     int
	scanWorkers int
	cleanup     int
)

// generateCmd segments the configured panoramas
var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate sky, water and vegetation masks",
	Long: `Segments each panorama and writes <name>-sky.png, <name>-water.png and
<name>-veg.png to the mask directory, then updates the mask manifest.

With no arguments the panoramas listed in the config are processed; missing
files are skipped with a warning. File arguments replace the configured list.

Example:
  panomask generate
  panomask generate --masks public/masks panoramas/keaau.jpg`,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&panoramaDir, "panoramas", "", "Panorama directory (overrides config)")
	cmd.Flags().StringVar(&maskDir, "masks", "", "Mask output directory (overrides config)")
	cmd.Flags().StringVar(&manifestOut, "manifest", "", "Manifest file, empty string in config disables it")
	cmd.Flags().IntVar(&workers, "workers", 0, "Panoramas processed concurrently (overrides config)")
	cmd.Flags().IntVar(&scanWorkers, "scan-workers", -1, "Row bands per image, 0 = all CPUs (overrides config)")
	cmd.Flags().IntVar(&cleanup, "cleanup", -1, "Morphological cleanup passes per mask (overrides config)")
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("panoramas") {
		cfg.PanoramaDir = panoramaDir
	}
	if flags.Changed("masks") {
		cfg.MaskDir = maskDir
	}
	if flags.Changed("manifest") {
		cfg.Manifest = manifestOut
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("scan-workers") {
		cfg.ScanWorkers = scanWorkers
	}
	if flags.Changed("cleanup") {
		cfg.CleanupIterations = cleanup
	}
	return cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}

	jobs := jobsFor(cfg, args)
	if len(jobs) == 0 {
		fmt.Println("No panoramas to process.")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	results, runErr := generate(ctx, cfg, jobs)
	summary := batch.Summarize(results)

	fmt.Printf("\n%-20s %-8s %10s %8s %8s %8s\n", "Panorama", "Status", "Size", "Sky", "Water", "Veg")
	for _, res := range results {
		size := "-"
		if res.Status == batch.StatusDone {
			size = fmt.Sprintf("%dx%d", res.Width, res.Height)
		}
		fmt.Printf("%-20s %-8s %10s %7.1f%% %7.1f%% %7.1f%%\n",
			res.Job.Key, res.Status, size,
			res.Coverage.Sky*100, res.Coverage.Water*100, res.Coverage.Vegetation*100)
	}
	fmt.Printf("\n%d done, %d skipped, %d failed in %s. Masks saved to: %s\n",
		summary.Done, summary.Skipped, summary.Failed,
		time.Since(start).Round(time.Millisecond), cfg.MaskDirPath())

	return runErr
}

// jobsFor returns the batch jobs for explicit file args, or for the
// configured panorama list.
func jobsFor(cfg *config.Config, args []string) []batch.Job {
	var jobs []batch.Job
	if len(args) > 0 {
		for _, path := range args {
			name := ""
			if p, ok := cfg.Lookup(batch.NewJob(path, "").Key); ok {
				name = p.DisplayName()
			}
			jobs = append(jobs, batch.NewJob(path, name))
		}
		return jobs
	}
	for _, p := range cfg.Panoramas {
		jobs = append(jobs, batch.NewJob(cfg.PanoramaPath(p.File), p.DisplayName()))
	}
	return jobs
}

// newRunner builds a batch runner from the config.
func newRunner(cfg *config.Config) *batch.Runner {
	opts := batch.Options{
		MaskDir:     cfg.MaskDirPath(),
		Suffixes:    cfg.Suffixes,
		Params:      cfg.Thresholds,
		Workers:     cfg.Workers,
		ScanWorkers: cfg.ScanWorkers,
	}
	if cfg.CleanupIterations > 0 {
		opts.Cleanup = morph.Cleaner(cfg.CleanupIterations)
	}
	return batch.NewRunner(opts, logger)
}

// generate runs the batch and records finished panoramas in the manifest.
func generate(ctx context.Context, cfg *config.Config, jobs []batch.Job) ([]batch.Result, error) {
	logger.Info("Generating masks",
		zap.Int("panoramas", len(jobs)),
		zap.String("mask_dir", cfg.MaskDirPath()),
		zap.Stringer("thresholds", cfg.Thresholds))

	results, runErr := newRunner(cfg).Run(ctx, jobs)
	if results == nil {
		return nil, runErr
	}

	if err := updateManifest(cfg, results); err != nil {
		logger.Error("Failed to update manifest", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	return results, runErr
}

// updateManifest upserts every completed panorama into the manifest file.
func updateManifest(cfg *config.Config, results []batch.Result) error {
	path := cfg.ManifestPath()
	if path == "" {
		return nil
	}

	m, err := manifest.LoadOrNew(path, version.String())
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	updated := 0
	for _, res := range results {
		if res.Status != batch.StatusDone {
			continue
		}
		m.Upsert(manifest.Entry{
			Key:       res.Job.Key,
			Name:      res.Job.Name,
			Panorama:  manifest.RelativePath(path, res.Job.Path),
			Masks:     manifest.RelativePaths(path, res.Masks),
			Width:     res.Width,
			Height:    res.Height,
			Coverage:  res.Coverage,
			Generated: time.Now().UTC(),
		})
		updated++
	}
	if updated == 0 {
		return nil
	}

	if err := m.Save(path); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	logger.Info("Manifest updated", zap.String("path", path), zap.Int("entries", len(m.Entries)))
	return nil
}
