package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"panomask/internal/batch"
	"panomask/internal/config"
	"panomask/internal/pano"
	"panomask/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debounce    time.Duration
	skipInitial bool
)

// watchCmd regenerates masks as panoramas change
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate masks whenever a panorama changes",
	Long: `Generates masks for the configured panoramas, then watches the panorama
directory and regenerates the masks of any configured panorama that is
written or replaced. Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	addGenerateFlags(watchCmd)
	watchCmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is processed")
	watchCmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "Do not generate masks before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !skipInitial {
		if _, err := generate(ctx, cfg, jobsFor(cfg, nil)); err != nil {
			logger.Warn("Initial generation incomplete", zap.Error(err))
		}
	}

	w := watch.New(cfg.PanoramaDirPath(), debounce, watchFilter(cfg), logger)
	w.OnChange(func(ctx context.Context, path string) {
		name := ""
		if p, ok := cfg.Lookup(pano.Basename(path)); ok {
			name = p.DisplayName()
		}
		if _, err := generate(ctx, cfg, []batch.Job{batch.NewJob(path, name)}); err != nil {
			logger.Error("Regeneration failed", zap.String("path", path), zap.Error(err))
		}
	})
	return w.Run(ctx)
}

// watchFilter accepts supported images that are in the configured panorama
// list, or any supported image when the list is empty. Hidden files and
// masks named with the configured suffixes are never accepted, so output
// written into the panorama directory does not trigger another run.
func watchFilter(cfg *config.Config) func(string) bool {
	return func(path string) bool {
		if !pano.IsSupportedFormat(path) {
			return false
		}
		if strings.HasPrefix(filepath.Base(path), ".") || cfg.Suffixes.IsMaskFile(path) {
			return false
		}
		if len(cfg.Panoramas) == 0 {
			return true
		}
		_, ok := cfg.Lookup(pano.Basename(path))
		return ok
	}
}
