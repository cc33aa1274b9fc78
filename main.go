// Package main provides the panomask command, which generates sky, water and
// vegetation masks for the panorama viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"panomask/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workdir    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "panomask",
	Short: "Generate segmentation masks for 360° panoramas",
	Long: `panomask classifies every pixel of an equirectangular panorama as sky,
water and/or vegetation using color and position heuristics, and writes one
black/white PNG mask per category for the viewer's animated overlays.

Configuration is read from panomask.yaml in the working directory when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./panomask.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workdir, "workdir", "w", ".", "Directory relative paths resolve against when no config file is used")

	rootCmd.AddCommand(generateCmd, watchCmd, classifyCmd, versionCmd)
}

// loadConfig reads the configuration selected by the global flags.
func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(configPath, workdir)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
