// Package cli wires the collector's cobra commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Extract quarterly EPS estimates from FactSet chart images",
	Long: `collector turns OCR detections of FactSet "Bottom-Up EPS Estimates"
bar charts into a date-indexed table of quarterly estimates, classifying
each value as actual or estimate and scoring extraction confidence.

Example:
  collector process --input-dir output/estimates --csv output/extracted_estimates.csv
  collector export --out output/extracted_estimates.xlsx`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process-wide JSON logger.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
