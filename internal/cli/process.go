package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/seung-gu/factset-data-collector/constants"
	"github.com/seung-gu/factset-data-collector/internal/common"
	"github.com/seung-gu/factset-data-collector/internal/export"
	"github.com/seung-gu/factset-data-collector/internal/ingest"
	"github.com/seung-gu/factset-data-collector/internal/pipeline"
	"github.com/seung-gu/factset-data-collector/internal/report"
	"github.com/seung-gu/factset-data-collector/internal/repository"
)

var (
	inputDir      string
	dbURL         string
	csvOut        string
	confidenceOut string
	limit         int
	workers       int
	timeout       time.Duration
)

// processCmd runs the extraction pipeline over a directory of chart images
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process chart images and merge results into the estimates table",
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	cfg := common.LoadConfig()
	processCmd.Flags().StringVar(&inputDir, "input-dir", "output/estimates", "directory containing chart images and detection sidecars")
	processCmd.Flags().StringVar(&dbURL, "db", cfg.Database.DSN, "database DSN (postgres://... or a SQLite path)")
	processCmd.Flags().StringVar(&csvOut, "csv", cfg.Export.CSVPath, "wide CSV output path (empty to skip)")
	processCmd.Flags().StringVar(&confidenceOut, "confidence-csv", cfg.Export.ConfidenceCSVPath, "confidence CSV output path (empty to skip)")
	processCmd.Flags().IntVar(&limit, "limit", cfg.Pipeline.ImageLimit, "max images to process (0 = all)")
	processCmd.Flags().IntVar(&workers, "workers", cfg.Pipeline.Workers, "parallel image analyses")
	processCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall batch timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := common.LoadConfig()
	cfg.Database.DSN = dbURL
	cfg.Pipeline.Workers = workers
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close database", "error", cerr)
		}
	}()

	reportsRepo := repository.NewReportRepository(db, logger)
	runsRepo := repository.NewRunRepository(db, logger)

	runID, err := runsRepo.Start(ctx)
	if err != nil {
		return err
	}

	// Seed the table with history so consistency scoring sees prior runs.
	history, err := reportsRepo.LoadAll(ctx)
	if err != nil {
		return finishRun(ctx, runsRepo, runID, 0, 0, err)
	}
	table := report.NewTable()
	for _, rec := range history {
		table.Merge(rec)
	}

	files, stats, err := ingest.ScanDirectory(ctx, inputDir, limit)
	if err != nil {
		return finishRun(ctx, runsRepo, runID, 0, 0, err)
	}
	logger.Info("scan complete", "run_id", runID,
		"scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)

	proc := pipeline.NewProcessor(logger, cfg.Pipeline.Workers)
	results := proc.ProcessBatch(ctx, files, table)

	saved, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if err := reportsRepo.Save(ctx, res.Record); err != nil {
			logger.Error("save report", "report_date", res.Record.ReportDate.Format("2006-01-02"), "error", err)
			failed++
			continue
		}
		saved++
	}

	writer := export.NewWriter(cfg.Export.EstimateMarker)
	if csvOut != "" {
		if err := writeCSVFile(csvOut, table, writer.WriteWideCSV); err != nil {
			return finishRun(ctx, runsRepo, runID, len(files), saved, err)
		}
	}
	if confidenceOut != "" {
		if err := writeCSVFile(confidenceOut, table, writer.WriteConfidenceCSV); err != nil {
			return finishRun(ctx, runsRepo, runID, len(files), saved, err)
		}
	}

	if err := finishRun(ctx, runsRepo, runID, len(files), saved, nil); err != nil {
		return err
	}
	fmt.Printf("Processed %d image(s): %d saved, %d failed; table now holds %d report date(s)\n",
		len(files), saved, failed, table.Len())
	return nil
}

func finishRun(ctx context.Context, runs *repository.RunRepository, runID uuid.UUID, images, records int, cause error) error {
	status := constants.RunStatusFinished
	msg := ""
	if cause != nil {
		status = constants.RunStatusFailed
		msg = cause.Error()
	}
	if err := runs.Finish(ctx, runID, status, images, records, msg); err != nil && cause == nil {
		return err
	}
	return cause
}

func writeCSVFile(path string, table *report.Table, write func(out io.Writer, t *report.Table) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, table); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
