package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seung-gu/factset-data-collector/internal/common"
	"github.com/seung-gu/factset-data-collector/internal/export"
	"github.com/seung-gu/factset-data-collector/internal/report"
	"github.com/seung-gu/factset-data-collector/internal/repository"
)

var (
	exportDB  string
	exportOut string
)

// exportCmd renders the stored estimates table to CSV or XLSX
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored estimates table (format chosen by output extension)",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	cfg := common.LoadConfig()
	exportCmd.Flags().StringVar(&exportDB, "db", cfg.Database.DSN, "database DSN")
	exportCmd.Flags().StringVar(&exportOut, "out", "output/extracted_estimates.xlsx", "output path (.csv or .xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()
	cfg.Database.DSN = exportDB

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

	records, err := repository.NewReportRepository(db, logger).LoadAll(ctx)
	if err != nil {
		return err
	}
	table := report.NewTable()
	for _, rec := range records {
		table.Merge(rec)
	}

	writer := export.NewWriter(cfg.Export.EstimateMarker)
	if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	switch strings.ToLower(filepath.Ext(exportOut)) {
	case ".xlsx":
		data, err := writer.WriteXLSX(table)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
	case ".csv":
		if err := writeCSVFile(exportOut, table, writer.WriteWideCSV); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output extension: %s", exportOut)
	}

	fmt.Printf("Exported %d report date(s) to %s\n", table.Len(), exportOut)
	return nil
}
