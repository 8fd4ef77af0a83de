package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

const dateLayout = "2006-01-02"

// ReportRepository stores ReportRecords as (date, quarter) value rows
// plus a per-date confidence row.
type ReportRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReportRepository(db *DB, logger *slog.Logger) *ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportRepository{db: db, logger: logger}
}

// Save upserts one record. The date's existing rows are replaced inside a
// transaction, so re-processing a report date is an atomic overwrite.
func (r *ReportRepository) Save(ctx context.Context, rec *entity.ReportRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	date := rec.ReportDate.Format(dateLayout)
	if _, err := tx.ExecContext(ctx, r.db.rebind(
		`DELETE FROM report_values WHERE report_date = ?`), date); err != nil {
		return fmt.Errorf("clear report values: %w", err)
	}
	for _, key := range rec.QuarterKeys() {
		v := rec.Quarters[key]
		if _, err := tx.ExecContext(ctx, r.db.rebind(
			`INSERT INTO report_values (report_date, quarter_key, value, is_estimate) VALUES (?, ?, ?, ?)`),
			date, key, v.Value, v.IsEstimate); err != nil {
			return fmt.Errorf("insert report value: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, r.db.rebind(
		`DELETE FROM report_confidence WHERE report_date = ?`), date); err != nil {
		return fmt.Errorf("clear report confidence: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.db.rebind(
		`INSERT INTO report_confidence (report_date, confidence) VALUES (?, ?)`),
		date, rec.Confidence); err != nil {
		return fmt.Errorf("insert report confidence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("report saved", "report_date", date, "quarters", len(rec.Quarters))
	return nil
}

// LoadAll reads every stored record, ordered by report date. Used to seed
// the in-memory table so later runs can score consistency against history.
func (r *ReportRepository) LoadAll(ctx context.Context) ([]*entity.ReportRecord, error) {
	byDate := map[string]*entity.ReportRecord{}

	rows, err := r.db.QueryContext(ctx,
		`SELECT report_date, quarter_key, value, is_estimate FROM report_values ORDER BY report_date`)
	if err != nil {
		return nil, fmt.Errorf("query report values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date, key string
		var value float64
		var isEstimate bool
		if err := rows.Scan(&date, &key, &value, &isEstimate); err != nil {
			return nil, fmt.Errorf("scan report value: %w", err)
		}
		rec, ok := byDate[date]
		if !ok {
			t, perr := time.Parse(dateLayout, date)
			if perr != nil {
				return nil, fmt.Errorf("stored report date %q: %w", date, perr)
			}
			rec = entity.NewReportRecord(t)
			byDate[date] = rec
		}
		rec.Quarters[key] = entity.QuarterValue{Value: value, IsEstimate: isEstimate}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report values: %w", err)
	}

	crows, err := r.db.QueryContext(ctx, `SELECT report_date, confidence FROM report_confidence`)
	if err != nil {
		return nil, fmt.Errorf("query report confidence: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var date string
		var conf float64
		if err := crows.Scan(&date, &conf); err != nil {
			return nil, fmt.Errorf("scan report confidence: %w", err)
		}
		rec, ok := byDate[date]
		if !ok {
			t, perr := time.Parse(dateLayout, date)
			if perr != nil {
				return nil, fmt.Errorf("stored report date %q: %w", date, perr)
			}
			rec = entity.NewReportRecord(t)
			byDate[date] = rec
		}
		rec.Confidence = conf
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report confidence: %w", err)
	}

	out := make([]*entity.ReportRecord, 0, len(byDate))
	for _, rec := range byDate {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.Before(out[j].ReportDate) })
	return out, nil
}
