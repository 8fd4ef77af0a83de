package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/seung-gu/factset-data-collector/constants"
	"github.com/seung-gu/factset-data-collector/internal/entity"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	// MaxConns 1: each in-memory SQLite connection is its own database.
	db, err := Open(context.Background(), Config{
		DSN:         ":memory:",
		MaxConns:    1,
		MinConns:    1,
		DialTimeout: 5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReportRepositorySaveLoadRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepository(db, nil)
	ctx := context.Background()

	a := entity.NewReportRecord(day("2014-01-10"))
	a.Quarters["Q4'13"] = entity.QuarterValue{Value: 26.5}
	a.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.8, IsEstimate: true}
	a.Confidence = 100

	b := entity.NewReportRecord(day("2014-02-14"))
	b.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.85}
	b.Confidence = 83.25

	// save out of order, load must come back date-ascending
	for _, rec := range []*entity.ReportRecord{b, a} {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if !got[0].ReportDate.Equal(day("2014-01-10")) {
		t.Fatalf("records not ordered by date: first is %s", got[0].ReportDate)
	}

	first := got[0]
	if first.Confidence != 100 {
		t.Errorf("confidence = %v, want 100", first.Confidence)
	}
	q4 := first.Quarters["Q4'13"]
	if q4.Value != 26.5 || q4.IsEstimate {
		t.Errorf("Q4'13 = %+v, want actual 26.5", q4)
	}
	q1 := first.Quarters["Q1'14"]
	if q1.Value != 27.8 || !q1.IsEstimate {
		t.Errorf("Q1'14 = %+v, want estimate 27.8", q1)
	}
}

func TestReportRepositorySaveOverwritesDate(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepository(db, nil)
	ctx := context.Background()

	rec := entity.NewReportRecord(day("2014-02-14"))
	rec.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.8}
	rec.Quarters["Q2'14"] = entity.QuarterValue{Value: 28.3, IsEstimate: true}
	rec.Confidence = 50
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// re-save the same date with fewer quarters; stale rows must go
	rec2 := entity.NewReportRecord(day("2014-02-14"))
	rec2.Quarters["Q1'14"] = entity.QuarterValue{Value: 27.85}
	rec2.Confidence = 100
	if err := repo.Save(ctx, rec2); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	got, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if len(got[0].Quarters) != 1 {
		t.Fatalf("stale quarter rows survived: %+v", got[0].Quarters)
	}
	if got[0].Quarters["Q1'14"].Value != 27.85 || got[0].Confidence != 100 {
		t.Fatalf("overwrite not applied: %+v", got[0])
	}
}

func TestReportRepositoryLoadAllEmpty(t *testing.T) {
	db := testDB(t)
	repo := NewReportRepository(db, nil)

	got, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty database returned %d records", len(got))
	}
}

func TestRunRepositoryLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewRunRepository(db, nil)
	ctx := context.Background()

	id, err := repo.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var status string
	if err := db.QueryRowContext(ctx,
		db.rebind(`SELECT status FROM extraction_runs WHERE id = ?`), id.String()).Scan(&status); err != nil {
		t.Fatalf("query run: %v", err)
	}
	if status != string(constants.RunStatusRunning) {
		t.Fatalf("status = %q, want RUNNING", status)
	}

	if err := repo.Finish(ctx, id, constants.RunStatusFinished, 12, 12, ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	var images, records int
	var finishedAt string
	if err := db.QueryRowContext(ctx,
		db.rebind(`SELECT status, images, records, finished_at FROM extraction_runs WHERE id = ?`),
		id.String()).Scan(&status, &images, &records, &finishedAt); err != nil {
		t.Fatalf("query finished run: %v", err)
	}
	if status != string(constants.RunStatusFinished) || images != 12 || records != 12 {
		t.Fatalf("finished run = %s/%d/%d", status, images, records)
	}
	if finishedAt == "" {
		t.Fatal("finished_at not set")
	}
}

func TestRebind(t *testing.T) {
	sqlite := &DB{}
	if got := sqlite.rebind(`INSERT INTO t (a, b) VALUES (?, ?)`); got != `INSERT INTO t (a, b) VALUES (?, ?)` {
		t.Fatalf("sqlite rebind altered query: %q", got)
	}
	pg := &DB{postgres: true}
	if got := pg.rebind(`INSERT INTO t (a, b) VALUES (?, ?)`); got != `INSERT INTO t (a, b) VALUES ($1, $2)` {
		t.Fatalf("postgres rebind = %q", got)
	}
}
