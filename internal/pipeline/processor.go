// Package pipeline coordinates the per-image extraction stages: load
// detections, normalize and match, classify bars, then score and assemble
// in report-date order.
package pipeline

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/seung-gu/factset-data-collector/internal/barclass"
	"github.com/seung-gu/factset-data-collector/internal/chart"
	"github.com/seung-gu/factset-data-collector/internal/common"
	"github.com/seung-gu/factset-data-collector/internal/detect"
	"github.com/seung-gu/factset-data-collector/internal/entity"
	"github.com/seung-gu/factset-data-collector/internal/ingest"
	"github.com/seung-gu/factset-data-collector/internal/report"
)

// Processor runs the extraction pipeline over a batch of chart files.
type Processor struct {
	Logger  *slog.Logger
	Workers int
}

func NewProcessor(logger *slog.Logger, workers int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Processor{Logger: logger, Workers: workers}
}

// FileResult is the per-image outcome. Err is set only for the one hard
// per-image failure (unreadable image or detection document); such images
// do not stop the batch.
type FileResult struct {
	File   ingest.ChartFile
	Record *entity.ReportRecord
	Pairs  int
	Err    error
}

// analysis is the output of the parallel stages (normalize, match,
// classify), before date-ordered scoring.
type analysis struct {
	file  ingest.ChartFile
	pairs []report.ClassifiedPair
	err   error
}

// ProcessBatch runs the full pipeline over files, merging each assembled
// record into table. Matching and classification have no cross-image
// dependency and run on a bounded worker pool; scoring and assembly are
// serialized in report-date order because each report's consistency score
// depends on the records assembled before it.
func (p *Processor) ProcessBatch(ctx context.Context, files []ingest.ChartFile, table *report.Table) []FileResult {
	analyses := make([]analysis, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.Workers)
	for i, f := range files {
		wg.Add(1)
		go func(i int, f ingest.ChartFile) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				analyses[i] = analysis{file: f, err: ctx.Err()}
				return
			}
			analyses[i] = p.analyzeFile(f)
		}(i, f)
	}
	wg.Wait()

	// Score and assemble strictly by report date.
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].file.ReportDate.Before(analyses[j].file.ReportDate)
	})

	results := make([]FileResult, 0, len(analyses))
	for _, a := range analyses {
		if a.err != nil {
			p.Logger.Error("pipeline.analyze.failed", "image", a.file.ImagePath, "error", a.err)
			results = append(results, FileResult{File: a.file, Err: a.err})
			continue
		}
		rec := report.Assemble(a.file.ReportDate, a.pairs, table.Records())
		table.Merge(rec)
		p.Logger.Info("pipeline.assemble.ok",
			"image", a.file.ImagePath,
			"report_date", rec.ReportDate.Format("2006-01-02"),
			"pairs", len(a.pairs),
			"confidence", rec.Confidence,
		)
		results = append(results, FileResult{File: a.file, Record: rec, Pairs: len(a.pairs)})
	}
	return results
}

// analyzeFile runs the per-image stages: detections in, classified
// quarter/value pairs out. Unparseable labels and unmatched quarters are
// dropped silently; only unreadable inputs fail.
func (p *Processor) analyzeFile(f ingest.ChartFile) analysis {
	doc, err := detect.Load(f.DetectionsPath)
	if err != nil {
		return analysis{file: f, err: fmt.Errorf("load detections: %w", err)}
	}
	img, err := loadImage(f.ImagePath)
	if err != nil {
		return analysis{file: f, err: fmt.Errorf("%w: %v", common.ErrImageUnreadable, err)}
	}

	detections := doc.TextDetections()
	labels := chart.FindQuarterLabels(detections, doc.ImageHeight)
	candidates := chart.FindNumericCandidates(detections, labels)
	pairs := chart.MatchQuarterValues(labels, candidates)

	p.Logger.Info("pipeline.match.ok",
		"image", f.ImagePath,
		"detections", len(detections),
		"labels", len(labels),
		"pairs", len(pairs),
	)

	classified := make([]report.ClassifiedPair, 0, len(pairs))
	for _, pair := range pairs {
		res := barclass.Classify(img, pair)
		p.Logger.Debug("pipeline.classify.ok",
			"image", f.ImagePath,
			"quarter", pair.Key(),
			"class", res.FinalClass.String(),
			"agreement", res.AgreementCount,
		)
		classified = append(classified, report.ClassifiedPair{Pair: pair, Class: res})
	}
	return analysis{file: f, pairs: classified}
}

func loadImage(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
