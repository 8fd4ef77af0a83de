// runextract analyzes a single chart image and prints the matched pairs
// and per-method votes. Debug tool; nothing is persisted.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/seung-gu/factset-data-collector/internal/barclass"
	"github.com/seung-gu/factset-data-collector/internal/chart"
	"github.com/seung-gu/factset-data-collector/internal/detect"
	"github.com/seung-gu/factset-data-collector/internal/ingest"
)

func main() {
	var (
		imagePath      = flag.String("image", "", "chart image path (required)")
		detectionsPath = flag.String("detections", "", "detections JSON path (default: image path with .json)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *imagePath == "" {
		logger.Error("usage", "cmd", "runextract --image chart.png [--detections chart.json]")
		os.Exit(2)
	}
	if *detectionsPath == "" {
		*detectionsPath = trimExt(*imagePath) + ".json"
	}

	doc, err := detect.Load(*detectionsPath)
	if err != nil {
		logger.Error("load detections", "path", *detectionsPath, "error", err)
		os.Exit(1)
	}
	fh, err := os.Open(*imagePath)
	if err != nil {
		logger.Error("open image", "path", *imagePath, "error", err)
		os.Exit(1)
	}
	img, _, err := image.Decode(fh)
	_ = fh.Close()
	if err != nil {
		logger.Error("decode image", "path", *imagePath, "error", err)
		os.Exit(1)
	}

	date, err := ingest.ReportDateFromFilename(*imagePath)
	if err == nil {
		fmt.Printf("report date: %s\n", date.Format("2006-01-02"))
	}

	detections := doc.TextDetections()
	labels := chart.FindQuarterLabels(detections, doc.ImageHeight)
	candidates := chart.FindNumericCandidates(detections, labels)
	pairs := chart.MatchQuarterValues(labels, candidates)
	fmt.Printf("detections=%d labels=%d candidates=%d pairs=%d\n\n",
		len(detections), len(labels), len(candidates), len(pairs))

	for _, pair := range pairs {
		res := barclass.Classify(img, pair)
		fmt.Printf("%s: value=%g class=%s tier=%.0f (dx=%.1f dy=%.1f)\n",
			pair.Key(), pair.Value, res.FinalClass, res.TierConfidence, pair.XDiff, pair.YDiff)
		for _, v := range res.Votes {
			fmt.Printf("  %-22s white_ratio=%.3f vote=%s\n", v.Method, v.WhiteRatio, v.Vote)
		}
		fmt.Println()
	}
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
