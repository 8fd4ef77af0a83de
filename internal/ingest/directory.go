// Package ingest discovers chart images and their OCR sidecar documents
// on disk and derives each image's report date from its filename.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seung-gu/factset-data-collector/constants"
)

// ChartFile is one discovered chart image plus its detections sidecar.
type ChartFile struct {
	ImagePath      string
	DetectionsPath string
	ReportDate     time.Time
}

// DirStats aggregates a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// Filenames carry the report date as their leading 8 digits:
// "20161209.png", "20161209-6.png", "EarningsInsight_20161209_120916.png".
var reDate = regexp.MustCompile(`\d{8}`)

// ReportDateFromFilename extracts the report date encoded in a chart
// filename.
func ReportDateFromFilename(name string) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	m := reDate.FindString(base)
	if m == "" {
		return time.Time{}, fmt.Errorf("no date in filename %q", name)
	}
	t, err := time.Parse("20060102", m)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date in filename %q: %w", name, err)
	}
	return t, nil
}

// ScanDirectory walks root for chart images, pairs each with its
// detections sidecar (same base name, .json extension), and orders the
// result by report date ascending — the order the scorer requires.
// Files without a parseable date or a sidecar are counted and skipped,
// never fatal. limit > 0 caps the number of files returned.
func ScanDirectory(ctx context.Context, root string, limit int) ([]ChartFile, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("input directory is required")
	}

	var files []ChartFile
	var stats DirStats
	sidecars := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(d.Name()))
		if ext == "json" {
			base := strings.TrimSuffix(path, filepath.Ext(path))
			sidecars[base] = path
			return nil
		}
		if _, ok := constants.AllowedImageExtensions[ext]; !ok {
			return nil
		}
		stats.Scanned++
		date, derr := ReportDateFromFilename(path)
		if derr != nil {
			stats.Skipped++
			return nil
		}
		files = append(files, ChartFile{ImagePath: path, ReportDate: date})
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	// Attach sidecars; images without one are skipped.
	matched := files[:0]
	for _, f := range files {
		base := strings.TrimSuffix(f.ImagePath, filepath.Ext(f.ImagePath))
		sc, ok := sidecars[base]
		if !ok {
			stats.Skipped++
			continue
		}
		f.DetectionsPath = sc
		matched = append(matched, f)
	}
	files = matched

	sort.Slice(files, func(i, j int) bool { return files[i].ReportDate.Before(files[j].ReportDate) })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	stats.Matched = uint32(len(files))
	return files, stats, nil
}
