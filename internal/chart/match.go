package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// Matching tolerances. Column (x) alignment is the reliable signal, so it
// is weighted 100x heavier than the vertical offset, which only acts as a
// loose sanity bound.
const (
	XTolerance = 10.0
	YTolerance = 1000.0

	xWeight = 10.0
	yWeight = 0.1
)

// YearValueCutoff excludes numeric detections that are really axis years
// (e.g. "2014") rather than EPS figures.
const YearValueCutoff = 2000

// parseNumeric extracts a decimal value from OCR text, tolerating thousands
// separators and a leading currency sign. Returns false for anything that
// is not a plain number.
func parseNumeric(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FindNumericCandidates collects detections that parse as EPS values.
// Detections already consumed as quarter labels and values in the year
// range (>= 2000) are excluded.
func FindNumericCandidates(detections []entity.TextDetection, labels []entity.QuarterLabel) []entity.NumericCandidate {
	labelBoxes := make(map[entity.Box]struct{}, len(labels))
	for _, l := range labels {
		labelBoxes[l.Box] = struct{}{}
	}
	var out []entity.NumericCandidate
	for _, d := range detections {
		if _, isLabel := labelBoxes[d.Box]; isLabel {
			continue
		}
		v, ok := parseNumeric(d.Text)
		if !ok || v >= YearValueCutoff {
			continue
		}
		out = append(out, entity.NumericCandidate{Value: v, Box: d.Box})
	}
	return out
}

// matchDistance scores a label/candidate pairing. dx dominates; dy only
// keeps absurdly distant values out.
func matchDistance(dx, dy float64) float64 {
	return math.Sqrt((xWeight*dx)*(xWeight*dx) + (yWeight*dy)*(yWeight*dy))
}

// MatchQuarterValues pairs each quarter label with its nearest qualifying
// numeric candidate. Labels are visited left to right; each candidate can
// be claimed once. A label with no qualifying candidate yields no pair.
// The result is ordered left to right by label position, which is the
// chart's chronological order.
func MatchQuarterValues(labels []entity.QuarterLabel, candidates []entity.NumericCandidate) []entity.QuarterValuePair {
	sorted := make([]entity.QuarterLabel, len(labels))
	copy(sorted, labels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Box.X0 < sorted[j].Box.X0 })

	claimed := make([]bool, len(candidates))
	var pairs []entity.QuarterValuePair

	for _, label := range sorted {
		best := -1
		var bestDist, bestDx, bestDy float64
		for i, cand := range candidates {
			if claimed[i] {
				continue
			}
			dx := math.Abs(cand.Box.CenterX() - label.Box.CenterX())
			dy := label.Box.CenterY() - cand.Box.CenterY()
			if dy <= 0 || dx > XTolerance || dy > YTolerance {
				continue
			}
			dist := matchDistance(dx, dy)
			if best < 0 || dist < bestDist ||
				(dist == bestDist && dx < bestDx) ||
				(dist == bestDist && dx == bestDx && cand.Box.X0 < candidates[best].Box.X0) {
				best, bestDist, bestDx, bestDy = i, dist, dx, dy
			}
		}
		if best < 0 {
			continue // expected for unlabeled bars, not an error
		}
		claimed[best] = true
		pairs = append(pairs, entity.QuarterValuePair{
			QuarterRef: label.QuarterRef,
			Value:      candidates[best].Value,
			LabelBox:   label.Box,
			ValueBox:   candidates[best].Box,
			XDiff:      bestDx,
			YDiff:      bestDy,
		})
	}
	return pairs
}
