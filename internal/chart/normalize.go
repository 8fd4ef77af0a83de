// Package chart recovers quarter/value structure from raw OCR detections
// of a FactSet EPS bar chart.
package chart

import (
	"strings"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// BottomBandRatio is the fraction of image height (measured from the
// bottom) in which quarter labels are expected to appear.
const BottomBandRatio = 0.30

// OCR confusion classes. Each class lists characters the OCR engine is
// known to swap for one another in quarter labels. Membership is tested
// per character, so every substitution combination is covered.
var (
	qClass   = "QqOo0"
	oneClass = "1Il"
)

func isQ(c byte) bool   { return strings.IndexByte(qClass, c) >= 0 }
func isOne(c byte) bool { return strings.IndexByte(oneClass, c) >= 0 }

// digitValue maps a possibly-confused character to its digit value,
// returning -1 for characters outside the digit confusion class.
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c == 'O' || c == 'o':
		return 0
	case c == 'I' || c == 'l':
		return 1
	}
	return -1
}

// stripPunct removes everything except letters and digits, dropping the
// apostrophes and stray punctuation OCR leaves in labels like "Q1'14".
func stripPunct(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ParseQuarterText tries to read a quarter reference out of raw OCR text.
// It walks the punctuation-stripped skeleton looking for a Q-equivalent
// character followed by a quarter digit 1-4 and a 1-2 digit year; trailing
// noise after the year is tolerated. Returns false when no position in the
// string matches under any combination of the confusion classes.
func ParseQuarterText(text string) (entity.QuarterRef, bool) {
	s := stripPunct(text)
	for i := 0; i+1 < len(s); i++ {
		if !isQ(s[i]) {
			continue
		}
		q := digitValue(s[i+1])
		// "1" OCR-ed as I/l is the common case; other quarter digits must
		// be literal.
		if isOne(s[i+1]) {
			q = 1
		}
		if q < 1 || q > 4 {
			continue
		}
		year, ok := parseYear(s[i+2:])
		if !ok {
			continue
		}
		return entity.QuarterRef{Quarter: q, Year: 2000 + year}, true
	}
	return entity.QuarterRef{}, false
}

// parseYear reads a 1-2 digit year from the front of s, tolerating
// confused digit characters. A second digit is consumed only if present.
func parseYear(s string) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	d0 := digitValue(s[0])
	if d0 < 0 {
		return 0, false
	}
	if len(s) >= 2 {
		if d1 := digitValue(s[1]); d1 >= 0 {
			return d0*10 + d1, true
		}
	}
	return d0, true
}

// FindQuarterLabels scans one image's detections for quarter labels.
// Only detections whose top edge lies within the bottom band of the image
// are eligible; everything else is ignored. Unparseable text in the band
// is silently dropped.
func FindQuarterLabels(detections []entity.TextDetection, imageHeight float64) []entity.QuarterLabel {
	cutoff := imageHeight * (1 - BottomBandRatio)
	var labels []entity.QuarterLabel
	for _, d := range detections {
		if d.Box.Y0 < cutoff {
			continue
		}
		ref, ok := ParseQuarterText(d.Text)
		if !ok {
			continue
		}
		labels = append(labels, entity.QuarterLabel{
			QuarterRef: ref,
			Box:        d.Box,
			SourceText: d.Text,
		})
	}
	return labels
}
