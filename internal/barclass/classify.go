package barclass

import (
	"image"

	"github.com/seung-gu/factset-data-collector/internal/entity"
)

// Class is the bar fill classification.
type Class int

const (
	// ClassDark marks a fully filled bar: a realized (actual) figure.
	ClassDark Class = iota
	// ClassLight marks a partially filled bar: a forecast (estimate).
	ClassLight
)

func (c Class) String() string {
	if c == ClassDark {
		return "dark"
	}
	return "light"
}

// Method identifies one of the three fixed binarization strategies. The
// set is closed: each method carries its own threshold and polarity, and
// voting is a total switch over the three.
type Method int

const (
	AdaptiveThreshold Method = iota
	MorphologicalClosing
	InvertedOtsu
)

func (m Method) String() string {
	switch m {
	case AdaptiveThreshold:
		return "adaptive_threshold"
	case MorphologicalClosing:
		return "morphological_closing"
	default:
		return "inverted_otsu"
	}
}

// BarVote is one method's verdict on a bar region.
type BarVote struct {
	Method     Method
	WhiteRatio float64
	Vote       Class
}

// Result is the ensemble output for one quarter/value pair.
type Result struct {
	Votes          [3]BarVote
	AgreementCount int
	FinalClass     Class
	TierConfidence float64
}

// Confidence tiers by vote agreement. The 33 branch is unreachable for a
// strict 3-way binary vote but kept defined for robustness.
const (
	TierUnanimous = 100.0
	TierMajority  = 67.0
	TierSplit     = 33.0
)

// vote applies a method's decision rule to its white-pixel ratio. The
// closing rule is inverted relative to the other two: closing fills
// internal gaps, so a low white ratio there signals a sparse (estimate)
// bar rather than a dark one.
func vote(m Method, ratio float64) Class {
	switch m {
	case AdaptiveThreshold:
		if ratio > 0.7 {
			return ClassDark
		}
		return ClassLight
	case MorphologicalClosing:
		if ratio > 0.5 {
			return ClassLight
		}
		return ClassDark
	default: // InvertedOtsu
		if ratio > 0.7 {
			return ClassDark
		}
		return ClassLight
	}
}

// BarRegion is the rectangle between the printed value and its quarter
// label: horizontally the union of the two boxes, vertically from the
// bottom of the value box down to the top of the label box.
func BarRegion(pair entity.QuarterValuePair) entity.Box {
	u := pair.LabelBox.Union(pair.ValueBox)
	return entity.Box{X0: u.X0, Y0: pair.ValueBox.Y1, X1: u.X1, Y1: pair.LabelBox.Y0}
}

// Classify runs all three binarizations over the pair's bar region and
// majority-votes the result. Degenerate crops (zero area, uniform color)
// still produce ratios and votes; classification is never fatal.
func Classify(img image.Image, pair entity.QuarterValuePair) Result {
	gray := grayCrop(img, BarRegion(pair))
	otsu := otsuThreshold(gray)

	adaptive := adaptiveThreshold(gray).whiteRatio()
	closed := close3x3(thresholdGray(gray, otsu, false)).whiteRatio()
	otsuInv := thresholdGray(gray, otsu, true).whiteRatio()

	votes := [3]BarVote{
		{Method: AdaptiveThreshold, WhiteRatio: adaptive, Vote: vote(AdaptiveThreshold, adaptive)},
		{Method: MorphologicalClosing, WhiteRatio: closed, Vote: vote(MorphologicalClosing, closed)},
		{Method: InvertedOtsu, WhiteRatio: otsuInv, Vote: vote(InvertedOtsu, otsuInv)},
	}
	return tally(votes)
}

// tally majority-votes the three method verdicts and maps agreement to a
// confidence tier: 3/3 -> 100, 2/3 -> 67, anything else -> 33.
func tally(votes [3]BarVote) Result {
	dark := 0
	for _, v := range votes {
		if v.Vote == ClassDark {
			dark++
		}
	}
	final := ClassLight
	agreement := 3 - dark
	if dark >= 2 {
		final = ClassDark
		agreement = dark
	}

	tier := TierSplit
	switch agreement {
	case 3:
		tier = TierUnanimous
	case 2:
		tier = TierMajority
	}
	return Result{
		Votes:          votes,
		AgreementCount: agreement,
		FinalClass:     final,
		TierConfidence: tier,
	}
}
