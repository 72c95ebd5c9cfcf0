// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend grades a treatment recommendation from survival
// evidence and literature volume.
package recommend

import (
	"fmt"
	"strconv"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Text is the recommendation under evaluation.
const Text = "Pembrolizumab is preferred over nivolumab as first-line therapy in advanced melanoma"

// Tier thresholds, evaluated strongest first.
const (
	strongPValue     = 0.01
	strongPapers     = 10
	strongMedianDiff = 12.0

	moderatePValue = 0.05
	moderatePapers = 8
)

type tier struct {
	confidence float64
	strength   types.Strength
	grade      types.Grade
}

var (
	tierStrong   = tier{0.94, types.StrengthStrong, types.Grade1A}
	tierModerate = tier{0.87, types.StrengthModerate, types.Grade1B}
	tierWeak     = tier{0.62, types.StrengthWeak, types.Grade2C}
)

// Score grades the recommendation. It is a pure function: callers
// substitute 1.0 for a missing p-value and 0 for a missing paper count.
func Score(pValue float64, paperCount int, medianDiffMonths float64) types.Recommendation {
	t := tierWeak
	switch {
	case pValue < strongPValue && paperCount >= strongPapers && medianDiffMonths >= strongMedianDiff:
		t = tierStrong
	case pValue < moderatePValue && paperCount >= moderatePapers:
		t = tierModerate
	}

	return types.Recommendation{
		Text:       Text,
		Confidence: t.confidence,
		Strength:   t.strength,
		Grade:      t.grade,
		Rationale: fmt.Sprintf("p=%.4f, %d publications, OS benefit %s months",
			pValue, paperCount, strconv.FormatFloat(medianDiffMonths, 'f', -1, 64)),
	}
}

// MedianDifference returns a minus b, treating a nil median as 0. A median
// that was never reached therefore counts as zero months.
func MedianDifference(a, b *float64) float64 {
	var av, bv float64
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av - bv
}
