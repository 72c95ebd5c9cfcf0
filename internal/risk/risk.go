// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package risk provides the reference immune-related adverse event (irAE)
// profile attached to every recommendation.
package risk

import "github.com/pdiddy/oncology-cdss/pkg/types"

// Adverse event categories.
const (
	AnyGrade     = "any_grade_irae"
	Grade3to4    = "grade_3_4_irae"
	Endocrine    = "endocrine_irae"
	Pneumonitis  = "pneumonitis"
	Colitis      = "colitis"
	Hepatitis    = "hepatitis"
	monitoringRx = "Initiate thyroid function monitoring at baseline and every 6 weeks"
)

// Profile returns the irAE rates reported for PD-1 blockade in the
// literature, with the baseline monitoring recommendation. Each call
// returns a fresh copy.
func Profile() types.RiskProfile {
	return types.RiskProfile{
		Rates: []types.RiskRate{
			{Category: AnyGrade, Rate: "58%"},
			{Category: Grade3to4, Rate: "18%"},
			{Category: Endocrine, Rate: "42%"},
			{Category: Pneumonitis, Rate: "7%"},
			{Category: Colitis, Rate: "4%"},
			{Category: Hepatitis, Rate: "6%"},
		},
		Monitoring: monitoringRx,
	}
}
