// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CurvePoint is one step of a Kaplan-Meier survival curve.
type CurvePoint struct {
	// Time is the event time in months.
	Time float64 `json:"time" yaml:"time"`

	// AtRisk is the number of subjects still under observation at Time.
	AtRisk int `json:"at_risk" yaml:"at_risk"`

	// Events is the number of events observed at Time.
	Events int `json:"events" yaml:"events"`

	// Survival is the estimated survival probability just after Time.
	Survival float64 `json:"survival" yaml:"survival"`
}

// ArmSummary describes the survival estimate for one treatment arm.
type ArmSummary struct {
	Name     string `json:"name" yaml:"name"`
	Subjects int    `json:"subjects" yaml:"subjects"`
	Events   int    `json:"events" yaml:"events"`

	// Median is the median survival time in months. Nil means the median
	// was not reached within observed follow-up.
	Median *float64 `json:"median" yaml:"median"`

	Curve []CurvePoint `json:"curve,omitempty" yaml:"curve,omitempty"`
}

// SurvivalEvidence is the output of the survival analysis stage.
type SurvivalEvidence struct {
	// ArmA is the experimental arm; ArmB is the comparator.
	ArmA ArmSummary `json:"arm_a" yaml:"arm_a"`
	ArmB ArmSummary `json:"arm_b" yaml:"arm_b"`

	// TestStatistic is the log-rank chi-square statistic, rounded to 4 places.
	TestStatistic float64 `json:"test_statistic" yaml:"test_statistic"`

	// PValue is the log-rank p-value in [0,1], rounded to 4 places.
	PValue float64 `json:"p_value" yaml:"p_value"`

	// Significant is true when PValue is below the fixed alpha of 0.05.
	Significant bool `json:"significant" yaml:"significant"`

	Interpretation string `json:"interpretation" yaml:"interpretation"`

	// FigurePath is where the survival plot was written.
	FigurePath string `json:"figure_path" yaml:"figure_path"`
}
