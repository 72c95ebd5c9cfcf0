// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Strength is the qualitative strength of a recommendation.
type Strength string

const (
	StrengthStrong   Strength = "Strong"
	StrengthModerate Strength = "Moderate"
	StrengthWeak     Strength = "Weak"
)

// Label returns the display form, e.g. "Strong recommendation".
func (s Strength) Label() string {
	return string(s) + " recommendation"
}

// Grade is a GRADE-style evidence code.
type Grade string

const (
	Grade1A Grade = "1A"
	Grade1B Grade = "1B"
	Grade2C Grade = "2C"
)

// Recommendation is the scored treatment recommendation derived from the
// survival evidence and literature volume.
type Recommendation struct {
	Text       string   `json:"recommendation" yaml:"recommendation"`
	Confidence float64  `json:"confidence_score" yaml:"confidence_score"`
	Strength   Strength `json:"strength_of_recommendation" yaml:"strength_of_recommendation"`
	Grade      Grade    `json:"grade" yaml:"grade"`
	Rationale  string   `json:"rationale" yaml:"rationale"`
}

// Decision is a reviewer's verdict on a recommendation.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionModify  Decision = "modify"
)

// ReviewDecision records one review of a recommendation. It is created once
// per workflow run.
type ReviewDecision struct {
	Decision  Decision `json:"doctor_decision" yaml:"doctor_decision"`
	Reviewer  string   `json:"doctor_name" yaml:"doctor_name"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`

	// Confidence is the recommendation confidence at review time, rounded
	// to 3 places.
	Confidence float64 `json:"confidence_score" yaml:"confidence_score"`

	Comment string `json:"comment" yaml:"comment"`

	// FinalRecommendation is the recommendation text when approved and the
	// reviewer comment when modified.
	FinalRecommendation string `json:"final_recommendation" yaml:"final_recommendation"`
}

// Approved reports whether the reviewer approved the recommendation.
func (d ReviewDecision) Approved() bool {
	return d.Decision == DecisionApprove
}
