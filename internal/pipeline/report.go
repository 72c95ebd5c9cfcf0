// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Stage names a workflow step.
type Stage string

const (
	StageRetrieve Stage = "retrieve"
	StageAnalyze  Stage = "analyze"
	StageScore    Stage = "score"
	StageReview   Stage = "review"
	StagePersist  Stage = "persist"
)

// Stages lists the workflow steps in execution order.
var Stages = []Stage{StageRetrieve, StageAnalyze, StageScore, StageReview, StagePersist}

// Stage outcomes.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// StageRecord is the outcome of one stage.
type StageRecord struct {
	Stage    Stage         `json:"stage" yaml:"stage"`
	Status   string        `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// LiteratureOutcome is the retrieval result or the error that replaced it.
type LiteratureOutcome struct {
	Result types.LiteratureResult `json:"result" yaml:"result"`
	Err    error                  `json:"-" yaml:"-"`
}

// OK reports whether retrieval succeeded.
func (o LiteratureOutcome) OK() bool { return o.Err == nil }

// AnalysisOutcome is the survival evidence or the error that replaced it.
type AnalysisOutcome struct {
	Evidence types.SurvivalEvidence `json:"evidence" yaml:"evidence"`
	Err      error                  `json:"-" yaml:"-"`
}

// OK reports whether the analysis succeeded.
func (o AnalysisOutcome) OK() bool { return o.Err == nil }

// Evidence is the scorer input assembled from both outcomes. Substitutions
// lists every default that replaced a failed stage's value.
type Evidence struct {
	PValue        float64  `json:"p_value" yaml:"p_value"`
	PaperCount    int      `json:"total_papers" yaml:"total_papers"`
	MedianA       *float64 `json:"median_a" yaml:"median_a"`
	MedianB       *float64 `json:"median_b" yaml:"median_b"`
	MedianDiff    float64  `json:"median_diff" yaml:"median_diff"`
	Substitutions []string `json:"substitutions,omitempty" yaml:"substitutions,omitempty"`
}

// Report is everything a run produced. It is returned even when the run
// stops early, with the stages that did not run absent from Stages.
type Report struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Request   Request   `json:"request" yaml:"request"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	Literature     LiteratureOutcome    `json:"literature" yaml:"literature"`
	Analysis       AnalysisOutcome      `json:"analysis" yaml:"analysis"`
	Evidence       Evidence             `json:"evidence" yaml:"evidence"`
	Recommendation types.Recommendation `json:"recommendation" yaml:"recommendation"`
	Review         types.ReviewDecision `json:"doctor_review" yaml:"doctor_review"`
	Risk           types.RiskProfile    `json:"risk_profile" yaml:"risk_profile"`

	// SessionRecordID and ReviewRecordID are zero when nothing was written.
	SessionRecordID int64 `json:"session_record_id,omitempty" yaml:"session_record_id,omitempty"`
	ReviewRecordID  int64 `json:"review_record_id,omitempty" yaml:"review_record_id,omitempty"`

	Stages []StageRecord `json:"stages" yaml:"stages"`
}

// StageStatus returns the recorded status of stage, or "" if it did not run.
func (r *Report) StageStatus(stage Stage) string {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Status
		}
	}
	return ""
}

// Findings builds the persisted session payload. Fields from a failed
// stage are nil.
func (r *Report) Findings() types.SessionFindings {
	f := types.SessionFindings{
		Grade:             r.Recommendation.Grade,
		PhysicianDecision: r.Review.Decision,
		Confidence:        r.Recommendation.Confidence,
	}
	if r.Literature.OK() {
		n := r.Literature.Result.TotalFound
		f.TotalPapers = &n
	}
	if r.Analysis.OK() {
		p := r.Analysis.Evidence.PValue
		f.PValue = &p
	}
	return f
}
