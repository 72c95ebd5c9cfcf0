// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review gates a scored recommendation behind a physician review.
//
// Gate is the fixed approval policy. A Reviewer produces the review record:
// Simulated applies the policy under a stand-in identity, Console asks a
// person at a terminal and offers the policy outcome as the default.
package review

import (
	"context"
	"math"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Policy thresholds.
const (
	MinConfidence = 0.70
	MaxPValue     = 0.05
)

// Fixed review comments.
const (
	CommentLowConfidence = "Confidence too low. Recommend reducing pembrolizumab dose or adding corticosteroid prophylaxis."
	CommentWeakEvidence  = "Evidence not strong enough for first-line recommendation. Suggest clinical trial enrollment."
	CommentApprove       = "Strong evidence and acceptable safety profile. Proceed with recommendation."
)

// Defaults for the simulated reviewer.
const (
	DefaultReviewer  = "Dr. Sarah Johnson, MD – Medical Oncology"
	DefaultTimestamp = "2025-11-27 14:32"
)

// TimestampLayout is the format of review timestamps.
const TimestampLayout = "2006-01-02 15:04"

// Request is what a reviewer sees.
type Request struct {
	Recommendation string
	Confidence     float64
	PValue         float64
}

// Reviewer reviews a recommendation and returns the decision record.
type Reviewer interface {
	Review(ctx context.Context, req Request) (types.ReviewDecision, error)
}

// Gate applies the approval policy, first match wins: low confidence,
// then weak evidence, then approve.
func Gate(req Request) (types.Decision, string) {
	switch {
	case req.Confidence < MinConfidence:
		return types.DecisionModify, CommentLowConfidence
	case req.PValue > MaxPValue:
		return types.DecisionModify, CommentWeakEvidence
	default:
		return types.DecisionApprove, CommentApprove
	}
}

// Decide builds the review record for a decision and comment. On modify the
// comment doubles as the final recommendation.
func Decide(req Request, decision types.Decision, comment, reviewer, timestamp string) types.ReviewDecision {
	final := comment
	if decision == types.DecisionApprove {
		final = req.Recommendation
	}
	return types.ReviewDecision{
		Decision:            decision,
		Reviewer:            reviewer,
		Timestamp:           timestamp,
		Confidence:          math.Round(req.Confidence*1000) / 1000,
		Comment:             comment,
		FinalRecommendation: final,
	}
}

// Simulated is a deterministic reviewer that applies Gate under a fixed
// identity and timestamp.
type Simulated struct {
	Name      string
	Timestamp string
}

// Review applies Gate. It never fails.
func (s Simulated) Review(ctx context.Context, req Request) (types.ReviewDecision, error) {
	if err := ctx.Err(); err != nil {
		return types.ReviewDecision{}, err
	}
	name, ts := s.Name, s.Timestamp
	if name == "" {
		name = DefaultReviewer
	}
	if ts == "" {
		ts = DefaultTimestamp
	}
	decision, comment := Gate(req)
	return Decide(req, decision, comment, name, ts), nil
}
