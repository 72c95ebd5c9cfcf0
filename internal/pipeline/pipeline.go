// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the clinical decision workflow:
// retrieve, analyze, score, review, persist.
//
// Stages run one after another. Retrieval and analysis failures are
// absorbed with explicit, logged defaults (zero papers, p-value 1.0) so
// the run always reaches review. A review or persistence failure stops
// the run and is returned to the caller along with the partial report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/internal/metrics"
	"github.com/pdiddy/oncology-cdss/internal/recommend"
	"github.com/pdiddy/oncology-cdss/internal/review"
	"github.com/pdiddy/oncology-cdss/internal/risk"
	"github.com/pdiddy/oncology-cdss/internal/store"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// DefaultPValue replaces the p-value when the analysis fails.
const DefaultPValue = 1.0

// Searcher retrieves literature for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (types.LiteratureResult, error)
}

// Analyzer produces survival evidence.
type Analyzer interface {
	Analyze(ctx context.Context) (types.SurvivalEvidence, error)
}

// Store appends session and review records.
type Store interface {
	AppendSession(ctx context.Context, sessionID, query, domain string, findings any) (int64, error)
	AppendReview(ctx context.Context, sessionID, decision, reviewer, comment string) (int64, error)
}

// Request identifies one run.
type Request struct {
	Query           string `json:"query" yaml:"query"`
	Domain          string `json:"cancer_type" yaml:"cancer_type"`
	SessionID       string `json:"session_id" yaml:"session_id"`
	ReviewSessionID string `json:"review_session_id" yaml:"review_session_id"`
}

// Supervisor wires the stages together. All collaborators are injected.
type Supervisor struct {
	searcher Searcher
	analyzer Analyzer
	reviewer review.Reviewer
	store    Store
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics reports every stage to c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Supervisor) { s.metrics = c }
}

// WithClock overrides the clock used for timings.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) { s.now = now }
}

// New creates a Supervisor. A nil store skips the persist stage.
func New(searcher Searcher, analyzer Analyzer, reviewer review.Reviewer, st Store, opts ...Option) *Supervisor {
	s := &Supervisor{
		searcher: searcher,
		analyzer: analyzer,
		reviewer: reviewer,
		store:    st,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(zap.String("component", "supervisor"))
	return s
}

// Run executes one workflow. The returned report is never nil; err is set
// when review or persistence failed.
func (s *Supervisor) Run(ctx context.Context, req Request) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		Request:   req,
		StartedAt: s.now().UTC(),
		Risk:      risk.Profile(),
	}
	logger := s.logger.With(zap.String("run_id", rep.RunID))
	logger.Info("starting clinical research workflow", zap.String("query", req.Query))

	if req.SessionID == "" {
		return rep, errors.New("session id is required")
	}

	s.stage(rep, StageRetrieve, func() (string, error) {
		res, err := s.searcher.Search(ctx, req.Query)
		rep.Literature = LiteratureOutcome{Result: res, Err: err}
		if err != nil {
			return StatusFailed, err
		}
		if s.metrics != nil {
			s.metrics.RecordPapers("clinical", res.ClinicalCount)
			s.metrics.RecordPapers("academic", res.AcademicCount)
		}
		if len(res.SourceErrors) > 0 {
			return StatusDegraded, nil
		}
		return StatusOK, nil
	})

	s.stage(rep, StageAnalyze, func() (string, error) {
		ev, err := s.analyzer.Analyze(ctx)
		rep.Analysis = AnalysisOutcome{Evidence: ev, Err: err}
		if err != nil {
			return StatusFailed, err
		}
		return StatusOK, nil
	})

	s.stage(rep, StageScore, func() (string, error) {
		rep.Evidence = s.evidence(logger, rep)
		rep.Recommendation = recommend.Score(rep.Evidence.PValue, rep.Evidence.PaperCount, rep.Evidence.MedianDiff)
		if s.metrics != nil {
			s.metrics.RecordRecommendation(string(rep.Recommendation.Grade))
		}
		logger.Info("recommendation scored",
			zap.String("grade", string(rep.Recommendation.Grade)),
			zap.Float64("confidence", rep.Recommendation.Confidence))
		return StatusOK, nil
	})

	var reviewErr error
	s.stage(rep, StageReview, func() (string, error) {
		d, err := s.reviewer.Review(ctx, review.Request{
			Recommendation: rep.Recommendation.Text,
			Confidence:     rep.Recommendation.Confidence,
			PValue:         rep.Evidence.PValue,
		})
		if err != nil {
			reviewErr = err
			return StatusFailed, err
		}
		rep.Review = d
		if s.metrics != nil {
			s.metrics.RecordReview(string(d.Decision))
		}
		logger.Info("physician decision", zap.String("decision", string(d.Decision)))
		return StatusOK, nil
	})
	if reviewErr != nil {
		return rep, fmt.Errorf("review: %w", reviewErr)
	}

	var persistErr error
	s.stage(rep, StagePersist, func() (string, error) {
		if s.store == nil {
			return StatusSkipped, nil
		}
		persistErr = s.persist(ctx, rep)
		if persistErr != nil {
			return StatusFailed, persistErr
		}
		return StatusOK, nil
	})
	if persistErr != nil {
		return rep, fmt.Errorf("persist: %w", persistErr)
	}

	logger.Info("clinical workflow completed and archived",
		zap.Int64("session_record_id", rep.SessionRecordID))
	return rep, nil
}

// stage times fn, records its outcome, and reports it to metrics.
func (s *Supervisor) stage(rep *Report, stage Stage, fn func() (string, error)) {
	start := s.now()
	status, err := fn()
	rec := StageRecord{Stage: stage, Status: status, Duration: s.now().Sub(start)}
	if err != nil {
		rec.Error = err.Error()
		s.logger.Warn("stage failed",
			zap.String("run_id", rep.RunID), zap.String("stage", string(stage)), zap.Error(err))
	}
	rep.Stages = append(rep.Stages, rec)
	if s.metrics != nil {
		s.metrics.RecordStage(string(stage), status, rec.Duration)
	}
}

// evidence assembles scorer inputs, substituting defaults for failed
// stages. Every substitution is logged and recorded.
func (s *Supervisor) evidence(logger *zap.Logger, rep *Report) Evidence {
	ev := Evidence{PValue: DefaultPValue}

	if rep.Literature.OK() {
		ev.PaperCount = rep.Literature.Result.TotalFound
	} else {
		ev.Substitutions = append(ev.Substitutions, "paper count 0: literature retrieval failed")
		logger.Warn("substituting paper count 0", zap.Error(rep.Literature.Err))
	}

	if rep.Analysis.OK() {
		ev.PValue = rep.Analysis.Evidence.PValue
		ev.MedianA = rep.Analysis.Evidence.ArmA.Median
		ev.MedianB = rep.Analysis.Evidence.ArmB.Median
	} else {
		ev.Substitutions = append(ev.Substitutions, "p-value 1.0 and no medians: survival analysis failed")
		logger.Warn("substituting p-value 1.0", zap.Error(rep.Analysis.Err))
	}

	ev.MedianDiff = recommend.MedianDifference(ev.MedianA, ev.MedianB)
	return ev
}

// persist writes the approval log entry (approve only) and then the
// session record. The first failure stops the stage.
func (s *Supervisor) persist(ctx context.Context, rep *Report) error {
	if rep.Review.Approved() {
		id, err := s.store.AppendReview(ctx, rep.Request.ReviewSessionID,
			store.ReviewApproved, rep.Review.Reviewer, store.ReviewComment)
		if s.metrics != nil {
			s.metrics.RecordStoreWrite("review", err)
		}
		if err != nil {
			return fmt.Errorf("logging physician approval: %w", err)
		}
		rep.ReviewRecordID = id
	}

	id, err := s.store.AppendSession(ctx, rep.Request.SessionID, rep.Request.Query, rep.Request.Domain, rep.Findings())
	if s.metrics != nil {
		s.metrics.RecordStoreWrite("session", err)
	}
	if err != nil {
		return fmt.Errorf("saving research session: %w", err)
	}
	rep.SessionRecordID = id
	return nil
}
