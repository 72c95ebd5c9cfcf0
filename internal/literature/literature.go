// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package literature retrieves papers from a clinical-publication index and
// a general academic search engine and merges them into a single result.
//
// Each source fails closed: a source that errors contributes zero papers and
// the search still succeeds. Only a failure of the whole operation (empty
// query, cancelled context) is returned as an error.
package literature

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Default limits for the two lookups and the merged list.
const (
	DefaultClinicalMaxResults = 12
	DefaultAcademicMaxResults = 6
	DefaultMinYear            = 2023
	DefaultMaxYear            = 2025
	DefaultAcademicYearFrom   = 2024
	DefaultAcademicYearTo     = 2025
	DefaultResultCap          = 20
	DefaultUserAgent          = "oncology-cdss/0.1"
	DefaultTimeout            = 12 * time.Second
)

// NoResultsSummary is the summary text when neither source found anything.
const NoResultsSummary = "No publications found matching the query criteria."

// Source searches a single literature backend. Implementations normalize
// every hit into a types.Paper.
type Source interface {
	// Name is the display name used in summaries (e.g. "PubMed").
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
}

// SearchError reports a failure of the search as a whole. It echoes the
// query that was submitted.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("literature search for %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Searcher queries a clinical source and an academic source in turn and
// aggregates their papers.
type Searcher struct {
	clinical Source
	academic Source
	cfg      types.LiteratureConfig
	logger   *zap.Logger
}

// NewSearcher creates a Searcher over the given sources. Zero-valued limits
// in cfg are replaced with the package defaults.
func NewSearcher(clinical, academic Source, cfg types.LiteratureConfig, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		clinical: clinical,
		academic: academic,
		cfg:      WithDefaults(cfg),
		logger:   logger.With(zap.String("component", "literature")),
	}
}

// NewSearcherFromConfig builds the configured sources over a shared HTTP
// client and returns a Searcher.
func NewSearcherFromConfig(cfg types.LiteratureConfig, logger *zap.Logger) *Searcher {
	cfg = WithDefaults(cfg)
	client := &http.Client{Timeout: cfg.Timeout}

	clinical := &PubMedSource{
		Client:    client,
		UserAgent: cfg.UserAgent,
		APIKey:    cfg.NCBIAPIKey,
		Email:     cfg.NCBIEmail,
		MinYear:   cfg.MinYear,
		MaxYear:   cfg.MaxYear,
	}

	var academic Source
	switch cfg.AcademicBackend {
	case types.AcademicBackendSemanticScholar:
		academic = &SemanticScholarSource{
			Client:    client,
			UserAgent: cfg.UserAgent,
			APIKey:    cfg.SemanticScholarAPIKey,
			YearFrom:  cfg.AcademicYearFrom,
			YearTo:    cfg.AcademicYearTo,
		}
	default:
		academic = &ScholarSource{
			Client:   client,
			YearFrom: cfg.AcademicYearFrom,
			YearTo:   cfg.AcademicYearTo,
		}
	}

	return NewSearcher(clinical, academic, cfg, logger)
}

// WithDefaults fills zero-valued fields of cfg.
func WithDefaults(cfg types.LiteratureConfig) types.LiteratureConfig {
	if cfg.ClinicalMaxResults <= 0 {
		cfg.ClinicalMaxResults = DefaultClinicalMaxResults
	}
	if cfg.AcademicMaxResults <= 0 {
		cfg.AcademicMaxResults = DefaultAcademicMaxResults
	}
	if cfg.MinYear <= 0 {
		cfg.MinYear = DefaultMinYear
	}
	if cfg.MaxYear <= 0 {
		cfg.MaxYear = DefaultMaxYear
	}
	if cfg.AcademicYearFrom <= 0 {
		cfg.AcademicYearFrom = DefaultAcademicYearFrom
	}
	if cfg.AcademicYearTo <= 0 {
		cfg.AcademicYearTo = DefaultAcademicYearTo
	}
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = DefaultResultCap
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AcademicBackend == "" {
		cfg.AcademicBackend = types.AcademicBackendScholar
	}
	return cfg
}

// Search runs the clinical lookup, then the academic lookup, and merges the
// results. Clinical papers always precede academic papers. The merged list
// is capped at cfg.ResultCap; the per-source counts and TotalFound are taken
// before the cap.
func (s *Searcher) Search(ctx context.Context, query string) (types.LiteratureResult, error) {
	if strings.TrimSpace(query) == "" {
		return types.LiteratureResult{}, &SearchError{Query: query, Err: fmt.Errorf("query is empty")}
	}
	if err := ctx.Err(); err != nil {
		return types.LiteratureResult{}, &SearchError{Query: query, Err: err}
	}

	s.logger.Info("executing dual-source search", zap.String("query", query))

	result := types.LiteratureResult{Query: query}

	clinical := s.lookup(ctx, s.clinical, query, s.cfg.ClinicalMaxResults, &result)
	for i := range clinical {
		clinical[i].Source = types.SourceClinicalIndex
	}
	academic := s.lookup(ctx, s.academic, query, s.cfg.AcademicMaxResults, &result)

	// A cancellation during the lookups means neither count can be trusted.
	if err := ctx.Err(); err != nil {
		return types.LiteratureResult{}, &SearchError{Query: query, Err: err}
	}

	all := make([]types.Paper, 0, len(clinical)+len(academic))
	all = append(all, clinical...)
	all = append(all, academic...)

	result.ClinicalCount = len(clinical)
	result.AcademicCount = len(academic)
	result.TotalFound = len(all)
	if len(all) > s.cfg.ResultCap {
		all = all[:s.cfg.ResultCap]
	}
	result.Papers = all
	result.Summary = Summarize(
		sourceName(s.clinical), result.ClinicalCount,
		sourceName(s.academic), result.AcademicCount,
		s.cfg.MinYear, s.cfg.MaxYear,
	)

	s.logger.Info("literature search complete",
		zap.Int("pubmed_count", result.ClinicalCount),
		zap.Int("scholar_count", result.AcademicCount),
		zap.Int("total_found", result.TotalFound),
	)
	return result, nil
}

// lookup queries one source and absorbs its failure.
func (s *Searcher) lookup(ctx context.Context, src Source, query string, limit int, result *types.LiteratureResult) []types.Paper {
	if src == nil {
		return nil
	}
	result.SourcesUsed = append(result.SourcesUsed, src.Name())

	papers, err := src.Search(ctx, query, limit)
	if err != nil {
		s.logger.Warn("source failed, contributing zero papers",
			zap.String("source", src.Name()), zap.Error(err))
		result.SourceErrors = append(result.SourceErrors, fmt.Sprintf("%s: %v", src.Name(), err))
		return nil
	}
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers
}

// Summarize builds the human-readable search summary.
func Summarize(clinicalName string, clinicalCount int, academicName string, academicCount int, minYear, maxYear int) string {
	var parts []string
	if clinicalCount > 0 {
		parts = append(parts, fmt.Sprintf("%d publications from %s", clinicalCount, clinicalName))
	}
	if academicCount > 0 {
		parts = append(parts, fmt.Sprintf("%d from %s", academicCount, academicName))
	}
	if len(parts) == 0 {
		return NoResultsSummary
	}
	return fmt.Sprintf("Retrieved %s covering recent advances in the specified research area (%d-%d).",
		strings.Join(parts, " and "), minYear, maxYear)
}

func sourceName(src Source) string {
	if src == nil {
		return ""
	}
	return src.Name()
}
