// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the clinical decision
// support pipeline: literature hits, survival evidence, recommendations,
// review decisions, risk profiles, and persisted session records.
package types

// LiteratureResult aggregates the papers retrieved for one query.
type LiteratureResult struct {
	// Query is the query text as submitted.
	Query string `json:"query" yaml:"query"`

	// Papers holds clinical-index papers first, then academic-search papers,
	// capped at the configured result limit.
	Papers []Paper `json:"papers" yaml:"papers"`

	// TotalFound counts all papers before the cap is applied.
	TotalFound int `json:"total_found" yaml:"total_found"`

	// ClinicalCount is the number of papers the clinical index returned.
	ClinicalCount int `json:"pubmed_count" yaml:"pubmed_count"`

	// AcademicCount is the number of papers the academic search returned.
	AcademicCount int `json:"scholar_count" yaml:"scholar_count"`

	// SourcesUsed names the backends that were queried.
	SourcesUsed []string `json:"sources_used" yaml:"sources_used"`

	// SourceErrors records per-source failures that were absorbed.
	SourceErrors []string `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`

	// Summary is a human-readable description of what was found.
	Summary string `json:"analysis" yaml:"analysis"`
}
