// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/recommend"
	"github.com/pdiddy/oncology-cdss/internal/review"
	"github.com/pdiddy/oncology-cdss/internal/risk"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

func f64(v float64) *float64 { return &v }

func approvedReport() *pipeline.Report {
	rec := recommend.Score(0.0083, 18, 22)
	return &pipeline.Report{
		RunID:   "run-1",
		Request: pipeline.Request{Query: "pembrolizumab AND melanoma", Domain: "melanoma", SessionID: "s"},
		Literature: pipeline.LiteratureOutcome{Result: types.LiteratureResult{
			Query:         "pembrolizumab AND melanoma",
			TotalFound:    18,
			ClinicalCount: 12,
			AcademicCount: 6,
			SourcesUsed:   []string{"PubMed", "Google Scholar"},
			Papers: []types.Paper{
				{Title: "Adjuvant pembrolizumab", Source: types.SourceClinicalIndex, Year: 2024,
					Authors: []string{"Long G", "Larkin J", "Robert C", "Hodi F"}, Journal: "NEJM", PMID: "1"},
				{Title: "Scholar hit", Source: types.SourceAcademicSearch, Authors: []string{"X"}},
			},
			Summary: "Retrieved 12 publications from PubMed and 6 from Google Scholar covering recent advances in the specified research area (2023-2025).",
		}},
		Analysis: pipeline.AnalysisOutcome{Evidence: types.SurvivalEvidence{
			ArmA:           types.ArmSummary{Name: "Pembrolizumab", Median: f64(28)},
			ArmB:           types.ArmSummary{Name: "Nivolumab", Median: f64(6)},
			PValue:         0.0083,
			TestStatistic:  6.9681,
			Significant:    true,
			Interpretation: "Log-rank test p-value: 0.0083.",
			FigurePath:     "outputs/figures/km_survival_analysis.png",
		}},
		Recommendation: rec,
		Review: review.Decide(review.Request{Recommendation: rec.Text, Confidence: rec.Confidence, PValue: 0.0083},
			types.DecisionApprove, review.CommentApprove, review.DefaultReviewer, review.DefaultTimestamp),
		Risk: risk.Profile(),
	}
}

func TestWriteTextApproved(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, approvedReport()))
	out := buf.String()

	assert.Contains(t, out, "LITERATURE SEARCH RESULTS")
	assert.Contains(t, out, "Total papers   : 18")
	assert.Contains(t, out, "Sources        : PubMed (12), Google Scholar (6)")
	assert.Contains(t, out, "[1] Adjuvant pembrolizumab")
	assert.Contains(t, out, "Authors: Long G, Larkin J, Robert C et al.")
	assert.Contains(t, out, "Journal: NEJM | PMID: 1")
	assert.Contains(t, out, "Source: Google Scholar | Year: N/A")
	assert.Contains(t, out, "P-value           : 0.0083")
	assert.Contains(t, out, "Median OS (Pembrolizumab): 28 months")
	assert.Contains(t, out, "Strength            : Strong recommendation (GRADE 1A)")
	assert.Contains(t, out, "Confidence Score    : 94.0%")
	assert.Contains(t, out, "APPROVE")
	assert.Contains(t, out, "Grade 3–4 irAE: 18%")
	assert.Contains(t, out, recommend.Text)
}

func TestWriteTextFailedStagesUseNA(t *testing.T) {
	rep := approvedReport()
	rep.Literature = pipeline.LiteratureOutcome{Err: errors.New("search for \"q\" failed")}
	rep.Analysis = pipeline.AnalysisOutcome{Err: errors.New("disk full")}
	rep.Evidence.Substitutions = []string{"p-value 1.0 and no medians: survival analysis failed"}
	rep.Review = types.ReviewDecision{}
	rep.Stages = []pipeline.StageRecord{{Stage: pipeline.StageAnalyze, Status: pipeline.StatusFailed, Error: "disk full"}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "Literature search failed")
	assert.Contains(t, out, "Total papers   : N/A")
	assert.Contains(t, out, "Survival analysis failed: disk full")
	assert.Contains(t, out, "P-value           : N/A")
	assert.Contains(t, out, "Physician Review    : N/A")
	assert.Contains(t, out, "substituted p-value 1.0")
	assert.Contains(t, out, "stage analyze failed: disk full")
}

func TestWriteStructured(t *testing.T) {
	rep := approvedReport()

	var jbuf bytes.Buffer
	require.NoError(t, Write(&jbuf, rep, FormatJSON))
	var m map[string]any
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &m))
	assert.Equal(t, "run-1", m["run_id"])
	assert.Equal(t, "1A", m["recommendation"].(map[string]any)["grade"])

	var ybuf bytes.Buffer
	require.NoError(t, Write(&ybuf, rep, FormatYAML))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &y))
	assert.Equal(t, "run-1", y["run_id"])

	err := Write(&bytes.Buffer{}, rep, "xml")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}
