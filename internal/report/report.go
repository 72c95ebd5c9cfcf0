// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a workflow run for people (text) and for other
// tools (JSON, YAML). Missing values print as N/A.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/risk"
	"github.com/pdiddy/oncology-cdss/internal/survival"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// NA is printed for values a failed stage did not produce.
const NA = "N/A"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TopPublications is how many papers the text report lists.
const TopPublications = 6

const ruleWidth = 70

// Write renders rep in the given format.
func Write(w io.Writer, rep *pipeline.Report, format string) error {
	switch format {
	case "", FormatText:
		return WriteText(w, rep)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatYAML:
		return WriteYAML(w, rep)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteYAML writes rep as YAML.
func WriteYAML(w io.Writer, rep *pipeline.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

type styles struct {
	heading lipgloss.Style
	sub     lipgloss.Style
	warn    lipgloss.Style
	good    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		sub:     r.NewStyle().Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
	}
}

// WriteText writes the human-readable report.
func WriteText(w io.Writer, rep *pipeline.Report) error {
	st := newStyles(w)
	var b strings.Builder

	writeLiterature(&b, st, rep)
	writeAnalysis(&b, st, rep)
	writeDecision(&b, st, rep)
	writeStages(&b, st, rep)

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, st styles, title string) {
	rule := strings.Repeat("═", ruleWidth)
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", rule, st.heading.Render(title), rule)
}

func subsection(b *strings.Builder, st styles, title string) {
	rule := strings.Repeat("-", ruleWidth)
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", rule, st.sub.Render(title), rule)
}

func writeLiterature(b *strings.Builder, st styles, rep *pipeline.Report) {
	section(b, st, "LITERATURE SEARCH RESULTS")
	fmt.Fprintf(b, "\nQuery          : %s\n", rep.Request.Query)

	if !rep.Literature.OK() {
		fmt.Fprintf(b, "%s\n", st.warn.Render("Literature search failed: "+rep.Literature.Err.Error()))
		fmt.Fprintf(b, "Total papers   : %s\n", NA)
		return
	}

	res := rep.Literature.Result
	fmt.Fprintf(b, "Total papers   : %d\n", res.TotalFound)
	fmt.Fprintf(b, "Sources        : %s (%d), %s (%d)\n",
		types.SourceClinicalIndex, res.ClinicalCount, academicName(res), res.AcademicCount)
	for _, e := range res.SourceErrors {
		fmt.Fprintf(b, "%s\n", st.warn.Render("warning: "+e))
	}

	if len(res.Papers) > 0 {
		subsection(b, st, "TOP PUBLICATIONS")
		for i, p := range res.Papers {
			if i == TopPublications {
				break
			}
			fmt.Fprintf(b, "\n[%d] %s\n", i+1, p.Title)
			fmt.Fprintf(b, "    Source: %s | Year: %s\n", orNA(string(p.Source)), yearOrNA(p.Year))
			if p.Source == types.SourceClinicalIndex {
				fmt.Fprintf(b, "    Authors: %s\n", shortAuthors(p.Authors))
				fmt.Fprintf(b, "    Journal: %s | PMID: %s\n", orNA(p.Journal), orNA(p.PMID))
			}
		}
	}

	subsection(b, st, "SEARCH SUMMARY")
	fmt.Fprintln(b, orNA(res.Summary))
}

func writeAnalysis(b *strings.Builder, st styles, rep *pipeline.Report) {
	section(b, st, "STATISTICAL SURVIVAL ANALYSIS")
	if !rep.Analysis.OK() {
		fmt.Fprintf(b, "%s\n", st.warn.Render("Survival analysis failed: "+rep.Analysis.Err.Error()))
		fmt.Fprintf(b, "P-value           : %s\n", NA)
		fmt.Fprintf(b, "Median OS         : %s\n", NA)
		return
	}

	ev := rep.Analysis.Evidence
	fmt.Fprintf(b, "Comparison        : %s vs %s\n", ev.ArmA.Name, ev.ArmB.Name)
	fmt.Fprintf(b, "Statistical test  : Log-rank test\n")
	fmt.Fprintf(b, "P-value           : %.4f\n", ev.PValue)
	fmt.Fprintf(b, "Test statistic    : %.4f\n", ev.TestStatistic)
	fmt.Fprintf(b, "Median OS (%s): %s months\n", ev.ArmA.Name, medianOrNA(ev.ArmA.Median))
	fmt.Fprintf(b, "Median OS (%s): %s months\n", ev.ArmB.Name, medianOrNA(ev.ArmB.Median))
	fmt.Fprintf(b, "\nInterpretation:\n%s\n", ev.Interpretation)
	fmt.Fprintf(b, "\nFigure saved at: %s\n", orNA(ev.FigurePath))
}

func writeDecision(b *strings.Builder, st styles, rep *pipeline.Report) {
	section(b, st, "CLINICAL DECISION SUPPORT REPORT")

	rec := rep.Recommendation
	rv := rep.Review
	final := rv.FinalRecommendation
	if final == "" {
		final = rec.Text
	}
	fmt.Fprintf(b, "\nRecommendation      : %s\n", orNA(final))
	fmt.Fprintf(b, "Strength            : %s (GRADE %s)\n", rec.Strength.Label(), orNA(string(rec.Grade)))
	fmt.Fprintf(b, "Confidence Score    : %.1f%%\n", rec.Confidence*100)
	fmt.Fprintf(b, "Rationale           : %s\n", orNA(rec.Rationale))
	for _, s := range rep.Evidence.Substitutions {
		fmt.Fprintf(b, "%s\n", st.warn.Render("substituted "+s))
	}

	decision := NA
	if rv.Decision != "" {
		style := st.warn
		if rv.Approved() {
			style = st.good
		}
		decision = style.Render(strings.ToUpper(string(rv.Decision)))
	}
	fmt.Fprintf(b, "\nPhysician Review    : %s\n", decision)
	fmt.Fprintf(b, "Reviewing Physician : %s\n", orNA(rv.Reviewer))
	fmt.Fprintf(b, "Comment             : %s\n", orNA(rv.Comment))

	fmt.Fprintf(b, "\nAdverse Event Risk  : Grade 3–4 irAE: %s\n", rep.Risk.Rate(risk.Grade3to4))
	fmt.Fprintf(b, "Monitoring Advice   : %s\n", orNA(rep.Risk.Monitoring))
	fmt.Fprintln(b, strings.Repeat("═", ruleWidth))
}

func writeStages(b *strings.Builder, st styles, rep *pipeline.Report) {
	var failed []pipeline.StageRecord
	for _, s := range rep.Stages {
		if s.Error != "" {
			failed = append(failed, s)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(b)
	for _, s := range failed {
		fmt.Fprintf(b, "%s\n", st.warn.Render(fmt.Sprintf("stage %s %s: %s", s.Stage, s.Status, s.Error)))
	}
}

func academicName(res types.LiteratureResult) string {
	if len(res.SourcesUsed) > 1 {
		return res.SourcesUsed[1]
	}
	return string(types.SourceAcademicSearch)
}

func shortAuthors(authors []string) string {
	if len(authors) == 0 {
		return types.UnknownAuthor
	}
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + " et al."
}

func orNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}

func yearOrNA(y int) string {
	if y <= 0 {
		return NA
	}
	return strconv.Itoa(y)
}

func medianOrNA(m *float64) string {
	if m == nil {
		return NA
	}
	return survival.FormatMedian(m)
}
