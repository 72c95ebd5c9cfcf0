// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package survival estimates Kaplan-Meier curves for two treatment arms,
// compares them with a log-rank test, and renders the curves to a figure.
package survival

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Alpha is the significance level of the log-rank test.
const Alpha = 0.05

// NotReached is printed in place of a median that was never reached.
const NotReached = "Not reached"

// Significant reports whether p is below Alpha.
func Significant(p float64) bool { return p < Alpha }

// Analyzer runs the survival analysis over two arms.
type Analyzer struct {
	ArmA       Arm
	ArmB       Arm
	FigurePath string
	Renderer   Renderer
	logger     *zap.Logger
}

// NewAnalyzer returns an Analyzer over the embedded dataset that renders
// with gonum/plot.
func NewAnalyzer(cfg types.AnalysisConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a, b := DefaultArms()
	path := cfg.FigurePath
	if path == "" {
		path = DefaultFigurePath
	}
	return &Analyzer{
		ArmA:       a,
		ArmB:       b,
		FigurePath: path,
		Renderer:   NewPlotRenderer(),
		logger:     logger.With(zap.String("component", "survival")),
	}
}

// Analyze estimates both curves, runs the log-rank test, and writes the
// figure. Any failure, including a failed render, returns an error and no
// evidence.
func (an *Analyzer) Analyze(ctx context.Context) (types.SurvivalEvidence, error) {
	if err := ctx.Err(); err != nil {
		return types.SurvivalEvidence{}, err
	}
	logger := an.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	armA, err := summarize(an.ArmA)
	if err != nil {
		return types.SurvivalEvidence{}, err
	}
	armB, err := summarize(an.ArmB)
	if err != nil {
		return types.SurvivalEvidence{}, err
	}

	stat, p, err := LogRank(an.ArmA, an.ArmB)
	if err != nil {
		return types.SurvivalEvidence{}, fmt.Errorf("log-rank test: %w", err)
	}

	if an.Renderer == nil {
		return types.SurvivalEvidence{}, fmt.Errorf("no figure renderer configured")
	}
	if err := an.Renderer.Render(an.FigurePath, armA, armB); err != nil {
		return types.SurvivalEvidence{}, fmt.Errorf("rendering survival figure: %w", err)
	}

	// Significance is judged on the reported value so the flag and the
	// printed p-value never disagree.
	p = round4(p)
	ev := types.SurvivalEvidence{
		ArmA:          armA,
		ArmB:          armB,
		TestStatistic: round4(stat),
		PValue:        p,
		Significant:   Significant(p),
		FigurePath:    an.FigurePath,
	}
	ev.Interpretation = Interpret(p, armA, armB)

	logger.Info("survival analysis completed",
		zap.Float64("p_value", ev.PValue),
		zap.Float64("test_statistic", ev.TestStatistic),
		zap.String("figure", ev.FigurePath),
	)
	return ev, nil
}

func summarize(arm Arm) (types.ArmSummary, error) {
	curve, err := KaplanMeier(arm.Durations, arm.Events)
	if err != nil {
		return types.ArmSummary{}, fmt.Errorf("arm %q: %w", arm.Name, err)
	}
	return types.ArmSummary{
		Name:     arm.Name,
		Subjects: curve.Subjects,
		Events:   curve.Events,
		Median:   curve.Median(),
		Curve:    curve.Points,
	}, nil
}

// Interpret renders the one-paragraph reading of the test result.
func Interpret(p float64, a, b types.ArmSummary) string {
	label := "not statistically significant"
	if Significant(p) {
		label = "statistically significant"
	}
	return fmt.Sprintf(
		"Log-rank test p-value: %.4f. The survival difference between treatments is %s (alpha=0.05). "+
			"Median OS for %s: %s months; %s: %s months.",
		p, label,
		strings.ToLower(a.Name), FormatMedian(a.Median),
		strings.ToLower(b.Name), FormatMedian(b.Median),
	)
}

// FormatMedian prints a median in months, or NotReached for nil.
func FormatMedian(m *float64) string {
	if m == nil {
		return NotReached
	}
	return strconv.FormatFloat(*m, 'f', -1, 64)
}

// Summary renders the analysis block shown in run reports.
func Summary(ev types.SurvivalEvidence) string {
	var b strings.Builder
	for _, arm := range []types.ArmSummary{ev.ArmA, ev.ArmB} {
		fmt.Fprintf(&b, "%s: n=%d, events=%d, median OS %s months\n",
			arm.Name, arm.Subjects, arm.Events, FormatMedian(arm.Median))
	}
	verdict := "not significant"
	if ev.Significant {
		verdict = "significant"
	}
	fmt.Fprintf(&b, "Log-rank chi-square %.4f, p=%.4f (%s at alpha=%.2f)\n",
		ev.TestStatistic, ev.PValue, verdict, Alpha)
	if ev.FigurePath != "" {
		fmt.Fprintf(&b, "Figure: %s\n", ev.FigurePath)
	}
	return b.String()
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
