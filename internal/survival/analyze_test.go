// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survival

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

type recordingRenderer struct {
	path string
	arms []types.ArmSummary
	err  error
}

func (r *recordingRenderer) Render(path string, arms ...types.ArmSummary) error {
	r.path = path
	r.arms = arms
	return r.err
}

func TestAnalyzeEmbeddedDataset(t *testing.T) {
	rr := &recordingRenderer{}
	an := NewAnalyzer(types.AnalysisConfig{FigurePath: "figs/km.png"}, zap.NewNop())
	an.Renderer = rr

	ev, err := an.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.0083, ev.PValue)
	assert.Equal(t, 6.9681, ev.TestStatistic)
	assert.True(t, ev.Significant)
	require.NotNil(t, ev.ArmA.Median)
	require.NotNil(t, ev.ArmB.Median)
	assert.Equal(t, 28.0, *ev.ArmA.Median)
	assert.Equal(t, 6.0, *ev.ArmB.Median)
	assert.Equal(t, "figs/km.png", ev.FigurePath)
	assert.Equal(t, "figs/km.png", rr.path)
	assert.Len(t, rr.arms, 2)
	assert.Equal(t,
		"Log-rank test p-value: 0.0083. The survival difference between treatments is statistically significant (alpha=0.05). "+
			"Median OS for pembrolizumab: 28 months; nivolumab: 6 months.",
		ev.Interpretation)
}

func TestAnalyzeRenderFailure(t *testing.T) {
	an := NewAnalyzer(types.AnalysisConfig{}, nil)
	an.Renderer = &recordingRenderer{err: errors.New("disk full")}

	ev, err := an.Analyze(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, ev.FigurePath)
}

func TestAnalyzeCancelled(t *testing.T) {
	an := NewAnalyzer(types.AnalysisConfig{}, nil)
	an.Renderer = &recordingRenderer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := an.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeDegenerateArms(t *testing.T) {
	an := NewAnalyzer(types.AnalysisConfig{}, nil)
	an.Renderer = &recordingRenderer{}
	an.ArmA = Arm{Name: "A", Durations: []float64{1}, Events: []bool{false}}
	an.ArmB = Arm{Name: "B", Durations: []float64{2}, Events: []bool{false}}

	_, err := an.Analyze(context.Background())
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestAnalyzeWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "km.png")
	an := NewAnalyzer(types.AnalysisConfig{FigurePath: path}, nil)

	ev, err := an.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, ev.FigurePath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestInterpretNotReached(t *testing.T) {
	m := 6.0
	got := Interpret(0.2,
		types.ArmSummary{Name: "Pembrolizumab"},
		types.ArmSummary{Name: "Nivolumab", Median: &m})
	assert.Equal(t,
		"Log-rank test p-value: 0.2000. The survival difference between treatments is not statistically significant (alpha=0.05). "+
			"Median OS for pembrolizumab: Not reached months; nivolumab: 6 months.",
		got)
}

func TestSignificantThreshold(t *testing.T) {
	assert.True(t, Significant(0.0499))
	assert.False(t, Significant(0.05))
	assert.False(t, Significant(1))

	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.Float64Range(0, 1).Draw(rt, "p")
		q := rapid.Float64Range(0, 1).Draw(rt, "q")
		if p <= q && Significant(q) && !Significant(p) {
			rt.Fatalf("significance not monotone: p=%v q=%v", p, q)
		}
	})
}

func TestSummary(t *testing.T) {
	a, b := 28.0, 6.0
	out := Summary(types.SurvivalEvidence{
		ArmA:          types.ArmSummary{Name: "Pembrolizumab", Subjects: 10, Events: 4, Median: &a},
		ArmB:          types.ArmSummary{Name: "Nivolumab", Subjects: 10, Events: 8, Median: &b},
		TestStatistic: 6.9681,
		PValue:        0.0083,
		Significant:   true,
		FigurePath:    "x.png",
	})
	assert.Contains(t, out, "Pembrolizumab: n=10, events=4, median OS 28 months")
	assert.Contains(t, out, "p=0.0083 (significant at alpha=0.05)")
	assert.Contains(t, out, "Figure: x.png")
}
