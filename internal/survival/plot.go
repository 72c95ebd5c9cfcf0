// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survival

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// DefaultFigurePath is where the survival plot is written when no path is
// configured.
const DefaultFigurePath = "outputs/figures/km_survival_analysis.png"

// Renderer draws survival curves to an image file.
type Renderer interface {
	Render(path string, arms ...types.ArmSummary) error
}

// PlotRenderer renders step curves with gonum/plot. The file format
// follows the path extension (png, svg, pdf).
type PlotRenderer struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer returns a renderer with a 10x6 inch canvas.
func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{
		Title:  "Kaplan-Meier Overall Survival: Pembrolizumab vs Nivolumab\nAdvanced Melanoma (Simulated Clinical Trial Data)",
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Render writes one step curve per arm to path, creating the parent
// directory. An existing file is overwritten.
func (r *PlotRenderer) Render(path string, arms ...types.ArmSummary) error {
	p := plot.New()
	p.Title.Text = r.Title
	p.X.Label.Text = "Time (months)"
	p.Y.Label.Text = "Overall Survival Probability"
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Add(plotter.NewGrid())
	p.Legend.Top = false
	p.Legend.Left = true

	for i, arm := range arms {
		pts := make(plotter.XYs, 0, len(arm.Curve)+1)
		pts = append(pts, plotter.XY{X: 0, Y: 1})
		for _, cp := range arm.Curve {
			pts = append(pts, plotter.XY{X: cp.Time, Y: cp.Survival})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("building curve for %s: %w", arm.Name, err)
		}
		line.StepStyle = plotter.PostStep
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(arm.Name, line)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating figure directory: %w", err)
	}
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("saving figure: %w", err)
	}
	return nil
}
