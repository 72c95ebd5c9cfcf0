// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/risk"
	"github.com/pdiddy/oncology-cdss/internal/survival"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

const notAvailable = "N/A"

type indexView struct {
	CancerTypes []string
	FromYears   []int
	ToYears     []int
	Query       types.ClinicalQuery
	Preview     string
	Error       string
	Recent      []types.SessionRecord
}

type resultView struct {
	Query  string
	Report *pipeline.Report
	Error  string
}

// TopPapers returns the papers shown on the results page.
func (v resultView) TopPapers() []types.Paper {
	if v.Report == nil {
		return nil
	}
	papers := v.Report.Literature.Result.Papers
	if len(papers) > 6 {
		papers = papers[:6]
	}
	return papers
}

var viewFuncs = template.FuncMap{
	"median": func(m *float64) string {
		if m == nil {
			return notAvailable
		}
		return survival.FormatMedian(m)
	},
	"percent": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f*100)
	},
	"pvalue": func(p float64) string {
		return fmt.Sprintf("%.4f", p)
	},
	"year": func(y int) string {
		if y <= 0 {
			return notAvailable
		}
		return strconv.Itoa(y)
	},
	"authors": func(a []string) string {
		switch {
		case len(a) == 0:
			return types.UnknownAuthor
		case len(a) <= 3:
			return strings.Join(a, ", ")
		default:
			return strings.Join(a[:3], ", ") + " et al."
		}
	},
	"grade34": func(p types.RiskProfile) string {
		return p.Rate(risk.Grade3to4)
	},
}
