// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// CancerTypes lists the cancer types offered by the query builder.
var CancerTypes = []string{
	"melanoma",
	"lung cancer",
	"breast cancer",
	"colorectal cancer",
	"prostate cancer",
	"pancreatic cancer",
	"renal cell carcinoma",
}

// ClinicalQuery holds structured query-builder parameters.
type ClinicalQuery struct {
	Treatment  string `json:"treatment" form:"treatment"`
	CancerType string `json:"cancer_type" form:"cancer_type"`
	StartYear  int    `json:"start_year" form:"start_year"`
	EndYear    int    `json:"end_year" form:"end_year"`
}

// String renders the query in the literature search syntax, e.g.
// "pembrolizumab AND melanoma AND (2024/01/01:2025/12/31[PDAT])".
func (q ClinicalQuery) String() string {
	return fmt.Sprintf("%s AND %s AND (%d/01/01:%d/12/31[PDAT])",
		strings.TrimSpace(q.Treatment), strings.TrimSpace(q.CancerType), q.StartYear, q.EndYear)
}

// Validate reports whether the query has the fields needed to run.
func (q ClinicalQuery) Validate() error {
	if strings.TrimSpace(q.Treatment) == "" {
		return fmt.Errorf("treatment is required")
	}
	if strings.TrimSpace(q.CancerType) == "" {
		return fmt.Errorf("cancer type is required")
	}
	if q.StartYear <= 0 || q.EndYear <= 0 {
		return fmt.Errorf("year range is required")
	}
	if q.StartYear > q.EndYear {
		return fmt.Errorf("start year %d is after end year %d", q.StartYear, q.EndYear)
	}
	return nil
}
