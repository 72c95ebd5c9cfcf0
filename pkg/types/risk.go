// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RiskRate is the incidence of one adverse-event category.
type RiskRate struct {
	Category string `json:"category" yaml:"category"`
	Rate     string `json:"rate" yaml:"rate"`
}

// RiskProfile is a reference table of immune-related adverse event rates
// with a monitoring recommendation.
type RiskProfile struct {
	Rates      []RiskRate `json:"rates" yaml:"rates"`
	Monitoring string     `json:"recommendation" yaml:"recommendation"`
}

// Rate returns the rate for category, or "N/A" when the category is absent.
func (p RiskProfile) Rate(category string) string {
	for _, r := range p.Rates {
		if r.Category == category {
			return r.Rate
		}
	}
	return "N/A"
}
