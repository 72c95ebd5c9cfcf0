// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// Domain label used for review-only session records.
const DomainClinicalDecision = "clinical_decision"

// SessionRecord is one persisted row of the session log. Rows are appended
// and never updated; SessionID is not unique.
type SessionRecord struct {
	ID        int64           `json:"id" yaml:"id"`
	SessionID string          `json:"session_id" yaml:"session_id"`
	Query     string          `json:"query" yaml:"query"`
	Domain    string          `json:"cancer_type" yaml:"cancer_type"`
	Findings  json.RawMessage `json:"findings" yaml:"-"`
	CreatedAt time.Time       `json:"timestamp" yaml:"timestamp"`
}

// SessionFindings is the payload stored for a completed workflow run.
// Pointer fields are nil when the stage that produces them failed.
type SessionFindings struct {
	TotalPapers       *int     `json:"total_papers"`
	PValue            *float64 `json:"p_value"`
	Grade             Grade    `json:"grade"`
	PhysicianDecision Decision `json:"physician_decision"`
	Confidence        float64  `json:"confidence"`
}

// ReviewFindings is the payload stored for an approval log entry.
type ReviewFindings struct {
	Decision  string `json:"decision"`
	Doctor    string `json:"doctor"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
}
