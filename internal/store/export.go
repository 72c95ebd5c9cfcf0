// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is a session record with its findings decoded for export.
type ExportEntry struct {
	ID         int64     `json:"id" yaml:"id"`
	SessionID  string    `json:"session_id" yaml:"session_id"`
	Query      string    `json:"query" yaml:"query"`
	CancerType string    `json:"cancer_type" yaml:"cancer_type"`
	Findings   any       `json:"findings" yaml:"findings"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// ExportJSON writes every record of sessionID to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, sessionID string) error {
	entries, err := s.exportEntries(ctx, sessionID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// ExportYAML writes every record of sessionID to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, sessionID string) error {
	entries, err := s.exportEntries(ctx, sessionID)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func (s *Store) exportEntries(ctx context.Context, sessionID string) ([]ExportEntry, error) {
	recs, err := s.Sessions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	entries := make([]ExportEntry, len(recs))
	for i, r := range recs {
		var findings any
		if len(r.Findings) > 0 {
			if err := json.Unmarshal(r.Findings, &findings); err != nil {
				// Findings are opaque; export undecodable payloads verbatim.
				findings = string(r.Findings)
			}
		}
		entries[i] = ExportEntry{
			ID:         r.ID,
			SessionID:  r.SessionID,
			Query:      r.Query,
			CancerType: r.Domain,
			Findings:   findings,
			Timestamp:  r.CreatedAt,
		}
	}
	return entries, nil
}
