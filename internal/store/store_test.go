// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory", "test.db")
	s, err := Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestAppendSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := types.SessionFindings{
		TotalPapers:       intPtr(18),
		PValue:            floatPtr(0.0083),
		Grade:             types.Grade1A,
		PhysicianDecision: types.DecisionApprove,
		Confidence:        0.94,
	}
	id, err := s.AppendSession(ctx, "melanoma_workflow_2025", "pembrolizumab AND melanoma", "melanoma", in)
	require.NoError(t, err)
	assert.Positive(t, id)

	rec, err := s.Session(ctx, "melanoma_workflow_2025")
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "pembrolizumab AND melanoma", rec.Query)
	assert.Equal(t, "melanoma", rec.Domain)
	assert.False(t, rec.CreatedAt.IsZero())

	var out types.SessionFindings
	require.NoError(t, json.Unmarshal(rec.Findings, &out))
	assert.Equal(t, in, out)
}

func TestAppendIsNotOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.AppendSession(ctx, "dup", "q1", "melanoma", map[string]int{"n": 1})
	require.NoError(t, err)
	id2, err := s.AppendSession(ctx, "dup", "q2", "melanoma", map[string]int{"n": 2})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	recs, err := s.Sessions(ctx, "dup")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "q1", recs[0].Query)
	assert.Equal(t, "q2", recs[1].Query)

	first, err := s.Session(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, id1, first.ID)
}

func TestAppendReview(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 11, 27, 14, 32, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := s.AppendReview(ctx, "melanoma_clinical_review_2025", ReviewApproved, "Dr. Sarah Johnson", ReviewComment)
	require.NoError(t, err)

	rec, err := s.Session(ctx, "melanoma_clinical_review_2025")
	require.NoError(t, err)
	assert.Equal(t, ReviewQuery, rec.Query)
	assert.Equal(t, types.DomainClinicalDecision, rec.Domain)

	var rf types.ReviewFindings
	require.NoError(t, json.Unmarshal(rec.Findings, &rf))
	assert.Equal(t, types.ReviewFindings{
		Decision:  "approved",
		Doctor:    "Dr. Sarah Johnson",
		Comment:   "Approved via Doctor-in-the-Loop system",
		Timestamp: "2025-11-27T14:32:00Z",
	}, rf)
}

func TestSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Session(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.AppendSession(ctx, id, "q", "melanoma", nil)
		require.NoError(t, err)
	}

	recs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].SessionID)
	assert.Equal(t, "b", recs[1].SessionID)
}

func TestExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AppendSession(ctx, "exp", "q", "melanoma", map[string]any{"grade": "1A"})
	require.NoError(t, err)

	var jbuf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &jbuf, "exp"))
	var jentries []map[string]any
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &jentries))
	require.Len(t, jentries, 1)
	assert.Equal(t, "1A", jentries[0]["findings"].(map[string]any)["grade"])

	var ybuf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &ybuf, "exp"))
	var yentries []map[string]any
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &yentries))
	require.Len(t, yentries, 1)
	assert.Equal(t, "melanoma", yentries[0]["cancer_type"])

	err = s.ExportJSON(ctx, &jbuf, "none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, DialectSQLite, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO research_memory").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = s.AppendSession(context.Background(), "s", "q", "melanoma", map[string]int{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitFailureIsReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, DialectPostgres, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO research_memory .* VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id`).
		WithArgs("s", ReviewQuery, types.DomainClinicalDecision, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	_, err = s.AppendReview(context.Background(), "s", ReviewApproved, "Dr. X", ReviewComment)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "committing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		driver  string
		source  string
		dialect Dialect
	}{
		{"", "sqlite3", DefaultPath, DialectSQLite},
		{"sqlite:///memory/cancer_research.db", "sqlite3", "memory/cancer_research.db", DialectSQLite},
		{"sqlite:////var/lib/cdss.db", "sqlite3", "/var/lib/cdss.db", DialectSQLite},
		{"data/x.db", "sqlite3", "data/x.db", DialectSQLite},
		{"postgres://u:p@localhost/cdss", "pgx", "postgres://u:p@localhost/cdss", DialectPostgres},
		{"postgresql://localhost/cdss", "pgx", "postgresql://localhost/cdss", DialectPostgres},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, source, dialect := ParseDSN(tt.dsn)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.dialect, dialect)
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &Store{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
