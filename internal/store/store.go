// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists workflow sessions and physician approvals in an
// append-only table. SQLite is the default backend; a postgres:// URL
// selects PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// DefaultPath is the SQLite database used when no URL is configured.
const DefaultPath = "memory/cancer_research.db"

// Review log constants.
const (
	ReviewQuery    = "Physician Review"
	ReviewApproved = "approved"
	ReviewComment  = "Approved via Doctor-in-the-Loop system"
)

// ErrNotFound is returned when no record matches a session id.
var ErrNotFound = errors.New("session not found")

// Dialect selects SQL syntax differences between backends.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Store is an append-only session log. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	logger  *zap.Logger
}

// Open connects to the database named by dsn and creates the schema if it
// does not exist. The caller must Close the store.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	driver, source, dialect := ParseDSN(dsn)

	if dialect == DialectSQLite {
		if dir := filepath.Dir(source); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		source += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := New(db, dialect, logger)
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// New wraps an open database handle. The schema is assumed to exist.
func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With(zap.String("component", "store")),
	}
}

// ParseDSN maps a connection string to a driver name, a driver-specific
// source and a dialect. Empty, a bare file path, or sqlite:/// selects
// SQLite; postgres:// and postgresql:// select PostgreSQL.
func ParseDSN(dsn string) (driver, source string, dialect Dialect) {
	switch {
	case dsn == "":
		return "sqlite3", DefaultPath, DialectSQLite
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, DialectPostgres
	case strings.HasPrefix(dsn, "sqlite://"):
		// sqlite:///relative.db and sqlite:////absolute.db
		path := strings.TrimPrefix(dsn, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			path = DefaultPath
		}
		return "sqlite3", path, DialectSQLite
	default:
		return "sqlite3", dsn, DialectSQLite
	}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the backend dialect.
func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) createSchema(ctx context.Context) error {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "created_at TIMESTAMP NOT NULL"
	if s.dialect == DialectPostgres {
		id = "id BIGSERIAL PRIMARY KEY"
		ts = "created_at TIMESTAMPTZ NOT NULL"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS research_memory (
			` + id + `,
			session_id TEXT NOT NULL,
			query TEXT,
			cancer_type TEXT,
			findings TEXT,
			` + ts + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_research_memory_session_id ON research_memory(session_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AppendSession stores a workflow session. findings is serialized to JSON
// and stored opaquely. Returns the new record id.
func (s *Store) AppendSession(ctx context.Context, sessionID, query, domain string, findings any) (int64, error) {
	data, err := json.Marshal(findings)
	if err != nil {
		return 0, fmt.Errorf("marshaling findings: %w", err)
	}
	id, err := s.insert(ctx, sessionID, query, domain, data)
	if err != nil {
		s.logger.Error("failed to save research session", zap.String("session_id", sessionID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("research session saved", zap.Int64("id", id), zap.String("session_id", sessionID))
	return id, nil
}

// AppendReview stores an approval log entry for sessionID.
func (s *Store) AppendReview(ctx context.Context, sessionID, decision, reviewer, comment string) (int64, error) {
	data, err := json.Marshal(types.ReviewFindings{
		Decision:  decision,
		Doctor:    reviewer,
		Comment:   comment,
		Timestamp: s.now().Format(time.RFC3339),
	})
	if err != nil {
		return 0, fmt.Errorf("marshaling review: %w", err)
	}
	id, err := s.insert(ctx, sessionID, ReviewQuery, types.DomainClinicalDecision, data)
	if err != nil {
		s.logger.Error("failed to save physician review", zap.String("session_id", sessionID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("physician review saved", zap.Int64("id", id), zap.String("decision", decision))
	return id, nil
}

// insert appends one row inside a transaction. Any failure rolls back.
func (s *Store) insert(ctx context.Context, sessionID, query, domain string, findings []byte) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO research_memory (session_id, query, cancer_type, findings, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		sessionID, query, domain, string(findings), s.now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting session record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// Sessions returns every record for sessionID in insertion order.
func (s *Store) Sessions(ctx context.Context, sessionID string) ([]types.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, session_id, query, cancer_type, findings, created_at
		 FROM research_memory WHERE session_id = ? ORDER BY id`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Session returns the first record for sessionID, or ErrNotFound.
func (s *Store) Session(ctx context.Context, sessionID string) (types.SessionRecord, error) {
	recs, err := s.Sessions(ctx, sessionID)
	if err != nil {
		return types.SessionRecord{}, err
	}
	if len(recs) == 0 {
		return types.SessionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return recs[0], nil
}

// Recent returns up to limit of the newest records across all sessions,
// newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, query, cancer_type, findings, created_at
		 FROM research_memory ORDER BY id DESC LIMIT `+strconv.Itoa(limit))
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]types.SessionRecord, error) {
	var recs []types.SessionRecord
	for rows.Next() {
		var (
			r                    types.SessionRecord
			query, domain, finds sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &query, &domain, &finds, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session record: %w", err)
		}
		r.Query = query.String
		r.Domain = domain.String
		if finds.Valid && finds.String != "" {
			r.Findings = json.RawMessage(finds.String)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// rebind rewrites ? placeholders as $1..$n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
