// Package store persists prediction runs and their rows in a SQL database.
// sqlite, postgres (through pgx) and mysql are supported through
// database/sql; the schema is created on open.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // register mysql as a database/sql driver
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // register sqlite as a database/sql driver

	"github.com/domfun/domfun/internal/predictor"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Dialect names a supported database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

var driverNames = map[Dialect]string{
	DialectSQLite:   "sqlite",
	DialectPostgres: "pgx",
	DialectMySQL:    "mysql",
}

var sqlOpen = sql.Open

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if d == "postgresql" || d == "pgx" {
		d = DialectPostgres
	}
	if _, ok := driverNames[d]; !ok {
		return "", fmt.Errorf("unsupported store driver %q (valid: sqlite, postgres, mysql)", s)
	}
	return d, nil
}

// Run is one recorded prediction batch.
type Run struct {
	ID                   string          `json:"id" yaml:"id"`
	CreatedAt            time.Time       `json:"created_at" yaml:"created_at"`
	Method               string          `json:"method" yaml:"method"`
	DomainCategory       string          `json:"domain_category" yaml:"domain_category"`
	IdentifierMode       string          `json:"identifier_mode" yaml:"identifier_mode"`
	PValueThreshold      float64         `json:"pvalue_threshold" yaml:"pvalue_threshold"`
	AssociationThreshold float64         `json:"association_threshold" yaml:"association_threshold"`
	AssociationsURI      string          `json:"associations_uri" yaml:"associations_uri"`
	AssociationsChecksum string          `json:"associations_checksum" yaml:"associations_checksum"`
	Stats                predictor.Stats `json:"stats" yaml:"stats"`
	// Skips is written by SaveRun; runs loaded back leave it empty.
	Skips []Skip `json:"-" yaml:"-"`
}

// Skip records why one query produced no prediction list.
type Skip struct {
	Query  string `json:"query" yaml:"query"`
	Reason string `json:"reason" yaml:"reason"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SkipsFromOutcomes collects the skipped queries of a batch.
func SkipsFromOutcomes(outcomes []predictor.Outcome) []Skip {
	var skips []Skip
	for _, o := range outcomes {
		if o.Skip == predictor.SkipNone {
			continue
		}
		s := Skip{Query: o.Query.ID, Reason: string(o.Skip)}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		skips = append(skips, s)
	}
	return skips
}

// Store is a handle on the results database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	driver, ok := driverNames[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", dialect)
	}
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(64) PRIMARY KEY,
		created_at VARCHAR(40) NOT NULL,
		method VARCHAR(32) NOT NULL,
		domain_category VARCHAR(32) NOT NULL,
		identifier_mode VARCHAR(16) NOT NULL,
		pvalue_threshold DOUBLE PRECISION NOT NULL,
		association_threshold DOUBLE PRECISION NOT NULL,
		associations_uri TEXT NOT NULL,
		associations_checksum VARCHAR(128) NOT NULL,
		queries INTEGER NOT NULL,
		predicted INTEGER NOT NULL,
		no_domains INTEGER NOT NULL,
		no_evidence INTEGER NOT NULL,
		degenerate INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		predictions INTEGER NOT NULL,
		degenerate_functions INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		run_id VARCHAR(64) NOT NULL,
		seq INTEGER NOT NULL,
		protein TEXT NOT NULL,
		domains TEXT NOT NULL,
		function_id TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS run_skips (
		run_id VARCHAR(64) NOT NULL,
		seq INTEGER NOT NULL,
		query_id TEXT NOT NULL,
		reason VARCHAR(32) NOT NULL,
		error_text TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites '?' placeholders for dialects that number them.
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

// SaveRun records a run and its predictions in one transaction. An empty
// run id is filled with a new UUID.
func (s *Store) SaveRun(ctx context.Context, run *Run, preds []predictor.Prediction) (err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st := run.Stats
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO runs (
		id, created_at, method, domain_category, identifier_mode,
		pvalue_threshold, association_threshold, associations_uri, associations_checksum,
		queries, predicted, no_domains, no_evidence, degenerate, failed, predictions, degenerate_functions
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.Method, run.DomainCategory, run.IdentifierMode,
		run.PValueThreshold, run.AssociationThreshold, run.AssociationsURI, run.AssociationsChecksum,
		st.Queries, st.Predicted, st.NoDomains, st.NoEvidence, st.Degenerate, st.Failed, st.Predictions, st.DegenerateFunctions)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO predictions (run_id, seq, protein, domains, function_id, score) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare prediction insert: %w", err)
	}
	defer stmt.Close()
	for i, p := range preds {
		if _, err = stmt.ExecContext(ctx, run.ID, i, p.Protein, strings.Join(p.Domains, ","), p.Function, p.Score); err != nil {
			return fmt.Errorf("insert prediction %d: %w", i, err)
		}
	}

	skipStmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO run_skips (run_id, seq, query_id, reason, error_text) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare skip insert: %w", err)
	}
	defer skipStmt.Close()
	for i, sk := range run.Skips {
		if _, err = skipStmt.ExecContext(ctx, run.ID, i, sk.Query, sk.Reason, sk.Error); err != nil {
			return fmt.Errorf("insert skip %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `id, created_at, method, domain_category, identifier_mode,
	pvalue_threshold, association_threshold, associations_uri, associations_checksum,
	queries, predicted, no_domains, no_evidence, degenerate, failed, predictions, degenerate_functions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var created string
	err := row.Scan(&r.ID, &created, &r.Method, &r.DomainCategory, &r.IdentifierMode,
		&r.PValueThreshold, &r.AssociationThreshold, &r.AssociationsURI, &r.AssociationsChecksum,
		&r.Stats.Queries, &r.Stats.Predicted, &r.Stats.NoDomains, &r.Stats.NoEvidence,
		&r.Stats.Degenerate, &r.Stats.Failed, &r.Stats.Predictions, &r.Stats.DegenerateFunctions)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Predictions returns the rows of a run in the order they were saved.
func (s *Store) Predictions(ctx context.Context, runID string) ([]predictor.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT protein, domains, function_id, score FROM predictions WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var preds []predictor.Prediction
	for rows.Next() {
		var p predictor.Prediction
		var domains string
		if err := rows.Scan(&p.Protein, &domains, &p.Function, &p.Score); err != nil {
			return nil, err
		}
		if domains != "" {
			p.Domains = strings.Split(domains, ",")
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

// Skips returns the skipped queries of a run in the order they were saved.
func (s *Store) Skips(ctx context.Context, runID string) ([]Skip, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT query_id, reason, error_text FROM run_skips WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("list skips: %w", err)
	}
	defer rows.Close()

	var skips []Skip
	for rows.Next() {
		var sk Skip
		if err := rows.Scan(&sk.Query, &sk.Reason, &sk.Error); err != nil {
			return nil, err
		}
		skips = append(skips, sk)
	}
	return skips, rows.Err()
}
