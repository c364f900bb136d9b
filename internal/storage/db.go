package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"household-ledger/internal/models"

	// Import database drivers
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a row does not exist, is soft-deleted, or
// belongs to another user.
var ErrNotFound = errors.New("record not found")

var dbTracer = otel.Tracer("household-ledger/storage")

// Options tune time handling. Zero values mean UTC, time.Now and a
// 30 minute reminder lead.
type Options struct {
	Location     *time.Location
	Now          func() time.Time
	ReminderLead time.Duration
}

// DB wraps a sql.DB connection.
type DB struct {
	conn   *sql.DB
	driver string
	loc    *time.Location
	now    func() time.Time
	lead   time.Duration
}

// NewDB opens a SQLite database at path with default options and runs migrations.
func NewDB(path string) (*DB, error) {
	return Open(DriverSQLite, path, Options{})
}

// Open opens a database connection for driver and runs migrations.
func Open(driver, dsn string, opts Options) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection keeps :memory: databases alive and matches SQLite's single writer.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, driver: driver, loc: opts.Location, now: opts.Now, lead: opts.ReminderLead}
	if db.loc == nil {
		db.loc = time.UTC
	}
	if db.now == nil {
		db.now = time.Now
	}
	if db.lead == 0 {
		db.lead = 30 * time.Minute
	}

	if driver == DriverSQLite {
		if err := db.pragmas(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) pragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.conn.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Driver returns the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Today returns the current calendar date in the configured location.
func (db *DB) Today() time.Time {
	return models.DateOf(db.now().In(db.loc))
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Microsecond)
}

func (db *DB) system() string {
	if db.driver == DriverPostgres {
		return "postgresql"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (db *DB) startSpan(ctx context.Context, name, query string) (context.Context, trace.Span) {
	return dbTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", db.system()),
		attribute.String("db.operation", extractSQLVerb(query)),
		attribute.String("db.statement", truncate(query, 256)),
	))
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = db.rebind(query)
	ctx, span := db.startSpan(ctx, "db.Query", query)
	defer span.End()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// tracedRow keeps the span open until Scan, where sql.Row reports its errors.
type tracedRow struct {
	row  *sql.Row
	span trace.Span
}

func (r *tracedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.span != nil {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, err.Error())
		}
		r.span.End()
		r.span = nil
	}
	return err
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *tracedRow {
	query = db.rebind(query)
	ctx, span := db.startSpan(ctx, "db.QueryRow", query)
	return &tracedRow{row: db.conn.QueryRowContext(ctx, query, args...), span: span}
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = db.rebind(query)
	ctx, span := db.startSpan(ctx, "db.Exec", query)
	defer span.End()

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func extractSQLVerb(q string) string {
	q = strings.TrimSpace(q)
	if idx := strings.IndexAny(q, " \n\t"); idx > 0 {
		return strings.ToUpper(q[:idx])
	}
	return strings.ToUpper(q)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// textArg maps nil and empty strings to NULL.
func textArg(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func dateArg(d *time.Time) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Format(models.DateLayout)
}
