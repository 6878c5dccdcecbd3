// internal/board/sqlstore.go
package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const jobsTable = "jobs"

var jobColumns = []string{
	"id", "company", "role", "location", "link", "notes",
	"status", "created_at", "updated_at", "follow_up_at",
}

const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET
	company = EXCLUDED.company,
	role = EXCLUDED.role,
	location = EXCLUDED.location,
	link = EXCLUDED.link,
	notes = EXCLUDED.notes,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at,
	follow_up_at = EXCLUDED.follow_up_at`

// dialect covers the differences between the SQL backends.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	schema      string
	encodeTime  func(time.Time) interface{}
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: sq.Dollar,
	schema: `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	company      TEXT NOT NULL DEFAULT '',
	role         TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	link         TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	follow_up_at TIMESTAMPTZ
)`,
	encodeTime: func(t time.Time) interface{} { return t },
}

// sqliteTimeLayout is RFC 3339 with a fixed nine-digit fraction. Text times
// only sort chronologically when every value has the same width.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite has no timestamp type; times are stored as fixed-width UTC text.
var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: sq.Question,
	schema: `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	company      TEXT NOT NULL DEFAULT '',
	role         TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	link         TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	follow_up_at TEXT NULL
)`,
	encodeTime: func(t time.Time) interface{} { return t.UTC().Format(sqliteTimeLayout) },
}

// SQLStore keeps the board in a single jobs table.
type SQLStore struct {
	db      *sql.DB
	qb      sq.StatementBuilderType
	dialect dialect
}

func NewPostgresStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, postgresDialect)
}

func NewSQLiteStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, sqliteDialect)
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		qb:      sq.StatementBuilder.PlaceholderFormat(d.placeholder),
		dialect: d,
	}
}

// EnsureSchema creates the jobs table if it is missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("%w: create %s schema: %v", ErrStoreFailed, s.dialect.name, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Job, error) {
	query, args, err := s.qb.Select(jobColumns...).
		From(jobsTable).
		OrderBy("updated_at DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build list: %v", ErrStoreFailed, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreFailed, err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreFailed, err)
	}
	return jobs, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Job, error) {
	query, args, err := s.qb.Select(jobColumns...).
		From(jobsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build get: %v", ErrStoreFailed, err)
	}

	return scanJob(s.db.QueryRowContext(ctx, query, args...))
}

// Save inserts or fully replaces a job.
func (s *SQLStore) Save(ctx context.Context, job Job) error {
	var followUp interface{}
	if job.FollowUpAt != nil {
		followUp = s.dialect.encodeTime(*job.FollowUpAt)
	}

	query, args, err := s.qb.Insert(jobsTable).
		Columns(jobColumns...).
		Values(job.ID, job.Company, job.Role, job.Location, job.Link, job.Notes,
			string(job.Status), s.dialect.encodeTime(job.CreatedAt), s.dialect.encodeTime(job.UpdatedAt), followUp).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build save: %v", ErrStoreFailed, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStoreFailed, job.ID, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.qb.Delete(jobsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: build delete: %v", ErrStoreFailed, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStoreFailed, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job              Job
		status           string
		created, updated dbTime
		followUp         dbTime
	)
	err := row.Scan(&job.ID, &job.Company, &job.Role, &job.Location, &job.Link, &job.Notes,
		&status, &created, &updated, &followUp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrStoreFailed, err)
	}

	job.Status = Status(status)
	job.CreatedAt = created.Time
	job.UpdatedAt = updated.Time
	if followUp.Valid {
		t := followUp.Time
		job.FollowUpAt = &t
	}
	return &job, nil
}

// dbTime scans native timestamps as well as RFC 3339 text.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(v interface{}) error {
	switch x := v.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = x, true
		return nil
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	}
	return fmt.Errorf("unsupported time value %T", v)
}

func (t *dbTime) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time, t.Valid = parsed, true
	return nil
}
