// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's database/sql package.
//
// SQLite stores everything in a single file on disk, so it is the backend
// of choice for local runs and for the end-to-end tests. The schema is
// owned by the goose migrations embedded from ./migrations; queries are
// built with squirrel.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const table = "students"

var columns = []string{
	"id",
	"first_name",
	"last_name",
	"roll_number",
	"phone_number",
	"password",
	"created_at",
	"updated_at",
}

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*SQLite)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the SQLite database at path, applies pending migrations and
// returns a ready-to-use *SQLite. The parent directory is created when
// missing.
func New(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite allows a single writer; one connection also keeps an
	// in-memory database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	return NewFromDB(db), nil
}

// NewFromDB wraps an already opened database whose schema is in place.
func NewFromDB(db *sql.DB) *SQLite {
	return &SQLite{
		Db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite.migrate: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("sqlite.migrate: new provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("sqlite.migrate: up: %w", err)
	}
	return nil
}

// CreateStudent inserts a new row with a fresh UUID and timestamps.
func (s *SQLite) CreateStudent(ctx context.Context, st types.Student) (types.Student, error) {
	now := s.now()
	st.ID = uuid.NewString()
	st.CreatedAt = now
	st.UpdatedAt = now

	query, args, err := sq.Insert(table).
		Columns(columns...).
		Values(st.ID, st.FirstName, st.LastName, st.RollNumber, st.PhoneNumber, st.Password, st.CreatedAt, st.UpdatedAt).
		ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: build query: %w", err)
	}

	if _, err := s.Db.ExecContext(ctx, query, args...); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", mapError(err))
	}

	return st, nil
}

// GetStudents returns all rows in table order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	query, args, err := sq.Select(columns...).From(table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: build query: %w", err)
	}

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		st, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	id, err := canonicalID(id)
	if err != nil {
		return types.Student{}, err
	}
	return getByID(ctx, s.Db, id)
}

// UpdateStudentByID merges patch into the stored row inside a transaction
// and returns the result.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	id, err := canonicalID(id)
	if err != nil {
		return types.Student{}, err
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := getByID(ctx, tx, id)
	if err != nil {
		return types.Student{}, err
	}

	// Unsupplied fields are empty strings in src and are skipped by mergo;
	// identity and timestamps are pinned explicitly.
	src := patch.Student()
	src.ID = current.ID
	src.CreatedAt = current.CreatedAt
	src.UpdatedAt = s.now()
	if err := mergo.Merge(&current, src, mergo.WithOverride); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: merge: %w", err)
	}

	query, args, err := sq.Update(table).
		SetMap(map[string]any{
			"first_name":   current.FirstName,
			"last_name":    current.LastName,
			"roll_number":  current.RollNumber,
			"phone_number": current.PhoneNumber,
			"password":     current.Password,
			"updated_at":   current.UpdatedAt,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: build query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: commit: %w", err)
	}

	return current, nil
}

// DeleteStudentByID removes a row by primary key and returns what it held.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	id, err := canonicalID(id)
	if err != nil {
		return types.Student{}, err
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := getByID(ctx, tx, id)
	if err != nil {
		return types.Student{}, err
	}

	query, args, err := sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: build query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: commit: %w", err)
	}

	return current, nil
}

// Ping checks that the database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLite) Close(context.Context) error {
	return s.Db.Close()
}

func getByID(ctx context.Context, q queryer, id string) (types.Student, error) {
	query, args, err := sq.Select(columns...).From(table).Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: build query: %w", err)
	}

	st, err := scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("%w with id: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row in the order of columns.
func scan(row scanner) (types.Student, error) {
	var st types.Student
	err := row.Scan(
		&st.ID,
		&st.FirstName,
		&st.LastName,
		&st.RollNumber,
		&st.PhoneNumber,
		&st.Password,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	return st, err
}

// canonicalID returns id in the lowercase hyphenated form ids are stored
// in. Uppercase, braced and urn:uuid: spellings resolve to the same row.
func canonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidID, id)
	}
	return u.String(), nil
}

// mapError translates SQLite constraint failures into storage errors.
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateRollNumber, sqliteErr.Error())
	}
	return err
}
