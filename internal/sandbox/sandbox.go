package sandbox

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/dataslice/internal/dataset"
)

//go:embed schema.sql
var schemaSQL string

// DefaultMaxRows caps the rows returned by one query.
const DefaultMaxRows = 10000

// ErrClosed is returned by queries on a closed sandbox.
var ErrClosed = errors.New("sandbox: closed")

// Sandbox is an in-memory SQL database holding one dataset. Queries may be
// issued from several goroutines and are serialized on one connection.
// Close must not race with them.
type Sandbox struct {
	db      *sql.DB
	maxRows int
}

// Result is the outcome of a query. Integer columns are int64, text
// columns are string, and NULL is nil.
type Result struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Open loads data into a fresh in-memory database.
func Open(ctx context.Context, data *dataset.Dataset) (*Sandbox, error) {
	if data == nil {
		return nil, errors.New("sandbox: dataset is nil")
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sandbox: open: %w", err)
	}

	// Every connection to ":memory:" is a separate database. Keep exactly
	// one and never let the pool recycle it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := load(ctx, db, data); err != nil {
		db.Close()
		return nil, err
	}

	if err := lock(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sandbox: lock: %w", err)
	}

	return &Sandbox{db: db, maxRows: DefaultMaxRows}, nil
}

// sqliteRecursive is SQLITE_RECURSIVE, which the driver does not export.
const sqliteRecursive = 33

// introspection pragmas take an argument but only read the schema.
var introspection = map[string]bool{
	"table_info":       true,
	"table_xinfo":      true,
	"table_list":       true,
	"index_list":       true,
	"index_info":       true,
	"index_xinfo":      true,
	"foreign_key_list": true,
}

// authorize permits reads only. Anything that could change data, schema
// or connection state is denied at prepare time, so a query cannot undo
// the lock by issuing PRAGMA query_only = OFF first.
func authorize(op int, arg1, arg2, _ string) int {
	switch op {
	case sqlite3.SQLITE_SELECT, sqlite3.SQLITE_READ, sqlite3.SQLITE_FUNCTION, sqliteRecursive:
		return sqlite3.SQLITE_OK
	case sqlite3.SQLITE_PRAGMA:
		if arg2 == "" || introspection[strings.ToLower(arg1)] {
			return sqlite3.SQLITE_OK
		}
	}
	return sqlite3.SQLITE_DENY
}

// lock makes the loaded database read-only: query_only for the engine, then
// an authorizer on the one pooled connection.
func lock(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		c.RegisterAuthorizer(authorize)
		return nil
	})
}

func load(ctx context.Context, db *sql.DB, data *dataset.Dataset) error {
	// Foreign keys stay unenforced: a master dataset may carry orphan
	// enrollments and those rows are still queryable.
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("sandbox: schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sandbox: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, s := range data.Students {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Students VALUES (?, ?, ?, ?, ?, ?)`,
			s.StudentID, s.FirstName, s.LastName, s.BirthDate, s.City, s.Email,
		); err != nil {
			return fmt.Errorf("sandbox: insert student %s: %w", s.StudentID, err)
		}
	}
	for _, c := range data.Courses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Courses VALUES (?, ?, ?, ?)`,
			c.CourseID, c.CourseName, c.Credits, c.Department,
		); err != nil {
			return fmt.Errorf("sandbox: insert course %d: %w", c.CourseID, err)
		}
	}
	for _, l := range data.Lecturers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Lecturers VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.LecturerID, l.FirstName, l.LastName, l.City, l.HireDate, l.CourseID, l.Seniority,
		); err != nil {
			return fmt.Errorf("sandbox: insert lecturer %s: %w", l.LecturerID, err)
		}
	}
	for _, e := range data.Enrollments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Enrollments VALUES (?, ?, ?, ?)`,
			e.StudentID, e.CourseID, e.EnrollmentDate, e.Grade,
		); err != nil {
			return fmt.Errorf("sandbox: insert enrollment (%s, %d): %w", e.StudentID, e.CourseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sandbox: commit: %w", err)
	}
	return nil
}

// SetMaxRows changes the per-query row cap. n <= 0 removes the cap.
func (s *Sandbox) SetMaxRows(n int) {
	s.maxRows = n
}

// Query runs one read-only statement and collects its rows.
func (s *Sandbox) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: columns: %w", err)
	}

	res := &Result{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		if s.maxRows > 0 && len(res.Rows) == s.maxRows {
			res.Truncated = true
			break
		}

		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return res, nil
}

// Counts returns the row count of each table.
func (s *Sandbox) Counts(ctx context.Context) (dataset.Counts, error) {
	var c dataset.Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"Students", &c.Students},
		{"Courses", &c.Courses},
		{"Lecturers", &c.Lecturers},
		{"Enrollments", &c.Enrollments},
	}

	if s.db == nil {
		return c, ErrClosed
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return c, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// Close releases the database. The sandbox cannot be used afterwards.
func (s *Sandbox) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
