package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/student-registry/internal/apperror"
	"github.com/sakif/student-registry/internal/model"
	"github.com/sakif/student-registry/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// the first call site that passes *DB where a StudentRepository is expected.
var _ repository.StudentRepository = (*DB)(nil)

// isUniqueViolation reports whether err is SQLite rejecting a row because of
// a UNIQUE constraint (for us: students.email).
//
// modernc.org/sqlite returns a *sqlite.Error carrying the extended result
// code. errors.As walks the wrap chain to find it.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// Create inserts a new student and fills in the store-generated ID and the
// creation timestamp on the passed struct (pointer receiver — the caller's
// value is modified in place).
//
// The ? placeholders are filled in order by the arguments after the SQL
// string; the driver escapes them, so user input can never become SQL syntax.
//
// A duplicate email violates the UNIQUE constraint. That is the only place
// uniqueness can be decided correctly — two concurrent creates with the same
// email both pass any SELECT-based pre-check, but only one INSERT wins.
// The loser gets a Conflict error.
func (db *DB) Create(ctx context.Context, student *model.Student) error {
	student.CreatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO students (name, email, grade, created_at)
		 VALUES (?, ?, ?, ?)`,
		student.Name,
		student.Email,
		student.Grade,
		student.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "Email already exists")
		}
		return fmt.Errorf("sqlite: creating student: %w", err)
	}

	// LastInsertId returns the AUTOINCREMENT primary key SQLite just assigned.
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new student id: %w", err)
	}
	student.ID = id

	return nil
}

// GetByID retrieves a single student by primary key.
//
// QueryRowContext returns at most one row; Scan reads its columns into Go
// variables (pointers, in SELECT column order). When no row matches, Scan
// returns sql.ErrNoRows — not a real failure, just "no such student" — which
// we translate to the domain's NotFound error so the handler can answer 404.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, grade, created_at
		 FROM students
		 WHERE id = ?`,
		id,
	).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Grade,
		&student.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Student")
		}
		return nil, fmt.Errorf("sqlite: getting student %d: %w", id, err)
	}

	return &student, nil
}

// List retrieves students, optionally filtered by a minimum grade.
//
// Two orderings, per the API contract:
//   - unfiltered       → name ascending (a roster)
//   - with a MinGrade  → grade descending (a leaderboard of everyone at or
//     above the cutoff; the filter is inclusive)
//
// Always returns a non-nil slice so the JSON response is [] rather than null
// when the table is empty.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Student, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if opts.MinGrade != nil {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT id, name, email, grade, created_at
			 FROM students
			 WHERE grade >= ?
			 ORDER BY grade DESC`,
			*opts.MinGrade,
		)
	} else {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT id, name, email, grade, created_at
			 FROM students
			 ORDER BY name ASC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing students: %w", err)
	}
	// sql.Rows holds a connection from the pool — always close it, or the
	// connection leaks and the pool eventually runs dry.
	defer rows.Close()

	students := make([]model.Student, 0)

	for rows.Next() {
		var s model.Student
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Email, &s.Grade, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning student row: %w", err)
		}
		students = append(students, s)
	}

	// rows.Err() catches errors that happened DURING iteration
	// (e.g. the connection dropping mid-scan).
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating students: %w", err)
	}

	return students, nil
}

// Update overwrites the three mutable fields (name, email, grade) of an
// existing student in one statement. ID and created_at are never touched.
//
// Two failure modes, told apart without an extra SELECT:
//   - RowsAffected == 0       → no row matched the id → NotFound
//   - UNIQUE constraint error → the new email belongs to a different row → Conflict
//
// A same-row email "collision" (updating a student without changing their
// email) is not a violation — the UPDATE rewrites the row it already owns.
func (db *DB) Update(ctx context.Context, student *model.Student) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE students
		 SET name = ?, email = ?, grade = ?
		 WHERE id = ?`,
		student.Name,
		student.Email,
		student.Grade,
		student.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "Email already exists")
		}
		return fmt.Errorf("sqlite: updating student %d: %w", student.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Student")
	}

	return nil
}

// Delete removes a student by ID.
// Same pattern as Update — check RowsAffected to detect "not found".
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM students WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting student %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Student")
	}

	return nil
}

// Statistics computes all grade statistics in a single aggregate query.
//
// COUNT(CASE WHEN ... THEN 1 END) counts only the rows where the condition
// holds (CASE yields NULL otherwise, and COUNT ignores NULLs). The four
// bucket conditions partition [0,100]: [90,100], [80,90), [70,80), [0,70) —
// every grade lands in exactly one bucket, so the buckets always sum to the
// total.
//
// Over an empty table AVG/MAX/MIN return NULL, hence the sql.Null* scan
// targets; the model keeps them as pointers so the JSON output is null.
func (db *DB) Statistics(ctx context.Context) (*model.Statistics, error) {
	var (
		stats   model.Statistics
		average sql.NullFloat64
		highest sql.NullInt64
		lowest  sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*)                                                    AS total_students,
			AVG(grade)                                                  AS average_grade,
			MAX(grade)                                                  AS highest_grade,
			MIN(grade)                                                  AS lowest_grade,
			COUNT(CASE WHEN grade >= 90 THEN 1 END)                     AS a_students,
			COUNT(CASE WHEN grade >= 80 AND grade < 90 THEN 1 END)      AS b_students,
			COUNT(CASE WHEN grade >= 70 AND grade < 80 THEN 1 END)      AS c_students,
			COUNT(CASE WHEN grade < 70 THEN 1 END)                      AS failing_students
		FROM students
	`).Scan(
		&stats.TotalStudents,
		&average,
		&highest,
		&lowest,
		&stats.AStudents,
		&stats.BStudents,
		&stats.CStudents,
		&stats.FailingStudents,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: computing statistics: %w", err)
	}

	if average.Valid {
		stats.AverageGrade = &average.Float64
	}
	if highest.Valid {
		h := int(highest.Int64)
		stats.HighestGrade = &h
	}
	if lowest.Valid {
		l := int(lowest.Int64)
		stats.LowestGrade = &l
	}

	return &stats, nil
}

// Seed inserts the sample roster used for demos and local development.
// INSERT OR IGNORE skips rows whose email already exists, so seeding an
// already-seeded database is a no-op.
func (db *DB) Seed(ctx context.Context) error {
	samples := []struct {
		name  string
		email string
		grade int
	}{
		{"Alice Johnson", "alice@school.edu", 92},
		{"Bob Smith", "bob@school.edu", 78},
		{"Charlie Brown", "charlie@school.edu", 85},
		{"Diana Prince", "diana@school.edu", 95},
		{"Eve Adams", "eve@school.edu", 88},
	}

	for _, s := range samples {
		_, err := db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO students (name, email, grade, created_at)
			 VALUES (?, ?, ?, ?)`,
			s.name, s.email, s.grade, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: seeding student %s: %w", s.email, err)
		}
	}

	return nil
}
