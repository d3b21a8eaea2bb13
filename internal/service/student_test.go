package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/student-registry/internal/apperror"
	"github.com/sakif/student-registry/internal/model"
	"github.com/sakif/student-registry/internal/repository"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockStudentRepo implements repository.StudentRepository in memory, so the
// service tests exercise only the business rules — no database involved.
// It mimics the two storage-level behaviours the service relies on:
// NotFound for unknown ids and Conflict for duplicate emails.

type mockStudentRepo struct {
	students map[int64]*model.Student
	nextID   int64
}

func newMockRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students: make(map[int64]*model.Student),
	}
}

func (m *mockStudentRepo) emailTaken(email string, excludeID int64) bool {
	for _, s := range m.students {
		if s.Email == email && s.ID != excludeID {
			return true
		}
	}
	return false
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if m.emailTaken(student.Email, 0) {
		return apperror.Conflict("email", "Email already exists")
	}
	m.nextID++
	student.ID = m.nextID
	student.CreatedAt = time.Now()
	stored := *student
	m.students[student.ID] = &stored
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id int64) (*model.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, apperror.NotFound("Student")
	}
	result := *student
	return &result, nil
}

func (m *mockStudentRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Student, error) {
	result := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		if opts.MinGrade != nil && s.Grade < *opts.MinGrade {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return apperror.NotFound("Student")
	}
	if m.emailTaken(student.Email, student.ID) {
		return apperror.Conflict("email", "Email already exists")
	}
	existing := m.students[student.ID]
	existing.Name = student.Name
	existing.Email = student.Email
	existing.Grade = student.Grade
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return apperror.NotFound("Student")
	}
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) Statistics(_ context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{TotalStudents: len(m.students)}
	sum := 0
	for _, s := range m.students {
		sum += s.Grade
		switch {
		case s.Grade >= 90:
			stats.AStudents++
		case s.Grade >= 80:
			stats.BStudents++
		case s.Grade >= 70:
			stats.CStudents++
		default:
			stats.FailingStudents++
		}
		if stats.HighestGrade == nil || s.Grade > *stats.HighestGrade {
			g := s.Grade
			stats.HighestGrade = &g
		}
		if stats.LowestGrade == nil || s.Grade < *stats.LowestGrade {
			g := s.Grade
			stats.LowestGrade = &g
		}
	}
	if len(m.students) > 0 {
		avg := float64(sum) / float64(len(m.students))
		stats.AverageGrade = &avg
	}
	return stats, nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestService(t *testing.T) (*StudentService, *mockStudentRepo) {
	t.Helper()
	repo := newMockRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewStudentService(repo, logger)
	return svc, repo
}

// input builds a fully populated StudentInput. Tests that need a missing
// field nil it out afterwards.
func input(name, email string, grade int) model.StudentInput {
	return model.StudentInput{Name: &name, Email: &email, Grade: &grade}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService(t)

	student, err := svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if student.ID == 0 {
		t.Error("expected student to have an ID")
	}
	if student.Name != "Alice" {
		t.Errorf("Name = %q, want %q", student.Name, "Alice")
	}
	if student.Grade != 92 {
		t.Errorf("Grade = %d, want 92", student.Grade)
	}
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestService(t)

	student, err := svc.Create(context.Background(), input("  Alice  ", " alice@school.edu ", 92))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if student.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed %q", student.Name, "Alice")
	}
	if student.Email != "alice@school.edu" {
		t.Errorf("Email = %q, want trimmed %q", student.Email, "alice@school.edu")
	}
}

func TestCreate_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.StudentInput)
		wantMsg string
	}{
		{
			name:    "missing name",
			mutate:  func(in *model.StudentInput) { in.Name = nil },
			wantMsg: "Missing required field: name",
		},
		{
			name:    "missing email",
			mutate:  func(in *model.StudentInput) { in.Email = nil },
			wantMsg: "Missing required field: email",
		},
		{
			name:    "missing grade",
			mutate:  func(in *model.StudentInput) { in.Grade = nil },
			wantMsg: "Missing required field: grade",
		},
		{
			name:    "blank name",
			mutate:  func(in *model.StudentInput) { blank := "   "; in.Name = &blank },
			wantMsg: "Missing required field: name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			in := input("Alice", "alice@school.edu", 92)
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			if err == nil {
				t.Fatal("Create() should error on invalid input")
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestCreate_GradeOutOfRange(t *testing.T) {
	for _, grade := range []int{-1, 101, 150} {
		svc, repo := newTestService(t)

		_, err := svc.Create(context.Background(), input("Alice", "alice@school.edu", grade))
		if err == nil {
			t.Fatalf("Create() should reject grade %d", grade)
		}
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("grade %d: error = %v, want ErrValidation", grade, err)
		}
		if len(repo.students) != 0 {
			t.Errorf("grade %d: student was stored despite validation failure", grade)
		}
	}
}

func TestCreate_GradeBoundariesAccepted(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), input("Zero", "zero@school.edu", 0)); err != nil {
		t.Errorf("grade 0 should be valid, got %v", err)
	}
	if _, err := svc.Create(context.Background(), input("Full", "full@school.edu", 100)); err != nil {
		t.Errorf("grade 100 should be valid, got %v", err)
	}
}

// Presence is reported before range: an input that is both missing a field
// and out of range fails on the missing field.
func TestCreate_PresenceCheckedBeforeRange(t *testing.T) {
	svc, _ := newTestService(t)

	grade := 150
	in := model.StudentInput{Name: nil, Email: nil, Grade: &grade}

	_, err := svc.Create(context.Background(), in)
	if err == nil {
		t.Fatal("Create() should error")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want *AppError", err)
	}
	if appErr.Message != "Missing required field: name" {
		t.Errorf("message = %q, want the missing-field error first", appErr.Message)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := svc.Create(context.Background(), input("Alice", "alice@school.edu", 92)); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	_, err := svc.Create(context.Background(), input("Impostor", "alice@school.edu", 50))
	if err == nil {
		t.Fatal("Create() should error on duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
	if len(repo.students) != 1 {
		t.Errorf("store holds %d students, want 1", len(repo.students))
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate_Success(t *testing.T) {
	svc, repo := newTestService(t)
	created, _ := svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))

	err := svc.Update(context.Background(), created.ID, input("Alice Cooper", "cooper@school.edu", 99))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored := repo.students[created.ID]
	if stored.Name != "Alice Cooper" || stored.Email != "cooper@school.edu" || stored.Grade != 99 {
		t.Errorf("stored = %+v, want updated fields", stored)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Update(context.Background(), 9999, input("Ghost", "ghost@school.edu", 50))
	if err == nil {
		t.Fatal("Update() should error on nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_GradeOutOfRangeLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newTestService(t)
	created, _ := svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))

	err := svc.Update(context.Background(), created.ID, input("Alice", "alice@school.edu", 150))
	if err == nil {
		t.Fatal("Update() should reject grade 150")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if repo.students[created.ID].Grade != 92 {
		t.Errorf("stored grade = %d, want unchanged 92", repo.students[created.ID].Grade)
	}
}

func TestUpdate_EmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))
	bob, _ := svc.Create(context.Background(), input("Bob", "bob@school.edu", 78))

	err := svc.Update(context.Background(), bob.ID, input("Bob", "alice@school.edu", 78))
	if err == nil {
		t.Fatal("Update() should error when taking another student's email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_Success(t *testing.T) {
	svc, repo := newTestService(t)
	created, _ := svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.students) != 0 {
		t.Error("student still present after delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST AND STATISTICS TESTS
// =========================================================================

func TestList_PassesFilterThrough(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))
	svc.Create(context.Background(), input("Bob", "bob@school.edu", 78))

	minGrade := 90
	students, err := svc.List(context.Background(), &minGrade)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(students) != 1 || students[0].Name != "Alice" {
		t.Errorf("List(min=90) = %v, want just Alice", students)
	}
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Create(context.Background(), input("Alice", "alice@school.edu", 92))
	svc.Create(context.Background(), input("Bob", "bob@school.edu", 78))

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.TotalStudents != 2 {
		t.Errorf("TotalStudents = %d, want 2", stats.TotalStudents)
	}
	if stats.AverageGrade == nil || *stats.AverageGrade != 85 {
		t.Errorf("AverageGrade = %v, want 85", stats.AverageGrade)
	}
}
