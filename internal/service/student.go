// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The service receives a repository.StudentRepository (interface), NOT a
// *sqlite.DB. In tests we pass an in-memory mock; in production main wires
// in SQLite. The service never imports the sqlite package at all.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/student-registry/internal/apperror"
	"github.com/sakif/student-registry/internal/model"
	"github.com/sakif/student-registry/internal/repository"
)

// StudentService handles business logic for student records.
//
// The validator instance is created once here — validator.New() compiles the
// struct tag rules and caches them, so sharing one instance is both faster
// and the documented way to use the library.
type StudentService struct {
	repo     repository.StudentRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewStudentService creates a new StudentService.
// This is where dependency injection happens — the caller decides WHICH
// repository implementation to use (SQLite, or a mock for tests).
func NewStudentService(repo repository.StudentRepository, logger *slog.Logger) *StudentService {
	return &StudentService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// validateInput enforces the request-shape rules for create and update,
// in a fixed order so error reporting is deterministic:
//
//  1. presence — every field must appear in the payload (and name/email must
//     not be blank once trimmed)
//  2. range — grade must lie in [0, 100]
//
// Uniqueness of the email is deliberately NOT checked here. A SELECT-based
// pre-check races against concurrent writers; the UNIQUE constraint in the
// store is the only authoritative judge, and the repository surfaces its
// verdict as a Conflict error.
func (s *StudentService) validateInput(input model.StudentInput) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// Not a field-validation failure — a broken rule definition.
			return fmt.Errorf("validating student input: %w", err)
		}

		// Presence failures win over range failures regardless of which
		// field the validator happened to report first.
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				field := strings.ToLower(fe.Field())
				return apperror.ValidationFailed(field,
					fmt.Sprintf("Missing required field: %s", field))
			}
		}
		// Only grade carries non-required rules (gte/lte).
		return apperror.ValidationFailed("grade", "Grade must be between 0 and 100")
	}

	// A present-but-blank name or email is as useless as an absent one.
	if strings.TrimSpace(*input.Name) == "" {
		return apperror.ValidationFailed("name", "Missing required field: name")
	}
	if strings.TrimSpace(*input.Email) == "" {
		return apperror.ValidationFailed("email", "Missing required field: email")
	}

	return nil
}

// Create validates and persists a new student, returning the record with its
// store-assigned ID and creation timestamp.
func (s *StudentService) Create(ctx context.Context, input model.StudentInput) (*model.Student, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:  strings.TrimSpace(*input.Name),
		Email: strings.TrimSpace(*input.Email),
		Grade: *input.Grade,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		// Conflict is an expected outcome (duplicate email), not a failure
		// worth an error log — let it propagate as-is.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create student",
			slog.String("email", student.Email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created",
		slog.Int64("id", student.ID),
		slog.String("email", student.Email),
	)

	return student, nil
}

// GetByID retrieves a student by ID.
// Returns apperror.ErrNotFound if no such student exists.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves students, optionally filtered by a minimum grade.
// minGrade == nil means no filter (full roster sorted by name); otherwise
// only students with grade >= *minGrade are returned, best grade first.
func (s *StudentService) List(ctx context.Context, minGrade *int) ([]model.Student, error) {
	students, err := s.repo.List(ctx, repository.ListOptions{MinGrade: minGrade})
	if err != nil {
		s.logger.Error("failed to list students", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing students: %w", err)
	}

	return students, nil
}

// Update overwrites the name, email and grade of an existing student.
// Validation rules are identical to Create. Returns ErrNotFound for an
// unknown id and ErrConflict when the new email belongs to another student.
func (s *StudentService) Update(ctx context.Context, id int64, input model.StudentInput) error {
	if err := s.validateInput(input); err != nil {
		return err
	}

	student := &model.Student{
		ID:    id,
		Name:  strings.TrimSpace(*input.Name),
		Email: strings.TrimSpace(*input.Email),
		Grade: *input.Grade,
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrConflict) {
			return err
		}
		s.logger.Error("failed to update student",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating student: %w", err)
	}

	s.logger.Info("student updated", slog.Int64("id", id))
	return nil
}

// Delete removes a student by ID.
// Returns apperror.ErrNotFound if the student doesn't exist.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student deleted", slog.Int64("id", id))
	return nil
}

// Statistics computes the aggregate grade statistics over all students.
func (s *StudentService) Statistics(ctx context.Context) (*model.Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		s.logger.Error("failed to compute statistics", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing statistics: %w", err)
	}

	return stats, nil
}
