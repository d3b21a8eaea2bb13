package repository

import (
	"context"

	"github.com/sakif/student-registry/internal/model"
)

// ListOptions controls how List queries the students table.
//
// MinGrade is a pointer so "no filter" (nil) is distinguishable from
// "filter at grade 0" — the same absent-vs-zero problem as the request
// payloads, solved the same way.
type ListOptions struct {
	// MinGrade, when set, restricts results to grade >= *MinGrade and
	// switches the sort order to grade descending. When nil, all students
	// are returned sorted by name ascending.
	MinGrade *int
}

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	List(ctx context.Context, opts ListOptions) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*model.Statistics, error)
}
