// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Student represents one persisted student record.
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON, matching the column names of the students table.
//
// ID and CreatedAt are set by the repository at insert time and never change.
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentInput is the payload for create and update requests.
//
// WHY POINTER FIELDS?
// JSON has no way to tell "field absent" from "field set to its zero value" when
// decoding into plain string/int fields. A missing "grade" and "grade": 0 would
// both decode to 0 — but 0 is a perfectly valid grade.
// With pointers, an absent field decodes to nil, so the `required` rule from
// go-playground/validator can reject it while still accepting a genuine zero.
//
// Validation rules (checked by the service layer, in tag order):
//   - required      → the field must be present in the request body
//   - gte=0, lte=100 → grade must lie in the inclusive range [0, 100]
type StudentInput struct {
	Name  *string `json:"name"  validate:"required"`
	Email *string `json:"email" validate:"required"`
	Grade *int    `json:"grade" validate:"required,gte=0,lte=100"`
}

// Statistics is the result of one aggregate pass over all students.
//
// AverageGrade, HighestGrade and LowestGrade are pointers because SQL
// aggregates return NULL over an empty table — the JSON output is `null`
// rather than a misleading 0.
//
// The four bucket counts partition [0,100] with no gaps or overlaps:
//
//	a_students       [90,100]
//	b_students       [80,90)
//	c_students       [70,80)
//	failing_students [0,70)
type Statistics struct {
	TotalStudents   int      `json:"total_students"`
	AverageGrade    *float64 `json:"average_grade"`
	HighestGrade    *int     `json:"highest_grade"`
	LowestGrade     *int     `json:"lowest_grade"`
	AStudents       int      `json:"a_students"`
	BStudents       int      `json:"b_students"`
	CStudents       int      `json:"c_students"`
	FailingStudents int      `json:"failing_students"`
}
