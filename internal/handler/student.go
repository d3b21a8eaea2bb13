// Package handler contains the HTTP request handlers for the student registry.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (query params, path params, body)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers contain no business logic — they are the glue between HTTP and
// the service. Validation rules, conflict handling and SQL all live below.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/student-registry/internal/apperror"
	"github.com/sakif/student-registry/internal/model"
	"github.com/sakif/student-registry/internal/service"
)

// StudentHandler manages the CRUD + statistics endpoints for students.
type StudentHandler struct {
	service *service.StudentService
	logger  *slog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(service *service.StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{service: service, logger: logger}
}

// parseID extracts and parses the {id} path parameter.
//
// A non-numeric id cannot match any student, so it reports NotFound rather
// than a validation error — the route only promises 404 for bad ids.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperror.NotFound("Student")
	}
	return id, nil
}

// decodeInput reads the JSON request body into a StudentInput.
// An empty body and malformed JSON both come back as validation errors so
// the client gets a 400 with a usable message instead of a bare status.
func decodeInput(r *http.Request) (model.StudentInput, error) {
	var input model.StudentInput

	err := json.NewDecoder(r.Body).Decode(&input)
	if errors.Is(err, io.EOF) {
		return input, apperror.ValidationFailed("body", "No JSON data provided")
	}
	if err != nil {
		return input, apperror.ValidationFailed("body", "Invalid JSON body")
	}

	return input, nil
}

// HandleList returns students as a JSON array.
//
// HTTP: GET /api/students
// HTTP: GET /api/students?min_grade=N
//
// Without min_grade the full roster is returned sorted by name; with it,
// only students at or above the cutoff, best grade first. No matches is a
// 200 with [] — an empty roster is not an error.
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var minGrade *int

	if raw := r.URL.Query().Get("min_grade"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("min_grade", "min_grade must be an integer"))
			return
		}
		minGrade = &n
	}

	students, err := h.service.List(r.Context(), minGrade)
	if err != nil {
		h.logger.Error("list students failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// HandleGetByID returns a single student.
//
// HTTP: GET /api/students/{id}
func (h *StudentHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	student, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleCreate creates a new student.
//
// HTTP: POST /api/students
// REQUEST BODY: {"name": "...", "email": "...", "grade": N}
//
// Responds 201 with the new id. A missing field or out-of-range grade is a
// 400, and so is a duplicate email (surfaced by the store's UNIQUE
// constraint — see the service for why it isn't pre-checked).
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := decodeInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	student, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      student.ID,
		"message": "Student created successfully",
	})
}

// HandleUpdate overwrites an existing student's name, email and grade.
//
// HTTP: PUT /api/students/{id}
// REQUEST BODY: {"name": "...", "email": "...", "grade": N} — all fields
// required, as a PUT replaces the whole mutable part of the record.
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	input, err := decodeInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Update(r.Context(), id, input); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Student updated successfully",
	})
}

// HandleDelete removes a student.
//
// HTTP: DELETE /api/students/{id}
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Student deleted successfully",
	})
}

// HandleStatistics returns aggregate grade statistics.
//
// HTTP: GET /api/statistics
//
// RESPONSE BODY:
//
//	{
//	  "total_students": 5, "average_grade": 87.6,
//	  "highest_grade": 95, "lowest_grade": 78,
//	  "a_students": 2, "b_students": 2, "c_students": 1, "failing_students": 0
//	}
//
// average_grade, highest_grade and lowest_grade are null when the table is empty.
func (h *StudentHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
