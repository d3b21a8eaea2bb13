// Package console implements the interactive terminal manager for the
// student registry — the same operations as the HTTP API, driven by a
// numbered menu instead of routes.
//
// The manager sits on top of the service layer, so every rule enforced for
// HTTP requests (required fields, grade range, email uniqueness) applies
// identically here. It reads from an io.Reader and writes to an io.Writer
// rather than touching os.Stdin/os.Stdout directly, which is what makes it
// testable with a scripted input string.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sakif/student-registry/internal/apperror"
	"github.com/sakif/student-registry/internal/model"
	"github.com/sakif/student-registry/internal/service"
)

// errInputClosed reports that the input stream ended (Ctrl+D or a scripted
// input running out). The menu loop treats it as a normal exit.
var errInputClosed = errors.New("input closed")

// Manager runs the interactive menu loop.
type Manager struct {
	service *service.StudentService
	in      *bufio.Scanner
	out     io.Writer
}

// NewManager creates a Manager reading commands from in and printing to out.
func NewManager(svc *service.StudentService, in io.Reader, out io.Writer) *Manager {
	return &Manager{
		service: svc,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run shows the menu and dispatches choices until the user exits or the
// input stream ends. Domain errors (validation, conflict, not found) are
// printed and the loop continues; only I/O failures end the session early.
func (m *Manager) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, strings.Repeat("=", 50))
	fmt.Fprintln(m.out, "STUDENT REGISTRY MANAGER")
	fmt.Fprintln(m.out, strings.Repeat("=", 50))

	for {
		m.printMenu()

		choice, err := m.readLine("Enter your choice (1-8): ")
		if err != nil {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.viewAll(ctx)
		case "2":
			err = m.viewStatistics(ctx)
		case "3":
			err = m.searchByID(ctx)
		case "4":
			err = m.filterByGrade(ctx)
		case "5":
			err = m.addStudent(ctx)
		case "6":
			err = m.updateStudent(ctx)
		case "7":
			err = m.deleteStudent(ctx)
		case "8":
			fmt.Fprintln(m.out, "\nGoodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "\nInvalid choice. Please try again.")
		}

		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			m.printError(err)
		}
	}
}

func (m *Manager) printMenu() {
	fmt.Fprintln(m.out, "\n--- MENU ---")
	fmt.Fprintln(m.out, "1. View all students")
	fmt.Fprintln(m.out, "2. View statistics")
	fmt.Fprintln(m.out, "3. Search student by ID")
	fmt.Fprintln(m.out, "4. Filter by minimum grade")
	fmt.Fprintln(m.out, "5. Add new student")
	fmt.Fprintln(m.out, "6. Update student")
	fmt.Fprintln(m.out, "7. Delete student")
	fmt.Fprintln(m.out, "8. Exit")
}

// printError renders a domain error as a one-line message. The service
// already phrases apperror messages for humans ("Student not found",
// "Email already exists"), so they are printed as-is.
func (m *Manager) printError(err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(m.out, "\nError: %s\n", appErr.Message)
		return
	}
	fmt.Fprintf(m.out, "\nUnexpected error: %v\n", err)
}

// --- input helpers ---------------------------------------------------------

func (m *Manager) readLine(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", errInputClosed
	}
	return m.in.Text(), nil
}

func (m *Manager) readInt(prompt string) (int, error) {
	line, err := m.readLine(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, apperror.ValidationFailed("input", "Please enter a whole number")
	}
	return n, nil
}

// --- output helpers --------------------------------------------------------

func (m *Manager) printStudent(s *model.Student) {
	fmt.Fprintf(m.out, "\nID: %d\n", s.ID)
	fmt.Fprintf(m.out, "Name: %s\n", s.Name)
	fmt.Fprintf(m.out, "Email: %s\n", s.Email)
	fmt.Fprintf(m.out, "Grade: %d\n", s.Grade)
	fmt.Fprintf(m.out, "Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (m *Manager) printStudentsTable(students []model.Student) {
	if len(students) == 0 {
		fmt.Fprintln(m.out, "\nNo students found.")
		return
	}

	rule := strings.Repeat("=", 70)
	fmt.Fprintln(m.out, "\n"+rule)
	fmt.Fprintf(m.out, "%-5s %-20s %-25s %-5s\n", "ID", "Name", "Email", "Grade")
	fmt.Fprintln(m.out, rule)
	for _, s := range students {
		fmt.Fprintf(m.out, "%-5d %-20s %-25s %-5d\n", s.ID, s.Name, s.Email, s.Grade)
	}
	fmt.Fprintln(m.out, rule)
}

func (m *Manager) printStatistics(stats *model.Statistics) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(m.out, "\n"+rule)
	fmt.Fprintln(m.out, "GRADE STATISTICS")
	fmt.Fprintln(m.out, rule)
	fmt.Fprintf(m.out, "Total Students: %d\n", stats.TotalStudents)
	if stats.AverageGrade != nil {
		fmt.Fprintf(m.out, "Average Grade: %.2f\n", *stats.AverageGrade)
	} else {
		fmt.Fprintln(m.out, "Average Grade: N/A")
	}
	if stats.HighestGrade != nil && stats.LowestGrade != nil {
		fmt.Fprintf(m.out, "Highest Grade: %d\n", *stats.HighestGrade)
		fmt.Fprintf(m.out, "Lowest Grade: %d\n", *stats.LowestGrade)
	}
	fmt.Fprintln(m.out, "\nGrade Distribution:")
	fmt.Fprintf(m.out, "  A (90-100): %d\n", stats.AStudents)
	fmt.Fprintf(m.out, "  B (80-89):  %d\n", stats.BStudents)
	fmt.Fprintf(m.out, "  C (70-79):  %d\n", stats.CStudents)
	fmt.Fprintf(m.out, "  Below 70:   %d\n", stats.FailingStudents)
	fmt.Fprintln(m.out, rule)
}

// --- menu actions ----------------------------------------------------------

func (m *Manager) viewAll(ctx context.Context) error {
	students, err := m.service.List(ctx, nil)
	if err != nil {
		return err
	}
	m.printStudentsTable(students)
	return nil
}

func (m *Manager) viewStatistics(ctx context.Context) error {
	stats, err := m.service.Statistics(ctx)
	if err != nil {
		return err
	}
	m.printStatistics(stats)
	return nil
}

func (m *Manager) searchByID(ctx context.Context) error {
	id, err := m.readInt("Enter student ID: ")
	if err != nil {
		return err
	}
	student, err := m.service.GetByID(ctx, int64(id))
	if err != nil {
		return err
	}
	m.printStudent(student)
	return nil
}

func (m *Manager) filterByGrade(ctx context.Context) error {
	minGrade, err := m.readInt("Enter minimum grade (0-100): ")
	if err != nil {
		return err
	}
	students, err := m.service.List(ctx, &minGrade)
	if err != nil {
		return err
	}
	m.printStudentsTable(students)
	return nil
}

func (m *Manager) addStudent(ctx context.Context) error {
	name, err := m.readLine("Enter student name: ")
	if err != nil {
		return err
	}
	email, err := m.readLine("Enter student email: ")
	if err != nil {
		return err
	}
	grade, err := m.readInt("Enter grade (0-100): ")
	if err != nil {
		return err
	}

	student, err := m.service.Create(ctx, model.StudentInput{
		Name:  &name,
		Email: &email,
		Grade: &grade,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "\nStudent added successfully with ID: %d\n", student.ID)
	return nil
}

// updateStudent prompts for each field with the current value as the
// default — pressing enter keeps it, like the original manager did.
func (m *Manager) updateStudent(ctx context.Context) error {
	id, err := m.readInt("Enter student ID to update: ")
	if err != nil {
		return err
	}
	student, err := m.service.GetByID(ctx, int64(id))
	if err != nil {
		return err
	}
	m.printStudent(student)

	name, err := m.readLine(fmt.Sprintf("Enter new name [%s]: ", student.Name))
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		name = student.Name
	}

	email, err := m.readLine(fmt.Sprintf("Enter new email [%s]: ", student.Email))
	if err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" {
		email = student.Email
	}

	gradeLine, err := m.readLine(fmt.Sprintf("Enter new grade [%d]: ", student.Grade))
	if err != nil {
		return err
	}
	grade := student.Grade
	if trimmed := strings.TrimSpace(gradeLine); trimmed != "" {
		grade, err = strconv.Atoi(trimmed)
		if err != nil {
			return apperror.ValidationFailed("grade", "Please enter a whole number")
		}
	}

	err = m.service.Update(ctx, int64(id), model.StudentInput{
		Name:  &name,
		Email: &email,
		Grade: &grade,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(m.out, "\nStudent updated successfully")
	return nil
}

func (m *Manager) deleteStudent(ctx context.Context) error {
	id, err := m.readInt("Enter student ID to delete: ")
	if err != nil {
		return err
	}

	confirm, err := m.readLine(fmt.Sprintf("Are you sure you want to delete student %d? (yes/no): ", id))
	if err != nil {
		return err
	}
	if strings.ToLower(strings.TrimSpace(confirm)) != "yes" {
		fmt.Fprintln(m.out, "Delete cancelled")
		return nil
	}

	if err := m.service.Delete(ctx, int64(id)); err != nil {
		return err
	}

	fmt.Fprintln(m.out, "\nStudent deleted successfully")
	return nil
}
