package console_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/student-registry/internal/console"
	"github.com/sakif/student-registry/internal/repository/sqlite"
	"github.com/sakif/student-registry/internal/service"
)

// runSession feeds a scripted input to a manager backed by a real in-memory
// database and returns everything it printed. Each element of lines is one
// line the user would have typed.
func runSession(t *testing.T, lines ...string) string {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewStudentService(db, logger)

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	m := console.NewManager(svc, in, &out)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("running manager: %v", err)
	}
	return out.String()
}

func TestRun_Exit(t *testing.T) {
	out := runSession(t, "8")

	if !strings.Contains(out, "STUDENT REGISTRY MANAGER") {
		t.Errorf("output missing banner:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("output missing exit message:\n%s", out)
	}
}

func TestRun_InputClosedEndsSession(t *testing.T) {
	// No trailing exit choice: the scanner runs dry after the first menu.
	out := runSession(t, "1")

	if !strings.Contains(out, "No students found.") {
		t.Errorf("output missing empty-table message:\n%s", out)
	}
}

func TestRun_AddAndViewStudent(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		"1",
		"8",
	)

	if !strings.Contains(out, "Student added successfully with ID: 1") {
		t.Errorf("output missing add confirmation:\n%s", out)
	}
	if !strings.Contains(out, "alice@example.com") {
		t.Errorf("table missing created student:\n%s", out)
	}
}

func TestRun_AddValidatesGrade(t *testing.T) {
	out := runSession(t,
		"5", "Bob Smith", "bob@example.com", "150",
		"1",
		"8",
	)

	if !strings.Contains(out, "Error: Grade must be between 0 and 100") {
		t.Errorf("output missing validation error:\n%s", out)
	}
	if !strings.Contains(out, "No students found.") {
		t.Errorf("rejected student should not be stored:\n%s", out)
	}
}

func TestRun_AddRejectsDuplicateEmail(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		"5", "Alice Again", "alice@example.com", "80",
		"8",
	)

	if !strings.Contains(out, "Error: Email already exists") {
		t.Errorf("output missing conflict error:\n%s", out)
	}
}

func TestRun_SearchByID(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		"3", "1",
		"3", "99",
		"8",
	)

	if !strings.Contains(out, "Name: Alice Johnson") {
		t.Errorf("output missing student detail:\n%s", out)
	}
	if !strings.Contains(out, "Error: Student not found") {
		t.Errorf("output missing not-found error:\n%s", out)
	}
}

func TestRun_FilterByMinimumGrade(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		"5", "Bob Smith", "bob@example.com", "78",
		"4", "80",
		"8",
	)

	// Only the filtered table should show Alice; Bob was never listed.
	if !strings.Contains(out, "Alice Johnson") {
		t.Errorf("filtered table missing qualifying student:\n%s", out)
	}
	if strings.Contains(out, "Bob Smith") {
		t.Errorf("filtered table should exclude grades below the minimum:\n%s", out)
	}
}

func TestRun_UpdateKeepsBlankFields(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		// Blank name and email keep the current values; only grade changes.
		"6", "1", "", "", "85",
		"3", "1",
		"8",
	)

	if !strings.Contains(out, "Student updated successfully") {
		t.Errorf("output missing update confirmation:\n%s", out)
	}
	if !strings.Contains(out, "Grade: 85") {
		t.Errorf("grade was not updated:\n%s", out)
	}
	if !strings.Contains(out, "Name: Alice Johnson") {
		t.Errorf("blank input should have kept the original name:\n%s", out)
	}
}

func TestRun_DeleteRequiresConfirmation(t *testing.T) {
	out := runSession(t,
		"5", "Alice Johnson", "alice@example.com", "92",
		"7", "1", "no",
		"7", "1", "yes",
		"1",
		"8",
	)

	if !strings.Contains(out, "Delete cancelled") {
		t.Errorf("output missing cancel message:\n%s", out)
	}
	if !strings.Contains(out, "Student deleted successfully") {
		t.Errorf("output missing delete confirmation:\n%s", out)
	}
	if !strings.Contains(out, "No students found.") {
		t.Errorf("deleted student still listed:\n%s", out)
	}
}

func TestRun_Statistics(t *testing.T) {
	out := runSession(t,
		"2",
		"5", "Alice Johnson", "alice@example.com", "92",
		"5", "Bob Smith", "bob@example.com", "78",
		"2",
		"8",
	)

	if !strings.Contains(out, "Average Grade: N/A") {
		t.Errorf("empty registry should report N/A average:\n%s", out)
	}
	if !strings.Contains(out, "Average Grade: 85.00") {
		t.Errorf("output missing computed average:\n%s", out)
	}
	if !strings.Contains(out, "A (90-100): 1") {
		t.Errorf("output missing grade distribution:\n%s", out)
	}
}

func TestRun_InvalidMenuChoice(t *testing.T) {
	out := runSession(t, "9", "8")

	if !strings.Contains(out, "Invalid choice. Please try again.") {
		t.Errorf("output missing invalid-choice message:\n%s", out)
	}
}

func TestRun_NonNumericIDInput(t *testing.T) {
	out := runSession(t, "3", "abc", "8")

	if !strings.Contains(out, "Error: Please enter a whole number") {
		t.Errorf("output missing input error:\n%s", out)
	}
}
