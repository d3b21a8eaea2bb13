package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/student-registry/internal/handler"
)

// The page handler renders the real templates from web/templates, so this
// test catches template breakage (a renamed define block, a missing file)
// that would otherwise only surface as a 500 on GET /.
func newTestPageHandler(t *testing.T) *handler.PageHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h, err := handler.NewPageHandler("../../web/templates", logger)
	require.NoError(t, err)
	return h
}

func TestHandleIndex(t *testing.T) {
	h := newTestPageHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.HandleIndex(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	// The base skeleton rendered with the page title...
	assert.Contains(t, body, "<title>Student Registry</title>")
	// ...and pulled in the students content block and client script.
	assert.Contains(t, body, `id="student-form"`)
	assert.Contains(t, body, `id="statistics"`)
	assert.Contains(t, body, "/static/js/app.js")
}

func TestNewPageHandler_MissingTemplates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_, err := handler.NewPageHandler(t.TempDir(), logger)
	assert.Error(t, err)
}
