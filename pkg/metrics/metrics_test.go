package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("inbox", "success"))
	RecordUpload("inbox", true)
	assert.Equal(t, before+1, testutil.ToFloat64(uploadsTotal.WithLabelValues("inbox", "success")))

	SetWindowsOpen("alice", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(windowsOpen.WithLabelValues("alice")))

	SetTreeSize("alice", 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(treeSize.WithLabelValues("alice")))

	SetDesktopsLoaded(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(desktopsLoaded))

	before = testutil.ToFloat64(commandsTotal.WithLabelValues("ls", "error"))
	RecordCommand("ls", true, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(commandsTotal.WithLabelValues("ls", "error")))

	before = testutil.ToFloat64(storeOperationsTotal.WithLabelValues("memory", "save", "success"))
	RecordStoreOperation("memory", "save", time.Millisecond, true)
	assert.Equal(t, before+1, testutil.ToFloat64(storeOperationsTotal.WithLabelValues("memory", "save", "success")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/users/{user}/state", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/users/{user}/state", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/alice/state", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/users/{user}/state", "200")))
}

func TestHandler(t *testing.T) {
	RecordWindowEvent("open")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "webdesk_window_events_total"))
}
