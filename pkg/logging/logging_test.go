package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe installs an observed logger for the duration of the test.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := globalLogger.Load()
	Set(zap.New(core))
	t.Cleanup(func() { globalLogger.Store(prev) })
	return logs
}

func TestInit(t *testing.T) {
	prev := globalLogger.Load()
	t.Cleanup(func() {
		globalLogger.Store(prev)
		globalLevel.SetLevel(zapcore.InfoLevel)
	})

	out := filepath.Join(t.TempDir(), "webdesk.log")
	require.NoError(t, Init(Config{Level: "warn", Format: "json", OutputPath: out}))
	assert.Equal(t, zapcore.WarnLevel, globalLevel.Level())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))

	SetLevel("debug")
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
	SetLevel("nonsense")
	assert.Equal(t, zapcore.DebugLevel, globalLevel.Level())

	require.NoError(t, Init(Config{Level: "bogus", Format: "console", OutputPath: out}))
	assert.Equal(t, zapcore.InfoLevel, globalLevel.Level())
}

func TestNamedAndContext(t *testing.T) {
	logs := observe(t)

	Named("session").Info("hello", zap.String("user", "alice"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "session", entry.LoggerName)
	assert.Equal(t, "alice", entry.ContextMap()["user"])

	ctx := NewContext(context.Background(), L().With(zap.String("request_id", "r1")))
	WithContext(ctx).Info("scoped")
	assert.Equal(t, "r1", logs.All()[1].ContextMap()["request_id"])

	WithContext(context.Background()).Info("global")
	assert.NotContains(t, logs.All()[2].ContextMap(), "request_id")
}

func TestMiddleware(t *testing.T) {
	logs := observe(t)

	var seen bool
	handler := middleware.RequestID(Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WithContext(r.Context()).Debug("inside")
		seen = true
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	require.True(t, seen)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, "/state", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	inside := logs.FilterMessage("inside").All()
	require.Len(t, inside, 1)
	assert.Equal(t, fields["request_id"], inside[0].ContextMap()["request_id"])
}

func TestLDiscardsBeforeInit(t *testing.T) {
	prev := globalLogger.Load()
	globalLogger.Store(nil)
	t.Cleanup(func() { globalLogger.Store(prev) })

	assert.NotNil(t, L())
	assert.NotNil(t, S())
	assert.NoError(t, Sync())
}
