package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	logger.Debug("hidden")
	logger.With("component", "scoring").Info("scored", "students", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scored", entry["msg"])
	assert.Equal(t, "scoring", entry["component"])
	assert.Equal(t, float64(3), entry["students"])
}

func TestLogRequest_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	logger.LogRequest("POST", "/api/v1/scores", 503, "1ms")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, float64(503), entry["status_code"])
}

func TestContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), ContextLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		GetLoggerFromContext(c).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var handlerEntry, requestEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &handlerEntry))
	require.NoError(t, json.Unmarshal(lines[1], &requestEntry))
	assert.Equal(t, "req-1", handlerEntry["request_id"])
	assert.Equal(t, "HTTP Request", requestEntry["msg"])
	assert.Equal(t, float64(http.StatusNoContent), requestEntry["status_code"])
}
