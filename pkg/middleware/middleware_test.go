package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/riskanalytics/pkg/logger"
)

func TestRequestIDInjectsTypedContextKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotTraceID, gotRequestID string
	var bareLookup any

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		gotTraceID = logger.TraceIDFromContext(ctx)
		gotRequestID = logger.RequestIDFromContext(ctx)
		bareLookup = ctx.Value("trace_id")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	req.Header.Set("X-Request-ID", "req-456")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", gotTraceID)
	assert.Equal(t, "req-456", gotRequestID)
	// 私有类型键不应被裸字符串命中
	assert.Nil(t, bareLookup)

	assert.Equal(t, "trace-123", w.Header().Get("X-Trace-ID"))
	assert.Equal(t, "req-456", w.Header().Get("X-Request-ID"))
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotTraceID, gotRequestID string

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		gotTraceID = logger.TraceIDFromContext(ctx)
		gotRequestID = logger.RequestIDFromContext(ctx)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, gotTraceID)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, gotTraceID, w.Header().Get("X-Trace-ID"))
	assert.Equal(t, gotRequestID, w.Header().Get("X-Request-ID"))
}
