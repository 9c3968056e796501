package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientKey = "ratelimit:query:192.0.2.10"

func newLimitedRouter(t *testing.T, limit int) (*gin.Engine, redismock.ClientMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = client.Close() })

	router := gin.New()
	router.Use(ErrorHandler())
	router.Use(QueryRateLimiter(client, limit, time.Minute))
	router.POST("/v1/query", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router, mock
}

func doLimitedRequest(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	router.ServeHTTP(w, req)
	return w
}

func TestQueryRateLimiter_UnderLimit(t *testing.T) {
	router, mock := newLimitedRouter(t, 5)

	mock.ExpectTxPipeline()
	mock.ExpectIncr(testClientKey).SetVal(2)
	mock.ExpectExpire(testClientKey, time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	w := doLimitedRequest(router)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRateLimiter_OverLimit(t *testing.T) {
	router, mock := newLimitedRouter(t, 3)

	mock.ExpectTxPipeline()
	mock.ExpectIncr(testClientKey).SetVal(4)
	mock.ExpectExpire(testClientKey, time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()
	mock.ExpectTTL(testClientKey).SetVal(42 * time.Second)

	w := doLimitedRequest(router)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "42", w.Header().Get("Retry-After"))

	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Type)
	assert.Equal(t, "429", body.Code)
	assert.Equal(t, "retry after 42 seconds", body.Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRateLimiter_TTLFailureUsesWindow(t *testing.T) {
	router, mock := newLimitedRouter(t, 1)

	mock.ExpectTxPipeline()
	mock.ExpectIncr(testClientKey).SetVal(2)
	mock.ExpectExpire(testClientKey, time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()
	mock.ExpectTTL(testClientKey).SetErr(assert.AnError)

	w := doLimitedRequest(router)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestQueryRateLimiter_FailsOpen(t *testing.T) {
	// No expectations: every Redis command errors.
	router, _ := newLimitedRouter(t, 1)

	w := doLimitedRequest(router)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
