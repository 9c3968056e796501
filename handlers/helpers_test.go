package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/middleware"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
