package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		status         types.HealthStatus
		path           string
		expectedStatus int
	}{
		{name: "readiness up", status: types.HealthStatusUp, path: "/health/readiness", expectedStatus: http.StatusOK},
		{name: "readiness degraded", status: types.HealthStatusDegraded, path: "/health/readiness", expectedStatus: http.StatusOK},
		{name: "readiness down", status: types.HealthStatusDown, path: "/health/readiness", expectedStatus: http.StatusServiceUnavailable},
		{name: "detailed health down", status: types.HealthStatusDown, path: "/health", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			h := NewHealthHandler(svc, "1.2.3")
			r := newTestRouter()
			r.GET("/health", h.DetailedHealth)
			r.GET("/health/readiness", h.ReadinessCheck)

			svc.On("CheckHealth", mock.Anything).Return(types.HealthCheck{
				Status:     tt.status,
				Version:    "1.2.3",
				Components: map[string]types.HealthComponent{"database": {Status: tt.status}},
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var health types.HealthCheck
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
			assert.Equal(t, tt.status, health.Status)
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_WelcomeAndLiveness(t *testing.T) {
	h := NewHealthHandler(new(MockHealthService), "1.2.3")
	r := newTestRouter()
	r.GET("/", h.Welcome)
	r.GET("/health/liveness", h.LivenessCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var welcome types.WelcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &welcome))
	assert.Equal(t, "1.2.3", welcome.Version)
	assert.Contains(t, welcome.Message, "Raseed")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
