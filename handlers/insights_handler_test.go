package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInsightsHandler_HandleInsights(t *testing.T) {
	t.Run("returns the summary", func(t *testing.T) {
		svc := new(MockInsightsService)
		r := newTestRouter()
		r.POST("/v1/insights", NewInsightsHandler(svc).HandleInsights)

		summary := &types.InsightsSummary{
			Month:         "July 2025",
			TotalSpending: 1200.5,
			ReceiptCount:  3,
			TopCategories: []types.CategoryAmount{{Category: types.CategoryGrocery, Amount: "800.50"}},
		}
		svc.On("Generate", mock.Anything, "user-1").Return(summary, nil)

		w := postJSON(r, "/v1/insights", map[string]string{"user_id": "user-1"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp types.InsightsSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, *summary, resp)
		svc.AssertExpectations(t)
	})

	t.Run("requires a user", func(t *testing.T) {
		svc := new(MockInsightsService)
		r := newTestRouter()
		r.POST("/v1/insights", NewInsightsHandler(svc).HandleInsights)

		for _, body := range []any{map[string]string{}, map[string]string{"user_id": "  "}} {
			w := postJSON(r, "/v1/insights", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(apperrors.ValidationError), decodeError(t, w).Type)
		}
		svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("generation failure", func(t *testing.T) {
		svc := new(MockInsightsService)
		r := newTestRouter()
		r.POST("/v1/insights", NewInsightsHandler(svc).HandleInsights)
		svc.On("Generate", mock.Anything, "user-1").
			Return(nil, fmt.Errorf("generate insights: %w", context.DeadlineExceeded))

		w := postJSON(r, "/v1/insights", map[string]string{"user_id": "user-1"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, string(apperrors.ServerError), decodeError(t, w).Type)
	})
}
