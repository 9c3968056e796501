package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueryHandler_HandleQuery(t *testing.T) {
	t.Run("answers the query", func(t *testing.T) {
		svc := new(MockQueryService)
		r := newTestRouter()
		r.POST("/v1/query", NewQueryHandler(svc).HandleQuery)

		pass := &types.WalletPass{
			PassType: types.PassTypeOther,
			Title:    "Query Response",
			Details:  types.AnswerDetails{Response: "You spent ₹500"},
		}
		svc.On("Answer", mock.Anything, &types.QueryRequest{Query: "How much did I spend?", UserID: "user-1"}).
			Return(&types.QueryResponse{Answer: "You spent ₹500", PassID: "pass-1", WalletPass: pass}, nil)

		w := postJSON(r, "/v1/query", map[string]string{"query": "How much did I spend?", "user_id": "user-1"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp types.QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "You spent ₹500", resp.Answer)
		assert.Equal(t, "pass-1", resp.PassID)
		assert.Empty(t, resp.WalletLink)
		require.NotNil(t, resp.WalletPass)
		assert.Equal(t, "You spent ₹500", resp.WalletPass.Answer())
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		body           any
		serviceErr     error
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "missing user",
			body:           map[string]string{"query": "hi"},
			expectedStatus: http.StatusBadRequest,
			expectedType:   string(apperrors.ValidationError),
		},
		{
			name:           "malformed json",
			body:           `{"query":`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   string(apperrors.ValidationError),
		},
		{
			name:           "persistence failure",
			body:           map[string]string{"query": "hi", "user_id": "user-1"},
			serviceErr:     apperrors.NewDatabaseError(errors.New("insert failed")),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   string(apperrors.DatabaseError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQueryService)
			r := newTestRouter()
			r.POST("/v1/query", NewQueryHandler(svc).HandleQuery)
			if tt.serviceErr != nil {
				svc.On("Answer", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := postJSON(r, "/v1/query", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, decodeError(t, w).Type)
			svc.AssertExpectations(t)
		})
	}
}
