package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func multipartUpload(t *testing.T, userID string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if userID != "" {
		require.NoError(t, writer.WriteField("user_id", userID))
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "receipt.jpg")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func receiptRouter(svc *MockReceiptService) *gin.Engine {
	h := NewReceiptHandler(svc)
	r := newTestRouter()
	r.POST("/v1/receipts/upload", h.UploadReceipt)
	r.POST("/v1/receipts/:id/wallet", h.AddToWallet)
	return r
}

func TestReceiptHandler_UploadReceipt(t *testing.T) {
	t.Run("stores the extracted receipt", func(t *testing.T) {
		svc := new(MockReceiptService)
		r := receiptRouter(svc)

		receipt := &types.Receipt{
			ID:         "r-1",
			UserID:     "user-1",
			VendorName: "Fresh Mart",
			Category:   types.CategoryGrocery,
			Amount:     decimal.RequireFromString("1250.50"),
			Items:      []types.ReceiptItem{},
		}
		svc.On("Ingest", mock.Anything, "user-1", "receipt.jpg", jpegBytes).
			Return(&types.UploadReceiptResponse{ReceiptID: "r-1", Receipt: receipt}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartUpload(t, "user-1", jpegBytes))

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			ReceiptID string         `json:"receipt_id"`
			Receipt   map[string]any `json:"receipt_data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "r-1", resp.ReceiptID)
		assert.Equal(t, "Fresh Mart", resp.Receipt["vendor_name"])
		assert.Equal(t, "grocery", resp.Receipt["category"])
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name           string
		userID         string
		file           []byte
		serviceErr     error
		expectedStatus int
		expectedType   apperrors.ErrorType
	}{
		{
			name:           "missing user",
			file:           jpegBytes,
			expectedStatus: http.StatusBadRequest,
			expectedType:   apperrors.ValidationError,
		},
		{
			name:           "missing file",
			userID:         "user-1",
			expectedStatus: http.StatusBadRequest,
			expectedType:   apperrors.ValidationError,
		},
		{
			name:           "unsupported media",
			userID:         "user-1",
			file:           []byte("%PDF-1.7 not a receipt photo"),
			serviceErr:     apperrors.UnsupportedMedia("application/pdf"),
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedType:   apperrors.UnsupportedMediaType,
		},
		{
			name:           "extraction failure",
			userID:         "user-1",
			file:           jpegBytes,
			serviceErr:     apperrors.ExternalService("receipt extraction", assert.AnError),
			expectedStatus: http.StatusBadGateway,
			expectedType:   apperrors.ExternalServiceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReceiptService)
			r := receiptRouter(svc)
			if tt.serviceErr != nil {
				svc.On("Ingest", mock.Anything, tt.userID, "receipt.jpg", tt.file).Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartUpload(t, tt.userID, tt.file))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, string(tt.expectedType), decodeError(t, w).Type)
			svc.AssertExpectations(t)
		})
	}
}

func TestReceiptHandler_AddToWallet(t *testing.T) {
	req := &types.AddToWalletRequest{
		UserID:   "user-1",
		Vendor:   "Fresh Mart",
		Category: "grocery",
		Amount:   "1250.50",
		Date:     "2025-07-18",
		Time:     "18:30",
	}

	t.Run("returns the wallet link", func(t *testing.T) {
		svc := new(MockReceiptService)
		r := receiptRouter(svc)
		svc.On("AddToWallet", mock.Anything, "r-1", req).
			Return(&types.AddToWalletResponse{WalletLink: "https://pay.google.com/gp/v/save/token"}, nil)

		w := postJSON(r, "/v1/receipts/r-1/wallet", req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"wallet_link":"https://pay.google.com/gp/v/save/token"}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("rejects an incomplete body", func(t *testing.T) {
		svc := new(MockReceiptService)
		r := receiptRouter(svc)

		w := postJSON(r, "/v1/receipts/r-1/wallet", map[string]string{"user_id": "user-1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(apperrors.ValidationError), decodeError(t, w).Type)
		svc.AssertNotCalled(t, "AddToWallet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown receipt", func(t *testing.T) {
		svc := new(MockReceiptService)
		r := receiptRouter(svc)
		svc.On("AddToWallet", mock.Anything, "missing", req).Return(nil, apperrors.NotFound("Receipt", "missing"))

		w := postJSON(r, "/v1/receipts/missing/wallet", req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, string(apperrors.NotFoundError), body.Type)
		assert.Equal(t, "ID: missing", body.Details)
	})
}
