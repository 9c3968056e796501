package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/internal/ocr"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
)

// multipart overhead allowed on top of the media itself
const formOverhead = 1 << 20

type ReceiptHandler struct {
	receiptService ReceiptServiceInterface
}

func NewReceiptHandler(receiptService ReceiptServiceInterface) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// UploadReceipt extracts a receipt from an uploaded photo or video.
// @Summary Upload a receipt
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image or video"
// @Param user_id formData string true "User ID"
// @Success 201 {object} types.UploadReceiptResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 415 {object} types.ErrorResponse
// @Failure 502 {object} types.ErrorResponse
// @Router /v1/receipts/upload [post]
func (h *ReceiptHandler) UploadReceipt(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ocr.MaxMediaSize+formOverhead)

	userID := strings.TrimSpace(c.PostForm("user_id"))
	if userID == "" {
		_ = c.Error(errors.ValidationFailed("Missing user", "user_id field is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(errors.ValidationFailed("Missing file", "file field is required"))
		return
	}
	if fileHeader.Size > ocr.MaxMediaSize {
		_ = c.Error(errors.ValidationFailed("File too large", fmt.Sprintf("maximum size is %d bytes", ocr.MaxMediaSize)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid file", "failed to open uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.GetLogger().Warnw("UploadReceipt: failed to read upload", "error", err)
		_ = c.Error(errors.ValidationFailed("Invalid file", "failed to read uploaded file"))
		return
	}

	resp, err := h.receiptService.Ingest(c.Request.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// AddToWallet applies the user's corrections to a stored receipt and returns
// a wallet save link for it.
// @Summary Create a wallet pass for a receipt
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param request body types.AddToWalletRequest true "Reviewed receipt fields"
// @Success 200 {object} types.AddToWalletResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /v1/receipts/{id}/wallet [post]
func (h *ReceiptHandler) AddToWallet(c *gin.Context) {
	receiptID := strings.TrimSpace(c.Param("id"))
	if receiptID == "" {
		_ = c.Error(errors.ValidationFailed("Invalid receipt", "receipt id is required"))
		return
	}

	var req types.AddToWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	resp, err := h.receiptService.AddToWallet(c.Request.Context(), receiptID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
