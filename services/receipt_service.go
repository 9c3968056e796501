package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/internal/ocr"
	"github.com/raseed-labs/raseed-backend/internal/storage"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptExtractor reads a receipt out of uploaded media.
type ReceiptExtractor interface {
	Extract(ctx context.Context, media []byte) (*types.Receipt, error)
}

// ReceiptLinker signs the wallet save link for a receipt.
type ReceiptLinker interface {
	ReceiptLink(receipt *types.Receipt) (string, error)
}

type ReceiptService struct {
	extractor ReceiptExtractor
	receipts  internal_store.ReceiptStore
	objects   storage.ObjectStorage
	linker    ReceiptLinker
	log       *zap.SugaredLogger
}

// NewReceiptService wires receipt ingestion. objects and linker are optional:
// without them images are not kept and wallet links cannot be created.
func NewReceiptService(extractor ReceiptExtractor, receipts internal_store.ReceiptStore, objects storage.ObjectStorage, linker ReceiptLinker) *ReceiptService {
	return &ReceiptService{
		extractor: extractor,
		receipts:  receipts,
		objects:   objects,
		linker:    linker,
		log:       logger.GetLogger().Named("receipt_service"),
	}
}

// ImageKey is the object key of a receipt's original upload.
func ImageKey(userID, receiptID, extension string) string {
	return fmt.Sprintf("receipts/%s/%s%s", userID, receiptID, extension)
}

// Ingest extracts a receipt from data, keeps the original upload when object
// storage is configured and persists the receipt.
func (s *ReceiptService) Ingest(ctx context.Context, userID, filename string, data []byte) (*types.UploadReceiptResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.ValidationFailed("user_id is required", "")
	}
	if len(data) > ocr.MaxMediaSize {
		return nil, apperrors.ValidationFailed("File too large", fmt.Sprintf("file size %d exceeds maximum of %d bytes", len(data), ocr.MaxMediaSize))
	}
	mimeType, ext, err := ocr.DetectMedia(data)
	switch {
	case errors.Is(err, ocr.ErrEmptyMedia):
		return nil, apperrors.ValidationFailed("Uploaded file is empty", filename)
	case errors.Is(err, ocr.ErrUnsupportedMedia):
		return nil, apperrors.UnsupportedMedia(mimeType)
	case err != nil:
		return nil, apperrors.Wrap(err, apperrors.ValidationError, "Invalid upload")
	}

	receipt, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, apperrors.ExternalService("receipt extraction", err)
	}
	receipt.ID = uuid.NewString()
	receipt.UserID = userID

	if s.objects != nil {
		key := ImageKey(userID, receipt.ID, ext)
		if err := s.objects.Put(ctx, key, bytes.NewReader(data), mimeType); err != nil {
			s.log.Warnw("Failed to store receipt image", "user_id", userID, "key", key, "error", err)
		} else {
			receipt.ImageKey = key
		}
	}

	id, err := s.receipts.Save(ctx, receipt)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	receipt.ID = id
	receipt.RawText = ""

	s.log.Infow("Receipt ingested",
		"user_id", userID,
		"receipt_id", id,
		"filename", filename,
		"mime_type", mimeType,
		"vendor", receipt.VendorName)
	return &types.UploadReceiptResponse{ReceiptID: id, Receipt: receipt}, nil
}

// AddToWallet applies the user's reviewed fields to a stored receipt, saves
// it and returns a wallet save link for it.
func (s *ReceiptService) AddToWallet(ctx context.Context, receiptID string, req *types.AddToWalletRequest) (*types.AddToWalletResponse, error) {
	if s.linker == nil {
		return nil, apperrors.InternalServerError("Wallet passes are not configured")
	}

	receipt, err := s.receipts.Get(ctx, req.UserID, receiptID)
	if errors.Is(err, internal_store.ErrNotFound) {
		return nil, apperrors.NotFound("Receipt", receiptID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := applyOverrides(receipt, req); err != nil {
		return nil, err
	}
	if _, err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	link, err := s.linker.ReceiptLink(receipt)
	if err != nil {
		return nil, apperrors.ExternalService("wallet", err)
	}
	if err := s.receipts.SetWalletLink(ctx, req.UserID, receiptID, link); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	s.log.Infow("Receipt added to wallet", "user_id", req.UserID, "receipt_id", receiptID)
	return &types.AddToWalletResponse{WalletLink: link}, nil
}

func applyOverrides(r *types.Receipt, req *types.AddToWalletRequest) error {
	category, err := types.ParseCategory(req.Category)
	if err != nil {
		return apperrors.ValidationFailed("Invalid category", err.Error())
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.IsNegative() {
		return apperrors.ValidationFailed("Invalid amount", req.Amount)
	}

	clock := strings.TrimSpace(req.Time)
	if clock == "" {
		clock = "00:00"
	}
	loc := r.DateTime.Location()
	when, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(req.Date)+" "+clock, loc)
	if err != nil {
		return apperrors.ValidationFailed("Invalid date or time", "expected YYYY-MM-DD and HH:MM")
	}

	r.VendorName = strings.TrimSpace(req.Vendor)
	r.Category = category
	r.Amount = amount
	r.DateTime = when
	r.ApplyDefaults()
	return nil
}
