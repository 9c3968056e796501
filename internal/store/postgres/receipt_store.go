package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
)

var _ internal_store.ReceiptStore = (*ReceiptStore)(nil)

const receiptColumns = `id, user_id, vendor_name, category, date_time, amount, subtotal, tax, items,
	payment_method, currency, language, image_key, wallet_link, created_at, updated_at`

// ReceiptStore implements internal_store.ReceiptStore on the receipts table.
type ReceiptStore struct {
	db DBTX
}

// NewReceiptStore creates a new ReceiptStore
func NewReceiptStore(db DBTX) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// Save upserts the receipt keyed by id.
func (s *ReceiptStore) Save(ctx context.Context, receipt *types.Receipt) (string, error) {
	if receipt == nil {
		return "", fmt.Errorf("%w: nil receipt", internal_store.ErrInvalidRecord)
	}
	receipt.ApplyDefaults()
	if err := receipt.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", internal_store.ErrInvalidRecord, err)
	}
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}

	itemsJSON, err := json.Marshal(receipt.Items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt items: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO receipts (id, user_id, vendor_name, category, date_time, amount, subtotal, tax, items,
			payment_method, currency, language, image_key, wallet_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			vendor_name = EXCLUDED.vendor_name,
			category = EXCLUDED.category,
			date_time = EXCLUDED.date_time,
			amount = EXCLUDED.amount,
			subtotal = EXCLUDED.subtotal,
			tax = EXCLUDED.tax,
			items = EXCLUDED.items,
			payment_method = EXCLUDED.payment_method,
			currency = EXCLUDED.currency,
			language = EXCLUDED.language,
			image_key = COALESCE(EXCLUDED.image_key, receipts.image_key),
			wallet_link = COALESCE(EXCLUDED.wallet_link, receipts.wallet_link),
			updated_at = NOW()
		WHERE receipts.user_id = EXCLUDED.user_id
		RETURNING created_at, updated_at`,
		receipt.ID, receipt.UserID, receipt.VendorName, string(receipt.Category), receipt.DateTime.UTC(),
		receipt.Amount, receipt.Subtotal, receipt.Tax, itemsJSON,
		nullText(receipt.PaymentMethod), receipt.Currency, receipt.Language,
		nullText(receipt.ImageKey), nullText(receipt.WalletLink),
	).Scan(&receipt.CreatedAt, &receipt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// the id exists under another user
			return "", fmt.Errorf("%w: receipt id %s is taken", internal_store.ErrInvalidRecord, receipt.ID)
		}
		return "", fmt.Errorf("failed to save receipt: %w", err)
	}
	return receipt.ID, nil
}

// Get retrieves one receipt owned by userID.
func (s *ReceiptStore) Get(ctx context.Context, userID, id string) (*types.Receipt, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1 AND user_id = $2`, id, userID)
	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal_store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// FetchByTimeRange lists the user's receipts in [start, end] ordered by date_time.
func (s *ReceiptStore) FetchByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]types.Receipt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts
		WHERE user_id = $1 AND date_time >= $2 AND date_time <= $3
		ORDER BY date_time ASC`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts := []types.Receipt{}
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}

// SetWalletLink stores the save-to-wallet link issued for a receipt.
func (s *ReceiptStore) SetWalletLink(ctx context.Context, userID, id, link string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE receipts SET wallet_link = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		link, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set wallet link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return internal_store.ErrNotFound
	}
	return nil
}

// ListMissingWalletLinks returns up to limit receipts, oldest first, that
// have no wallet link yet.
func (s *ReceiptStore) ListMissingWalletLinks(ctx context.Context, limit int) ([]types.Receipt, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts
		WHERE wallet_link IS NULL
		ORDER BY created_at ASC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts without wallet link: %w", err)
	}
	defer rows.Close()

	receipts := []types.Receipt{}
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}

func scanReceipt(row rowScanner) (*types.Receipt, error) {
	var (
		r                                   types.Receipt
		category                            string
		subtotal, tax                       decimal.NullDecimal
		itemsJSON                           []byte
		paymentMethod, imageKey, walletLink pgtype.Text
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.VendorName, &category, &r.DateTime, &r.Amount, &subtotal, &tax, &itemsJSON,
		&paymentMethod, &r.Currency, &r.Language, &imageKey, &walletLink, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Category = types.Category(category)
	r.Subtotal = subtotal.Decimal
	r.Tax = tax.Decimal
	r.PaymentMethod = paymentMethod.String
	r.ImageKey = imageKey.String
	r.WalletLink = walletLink.String
	r.Items = []types.ReceiptItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &r.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal receipt items: %w", err)
		}
	}
	return &r, nil
}
