// Package store declares the persistence contracts used by the services and
// the receipt fetch adapter. Implementations live in the postgres and cache subpackages.
package store

import (
	"context"
	"time"

	"github.com/raseed-labs/raseed-backend/types"
)

// ReceiptReader is the read side consumed by the fetch adapter.
type ReceiptReader interface {
	// FetchByTimeRange returns the user's receipts with start <= date_time <= end,
	// ordered by date_time.
	FetchByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]types.Receipt, error)
}

// ReceiptStore persists extracted receipts.
type ReceiptStore interface {
	ReceiptReader
	// Save inserts or replaces the receipt and returns its id. A new id is
	// generated when receipt.ID is empty. RawText is never written.
	Save(ctx context.Context, receipt *types.Receipt) (string, error)
	Get(ctx context.Context, userID, id string) (*types.Receipt, error)
	SetWalletLink(ctx context.Context, userID, id, link string) error
}

// PassStore persists the wallet passes produced for answered queries.
type PassStore interface {
	Save(ctx context.Context, pass *types.WalletPass) (string, error)
	Get(ctx context.Context, userID, id string) (*types.WalletPass, error)
}

// QueryLogStore records every answered query.
type QueryLogStore interface {
	LogQuery(ctx context.Context, record *types.QueryRecord) (string, error)
}
