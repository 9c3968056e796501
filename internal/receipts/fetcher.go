// Package receipts is the single place analytics code reads receipts from.
// It resolves a time-range fetch against the store and applies the
// category, vendor and amount filters in a fixed order.
package receipts

import (
	"context"
	"time"

	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

type AmountOperator string

const (
	AmountGreaterThan AmountOperator = "gt"
	AmountLessThan    AmountOperator = "lt"
	AmountEqual       AmountOperator = "eq"
)

// AmountCondition filters receipts by total. An unknown operator leaves the
// receipts untouched.
type AmountCondition struct {
	Operator AmountOperator `json:"operator" jsonschema:"enum=gt,enum=lt,enum=eq,description=Comparison applied to the receipt total"`
	Value    float64        `json:"value" jsonschema:"description=Amount to compare against"`
}

func (c AmountCondition) matches(amount float64) (bool, bool) {
	switch c.Operator {
	case AmountGreaterThan:
		return amount > c.Value, true
	case AmountLessThan:
		return amount < c.Value, true
	case AmountEqual:
		return amount == c.Value, true
	}
	return false, false
}

// Query selects receipts with Start <= date_time <= End and optional filters.
// Zero-valued filters are not applied.
type Query struct {
	Start      time.Time
	End        time.Time
	Category   types.Category
	VendorName string
	Amount     *AmountCondition
}

// Fetcher reads receipts through a store.ReceiptReader.
type Fetcher struct {
	reader  internal_store.ReceiptReader
	log     *zap.SugaredLogger
	metrics *fetchMetrics
}

func NewFetcher(reader internal_store.ReceiptReader) *Fetcher {
	return &Fetcher{
		reader:  reader,
		log:     logger.GetLogger().Named("receipts"),
		metrics: newFetchMetrics(),
	}
}

// Fetch never fails. When the store is missing or errors, the failure is
// logged and counted and an empty slice is returned so that analytics
// report "no data" rather than aborting the conversation.
func (f *Fetcher) Fetch(ctx context.Context, userID string, q Query) []types.Receipt {
	if f.reader == nil {
		f.log.Warnw("Receipt store is not configured, returning no receipts", "user_id", userID)
		f.metrics.failures.Inc()
		return []types.Receipt{}
	}

	receipts, err := f.reader.FetchByTimeRange(ctx, userID, q.Start, q.End)
	if err != nil {
		f.log.Warnw("Failed to fetch receipts",
			"user_id", userID,
			"start", q.Start,
			"end", q.End,
			"error", err)
		f.metrics.failures.Inc()
		return []types.Receipt{}
	}

	filtered := Filter(receipts, q)
	f.log.Debugw("Fetched receipts",
		"user_id", userID,
		"fetched", len(receipts),
		"matched", len(filtered))
	f.metrics.fetched.Add(float64(len(filtered)))
	return filtered
}

// Filter applies category, vendor and amount filters in that order.
func Filter(receipts []types.Receipt, q Query) []types.Receipt {
	out := make([]types.Receipt, 0, len(receipts))
	for _, r := range receipts {
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if q.VendorName != "" && r.VendorName != q.VendorName {
			continue
		}
		if q.Amount != nil {
			if ok, known := q.Amount.matches(r.AmountFloat()); known && !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
