// Package analytics implements the spending analysis functions exposed to
// the assistant as tools. Every function reads receipts through the fetch
// adapter and returns a typed result; raw receipts never leave the package.
package analytics

import (
	"context"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

// Lookback windows used by the functions that analyse recent history.
const (
	inventoryLookbackDays    = 90
	subscriptionLookbackDays = 90
	savingsLookbackDays      = 60
	suggestionLookbackDays   = 30
)

// ReceiptFetcher is satisfied by *receipts.Fetcher.
type ReceiptFetcher interface {
	Fetch(ctx context.Context, userID string, q receipts.Query) []types.Receipt
}

// Analyzer runs the analytics functions for one user at a time. It holds no
// per-request state and is safe for concurrent use.
type Analyzer struct {
	fetcher ReceiptFetcher
	now     func() time.Time
	loc     *time.Location
	log     *zap.SugaredLogger
}

type Option func(*Analyzer)

// WithClock overrides the clock used for "now" relative windows.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithLocation sets the time zone calendar dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) {
		if loc != nil {
			a.loc = loc
		}
	}
}

func NewAnalyzer(fetcher ReceiptFetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		now:     time.Now,
		loc:     time.UTC,
		log:     logger.GetLogger().Named("analytics"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) today() time.Time {
	return a.now().In(a.loc)
}

// recent fetches the receipts from the start of the day lookbackDays ago until now.
func (a *Analyzer) recent(ctx context.Context, userID string, lookbackDays int, category types.Category) []types.Receipt {
	now := a.today()
	start := startOfDay(now.AddDate(0, 0, -lookbackDays))
	return a.fetcher.Fetch(ctx, userID, receipts.Query{Start: start, End: now, Category: category})
}
