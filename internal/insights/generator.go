// Package insights summarises the current month's spending and publishes a
// chart workbook and an optional wallet pass for it.
package insights

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/analytics"
	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/internal/storage"
	"github.com/raseed-labs/raseed-backend/internal/wallet"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

const (
	NoReceiptsMessage = "No receipts found for this month."

	topCategoryCount = 3
	chartURLTTL      = 15 * time.Minute
)

// InsightsLinker signs the wallet pass for a monthly summary.
type InsightsLinker interface {
	InsightsLink(summary wallet.InsightsSummary) (string, error)
}

type Generator struct {
	fetcher analytics.ReceiptFetcher
	storage storage.ObjectStorage
	linker  InsightsLinker
	now     func() time.Time
	loc     *time.Location
	log     *zap.SugaredLogger
}

type Option func(*Generator)

// WithStorage enables chart uploads.
func WithStorage(s storage.ObjectStorage) Option {
	return func(g *Generator) {
		g.storage = s
	}
}

// WithWallet enables wallet links for insight summaries.
func WithWallet(l InsightsLinker) Option {
	return func(g *Generator) {
		g.linker = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func NewGenerator(fetcher analytics.ReceiptFetcher, opts ...Option) *Generator {
	g := &Generator{
		fetcher: fetcher,
		now:     time.Now,
		loc:     time.UTC,
		log:     logger.GetLogger().Named("insights"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate summarises userID's spending from the first of the current month
// until now. Chart and wallet failures are logged and leave their fields empty.
func (g *Generator) Generate(ctx context.Context, userID string) (*types.InsightsSummary, error) {
	now := g.now().In(g.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, g.loc)
	summary := &types.InsightsSummary{
		Month:         now.Format("January 2006"),
		TopCategories: []types.CategoryAmount{},
	}

	rs := g.fetcher.Fetch(ctx, userID, receipts.Query{Start: monthStart, End: now})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}
	if len(rs) == 0 {
		summary.Message = NoReceiptsMessage
		return summary, nil
	}

	totals := analytics.CategoryTotals(rs)
	for _, cs := range totals {
		summary.TotalSpending += cs.Total
	}
	summary.TotalSpending = roundCents(summary.TotalSpending)
	summary.ReceiptCount = len(rs)
	for i := 0; i < len(totals) && i < topCategoryCount; i++ {
		summary.TopCategories = append(summary.TopCategories, types.CategoryAmount{
			Category: totals[i].Category,
			Amount:   fmt.Sprintf("%.2f", totals[i].Total),
		})
	}

	summary.SpendingChartURL = g.publishChart(ctx, userID, now, summary.Month, totals)
	summary.WalletLink = g.walletLink(userID, summary)

	g.log.Infow("Generated insights",
		"user_id", userID,
		"month", summary.Month,
		"receipts", summary.ReceiptCount,
		"total", summary.TotalSpending,
		"chart", summary.SpendingChartURL != "")
	return summary, nil
}

func (g *Generator) publishChart(ctx context.Context, userID string, now time.Time, month string, totals []analytics.CategorySpend) string {
	if g.storage == nil {
		return ""
	}
	data, err := buildWorkbook(month, totals)
	if err != nil {
		g.log.Warnw("Failed to build spending chart", "user_id", userID, "error", err)
		return ""
	}
	key := ChartKey(userID, now)
	if err := g.storage.Put(ctx, key, bytes.NewReader(data), xlsxMIMEType); err != nil {
		g.log.Warnw("Failed to upload spending chart", "user_id", userID, "key", key, "error", err)
		return ""
	}
	url, err := g.storage.PresignGet(ctx, key, chartURLTTL)
	if err != nil {
		g.log.Warnw("Failed to sign spending chart URL", "user_id", userID, "key", key, "error", err)
		return ""
	}
	return url
}

func (g *Generator) walletLink(userID string, s *types.InsightsSummary) string {
	if g.linker == nil {
		return ""
	}
	top := make([]wallet.CategoryAmount, 0, len(s.TopCategories))
	for _, c := range s.TopCategories {
		top = append(top, wallet.CategoryAmount{Category: string(c.Category), Amount: c.Amount})
	}
	link, err := g.linker.InsightsLink(wallet.InsightsSummary{
		Month:         s.Month,
		TotalSpending: s.TotalSpending,
		TopCategories: top,
	})
	if err != nil {
		g.log.Warnw("Failed to create insights wallet link", "user_id", userID, "error", err)
		return ""
	}
	return link
}

// ChartKey is the object key of a user's chart workbook for the month of t.
func ChartKey(userID string, t time.Time) string {
	return fmt.Sprintf("insights/%s/spending_%s.xlsx", userID, t.Format("200601"))
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
