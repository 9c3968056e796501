package handlers

import (
	"context"

	"github.com/raseed-labs/raseed-backend/internal/insights"
	"github.com/raseed-labs/raseed-backend/services"
	"github.com/raseed-labs/raseed-backend/types"
)

// QueryServiceInterface answers natural-language questions about receipts.
type QueryServiceInterface interface {
	Answer(ctx context.Context, req *types.QueryRequest) (*types.QueryResponse, error)
}

// ReceiptServiceInterface ingests uploads and turns receipts into wallet passes.
type ReceiptServiceInterface interface {
	Ingest(ctx context.Context, userID, filename string, data []byte) (*types.UploadReceiptResponse, error)
	AddToWallet(ctx context.Context, receiptID string, req *types.AddToWalletRequest) (*types.AddToWalletResponse, error)
}

// InsightsServiceInterface builds the monthly spending summary.
type InsightsServiceInterface interface {
	Generate(ctx context.Context, userID string) (*types.InsightsSummary, error)
}

// HealthServiceInterface reports dependency health.
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

var (
	_ QueryServiceInterface    = (*services.QueryService)(nil)
	_ ReceiptServiceInterface  = (*services.ReceiptService)(nil)
	_ InsightsServiceInterface = (*insights.Generator)(nil)
	_ HealthServiceInterface   = (*services.HealthService)(nil)
)
