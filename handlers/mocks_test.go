package handlers

import (
	"context"

	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Answer(ctx context.Context, req *types.QueryRequest) (*types.QueryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.QueryResponse), args.Error(1)
}

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Ingest(ctx context.Context, userID, filename string, data []byte) (*types.UploadReceiptResponse, error) {
	args := m.Called(ctx, userID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UploadReceiptResponse), args.Error(1)
}

func (m *MockReceiptService) AddToWallet(ctx context.Context, receiptID string, req *types.AddToWalletRequest) (*types.AddToWalletResponse, error) {
	args := m.Called(ctx, receiptID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AddToWalletResponse), args.Error(1)
}

type MockInsightsService struct {
	mock.Mock
}

func (m *MockInsightsService) Generate(ctx context.Context, userID string) (*types.InsightsSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.InsightsSummary), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthCheck)
}

var (
	_ QueryServiceInterface    = (*MockQueryService)(nil)
	_ ReceiptServiceInterface  = (*MockReceiptService)(nil)
	_ InsightsServiceInterface = (*MockInsightsService)(nil)
	_ HealthServiceInterface   = (*MockHealthService)(nil)
)
