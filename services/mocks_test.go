package services

import (
	"context"
	"io"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/assistant"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, media []byte) (*types.Receipt, error) {
	args := m.Called(ctx, media)
	if r, ok := args.Get(0).(*types.Receipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) FetchByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]types.Receipt, error) {
	args := m.Called(ctx, userID, start, end)
	if rs, ok := args.Get(0).([]types.Receipt); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReceiptStore) Save(ctx context.Context, receipt *types.Receipt) (string, error) {
	args := m.Called(ctx, receipt)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptStore) Get(ctx context.Context, userID, id string) (*types.Receipt, error) {
	args := m.Called(ctx, userID, id)
	if r, ok := args.Get(0).(*types.Receipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReceiptStore) SetWalletLink(ctx context.Context, userID, id, link string) error {
	args := m.Called(ctx, userID, id, link)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type MockReceiptLinker struct {
	mock.Mock
}

func (m *MockReceiptLinker) ReceiptLink(receipt *types.Receipt) (string, error) {
	args := m.Called(receipt)
	return args.String(0), args.Error(1)
}

type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) ProcessQuery(ctx context.Context, query, userID string) (*types.WalletPass, assistant.Trace) {
	args := m.Called(ctx, query, userID)
	return args.Get(0).(*types.WalletPass), args.Get(1).(assistant.Trace)
}

type MockPassStore struct {
	mock.Mock
}

func (m *MockPassStore) Save(ctx context.Context, pass *types.WalletPass) (string, error) {
	args := m.Called(ctx, pass)
	return args.String(0), args.Error(1)
}

func (m *MockPassStore) Get(ctx context.Context, userID, id string) (*types.WalletPass, error) {
	args := m.Called(ctx, userID, id)
	if p, ok := args.Get(0).(*types.WalletPass); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockQueryLog struct {
	mock.Mock
}

func (m *MockQueryLog) LogQuery(ctx context.Context, record *types.QueryRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}
