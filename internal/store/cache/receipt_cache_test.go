package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

type mockReceiptStore struct {
	mock.Mock
}

func (m *mockReceiptStore) FetchByTimeRange(ctx context.Context, userID string, start, end time.Time) ([]types.Receipt, error) {
	args := m.Called(ctx, userID, start, end)
	if v := args.Get(0); v != nil {
		return v.([]types.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReceiptStore) Save(ctx context.Context, r *types.Receipt) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *mockReceiptStore) Get(ctx context.Context, userID, id string) (*types.Receipt, error) {
	args := m.Called(ctx, userID, id)
	if v := args.Get(0); v != nil {
		return v.(*types.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReceiptStore) SetWalletLink(ctx context.Context, userID, id, link string) error {
	return m.Called(ctx, userID, id, link).Error(0)
}

var (
	start = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)
)

func sampleReceipts() []types.Receipt {
	return []types.Receipt{{
		ID:         "r-1",
		UserID:     "user-1",
		VendorName: "Fresh Mart",
		Category:   types.CategoryGrocery,
		DateTime:   start.Add(36 * time.Hour),
		Amount:     decimal.RequireFromString("120.50"),
		Items:      []types.ReceiptItem{},
	}}
}

func TestFetchByTimeRange_MissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, 2*time.Minute)

	receipts := sampleReceipts()
	payload, err := json.Marshal(receipts)
	require.NoError(t, err)
	key := rangeKey("user-1", "0", start, end)

	rmock.ExpectGet(versionKey("user-1")).RedisNil()
	rmock.ExpectGet(key).RedisNil()
	store.On("FetchByTimeRange", ctx, "user-1", start, end).Return(receipts, nil).Once()
	rmock.ExpectSet(key, payload, 2*time.Minute).SetVal("OK")

	got, err := c.FetchByTimeRange(ctx, "user-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, receipts, got)
	assert.NoError(t, rmock.ExpectationsWereMet())
	store.AssertExpectations(t)
}

func TestFetchByTimeRange_HitSkipsStore(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	payload, err := json.Marshal(sampleReceipts())
	require.NoError(t, err)

	rmock.ExpectGet(versionKey("user-1")).SetVal("3")
	rmock.ExpectGet(rangeKey("user-1", "3", start, end)).SetVal(string(payload))

	got, err := c.FetchByTimeRange(ctx, "user-1", start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fresh Mart", got[0].VendorName)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("120.5")))
	store.AssertNotCalled(t, "FetchByTimeRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchByTimeRange_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	rmock.ExpectGet(versionKey("user-1")).SetErr(errors.New("connection refused"))
	store.On("FetchByTimeRange", ctx, "user-1", start, end).Return(sampleReceipts(), nil).Once()

	got, err := c.FetchByTimeRange(ctx, "user-1", start, end)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	store.AssertExpectations(t)
}

func TestFetchByTimeRange_StoreErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	rmock.ExpectGet(versionKey("user-1")).RedisNil()
	rmock.ExpectGet(rangeKey("user-1", "0", start, end)).RedisNil()
	store.On("FetchByTimeRange", ctx, "user-1", start, end).Return(nil, errors.New("db down")).Once()

	_, err := c.FetchByTimeRange(ctx, "user-1", start, end)
	assert.EqualError(t, err, "db down")
}

func TestSave_BumpsVersion(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	r := &sampleReceipts()[0]
	store.On("Save", ctx, r).Return("r-1", nil).Once()
	rmock.ExpectIncr(versionKey("user-1")).SetVal(4)

	id, err := c.Save(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "r-1", id)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSave_StoreErrorDoesNotInvalidate(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	r := &sampleReceipts()[0]
	store.On("Save", ctx, r).Return("", errors.New("constraint")).Once()

	_, err := c.Save(ctx, r)
	require.Error(t, err)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestSetWalletLink_Invalidates(t *testing.T) {
	ctx := context.Background()
	rdb, rmock := redismock.NewClientMock()
	store := new(mockReceiptStore)
	c := NewReceiptCache(store, rdb, time.Minute)

	store.On("SetWalletLink", ctx, "user-1", "r-1", "link").Return(nil).Once()
	rmock.ExpectIncr(versionKey("user-1")).SetVal(1)

	require.NoError(t, c.SetWalletLink(ctx, "user-1", "r-1", "link"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}
