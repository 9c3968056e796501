package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	fixedNow  = time.Date(2025, 7, 20, 15, 0, 0, 0, time.UTC)
)

type fakeModel struct {
	text string
	err  error
	req  *llm.Request
}

func (m *fakeModel) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Response{Content: &llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{Text: m.text}}}}, nil
}

func newTestExtractor(model llm.Model) *Extractor {
	return NewExtractor(model, WithClock(func() time.Time { return fixedNow }))
}

func TestDetectMedia(t *testing.T) {
	mt, ext, err := DetectMedia(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, ".png", ext)

	mt, ext, err = DetectMedia(jpegBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)
	assert.Equal(t, ".jpg", ext)

	_, _, err = DetectMedia([]byte("hello, this is plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, _, err = DetectMedia(nil)
	assert.ErrorIs(t, err, ErrEmptyMedia)
}

func TestExtract(t *testing.T) {
	model := &fakeModel{text: "Here is the receipt:\n```json\n" + `{
		"vendor_name": "Fresh Mart",
		"category": "Grocery",
		"date": "2025-07-18",
		"time": "18:45",
		"amount": "₹1,250.50",
		"subtotal": 1190,
		"tax": "60.5",
		"currency": "inr",
		"payment_method": "UPI",
		"language": "EN",
		"items": [
			{"name": "Milk", "quantity": 2, "unit": "L", "price": 60, "category": "Dairy"},
			{"name": "Rice", "quantity": "", "unit": "kg", "price": "400"}
		]
	}` + "\n```"}

	receipt, err := newTestExtractor(model).Extract(context.Background(), jpegBytes)
	require.NoError(t, err)

	assert.Equal(t, "Fresh Mart", receipt.VendorName)
	assert.Equal(t, types.CategoryGrocery, receipt.Category)
	assert.Equal(t, time.Date(2025, 7, 18, 18, 45, 0, 0, time.UTC), receipt.DateTime)
	assert.Equal(t, "1250.5", receipt.Amount.String())
	assert.Equal(t, "1190", receipt.Subtotal.String())
	assert.Equal(t, "60.5", receipt.Tax.String())
	assert.Equal(t, "INR", receipt.Currency)
	assert.Equal(t, "upi", receipt.PaymentMethod)
	assert.Equal(t, "en", receipt.Language)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, types.ReceiptItem{Name: "Milk", Quantity: 2, Unit: "L", Price: 60, Category: "dairy"}, receipt.Items[0])
	assert.Equal(t, 1.0, receipt.Items[1].Quantity)
	assert.Equal(t, 400.0, receipt.Items[1].Price)
	assert.Equal(t, model.text, receipt.RawText)

	req := model.req
	require.NotNil(t, req)
	assert.Equal(t, "application/json", req.ResponseMIMEType)
	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 2)
	assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MIMEType)
	assert.Equal(t, jpegBytes, req.Contents[0].Parts[1].InlineData.Data)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(req.ResponseSchema, &schema))
	props := schema["properties"].(map[string]any)
	assert.Len(t, props["category"].(map[string]any)["enum"], len(types.Categories))
}

func TestExtract_Defaults(t *testing.T) {
	model := &fakeModel{text: `{"vendor_name": "", "amount": 99, "items": []}`}

	receipt, err := newTestExtractor(model).Extract(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, types.UnknownVendor, receipt.VendorName)
	assert.Equal(t, types.CategoryOther, receipt.Category)
	assert.Equal(t, time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), receipt.DateTime)
	assert.Equal(t, types.DefaultCurrency, receipt.Currency)
	assert.Equal(t, types.DefaultLanguage, receipt.Language)
	assert.NotNil(t, receipt.Items)
}

func TestExtract_Location(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	model := &fakeModel{text: `{"vendor_name": "Cafe", "category": "restaurant", "date": "2025-07-18", "time": "09:15:30", "amount": 10, "items": []}`}

	receipt, err := NewExtractor(model, WithLocation(ist)).Extract(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.True(t, receipt.DateTime.Equal(time.Date(2025, 7, 18, 3, 45, 30, 0, time.UTC)))
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		media   []byte
		model   *fakeModel
		wantErr error
	}{
		{name: "unsupported media", media: []byte("plain text file"), model: &fakeModel{}, wantErr: ErrUnsupportedMedia},
		{name: "empty media", media: nil, model: &fakeModel{}, wantErr: ErrEmptyMedia},
		{name: "model error", media: pngBytes, model: &fakeModel{err: errors.New("quota")}},
		{name: "no json", media: pngBytes, model: &fakeModel{text: "I cannot read this receipt."}, wantErr: ErrNoReceiptData},
		{name: "malformed json", media: pngBytes, model: &fakeModel{text: `{"amount": }`}},
		{name: "unknown category", media: pngBytes, model: &fakeModel{text: `{"category": "travel", "amount": 5}`}},
		{name: "bad date", media: pngBytes, model: &fakeModel{text: `{"category": "fuel", "date": "18/07/2025", "amount": 5}`}},
		{name: "bad amount", media: pngBytes, model: &fakeModel{text: `{"category": "fuel", "amount": "about five"}`}},
		{name: "negative amount", media: pngBytes, model: &fakeModel{text: `{"category": "fuel", "amount": -5}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := newTestExtractor(tt.model).Extract(context.Background(), tt.media)
			require.Error(t, err)
			assert.Nil(t, receipt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtract_TooLarge(t *testing.T) {
	big := make([]byte, MaxMediaSize+1)
	copy(big, pngBytes)
	_, err := newTestExtractor(&fakeModel{}).Extract(context.Background(), big)
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}
