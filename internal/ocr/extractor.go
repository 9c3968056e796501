// Package ocr turns receipt photos and videos into structured receipts
// using a multimodal model.
package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxMediaSize bounds uploaded media (20MB, the inline data limit of the model API).
const MaxMediaSize = 20 * 1024 * 1024

var (
	ErrEmptyMedia       = errors.New("media is empty")
	ErrMediaTooLarge    = errors.New("media exceeds the maximum size")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNoReceiptData    = errors.New("model returned no receipt data")
)

var supportedMedia = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
	"video/mp4":  true,
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

var dateTimeLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02 3:04 PM"}

// DetectMedia sniffs data and returns its MIME type and file extension.
func DetectMedia(data []byte) (mimeType, extension string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmptyMedia
	}
	mt := mimetype.Detect(data)
	if !supportedMedia[mt.String()] {
		return mt.String(), "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}
	return mt.String(), mt.Extension(), nil
}

type Extractor struct {
	model  llm.Model
	schema json.RawMessage
	now    func() time.Time
	loc    *time.Location
	log    *zap.SugaredLogger
}

type Option func(*Extractor)

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithLocation sets the zone receipt dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewExtractor(model llm.Model, opts ...Option) *Extractor {
	e := &Extractor{
		model:  model,
		schema: receiptSchema(),
		now:    time.Now,
		loc:    time.UTC,
		log:    logger.GetLogger().Named("ocr"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads a receipt from an image or video. The model's raw output is
// kept in RawText.
func (e *Extractor) Extract(ctx context.Context, media []byte) (*types.Receipt, error) {
	if len(media) > MaxMediaSize {
		return nil, ErrMediaTooLarge
	}
	mimeType, _, err := DetectMedia(media)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.log.Infow("Starting receipt extraction", "mime_type", mimeType, "bytes", len(media))
	resp, err := e.model.Generate(ctx, &llm.Request{
		Contents: []llm.Content{{
			Role: llm.RoleUser,
			Parts: []llm.Part{
				{Text: extractionPrompt},
				{InlineData: &llm.InlineData{MIMEType: mimeType, Data: media}},
			},
		}},
		Temperature:      llm.Temperature(0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   e.schema,
	})
	if err != nil {
		return nil, fmt.Errorf("receipt extraction failed: %w", err)
	}

	text := resp.Text()
	receipt, err := e.parse(text)
	if err != nil {
		e.log.Warnw("Could not parse extracted receipt", "error", err, "raw_length", len(text))
		return nil, err
	}
	receipt.RawText = text

	e.log.Infow("Receipt extracted",
		"vendor", receipt.VendorName,
		"amount", receipt.Amount.StringFixed(2),
		"items", len(receipt.Items),
		"elapsed_ms", time.Since(start).Milliseconds())
	return receipt, nil
}

type extractedItem struct {
	Name     string     `json:"name"`
	Quantity flexNumber `json:"quantity"`
	Unit     string     `json:"unit"`
	Price    flexNumber `json:"price"`
	Category string     `json:"category"`
}

type extraction struct {
	VendorName    string          `json:"vendor_name"`
	Category      string          `json:"category"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Amount        flexNumber      `json:"amount"`
	Subtotal      flexNumber      `json:"subtotal"`
	Tax           flexNumber      `json:"tax"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Language      string          `json:"language"`
	Items         []extractedItem `json:"items"`
}

func (e *Extractor) parse(text string) (*types.Receipt, error) {
	doc := jsonObject.FindString(text)
	if doc == "" {
		return nil, ErrNoReceiptData
	}
	var x extraction
	if err := json.Unmarshal([]byte(doc), &x); err != nil {
		return nil, fmt.Errorf("decode extracted receipt: %w", err)
	}

	category := types.CategoryOther
	if strings.TrimSpace(x.Category) != "" {
		c, err := types.ParseCategory(x.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	when, err := e.dateTime(x.Date, x.Time)
	if err != nil {
		return nil, err
	}

	items := make([]types.ReceiptItem, 0, len(x.Items))
	for _, it := range x.Items {
		qty := it.Quantity.float()
		if qty == 0 {
			qty = 1
		}
		items = append(items, types.ReceiptItem{
			Name:     strings.TrimSpace(it.Name),
			Quantity: qty,
			Unit:     strings.TrimSpace(it.Unit),
			Price:    it.Price.float(),
			Category: strings.ToLower(strings.TrimSpace(it.Category)),
		})
	}

	r := &types.Receipt{
		VendorName:    strings.TrimSpace(x.VendorName),
		Category:      category,
		DateTime:      when,
		Amount:        x.Amount.Decimal,
		Items:         items,
		Subtotal:      x.Subtotal.Decimal,
		Tax:           x.Tax.Decimal,
		PaymentMethod: strings.ToLower(strings.TrimSpace(x.PaymentMethod)),
		Currency:      strings.ToUpper(strings.TrimSpace(x.Currency)),
		Language:      strings.ToLower(strings.TrimSpace(x.Language)),
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// dateTime combines the extracted date and time. A missing date means today
// and a missing time means midnight.
func (e *Extractor) dateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		date = e.now().In(e.loc).Format("2006-01-02")
	}
	if clock == "" {
		clock = "00:00"
	}
	value := date + " " + clock
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, e.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised receipt date %q", value)
}

// flexNumber accepts JSON numbers, numeric strings (with optional currency
// symbols and thousands separators) and null.
type flexNumber struct {
	decimal.Decimal
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	raw = strings.NewReplacer("₹", "", "$", "", ",", "", " ", "").Replace(raw)
	if raw == "" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid number %s", string(data))
	}
	n.Decimal = d
	return nil
}

func (n flexNumber) float() float64 {
	f, _ := n.Float64()
	return f
}
