package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryGrocery     Category = "grocery"
	CategoryRestaurant  Category = "restaurant"
	CategoryShopping    Category = "shopping"
	CategoryFuel        Category = "fuel"
	CategoryPharmacy    Category = "pharmacy"
	CategoryElectronics Category = "electronics"
	CategoryUtilities   Category = "utilities"
	CategoryOther       Category = "other"
)

// Categories lists every valid receipt category in display order.
var Categories = []Category{
	CategoryGrocery,
	CategoryRestaurant,
	CategoryShopping,
	CategoryFuel,
	CategoryPharmacy,
	CategoryElectronics,
	CategoryUtilities,
	CategoryOther,
}

// ParseCategory normalizes s and returns the matching Category.
// Values outside the closed set are rejected rather than mapped to "other".
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown receipt category %q", s)
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	DefaultCurrency = "INR"
	DefaultLanguage = "en"
	UnknownVendor   = "Unknown"
)

type ReceiptItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type Receipt struct {
	ID            string          `json:"id,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	VendorName    string          `json:"vendor_name"`
	Category      Category        `json:"category"`
	DateTime      time.Time       `json:"date_time"`
	Amount        decimal.Decimal `json:"amount"`
	Items         []ReceiptItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	PaymentMethod string          `json:"payment_method"`
	Currency      string          `json:"currency"`
	Language      string          `json:"language"`
	ImageKey      string          `json:"image_key,omitempty"`
	WalletLink    string          `json:"wallet_link,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`

	// RawText holds the OCR model output. It is never persisted or serialized.
	RawText string `json:"-"`
}

// ApplyDefaults fills the fields that receipts extracted from OCR commonly omit.
func (r *Receipt) ApplyDefaults() {
	if strings.TrimSpace(r.VendorName) == "" {
		r.VendorName = UnknownVendor
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Items == nil {
		r.Items = []ReceiptItem{}
	}
}

// Validate checks the receipt invariants: a known category, a non-negative
// amount and non-negative item prices.
func (r *Receipt) Validate() error {
	if !r.Category.IsValid() {
		return fmt.Errorf("unknown receipt category %q", r.Category)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("receipt amount must not be negative")
	}
	for _, item := range r.Items {
		if item.Price < 0 {
			return fmt.Errorf("item %q has a negative price", item.Name)
		}
	}
	return nil
}

// AmountFloat returns the total as a float64 for statistical work.
func (r *Receipt) AmountFloat() float64 {
	f, _ := r.Amount.Float64()
	return f
}
