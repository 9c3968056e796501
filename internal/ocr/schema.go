package ocr

import (
	"encoding/json"

	"github.com/raseed-labs/raseed-backend/types"
)

// receiptSchema is the structured-output constraint sent with every
// extraction request.
func receiptSchema() json.RawMessage {
	categories := make([]string, 0, len(types.Categories))
	for _, c := range types.Categories {
		categories = append(categories, string(c))
	}

	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string"},
			"quantity": map[string]any{"type": "number"},
			"unit":     map[string]any{"type": "string"},
			"price":    map[string]any{"type": "number"},
			"category": map[string]any{"type": "string"},
		},
		"required": []string{"name", "price"},
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vendor_name":    map[string]any{"type": "string"},
			"category":       map[string]any{"type": "string", "enum": categories},
			"date":           map[string]any{"type": "string", "description": "YYYY-MM-DD"},
			"time":           map[string]any{"type": "string", "description": "HH:MM, 24 hour clock"},
			"amount":         map[string]any{"type": "number"},
			"subtotal":       map[string]any{"type": "number"},
			"tax":            map[string]any{"type": "number"},
			"currency":       map[string]any{"type": "string"},
			"payment_method": map[string]any{"type": "string", "enum": []string{"cash", "card", "upi", "other"}},
			"language":       map[string]any{"type": "string"},
			"items":          map[string]any{"type": "array", "items": item},
		},
		"required": []string{"vendor_name", "category", "date", "amount", "items"},
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return raw
}

const extractionPrompt = `Analyze this receipt and extract the following information in JSON format:
{
    "vendor_name": "store/restaurant name",
    "category": "grocery/restaurant/shopping/fuel/pharmacy/electronics/utilities/other",
    "date": "YYYY-MM-DD",
    "time": "HH:MM",
    "amount": "total amount as float",
    "subtotal": "subtotal as float",
    "tax": "tax amount as float",
    "currency": "currency code (INR/USD/etc)",
    "payment_method": "cash/card/upi/other",
    "language": "ISO language code of the receipt",
    "items": [
        {
            "name": "item name",
            "quantity": "quantity as float",
            "unit": "unit (pcs/kg/l/etc)",
            "price": "price per unit as float",
            "category": "item sub-category such as dairy, vegetables or household"
        }
    ]
}

If any field is not clearly visible, use reasonable defaults or empty strings.
Ensure all numeric values are proper floats.`
