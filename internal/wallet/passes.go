package wallet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raseed-labs/raseed-backend/types"
	"github.com/shopspring/decimal"
)

const (
	cardTitle          = "Project Raseed"
	shoppingCardTitle  = "Shopping List"
	shoppingHeader     = "Your Items"
	shoppingColor      = "#4285F4"
	insightsColor      = "#87ceeb"
	defaultListTitle   = "My Shopping List"
	maxListedItems     = 5
	shoppingListExpiry = 24 * time.Hour

	receiptClassSuffix  = "raseed-receipt"
	insightsClassSuffix = "raseed-insights"
)

var categoryColors = map[types.Category]string{
	types.CategoryGrocery:     "#90ee90",
	types.CategoryRestaurant:  "#ffb6c1",
	types.CategoryShopping:    "#87ceeb",
	types.CategoryFuel:        "#ffd700",
	types.CategoryPharmacy:    "#dda0dd",
	types.CategoryElectronics: "#f0e68c",
	types.CategoryUtilities:   "#98fb98",
	types.CategoryOther:       "#d3d3d3",
}

// CategoryColor returns the pass background color for a receipt category.
func CategoryColor(c types.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return categoryColors[types.CategoryGrocery]
}

// CurrencySymbol maps INR and USD to their symbols and returns any other code as is.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	}
	return code
}

func money(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func itemsSummary(symbol string, items []types.ReceiptItem) string {
	if len(items) == 0 {
		return ""
	}
	shown := items
	if len(shown) > maxListedItems {
		shown = shown[:maxListedItems]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, it := range shown {
		qty := strconv.FormatFloat(it.Quantity, 'f', -1, 64)
		parts = append(parts, fmt.Sprintf("%s (%s%s) - %s%.2f", it.Name, qty, it.Unit, symbol, it.Price))
	}
	if extra := len(items) - maxListedItems; extra > 0 {
		parts = append(parts, fmt.Sprintf("+%d more items", extra))
	}
	return strings.Join(parts, "; ")
}

// ReceiptLink builds the save link for a single receipt.
func (i *Issuer) ReceiptLink(r *types.Receipt) (string, error) {
	symbol := CurrencySymbol(r.Currency)
	payment := r.PaymentMethod
	if payment == "" {
		payment = "Not specified"
	}

	modules := []TextModule{
		{ID: "bill_category", Header: "Category", Body: titleCase(string(r.Category))},
		{ID: "amount", Header: "Total Amount", Body: money(symbol, r.Amount)},
		{ID: "date", Header: "Date", Body: r.DateTime.Format("2006-01-02")},
		{ID: "time", Header: "Time", Body: r.DateTime.Format("15:04")},
		{ID: "subtotal", Header: "Subtotal", Body: money(symbol, r.Subtotal)},
		{ID: "tax", Header: "Tax", Body: money(symbol, r.Tax)},
		{ID: "currency", Header: "Currency", Body: r.Currency},
		{ID: "payment_method", Header: "Payment Method", Body: payment},
		{ID: "language", Header: "Receipt Language", Body: strings.ToUpper(r.Language)},
		{ID: "items_count", Header: "Items Count", Body: strconv.Itoa(len(r.Items))},
	}
	if summary := itemsSummary(symbol, r.Items); summary != "" {
		modules = append(modules, TextModule{ID: "items", Header: "Items", Body: summary})
	}

	class := templateClass(i.classID(receiptClassSuffix),
		twoItemRow("bill_category", "amount"),
		twoItemRow("date", "time"),
	)
	object := GenericObject{
		ID:                 i.objectID(),
		ClassID:            class.ID,
		State:              stateActive,
		Logo:               image(i.logoURI),
		CardTitle:          localized(cardTitle),
		Subheader:          localized("Vendor"),
		Header:             localized(r.VendorName),
		TextModulesData:    modules,
		HexBackgroundColor: CategoryColor(r.Category),
	}

	link, err := i.saveLink([]GenericClass{class}, []GenericObject{object})
	if err != nil {
		return "", err
	}
	i.log.Debugw("Created receipt pass link", "object_id", object.ID, "vendor", r.VendorName)
	return link, nil
}

// ShoppingListLink builds a save link listing items, one card row per item.
// The pass shows a one day expiry.
func (i *Issuer) ShoppingListLink(title string, items []string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = defaultListTitle
	}
	created := i.now()
	expires := created.Add(shoppingListExpiry)

	rows := make([]CardRow, 0, len(items)+1)
	rows = append(rows, twoItemRow("created_date", "expired_date"))
	modules := []TextModule{
		{ID: "created_date", Header: "Created", Body: created.Format("2006-01-02")},
		{ID: "expired_date", Header: "Expires", Body: expires.Format("2006-01-02")},
	}
	for n, entry := range items {
		id := fmt.Sprintf("item_%d", n)
		rows = append(rows, oneItemRow(id))
		modules = append(modules, TextModule{ID: id, Body: entry})
	}

	// Row layout depends on the item count, so every list gets its own class.
	class := templateClass(i.classID("shopping-"+i.newID()), rows...)
	object := GenericObject{
		ID:                 i.objectID(),
		ClassID:            class.ID,
		State:              stateActive,
		Logo:               image(i.logoURI),
		CardTitle:          localized(shoppingCardTitle),
		Subheader:          localized(title),
		Header:             localized(shoppingHeader),
		TextModulesData:    modules,
		HexBackgroundColor: shoppingColor,
	}

	link, err := i.saveLink([]GenericClass{class}, []GenericObject{object})
	if err != nil {
		return "", err
	}
	i.log.Debugw("Created shopping list pass link", "object_id", object.ID, "items", len(items))
	return link, nil
}

type CategoryAmount struct {
	Category string
	Amount   string
}

// InsightsSummary is the monthly summary shown on an insights pass.
type InsightsSummary struct {
	Month         string
	TotalSpending float64
	TopCategories []CategoryAmount
}

var insightRanks = []string{"Top Category", "Second Category", "Third Category"}

// InsightsLink builds the save link for a monthly insights pass with up to
// three category rows.
func (i *Issuer) InsightsLink(s InsightsSummary) (string, error) {
	rows := make([]CardRow, 0, len(insightRanks))
	modules := make([]TextModule, 0, 2*len(insightRanks))
	for n, rank := range insightRanks {
		labelID := fmt.Sprintf("cat%d_label", n+1)
		amountID := fmt.Sprintf("cat%d_amount", n+1)
		rows = append(rows, twoItemRow(labelID, amountID))

		var label, amount string
		if n < len(s.TopCategories) {
			label = s.TopCategories[n].Category
			amount = "₹" + s.TopCategories[n].Amount
		}
		modules = append(modules,
			TextModule{ID: labelID, Header: rank, Body: label},
			TextModule{ID: amountID, Header: "Amount", Body: amount},
		)
	}

	class := templateClass(i.classID(insightsClassSuffix), rows...)
	object := GenericObject{
		ID:                 i.objectID(),
		ClassID:            class.ID,
		State:              stateActive,
		Logo:               image(i.logoURI),
		CardTitle:          localized(cardTitle),
		Subheader:          localized(s.Month + " Insights"),
		Header:             localized(fmt.Sprintf("Total Spent: ₹%.2f", s.TotalSpending)),
		TextModulesData:    modules,
		HexBackgroundColor: insightsColor,
	}
	return i.saveLink([]GenericClass{class}, []GenericObject{object})
}
