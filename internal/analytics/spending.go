package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/types"
)

// PurchaseSummary is the model-facing view of one receipt.
type PurchaseSummary struct {
	ID            string         `json:"id,omitempty"`
	Vendor        string         `json:"vendor"`
	Category      types.Category `json:"category"`
	Date          string         `json:"date"`
	Amount        float64        `json:"amount"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Items         []string       `json:"items"`
}

func summarize(r types.Receipt) PurchaseSummary {
	items := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item.Name)
	}
	return PurchaseSummary{
		ID:            r.ID,
		Vendor:        r.VendorName,
		Category:      r.Category,
		Date:          r.DateTime.Format(dateTimeLayout),
		Amount:        round2(r.AmountFloat()),
		PaymentMethod: r.PaymentMethod,
		Items:         items,
	}
}

func totalOf(rs []types.Receipt) float64 {
	var total float64
	for _, r := range rs {
		total += r.AmountFloat()
	}
	return total
}

func (a *Analyzer) fetchRange(ctx context.Context, userID string, args DateRangeArgs, q receipts.Query) (dateRange, []types.Receipt, error) {
	rng, err := parseRange(args.StartDate, args.EndDate, a.loc)
	if err != nil {
		return dateRange{}, nil, err
	}
	q.Start, q.End = rng.Start, rng.End
	return rng, a.fetcher.Fetch(ctx, userID, q), nil
}

type FindPurchasesResult struct {
	Purchases []PurchaseSummary `json:"purchases"`
	Count     int               `json:"count"`
	Total     float64           `json:"total"`
}

func (a *Analyzer) FindPurchases(ctx context.Context, userID string, args FindPurchasesArgs) (*FindPurchasesResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{
		Category:   args.Category,
		VendorName: args.VendorName,
		Amount:     args.AmountCondition,
	})
	if err != nil {
		return nil, err
	}

	res := &FindPurchasesResult{Purchases: make([]PurchaseSummary, 0, len(rs)), Count: len(rs)}
	for _, r := range rs {
		res.Purchases = append(res.Purchases, summarize(r))
	}
	res.Total = round2(totalOf(rs))
	return res, nil
}

type LargestPurchaseResult struct {
	Found    bool             `json:"found"`
	Purchase *PurchaseSummary `json:"purchase,omitempty"`
}

func (a *Analyzer) LargestPurchase(ctx context.Context, userID string, args LargestPurchaseArgs) (*LargestPurchaseResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return &LargestPurchaseResult{}, nil
	}

	largest := rs[0]
	for _, r := range rs[1:] {
		if r.Amount.GreaterThan(largest.Amount) {
			largest = r
		}
	}
	summary := summarize(largest)
	return &LargestPurchaseResult{Found: true, Purchase: &summary}, nil
}

type SpendingForCategoryResult struct {
	Category types.Category `json:"category"`
	Total    float64        `json:"total"`
	Count    int            `json:"count"`
}

func (a *Analyzer) SpendingForCategory(ctx context.Context, userID string, args SpendingForCategoryArgs) (*SpendingForCategoryResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}
	return &SpendingForCategoryResult{
		Category: args.Category,
		Total:    round2(totalOf(rs)),
		Count:    len(rs),
	}, nil
}

type TotalSpendingResult struct {
	Total             float64 `json:"total"`
	Count             int     `json:"count"`
	AveragePerReceipt float64 `json:"average_per_receipt"`
}

func (a *Analyzer) TotalSpending(ctx context.Context, userID string, args TotalSpendingArgs) (*TotalSpendingResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}
	total := totalOf(rs)
	res := &TotalSpendingResult{Total: round2(total), Count: len(rs)}
	if len(rs) > 0 {
		res.AveragePerReceipt = round2(total / float64(len(rs)))
	}
	return res, nil
}

type CategorySpend struct {
	Category     types.Category `json:"category"`
	Total        float64        `json:"total"`
	Count        int            `json:"count"`
	SharePercent float64        `json:"share_percent"`
}

type SpendingByCategoryResult struct {
	Total      float64         `json:"total"`
	Categories []CategorySpend `json:"categories"`
}

func (a *Analyzer) SpendingByCategory(ctx context.Context, userID string, args SpendingByCategoryArgs) (*SpendingByCategoryResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}
	return &SpendingByCategoryResult{
		Total:      round2(totalOf(rs)),
		Categories: CategoryTotals(rs),
	}, nil
}

// CategoryTotals groups receipts by category, sorted by total descending.
func CategoryTotals(rs []types.Receipt) []CategorySpend {
	grandTotal := totalOf(rs)
	byCategory := map[types.Category]*CategorySpend{}
	for _, r := range rs {
		cs, ok := byCategory[r.Category]
		if !ok {
			cs = &CategorySpend{Category: r.Category}
			byCategory[r.Category] = cs
		}
		cs.Total += r.AmountFloat()
		cs.Count++
	}

	out := make([]CategorySpend, 0, len(byCategory))
	for _, cs := range byCategory {
		if grandTotal > 0 {
			cs.SharePercent = round2(cs.Total / grandTotal * 100)
		}
		cs.Total = round2(cs.Total)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type AverageDailySpendResult struct {
	Total        float64 `json:"total"`
	Days         int     `json:"days"`
	AverageDaily float64 `json:"average_daily"`
}

func (a *Analyzer) AverageDailySpend(ctx context.Context, userID string, args AverageDailySpendArgs) (*AverageDailySpendResult, error) {
	rng, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}
	total := totalOf(rs)
	days := rng.days()
	res := &AverageDailySpendResult{Total: round2(total), Days: days}
	if days > 0 {
		res.AverageDaily = round2(total / float64(days))
	} else {
		res.Days = 0
	}
	return res, nil
}

type WeekdaySpend struct {
	Weekday string  `json:"weekday"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

type SpendingByWeekdayResult struct {
	Weekdays []WeekdaySpend `json:"weekdays"`
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func (a *Analyzer) SpendingByWeekday(ctx context.Context, userID string, args SpendingByWeekdayArgs) (*SpendingByWeekdayResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}

	buckets := map[time.Weekday]*WeekdaySpend{}
	for _, r := range rs {
		if r.DateTime.IsZero() {
			continue
		}
		day := r.DateTime.In(a.loc).Weekday()
		b, ok := buckets[day]
		if !ok {
			b = &WeekdaySpend{Weekday: day.String()}
			buckets[day] = b
		}
		b.Total += r.AmountFloat()
		b.Count++
	}

	res := &SpendingByWeekdayResult{Weekdays: []WeekdaySpend{}}
	for _, day := range weekdayOrder {
		if b, ok := buckets[day]; ok {
			b.Total = round2(b.Total)
			res.Weekdays = append(res.Weekdays, *b)
		}
	}
	return res, nil
}

type MonthSpend struct {
	Month string  `json:"month"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type MonthlyTrendResult struct {
	Months []MonthSpend `json:"months"`
}

// MonthlyTrend walks back from the current month. The current month's window
// ends now, earlier months cover the whole calendar month. Oldest first.
func (a *Analyzer) MonthlyTrend(ctx context.Context, userID string, args MonthlyTrendArgs) (*MonthlyTrendResult, error) {
	months := args.Months
	if months <= 0 {
		months = 6
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}
	now := a.today()
	current := startOfMonth(now)
	oldest := current.AddDate(0, -(months - 1), 0)

	rs := a.fetcher.Fetch(ctx, userID, receipts.Query{Start: oldest, End: now})

	res := &MonthlyTrendResult{Months: make([]MonthSpend, 0, months)}
	for i := 0; i < months; i++ {
		start := oldest.AddDate(0, i, 0)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		if i == months-1 {
			end = now
		}

		ms := MonthSpend{
			Month: start.Format("2006-01"),
			Start: formatDate(start),
			End:   formatDate(end),
		}
		var total float64
		for _, r := range rs {
			t := r.DateTime.In(a.loc)
			if !t.Before(start) && !t.After(end) {
				total += r.AmountFloat()
				ms.Count++
			}
		}
		ms.Total = round2(total)
		res.Months = append(res.Months, ms)
	}
	return res, nil
}

type VendorSpend struct {
	Vendor                string  `json:"vendor"`
	Total                 float64 `json:"total_spent"`
	Count                 int     `json:"transaction_count"`
	AveragePerTransaction float64 `json:"average_per_transaction"`
}

type TopVendorsResult struct {
	Vendors []VendorSpend `json:"vendors"`
}

func (a *Analyzer) TopVendors(ctx context.Context, userID string, args TopVendorsArgs) (*TopVendorsResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 5
	}

	byVendor := map[string]*VendorSpend{}
	for _, r := range rs {
		v, ok := byVendor[r.VendorName]
		if !ok {
			v = &VendorSpend{Vendor: r.VendorName}
			byVendor[r.VendorName] = v
		}
		v.Total += r.AmountFloat()
		v.Count++
	}

	vendors := make([]VendorSpend, 0, len(byVendor))
	for _, v := range byVendor {
		if v.Count > 0 {
			v.AveragePerTransaction = round2(v.Total / float64(v.Count))
		}
		v.Total = round2(v.Total)
		vendors = append(vendors, *v)
	}
	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].Total != vendors[j].Total {
			return vendors[i].Total > vendors[j].Total
		}
		return vendors[i].Vendor < vendors[j].Vendor
	})
	if len(vendors) > limit {
		vendors = vendors[:limit]
	}
	return &TopVendorsResult{Vendors: vendors}, nil
}

type PaymentMethodSpend struct {
	Method       string  `json:"method"`
	Total        float64 `json:"total"`
	Count        int     `json:"count"`
	SharePercent float64 `json:"share_percent"`
}

type PaymentMethodBreakdownResult struct {
	Total   float64              `json:"total"`
	Methods []PaymentMethodSpend `json:"methods"`
}

func (a *Analyzer) PaymentMethodBreakdown(ctx context.Context, userID string, args PaymentMethodBreakdownArgs) (*PaymentMethodBreakdownResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}
	grandTotal := totalOf(rs)

	byMethod := map[string]*PaymentMethodSpend{}
	for _, r := range rs {
		method := strings.ToLower(strings.TrimSpace(r.PaymentMethod))
		if method == "" {
			method = "unknown"
		}
		m, ok := byMethod[method]
		if !ok {
			m = &PaymentMethodSpend{Method: method}
			byMethod[method] = m
		}
		m.Total += r.AmountFloat()
		m.Count++
	}

	methods := make([]PaymentMethodSpend, 0, len(byMethod))
	for _, m := range byMethod {
		if grandTotal > 0 {
			m.SharePercent = round2(m.Total / grandTotal * 100)
		}
		m.Total = round2(m.Total)
		methods = append(methods, *m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Total != methods[j].Total {
			return methods[i].Total > methods[j].Total
		}
		return methods[i].Method < methods[j].Method
	})
	return &PaymentMethodBreakdownResult{Total: round2(grandTotal), Methods: methods}, nil
}

type TaxSummaryResult struct {
	TotalTax                float64 `json:"total_tax"`
	TotalSubtotal           float64 `json:"total_subtotal"`
	TotalAmount             float64 `json:"total_amount"`
	EffectiveTaxRatePercent float64 `json:"effective_tax_rate_percent"`
	ReceiptCount            int     `json:"receipt_count"`
}

func (a *Analyzer) TaxSummary(ctx context.Context, userID string, args TaxSummaryArgs) (*TaxSummaryResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}

	var tax, subtotal float64
	for _, r := range rs {
		t, _ := r.Tax.Float64()
		s, _ := r.Subtotal.Float64()
		tax += t
		subtotal += s
	}
	res := &TaxSummaryResult{
		TotalTax:      round2(tax),
		TotalSubtotal: round2(subtotal),
		TotalAmount:   round2(totalOf(rs)),
		ReceiptCount:  len(rs),
	}
	if subtotal > 0 {
		res.EffectiveTaxRatePercent = round2(tax / subtotal * 100)
	}
	return res, nil
}
