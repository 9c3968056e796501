package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/types"
)

func normalizeItem(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type FrequentItem struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	PriceStdDev  float64 `json:"price_std_dev"`
}

type FrequentItemsResult struct {
	Items []FrequentItem `json:"items"`
}

func (a *Analyzer) FrequentItems(ctx context.Context, userID string, args FrequentItemsArgs) (*FrequentItemsResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{})
	if err != nil {
		return nil, err
	}
	minFrequency := args.MinFrequency
	if minFrequency <= 0 {
		minFrequency = 2
	}

	prices := map[string][]float64{}
	for _, r := range rs {
		for _, item := range r.Items {
			name := normalizeItem(item.Name)
			if name == "" {
				continue
			}
			prices[name] = append(prices[name], item.Price)
		}
	}

	res := &FrequentItemsResult{Items: []FrequentItem{}}
	for name, ps := range prices {
		if len(ps) < minFrequency {
			continue
		}
		lo, hi := ps[0], ps[0]
		for _, p := range ps[1:] {
			if p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
		}
		res.Items = append(res.Items, FrequentItem{
			Name:         name,
			Count:        len(ps),
			AveragePrice: round2(mean(ps)),
			MinPrice:     round2(lo),
			MaxPrice:     round2(hi),
			PriceStdDev:  round2(sampleStdDev(ps)),
		})
	}
	sort.Slice(res.Items, func(i, j int) bool {
		if res.Items[i].Count != res.Items[j].Count {
			return res.Items[i].Count > res.Items[j].Count
		}
		return res.Items[i].Name < res.Items[j].Name
	})
	return res, nil
}

// InventoryItem describes the purchase history of one requested item. The
// interval and replenishment fields are only set with two or more distinct
// purchase days.
// InventoryItem counts purchase days, not receipts: several purchases of an
// item on the same day count once and add no interval.
type InventoryItem struct {
	Item                string   `json:"item"`
	Found               bool     `json:"found"`
	LastPurchased       string   `json:"last_purchased,omitempty"`
	DaysSinceLast       int      `json:"days_since_last_purchase,omitempty"`
	PurchaseCount       int      `json:"purchase_count"`
	AverageIntervalDays *float64 `json:"average_interval_days,omitempty"`
	NeedsReplenishment  *bool    `json:"needs_replenishment,omitempty"`
}

type InventoryStatusResult struct {
	LookbackDays int             `json:"lookback_days"`
	Items        []InventoryItem `json:"items"`
}

// InventoryStatus flags an item for replenishment once the time since its
// last purchase exceeds its average purchase interval by 20%.
func (a *Analyzer) InventoryStatus(ctx context.Context, userID string, args InventoryStatusArgs) (*InventoryStatusResult, error) {
	rs := a.recent(ctx, userID, inventoryLookbackDays, "")
	today := a.today()

	res := &InventoryStatusResult{LookbackDays: inventoryLookbackDays, Items: make([]InventoryItem, 0, len(args.Items))}
	for _, requested := range args.Items {
		needle := normalizeItem(requested)
		status := InventoryItem{Item: requested}
		if needle == "" {
			res.Items = append(res.Items, status)
			continue
		}

		days := map[time.Time]struct{}{}
		for _, r := range rs {
			for _, item := range r.Items {
				if strings.Contains(normalizeItem(item.Name), needle) {
					days[startOfDay(r.DateTime.In(a.loc))] = struct{}{}
					break
				}
			}
		}
		if len(days) == 0 {
			res.Items = append(res.Items, status)
			continue
		}

		dates := make([]time.Time, 0, len(days))
		for d := range days {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		last := dates[len(dates)-1]
		status.Found = true
		status.PurchaseCount = len(dates)
		status.LastPurchased = formatDate(last)
		status.DaysSinceLast = daysBetween(last, today)

		if len(dates) >= 2 {
			gaps := make([]float64, 0, len(dates)-1)
			for i := 1; i < len(dates); i++ {
				gaps = append(gaps, float64(daysBetween(dates[i-1], dates[i])))
			}
			avg := round2(mean(gaps))
			needs := float64(status.DaysSinceLast) > 1.2*avg
			status.AverageIntervalDays = &avg
			status.NeedsReplenishment = &needs
		}
		res.Items = append(res.Items, status)
	}
	return res, nil
}

type SavingsOpportunity struct {
	Item            string  `json:"item"`
	Observations    int     `json:"observations"`
	AveragePrice    float64 `json:"average_price"`
	ThresholdPrice  float64 `json:"threshold_price"`
	FlaggedCount    int     `json:"flagged_count"`
	PotentialSaving float64 `json:"potential_saving_per_purchase"`
	CheapestVendor  string  `json:"cheapest_vendor"`
	CheapestPrice   float64 `json:"cheapest_price"`
}

type SavingsOpportunitiesResult struct {
	Category      types.Category       `json:"category"`
	Percentile    float64              `json:"percentile"`
	Opportunities []SavingsOpportunity `json:"opportunities"`
}

type pricePoint struct {
	price  float64
	vendor string
}

// SavingsOpportunities flags items of a category whose observed prices rise
// above the given percentile of their own history. Items need at least
// three price observations.
func (a *Analyzer) SavingsOpportunities(ctx context.Context, userID string, args SavingsOpportunitiesArgs) (*SavingsOpportunitiesResult, error) {
	pct := args.Percentile
	if pct == 0 {
		pct = 75
	}
	if _, err := percentile([]float64{0}, pct); err != nil {
		return nil, err
	}

	rs := a.recent(ctx, userID, savingsLookbackDays, args.Category)

	points := map[string][]pricePoint{}
	for _, r := range rs {
		for _, item := range r.Items {
			name := normalizeItem(item.Name)
			if name == "" {
				continue
			}
			points[name] = append(points[name], pricePoint{price: item.Price, vendor: r.VendorName})
		}
	}

	res := &SavingsOpportunitiesResult{Category: args.Category, Percentile: pct, Opportunities: []SavingsOpportunity{}}
	for name, pts := range points {
		if len(pts) < 3 {
			continue
		}
		prices := make([]float64, len(pts))
		cheapest := pts[0]
		for i, p := range pts {
			prices[i] = p.price
			if p.price < cheapest.price {
				cheapest = p
			}
		}
		threshold, err := percentile(prices, pct)
		if err != nil {
			return nil, err
		}

		var flagged []float64
		for _, p := range prices {
			if p > threshold {
				flagged = append(flagged, p)
			}
		}
		if len(flagged) == 0 {
			continue
		}
		res.Opportunities = append(res.Opportunities, SavingsOpportunity{
			Item:            name,
			Observations:    len(prices),
			AveragePrice:    round2(mean(prices)),
			ThresholdPrice:  round2(threshold),
			FlaggedCount:    len(flagged),
			PotentialSaving: round2(mean(flagged) - mean(prices)),
			CheapestVendor:  cheapest.vendor,
			CheapestPrice:   round2(cheapest.price),
		})
	}
	sort.Slice(res.Opportunities, func(i, j int) bool {
		oi, oj := res.Opportunities[i], res.Opportunities[j]
		if oi.PotentialSaving != oj.PotentialSaving {
			return oi.PotentialSaving > oj.PotentialSaving
		}
		return oi.Item < oj.Item
	})
	return res, nil
}

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceNoData = "no_data"
)

type ShoppingSuggestion struct {
	Item         string   `json:"item"`
	AveragePrice *float64 `json:"average_price"`
	MinPrice     *float64 `json:"min_price"`
	BestVendor   *string  `json:"best_vendor"`
	DataPoints   int      `json:"data_points"`
	Confidence   string   `json:"confidence"`
}

type ShoppingListResult struct {
	Items          []ShoppingSuggestion `json:"items"`
	EstimatedTotal float64              `json:"estimated_total"`
}

// SuggestShoppingList estimates a price for each requested item from the
// last 30 days of purchases. Names match when either contains the other.
func (a *Analyzer) SuggestShoppingList(ctx context.Context, userID string, args ShoppingListArgs) (*ShoppingListResult, error) {
	rs := a.recent(ctx, userID, suggestionLookbackDays, "")

	res := &ShoppingListResult{Items: make([]ShoppingSuggestion, 0, len(args.Items))}
	var estimated float64
	for _, requested := range args.Items {
		needle := normalizeItem(requested)
		if needle == "" {
			continue
		}

		var pts []pricePoint
		for _, r := range rs {
			for _, item := range r.Items {
				name := normalizeItem(item.Name)
				if name == "" {
					continue
				}
				if strings.Contains(name, needle) || strings.Contains(needle, name) {
					pts = append(pts, pricePoint{price: item.Price, vendor: r.VendorName})
				}
			}
		}

		s := ShoppingSuggestion{Item: strings.TrimSpace(requested), DataPoints: len(pts), Confidence: ConfidenceNoData}
		if len(pts) > 0 {
			prices := make([]float64, len(pts))
			best := pts[0]
			for i, p := range pts {
				prices[i] = p.price
				if p.price < best.price {
					best = p
				}
			}
			avg := round2(mean(prices))
			lo := round2(best.price)
			vendor := best.vendor
			s.AveragePrice, s.MinPrice, s.BestVendor = &avg, &lo, &vendor
			s.Confidence = ConfidenceMedium
			if len(pts) >= 3 {
				s.Confidence = ConfidenceHigh
			}
			estimated += avg
		}
		res.Items = append(res.Items, s)
	}
	res.EstimatedTotal = round2(estimated)
	return res, nil
}
