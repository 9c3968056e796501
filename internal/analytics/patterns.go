package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/raseed-labs/raseed-backend/internal/receipts"
)

// Thresholds a vendor's charges must meet to count as a subscription.
const (
	subscriptionAmountCV   = 0.10
	subscriptionIntervalCV = 0.20
	subscriptionMinDays    = 25.0
	subscriptionMaxDays    = 35.0
)

type Subscription struct {
	Vendor               string  `json:"vendor"`
	AverageAmount        float64 `json:"average_amount"`
	AverageIntervalDays  float64 `json:"average_interval_days"`
	Occurrences          int     `json:"occurrences"`
	LastCharged          string  `json:"last_charged"`
	NextExpected         string  `json:"next_expected"`
	EstimatedMonthlyCost float64 `json:"estimated_monthly_cost"`
}

type RecurringSubscriptionsResult struct {
	LookbackDays     int            `json:"lookback_days"`
	Subscriptions    []Subscription `json:"subscriptions"`
	TotalMonthlyCost float64        `json:"total_monthly_cost"`
}

// RecurringSubscriptions looks for vendors charging a stable amount roughly
// monthly. A vendor needs at least two charges in the lookback window.
func (a *Analyzer) RecurringSubscriptions(ctx context.Context, userID string, args RecurringSubscriptionsArgs) (*RecurringSubscriptionsResult, error) {
	lookback := args.LookbackDays
	if lookback <= 0 {
		lookback = subscriptionLookbackDays
	}
	rs := a.recent(ctx, userID, lookback, "")

	type charge struct {
		at     time.Time
		amount float64
	}
	byVendor := map[string][]charge{}
	for _, r := range rs {
		if r.DateTime.IsZero() {
			continue
		}
		byVendor[r.VendorName] = append(byVendor[r.VendorName], charge{at: r.DateTime, amount: r.AmountFloat()})
	}

	res := &RecurringSubscriptionsResult{LookbackDays: lookback, Subscriptions: []Subscription{}}
	var monthly float64
	for vendor, charges := range byVendor {
		if len(charges) < 2 {
			continue
		}
		sort.Slice(charges, func(i, j int) bool { return charges[i].at.Before(charges[j].at) })

		amounts := make([]float64, len(charges))
		intervals := make([]float64, 0, len(charges)-1)
		for i, c := range charges {
			amounts[i] = c.amount
			if i > 0 {
				intervals = append(intervals, c.at.Sub(charges[i-1].at).Hours()/24)
			}
		}

		avgInterval := mean(intervals)
		if coefficientOfVariation(amounts) >= subscriptionAmountCV ||
			coefficientOfVariation(intervals) >= subscriptionIntervalCV ||
			avgInterval < subscriptionMinDays || avgInterval > subscriptionMaxDays {
			continue
		}

		avgAmount := mean(amounts)
		last := charges[len(charges)-1].at.In(a.loc)
		cost := avgAmount * 30 / avgInterval
		monthly += cost
		res.Subscriptions = append(res.Subscriptions, Subscription{
			Vendor:               vendor,
			AverageAmount:        round2(avgAmount),
			AverageIntervalDays:  round2(avgInterval),
			Occurrences:          len(charges),
			LastCharged:          formatDate(last),
			NextExpected:         formatDate(last.AddDate(0, 0, int(math.Round(avgInterval)))),
			EstimatedMonthlyCost: round2(cost),
		})
	}
	sort.Slice(res.Subscriptions, func(i, j int) bool {
		si, sj := res.Subscriptions[i], res.Subscriptions[j]
		if si.EstimatedMonthlyCost != sj.EstimatedMonthlyCost {
			return si.EstimatedMonthlyCost > sj.EstimatedMonthlyCost
		}
		return si.Vendor < sj.Vendor
	})
	res.TotalMonthlyCost = round2(monthly)
	return res, nil
}

type UnusualPurchase struct {
	PurchaseSummary
	DeviationSigma   float64 `json:"deviation_sigma"`
	PercentAboveMean float64 `json:"percent_above_mean"`
}

type UnusualSpendingResult struct {
	Mean        float64           `json:"mean"`
	StdDev      float64           `json:"std_dev"`
	Threshold   float64           `json:"threshold"`
	Sensitivity float64           `json:"sensitivity"`
	Unusual     []UnusualPurchase `json:"unusual"`
}

// UnusualSpending flags receipts above mean + sensitivity * stddev. Fewer than
// three receipts give no baseline and an empty result.
func (a *Analyzer) UnusualSpending(ctx context.Context, userID string, args UnusualSpendingArgs) (*UnusualSpendingResult, error) {
	_, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}
	sensitivity := args.Sensitivity
	if sensitivity <= 0 {
		sensitivity = 2
	}

	res := &UnusualSpendingResult{Sensitivity: sensitivity, Unusual: []UnusualPurchase{}}
	if len(rs) < 3 {
		return res, nil
	}

	amounts := make([]float64, len(rs))
	for i := range rs {
		amounts[i] = rs[i].AmountFloat()
	}
	m := mean(amounts)
	sd := sampleStdDev(amounts)
	threshold := m + sensitivity*sd
	res.Mean, res.StdDev, res.Threshold = round2(m), round2(sd), round2(threshold)

	for i, r := range rs {
		if amounts[i] <= threshold {
			continue
		}
		u := UnusualPurchase{PurchaseSummary: summarize(r)}
		if sd > 0 {
			u.DeviationSigma = round2((amounts[i] - m) / sd)
		}
		if m > 0 {
			u.PercentAboveMean = round2((amounts[i] - m) / m * 100)
		}
		res.Unusual = append(res.Unusual, u)
	}
	sort.SliceStable(res.Unusual, func(i, j int) bool {
		return res.Unusual[i].Amount > res.Unusual[j].Amount
	})
	return res, nil
}

const (
	BudgetUnder = "under_budget"
	BudgetOver  = "over_budget"
)

type BudgetComparison struct {
	Budget         float64 `json:"budget"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	Variance       float64 `json:"variance"`
	PercentUsed    float64 `json:"percent_used"`
	PeriodDays     int     `json:"period_days"`
	ElapsedDays    int     `json:"elapsed_days"`
	ExpectedToDate float64 `json:"expected_to_date"`
	OnTrack        bool    `json:"on_track"`
	Status         string  `json:"status"`
}

// CompareBudget compares spending with a budget for the period. While the
// period is still running the expected spend is prorated by elapsed days.
func (a *Analyzer) CompareBudget(ctx context.Context, userID string, args CompareBudgetArgs) (*BudgetComparison, error) {
	rng, rs, err := a.fetchRange(ctx, userID, args.DateRangeArgs, receipts.Query{Category: args.Category})
	if err != nil {
		return nil, err
	}
	spent := totalOf(rs)
	periodDays := rng.days()
	if periodDays < 0 {
		periodDays = 0
	}

	res := &BudgetComparison{
		Budget:     round2(args.Budget),
		Spent:      round2(spent),
		Remaining:  round2(args.Budget - spent),
		Variance:   round2(spent - args.Budget),
		PeriodDays: periodDays,
		Status:     BudgetUnder,
	}
	if args.Budget > 0 {
		res.PercentUsed = round2(spent / args.Budget * 100)
	}
	if spent > args.Budget {
		res.Status = BudgetOver
	}

	expected := args.Budget
	elapsed := periodDays
	today := a.today()
	if periodDays > 0 && rng.contains(today) {
		elapsed = daysBetween(rng.Start, today) + 1
		expected = args.Budget / float64(periodDays) * float64(elapsed)
	}
	res.ElapsedDays = elapsed
	res.ExpectedToDate = round2(expected)
	res.OnTrack = spent <= expected
	return res, nil
}
