package tools

import (
	"context"

	"github.com/raseed-labs/raseed-backend/internal/analytics"
)

type builder struct {
	tools []Tool
	err   error
}

func add[A, R any](b *builder, name, description string, fn func(ctx context.Context, userID string, args A) (R, error)) {
	if b.err != nil {
		return
	}
	t, err := New(name, description, fn)
	if err != nil {
		b.err = err
		return
	}
	b.tools = append(b.tools, t)
}

// AnalyticsTools exposes every analytics function as a tool.
func AnalyticsTools(a *analytics.Analyzer) ([]Tool, error) {
	b := &builder{}
	add(b, "find_purchases",
		"List purchases in a date range, optionally filtered by category, exact vendor name or an amount condition. Returns purchase summaries with count and total.",
		a.FindPurchases)
	add(b, "get_largest_purchase",
		"Find the single most expensive purchase in a date range, optionally within one category.",
		a.LargestPurchase)
	add(b, "get_spending_for_category",
		"Total amount and number of receipts for one category in a date range.",
		a.SpendingForCategory)
	add(b, "get_total_spending",
		"Total spending, receipt count and average per receipt in a date range.",
		a.TotalSpending)
	add(b, "get_spending_by_category",
		"Break spending in a date range down by category with each category's share of the total.",
		a.SpendingByCategory)
	add(b, "get_average_daily_spend",
		"Average spend per calendar day over a date range, both ends inclusive.",
		a.AverageDailySpend)
	add(b, "get_spending_by_weekday",
		"Spending in a date range grouped by day of the week.",
		a.SpendingByWeekday)
	add(b, "get_monthly_trend",
		"Month by month spending totals for the last N months, oldest first. The current month runs until today.",
		a.MonthlyTrend)
	add(b, "get_top_vendors",
		"Vendors with the highest total spend in a date range.",
		a.TopVendors)
	add(b, "get_frequent_items",
		"Items bought repeatedly in a date range with their purchase count and price statistics.",
		a.FrequentItems)
	add(b, "check_inventory_status",
		"For each item, when it was last bought in the last 90 days, how often it is bought and whether it likely needs replenishing.",
		a.InventoryStatus)
	add(b, "detect_recurring_subscriptions",
		"Detect vendors that charge a stable amount roughly every month, with the next expected charge and estimated monthly cost.",
		a.RecurringSubscriptions)
	add(b, "find_savings_opportunities",
		"Find items in a category that were recently bought above their usual price, with the potential saving and the cheapest vendor seen.",
		a.SavingsOpportunities)
	add(b, "compare_budget",
		"Compare spending in a date range against a budget, including whether spending is on track for a period still in progress.",
		a.CompareBudget)
	add(b, "detect_unusual_spending",
		"Flag purchases in a date range that are far above the typical purchase amount.",
		a.UnusualSpending)
	add(b, "suggest_shopping_list",
		"Estimate prices for the items the user wants to buy from the last 30 days of purchases, including the cheapest vendor per item.",
		a.SuggestShoppingList)
	add(b, "get_payment_method_breakdown",
		"Spending in a date range grouped by payment method.",
		a.PaymentMethodBreakdown)
	add(b, "get_tax_summary",
		"Total tax, subtotal and effective tax rate in a date range.",
		a.TaxSummary)
	if b.err != nil {
		return nil, b.err
	}
	return b.tools, nil
}
