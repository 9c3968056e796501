package analytics

import (
	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/types"
)

// DateRangeArgs is embedded by every tool that analyses an explicit period.
type DateRangeArgs struct {
	StartDate string `json:"start_date" jsonschema_description:"Start of the period in YYYY-MM-DD format. Resolve relative phrases such as 'last month' before calling."`
	EndDate   string `json:"end_date" jsonschema_description:"End of the period in YYYY-MM-DD format and inclusive. Use today's date for 'until now'."`
}

type FindPurchasesArgs struct {
	DateRangeArgs
	Category        types.Category            `json:"category,omitempty" jsonschema_description:"Only include receipts in this category."`
	VendorName      string                    `json:"vendor_name,omitempty" jsonschema_description:"Only include receipts from this exact vendor name."`
	AmountCondition *receipts.AmountCondition `json:"amount_condition,omitempty" jsonschema_description:"Only include receipts whose total satisfies this comparison."`
}

type LargestPurchaseArgs struct {
	DateRangeArgs
	Category types.Category `json:"category,omitempty" jsonschema_description:"Restrict the search to this category."`
}

type SpendingForCategoryArgs struct {
	DateRangeArgs
	Category types.Category `json:"category" jsonschema_description:"The category to total."`
}

type TotalSpendingArgs struct {
	DateRangeArgs
}

type SpendingByCategoryArgs struct {
	DateRangeArgs
}

type AverageDailySpendArgs struct {
	DateRangeArgs
	Category types.Category `json:"category,omitempty" jsonschema_description:"Restrict the average to this category."`
}

type SpendingByWeekdayArgs struct {
	DateRangeArgs
}

type MonthlyTrendArgs struct {
	Months int `json:"months,omitempty" jsonschema:"default=6,minimum=1,maximum=24" jsonschema_description:"How many months to include counting the current one."`
}

// MaxTrendMonths caps MonthlyTrendArgs.Months.
const MaxTrendMonths = 24

func (a *MonthlyTrendArgs) SetDefaults() { a.Months = 6 }

type TopVendorsArgs struct {
	DateRangeArgs
	Limit int `json:"limit,omitempty" jsonschema:"default=5,minimum=1" jsonschema_description:"Maximum number of vendors to return."`
}

func (a *TopVendorsArgs) SetDefaults() { a.Limit = 5 }

type FrequentItemsArgs struct {
	DateRangeArgs
	MinFrequency int `json:"min_frequency,omitempty" jsonschema:"default=2,minimum=1" jsonschema_description:"Minimum number of purchases for an item to be listed."`
}

func (a *FrequentItemsArgs) SetDefaults() { a.MinFrequency = 2 }

type InventoryStatusArgs struct {
	Items []string `json:"items" jsonschema:"minItems=1" jsonschema_description:"Item names to check. Matching is a case-insensitive substring match over the last 90 days."`
}

type RecurringSubscriptionsArgs struct {
	LookbackDays int `json:"lookback_days,omitempty" jsonschema:"default=90,minimum=30" jsonschema_description:"How many days of history to scan for recurring charges."`
}

func (a *RecurringSubscriptionsArgs) SetDefaults() { a.LookbackDays = subscriptionLookbackDays }

type SavingsOpportunitiesArgs struct {
	Category   types.Category `json:"category" jsonschema_description:"Category whose item prices are compared over the last 60 days."`
	Percentile float64        `json:"percentile,omitempty" jsonschema:"default=75,minimum=1,maximum=100" jsonschema_description:"Prices above this percentile of an item's observed prices are flagged."`
}

func (a *SavingsOpportunitiesArgs) SetDefaults() { a.Percentile = 75 }

type CompareBudgetArgs struct {
	DateRangeArgs
	Budget   float64        `json:"budget" jsonschema:"minimum=0" jsonschema_description:"Budget for the whole period in INR."`
	Category types.Category `json:"category,omitempty" jsonschema_description:"Compare only spending in this category."`
}

type UnusualSpendingArgs struct {
	DateRangeArgs
	Sensitivity float64        `json:"sensitivity,omitempty" jsonschema:"default=2,minimum=0" jsonschema_description:"Number of standard deviations above the mean that counts as unusual."`
	Category    types.Category `json:"category,omitempty" jsonschema_description:"Only consider receipts in this category."`
}

func (a *UnusualSpendingArgs) SetDefaults() { a.Sensitivity = 2 }

type ShoppingListArgs struct {
	Items []string `json:"items" jsonschema:"minItems=1" jsonschema_description:"Items the user wants to buy."`
}

type PaymentMethodBreakdownArgs struct {
	DateRangeArgs
}

type TaxSummaryArgs struct {
	DateRangeArgs
	Category types.Category `json:"category,omitempty" jsonschema_description:"Restrict the summary to this category."`
}
