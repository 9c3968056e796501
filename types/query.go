package types

import "time"

type QueryRequest struct {
	Query  string `json:"query" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

type QueryResponse struct {
	Answer     string      `json:"answer"`
	WalletLink string      `json:"wallet_link,omitempty"`
	PassID     string      `json:"pass_id"`
	WalletPass *WalletPass `json:"wallet_pass"`
}

// QueryRecord is the audit row written for every answered query.
type QueryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	PassID    string    `json:"pass_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type InsightsRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   string   `json:"amount"`
}

type InsightsSummary struct {
	Month            string           `json:"month"`
	TopCategories    []CategoryAmount `json:"top_categories"`
	TotalSpending    float64          `json:"total_spending"`
	ReceiptCount     int              `json:"receipt_count"`
	SpendingChartURL string           `json:"spending_chart_url"`
	WalletLink       string           `json:"wallet_link,omitempty"`
	Message          string           `json:"message,omitempty"`
}

type UploadReceiptResponse struct {
	ReceiptID string   `json:"receipt_id"`
	Receipt   *Receipt `json:"receipt_data"`
}

// AddToWalletRequest carries user-reviewed receipt fields that override the stored values.
type AddToWalletRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Vendor   string `json:"vendor" binding:"required"`
	Category string `json:"category" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time"`
}

type AddToWalletResponse struct {
	WalletLink string `json:"wallet_link"`
}
