package model

import "time"

type LogReason string

const (
	ReasonConsumed   LogReason = "consumed"
	ReasonRestocked  LogReason = "restocked"
	ReasonAdjustment LogReason = "adjustment"
)

func (r LogReason) Valid() bool {
	switch r {
	case ReasonConsumed, ReasonRestocked, ReasonAdjustment:
		return true
	}
	return false
}

// ReasonForDelta picks consumed or restocked from the sign of a cart delta.
func ReasonForDelta(delta int) LogReason {
	if delta > 0 {
		return ReasonRestocked
	}
	return ReasonConsumed
}

type StockLog struct {
	ID           string    `db:"id" json:"id"`
	ItemID       string    `db:"item_id" json:"item_id"`
	ChangeAmount int       `db:"change_amount" json:"change_amount"`
	Reason       LogReason `db:"reason" json:"reason"`
	UserName     *string   `db:"user_name" json:"user_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LogEntry is a log row joined with its item for the history view. Item
// columns are nullable because the join is a LEFT JOIN.
type LogEntry struct {
	LogID        string    `db:"log_id" json:"log_id"`
	ItemID       string    `db:"item_id" json:"item_id"`
	ItemName     *string   `db:"item_name" json:"item_name"`
	ItemSKU      *string   `db:"item_sku" json:"item_sku"`
	ItemCategory *string   `db:"item_category" json:"item_category"`
	ChangeAmount int       `db:"change_amount" json:"change_amount"`
	Reason       LogReason `db:"reason" json:"reason"`
	UserName     *string   `db:"user_name" json:"user_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StockPoint is one day on the total-stock chart.
type StockPoint struct {
	Date       string `json:"date"`
	TotalStock int    `json:"total_stock"`
}

type ItemConsumption struct {
	ItemID        string  `db:"item_id" json:"item_id"`
	ItemName      *string `db:"item_name" json:"item_name"`
	ItemCategory  *string `db:"item_category" json:"item_category"`
	TotalConsumed int     `db:"total_consumed" json:"total_consumed"`
}

type CategoryConsumption struct {
	Category      *string `db:"category" json:"category"`
	TotalConsumed int     `db:"total_consumed" json:"total_consumed"`
}

type Statistics struct {
	TotalConsumed  int                   `json:"total_consumed"`
	TotalRestocked int                   `json:"total_restocked"`
	TopItems       []ItemConsumption     `json:"top_items"`
	CategoryStats  []CategoryConsumption `json:"category_stats"`
}

// StockChange is the outcome of one guarded stock update.
type StockChange struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	Before       int    `json:"before"`
	After        int    `json:"after"`
	MinThreshold int    `json:"min_threshold"`
}

func (c StockChange) Delta() int {
	return c.After - c.Before
}
