package dto

import "github.com/fekuna/stockroom-service/internal/model"

type ApplyDeltaInput struct {
	ItemID string          `json:"-"`
	Delta  int             `json:"delta"`
	Reason model.LogReason `json:"reason"`
	Actor  string          `json:"user_name"`
}

// SubmitCartInput is one batch of deltas. When OrderID is set the order is
// marked done in the same transaction.
type SubmitCartInput struct {
	Lines   model.Cart `json:"items"`
	Actor   string     `json:"user_name"`
	OrderID string     `json:"order_id,omitempty"`
}

// EditLogInput carries the corrected quantity as a magnitude; the sign of the
// original entry is kept.
type EditLogInput struct {
	LogID  string `json:"-"`
	Amount int    `json:"amount"`
}
