package dto

import "github.com/fekuna/stockroom-service/internal/model"

type StockResult struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	NewStock int    `json:"new_stock"`
}

type CartResult struct {
	Items []StockResult `json:"items"`
	Order *model.Order  `json:"order,omitempty"`
}
