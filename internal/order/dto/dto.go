package dto

import "github.com/fekuna/stockroom-service/internal/model"

// OrderFilters narrows order listings. An empty Status or "all" matches every
// status.
type OrderFilters struct {
	Status       string
	StorageClass string
	LocationID   string
	NewestFirst  bool
}

type SubmitRequestResult struct {
	Orders []model.Order `json:"orders"`
	// Groups is how many sibling orders the request was split into.
	Groups int `json:"groups"`
}
