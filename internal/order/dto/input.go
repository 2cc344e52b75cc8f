package dto

// RequestLine is one requested item. Quantities are in item units, not cases.
type RequestLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type SubmitRequestInput struct {
	LocationID string        `json:"-"`
	Lines      []RequestLine `json:"items"`
}

type UpdateStatusInput struct {
	OrderID string `json:"-"`
	Status  string `json:"status"`
}
