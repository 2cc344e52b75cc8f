package dto

type ItemFilters struct {
	SearchQuery string `json:"q"`
	Category    string `json:"category"`
}
