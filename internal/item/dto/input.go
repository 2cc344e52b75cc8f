package dto

type CreateItemInput struct {
	Name            string  `json:"name"`
	SKU             string  `json:"sku"`
	Category        string  `json:"category"`
	Stock           int     `json:"stock"`
	MinThreshold    int     `json:"min_threshold"`
	QuantityPerUnit int     `json:"quantity_per_unit"`
	UnitName        string  `json:"unit_name"`
	Size            *string `json:"size"`
	ImageURL        *string `json:"image_url"`
	StorageClass    string  `json:"storage_class"`
}

// UpdateItemInput replaces the descriptive fields of an item. Stock is absent
// on purpose: it only moves through the stock ledger.
type UpdateItemInput struct {
	ID              string  `json:"-"`
	Name            string  `json:"name"`
	SKU             string  `json:"sku"`
	Category        string  `json:"category"`
	MinThreshold    int     `json:"min_threshold"`
	QuantityPerUnit int     `json:"quantity_per_unit"`
	UnitName        string  `json:"unit_name"`
	Size            *string `json:"size"`
	ImageURL        *string `json:"image_url"`
	StorageClass    string  `json:"storage_class"`
}
