package model

import "time"

type StorageClass string

const (
	StorageNormal StorageClass = "normal"
	StorageCold   StorageClass = "cold"
)

func (s StorageClass) Valid() bool {
	return s == StorageNormal || s == StorageCold
}

type Item struct {
	ID              string       `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	SKU             string       `db:"sku" json:"sku"`
	Category        string       `db:"category" json:"category"`
	Stock           int          `db:"stock" json:"stock"`
	MinThreshold    int          `db:"min_threshold" json:"min_threshold"`
	QuantityPerUnit int          `db:"quantity_per_unit" json:"quantity_per_unit"`
	UnitName        string       `db:"unit_name" json:"unit_name"`
	Size            *string      `db:"size" json:"size,omitempty"`
	ImageURL        *string      `db:"image_url" json:"image_url,omitempty"`
	StorageClass    StorageClass `db:"storage_class" json:"storage_class"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// IsLow reports whether stock sits at or below the alert boundary.
func (i *Item) IsLow() bool {
	return i.Stock <= i.MinThreshold
}

// AvailableItem is the volunteer-facing view of an item; stock is withheld.
type AvailableItem struct {
	ID              string       `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Category        string       `db:"category" json:"category"`
	ImageURL        *string      `db:"image_url" json:"image_url,omitempty"`
	QuantityPerUnit int          `db:"quantity_per_unit" json:"quantity_per_unit"`
	UnitName        string       `db:"unit_name" json:"unit_name"`
	StorageClass    StorageClass `db:"storage_class" json:"storage_class"`
}
