package model

import "time"

type OrderStatus string

const (
	OrderNew        OrderStatus = "new"
	OrderInProgress OrderStatus = "in_progress"
	OrderDone       OrderStatus = "done"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderNew, OrderInProgress, OrderDone:
		return true
	}
	return false
}

type Order struct {
	ID           string        `db:"id" json:"id"`
	LocationID   string        `db:"location_id" json:"location_id"`
	Status       OrderStatus   `db:"status" json:"status"`
	StorageClass *StorageClass `db:"storage_class" json:"storage_class,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time    `db:"completed_at" json:"completed_at"`
}

type OrderLine struct {
	ID       string `db:"id" json:"id"`
	OrderID  string `db:"order_id" json:"order_id"`
	ItemID   string `db:"item_id" json:"item_id"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// OrderLineDetail is a line with its item name resolved. Lines whose item has
// since been deleted read "Unknown Item".
type OrderLineDetail struct {
	ID       string `db:"id" json:"id"`
	OrderID  string `db:"order_id" json:"-"`
	ItemID   string `db:"item_id" json:"item_id"`
	ItemName string `db:"item_name" json:"item_name"`
	Quantity int    `db:"quantity" json:"quantity"`
}

type OrderWithDetails struct {
	Order
	LocationName string            `db:"location_name" json:"location_name"`
	Items        []OrderLineDetail `db:"-" json:"items"`
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderNew:        {OrderInProgress},
	OrderInProgress: {OrderDone},
	OrderDone:       {OrderInProgress},
}

// CanTransition reports whether from -> to is one of the enumerated moves.
// Anything else, including new -> done and staying put, is rejected.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
