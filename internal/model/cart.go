package model

// CartLine is one signed stock delta for one item.
type CartLine struct {
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"`
}

// Cart is an ordered batch of deltas applied as one unit of work.
type Cart []CartLine

// ItemIDs returns the distinct item ids in first-seen order.
func (c Cart) ItemIDs() []string {
	seen := make(map[string]struct{}, len(c))
	ids := make([]string, 0, len(c))
	for _, l := range c {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}
