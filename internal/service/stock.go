package service

import (
	"sort"

	"zamora/internal/models"
)

// Restock urgencies
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
)

// highUrgencyRatio is the share of min_quantity at or below which a low item
// is high urgency.
const highUrgencyRatio = 0.6

var urgencyRank = map[string]int{
	UrgencyCritical: 0,
	UrgencyHigh:     1,
	UrgencyMedium:   2,
}

// LowStockItem is an inventory item needing restock.
type LowStockItem struct {
	models.InventoryItem
	Urgency  string  `json:"urgency"`
	Shortage float64 `json:"shortage"`
}

// Urgency classifies a low item. ok is false when the item is above its threshold.
func Urgency(item models.InventoryItem) (urgency string, ok bool) {
	switch {
	case !item.IsLowStock():
		return "", false
	case item.Quantity <= 0:
		return UrgencyCritical, true
	case item.Quantity <= item.MinQuantity*highUrgencyRatio:
		return UrgencyHigh, true
	default:
		return UrgencyMedium, true
	}
}

// TriageLowStock keeps the items at or below their threshold, most urgent first
// and, within an urgency, largest shortage first. The input is not modified.
func TriageLowStock(items []models.InventoryItem) []LowStockItem {
	low := []LowStockItem{}
	for _, item := range items {
		urgency, ok := Urgency(item)
		if !ok {
			continue
		}
		low = append(low, LowStockItem{
			InventoryItem: item,
			Urgency:       urgency,
			Shortage:      item.MinQuantity - item.Quantity,
		})
	}

	sort.SliceStable(low, func(i, j int) bool {
		ri, rj := urgencyRank[low[i].Urgency], urgencyRank[low[j].Urgency]
		if ri != rj {
			return ri < rj
		}
		return low[i].Shortage > low[j].Shortage
	})
	return low
}
