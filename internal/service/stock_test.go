package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zamora/internal/models"
)

func inv(name string, qty, min float64) models.InventoryItem {
	return models.InventoryItem{ID: name, Name: name, Unit: "kg", Quantity: qty, MinQuantity: min}
}

func TestTriageLowStockScenario(t *testing.T) {
	low := TriageLowStock([]models.InventoryItem{
		inv("tomatoes", 9, 10),
		inv("rice", 0, 10),
		inv("flour", 6, 10),
		inv("sugar", 50, 10),
	})

	require.Len(t, low, 3)
	assert.Equal(t, "rice", low[0].Name)
	assert.Equal(t, UrgencyCritical, low[0].Urgency)
	assert.Equal(t, 10.0, low[0].Shortage)

	assert.Equal(t, "flour", low[1].Name)
	assert.Equal(t, UrgencyHigh, low[1].Urgency)
	assert.Equal(t, 4.0, low[1].Shortage)

	assert.Equal(t, "tomatoes", low[2].Name)
	assert.Equal(t, UrgencyMedium, low[2].Urgency)
	assert.Equal(t, 1.0, low[2].Shortage)
}

func TestTriageZeroQuantityAlwaysCritical(t *testing.T) {
	for _, min := range []float64{0, 1, 1000} {
		low := TriageLowStock([]models.InventoryItem{inv("x", 0, min)})
		require.Len(t, low, 1)
		assert.Equal(t, UrgencyCritical, low[0].Urgency, "min %v", min)
	}
}

func TestTriageHalfOfMinimumIsHigh(t *testing.T) {
	urgency, ok := Urgency(inv("x", 5, 10))
	assert.True(t, ok)
	assert.Equal(t, UrgencyHigh, urgency)

	urgency, ok = Urgency(inv("x", 10, 10))
	assert.True(t, ok)
	assert.Equal(t, UrgencyMedium, urgency)

	_, ok = Urgency(inv("x", 10.5, 10))
	assert.False(t, ok)
}

func TestTriageOrderingIsStable(t *testing.T) {
	low := TriageLowStock([]models.InventoryItem{
		inv("a", 8, 10),
		inv("b", 2, 10),
		inv("c", 7, 10),
		inv("d", 8, 10),
		inv("e", 0, 3),
		inv("f", 0, 8),
	})

	names := make([]string, len(low))
	for i, it := range low {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"f", "e", "b", "c", "a", "d"}, names)

	for i := 1; i < len(low); i++ {
		prev, cur := urgencyRank[low[i-1].Urgency], urgencyRank[low[i].Urgency]
		assert.LessOrEqual(t, prev, cur)
		if prev == cur {
			assert.GreaterOrEqual(t, low[i-1].Shortage, low[i].Shortage)
		}
	}
}

func TestBuildInventoryWorkbook(t *testing.T) {
	items := []models.InventoryItem{inv("rice", 0, 10), inv("sugar", 50, 10)}
	items[1].CostPerUnit = models.NewMoney(2.5)

	data, err := BuildInventoryWorkbook(items, TriageLowStock(items))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInventory, SheetLowStock}, f.GetSheetList())

	rows, err := f.GetRows(SheetInventory)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "sugar", rows[2][0])
	assert.Equal(t, "125", rows[2][5])

	rows, err = f.GetRows(SheetLowStock)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"rice", "kg", "0", "10", "10", "critical"}, rows[1])
}
