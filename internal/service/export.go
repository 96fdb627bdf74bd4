package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"zamora/internal/models"
)

// Sheet names of the inventory workbook
const (
	SheetInventory = "Inventory"
	SheetLowStock  = "Low Stock"
)

var (
	inventoryHeaders = []any{"Name", "Unit", "Quantity", "Min Quantity", "Cost Per Unit", "Stock Value", "Updated At"}
	lowStockHeaders  = []any{"Name", "Unit", "Quantity", "Min Quantity", "Shortage", "Urgency"}
)

// BuildInventoryWorkbook renders the inventory of a property and its restock
// list as an .xlsx workbook.
func BuildInventoryWorkbook(items []models.InventoryItem, low []LowStockItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetInventory); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLowStock); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	inventoryRows := make([][]any, 0, len(items))
	for _, it := range items {
		value := models.NewMoney(it.CostPerUnit.Float() * it.Quantity)
		inventoryRows = append(inventoryRows, []any{
			it.Name, it.Unit, it.Quantity, it.MinQuantity, it.CostPerUnit.Float(), value.Float(),
			it.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	if err := writeSheet(f, SheetInventory, inventoryHeaders, inventoryRows, headerStyle); err != nil {
		return nil, err
	}

	lowRows := make([][]any, 0, len(low))
	for _, it := range low {
		lowRows = append(lowRows, []any{it.Name, it.Unit, it.Quantity, it.MinQuantity, it.Shortage, it.Urgency})
	}
	if err := writeSheet(f, SheetLowStock, lowStockHeaders, lowRows, headerStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
