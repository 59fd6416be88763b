package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pinscraper/pkg/models"
)

const sheetName = "Pins"

// writeExcel writes the pins as an XLSX workbook with a single sheet,
// one header row and one row per pin.
func writeExcel(w io.Writer, pins []*models.Pin) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := setRow(f, 1, models.Columns()); err != nil {
		return err
	}
	for i, pin := range pins {
		if err := setRow(f, i+2, pin.Row()); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to set row %d: %w", row, err)
	}
	return nil
}
