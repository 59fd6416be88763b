package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"pinscraper/pkg/models"
)

// writeCSV writes the pins as a CSV file with a header row
func writeCSV(w io.Writer, pins []*models.Pin) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, pin := range pins {
		if err := writer.Write(pin.Row()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
