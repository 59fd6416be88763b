package export

import (
	"encoding/json"
	"io"

	"pinscraper/pkg/models"
)

// jsonDocument is the JSON export envelope
type jsonDocument struct {
	Pins []*models.Pin `json:"pins"`
}

// writeJSON writes the pins as an indented JSON document {"pins": [...]}
func writeJSON(w io.Writer, pins []*models.Pin) error {
	if pins == nil {
		pins = []*models.Pin{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(jsonDocument{Pins: pins})
}
