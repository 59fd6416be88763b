package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
	"pinscraper/pkg/models"
	"pinscraper/pkg/storage"
)

// FormatExcel, FormatJSON and FormatCSV are the supported export formats.
// FormatBoth is shorthand for excel plus json.
const (
	FormatExcel = "excel"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatBoth  = "both"
)

const timestampLayout = "20060102_150405"

// Exporter writes scraped pins to spreadsheet artifacts through the storage manager
type Exporter struct {
	store  *storage.Manager
	logger logger.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter writing into the given storage manager
func NewExporter(store *storage.Manager, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Export writes the pins in each requested format and returns the paths of
// the written artifacts. Filenames are timestamped so prior runs are never
// overwritten.
func (e *Exporter) Export(keyword string, pins []*models.Pin, formats []string) ([]string, error) {
	expanded, err := ExpandFormats(formats)
	if err != nil {
		return nil, err
	}

	timestamp := e.now().Format(timestampLayout)
	paths := make([]string, 0, len(expanded))

	for _, format := range expanded {
		filename := fmt.Sprintf("%s_%s.%s", sanitizeKeyword(keyword), timestamp, extensionFor(format))

		var write func(io.Writer) error
		switch format {
		case FormatExcel:
			write = func(w io.Writer) error { return writeExcel(w, pins) }
		case FormatJSON:
			write = func(w io.Writer) error { return writeJSON(w, pins) }
		case FormatCSV:
			write = func(w io.Writer) error { return writeCSV(w, pins) }
		}

		path, err := e.store.SaveArtifact(filename, write)
		if err != nil {
			return paths, errors.New(errors.ErrorTypeExport,
				fmt.Sprintf("failed to write %s export: %v", format, err))
		}

		e.logger.InfoWithFields("Export written", map[string]interface{}{
			"keyword": keyword,
			"format":  format,
			"path":    path,
			"pins":    len(pins),
		})
		paths = append(paths, path)
	}

	return paths, nil
}

// ExpandFormats validates the requested formats and expands the "both"
// shorthand into excel plus json, de-duplicating while preserving order.
func ExpandFormats(formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{FormatExcel}
	}

	seen := make(map[string]bool)
	expanded := make([]string, 0, len(formats)+1)

	add := func(format string) {
		if !seen[format] {
			seen[format] = true
			expanded = append(expanded, format)
		}
	}

	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case FormatExcel:
			add(FormatExcel)
		case FormatJSON:
			add(FormatJSON)
		case FormatCSV:
			add(FormatCSV)
		case FormatBoth:
			add(FormatExcel)
			add(FormatJSON)
		default:
			return nil, errors.New(errors.ErrorTypeExport,
				fmt.Sprintf("unknown export format %q (valid: excel, json, csv, both)", format))
		}
	}

	return expanded, nil
}

func extensionFor(format string) string {
	switch format {
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	default:
		return "csv"
	}
}

// sanitizeKeyword turns a search keyword into a safe filename prefix
func sanitizeKeyword(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "pins"
	}
	return strings.Join(strings.Fields(keyword), "_")
}
