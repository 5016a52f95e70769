package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders tables as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType returns the MIME type of rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension returns the file extension of rendered output.
func (e *CSVExporter) Extension() string { return "csv" }

// Render writes heading fields as label,value rows, a blank line, then the table.
func (e *CSVExporter) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	for _, field := range t.Fields {
		if err := writer.Write([]string{field.Label, field.Value}); err != nil {
			return nil, fmt.Errorf("write csv field: %w", err)
		}
	}
	if len(t.Fields) > 0 {
		writer.Flush()
		buf.WriteString("\n")
	}

	if err := writer.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
