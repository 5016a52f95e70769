package export

import "fmt"

// Field is a labelled value printed above the table, such as a student name or GPA.
type Field struct {
	Label string
	Value string
}

// Table is the export document: an optional heading block followed by rows.
type Table struct {
	Title   string
	Fields  []Field
	Columns []string
	// Widths are relative column weights for PDF output; nil means equal widths.
	Widths []float64
	Rows   [][]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	if t.Widths != nil && len(t.Widths) != len(t.Columns) {
		return fmt.Errorf("export has %d widths for %d columns", len(t.Widths), len(t.Columns))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("export row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
