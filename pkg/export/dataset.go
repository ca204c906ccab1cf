package export

import (
	"fmt"

	"github.com/noah-isme/teacher-directory/internal/models"
)

// Column is one exported field with its display title.
type Column struct {
	Key   string
	Title string
}

// Dataset defines tabular export content. Each row holds one cell per column, in column order.
type Dataset struct {
	Columns []Column
	Rows    [][]string
}

// Titles returns the column titles in order.
func (d Dataset) Titles() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Title
	}
	return out
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Columns))
		}
	}
	return nil
}

// TeacherDataset lays out the directory with headers resolved through title,
// usually a dictionary lookup.
func TeacherDataset(teachers []models.Teacher, title func(key string) string) Dataset {
	if title == nil {
		title = func(key string) string { return key }
	}
	keys := []string{"teacher.name", "teacher.subject", "teacher.location", "teacher.rating", "teacher.fee"}
	columns := make([]Column, len(keys))
	for i, key := range keys {
		columns[i] = Column{Key: key, Title: title(key)}
	}

	rows := make([][]string, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, []string{t.Name, t.Subject, t.Location, t.Rating.String(), t.Fee.String()})
	}
	return Dataset{Columns: columns, Rows: rows}
}
