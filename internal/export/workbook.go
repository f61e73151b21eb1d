// Package export renders generated documents as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// workbook wraps an excelize file with a shared header style and a cursor
// per sheet.
type workbook struct {
	f           *excelize.File
	headerStyle int
	rows        map[string]int
	first       bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#9BC2E6", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &workbook{f: f, headerStyle: style, rows: map[string]int{}, first: true}, nil
}

// sheet creates a sheet. The first call renames the default sheet.
func (wb *workbook) sheet(name string, widths ...float64) error {
	if wb.first {
		if err := wb.f.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		wb.first = false
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetColWidth(name, col, col, w); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	wb.rows[name] = 0
	return nil
}

func (wb *workbook) header(sheet string, cols ...string) error {
	row := wb.rows[sheet] + 1
	if err := wb.row(sheet, toAny(cols)...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(cols), row)
	if err := wb.f.SetCellStyle(sheet, first, last, wb.headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func (wb *workbook) row(sheet string, values ...any) error {
	wb.rows[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, wb.rows[sheet])
	if err != nil {
		return err
	}
	if err := wb.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", wb.rows[sheet], sheet, err)
	}
	return nil
}

// field writes a label/value row. List values are joined one per line.
func (wb *workbook) field(sheet, label string, value any) error {
	if items, ok := value.([]string); ok {
		value = strings.Join(items, "\n")
	}
	return wb.row(sheet, label, value)
}

func (wb *workbook) blank(sheet string) {
	wb.rows[sheet]++
}

func (wb *workbook) write(w io.Writer) error {
	defer wb.f.Close()
	if _, err := wb.f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func join(items []string) string {
	return strings.Join(items, "\n")
}
