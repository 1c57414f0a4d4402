// Package export writes the address book as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smileynet/addrbook/internal/contact"
)

// SheetName is the worksheet holding the contacts.
const SheetName = "Contacts"

// Headers are the column titles of the contacts sheet.
var Headers = []string{"Name", "Phones", "Birthday", "Next Birthday"}

var columnWidths = []float64{24, 36, 14, 16}

// WriteXLSX writes book to w as a workbook with one row per contact in book
// order. Next birthdays are computed relative to ref.
func WriteXLSX(w io.Writer, book *contact.Book, ref time.Time) error {
	f, err := build(book, ref)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		f.Close()
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: closing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path, creating parent directories.
func SaveXLSX(path string, book *contact.Book, ref time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: creating directory for %s: %w", path, err)
	}
	f, err := build(book, ref)
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		f.Close()
		return fmt.Errorf("export: saving %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: closing workbook: %w", err)
	}
	return nil
}

// build lays out the contacts sheet. The caller closes the returned file.
func build(book *contact.Book, ref time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: removing default sheet: %w", err)
	}
	// Indexes shift once the default sheet is gone.
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: locating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: creating header style: %w", err)
	}

	for col, header := range Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: writing header %q: %w", header, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: styling header %q: %w", header, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	for i, r := range book.Records() {
		row := i + 2
		for col, value := range rowValues(r, ref) {
			if err := setCellValue(f, col+1, row, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("export: writing %s: %w", r.Name(), err)
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: freezing header: %w", err)
	}
	return f, nil
}

// rowValues returns the cells for one contact. Contacts without a birthday
// leave both birthday columns empty.
func rowValues(r *contact.Record, ref time.Time) []string {
	phones := make([]string, 0, len(r.Phones()))
	for _, p := range r.Phones() {
		phones = append(phones, p.String())
	}

	values := []string{r.Name(), strings.Join(phones, "; "), "", ""}
	if bd, ok := r.Birthday(); ok {
		values[2] = bd.String()
		values[3] = contact.NextOccurrence(bd, ref).Format(contact.BirthdayLayout)
	}
	return values
}

func setCellValue(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStr(SheetName, cell, value)
}
