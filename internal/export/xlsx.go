package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/papernote/internal/paper"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported entries.
const SheetName = "Papers"

// xlsxColumns are the spreadsheet headers, one row per entry below them.
var xlsxColumns = []string{
	"id", "title", "year", "venue", "overall", "tags", "authors",
	"doi", "url", "pdf", "keywords", "summary", "comment",
}

func xlsxRow(e paper.Entry) []interface{} {
	var year interface{} = e.Year.String()
	if n, err := strconv.Atoi(e.Year.String()); err == nil && e.Year.IsNumeric() {
		year = n
	}
	return []interface{}{
		e.ID, e.Title, year, e.Venue, e.Scores.Overall,
		strings.Join(e.Tags, "; "), strings.Join(e.Authors, "; "),
		e.DOI, e.URL, e.PDF, e.Keywords, e.Summary, e.Comment,
	}
}

// WriteXLSX writes entries as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, entries []paper.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(e)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing %s: %w", e.ID, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "B", 60); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
