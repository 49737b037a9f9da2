// Package spreadsheet extracts XLSX and legacy XLS workbooks, one
// segment per sheet. Each segment starts with a sheet-name marker and
// a header line, followed by a bounded number of data rows so very
// large sheets cannot blow up segment size.
package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/verdant-labs/docvault/internal/core/domain"
	"github.com/verdant-labs/docvault/internal/core/ports/driven"
)

// maxDataRows caps the number of data rows rendered per sheet.
const maxDataRows = 50

// maxColumns caps the number of columns rendered per row.
const maxColumns = 50

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads XLSX workbooks natively and XLS through the legacy
// BIFF reader. Cells are coerced to strings.
type Extractor struct{}

// New creates a new spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the document format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatSpreadsheet
}

// Extract returns one normalized segment per sheet.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return e.extractXLS(ctx, path)
	}
	return e.extractXLSX(ctx, path)
}

func (e *Extractor) extractXLSX(ctx context.Context, path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	var segments []string
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		segments = append(segments, sheetSegment(name, rows))
	}
	return segments, nil
}

func (e *Extractor) extractXLS(ctx context.Context, path string) ([]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}

	var segments []string
	for i := 0; i < wb.NumSheets(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		segments = append(segments, sheetSegment(sheet.Name, rows))
	}
	return segments, nil
}

// sheetSegment renders one sheet: marker line, header line from the
// first row, then up to maxDataRows data rows of at most maxColumns
// cells joined with " | ".
func sheetSegment(name string, rows [][]string) string {
	lines := []string{fmt.Sprintf("# Sheet: %s", name)}

	if len(rows) > 0 {
		lines = append(lines, strings.Join(clipColumns(rows[0]), ", "))
	}

	data := rows
	if len(data) > 0 {
		data = data[1:]
	}
	if len(data) > maxDataRows {
		data = data[:maxDataRows]
	}
	for _, row := range data {
		lines = append(lines, strings.Join(clipColumns(row), " | "))
	}

	return domain.Normalize(strings.Join(lines, "\n"))
}

func clipColumns(row []string) []string {
	if len(row) > maxColumns {
		return row[:maxColumns]
	}
	return row
}
