package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"payrun/internal/domain/payroll"
)

// maxXLSRows bounds how much of a legacy workbook is read.
const maxXLSRows = 100000

// ImportFormatError reports a file that could not be turned into rows.
type ImportFormatError struct {
	Filename string
	Reason   string
}

func (e *ImportFormatError) Error() string {
	if e.Filename == "" {
		return "import: " + e.Reason
	}
	return fmt.Sprintf("import %s: %s", e.Filename, e.Reason)
}

// Row is one non-blank data row keyed by its column header.
type Row struct {
	Line   int
	Values map[string]string
}

// Read parses a spreadsheet upload. The format follows the file extension;
// the first row is the header and fully blank rows are skipped.
func Read(r io.Reader, filename string) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var grid [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		grid, err = readXLSX(data)
	case ".xls":
		grid, err = readXLS(data)
	case ".csv", ".txt":
		grid, err = readCSV(data)
	default:
		return nil, &ImportFormatError{Filename: filename, Reason: "unsupported file type, expected .xlsx, .xls or .csv"}
	}
	if err != nil {
		var formatErr *ImportFormatError
		if errors.As(err, &formatErr) {
			formatErr.Filename = filename
			return nil, formatErr
		}
		return nil, &ImportFormatError{Filename: filename, Reason: err.Error()}
	}

	rows := toRows(grid)
	if len(rows) == 0 {
		return nil, &ImportFormatError{Filename: filename, Reason: "no data rows found"}
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, &ImportFormatError{Reason: "no worksheet found"}
	}
	return file.GetRows(sheetName)
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, &ImportFormatError{Reason: "no worksheet found"}
	}
	return workbook.ReadAllCells(maxXLSRows), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func toRows(grid [][]string) []Row {
	if len(grid) == 0 {
		return nil
	}
	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		values := make(map[string]string, len(headers))
		blank := true
		for col, header := range headers {
			if header == "" {
				continue
			}
			value := cellValue(cells, col)
			if value != "" {
				blank = false
			}
			if _, seen := values[header]; !seen {
				values[header] = value
			}
		}
		if blank {
			continue
		}
		// header is line 1
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	return rows
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Items turns imported rows into batch items, taking the employee name
// from whichever column maps to it.
func Items(rows []Row) []payroll.BatchItem {
	items := make([]payroll.BatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, payroll.BatchItem{
			Name:   payroll.EmployeeName(row.Values),
			Values: row.Values,
		})
	}
	return items
}
