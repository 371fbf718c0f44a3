package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"payrun/internal/domain/payroll"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

var columns = []string{"Employee", "Base Salary", "Taxes", "Net Pay"}

type Line struct {
	Name       string
	BaseSalary float64
	Taxes      float64
	Net        float64
}

type Report struct {
	Period string
	Status string
	Total  float64
	Lines  []Line
}

// ReportFromPeriod flattens a stored period into the exported shape.
func ReportFromPeriod(p payroll.PeriodWithEntries) Report {
	report := Report{
		Period: payroll.PeriodLabel(p.StartDate, p.EndDate),
		Status: string(p.Status),
		Total:  p.TotalAmount,
		Lines:  make([]Line, 0, len(p.Entries)),
	}
	for _, entry := range p.Entries {
		report.Lines = append(report.Lines, Line{
			Name:       entry.EmployeeName,
			BaseSalary: entry.BaseSalary,
			Taxes:      entry.Taxes,
			Net:        entry.NetPay,
		})
	}
	return report
}

func Filename(report Report, format Format) string {
	name := strings.NewReplacer(" ", "-", ",", "", "/", "-").Replace(report.Period)
	return fmt.Sprintf("Payroll-%s.%s", name, format)
}

func Write(w io.Writer, format Format, report Report) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, report)
	case FormatCSV:
		return writeCSV(w, report)
	case FormatPDF:
		return writePDF(w, report)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func writeXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const details, summary = "Payroll Details", "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), details); err != nil {
		return err
	}
	header := []any{columns[0], columns[1], columns[2], columns[3]}
	if err := f.SetSheetRow(details, "A1", &header); err != nil {
		return err
	}
	for i, line := range report.Lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{line.Name, line.BaseSalary, line.Taxes, line.Net}
		if err := f.SetSheetRow(details, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	for i, pair := range [][]any{{"Period", report.Period}, {"Status", report.Status}, {"Total", report.Total}} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &pair); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, line := range report.Lines {
		if err := writer.Write([]string{line.Name, amount(line.BaseSalary), amount(line.Taxes), amount(line.Net)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writePDF(w io.Writer, report Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Payroll Report: "+report.Period)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Status: "+report.Status)
	pdf.Ln(6)
	pdf.Cell(0, 7, "Total: "+money(report.Total))
	pdf.Ln(10)

	widths := []float64{70, 40, 35, 35}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range columns {
		pdf.CellFormat(widths[i], 8, title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range report.Lines {
		pdf.CellFormat(widths[0], 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, money(line.BaseSalary), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(line.Taxes), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(line.Net), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

var moneyPrinter = message.NewPrinter(language.English)

// money renders 1234567.5 as "1,234,567.50", rounding half away from zero
// before the printer sees the value.
func money(v float64) string {
	return moneyPrinter.Sprintf("%.2f", payroll.Round2(v))
}
