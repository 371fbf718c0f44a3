package importer

import (
	"io"

	"github.com/xuri/excelize/v2"

	"payrun/internal/domain/payroll"
)

const TemplateSheet = "Payroll Template"

var templateHeaders = []string{
	"Employee Name",
	"Basic Salary",
	"Housing Allowance",
	"Transport Allowance",
	"Utility Allowance",
	"Lunch Allowance",
	"Entertainment Allowance",
	"Leave Allowance",
	"Other Allowances",
	"Bonus",
	"Overtime",
	"Employee Deductions",
	"Loan Repayment",
}

var templateRows = [][]any{
	{"John Doe", 100000, 20000, 10000, 0, 0, 0, 0, 0, 1000, 0, 0, 0},
	{"Jane Smith", 250000, 50000, 25000, 5000, 10000, 0, 0, 0, 500, 0, 0, 15000},
}

// Template writes the downloadable xlsx upload template. Each custom field
// gets a trailing column titled with its name.
func Template(w io.Writer, fields []payroll.CustomField) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheet); err != nil {
		return err
	}

	header := make([]any, 0, len(templateHeaders)+len(fields))
	for _, h := range templateHeaders {
		header = append(header, h)
	}
	for _, field := range fields {
		header = append(header, field.Name)
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", lastCell, bold); err != nil {
		return err
	}

	for i, sample := range templateRows {
		row := append([]any{}, sample...)
		for _, field := range fields {
			row = append(row, sampleValue(field))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func sampleValue(field payroll.CustomField) any {
	if field.DefaultValue != nil {
		return *field.DefaultValue
	}
	if field.Kind == payroll.FieldKindText {
		return ""
	}
	return 0
}
