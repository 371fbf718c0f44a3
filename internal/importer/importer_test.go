package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"payrun/internal/domain/payroll"
)

func TestReadCSV(t *testing.T) {
	data := "\xef\xbb\xbfEmployee Name,Basic Salary,Housing\n" +
		"Ada,\"100,000\",20000\n" +
		",,\n" +
		"Bola,80000\n"
	rows, err := Read(strings.NewReader(data), "payroll.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected blank row to be skipped, got %d rows", len(rows))
	}
	if rows[0].Values["Employee Name"] != "Ada" || rows[0].Values["Basic Salary"] != "100,000" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Line != 4 {
		t.Fatalf("expected second row on line 4, got %d", rows[1].Line)
	}
	if rows[1].Values["Housing"] != "" {
		t.Fatalf("expected short row to pad with blanks, got %+v", rows[1].Values)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Name", "Salary", "Bonus"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"Ada", 100000, 500})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := Read(buf, "Payroll.XLSX")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].Values["Salary"] != "100000" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadRejectsEmptyAndUnknown(t *testing.T) {
	var formatErr *ImportFormatError
	if _, err := Read(strings.NewReader("Name,Salary\n"), "empty.csv"); !errors.As(err, &formatErr) {
		t.Fatalf("expected format error for header-only file, got %v", err)
	}
	if _, err := Read(strings.NewReader(""), "blank.csv"); !errors.As(err, &formatErr) {
		t.Fatalf("expected format error for empty file, got %v", err)
	}
	if _, err := Read(strings.NewReader("x"), "payroll.pdf"); !errors.As(err, &formatErr) {
		t.Fatalf("expected format error for unknown type, got %v", err)
	}
	if _, err := Read(strings.NewReader("not a zip"), "payroll.xlsx"); !errors.As(err, &formatErr) {
		t.Fatalf("expected format error for corrupt workbook, got %v", err)
	}
	if formatErr.Filename != "payroll.xlsx" {
		t.Fatalf("expected filename on error, got %q", formatErr.Filename)
	}
}

func TestItemsFeedBatch(t *testing.T) {
	data := "Employee,Salary,Housing,Transport\nAda,100000,20000,10000\nBola,abc,0,0\n"
	rows, err := Read(strings.NewReader(data), "payroll.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	items := Items(rows)
	if items[0].Name != "Ada" || items[1].Name != "Bola" {
		t.Fatalf("expected names from rows, got %+v", items)
	}

	out := payroll.NewBatchProcessor(payroll.NewCalculator(payroll.DefaultSchedule())).Process(items, nil)
	if out.SuccessCount != 1 || out.FailureCount != 1 || out.Errors[0].Index != 1 {
		t.Fatalf("unexpected batch outcome: %+v", out)
	}
	if out.Results[0].NetPay != 106810 {
		t.Fatalf("expected net 106810, got %v", out.Results[0].NetPay)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	def := "2500"
	fields := []payroll.CustomField{{ID: "custom_meal", Name: "Meal Subsidy", Kind: payroll.FieldKindNumber, DefaultValue: &def}}

	var buf bytes.Buffer
	if err := Template(&buf, fields); err != nil {
		t.Fatalf("template: %v", err)
	}
	rows, err := Read(&buf, "template.xlsx")
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if len(rows) != len(templateRows) {
		t.Fatalf("expected %d sample rows, got %d", len(templateRows), len(rows))
	}
	if rows[0].Values["Meal Subsidy"] != "2500" {
		t.Fatalf("expected custom column with default, got %+v", rows[0].Values)
	}

	out := payroll.NewBatchProcessor(payroll.NewCalculator(payroll.DefaultSchedule())).Process(Items(rows), fields)
	if out.FailureCount != 0 {
		t.Fatalf("template rows must calculate cleanly, got %+v", out.Errors)
	}
}
