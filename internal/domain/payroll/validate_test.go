package payroll

import (
	"errors"
	"testing"
	"time"
)

func issueFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

func TestValidateItem(t *testing.T) {
	ok := BatchItem{Name: "Ada", Values: map[string]string{"basic_salary": "1000", "bonus": ""}}
	if err := ValidateItem(ok); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}

	fields := issueFields(t, ValidateItem(BatchItem{Values: map[string]string{"bonus": "-5", "overtime": "x"}}))
	want := []string{FieldBasicSalary, FieldBonus, FieldEmployeeName, FieldOvertime}
	if len(fields) != len(want) {
		t.Fatalf("expected issues %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("expected issues %v, got %v", want, fields)
		}
	}
}

func TestValidateItemNameFromValues(t *testing.T) {
	item := BatchItem{Values: map[string]string{"Employee Name": "Ada", "Salary": "10"}}
	if err := ValidateItem(item); err != nil {
		t.Fatalf("expected name column to satisfy requirement, got %v", err)
	}
}

func TestValidateSave(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	req := PeriodRequest{
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 30),
		PaymentDate: start.AddDate(0, 0, 27),
		Status:      PeriodStatusDraft,
	}
	entries := []Entry{{EmployeeName: "Ada", NetPay: 1}}
	if err := ValidateSave(req, entries); err != nil {
		t.Fatalf("expected valid save, got %v", err)
	}

	bad := req
	bad.EndDate = start.AddDate(0, 0, -1)
	bad.Status = "archived"
	fields := issueFields(t, ValidateSave(bad, nil))
	want := []string{"endDate", "entries", "status"}
	if len(fields) != len(want) {
		t.Fatalf("expected issues %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("expected issues %v, got %v", want, fields)
		}
	}

	fields = issueFields(t, ValidateSave(PeriodRequest{Status: PeriodStatusPaid}, []Entry{{EmployeeName: " "}}))
	if len(fields) != 4 {
		t.Fatalf("expected three missing dates and a blank name, got %v", fields)
	}
}
