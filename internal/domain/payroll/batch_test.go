package payroll

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func batchItems() []BatchItem {
	items := make([]BatchItem, 5)
	for i := range items {
		items[i] = BatchItem{
			Name: "Employee " + strconv.Itoa(i+1),
			Values: map[string]string{
				"Basic Salary":        strconv.Itoa(100000 + i*10000),
				"housing_allowance":   "20000",
				"TransportAllowance":  "10000",
				"employee_deductions": "",
			},
		}
	}
	items[2].Values["Basic Salary"] = "one hundred thousand"
	return items
}

func TestProcessBatchPartialFailure(t *testing.T) {
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	out := processor.Process(batchItems(), nil)

	if out.SuccessCount != 4 || out.FailureCount != 1 {
		t.Fatalf("expected 4 successes and 1 failure, got %d/%d", out.SuccessCount, out.FailureCount)
	}
	if len(out.Errors) != 1 || out.Errors[0].Index != 2 {
		t.Fatalf("expected one error at index 2, got %+v", out.Errors)
	}
	if out.Errors[0].EmployeeName != "Employee 3" {
		t.Fatalf("expected error to name the employee, got %q", out.Errors[0].EmployeeName)
	}
	wantIndexes := []int{0, 1, 3, 4}
	for i, result := range out.Results {
		if result.Index != wantIndexes[i] {
			t.Fatalf("expected result %d to be item %d, got %d", i, wantIndexes[i], result.Index)
		}
	}
	if out.Results[0].GrossIncome != 130000 || out.Results[0].NetPay != 106810 {
		t.Fatalf("unexpected first result: %+v", out.Results[0].Result)
	}
}

func TestProcessBatchCountsAlwaysAddUp(t *testing.T) {
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	cases := [][]BatchItem{
		nil,
		{{Name: "ok", Values: map[string]string{"basic_salary": "1"}}},
		{{Name: "bad", Values: map[string]string{"bonus": "x"}}, {Name: "bad2", Values: map[string]string{"overtime": "?"}}},
	}
	for _, items := range cases {
		out := processor.Process(items, nil)
		if out.SuccessCount+out.FailureCount != len(items) {
			t.Fatalf("counts %d+%d do not match %d items", out.SuccessCount, out.FailureCount, len(items))
		}
		if out.Errors == nil || out.Results == nil {
			t.Fatal("expected non-nil slices for JSON output")
		}
	}
}

func TestProcessBatchRecoversFromPanics(t *testing.T) {
	processor := NewBatchProcessor(nil)
	items := []BatchItem{
		{Name: "a", Values: map[string]string{"basic_salary": "1000"}},
		{Name: "b", Values: map[string]string{"basic_salary": "2000"}},
	}
	out := processor.Process(items, nil)
	if out.FailureCount != 2 || out.SuccessCount != 0 {
		t.Fatalf("expected both items to fail without aborting, got %+v", out)
	}
	if out.Errors[1].Index != 1 {
		t.Fatalf("expected second error at index 1, got %d", out.Errors[1].Index)
	}
}

func TestProcessBatchMissingFieldsDefaultToZero(t *testing.T) {
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	out := processor.Process([]BatchItem{{Name: "empty", Values: map[string]string{}}}, nil)
	if out.SuccessCount != 1 {
		t.Fatalf("expected missing fields to be permitted, got %+v", out.Errors)
	}
	if out.Results[0].GrossIncome != 0 {
		t.Fatalf("expected zero gross, got %v", out.Results[0].GrossIncome)
	}
}

func TestProcessBatchUsesNameColumn(t *testing.T) {
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	out := processor.Process([]BatchItem{{Values: map[string]string{"Employee Name": "Ada", "Salary": "1000"}}}, nil)
	if out.Results[0].EmployeeName != "Ada" {
		t.Fatalf("expected name from row, got %q", out.Results[0].EmployeeName)
	}
}

func TestProcessBatchCustomFieldColumns(t *testing.T) {
	fields := []CustomField{
		{ID: "custom_meal", Name: "Meal Subsidy", Kind: FieldKindNumber},
		{ID: "custom_uplift", Name: "Uplift", Kind: FieldKindPercentage},
	}
	items := []BatchItem{{Name: "Ada", Values: map[string]string{
		"basic_salary":  "100000",
		"Meal Subsidy":  "0",
		"custom_uplift": "10%",
	}}}
	out := NewBatchProcessor(NewCalculator(DefaultSchedule())).Process(items, fields)
	if out.SuccessCount != 1 {
		t.Fatalf("expected success, got %+v", out.Errors)
	}
	if out.Results[0].GrossIncome != 110000 {
		t.Fatalf("expected gross 110000, got %v", out.Results[0].GrossIncome)
	}
}

func TestProcessParallelMatchesSequential(t *testing.T) {
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	items := batchItems()
	sequential := processor.Process(items, nil)
	parallel, err := processor.ProcessParallel(context.Background(), items, nil, 4)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("expected identical results\nsequential: %+v\nparallel: %+v", sequential, parallel)
	}
}

func TestProcessParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule()))
	_, err := processor.ProcessParallel(ctx, batchItems(), nil, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestStrictProcessorReportsInvalidItemsAndContinues(t *testing.T) {
	items := []BatchItem{
		{Name: "Ada", Values: map[string]string{"basic_salary": "100000", "housing_allowance": "20000", "transport_allowance": "10000"}},
		{Name: "", Values: map[string]string{"basic_salary": "50000"}},
		{Name: "Grace", Values: map[string]string{"housing_allowance": "1000"}},
		{Name: "Obi", Values: map[string]string{"basic_salary": "90000"}},
	}
	processor := NewBatchProcessor(NewCalculator(DefaultSchedule())).Strict()
	out, err := processor.ProcessParallel(context.Background(), items, nil, 2)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.SuccessCount != 2 || out.FailureCount != 2 {
		t.Fatalf("expected 2 successes and 2 failures, got %d/%d", out.SuccessCount, out.FailureCount)
	}
	if out.Errors[0].Index != 1 || out.Errors[1].Index != 2 {
		t.Fatalf("expected failures at 1 and 2, got %+v", out.Errors)
	}
	if out.Results[0].NetPay != 106810 || out.Results[1].Index != 3 {
		t.Fatalf("unexpected results %+v", out.Results)
	}

	lenient := NewBatchProcessor(NewCalculator(DefaultSchedule())).Process(items, nil)
	if lenient.SuccessCount != 4 {
		t.Fatalf("expected the default processor to skip validation, got %d successes", lenient.SuccessCount)
	}
}
