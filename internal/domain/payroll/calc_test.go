package payroll

import (
	"reflect"
	"testing"
)

func TestCalculateReferenceEmployee(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	result := calc.Calculate(Input{
		BasicSalary:        100000,
		HousingAllowance:   20000,
		TransportAllowance: 10000,
	}, nil)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"gross", result.GrossIncome, 130000},
		{"employee pension", result.EmployeePension, 10400},
		{"employer pension", result.EmployerPension, 13000},
		{"health insurance", result.HealthInsurance, 5000},
		{"tax", result.Tax, 7790},
		{"net", result.NetPay, 106810},
		{"annual gross", result.Annual.Gross, 1560000},
		{"relief", result.Annual.Relief, 512000},
		{"annual taxable", result.Annual.TaxableIncome, 863200},
		{"annual tax", result.Annual.Tax, 93480},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("expected %s %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestCalculateEmployerPensionNotDeducted(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	result := calc.Calculate(Input{BasicSalary: 100000, HousingAllowance: 20000, TransportAllowance: 10000}, nil)
	want := result.GrossIncome - result.Tax - result.EmployeePension - result.HealthInsurance
	if result.NetPay != Round2(want) {
		t.Fatalf("expected net %v, got %v", want, result.NetPay)
	}
}

func TestCalculatePassThroughDeductions(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	base := calc.Calculate(Input{BasicSalary: 100000, HousingAllowance: 20000, TransportAllowance: 10000}, nil)
	withLoan := calc.Calculate(Input{
		BasicSalary:        100000,
		HousingAllowance:   20000,
		TransportAllowance: 10000,
		EmployeeDeductions: 1500,
		LoanRepayment:      2500,
	}, nil)
	if withLoan.Tax != base.Tax {
		t.Fatalf("pass-through deductions must not change tax: %v vs %v", withLoan.Tax, base.Tax)
	}
	if withLoan.NetPay != base.NetPay-4000 {
		t.Fatalf("expected net %v, got %v", base.NetPay-4000, withLoan.NetPay)
	}
}

func TestCalculatePercentageFieldsCompound(t *testing.T) {
	fields := []CustomField{
		{ID: "p1", Name: "Performance", Kind: FieldKindPercentage},
		{ID: "p2", Name: "Hardship", Kind: FieldKindPercentage},
	}
	var custom Values
	custom.Set("p1", PercentageValue(10))
	custom.Set("p2", PercentageValue(10))

	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 100000, Custom: custom}, fields)

	if got, _ := result.Details.Get("Performance"); got != 10000 {
		t.Fatalf("expected first percentage 10000, got %v", got)
	}
	if got, _ := result.Details.Get("Hardship"); got != 11000 {
		t.Fatalf("expected second percentage 11000, got %v", got)
	}
	if result.GrossIncome != 121000 {
		t.Fatalf("expected gross 121000, got %v", result.GrossIncome)
	}
}

func TestCalculateFieldOrderFollowsRegistry(t *testing.T) {
	var custom Values
	custom.Set("pct", PercentageValue(10))
	custom.Set("num", NumberValue(1000))

	numberFirst := []CustomField{
		{ID: "num", Name: "Meal", Kind: FieldKindNumber},
		{ID: "pct", Name: "Uplift", Kind: FieldKindPercentage},
	}
	percentFirst := []CustomField{numberFirst[1], numberFirst[0]}

	calc := NewCalculator(DefaultSchedule())
	a := calc.Calculate(Input{BasicSalary: 10000, Custom: custom}, numberFirst)
	b := calc.Calculate(Input{BasicSalary: 10000, Custom: custom}, percentFirst)

	if a.GrossIncome != 12100 {
		t.Fatalf("expected gross 12100 with number first, got %v", a.GrossIncome)
	}
	if b.GrossIncome != 12000 {
		t.Fatalf("expected gross 12000 with percentage first, got %v", b.GrossIncome)
	}
}

func TestCalculateNumberAndTextFields(t *testing.T) {
	fields := []CustomField{
		{ID: "meal", Name: "Meal", Kind: FieldKindNumber},
		{ID: "note", Name: "Cost Centre", Kind: FieldKindText},
	}
	var custom Values
	custom.Set("meal", NumberValue(2500))
	custom.Set("note", TextValue("LAG-01"))

	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 50000, Custom: custom}, fields)

	if result.GrossIncome != 52500 {
		t.Fatalf("expected gross 52500, got %v", result.GrossIncome)
	}
	if got, ok := result.Details.Get("Meal"); !ok || got != 2500 {
		t.Fatalf("expected Meal line 2500, got %v (%v)", got, ok)
	}
	if _, ok := result.Details.Get("Cost Centre"); ok {
		t.Fatal("text field must not appear as an amount")
	}
	if len(result.Annotations) != 1 || result.Annotations[0].Text != "LAG-01" {
		t.Fatalf("expected text annotation, got %+v", result.Annotations)
	}
}

func TestCalculateUsesFieldDefault(t *testing.T) {
	def := "5000"
	fields := []CustomField{{ID: "meal", Name: "Meal", Kind: FieldKindNumber, DefaultValue: &def}}

	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 50000}, fields)
	if result.GrossIncome != 55000 {
		t.Fatalf("expected default to apply, got gross %v", result.GrossIncome)
	}

	var custom Values
	custom.Set("meal", NumberValue(100))
	result = NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 50000, Custom: custom}, fields)
	if result.GrossIncome != 50100 {
		t.Fatalf("expected supplied value to win over default, got gross %v", result.GrossIncome)
	}
}

func TestCalculateIgnoresValuesWithoutField(t *testing.T) {
	var custom Values
	custom.Set("removed", NumberValue(9999))
	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 1000, Custom: custom}, nil)
	if result.GrossIncome != 1000 {
		t.Fatalf("expected gross 1000, got %v", result.GrossIncome)
	}
}

func TestCalculateZeroInput(t *testing.T) {
	result := NewCalculator(DefaultSchedule()).Calculate(Input{}, nil)
	if result.GrossIncome != 0 || result.Tax != 0 || result.NetPay != 0 {
		t.Fatalf("expected all zero, got %+v", result)
	}
	if result.Annual.Relief != 200000 {
		t.Fatalf("expected relief floor 200000, got %v", result.Annual.Relief)
	}
}

func TestCalculateNegativeInputPassesThrough(t *testing.T) {
	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: -1000}, nil)
	if result.GrossIncome != -1000 {
		t.Fatalf("expected gross -1000, got %v", result.GrossIncome)
	}
	if result.Tax != 0 {
		t.Fatalf("expected no tax on negative income, got %v", result.Tax)
	}
	if result.NetPay != -870 {
		t.Fatalf("expected net -870, got %v", result.NetPay)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	in := Input{BasicSalary: 345678.91, HousingAllowance: 1234.56, Bonus: 99.99}
	a := calc.Calculate(in, nil)
	b := calc.Calculate(in, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestCalculateCustomRates(t *testing.T) {
	schedule := DefaultSchedule()
	schedule.Rates = Rates{}
	result := NewCalculator(schedule).Calculate(Input{BasicSalary: 100000}, nil)
	if result.EmployeePension != 0 || result.HealthInsurance != 0 {
		t.Fatalf("expected zero statutory deductions, got %+v", result)
	}
}

func TestCalculateDetailsOrder(t *testing.T) {
	result := NewCalculator(DefaultSchedule()).Calculate(Input{BasicSalary: 1}, nil)
	want := []string{
		FieldBasicSalary, FieldHousingAllowance, FieldTransportAllowance, FieldUtilityAllowance,
		FieldLunchAllowance, FieldEntertainmentAllowance, FieldLeaveAllowance, FieldOtherAllowances,
		FieldBonus, FieldOvertime, FieldEmployeePension, FieldEmployerPension, FieldHealthInsurance,
		FieldMonthlyTax, FieldEmployeeDeductions, FieldLoanRepayment,
	}
	if len(result.Details) != len(want) {
		t.Fatalf("expected %d detail lines, got %d", len(want), len(result.Details))
	}
	for i, name := range want {
		if result.Details[i].Name != name {
			t.Fatalf("expected line %d to be %s, got %s", i, name, result.Details[i].Name)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.005:    1.01,
		2.675:    2.68,
		-1.005:   -1.01,
		10400:    10400,
		0.004999: 0,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v): expected %v, got %v", in, want, got)
		}
	}
}

func TestPensionBase(t *testing.T) {
	if got := PensionBase(100000, 20000, 10000); got != 130000 {
		t.Fatalf("expected 130000, got %v", got)
	}
	d := DefaultRates().Compute(100000, 20000, 10000)
	if Round2(d.HealthInsurance) != 5000 {
		t.Fatalf("health insurance must use basic only, got %v", d.HealthInsurance)
	}
}
