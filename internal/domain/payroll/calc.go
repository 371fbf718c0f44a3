package payroll

import (
	"math"

	"github.com/shopspring/decimal"
)

// Relief is the consolidated relief on annual gross:
// max(Floor, MinRate*annual) + Rate*annual.
type Relief struct {
	Floor   float64 `yaml:"floor"`
	MinRate float64 `yaml:"min_rate"`
	Rate    float64 `yaml:"rate"`
}

func DefaultRelief() Relief {
	return Relief{Floor: 200000, MinRate: 0.01, Rate: 0.20}
}

func (r Relief) Amount(annualGross float64) float64 {
	return math.Max(r.Floor, r.MinRate*annualGross) + r.Rate*annualGross
}

// Schedule is everything a calculation is parameterised by.
type Schedule struct {
	Bands  []Band `yaml:"bands"`
	Rates  Rates  `yaml:"rates"`
	Relief Relief `yaml:"relief"`
}

func DefaultSchedule() Schedule {
	return Schedule{
		Bands:  DefaultBands(),
		Rates:  DefaultRates(),
		Relief: DefaultRelief(),
	}
}

// Input is one employee's monthly compensation. Absent amounts are zero.
type Input struct {
	BasicSalary            float64
	HousingAllowance       float64
	TransportAllowance     float64
	UtilityAllowance       float64
	LunchAllowance         float64
	EntertainmentAllowance float64
	LeaveAllowance         float64
	OtherAllowances        float64
	Bonus                  float64
	Overtime               float64
	EmployeeDeductions     float64
	LoanRepayment          float64
	Custom                 Values
}

type LineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Details []LineItem

func (d Details) Get(name string) (float64, bool) {
	for _, item := range d {
		if item.Name == name {
			return item.Amount, true
		}
	}
	return 0, false
}

func (d Details) Map() map[string]any {
	out := make(map[string]any, len(d))
	for _, item := range d {
		out[item.Name] = item.Amount
	}
	return out
}

type Annotation struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type AnnualFigures struct {
	Gross         float64 `json:"gross"`
	Relief        float64 `json:"relief"`
	TaxableIncome float64 `json:"taxableIncome"`
	Tax           float64 `json:"tax"`
}

type Result struct {
	GrossIncome     float64       `json:"grossIncome"`
	EmployeePension float64       `json:"employeePension"`
	EmployerPension float64       `json:"employerPension"`
	HealthInsurance float64       `json:"healthInsurance"`
	Tax             float64       `json:"tax"`
	NetPay          float64       `json:"netPay"`
	Annual          AnnualFigures `json:"annual"`
	Details         Details       `json:"details"`
	Annotations     []Annotation  `json:"annotations,omitempty"`
}

// TotalDeductions is what was withheld from the employee: tax, pension,
// health insurance and the pass-through deductions.
func (r Result) TotalDeductions() float64 {
	return Round2(r.GrossIncome - r.NetPay)
}

type Calculator struct {
	schedule Schedule
}

func NewCalculator(schedule Schedule) *Calculator {
	if len(schedule.Bands) == 0 {
		schedule.Bands = DefaultBands()
	}
	return &Calculator{schedule: schedule}
}

func (c *Calculator) Schedule() Schedule {
	return c.schedule
}

// Calculate produces the monthly payslip. fields must be a registry
// snapshot; percentage fields compound on the gross accumulated so far, so
// their order matters.
func (c *Calculator) Calculate(in Input, fields []CustomField) Result {
	gross := in.BasicSalary + in.HousingAllowance + in.TransportAllowance +
		in.UtilityAllowance + in.LunchAllowance + in.EntertainmentAllowance +
		in.LeaveAllowance + in.OtherAllowances + in.Bonus + in.Overtime

	details := Details{
		{Name: FieldBasicSalary, Amount: in.BasicSalary},
		{Name: FieldHousingAllowance, Amount: in.HousingAllowance},
		{Name: FieldTransportAllowance, Amount: in.TransportAllowance},
		{Name: FieldUtilityAllowance, Amount: in.UtilityAllowance},
		{Name: FieldLunchAllowance, Amount: in.LunchAllowance},
		{Name: FieldEntertainmentAllowance, Amount: in.EntertainmentAllowance},
		{Name: FieldLeaveAllowance, Amount: in.LeaveAllowance},
		{Name: FieldOtherAllowances, Amount: in.OtherAllowances},
		{Name: FieldBonus, Amount: in.Bonus},
		{Name: FieldOvertime, Amount: in.Overtime},
	}

	var annotations []Annotation
	for _, field := range fields {
		value, ok := in.Custom.Get(field.ID)
		if !ok {
			value, ok = field.Default()
		}
		if !ok {
			continue
		}
		switch field.Kind {
		case FieldKindNumber:
			gross += value.Amount
			details = append(details, LineItem{Name: field.Name, Amount: value.Amount})
		case FieldKindPercentage:
			amount := gross * value.Amount / 100
			gross += amount
			details = append(details, LineItem{Name: field.Name, Amount: amount})
		case FieldKindText:
			annotations = append(annotations, Annotation{Name: field.Name, Text: value.String()})
		}
	}

	deductions := c.schedule.Rates.Compute(in.BasicSalary, in.HousingAllowance, in.TransportAllowance)

	annualGross := gross * 12
	relief := c.schedule.Relief.Amount(annualGross)
	annualTaxable := math.Max(0, annualGross-relief-deductions.EmployeePension*12-deductions.HealthInsurance*12)
	annualTax := ComputeTax(annualTaxable, c.schedule.Bands)
	monthlyTax := annualTax / 12

	net := gross - monthlyTax - deductions.EmployeePension - deductions.HealthInsurance -
		in.EmployeeDeductions - in.LoanRepayment

	details = append(details,
		LineItem{Name: FieldEmployeePension, Amount: deductions.EmployeePension},
		LineItem{Name: FieldEmployerPension, Amount: deductions.EmployerPension},
		LineItem{Name: FieldHealthInsurance, Amount: deductions.HealthInsurance},
		LineItem{Name: FieldMonthlyTax, Amount: monthlyTax},
		LineItem{Name: FieldEmployeeDeductions, Amount: in.EmployeeDeductions},
		LineItem{Name: FieldLoanRepayment, Amount: in.LoanRepayment},
	)
	for i := range details {
		details[i].Amount = Round2(details[i].Amount)
	}

	return Result{
		GrossIncome:     Round2(gross),
		EmployeePension: Round2(deductions.EmployeePension),
		EmployerPension: Round2(deductions.EmployerPension),
		HealthInsurance: Round2(deductions.HealthInsurance),
		Tax:             Round2(monthlyTax),
		NetPay:          Round2(net),
		Annual: AnnualFigures{
			Gross:         Round2(annualGross),
			Relief:        Round2(relief),
			TaxableIncome: Round2(annualTaxable),
			Tax:           Round2(annualTax),
		},
		Details:     details,
		Annotations: annotations,
	}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}
