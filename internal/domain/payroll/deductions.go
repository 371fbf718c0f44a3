package payroll

// Rates are the statutory percentage deductions. The employer pension is
// reported but never taken from the employee's pay.
type Rates struct {
	EmployeePension float64 `yaml:"employee_pension_rate"`
	EmployerPension float64 `yaml:"employer_pension_rate"`
	HealthInsurance float64 `yaml:"health_insurance_rate"`
}

func DefaultRates() Rates {
	return Rates{
		EmployeePension: 0.08,
		EmployerPension: 0.10,
		HealthInsurance: 0.05,
	}
}

type Deductions struct {
	PensionBase     float64
	EmployeePension float64
	EmployerPension float64
	HealthInsurance float64
}

func PensionBase(basic, housing, transport float64) float64 {
	return basic + housing + transport
}

func (r Rates) Compute(basic, housing, transport float64) Deductions {
	base := PensionBase(basic, housing, transport)
	return Deductions{
		PensionBase:     base,
		EmployeePension: r.EmployeePension * base,
		EmployerPension: r.EmployerPension * base,
		HealthInsurance: r.HealthInsurance * basic,
	}
}
