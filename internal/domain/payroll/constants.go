package payroll

const (
	FieldBasicSalary            = "basic_salary"
	FieldHousingAllowance       = "housing_allowance"
	FieldTransportAllowance     = "transport_allowance"
	FieldUtilityAllowance       = "utility_allowance"
	FieldLunchAllowance         = "lunch_allowance"
	FieldEntertainmentAllowance = "entertainment_allowance"
	FieldLeaveAllowance         = "leave_allowance"
	FieldOtherAllowances        = "other_allowances"
	FieldBonus                  = "bonus"
	FieldOvertime               = "overtime"
	FieldEmployeeDeductions     = "employee_deductions"
	FieldLoanRepayment          = "loan_repayment"

	FieldEmployeePension = "employee_pension"
	FieldEmployerPension = "employer_pension"
	FieldHealthInsurance = "health_insurance"
	FieldMonthlyTax      = "monthly_tax"

	FieldEmployeeName = "employee_name"
)

type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "draft"
	PeriodStatusProcessing PeriodStatus = "processing"
	PeriodStatusPaid       PeriodStatus = "paid"
	PeriodStatusCancelled  PeriodStatus = "cancelled"
)

func (s PeriodStatus) Valid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusPaid, PeriodStatusCancelled:
		return true
	}
	return false
}

var PeriodStatuses = []string{
	string(PeriodStatusDraft),
	string(PeriodStatusProcessing),
	string(PeriodStatusPaid),
	string(PeriodStatusCancelled),
}
