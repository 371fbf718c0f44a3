package payroll

import "time"

type Period struct {
	ID          string       `json:"id"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	PaymentDate time.Time    `json:"paymentDate"`
	Status      PeriodStatus `json:"status"`
	TotalAmount float64      `json:"totalAmount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Entry struct {
	ID                string         `json:"id"`
	PeriodID          string         `json:"periodId"`
	EmployeeName      string         `json:"employeeName"`
	BaseSalary        float64        `json:"baseSalary"`
	Taxes             float64        `json:"taxes"`
	NetPay            float64        `json:"netPay"`
	AdditionalDetails map[string]any `json:"additionalDetails,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

type PeriodWithEntries struct {
	Period
	Entries []Entry `json:"entries"`
}

// PeriodRequest describes the period a computed batch is saved under.
type PeriodRequest struct {
	StartDate   time.Time
	EndDate     time.Time
	PaymentDate time.Time
	Status      PeriodStatus
}
