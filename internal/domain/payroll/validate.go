package payroll

import (
	"sort"
	"strings"
)

// issueList collects field issues for the domain checks below. The HTTP
// layer has its own collector for request-shape checks.
type issueList struct {
	issues []ValidationIssue
}

func (v *issueList) Add(field, reason string) {
	v.issues = append(v.issues, ValidationIssue{Field: field, Reason: reason})
}

func (v *issueList) Err() error {
	if len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return &ValidationError{Issues: out}
}

// ValidateItem requires an employee name and a basic salary, and rejects
// non-numeric or negative amounts. Only the column each field resolves to
// is checked. The calculator itself never validates; callers that want
// strictness run this first.
func ValidateItem(item BatchItem) error {
	var v issueList
	resolved := resolveCanonical(item.Values)
	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = strings.TrimSpace(resolved[FieldEmployeeName])
	}
	if name == "" {
		v.Add(FieldEmployeeName, "is required")
	}

	for _, entry := range columnAliases {
		raw, ok := resolved[entry.field]
		if !ok || entry.field == FieldEmployeeName {
			continue
		}
		amount, err := ParseAmount(raw)
		if err != nil {
			v.Add(entry.field, "must be a number")
			continue
		}
		if amount < 0 {
			v.Add(entry.field, "must not be negative")
		}
	}
	if strings.TrimSpace(resolved[FieldBasicSalary]) == "" {
		v.Add(FieldBasicSalary, "is required")
	}
	return v.Err()
}

func ValidateSave(req PeriodRequest, entries []Entry) error {
	var v issueList
	if req.StartDate.IsZero() {
		v.Add("startDate", "is required")
	}
	if req.EndDate.IsZero() {
		v.Add("endDate", "is required")
	}
	if req.PaymentDate.IsZero() {
		v.Add("paymentDate", "is required")
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		v.Add("endDate", "must be on or after startDate")
	}
	if !req.Status.Valid() {
		v.Add("status", "must be one of "+strings.Join(PeriodStatuses, ", "))
	}
	if len(entries) == 0 {
		v.Add("entries", "must contain at least one employee")
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.EmployeeName) == "" {
			v.Add("employeeName", "is required for every entry")
			break
		}
	}
	return v.Err()
}
