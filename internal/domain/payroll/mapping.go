package payroll

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// columnAliases lists, per canonical field, the normalized column titles
// that feed it, highest priority first. When a row carries several of them
// the first non-blank one wins.
var columnAliases = []struct {
	field   string
	aliases []string
}{
	{FieldEmployeeName, []string{"employeename", "name", "employee"}},
	{FieldBasicSalary, []string{"basicsalary", "basesalary", "salary", "basic"}},
	{FieldHousingAllowance, []string{"housingallowance", "housing"}},
	{FieldTransportAllowance, []string{"transportallowance", "transport"}},
	{FieldUtilityAllowance, []string{"utilityallowance", "utility"}},
	{FieldLunchAllowance, []string{"lunchallowance", "lunch"}},
	{FieldEntertainmentAllowance, []string{"entertainmentallowance", "entertainment"}},
	{FieldLeaveAllowance, []string{"leaveallowance", "leave"}},
	{FieldOtherAllowances, []string{"otherallowances", "otherallowance", "other"}},
	{FieldBonus, []string{"bonus", "bonusamount"}},
	{FieldOvertime, []string{"overtime"}},
	{FieldEmployeeDeductions, []string{"employeedeductions", "deductions"}},
	{FieldLoanRepayment, []string{"loanrepayment", "loan"}},
}

// aliases maps a normalized title to its canonical field and its rank in
// that field's alias list.
var aliases = buildAliases()

type aliasRank struct {
	field string
	rank  int
}

func buildAliases() map[string]aliasRank {
	out := make(map[string]aliasRank)
	for _, entry := range columnAliases {
		for rank, alias := range entry.aliases {
			out[alias] = aliasRank{field: entry.field, rank: rank}
		}
	}
	return out
}

// reservedName reports whether a title would be read as a built-in column
// or collide with a built-in line item.
func reservedName(name string) bool {
	normalized := NormalizeKey(name)
	if _, ok := aliases[normalized]; ok {
		return true
	}
	for _, builtin := range []string{
		FieldEmployeePension, FieldEmployerPension, FieldHealthInsurance, FieldMonthlyTax,
	} {
		if NormalizeKey(builtin) == normalized {
			return true
		}
	}
	return false
}

func inputField(in *Input, canonical string) *float64 {
	switch canonical {
	case FieldBasicSalary:
		return &in.BasicSalary
	case FieldHousingAllowance:
		return &in.HousingAllowance
	case FieldTransportAllowance:
		return &in.TransportAllowance
	case FieldUtilityAllowance:
		return &in.UtilityAllowance
	case FieldLunchAllowance:
		return &in.LunchAllowance
	case FieldEntertainmentAllowance:
		return &in.EntertainmentAllowance
	case FieldLeaveAllowance:
		return &in.LeaveAllowance
	case FieldOtherAllowances:
		return &in.OtherAllowances
	case FieldBonus:
		return &in.Bonus
	case FieldOvertime:
		return &in.Overtime
	case FieldEmployeeDeductions:
		return &in.EmployeeDeductions
	case FieldLoanRepayment:
		return &in.LoanRepayment
	}
	return nil
}

// NormalizeKey lowercases a column title and drops spaces, underscores and
// hyphens, so "Basic Salary", "BasicSalary" and "basic_salary" compare equal.
func NormalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Canonical maps a column title to its canonical field name. Unknown titles
// come back unchanged with ok=false.
func Canonical(key string) (string, bool) {
	if alias, ok := aliases[NormalizeKey(key)]; ok {
		return alias.field, true
	}
	return key, false
}

// resolveCanonical picks one raw value per canonical field: the first
// non-blank column in alias priority order, ties between titles that
// normalize alike broken by title order. Fields whose columns are all blank
// resolve to "".
func resolveCanonical(raw map[string]string) map[string]string {
	type candidate struct {
		key   string
		rank  int
		value string
	}
	byField := make(map[string][]candidate)
	for key, value := range raw {
		alias, ok := aliases[NormalizeKey(key)]
		if !ok {
			continue
		}
		byField[alias.field] = append(byField[alias.field], candidate{key: key, rank: alias.rank, value: value})
	}

	resolved := make(map[string]string, len(byField))
	for field, candidates := range byField {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].rank != candidates[j].rank {
				return candidates[i].rank < candidates[j].rank
			}
			return candidates[i].key < candidates[j].key
		})
		resolved[field] = ""
		for _, c := range candidates {
			if strings.TrimSpace(c.value) != "" {
				resolved[field] = c.value
				break
			}
		}
	}
	return resolved
}

// ToInput converts raw string values into a calculator input. Canonical
// amounts must be numeric or blank; other keys are matched to custom fields
// by id or name and otherwise ignored. A custom field reached by several
// columns takes the first non-blank one in title order.
func ToInput(raw map[string]string, fields []CustomField) (Input, error) {
	var in Input
	resolved := resolveCanonical(raw)
	for _, entry := range columnAliases {
		value, ok := resolved[entry.field]
		target := inputField(&in, entry.field)
		if !ok || target == nil {
			continue
		}
		amount, err := ParseAmount(value)
		if err != nil {
			return Input{}, fmt.Errorf("%s: %w", entry.field, err)
		}
		*target = amount
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		if _, known := Canonical(key); !known {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		value := raw[key]
		field, ok := LookupField(fields, key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if _, seen := in.Custom.Get(field.ID); seen {
			continue
		}
		parsed, err := field.Parse(value)
		if err != nil {
			return Input{}, err
		}
		in.Custom.Set(field.ID, parsed)
	}
	return in, nil
}

// EmployeeName returns the identity column of a raw row, if any.
func EmployeeName(raw map[string]string) string {
	return strings.TrimSpace(resolveCanonical(raw)[FieldEmployeeName])
}
