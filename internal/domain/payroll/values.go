package payroll

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a custom-field value. Exactly one of the arithmetic amount or
// the display text is meaningful, depending on Kind.
type Value struct {
	Kind   FieldKind
	Amount float64
	Text   string
}

func NumberValue(amount float64) Value {
	return Value{Kind: FieldKindNumber, Amount: amount}
}

func PercentageValue(percent float64) Value {
	return Value{Kind: FieldKindPercentage, Amount: percent}
}

func TextValue(text string) Value {
	return Value{Kind: FieldKindText, Text: text}
}

func (v Value) String() string {
	if v.Kind == FieldKindText {
		return v.Text
	}
	return strconv.FormatFloat(v.Amount, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == FieldKindText {
		return json.Marshal(v.Text)
	}
	return json.Marshal(v.Amount)
}

type ValueEntry struct {
	FieldID string
	Value   Value
}

// Values is an ordered association from custom-field id to value. Set on
// an existing id replaces in place so the first-seen order is kept.
type Values []ValueEntry

func (vs Values) Get(fieldID string) (Value, bool) {
	for _, entry := range vs {
		if entry.FieldID == fieldID {
			return entry.Value, true
		}
	}
	return Value{}, false
}

func (vs *Values) Set(fieldID string, value Value) {
	for i, entry := range *vs {
		if entry.FieldID == fieldID {
			(*vs)[i].Value = value
			return
		}
	}
	*vs = append(*vs, ValueEntry{FieldID: fieldID, Value: value})
}

// ParseAmount reads a numeric cell. Blank means zero; thousands separators,
// surrounding spaces and a trailing percent sign are tolerated.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return amount, nil
}
