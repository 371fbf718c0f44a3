package payroll

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type FieldKind string

const (
	FieldKindNumber     FieldKind = "number"
	FieldKindText       FieldKind = "text"
	FieldKindPercentage FieldKind = "percentage"
)

func ParseFieldKind(raw string) (FieldKind, error) {
	switch FieldKind(strings.ToLower(strings.TrimSpace(raw))) {
	case FieldKindNumber:
		return FieldKindNumber, nil
	case FieldKindText:
		return FieldKindText, nil
	case FieldKindPercentage:
		return FieldKindPercentage, nil
	}
	return "", fmt.Errorf("unknown field kind %q", raw)
}

// Arithmetic reports whether values of this kind take part in gross income.
func (k FieldKind) Arithmetic() bool {
	return k == FieldKindNumber || k == FieldKindPercentage
}

type CustomField struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         FieldKind `json:"kind"`
	DefaultValue *string   `json:"defaultValue,omitempty"`
}

// Default returns the field's default as a typed value, if it has a usable one.
func (f CustomField) Default() (Value, bool) {
	if f.DefaultValue == nil || strings.TrimSpace(*f.DefaultValue) == "" {
		return Value{}, false
	}
	v, err := f.Parse(*f.DefaultValue)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Parse converts a raw cell or form value into a value of the field's kind.
func (f CustomField) Parse(raw string) (Value, error) {
	switch f.Kind {
	case FieldKindText:
		return TextValue(raw), nil
	case FieldKindPercentage:
		amount, err := ParseAmount(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", f.Name, err)
		}
		return PercentageValue(amount), nil
	default:
		amount, err := ParseAmount(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", f.Name, err)
		}
		return NumberValue(amount), nil
	}
}

type FieldPatch struct {
	Name         *string
	Kind         *FieldKind
	DefaultValue *string
}

// Registry holds the user-defined fields in insertion order. Calculations
// never read it directly; callers pass a List snapshot.
type Registry struct {
	mu     sync.RWMutex
	fields []CustomField
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(field CustomField) (CustomField, error) {
	field.Name = strings.TrimSpace(field.Name)
	if field.Name == "" {
		return CustomField{}, NewValidationError("name", "is required")
	}
	if field.Kind == "" {
		field.Kind = FieldKindNumber
	}
	kind, err := ParseFieldKind(string(field.Kind))
	if err != nil {
		return CustomField{}, NewValidationError("kind", "must be one of number, text, percentage")
	}
	field.Kind = kind
	if err := checkField(field); err != nil {
		return CustomField{}, err
	}
	field.ID = strings.TrimSpace(field.ID)
	if field.ID == "" {
		field.ID = "custom_" + uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(field.ID) >= 0 {
		return CustomField{}, &DuplicateFieldError{ID: field.ID}
	}
	r.fields = append(r.fields, field)
	return field, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return
	}
	r.fields = slices.Delete(r.fields, idx, idx+1)
}

func (r *Registry) Update(id string, patch FieldPatch) (CustomField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return CustomField{}, ErrFieldNotFound
	}
	field := r.fields[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return CustomField{}, NewValidationError("name", "is required")
		}
		field.Name = name
	}
	if patch.Kind != nil {
		kind, err := ParseFieldKind(string(*patch.Kind))
		if err != nil {
			return CustomField{}, NewValidationError("kind", "must be one of number, text, percentage")
		}
		field.Kind = kind
	}
	if patch.DefaultValue != nil {
		value := *patch.DefaultValue
		field.DefaultValue = &value
	}
	if err := checkField(field); err != nil {
		return CustomField{}, err
	}
	r.fields[idx] = field
	return field, nil
}

func (r *Registry) Get(id string) (CustomField, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return CustomField{}, false
	}
	return r.fields[idx], true
}

// List returns a copy of the fields in insertion order.
func (r *Registry) List() []CustomField {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CustomField, len(r.fields))
	copy(out, r.fields)
	return out
}

// checkField rejects names that import would route to a built-in column and
// defaults that do not parse as the field's kind.
func checkField(field CustomField) error {
	if reservedName(field.Name) {
		return NewValidationError("name", "clashes with a built-in payroll column")
	}
	if field.DefaultValue != nil && strings.TrimSpace(*field.DefaultValue) != "" {
		if _, err := field.Parse(*field.DefaultValue); err != nil {
			return NewValidationError("defaultValue", "must be a valid "+string(field.Kind))
		}
	}
	return nil
}

func (r *Registry) indexOf(id string) int {
	for i, field := range r.fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// LookupField finds a field by id, or by name ignoring case, spaces and
// underscores, so imported columns titled after a field reach it.
func LookupField(fields []CustomField, key string) (CustomField, bool) {
	for _, field := range fields {
		if field.ID == key {
			return field, true
		}
	}
	normalized := NormalizeKey(key)
	for _, field := range fields {
		if NormalizeKey(field.Name) == normalized {
			return field, true
		}
	}
	return CustomField{}, false
}
