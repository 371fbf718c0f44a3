package payroll

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPeriodNotFound = errors.New("payroll period not found")
	ErrFieldNotFound  = errors.New("custom field not found")
	ErrDuplicateField = errors.New("custom field already exists")
)

type DuplicateFieldError struct {
	ID string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("custom field %q already exists", e.ID)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationError struct {
	Issues []ValidationIssue
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Issues: []ValidationIssue{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CalculationError is one batch item's failure.
type CalculationError struct {
	Index int
	Name  string
	Err   error
}

func (e *CalculationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("item %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}
