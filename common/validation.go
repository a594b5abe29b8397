package common

import (
	"fmt"
	"strings"
)

// ValidationResult is returned by explicit validation call sites. Invalid
// input is reported here instead of being returned as an error.
type ValidationResult struct {
	Valid  bool     `json:"valid" yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Addf records validation problem.
func (v *ValidationResult) Addf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
	v.Valid = false
}

// Merge appends problems of another result, prefixing them.
func (v *ValidationResult) Merge(prefix string, o ValidationResult) {
	for _, e := range o.Errors {
		v.Addf("%s%s", prefix, e)
	}
}

func (v ValidationResult) String() string {
	if v.Valid {
		return "valid"
	}
	return strings.Join(v.Errors, "; ")
}

// NewValidationResult returns result without problems.
func NewValidationResult() ValidationResult {
	return ValidationResult{Valid: true}
}
