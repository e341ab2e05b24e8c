// Package validation checks user input for timer labels and log edits.
package validation

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"timesheet/internal/domain"
)

// Limits bounds accepted input.
type Limits struct {
	LabelMaxLength int
	MaxRate        float64
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{LabelMaxLength: 255, MaxRate: 100000}
}

// Validator checks labels, rates and log edits against its limits.
type Validator struct {
	limits Limits
}

// NewValidator creates a validator with the given limits. Zero fields fall back to defaults.
func NewValidator(limits Limits) *Validator {
	def := DefaultLimits()
	if limits.LabelMaxLength <= 0 {
		limits.LabelMaxLength = def.LabelMaxLength
	}
	if limits.MaxRate <= 0 {
		limits.MaxRate = def.MaxRate
	}
	return &Validator{limits: limits}
}

// Limits returns the validator's effective limits.
func (v *Validator) Limits() Limits {
	return v.limits
}

// CleanLabel trims surrounding whitespace.
func (v *Validator) CleanLabel(label string) string {
	return strings.TrimSpace(label)
}

// ValidateLabel accepts any single-line label up to the length limit. An empty
// label is valid: a freshly started timer has none.
func (v *Validator) ValidateLabel(label string) error {
	ve := NewValidationError()
	if utf8.RuneCountInString(label) > v.limits.LabelMaxLength {
		ve.AddInvalidLengthError("label", label, v.limits.LabelMaxLength)
	}
	if strings.IndexFunc(label, unicode.IsControl) >= 0 {
		ve.AddInvalidCharacterError("label", label)
	}
	return ve.orNil()
}

// ValidateRate accepts finite rates in [0, MaxRate].
func (v *Validator) ValidateRate(rate float64) error {
	ve := NewValidationError()
	switch {
	case math.IsNaN(rate) || math.IsInf(rate, 0):
		ve.AddError("rate", ErrorTypeInvalidValue, "rate must be a number", rate)
	case rate < 0:
		ve.AddInvalidRangeError("rate", rate, "must not be negative")
	case rate > v.limits.MaxRate:
		ve.AddInvalidRangeError("rate", rate, "exceeds the maximum rate")
	}
	return ve.orNil()
}

// ValidateLogEdit checks every field an edit sets and requires at least one.
func (v *Validator) ValidateLogEdit(edit domain.LogEdit) error {
	ve := NewValidationError()
	if edit.IsEmpty() {
		ve.AddError("edit", ErrorTypeRequired, "nothing to change: set a label or a rate", nil)
		return ve
	}
	if edit.Label != nil {
		ve.merge(v.ValidateLabel(*edit.Label))
	}
	if edit.Rate != nil && !edit.ClearRate {
		ve.merge(v.ValidateRate(*edit.Rate))
	}
	return ve.orNil()
}
