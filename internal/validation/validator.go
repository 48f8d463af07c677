// =============================================================================
// BOM Steel Filler - Table Validation
// =============================================================================
//
// This module validates the bill-of-materials table before any item reaches
// the spreadsheet. It works at two levels:
//   1. Table-level: the description, length and weight columns must hold the
//      same number of entries. A mismatch rejects the whole table.
//   2. Row-level: an entry whose length or weight is not numeric is dropped;
//      the rest of the table is still processed.
//
// ERROR HANDLING:
//   - Findings are collected, not returned as Go errors
//   - Each finding carries the entry line, field and offending value
//   - Severity "error" rejects the table, severity "warning" does not
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleEntryCount = "entry_count"
	RuleEmptyTable = "empty_table"
	RuleGradeReuse = "grade_reuse"
	RuleNumeric    = "numeric"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the table column the finding refers to.
	Field string

	// Value is the offending value, if any.
	Value string

	// Rule is the rule that produced the finding.
	Rule string

	// Message is a human-readable description.
	Message string

	// Line is the 1-based entry position inside the table cell. 0 when the
	// finding concerns the whole table.
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(e.Severity))
	if e.Line > 0 {
		fmt.Fprintf(&b, " Line %d,", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " Field '%s':", e.Field)
	}
	fmt.Fprintf(&b, " %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult collects findings.
type ValidationResult struct {
	// Errors contains all findings, warnings included, in discovery order.
	Errors []*ValidationError

	// ErrorCount is the number of fatal findings.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// NewResult returns an empty result.
func NewResult() *ValidationResult {
	return &ValidationResult{}
}

// Add records a finding.
func (r *ValidationResult) Add(e *ValidationError) {
	if e == nil {
		return
	}
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// IsValid is true when there are no fatal findings.
func (r *ValidationResult) IsValid() bool {
	return r.ErrorCount == 0
}

// Warnings returns the non-fatal findings.
func (r *ValidationResult) Warnings() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// Fatal returns the fatal findings.
func (r *ValidationResult) Fatal() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// TABLE-LEVEL VALIDATION
// =============================================================================

// EntryCounts holds the number of entries found in each table column.
type EntryCounts struct {
	Descriptions int
	Grades       int
	Lengths      int
	Weights      int
}

// ValidateEntryCounts checks that the description, length and weight columns
// line up, and warns when the grade column is shorter than the description
// column (its first entry is then reused for the remaining rows).
func ValidateEntryCounts(counts EntryCounts) *ValidationResult {
	result := NewResult()

	if counts.Descriptions == 0 {
		result.Add(&ValidationError{
			Severity: SeverityError,
			Field:    "description",
			Rule:     RuleEmptyTable,
			Message:  "table has no description entries",
		})
		return result
	}

	if counts.Lengths != counts.Descriptions || counts.Weights != counts.Descriptions {
		result.Add(&ValidationError{
			Severity: SeverityError,
			Rule:     RuleEntryCount,
			Message: fmt.Sprintf("column entry counts differ: %d descriptions, %d lengths, %d weights",
				counts.Descriptions, counts.Lengths, counts.Weights),
		})
	}

	switch {
	case counts.Grades == 0:
		result.Add(&ValidationError{
			Severity: SeverityWarning,
			Field:    "grade",
			Rule:     RuleGradeReuse,
			Message:  "grade column is empty; items are written without a grade",
		})
	case counts.Grades < counts.Descriptions:
		result.Add(&ValidationError{
			Severity: SeverityWarning,
			Field:    "grade",
			Rule:     RuleGradeReuse,
			Message: fmt.Sprintf("grade column has %d entries for %d descriptions; first grade reused for the rest",
				counts.Grades, counts.Descriptions),
		})
	}

	return result
}

// =============================================================================
// ROW-LEVEL VALIDATION
// =============================================================================

// RowDropped builds the warning recorded when an entry is dropped because one
// of its numeric fields could not be parsed.
func RowDropped(line int, field, value string, cause error) *ValidationError {
	message := "entry dropped: value is not numeric"
	if cause != nil {
		message = fmt.Sprintf("entry dropped: %v", cause)
	}
	return &ValidationError{
		Severity: SeverityWarning,
		Field:    field,
		Value:    value,
		Rule:     RuleNumeric,
		Message:  message,
		Line:     line,
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
