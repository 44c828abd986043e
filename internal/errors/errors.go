package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeRetrieval           = "RETRIEVAL_ERROR"
	CodeSchema              = "SCHEMA_ERROR"
	CodeKeyMismatch         = "KEY_MISMATCH"
	CodeFormulaSubstitution = "FORMULA_SUBSTITUTION"
	CodeFitting             = "FITTING_ERROR"
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeDatabaseError       = "DATABASE_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Retrieval reports a failure fetching a cohort table from the external
// data service. Fatal, never retried at this layer.
func Retrieval(cohort, table string, cause error) *AppError {
	return &AppError{
		Code:    CodeRetrieval,
		Message: fmt.Sprintf("failed to retrieve %s table for cohort %q", table, cohort),
		Cause:   cause,
	}
}

// Schema reports a required column missing from an input table.
func Schema(table, column string) *AppError {
	return New(CodeSchema, fmt.Sprintf("column %q missing from %s table", column, table))
}

// KeyMismatch reports a join that produced zero overlapping rows.
func KeyMismatch(key string, leftRows, rightRows int) *AppError {
	return New(CodeKeyMismatch, fmt.Sprintf(
		"join on %q produced no rows (%d outcome rows, %d biomarker rows share no keys)",
		key, leftRows, rightRows))
}

// FormulaSubstitution reports a placeholder/formula mismatch.
func FormulaSubstitution(formula string) *AppError {
	return New(CodeFormulaSubstitution, fmt.Sprintf(
		"biomarker data supplied but formula %q has no biomarker placeholder", formula))
}

// Fitting wraps a failure from the delegate fitting backend. The original
// error is preserved as the cause and is never retried.
func Fitting(formula string, cause error) *AppError {
	return &AppError{
		Code:    CodeFitting,
		Message: fmt.Sprintf("fitting backend failed for formula %q", formula),
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
