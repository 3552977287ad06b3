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

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code, unwrapping as needed
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Predefined error codes
const (
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeInvalidSpecification = "INVALID_SPECIFICATION"
	CodeContractViolation    = "CONTRACT_VIOLATION"
	CodeUndefinedResult      = "UNDEFINED_RESULT"
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeDatasourceError      = "DATASOURCE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors

func InvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message)
}

func InvalidArgumentf(format string, args ...interface{}) *AppError {
	return New(CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func InvalidSpecification(message string) *AppError {
	return New(CodeInvalidSpecification, message)
}

func InvalidSpecificationf(format string, args ...interface{}) *AppError {
	return New(CodeInvalidSpecification, fmt.Sprintf(format, args...))
}

func ContractViolation(message string) *AppError {
	return New(CodeContractViolation, message)
}

func ContractViolationf(format string, args ...interface{}) *AppError {
	return New(CodeContractViolation, fmt.Sprintf(format, args...))
}

func UndefinedResult(message string) *AppError {
	return New(CodeUndefinedResult, message)
}

func UndefinedResultf(format string, args ...interface{}) *AppError {
	return New(CodeUndefinedResult, fmt.Sprintf(format, args...))
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatasourceError(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatasourceError,
		Message: fmt.Sprintf("%s datasource error", source),
		Cause:   cause,
	}
}
