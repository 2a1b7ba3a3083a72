package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/google/uuid"
)

// compile time check for DetailedError interfaces.
var _ ClassError = &DetailedError{}

// ClassError is the interface used for all errors
// that uses classification system.
type ClassError interface {
	error
	// Class gets current error classification.
	Class() Class
}

// DetailedError is the class based error definition.
// Each instance has it's own trackable ID. It's chainable.
// It contains also a Class variable that might be comparable in logic.
type DetailedError struct {
	// ID is a unique error instance identification number.
	ID uuid.UUID
	// Classification defines the error classification.
	Classification Class
	// Details contains the detailed information.
	Details string
	// Message is a message used as a string for the
	// golang error interface implementation.
	Message string
	// Operation is the operation name when the error occurred.
	Operation string
}

// New creates DetailedError with given 'class' and message 'message'.
func New(c Class, message string) *DetailedError {
	err := newDetailed(c)
	err.Message = message
	return err
}

// Newf creates DetailedError with given 'class' and formatted message.
func Newf(c Class, format string, args ...interface{}) *DetailedError {
	err := newDetailed(c)
	err.Message = fmt.Sprintf(format, args...)
	return err
}

// NewDet creates DetailedError with given 'class' and message 'message'.
func NewDet(c Class, message string) *DetailedError {
	err := newDetailed(c)
	err.Message = message
	return err
}

// NewDetf creates DetailedError instance with provided 'class' with formatted message.
func NewDetf(c Class, format string, args ...interface{}) *DetailedError {
	err := newDetailed(c)
	err.Message = fmt.Sprintf(format, args...)
	return err
}

// Class implements ClassError.
func (e *DetailedError) Class() Class {
	return e.Classification
}

// Error implements error interface.
func (e *DetailedError) Error() string {
	return e.Message
}

// SetDetails sets the error 'detail' and returns itself.
func (e *DetailedError) SetDetails(detail string) *DetailedError {
	e.Details = detail
	return e
}

// SetDetailsf sets the error's formatted detail with provided and returns itself.
func (e *DetailedError) SetDetailsf(format string, args ...interface{}) *DetailedError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// WrapDetails wraps the 'detail' for given error. Wrapping appends the new detail
// to the front of error detail message.
func (e *DetailedError) WrapDetails(detail string) *DetailedError {
	if e.Details == "" {
		e.Details = detail
	} else {
		e.Details = detail + " " + e.Details
	}
	return e
}

// WrapDetailsf wraps the detail with provided formatting for given error.
func (e *DetailedError) WrapDetailsf(format string, args ...interface{}) *DetailedError {
	return e.WrapDetails(fmt.Sprintf(format, args...))
}

// DetailsOrMessage returns the details if set, otherwise the message.
func (e *DetailedError) DetailsOrMessage() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Message
}

func newDetailed(c Class) *DetailedError {
	err := &DetailedError{
		ID:             uuid.New(),
		Classification: c,
	}
	pc, _, _, ok := runtime.Caller(2)
	details := runtime.FuncForPC(pc)
	if ok && details != nil {
		file, line := details.FileLine(pc)
		_, singleFile := filepath.Split(file)
		err.Operation = details.Name() + "#" + singleFile + ":" + strconv.Itoa(line)
	}
	return err
}
