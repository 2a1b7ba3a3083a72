package errors

import (
	"strings"
)

// MultiError is the slice of errors parsable into a single error.
type MultiError []error

// Error implements error interface.
func (m MultiError) Error() string {
	sb := &strings.Builder{}

	for i, e := range m {
		sb.WriteString(e.Error())
		if i != len(m)-1 {
			sb.WriteString(",")
		}
	}
	return sb.String()
}

// IsClass checks if given error is of given 'class'.
func IsClass(err error, class Class) bool {
	classError, ok := err.(ClassError)
	if !ok {
		return false
	}
	return classError.Class() == class
}

// IsMajor checks if given error is classified with the 'major'.
func IsMajor(err error, major Major) bool {
	classError, ok := err.(ClassError)
	if !ok {
		return false
	}
	return classError.Class().IsMajor(major)
}
