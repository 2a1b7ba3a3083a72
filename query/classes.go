package query

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrQuery is the major error classification for the query package.
	MjrQuery errors.Major

	// MnrInput is the minor error classification related to the query input.
	MnrInput errors.Minor
	// ClassInvalidParameter is the error classification for the query parameters that couldn't be parsed.
	ClassInvalidParameter errors.Class
	// ClassInvalidField is the error classification for the filter fields not found in the model.
	ClassInvalidField errors.Class
	// ClassFieldValue is the error classification for the filter values not matching the field type.
	ClassFieldValue errors.Class
	// ClassInvalidOperator is the error classification for unknown or invalid filter operators.
	ClassInvalidOperator errors.Class

	// ClassInternal is the internal error classification.
	ClassInternal errors.Class
)

func init() {
	MjrQuery = errors.MustNewMajor()
	ClassInternal = errors.MustNewMajorClass(MjrQuery)

	MnrInput = errors.MustNewMinor(MjrQuery)
	ClassInvalidParameter = errors.MustNewClass(MjrQuery, MnrInput, errors.MustNewIndex(MjrQuery, MnrInput))
	ClassInvalidField = errors.MustNewClass(MjrQuery, MnrInput, errors.MustNewIndex(MjrQuery, MnrInput))
	ClassFieldValue = errors.MustNewClass(MjrQuery, MnrInput, errors.MustNewIndex(MjrQuery, MnrInput))
	ClassInvalidOperator = errors.MustNewClass(MjrQuery, MnrInput, errors.MustNewIndex(MjrQuery, MnrInput))
}
