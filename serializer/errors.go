package serializer

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrSerializer is the major error classification for the serializer package.
	MjrSerializer errors.Major

	// ClassInvalidField is the error classification for the invalid serializer field definitions.
	ClassInvalidField errors.Class
	// ClassNestedWritesUnsupported is the error classification when the relationship fields are saved
	// by the serializer without the nested write mixins.
	ClassNestedWritesUnsupported errors.Class
	// ClassInvalidRelation is the error classification for the nested writes on unknown relations.
	ClassInvalidRelation errors.Class
)

func init() {
	MjrSerializer = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrSerializer)
	ClassInvalidField = errors.MustNewClass(MjrSerializer, mnr, errors.MustNewIndex(MjrSerializer, mnr))
	ClassNestedWritesUnsupported = errors.MustNewClass(MjrSerializer, mnr, errors.MustNewIndex(MjrSerializer, mnr))
	ClassInvalidRelation = errors.MustNewClass(MjrSerializer, mnr, errors.MustNewIndex(MjrSerializer, mnr))
}
