package mapping

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrModel is the major error classification for the model mapping.
	MjrModel errors.Major

	// MnrModelMapping is the minor classification for the model mapping issues.
	MnrModelMapping errors.Minor
	// ClassModelMapping is the classification for the invalid model definitions.
	ClassModelMapping errors.Class
	// ClassModelNotMapped is the classification for the models not registered within the model map.
	ClassModelNotMapped errors.Class
	// ClassModelAlreadyRegistered is the classification for the models registered twice.
	ClassModelAlreadyRegistered errors.Class
	// ClassNamingConvention is the classification for unknown naming conventions.
	ClassNamingConvention errors.Class

	// MnrModelValue is the minor classification for the model values issues.
	MnrModelValue errors.Minor
	// ClassFieldNotFound is the classification for the fields not found in the model.
	ClassFieldNotFound errors.Class
	// ClassFieldValue is the classification for values that couldn't be assigned to the field.
	ClassFieldValue errors.Class
	// ClassModelType is the classification for the model instances of invalid type.
	ClassModelType errors.Class
)

func init() {
	MjrModel = errors.MustNewMajor()

	MnrModelMapping = errors.MustNewMinor(MjrModel)
	ClassModelMapping = errors.MustNewClass(MjrModel, MnrModelMapping, errors.MustNewIndex(MjrModel, MnrModelMapping))
	ClassModelNotMapped = errors.MustNewClass(MjrModel, MnrModelMapping, errors.MustNewIndex(MjrModel, MnrModelMapping))
	ClassModelAlreadyRegistered = errors.MustNewClass(MjrModel, MnrModelMapping, errors.MustNewIndex(MjrModel, MnrModelMapping))
	ClassNamingConvention = errors.MustNewClass(MjrModel, MnrModelMapping, errors.MustNewIndex(MjrModel, MnrModelMapping))

	MnrModelValue = errors.MustNewMinor(MjrModel)
	ClassFieldNotFound = errors.MustNewClass(MjrModel, MnrModelValue, errors.MustNewIndex(MjrModel, MnrModelValue))
	ClassFieldValue = errors.MustNewClass(MjrModel, MnrModelValue, errors.MustNewIndex(MjrModel, MnrModelValue))
	ClassModelType = errors.MustNewClass(MjrModel, MnrModelValue, errors.MustNewIndex(MjrModel, MnrModelValue))
}
