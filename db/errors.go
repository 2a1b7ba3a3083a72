package db

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrDB is the major error classification for the db package.
	MjrDB errors.Major

	// ClassInvalidRelation is the error classification for the invalid relationship fields.
	ClassInvalidRelation errors.Class
	// ClassRelatedNotFound is the error classification when the related models are not found.
	ClassRelatedNotFound errors.Class
	// ClassInvalidModel is the error classification for invalid model values i.e. zero primary keys.
	ClassInvalidModel errors.Class
	// ClassNoRepository is the error classification when no repository is found for the model.
	ClassNoRepository errors.Class
)

func init() {
	MjrDB = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrDB)
	ClassInvalidRelation = errors.MustNewClass(MjrDB, mnr, errors.MustNewIndex(MjrDB, mnr))
	ClassRelatedNotFound = errors.MustNewClass(MjrDB, mnr, errors.MustNewIndex(MjrDB, mnr))
	ClassInvalidModel = errors.MustNewClass(MjrDB, mnr, errors.MustNewIndex(MjrDB, mnr))
	ClassNoRepository = errors.MustNewClass(MjrDB, mnr, errors.MustNewIndex(MjrDB, mnr))
}
