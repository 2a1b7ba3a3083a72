package repository

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrRepository is the major error repository classification.
	MjrRepository errors.Major

	// ClassNotFound is the error classification when the model is not found in the repository.
	ClassNotFound errors.Class
	// ClassFilter is the error classification for the unsupported scope filters.
	ClassFilter errors.Class
	// ClassTx is the error classification for the transaction failures.
	ClassTx errors.Class
	// ClassInternal is the error classification for the internal repository errors.
	ClassInternal errors.Class
	// ClassModel is the error classification for the models not supported by the repository.
	ClassModel errors.Class
	// ClassConflict is the error classification when the model with given primary key already exists.
	ClassConflict errors.Class
)

func init() {
	MjrRepository = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrRepository)
	ClassNotFound = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
	ClassFilter = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
	ClassTx = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
	ClassInternal = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
	ClassModel = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
	ClassConflict = errors.MustNewClass(MjrRepository, mnr, errors.MustNewIndex(MjrRepository, mnr))
}
