package log

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrLogger is the major logger error classification.
	MjrLogger errors.Major
	// ClassUnknownLevel is the classification for the unknown logger level.
	ClassUnknownLevel errors.Class
	// ClassNotImplement is the classification for the loggers that doesn't implement required interface.
	ClassNotImplement errors.Class
)

func init() {
	MjrLogger = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrLogger)
	ClassUnknownLevel = errors.MustNewClass(MjrLogger, mnr, errors.MustNewIndex(MjrLogger, mnr))
	ClassNotImplement = errors.MustNewClass(MjrLogger, mnr, errors.MustNewIndex(MjrLogger, mnr))
}
