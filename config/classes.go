package config

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrConfig is the major config error classification.
	MjrConfig errors.Major
	// ClassConfigInvalidValue is the errors classification for invalid config values.
	ClassConfigInvalidValue errors.Class
	// ClassConfigRead is the errors classification for the config read failures.
	ClassConfigRead errors.Class
)

func init() {
	MjrConfig = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrConfig)
	ClassConfigInvalidValue = errors.MustNewClass(MjrConfig, mnr, errors.MustNewIndex(MjrConfig, mnr))
	ClassConfigRead = errors.MustNewClass(MjrConfig, mnr, errors.MustNewIndex(MjrConfig, mnr))
}
