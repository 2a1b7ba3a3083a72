package viewset

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrViewSet is the major error classification for the view sets.
	MjrViewSet errors.Major

	// ClassInvalidPayload is the error classification for the request bodies that couldn't be decoded.
	ClassInvalidPayload errors.Class
	// ClassNoLookup is the error classification when the request has no model identifier.
	ClassNoLookup errors.Class
	// ClassInitialization is the error classification for the invalid view set definitions.
	ClassInitialization errors.Class
)

func init() {
	MjrViewSet = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrViewSet)
	ClassInvalidPayload = errors.MustNewClass(MjrViewSet, mnr, errors.MustNewIndex(MjrViewSet, mnr))
	ClassNoLookup = errors.MustNewClass(MjrViewSet, mnr, errors.MustNewIndex(MjrViewSet, mnr))
	ClassInitialization = errors.MustNewMinorClass(MjrViewSet, errors.MustNewMinor(MjrViewSet))
}
