package auth

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrAuth is the major error classification for the auth package.
	MjrAuth errors.Major

	// ClassToken is the error classification for the invalid tokens.
	ClassToken errors.Class
	// ClassTokenExpired is the error classification for the expired tokens.
	ClassTokenExpired errors.Class
	// ClassCredentialRequired is the error classification when no credential is found within the request.
	ClassCredentialRequired errors.Class
	// ClassInitialization is the error classification for the invalid verifier or signer options.
	ClassInitialization errors.Class
)

func init() {
	MjrAuth = errors.MustNewMajor()
	mnrToken := errors.MustNewMinor(MjrAuth)
	ClassToken = errors.MustNewClass(MjrAuth, mnrToken, errors.MustNewIndex(MjrAuth, mnrToken))
	ClassTokenExpired = errors.MustNewClass(MjrAuth, mnrToken, errors.MustNewIndex(MjrAuth, mnrToken))
	ClassCredentialRequired = errors.MustNewMinorClass(MjrAuth, errors.MustNewMinor(MjrAuth))
	ClassInitialization = errors.MustNewMinorClass(MjrAuth, errors.MustNewMinor(MjrAuth))
}
