package gateway

import (
	"github.com/neuronlabs/fancy/errors"
)

var (
	// MjrGateway is the major error classification for the gateway.
	MjrGateway errors.Major

	// ClassMiddlewareRegistered is the error classification when the middleware name is already taken.
	ClassMiddlewareRegistered errors.Class
	// ClassMiddlewareNotRegistered is the error classification when the middleware is not found.
	ClassMiddlewareNotRegistered errors.Class
	// ClassRouting is the error classification for the invalid routes.
	ClassRouting errors.Class
	// ClassServer is the error classification for the server failures.
	ClassServer errors.Class
)

func init() {
	MjrGateway = errors.MustNewMajor()
	mnr := errors.MustNewMinor(MjrGateway)
	ClassMiddlewareRegistered = errors.MustNewClass(MjrGateway, mnr, errors.MustNewIndex(MjrGateway, mnr))
	ClassMiddlewareNotRegistered = errors.MustNewClass(MjrGateway, mnr, errors.MustNewIndex(MjrGateway, mnr))
	ClassRouting = errors.MustNewClass(MjrGateway, mnr, errors.MustNewIndex(MjrGateway, mnr))
	ClassServer = errors.MustNewMinorClass(MjrGateway, errors.MustNewMinor(MjrGateway))
}
