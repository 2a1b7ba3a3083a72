// Package errors provides lightweight error handling and classification primitives.
//
// The package provides simple error handling interfaces and functions.
// It allows to create simple and detailed classified errors.
// Each package registers its own Major and derives the Class values
// used by the callers to decide on the error handling (i.e. the http status).
package errors
