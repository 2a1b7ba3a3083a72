// Package auth contains the request credentials, the JWT verifier and signer and the http
// middlewares that attaches the credentials into the request context.
package auth
