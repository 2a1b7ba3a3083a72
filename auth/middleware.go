package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
)

var logger = log.NewModuleLogger("auth")

// DefaultHeader is the default header that contains the bearer token.
const DefaultHeader = "Authorization"

// Messages of the unauthorized responses.
const (
	MsgNotAuthenticated = "Authentication credentials were not provided."
	MsgInvalidToken     = "Invalid token."
	MsgTokenExpired     = "Token has expired."
)

// Middleware creates the http middleware that verifies the bearer token from the 'header' and
// stores the credential in the request context. The requests without the token passes unchanged.
// The invalid tokens results in the 401 response.
func Middleware(verifier Verifier, header string) func(next http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			token := bearerToken(req.Header.Get(header))
			if token == "" {
				next.ServeHTTP(rw, req)
				return
			}
			credential, err := verifier.Verify(req.Context(), token)
			if err != nil {
				logger.Debugf("Token verification failed: %v", err)
				message := MsgInvalidToken
				if errors.IsClass(err, ClassTokenExpired) {
					message = MsgTokenExpired
				}
				Unauthorized(rw, message)
				return
			}
			logger.Debug3f("Request credential: '%v'", credential.ID)
			next.ServeHTTP(rw, req.WithContext(CtxWithCredential(req.Context(), credential)))
		})
	}
}

// Required is the http middleware that responds with 401 status if the request has no credential.
func Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if CtxGetCredential(req.Context()) == nil {
			Unauthorized(rw, MsgNotAuthenticated)
			return
		}
		next.ServeHTTP(rw, req)
	})
}

// Unauthorized writes the 401 response with the 'detail' message.
func Unauthorized(rw http.ResponseWriter, detail string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("WWW-Authenticate", "Bearer")
	rw.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(rw).Encode(map[string]string{"detail": detail}); err != nil {
		logger.Errorf("Writing unauthorized response failed: %v", err)
	}
}

func bearerToken(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return ""
}
