package auth

import (
	"context"
	"math"
)

type credentialCtxKeyType struct{}

var credentialCtxKey = credentialCtxKeyType{}

// Credential is the authenticated requester identity.
type Credential struct {
	// ID is the credential identifier. The whole number identifiers are stored as int64.
	ID interface{}
	// Claims are all the token claims.
	Claims map[string]interface{}
}

// NewCredential creates the credential with the normalized 'id' value.
func NewCredential(id interface{}, claims map[string]interface{}) *Credential {
	return &Credential{ID: normalizeID(id), Claims: claims}
}

// CtxWithCredential stores the 'credential' in the context.
func CtxWithCredential(ctx context.Context, credential *Credential) context.Context {
	return context.WithValue(ctx, credentialCtxKey, credential)
}

// CtxGetCredential gets the credential from the context. Returns nil if not found.
func CtxGetCredential(ctx context.Context) *Credential {
	credential, _ := ctx.Value(credentialCtxKey).(*Credential)
	return credential
}

// normalizeID converts the JSON decoded whole numbers into int64.
func normalizeID(id interface{}) interface{} {
	switch v := id.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
			return int64(v)
		}
	case int:
		return int64(v)
	case int32:
		return int64(v)
	}
	return id
}
