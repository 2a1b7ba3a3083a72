package viewset

import (
	"context"
	"net/http"
	"path"
)

type lookupCtxKeyType struct{}

var lookupCtxKey = lookupCtxKeyType{}

// CtxWithLookup stores the model identifier from the request path in the context.
func CtxWithLookup(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, lookupCtxKey, id)
}

// CtxGetLookup gets the model identifier stored in the context.
func CtxGetLookup(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(lookupCtxKey).(string)
	return id, ok && id != ""
}

// lookupID gets the model identifier from the request context or the last path segment.
func lookupID(req *http.Request) (string, bool) {
	if id, ok := CtxGetLookup(req.Context()); ok {
		return id, true
	}
	id := path.Base(req.URL.Path)
	if id == "/" || id == "." {
		return "", false
	}
	return id, true
}
