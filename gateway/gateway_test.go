package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository/memory"
	"github.com/neuronlabs/fancy/serializer"
	"github.com/neuronlabs/fancy/viewset"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type Note struct {
	ID    int
	Title string
	Owner int
}

var secret = []byte("gateway-secret")

func newRouter(t *testing.T, middlewares ...string) (*Router, *auth.Signer) {
	t.Helper()
	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&Note{}))
	d := db.New(m, memory.New())

	s, err := serializer.New(m, &Note{}, serializer.Meta{Fields: []string{"id", "title", "owner"}},
		&serializer.Field{Name: "title", Kind: serializer.KindChar, Required: true},
		&serializer.Field{Name: "owner", Kind: serializer.KindInteger},
	)
	require.NoError(t, err)

	verifier, err := auth.NewJWTVerifier(auth.WithSecret(secret))
	require.NoError(t, err)
	signer, err := auth.NewSigner(auth.WithSecret(secret))
	require.NoError(t, err)

	c := NewContainer()
	require.NoError(t, c.RegisterMiddleware(Credential, auth.Middleware(verifier, "")))
	require.NoError(t, c.RegisterMiddleware(CredentialRequired, auth.Required))

	r := NewRouter(&config.Router{Prefix: "api", DefaultMiddlewares: []string{Credential}}, WithContainer(c))
	require.NoError(t, r.Register("notes", viewset.MustNew(s, d)))
	require.NoError(t, r.Register("my-notes", viewset.MustNewSelf(s, d, "owner"), middlewares...))
	return r, signer
}

func request(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	return rw
}

func TestContainer(t *testing.T) {
	c := NewContainer()
	mid := MiddlewareFunc(func(next http.Handler) http.Handler { return next })
	require.NoError(t, c.RegisterMiddleware("noop", mid))

	err := c.RegisterMiddleware("noop", mid)
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, ClassMiddlewareRegistered))

	_, err = c.Get("noop")
	assert.NoError(t, err)

	_, err = c.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, ClassMiddlewareNotRegistered))

	_, err = Get(CredentialRequired)
	assert.NoError(t, err)
}

func TestRouter(t *testing.T) {
	r, signer := newRouter(t)

	t.Run("Health", func(t *testing.T) {
		rw := request(r, http.MethodGet, "/api/health", "", "")
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Contains(t, rw.Body.String(), `"status":"ok"`)
		assert.Equal(t, []string{"notes", "my-notes"}, r.Collections())
	})

	t.Run("CRUD", func(t *testing.T) {
		rw := request(r, http.MethodPost, "/api/notes", `{"title": "first"}`, "")
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())

		rw = request(r, http.MethodGet, "/api/notes/1", "", "")
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Contains(t, rw.Body.String(), `"title":"first"`)

		rw = request(r, http.MethodPatch, "/api/notes/1", `{"title": "changed"}`, "")
		require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

		rw = request(r, http.MethodPut, "/api/notes/1", `{"title": "replaced", "owner": 3}`, "")
		require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

		rw = request(r, http.MethodGet, "/api/notes?title__startswith=rep", "", "")
		require.Equal(t, http.StatusOK, rw.Code)
		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, float64(3), list[0]["owner"])

		rw = request(r, http.MethodDelete, "/api/notes/1", "", "")
		assert.Equal(t, http.StatusNoContent, rw.Code)

		rw = request(r, http.MethodGet, "/api/notes/1", "", "")
		assert.Equal(t, http.StatusNotFound, rw.Code)
	})

	t.Run("Credential", func(t *testing.T) {
		token, err := signer.Sign(11, nil)
		require.NoError(t, err)

		rw := request(r, http.MethodPost, "/api/my-notes", `{"title": "mine"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rw.Code)

		rw = request(r, http.MethodPost, "/api/my-notes", `{"title": "mine"}`, token)
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
		assert.Contains(t, rw.Body.String(), `"owner":11`)

		rw = request(r, http.MethodGet, "/api/my-notes", "", token)
		require.Equal(t, http.StatusOK, rw.Code)
		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		rw = request(r, http.MethodGet, "/api/my-notes", "", "")
		assert.Equal(t, "[]\n", rw.Body.String())

		rw = request(r, http.MethodGet, "/api/my-notes", "", "invalid")
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
	})
}

func TestRouterRequiredCredential(t *testing.T) {
	r, _ := newRouter(t, CredentialRequired)

	rw := request(r, http.MethodGet, "/api/my-notes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = request(r, http.MethodGet, "/api/notes", "", "")
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestRouterUnknownMiddleware(t *testing.T) {
	r := NewRouter(&config.Router{DefaultMiddlewares: []string{"missing"}}, WithContainer(NewContainer()))
	err := r.Register("notes", &viewset.ViewSet{})
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, ClassMiddlewareNotRegistered))
}

func TestServer(t *testing.T) {
	cfg := config.DefaultGateway()
	cfg.Hostname = "127.0.0.1"
	cfg.Port = 0
	s := NewServer(cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", s.Server.Addr)
	assert.Equal(t, cfg.ReadTimeout, s.Server.ReadTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*200)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
}
