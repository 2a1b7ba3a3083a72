package main

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
	"github.com/neuronlabs/fancy/gateway"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	c := config.ReadDefaultConfig()
	c.Gateway.Router.Prefix = "api"
	c.Auth = &config.Auth{Secret: "fancyd-secret", Header: "Authorization", IDClaim: "id"}
	return c
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg = testConfig()
	container := gateway.NewContainer()
	require.NoError(t, container.RegisterMiddleware(gateway.CredentialRequired, auth.Required))
	handler, d, err := newHandler(context.Background(), cfg, container)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return handler
}

func call(t *testing.T, h http.Handler, method, target, body, token string) (int, interface{}) {
	t.Helper()
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
	h.ServeHTTP(rw, req)
	var out interface{}
	if rw.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out), rw.Body.String())
	}
	return rw.Code, out
}

func TestBookshelf(t *testing.T) {
	h := newTestHandler(t)
	token, err := issueToken("3", []string{"name=john"}, time.Minute)
	require.NoError(t, err)

	t.Run("NestedBook", func(t *testing.T) {
		status, body := call(t, h, http.MethodPost, "/api/books", `{
			"title": "The Go Programming Language",
			"pages": 380,
			"published_at": "2015-10-26T00:00:00Z",
			"author": {"name": "Alan"},
			"tags": [{"name": "lang"}, {"name": "classic"}]
		}`, "")
		require.Equal(t, http.StatusCreated, status, body)
		book := body.(map[string]interface{})
		assert.Equal(t, float64(1), book["id"])
		author := book["author"].(map[string]interface{})
		assert.Equal(t, "Alan", author["name"])
		assert.Equal(t, []interface{}{float64(1)}, author["books"])
		assert.Len(t, book["tags"], 2)
		assert.NotContains(t, book, "tags_ids")
	})

	t.Run("BookWithTagIDs", func(t *testing.T) {
		status, body := call(t, h, http.MethodPost, "/api/books", `{"title": "Gopher", "pages": 90, "tags_ids": [2]}`, "")
		require.Equal(t, http.StatusCreated, status, body)
		assert.Nil(t, body.(map[string]interface{})["author"])
	})

	t.Run("Filters", func(t *testing.T) {
		for target, expected := range map[string]int{
			"/api/books?author__name=Alan":           1,
			"/api/books?tags__name__in=('classic',)": 2,
			"/api/books?pages__lt=100":               1,
			"/api/books?published_at=null":           1,
			"/api/books?search=gopher":               1,
			"/api/books?tags__id=2&ordering=-pages":  2,
		} {
			status, body := call(t, h, http.MethodGet, target, "", "")
			require.Equal(t, http.StatusOK, status, target)
			assert.Len(t, body, expected, target)
		}
	})

	t.Run("Shelves", func(t *testing.T) {
		status, _ := call(t, h, http.MethodPost, "/api/shelves", `{"name": "favourites"}`, "")
		assert.Equal(t, http.StatusUnauthorized, status)

		status, body := call(t, h, http.MethodPost, "/api/shelves", `{"name": "favourites", "owner": 10, "books_ids": [1, 2]}`, token)
		require.Equal(t, http.StatusCreated, status, body)
		shelf := body.(map[string]interface{})
		assert.Equal(t, float64(3), shelf["owner"])
		assert.Equal(t, []interface{}{float64(1), float64(2)}, shelf["books"])

		status, body = call(t, h, http.MethodGet, "/api/shelves", "", "")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body)

		status, body = call(t, h, http.MethodGet, "/api/shelves?books__title__icontains=gopher", "", token)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body, 1)

		status, body = call(t, h, http.MethodPatch, "/api/shelves/1", `{"books_ids": [2]}`, token)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, []interface{}{float64(2)}, body.(map[string]interface{})["books"])
	})

	t.Run("Clubs", func(t *testing.T) {
		status, _ := call(t, h, http.MethodGet, "/api/clubs", "", "")
		assert.Equal(t, http.StatusUnauthorized, status)

		status, body := call(t, h, http.MethodPost, "/api/clubs", `{"name": "readers"}`, token)
		require.Equal(t, http.StatusCreated, status, body)

		status, body = call(t, h, http.MethodGet, "/api/clubs", "", token)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body, 1)
		assert.Equal(t, []interface{}{float64(3)}, body.([]interface{})[0].(map[string]interface{})["members"])
	})
}

func TestReadConfig(t *testing.T) {
	c, err := readConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Repository.Driver)

	_, err = readConfig("missing.yml")
	assert.Error(t, err)
}

func TestRegisterCredential(t *testing.T) {
	c := config.ReadDefaultConfig()
	assert.Equal(t, []string{gateway.Credential}, c.Gateway.Router.DefaultMiddlewares)

	container := gateway.NewContainer()
	require.NoError(t, registerCredential(&config.Auth{}, container))
	_, err := container.Get(gateway.Credential)
	assert.NoError(t, err)

	container = gateway.NewContainer()
	require.NoError(t, registerCredential(&config.Auth{Secret: "secret", IDClaim: "id"}, container))
	_, err = container.Get(gateway.Credential)
	assert.NoError(t, err)
}

func TestCredentialID(t *testing.T) {
	assert.Equal(t, int64(12), credentialID("12"))
	assert.Equal(t, "user-1", credentialID("user-1"))
}
