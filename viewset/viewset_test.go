package viewset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository/memory"
	"github.com/neuronlabs/fancy/serializer"
)

type Author struct {
	ID    int
	Name  string
	Books []*Book `neuron:"foreign=AuthorID"`
}

type Book struct {
	ID        int
	Title     string
	Pages     int
	Rating    float64
	Available bool
	Note      *string
	AuthorID  *int
	Author    *Author
}

type Shelf struct {
	ID    int
	Name  string
	Owner int
}

type User struct {
	ID   int
	Name string
}

type Team struct {
	ID      int
	Name    string
	Members []*User `neuron:"many2many=TeamMember"`
}

type TeamMember struct {
	ID     int
	TeamID int
	UserID int
}

type fixture struct {
	models  *mapping.ModelMap
	db      *db.DB
	books   *serializer.ModelSerializer
	shelves *serializer.ModelSerializer
	teams   *serializer.ModelSerializer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&Author{}, &Book{}, &Shelf{}, &User{}, &Team{}, &TeamMember{}))
	f := &fixture{models: m, db: db.New(m, memory.New())}

	var err error
	f.books, err = serializer.New(m, &Book{}, serializer.Meta{Fields: []string{"id", "title", "pages", "rating", "available", "note", "author"}},
		&serializer.Field{Name: "title", Kind: serializer.KindChar, Required: true},
		&serializer.Field{Name: "pages", Kind: serializer.KindInteger},
		&serializer.Field{Name: "rating", Kind: serializer.KindFloat},
	)
	require.NoError(t, err)
	f.shelves, err = serializer.New(m, &Shelf{}, serializer.Meta{Fields: []string{"id", "name", "owner"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true},
		&serializer.Field{Name: "owner", Kind: serializer.KindInteger, Required: true},
	)
	require.NoError(t, err)
	f.teams, err = serializer.New(m, &Team{}, serializer.Meta{Fields: []string{"id", "name"}},
		&serializer.Field{Name: "name", Kind: serializer.KindChar, Required: true},
	)
	require.NoError(t, err)
	return f
}

// settle creates the authors: 1 'John', 2 'Adam' and the books:
// 1 'Go' (300 pages, 4.5, available, John), 2 'Rust' (500 pages, 4.0, noted, Adam), 3 'Gopher' (100 pages, 3.0, available).
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.db.Create(ctx, &Author{Name: "John"}))
	require.NoError(t, f.db.Create(ctx, &Author{Name: "Adam"}))

	john, adam, note := 1, 2, "translated"
	require.NoError(t, f.db.Create(ctx, &Book{Title: "Go", Pages: 300, Rating: 4.5, Available: true, AuthorID: &john}))
	require.NoError(t, f.db.Create(ctx, &Book{Title: "Rust", Pages: 500, Rating: 4.0, Note: &note, AuthorID: &adam}))
	require.NoError(t, f.db.Create(ctx, &Book{Title: "Gopher", Pages: 100, Rating: 3.0, Available: true}))
}

func serve(handler http.HandlerFunc, method, target, body string, credential *auth.Credential) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if credential != nil {
		req = req.WithContext(auth.CtxWithCredential(req.Context(), credential))
	}
	rw := httptest.NewRecorder()
	handler(rw, req)
	return rw
}

func decodeList(t *testing.T, rw *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out), rw.Body.String())
	return out
}

func decodeObject(t *testing.T, rw *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out), rw.Body.String())
	return out
}

func ids(results []map[string]interface{}) []int {
	out := []int{}
	for _, result := range results {
		out = append(out, int(result["id"].(float64)))
	}
	return out
}

func TestNew(t *testing.T) {
	f := newFixture(t)

	names := func(fields []*mapping.StructField) []string {
		out := []string{}
		for _, field := range fields {
			out = append(out, field.NeuronName())
		}
		return out
	}

	t.Run("Derived", func(t *testing.T) {
		v, err := New(f.books, f.db)
		require.NoError(t, err)
		// the float 'rating' field is neither searched nor ordered.
		assert.Equal(t, []string{"title", "pages"}, names(v.SearchFields()))
		assert.Equal(t, []string{"title", "pages"}, names(v.OrderingFields()))
	})

	t.Run("NoMetaFields", func(t *testing.T) {
		s, err := serializer.New(f.models, &Book{}, serializer.Meta{},
			&serializer.Field{Name: "title", Kind: serializer.KindChar},
		)
		require.NoError(t, err)
		v, err := New(s, f.db)
		require.NoError(t, err)
		assert.Empty(t, v.SearchFields())
		assert.Empty(t, v.OrderingFields())
	})

	t.Run("Options", func(t *testing.T) {
		v, err := New(f.books, f.db, WithSearchFields("title"), WithOrderingFields("rating", "Pages"))
		require.NoError(t, err)
		assert.Equal(t, []string{"title"}, names(v.SearchFields()))
		assert.Equal(t, []string{"rating", "pages"}, names(v.OrderingFields()))
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := New(f.books, f.db, WithSearchFields("unknown"))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassInitialization))
	})
}

func TestQueryset(t *testing.T) {
	f := newFixture(t)
	v := MustNew(f.books, f.db)

	req := httptest.NewRequest(http.MethodGet, "/books?pages__gte=100&author__in=(1,2)&note=null&search=go&limit=1", nil)
	s, err := v.Queryset(req)
	require.NoError(t, err)
	assert.True(t, s.Distinct)
	// reserved parameters are not the filters.
	require.Len(t, s.Filters, 3)
	assert.Equal(t, "author", s.Filters[0].StructField.NeuronName())
	assert.Equal(t, []interface{}{1, 2}, s.Filters[0].Nested.Values)
	assert.Equal(t, query.OpIsNull, s.Filters[1].Operator)
	assert.Equal(t, query.OpGreaterEqual, s.Filters[2].Operator)
	assert.Equal(t, []interface{}{100}, s.Filters[2].Values)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	testCases := map[string]struct {
		query    string
		expected []int
	}{
		"All":            {"", []int{1, 2, 3}},
		"Exact":          {"title=Go", []int{1}},
		"Integer":        {"pages=300", []int{1}},
		"Float":          {"rating=4.5", []int{1}},
		"Boolean":        {"available=false", []int{2}},
		"Null":           {"note=null", []int{1, 3}},
		"Gte":            {"pages__gte=300", []int{1, 2}},
		"In":             {"pages__in=(100,500)", []int{2, 3}},
		"InScalar":       {"pages__in=100", []int{3}},
		"InList":         {"title__in=['Go','Rust']", []int{1, 2}},
		"RelationIn":     {"author__in=(1,2)", []int{1, 2}},
		"RelationField":  {"author__name__icontains=joh", []int{1}},
		"NumericString":  {"title__contains=1", []int{}},
		"Reserved":       {"format=json&page=2", []int{1, 2, 3}},
		"Search":         {"search=go", []int{1, 3}},
		"SearchTerms":    {"search=go,pher", []int{3}},
		"Ordering":       {"ordering=-pages", []int{2, 1, 3}},
		"OrderingNotSet": {"ordering=rating", []int{1, 2, 3}},
		"FilterOrdering": {"available=true&ordering=-title", []int{3, 1}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rw := serve(v.List, http.MethodGet, "/books?"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
			assert.Equal(t, tc.expected, ids(decodeList(t, rw)))
		})
	}

	t.Run("Representation", func(t *testing.T) {
		rw := serve(v.List, http.MethodGet, "/books?title=Go", "", nil)
		require.Equal(t, http.StatusOK, rw.Code)
		results := decodeList(t, rw)
		require.Len(t, results, 1)
		assert.Equal(t, "Go", results[0]["title"])
		assert.Equal(t, float64(1), results[0]["author"])
		assert.Nil(t, results[0]["note"])
	})

	t.Run("Errors", func(t *testing.T) {
		for name, q := range map[string]string{
			"UnknownField":   "unknown=1",
			"InvalidLiteral": "pages__in=(1,",
			"InvalidValue":   "pages=abc",
		} {
			t.Run(name, func(t *testing.T) {
				rw := serve(v.List, http.MethodGet, "/books?"+q, "", nil)
				assert.Equal(t, http.StatusBadRequest, rw.Code)
				assert.NotEmpty(t, decodeObject(t, rw)["detail"])
			})
		}
	})
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	rw := serve(v.List, http.MethodGet, "/books?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rw.Code)
	page := Page{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "offset=2")
	assert.Nil(t, page.Previous)

	rw = serve(v.List, http.MethodGet, "/books?limit=2&offset=2", "", nil)
	require.Equal(t, http.StatusOK, rw.Code)
	page = Page{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &page))
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.NotContains(t, *page.Previous, "offset")

	rw = serve(v.List, http.MethodGet, "/books?limit=2&available=true", "", nil)
	page = Page{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	assert.Nil(t, page.Next)
}

func TestRetrieve(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/2", nil)
		rw := httptest.NewRecorder()
		v.Retrieve(rw, req)
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Equal(t, "Rust", decodeObject(t, rw)["title"])
	})

	t.Run("ContextLookup", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/item", nil)
		req = req.WithContext(CtxWithLookup(req.Context(), "1"))
		rw := httptest.NewRecorder()
		v.Retrieve(rw, req)
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Equal(t, "Go", decodeObject(t, rw)["title"])
	})

	for name, target := range map[string]string{
		"NotFound":    "/books/10",
		"InvalidID":   "/books/abc",
		"FilteredOut": "/books/1?title=Rust",
	} {
		t.Run(name, func(t *testing.T) {
			rw := serve(v.Retrieve, http.MethodGet, target, "", nil)
			assert.Equal(t, http.StatusNotFound, rw.Code)
			assert.Equal(t, MsgNotFound, decodeObject(t, rw)["detail"])
		})
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	t.Run("Valid", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/books", `{"title": "Zig", "pages": 120, "author": 2, "id": 100}`, nil)
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
		created := decodeObject(t, rw)
		assert.Equal(t, float64(4), created["id"])
		assert.Equal(t, "Zig", created["title"])
		assert.Equal(t, float64(2), created["author"])
	})

	t.Run("Required", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/books", `{"pages": 120}`, nil)
		require.Equal(t, http.StatusBadRequest, rw.Code)
		assert.Equal(t, []interface{}{serializer.MsgRequired}, decodeObject(t, rw)["title"])
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/books", `{"title": `, nil)
		require.Equal(t, http.StatusBadRequest, rw.Code)
		assert.Contains(t, decodeObject(t, rw)["detail"], "JSON parse error")
	})

	t.Run("NotObject", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/books", `[1, 2]`, nil)
		require.Equal(t, http.StatusBadRequest, rw.Code)
		assert.Contains(t, decodeObject(t, rw), "non_field_errors")
	})

	t.Run("RelatedNotFound", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/books", `{"title": "Zig", "author": 10}`, nil)
		require.Equal(t, http.StatusBadRequest, rw.Code)
		assert.Equal(t, `Invalid pk "10" - object does not exist.`, decodeObject(t, rw)["detail"])
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	t.Run("Full", func(t *testing.T) {
		rw := serve(v.Update, http.MethodPut, "/books/1", `{"title": "Go 2", "pages": 320}`, nil)
		require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
		updated := decodeObject(t, rw)
		assert.Equal(t, "Go 2", updated["title"])
		assert.Equal(t, float64(320), updated["pages"])
	})

	t.Run("FullRequired", func(t *testing.T) {
		rw := serve(v.Update, http.MethodPut, "/books/1", `{"pages": 320}`, nil)
		require.Equal(t, http.StatusBadRequest, rw.Code)
		assert.Contains(t, decodeObject(t, rw), "title")
	})

	t.Run("Partial", func(t *testing.T) {
		rw := serve(v.PartialUpdate, http.MethodPatch, "/books/2", `{"pages": 510}`, nil)
		require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
		updated := decodeObject(t, rw)
		assert.Equal(t, "Rust", updated["title"])
		assert.Equal(t, float64(510), updated["pages"])

		rw = serve(v.List, http.MethodGet, "/books?pages=510", "", nil)
		assert.Equal(t, []int{2}, ids(decodeList(t, rw)))
	})

	t.Run("NotFound", func(t *testing.T) {
		rw := serve(v.PartialUpdate, http.MethodPatch, "/books/10", `{"pages": 510}`, nil)
		assert.Equal(t, http.StatusNotFound, rw.Code)
	})
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	v := MustNew(f.books, f.db)

	rw := serve(v.Destroy, http.MethodDelete, "/books/3", "", nil)
	require.Equal(t, http.StatusNoContent, rw.Code)

	rw = serve(v.Retrieve, http.MethodGet, "/books/3", "", nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = serve(v.Destroy, http.MethodDelete, "/books/3", "", nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestSelfViewSet(t *testing.T) {
	f := newFixture(t)
	v := MustNewSelf(f.shelves, f.db, "owner")
	owner, other := auth.NewCredential(float64(5), nil), auth.NewCredential(float64(6), nil)

	t.Run("CreateNoCredential", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/shelves", `{"name": "mine", "owner": 5}`, nil)
		require.Equal(t, http.StatusUnauthorized, rw.Code)
		assert.Equal(t, auth.MsgNotAuthenticated, decodeObject(t, rw)["detail"])
	})

	t.Run("CreateForcedOwner", func(t *testing.T) {
		rw := serve(v.Create, http.MethodPost, "/shelves", `{"name": "mine", "owner": 9}`, owner)
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
		assert.Equal(t, float64(5), decodeObject(t, rw)["owner"])

		rw = serve(v.Create, http.MethodPost, "/shelves", `{"name": "theirs"}`, other)
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	})

	t.Run("ListNoCredential", func(t *testing.T) {
		rw := serve(v.List, http.MethodGet, "/shelves", "", nil)
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Empty(t, decodeList(t, rw))
	})

	t.Run("ListOwned", func(t *testing.T) {
		rw := serve(v.List, http.MethodGet, "/shelves", "", owner)
		require.Equal(t, http.StatusOK, rw.Code)
		assert.Equal(t, []int{1}, ids(decodeList(t, rw)))

		rw = serve(v.List, http.MethodGet, "/shelves?name=mine", "", other)
		assert.Empty(t, decodeList(t, rw))
	})

	t.Run("RetrieveOther", func(t *testing.T) {
		rw := serve(v.Retrieve, http.MethodGet, "/shelves/2", "", owner)
		assert.Equal(t, http.StatusNotFound, rw.Code)

		rw = serve(v.Retrieve, http.MethodGet, "/shelves/2", "", other)
		assert.Equal(t, http.StatusOK, rw.Code)
	})

	t.Run("DestroyOther", func(t *testing.T) {
		rw := serve(v.Destroy, http.MethodDelete, "/shelves/1", "", other)
		assert.Equal(t, http.StatusNotFound, rw.Code)
	})
}

func TestSelfModel(t *testing.T) {
	f := newFixture(t)
	v := MustNewSelf(f.teams, f.db, "members__id")
	require.NoError(t, v.SetSelfModel(f.models, &TeamMember{}, "team_id", "user_id"))
	member, stranger := auth.NewCredential(float64(7), nil), auth.NewCredential(float64(8), nil)

	rw := serve(v.Create, http.MethodPost, "/teams", `{"name": "core"}`, member)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	assert.Equal(t, "core", decodeObject(t, rw)["name"])

	teamMembers, err := f.models.GetModelStruct(&TeamMember{})
	require.NoError(t, err)
	joins, err := f.db.Find(context.Background(), query.NewScope(teamMembers))
	require.NoError(t, err)
	require.Len(t, joins, 1)
	assert.Equal(t, 1, joins[0].(*TeamMember).TeamID)
	assert.Equal(t, 7, joins[0].(*TeamMember).UserID)

	rw = serve(v.List, http.MethodGet, "/teams", "", member)
	assert.Equal(t, []int{1}, ids(decodeList(t, rw)))

	rw = serve(v.List, http.MethodGet, "/teams", "", stranger)
	assert.Empty(t, decodeList(t, rw))

	t.Run("InvalidSelfModel", func(t *testing.T) {
		err := v.SetSelfModel(f.models, &TeamMember{}, "team_id", "unknown")
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassInitialization))
	})

	t.Run("Rollback", func(t *testing.T) {
		failing := MustNewSelf(f.teams, f.db, "members__id")
		failing.selfModel = &SelfModel{Model: teamMembers, Left: "team_id", Right: "missing"}
		rw := serve(failing.Create, http.MethodPost, "/teams", `{"name": "ghost"}`, member)
		assert.Equal(t, http.StatusBadRequest, rw.Code)

		rw = serve(v.List, http.MethodGet, "/teams?name=ghost", "", member)
		assert.Empty(t, decodeList(t, rw))
	})
}
