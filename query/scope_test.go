package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
)

func TestScopeAddKeyword(t *testing.T) {
	m := testModels(t)
	books := modelStruct(t, m, &testBook{})

	t.Run("Attribute", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("title", "go")))
		require.Len(t, s.Filters, 1)

		f := s.Filters[0]
		assert.Equal(t, "Title", f.StructField.Name())
		assert.Equal(t, OpExact, f.Operator)
		assert.Equal(t, []interface{}{"go"}, f.Values)
		assert.False(t, f.IsNested())
	})

	t.Run("Lookup", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("pages__gte", int64(100))))
		f := s.Filters[0]
		assert.Equal(t, OpGreaterEqual, f.Operator)
		assert.Equal(t, []interface{}{100}, f.Values)
	})

	t.Run("StringFieldNumericValue", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(&Keyword{Key: "title", Value: int64(7), Raw: "007"}))
		assert.Equal(t, []interface{}{"007"}, s.Filters[0].Values)
	})

	t.Run("StringOperatorOnNumber", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("rating__icontains", 4.5)))
		assert.Equal(t, OpIContains, s.Filters[0].Operator)
		assert.Equal(t, []interface{}{"4.5"}, s.Filters[0].Values)
	})

	t.Run("In", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("id__in", []interface{}{int64(1), 2.0, "3"})))
		assert.Equal(t, []interface{}{1, 2, 3}, s.Filters[0].Values)
	})

	t.Run("Null", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("pages", nil)))
		assert.Equal(t, OpIsNull, s.Filters[0].Operator)
		assert.Equal(t, []interface{}{true}, s.Filters[0].Values)

		require.NoError(t, s.AddKeyword(NewKeyword("pages__ne", nil)))
		assert.Equal(t, OpIsNull, s.Filters[1].Operator)
		assert.Equal(t, []interface{}{false}, s.Filters[1].Values)

		err := s.AddKeyword(NewKeyword("pages__gt", nil))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassFieldValue))
	})

	t.Run("IsNull", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("pages__isnull", int64(0))))
		assert.Equal(t, []interface{}{false}, s.Filters[0].Values)
	})

	t.Run("Time", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("created_at__lt", "2020-01-02")))
		assert.Equal(t, []interface{}{time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)}, s.Filters[0].Values)
	})

	t.Run("BelongsToRelation", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("author__name__icontains", "john")))
		f := s.Filters[0]
		require.True(t, f.IsNested())
		assert.Equal(t, "Author", f.StructField.Name())
		assert.Nil(t, f.Operator)
		assert.Equal(t, "Name", f.Nested.StructField.Name())
		assert.Equal(t, OpIContains, f.Nested.Operator)
		assert.Equal(t, "author__name", f.Path())
		assert.Equal(t, f.Nested, f.Last())
	})

	t.Run("RelationPrimary", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("tags", int64(3))))
		f := s.Filters[0]
		require.True(t, f.IsNested())
		assert.True(t, f.Nested.StructField.IsPrimary())
		assert.Equal(t, []interface{}{3}, f.Nested.Values)

		require.NoError(t, s.AddKeyword(NewKeyword("tags__pk__in", []interface{}{int64(1)})))
		assert.Equal(t, OpIn, s.Filters[1].Nested.Operator)
	})

	t.Run("ForeignKey", func(t *testing.T) {
		s := NewScope(books)
		require.NoError(t, s.AddKeyword(NewKeyword("author_id", int64(2))))
		assert.Equal(t, "AuthorID", s.Filters[0].StructField.Name())
	})

	t.Run("HasManyTraversal", func(t *testing.T) {
		authors := modelStruct(t, m, &testAuthor{})
		s := NewScope(authors)
		require.NoError(t, s.AddKeyword(NewKeyword("books__tags__label", "go")))
		f := s.Filters[0]
		assert.Equal(t, "books__tags__label", f.Path())
		assert.Equal(t, "Label", f.Last().StructField.Name())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		keywords, err := ParseParams(url.Values{"id": {"99999999999999999999"}}, nil)
		require.NoError(t, err)
		require.Len(t, keywords, 1)
		assert.Equal(t, "99999999999999999999", keywords[0].Value)

		s := NewScope(books)
		err = s.AddKeywords(keywords...)
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassFieldValue))

		err = s.AddKeyword(NewKeyword("pages__gte", 1e20))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassFieldValue))
		assert.Empty(t, s.Filters)
	})

	t.Run("Errors", func(t *testing.T) {
		s := NewScope(books)
		err := s.AddKeyword(NewKeyword("unknown", "x"))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassInvalidField))

		err = s.AddKeyword(NewKeyword("title__unknown", "x"))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassInvalidOperator))

		err = s.AddKeyword(NewKeyword("pages", "many"))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassFieldValue))

		err = s.AddKeyword(NewKeyword("author__unknown", "x"))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, ClassInvalidField))
		assert.Empty(t, s.Filters)
	})
}

func TestScopeCopy(t *testing.T) {
	m := testModels(t)
	books := modelStruct(t, m, &testBook{})

	s := NewScope(books)
	require.NoError(t, s.AddKeyword(NewKeyword("id__in", []interface{}{int64(1), int64(2)})))
	s.Pagination = &Pagination{Limit: 10}
	s.Distinct = true

	cp := s.Copy()
	cp.Filters[0].Values[0] = 5
	cp.Pagination.Limit = 1
	assert.Equal(t, 1, s.Filters[0].Values[0])
	assert.Equal(t, 10, s.Pagination.Limit)
	assert.True(t, cp.Distinct)

	sorts := s.SortsOrDefault()
	require.Len(t, sorts, 1)
	assert.True(t, sorts[0].Field.IsPrimary())
	assert.False(t, sorts[0].Descending)
}

func TestSortsOrDefault(t *testing.T) {
	m := testModels(t)
	books := modelStruct(t, m, &testBook{})

	s := NewScope(books)
	s.OrderBy(ParseOrdering(books, "-pages", nil)...)
	sorts := s.SortsOrDefault()
	require.Len(t, sorts, 2)
	assert.Equal(t, "Pages", sorts[0].Field.Name())
	assert.True(t, sorts[0].Descending)
	assert.True(t, sorts[1].Field.IsPrimary())
	assert.False(t, sorts[1].Descending)
	assert.Len(t, s.Sorts, 1)

	s.OrderBy(ParseOrdering(books, "pages,-id", nil)...)
	sorts = s.SortsOrDefault()
	require.Len(t, sorts, 2)
	assert.True(t, sorts[1].Field.IsPrimary())
	assert.True(t, sorts[1].Descending)
}

func TestParseOrdering(t *testing.T) {
	m := testModels(t)
	books := modelStruct(t, m, &testBook{})
	title, _ := books.FieldByName("title")
	created, _ := books.FieldByName("created_at")

	sorts := ParseOrdering(books, "-created_at, title,unknown,pages,,author", []*mapping.StructField{title, created})
	require.Len(t, sorts, 2)
	assert.Equal(t, created, sorts[0].Field)
	assert.True(t, sorts[0].Descending)
	assert.Equal(t, title, sorts[1].Field)
	assert.False(t, sorts[1].Descending)
	assert.Equal(t, "-created_at", sorts[0].String())

	sorts = ParseOrdering(books, "pages", nil)
	require.Len(t, sorts, 1)
	assert.Equal(t, "Pages", sorts[0].Field.Name())
}

func TestParseSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"go", "lang", "book"}, ParseSearchTerms(" go,lang\tbook\x00 "))
	assert.Empty(t, ParseSearchTerms(" , "))

	m := testModels(t)
	books := modelStruct(t, m, &testBook{})
	title, _ := books.FieldByName("title")
	assert.Nil(t, NewSearch("", []*mapping.StructField{title}))
	assert.Nil(t, NewSearch("go", nil))
	search := NewSearch("go", []*mapping.StructField{title})
	require.NotNil(t, search)
	assert.Equal(t, []string{"go"}, search.Terms)
}

func TestParsePagination(t *testing.T) {
	settings := config.DefaultFancy()
	settings.MaxLimit = 50

	tests := map[string]struct {
		values   url.Values
		expected *Pagination
	}{
		"NoLimit":       {url.Values{"offset": {"10"}}, nil},
		"InvalidLimit":  {url.Values{"limit": {"abc"}}, nil},
		"ZeroLimit":     {url.Values{"limit": {"0"}}, nil},
		"Limit":         {url.Values{"limit": {"10"}}, &Pagination{Limit: 10}},
		"Offset":        {url.Values{"limit": {"10"}, "offset": {"20"}}, &Pagination{Limit: 10, Offset: 20}},
		"InvalidOffset": {url.Values{"limit": {"10"}, "offset": {"-1"}}, &Pagination{Limit: 10}},
		"MaxLimit":      {url.Values{"limit": {"100"}}, &Pagination{Limit: 50}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParsePagination(tc.values, settings))
		})
	}
}
