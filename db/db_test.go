package db

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
	"github.com/neuronlabs/fancy/repository/memory"
)

type Author struct {
	ID    int
	Name  string
	Books []*Book `neuron:"foreign=AuthorID"`
}

type Book struct {
	ID       int
	Title    string
	AuthorID *int
	Author   *Author
	Tags     []*Tag `neuron:"many2many=BookTag"`
}

type Tag struct {
	ID   int
	Name string
}

type BookTag struct {
	ID     int
	BookID int
	TagID  int
}

type fixture struct {
	db                        *DB
	authors, books, tags, bts *mapping.ModelStruct
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&Author{}, &Book{}, &Tag{}, &BookTag{}))
	f := &fixture{db: New(m, memory.New())}
	var err error
	f.authors, err = m.GetModelStruct(&Author{})
	require.NoError(t, err)
	f.books, err = m.GetModelStruct(&Book{})
	require.NoError(t, err)
	f.tags, err = m.GetModelStruct(&Tag{})
	require.NoError(t, err)
	f.bts, err = m.GetModelStruct(&BookTag{})
	require.NoError(t, err)
	return f
}

func (f *fixture) relation(t *testing.T, mStruct *mapping.ModelStruct, name string) *mapping.StructField {
	t.Helper()
	field, ok := mStruct.RelationByName(name)
	require.True(t, ok)
	return field
}

// settle creates the authors: 1 'John', 2 'Adam', books: 1 'Go' (John), 2 'Rust' (Adam), 3 'Gopher' (none)
// and tags: 1 'lang', 2 'fun'. The book 'Go' is tagged with both tags and 'Gopher' with 'fun'.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	john, adam := &Author{Name: "John"}, &Author{Name: "Adam"}
	require.NoError(t, f.db.Create(ctx, john))
	require.NoError(t, f.db.Create(ctx, adam))

	for _, b := range []*Book{{Title: "Go", AuthorID: &john.ID}, {Title: "Rust", AuthorID: &adam.ID}, {Title: "Gopher"}} {
		require.NoError(t, f.db.Create(ctx, b))
	}
	for _, tag := range []*Tag{{Name: "lang"}, {Name: "fun"}} {
		require.NoError(t, f.db.Create(ctx, tag))
	}
	for _, bt := range [][2]int{{1, 1}, {1, 2}, {3, 2}} {
		_, err := f.db.CreateJoin(ctx, f.bts, "BookID", bt[0], "tag_id", bt[1])
		require.NoError(t, err)
	}
}

func (f *fixture) find(t *testing.T, mStruct *mapping.ModelStruct, keywords ...*query.Keyword) ([]interface{}, error) {
	t.Helper()
	s := query.NewScope(mStruct)
	require.NoError(t, s.AddKeywords(keywords...))
	return f.db.Find(context.Background(), s)
}

func primaries(t *testing.T, mStruct *mapping.ModelStruct, models []interface{}) []int {
	t.Helper()
	var ids []int
	for _, model := range models {
		primary, err := mStruct.PrimaryValue(model)
		require.NoError(t, err)
		ids = append(ids, primary.(int))
	}
	sort.Ints(ids)
	return ids
}

func TestFindRelationFilters(t *testing.T) {
	f := newFixture(t)
	f.settle(t)

	tests := map[string]struct {
		model    func() *mapping.ModelStruct
		keywords []*query.Keyword
		expected []int
	}{
		"BelongsToAttribute": {
			model:    func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{query.NewKeyword("author__name__icontains", "jo")},
			expected: []int{1},
		},
		"BelongsToPrimary": {
			model:    func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{query.NewKeyword("author", int64(2))},
			expected: []int{2},
		},
		"HasMany": {
			model:    func() *mapping.ModelStruct { return f.authors },
			keywords: []*query.Keyword{query.NewKeyword("books__title__startswith", "Go")},
			expected: []int{1},
		},
		"Many2ManyPrimary": {
			model:    func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{query.NewKeyword("tags__in", []interface{}{int64(1), int64(2)})},
			expected: []int{1, 3},
		},
		"Many2ManyAttribute": {
			model:    func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{query.NewKeyword("tags__name", "lang")},
			expected: []int{1},
		},
		"Nested": {
			model:    func() *mapping.ModelStruct { return f.authors },
			keywords: []*query.Keyword{query.NewKeyword("books__tags__name", "fun")},
			expected: []int{1},
		},
		"Combined": {
			model: func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{
				query.NewKeyword("tags__name", "fun"),
				query.NewKeyword("title__icontains", "gopher"),
			},
			expected: []int{3},
		},
		"NoMatch": {
			model:    func() *mapping.ModelStruct { return f.books },
			keywords: []*query.Keyword{query.NewKeyword("tags__name", "unknown")},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			mStruct := tc.model()
			models, err := f.find(t, mStruct, tc.keywords...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, primaries(t, mStruct, models))
		})
	}
}

func TestCountAndNone(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	ctx := context.Background()

	s := query.NewScope(f.books)
	require.NoError(t, s.AddKeyword(query.NewKeyword("tags__name", "fun")))
	count, err := f.db.Count(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	s.None = true
	count, err = f.db.Count(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, count)

	models, err := f.db.Find(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestGetIn(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	ctx := context.Background()

	s := query.NewScope(f.books)
	require.NoError(t, s.AddKeyword(query.NewKeyword("author__name", "John")))

	model, err := f.db.GetIn(ctx, s, "1")
	require.NoError(t, err)
	assert.Equal(t, "Go", model.(*Book).Title)

	_, err = f.db.GetIn(ctx, s, 2)
	require.Error(t, err)
	assert.True(t, ferrors.IsClass(err, repository.ClassNotFound))
}

func TestRelations(t *testing.T) {
	ctx := context.Background()

	t.Run("Many2Many", func(t *testing.T) {
		f := newFixture(t)
		f.settle(t)
		tags := f.relation(t, f.books, "tags")
		book := &Book{ID: 2}

		require.NoError(t, f.db.AddRelations(ctx, book, tags, 1, int64(2), "2"))
		pks, err := f.db.RelatedPrimaryKeys(ctx, book, tags)
		require.NoError(t, err)
		assert.ElementsMatch(t, []interface{}{1, 2}, pks)

		// adding already related tags doesn't duplicate join rows.
		require.NoError(t, f.db.AddRelations(ctx, book, tags, 1))
		count, err := f.db.Count(ctx, query.NewScope(f.bts))
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)

		require.NoError(t, f.db.ClearRelations(ctx, book, tags))
		pks, err = f.db.RelatedPrimaryKeys(ctx, book, tags)
		require.NoError(t, err)
		assert.Empty(t, pks)

		// other books join rows are untouched.
		count, err = f.db.Count(ctx, query.NewScope(f.bts))
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("HasMany", func(t *testing.T) {
		f := newFixture(t)
		f.settle(t)
		books := f.relation(t, f.authors, "books")
		adam := &Author{ID: 2}

		require.NoError(t, f.db.SetRelations(ctx, adam, books, 1, 3))
		related, err := f.db.RelatedModels(ctx, adam, books)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, primaries(t, f.books, related))

		// the book 'Rust' lost its author.
		model, err := f.db.Get(ctx, f.books, 2)
		require.NoError(t, err)
		assert.Nil(t, model.(*Book).AuthorID)

		require.NoError(t, f.db.ClearRelations(ctx, adam, books))
		pks, err := f.db.RelatedPrimaryKeys(ctx, adam, books)
		require.NoError(t, err)
		assert.Empty(t, pks)
	})

	t.Run("BelongsTo", func(t *testing.T) {
		f := newFixture(t)
		f.settle(t)
		author := f.relation(t, f.books, "author")
		model, err := f.db.Get(ctx, f.books, 3)
		require.NoError(t, err)
		book := model.(*Book)

		require.NoError(t, f.db.AddRelations(ctx, book, author, 2))
		pks, err := f.db.RelatedPrimaryKeys(ctx, book, author)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{2}, pks)

		require.NoError(t, f.db.ClearRelations(ctx, book, author))
		model, err = f.db.Get(ctx, f.books, 3)
		require.NoError(t, err)
		assert.Nil(t, model.(*Book).AuthorID)
	})

	t.Run("RelatedNotFound", func(t *testing.T) {
		f := newFixture(t)
		f.settle(t)
		err := f.db.AddRelations(ctx, &Book{ID: 1}, f.relation(t, f.books, "tags"), 1, 10)
		require.Error(t, err)
		assert.True(t, ferrors.IsClass(err, ClassRelatedNotFound))
	})

	t.Run("InvalidOwner", func(t *testing.T) {
		f := newFixture(t)
		err := f.db.AddRelations(ctx, &Book{}, f.relation(t, f.books, "tags"), 1)
		require.Error(t, err)
		assert.True(t, ferrors.IsClass(err, ClassInvalidModel))

		err = f.db.AddRelations(ctx, &Author{ID: 1}, f.relation(t, f.books, "tags"), 1)
		require.Error(t, err)
		assert.True(t, ferrors.IsClass(err, ClassInvalidRelation))
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.settle(t)
	ctx := context.Background()

	require.NoError(t, f.db.Delete(ctx, &Book{ID: 1}))
	count, err := f.db.Count(ctx, query.NewScope(f.bts))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = f.db.Get(ctx, f.books, 1)
	assert.True(t, ferrors.IsClass(err, repository.ClassNotFound))

	err = f.db.Delete(ctx, &Book{})
	assert.True(t, ferrors.IsClass(err, ClassInvalidModel))
}

func TestRunInTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		f := newFixture(t)
		err := f.db.RunInTransaction(ctx, nil, func(db *DB) error {
			assert.True(t, db.InTransaction())
			return db.Create(ctx, &Tag{Name: "committed"})
		})
		require.NoError(t, err)
		assert.False(t, f.db.InTransaction())

		count, err := f.db.Count(ctx, query.NewScope(f.tags))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Rollback", func(t *testing.T) {
		f := newFixture(t)
		failure := errors.New("failure")
		err := f.db.RunInTransaction(ctx, nil, func(db *DB) error {
			require.NoError(t, db.Create(ctx, &Tag{Name: "rolled back"}))
			return failure
		})
		assert.Equal(t, failure, err)

		count, err := f.db.Count(ctx, query.NewScope(f.tags))
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Panic", func(t *testing.T) {
		f := newFixture(t)
		assert.Panics(t, func() {
			_ = f.db.RunInTransaction(ctx, nil, func(db *DB) error {
				require.NoError(t, db.Create(ctx, &Tag{Name: "panic"}))
				panic("panic")
			})
		})
		count, err := f.db.Count(ctx, query.NewScope(f.tags))
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Nested", func(t *testing.T) {
		f := newFixture(t)
		err := f.db.RunInTransaction(ctx, nil, func(db *DB) error {
			return db.RunInTransaction(ctx, nil, func(inner *DB) error {
				assert.Equal(t, db, inner)
				return inner.Create(ctx, &Tag{Name: "nested"})
			})
		})
		require.NoError(t, err)
	})
}

func TestMigrateAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Migrate(ctx))
	require.NoError(t, f.db.Close(ctx))
}
