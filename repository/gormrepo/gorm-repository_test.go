package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

type UserGORM struct {
	ID        int
	Name      string
	Age       *int
	CreatedAt time.Time
	Pets      []*PetGORM `neuron:"foreign=OwnerID" gorm:"-"`
}

type PetGORM struct {
	ID      string
	Name    string
	Owner   *UserGORM `gorm:"-"`
	OwnerID int
}

type fixture struct {
	repo  *GORMRepository
	users *mapping.ModelStruct
	pets  *mapping.ModelStruct
}

func prepareGORMRepo(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// each sqlite in-memory connection has its own database.
	db.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&UserGORM{}, &PetGORM{}))
	users, err := m.GetModelStruct(&UserGORM{})
	require.NoError(t, err)
	pets, err := m.GetModelStruct(&PetGORM{})
	require.NoError(t, err)

	repo := New(db)
	require.NoError(t, repo.MigrateModels(context.Background(), users, pets))
	return &fixture{repo: repo, users: users, pets: pets}
}

func intPtr(i int) *int {
	return &i
}

func (f *fixture) settleUsers(t *testing.T) {
	t.Helper()
	for _, u := range []*UserGORM{
		{Name: "Jonathan", Age: intPtr(40), CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "adam", Age: intPtr(25), CreatedAt: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Bob", CreatedAt: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "john_doe", Age: intPtr(33), CreatedAt: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)},
	} {
		require.NoError(t, f.repo.Create(context.Background(), f.users, u))
	}
}

func (f *fixture) scope(t *testing.T, keywords ...*query.Keyword) *query.Scope {
	t.Helper()
	s := query.NewScope(f.users)
	require.NoError(t, s.AddKeywords(keywords...))
	return s
}

func userNames(models []interface{}) []string {
	var names []string
	for _, model := range models {
		names = append(names, model.(*UserGORM).Name)
	}
	return names
}

func TestGORMRepositoryCreateGet(t *testing.T) {
	ctx := context.Background()
	f := prepareGORMRepo(t)

	u := &UserGORM{Name: "first", Age: intPtr(10)}
	require.NoError(t, f.repo.Create(ctx, f.users, u))
	assert.Equal(t, 1, u.ID)

	stored, err := f.repo.Get(ctx, f.users, "1")
	require.NoError(t, err)
	assert.Equal(t, "first", stored.(*UserGORM).Name)
	assert.Equal(t, 10, *stored.(*UserGORM).Age)

	_, err = f.repo.Get(ctx, f.users, 2)
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, repository.ClassNotFound))

	pet := &PetGORM{Name: "rex", OwnerID: u.ID}
	require.NoError(t, f.repo.Create(ctx, f.pets, pet))
	assert.NotEmpty(t, pet.ID)

	storedPet, err := f.repo.Get(ctx, f.pets, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "rex", storedPet.(*PetGORM).Name)
}

func TestGORMRepositoryFind(t *testing.T) {
	ctx := context.Background()
	f := prepareGORMRepo(t)
	f.settleUsers(t)

	tests := map[string]struct {
		keywords []*query.Keyword
		expected []string
	}{
		"All":         {nil, []string{"Jonathan", "adam", "Bob", "john_doe"}},
		"Exact":       {[]*query.Keyword{query.NewKeyword("name", "adam")}, []string{"adam"}},
		"IExact":      {[]*query.Keyword{query.NewKeyword("name__iexact", "BOB")}, []string{"Bob"}},
		"IContains":   {[]*query.Keyword{query.NewKeyword("name__icontains", "JO")}, []string{"Jonathan", "john_doe"}},
		"EscapedLike": {[]*query.Keyword{query.NewKeyword("name__contains", "n_d")}, []string{"john_doe"}},
		"StartsWith":  {[]*query.Keyword{query.NewKeyword("name__istartswith", "j")}, []string{"Jonathan", "john_doe"}},
		"EndsWith":    {[]*query.Keyword{query.NewKeyword("name__iendswith", "N")}, []string{"Jonathan"}},
		"In":          {[]*query.Keyword{query.NewKeyword("id__in", []interface{}{int64(1), int64(3)})}, []string{"Jonathan", "Bob"}},
		"EmptyIn":     {[]*query.Keyword{query.NewKeyword("id__in", []interface{}{})}, nil},
		"GreaterThan": {[]*query.Keyword{query.NewKeyword("age__gt", int64(30))}, []string{"Jonathan", "john_doe"}},
		"NotEqual":    {[]*query.Keyword{query.NewKeyword("age__ne", int64(25))}, []string{"Jonathan", "john_doe"}},
		"IsNull":      {[]*query.Keyword{query.NewKeyword("age__isnull", true)}, []string{"Bob"}},
		"NumericLike": {[]*query.Keyword{query.NewKeyword("age__contains", int64(3))}, []string{"john_doe"}},
		"Time":        {[]*query.Keyword{query.NewKeyword("created_at__gte", "2020-03-01")}, []string{"Bob", "john_doe"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			models, err := f.repo.Find(ctx, f.scope(t, tc.keywords...))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, userNames(models))
		})
	}

	t.Run("SearchSortPaginate", func(t *testing.T) {
		s := f.scope(t)
		name, _ := f.users.FieldByName("name")
		s.Search = query.NewSearch("o", []*mapping.StructField{name})
		s.OrderBy(query.ParseOrdering(f.users, "-age", nil)...)
		s.Pagination = &query.Pagination{Limit: 2}
		s.Distinct = true

		models, err := f.repo.Find(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, []string{"Jonathan", "john_doe"}, userNames(models))

		count, err := f.repo.Count(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("RelationFilter", func(t *testing.T) {
		_, err := f.repo.Find(ctx, f.scope(t, query.NewKeyword("pets__name", "rex")))
		require.Error(t, err)
		assert.True(t, errors.IsClass(err, repository.ClassFilter))
	})

	t.Run("None", func(t *testing.T) {
		s := f.scope(t)
		s.None = true
		models, err := f.repo.Find(ctx, s)
		require.NoError(t, err)
		assert.Empty(t, models)
	})
}

func TestGORMRepositoryUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := prepareGORMRepo(t)
	f.settleUsers(t)

	name, _ := f.users.FieldByName("name")
	age, _ := f.users.FieldByName("age")

	require.NoError(t, f.repo.Update(ctx, f.users, &UserGORM{ID: 2, Name: "Adam"}, name))
	stored, err := f.repo.Get(ctx, f.users, 2)
	require.NoError(t, err)
	assert.Equal(t, "Adam", stored.(*UserGORM).Name)
	assert.Equal(t, 25, *stored.(*UserGORM).Age)

	err = f.repo.Update(ctx, f.users, &UserGORM{ID: 100, Name: "none"}, name)
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, repository.ClassNotFound))

	affected, err := f.repo.UpdateWhere(ctx, f.scope(t, query.NewKeyword("name__istartswith", "j")), map[*mapping.StructField]interface{}{age: nil})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	require.NoError(t, f.repo.Delete(ctx, f.users, 1))
	err = f.repo.Delete(ctx, f.users, 1)
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, repository.ClassNotFound))

	deleted, err := f.repo.DeleteWhere(ctx, f.scope(t, query.NewKeyword("age__isnull", true)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	models, err := f.repo.Find(ctx, f.scope(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Adam"}, userNames(models))
}

func TestGORMRepositoryTransactions(t *testing.T) {
	ctx := context.Background()
	f := prepareGORMRepo(t)

	tx, err := f.repo.Begin(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Create(ctx, f.users, &UserGORM{Name: "rolled back"}))
	require.NoError(t, tx.Rollback(ctx))

	tx, err = f.repo.Begin(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Create(ctx, f.users, &UserGORM{Name: "committed"}))
	require.NoError(t, tx.Commit(ctx))

	models, err := f.repo.Find(ctx, f.scope(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"committed"}, userNames(models))
}

type invalidRelation struct {
	ID     int
	Others []*invalidOther `neuron:"type=relation;many2many=invalidJoin"`
}

type invalidOther struct {
	ID int
}

type invalidJoin struct {
	ID                int
	InvalidRelationID int
	InvalidOtherID    int
}

func TestModelCheck(t *testing.T) {
	f := prepareGORMRepo(t)

	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&invalidRelation{}, &invalidOther{}, &invalidJoin{}))
	mStruct, err := m.GetModelStruct(&invalidRelation{})
	require.NoError(t, err)

	err = f.repo.MigrateModels(context.Background(), mStruct)
	require.Error(t, err)
	assert.True(t, errors.IsClass(err, repository.ClassModel))
}

func TestOpen(t *testing.T) {
	repo, err := Open(&config.Repository{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "gorm", repo.RepositoryName())
	assert.NoError(t, repo.Close(context.Background()))
}
