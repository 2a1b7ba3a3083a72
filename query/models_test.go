package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neuronlabs/fancy/mapping"
)

type testAuthor struct {
	ID    int
	Name  string
	Books []*testBook `neuron:"foreign=AuthorID"`
}

type testBook struct {
	ID        int
	Title     string
	Pages     *int
	Rating    float64
	Published bool
	CreatedAt time.Time
	Author    *testAuthor
	AuthorID  int
	Tags      []*testTag `neuron:"type=relation;many2many=testBookTag;foreign=BookID,TagID"`
}

type testTag struct {
	ID    int
	Label string
}

type testBookTag struct {
	ID     int
	BookID int
	TagID  int
}

func testModels(t *testing.T) *mapping.ModelMap {
	t.Helper()
	m := mapping.NewModelMap(mapping.SnakeCase)
	require.NoError(t, m.RegisterModels(&testAuthor{}, &testBook{}, &testTag{}, &testBookTag{}))
	return m
}

func modelStruct(t *testing.T, m *mapping.ModelMap, model interface{}) *mapping.ModelStruct {
	t.Helper()
	mStruct, err := m.GetModelStruct(model)
	require.NoError(t, err)
	return mStruct
}
