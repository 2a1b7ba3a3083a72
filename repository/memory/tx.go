package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

var _ repository.Tx = &Tx{}

// Tx is the memory repository transaction. It keeps the snapshot of the repository state
// which is restored on Rollback.
type Tx struct {
	m        *Memory
	items    map[string]cache.Item
	counters map[string]int64
	done     bool
}

// RepositoryName implements repository.Namer interface.
func (t *Tx) RepositoryName() string {
	return t.m.RepositoryName()
}

// Create implements repository.Repository interface.
func (t *Tx) Create(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}) error {
	if err := t.check(); err != nil {
		return err
	}
	return t.m.create(mStruct, model)
}

// Get implements repository.Repository interface.
func (t *Tx) Get(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.m.get(mStruct, primary)
}

// Find implements repository.Repository interface.
func (t *Tx) Find(ctx context.Context, s *query.Scope) ([]interface{}, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.m.find(s)
}

// Count implements repository.Repository interface.
func (t *Tx) Count(ctx context.Context, s *query.Scope) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.m.count(s)
}

// Update implements repository.Repository interface.
func (t *Tx) Update(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}, fields ...*mapping.StructField) error {
	if err := t.check(); err != nil {
		return err
	}
	return t.m.update(mStruct, model, fields)
}

// Delete implements repository.Repository interface.
func (t *Tx) Delete(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) error {
	if err := t.check(); err != nil {
		return err
	}
	return t.m.delete(mStruct, primary)
}

// DeleteWhere implements repository.Repository interface.
func (t *Tx) DeleteWhere(ctx context.Context, s *query.Scope) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.m.deleteWhere(s)
}

// UpdateWhere implements repository.Repository interface.
func (t *Tx) UpdateWhere(ctx context.Context, s *query.Scope, values map[*mapping.StructField]interface{}) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.m.updateWhere(s, values)
}

// Commit implements repository.Tx interface.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.finish()
	logger.Debug3f("Transaction committed")
	return nil
}

// Rollback implements repository.Tx interface. It restores the repository state from
// the moment the transaction began.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.m.cache.Flush()
	for key, item := range t.items {
		t.m.cache.Set(key, item.Object, cache.NoExpiration)
	}
	t.m.counters = t.counters
	t.finish()
	logger.Debug3f("Transaction rolled back")
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.items = nil
	t.m.lock.Unlock()
}

func (t *Tx) check() error {
	if t.done {
		return errors.NewDet(repository.ClassTx, "transaction already finished")
	}
	return nil
}
