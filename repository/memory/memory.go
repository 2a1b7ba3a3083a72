package memory

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// Compile time check if Memory implements repository interfaces.
var (
	_ repository.Repository    = &Memory{}
	_ repository.Transactioner = &Memory{}
	_ repository.Closer        = &Memory{}
)

var logger = log.NewModuleLogger("memory")

// Memory is the in-process repository implementation. The models are stored as copies
// within the go-cache without expiration. Integer primary keys are auto incremented per
// collection and the zero string primary keys are set to new uuid values.
//
// All the operations are serialized. An open transaction holds the lock until it is committed
// or rolled back, thus the other operations wait for it to finish.
type Memory struct {
	cache    *cache.Cache
	lock     sync.Mutex
	counters map[string]int64
}

// New creates new in-memory repository.
func New() *Memory {
	return &Memory{
		cache:    cache.New(cache.NoExpiration, 0),
		counters: make(map[string]int64),
	}
}

// RepositoryName implements repository.Namer interface.
func (m *Memory) RepositoryName() string {
	return "memory"
}

// Create implements repository.Repository interface.
func (m *Memory) Create(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.create(mStruct, model)
}

// Get implements repository.Repository interface.
func (m *Memory) Get(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.get(mStruct, primary)
}

// Find implements repository.Repository interface.
func (m *Memory) Find(ctx context.Context, s *query.Scope) ([]interface{}, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.find(s)
}

// Count implements repository.Repository interface.
func (m *Memory) Count(ctx context.Context, s *query.Scope) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.count(s)
}

// Update implements repository.Repository interface.
func (m *Memory) Update(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}, fields ...*mapping.StructField) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.update(mStruct, model, fields)
}

// Delete implements repository.Repository interface.
func (m *Memory) Delete(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.delete(mStruct, primary)
}

// DeleteWhere implements repository.Repository interface.
func (m *Memory) DeleteWhere(ctx context.Context, s *query.Scope) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.deleteWhere(s)
}

// UpdateWhere implements repository.Repository interface.
func (m *Memory) UpdateWhere(ctx context.Context, s *query.Scope, values map[*mapping.StructField]interface{}) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.updateWhere(s, values)
}

// Begin implements repository.Transactioner interface. The transaction options are ignored,
// all memory transactions are serializable.
func (m *Memory) Begin(ctx context.Context, _ *sql.TxOptions) (repository.Tx, error) {
	m.lock.Lock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	tx := &Tx{m: m, items: m.cache.Items(), counters: counters}
	logger.Debug3f("Transaction begins")
	return tx, nil
}

// Close implements repository.Closer interface.
func (m *Memory) Close(context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.cache.Flush()
	m.counters = make(map[string]int64)
	return nil
}

func (m *Memory) create(mStruct *mapping.ModelStruct, model interface{}) error {
	if err := m.assignPrimary(mStruct, model); err != nil {
		return err
	}
	primary, err := mStruct.PrimaryValue(model)
	if err != nil {
		return err
	}
	key := m.key(mStruct, primary)
	if _, found := m.cache.Get(key); found {
		return errors.NewDetf(repository.ClassConflict, "model: '%s' with primary key: '%v' already exists", mStruct, primary)
	}
	m.cache.Set(key, copyModel(mStruct, model), cache.NoExpiration)
	logger.Debug3f("Created model: '%s' with primary: '%v'", mStruct, primary)
	return nil
}

func (m *Memory) assignPrimary(mStruct *mapping.ModelStruct, model interface{}) error {
	assigned, err := repository.AssignStringPrimary(mStruct, model)
	if err != nil || assigned {
		return err
	}
	if !mStruct.Primary().IsNumeric() {
		if mStruct.IsPrimaryZero(model) {
			return errors.NewDetf(repository.ClassModel, "model: '%s' primary key type: '%s' couldn't be generated", mStruct, mStruct.Primary().BaseType())
		}
		return nil
	}

	counter := m.counters[mStruct.Collection()]
	if !mStruct.IsPrimaryZero(model) {
		primary, err := mStruct.PrimaryValue(model)
		if err != nil {
			return err
		}
		if v, ok := toInt64(primary); ok && v > counter {
			m.counters[mStruct.Collection()] = v
		}
		return nil
	}
	counter++
	m.counters[mStruct.Collection()] = counter
	return mStruct.SetPrimaryValue(model, counter)
}

func (m *Memory) get(mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	stored, err := m.stored(mStruct, primary)
	if err != nil {
		return nil, err
	}
	return copyModel(mStruct, stored), nil
}

func (m *Memory) stored(mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	converted, err := mStruct.ConvertPrimary(primary)
	if err != nil {
		return nil, errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", mStruct, primary)
	}
	stored, found := m.cache.Get(m.key(mStruct, converted))
	if !found {
		return nil, errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", mStruct, primary)
	}
	return stored, nil
}

func (m *Memory) find(s *query.Scope) ([]interface{}, error) {
	models, err := m.matching(s)
	if err != nil {
		return nil, err
	}
	sortModels(s, models)
	if s.Pagination != nil {
		models = paginate(models, s.Pagination)
	}
	results := make([]interface{}, len(models))
	for i, model := range models {
		results[i] = copyModel(s.ModelStruct, model)
	}
	logger.Debug3f("Found: %d models for: %s", len(results), s)
	return results, nil
}

func (m *Memory) count(s *query.Scope) (int64, error) {
	models, err := m.matching(s)
	if err != nil {
		return 0, err
	}
	return int64(len(models)), nil
}

func (m *Memory) update(mStruct *mapping.ModelStruct, model interface{}, fields []*mapping.StructField) error {
	primary, err := mStruct.PrimaryValue(model)
	if err != nil {
		return err
	}
	stored, err := m.stored(mStruct, primary)
	if err != nil {
		return err
	}
	updated := copyModel(mStruct, stored)
	src := reflect.ValueOf(model).Elem()
	dst := reflect.ValueOf(updated).Elem()
	for _, field := range repository.UpdatedFields(mStruct, fields) {
		if field.IsRelationship() || field.Struct() != mStruct {
			return errors.NewDetf(repository.ClassModel, "field: '%s' can't be updated in the model: '%s'", field, mStruct)
		}
		dst.FieldByIndex(field.Index()).Set(copyValue(src.FieldByIndex(field.Index())))
	}
	storedPrimary, err := mStruct.PrimaryValue(updated)
	if err != nil {
		return err
	}
	m.cache.Set(m.key(mStruct, storedPrimary), updated, cache.NoExpiration)
	logger.Debug3f("Updated model: '%s' with primary: '%v'", mStruct, primary)
	return nil
}

func (m *Memory) delete(mStruct *mapping.ModelStruct, primary interface{}) error {
	stored, err := m.stored(mStruct, primary)
	if err != nil {
		return err
	}
	storedPrimary, err := mStruct.PrimaryValue(stored)
	if err != nil {
		return err
	}
	m.cache.Delete(m.key(mStruct, storedPrimary))
	return nil
}

func (m *Memory) deleteWhere(s *query.Scope) (int64, error) {
	models, err := m.matching(s)
	if err != nil {
		return 0, err
	}
	for _, model := range models {
		primary, err := s.ModelStruct.PrimaryValue(model)
		if err != nil {
			return 0, err
		}
		m.cache.Delete(m.key(s.ModelStruct, primary))
	}
	return int64(len(models)), nil
}

func (m *Memory) updateWhere(s *query.Scope, values map[*mapping.StructField]interface{}) (int64, error) {
	models, err := m.matching(s)
	if err != nil {
		return 0, err
	}
	for field := range values {
		if field.IsRelationship() || field.IsPrimary() || field.Struct() != s.ModelStruct {
			return 0, errors.NewDetf(repository.ClassModel, "field: '%s' can't be updated in the model: '%s'", field, s.ModelStruct)
		}
	}
	// stored models are replaced with the updated copies so that the transaction snapshots stay intact.
	for _, model := range models {
		updated := copyModel(s.ModelStruct, model)
		for field, value := range values {
			if err := s.ModelStruct.SetFieldValue(updated, field, value); err != nil {
				return 0, err
			}
		}
		primary, err := s.ModelStruct.PrimaryValue(updated)
		if err != nil {
			return 0, err
		}
		m.cache.Set(m.key(s.ModelStruct, primary), updated, cache.NoExpiration)
	}
	return int64(len(models)), nil
}

// matching gets the stored models matching the scope filters and search.
func (m *Memory) matching(s *query.Scope) ([]interface{}, error) {
	if s.None {
		return nil, nil
	}
	prefix := s.ModelStruct.Collection() + ":"
	var models []interface{}
	for key, item := range m.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		ok, err := matchesScope(s, item.Object)
		if err != nil {
			return nil, err
		}
		if ok {
			models = append(models, item.Object)
		}
	}
	return models, nil
}

func (m *Memory) key(mStruct *mapping.ModelStruct, primary interface{}) string {
	return fmt.Sprintf("%s:%v", mStruct.Collection(), primary)
}

// copyModel copies the model's stored fields. The pointer fields are copied into new pointers and
// the relationship fields are not copied.
func copyModel(mStruct *mapping.ModelStruct, model interface{}) interface{} {
	src := reflect.ValueOf(model).Elem()
	dst := reflect.New(src.Type())
	dst.Elem().Set(src)
	for _, field := range mStruct.Fields() {
		fv := dst.Elem().FieldByIndex(field.Index())
		if field.IsRelationship() {
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}
		fv.Set(copyValue(fv))
	}
	return dst.Interface()
}

func copyValue(v reflect.Value) reflect.Value {
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return v
	}
	ptr := reflect.New(v.Type().Elem())
	ptr.Elem().Set(v.Elem())
	return ptr
}
