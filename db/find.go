package db

import (
	"context"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// Find finds the models matching the scope. The relationship filters are reduced into
// the filters over the model's own fields before the scope reaches the repository.
func (db *DB) Find(ctx context.Context, s *query.Scope) ([]interface{}, error) {
	if s.None {
		return []interface{}{}, nil
	}
	reduced, err := db.reduceScope(ctx, s)
	if err != nil {
		return nil, err
	}
	repo, err := db.Repository(ctx, s.ModelStruct)
	if err != nil {
		return nil, err
	}
	models, err := repo.Find(ctx, reduced)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []interface{}{}
	}
	return models, nil
}

// Count counts the models matching the scope filters and search.
func (db *DB) Count(ctx context.Context, s *query.Scope) (int64, error) {
	if s.None {
		return 0, nil
	}
	reduced, err := db.reduceScope(ctx, s)
	if err != nil {
		return 0, err
	}
	repo, err := db.Repository(ctx, s.ModelStruct)
	if err != nil {
		return 0, err
	}
	return repo.Count(ctx, reduced)
}

// Get gets the model with the 'primary' key value.
func (db *DB) Get(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	repo, err := db.Repository(ctx, mStruct)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, mStruct, primary)
}

// GetIn gets the model with the 'primary' key value that matches also the scope filters.
// It is used to get the models from the filtered querysets.
func (db *DB) GetIn(ctx context.Context, s *query.Scope, primary interface{}) (interface{}, error) {
	filtered := s.Copy()
	filtered.Pagination = nil
	filtered.Sorts = nil
	filtered.Search = nil
	filter, err := query.ParseKeyword(s.ModelStruct, query.NewKeyword(query.PrimaryKeyAlias, primary))
	if err != nil {
		return nil, errors.NewDetf(ClassInvalidModel, "invalid primary key value: '%v'", primary)
	}
	filtered.Filter(filter)
	models, err := db.Find(ctx, filtered)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", s.ModelStruct, primary)
	}
	return models[0], nil
}

// reduceScope creates the scope copy with the relationship filters reduced into the primary
// or foreign key 'in' filters.
func (db *DB) reduceScope(ctx context.Context, s *query.Scope) (*query.Scope, error) {
	var nested bool
	for _, filter := range s.Filters {
		if filter.IsNested() {
			nested = true
			break
		}
	}
	if !nested {
		return s, nil
	}
	reduced := s.Copy()
	for i, filter := range reduced.Filters {
		if !filter.IsNested() {
			continue
		}
		own, err := db.reduceFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		reduced.Filters[i] = own
	}
	return reduced, nil
}

// reduceFilter reduces the relationship filter into the filter on the owner's own field.
func (db *DB) reduceFilter(ctx context.Context, filter *query.FilterField) (*query.FilterField, error) {
	field := filter.StructField
	rel := field.Relationship()
	related := rel.Struct()
	nested := filter.Nested
	onRelatedPrimary := !nested.IsNested() && nested.StructField.IsPrimary()

	switch rel.Kind() {
	case mapping.RelBelongsTo:
		if onRelatedPrimary {
			reduced := nested.Copy()
			reduced.StructField = rel.ForeignKey()
			return reduced, nil
		}
		primaries, err := db.matchingValues(ctx, related, nested, related.Primary())
		if err != nil {
			return nil, err
		}
		return query.NewFilter(rel.ForeignKey(), query.OpIn, primaries...), nil
	case mapping.RelHasOne, mapping.RelHasMany:
		foreignKeys, err := db.matchingValues(ctx, related, nested, rel.ForeignKey())
		if err != nil {
			return nil, err
		}
		return query.NewFilter(field.Struct().Primary(), query.OpIn, foreignKeys...), nil
	case mapping.RelMany2Many:
		join := rel.JoinModel()
		var joinFilter *query.FilterField
		if onRelatedPrimary {
			joinFilter = nested.Copy()
			joinFilter.StructField = rel.ManyToManyForeignKey()
		} else {
			primaries, err := db.matchingValues(ctx, related, nested, related.Primary())
			if err != nil {
				return nil, err
			}
			joinFilter = query.NewFilter(rel.ManyToManyForeignKey(), query.OpIn, primaries...)
		}
		foreignKeys, err := db.matchingValues(ctx, join, joinFilter, rel.ForeignKey())
		if err != nil {
			return nil, err
		}
		return query.NewFilter(field.Struct().Primary(), query.OpIn, foreignKeys...), nil
	}
	return nil, errors.NewDetf(ClassInvalidRelation, "relationship field: '%s' with invalid relationship kind: '%s'", field, rel.Kind())
}

// matchingValues finds the 'mStruct' models matching the 'filter' and returns their unique, non nil 'field' values.
func (db *DB) matchingValues(ctx context.Context, mStruct *mapping.ModelStruct, filter *query.FilterField, field *mapping.StructField) ([]interface{}, error) {
	s := query.NewScope(mStruct)
	s.Filter(filter)
	models, err := db.Find(ctx, s)
	if err != nil {
		return nil, err
	}
	return fieldValues(mStruct, models, field)
}

func fieldValues(mStruct *mapping.ModelStruct, models []interface{}, field *mapping.StructField) ([]interface{}, error) {
	seen := map[interface{}]struct{}{}
	values := []interface{}{}
	for _, model := range models {
		value, err := mStruct.FieldValue(model, field)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values, nil
}
