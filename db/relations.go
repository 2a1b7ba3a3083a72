package db

import (
	"context"
	"reflect"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
)

// AddRelations relates the 'owner' model with the models of the 'primaries' keys over the 'relation' field.
//	- Many2Many inserts the join model rows that doesn't exists yet,
//	- HasMany and HasOne sets the related models foreign key to the owner's primary key,
//	- BelongsTo sets and updates the owner's foreign key.
// All the related models must exist, otherwise ClassRelatedNotFound error is returned.
func (db *DB) AddRelations(ctx context.Context, owner interface{}, relation *mapping.StructField, primaries ...interface{}) error {
	mStruct, ownerPrimary, err := db.relationOwner(owner, relation)
	if err != nil {
		return err
	}
	if len(primaries) == 0 {
		return nil
	}
	rel := relation.Relationship()
	related := rel.Struct()

	primaries, err = db.existingPrimaries(ctx, related, primaries)
	if err != nil {
		if e, ok := err.(*errors.DetailedError); ok {
			e.WrapDetailsf("relation: '%s'", relation)
		}
		return err
	}

	switch rel.Kind() {
	case mapping.RelMany2Many:
		existing, err := db.joinValues(ctx, rel, ownerPrimary, primaries)
		if err != nil {
			return err
		}
		join := rel.JoinModel()
		for _, primary := range primaries {
			if _, ok := existing[primary]; ok {
				continue
			}
			if _, err = db.CreateJoin(ctx, join, rel.ForeignKey().Name(), ownerPrimary, rel.ManyToManyForeignKey().Name(), primary); err != nil {
				return err
			}
			existing[primary] = struct{}{}
		}
	case mapping.RelHasOne, mapping.RelHasMany:
		if rel.Kind() == mapping.RelHasOne && len(primaries) > 1 {
			return errors.NewDetf(ClassInvalidRelation, "has one relation: '%s' cannot relate multiple models", relation)
		}
		fkValue, err := mapping.ConvertFieldValue(rel.ForeignKey(), ownerPrimary)
		if err != nil {
			return err
		}
		s := query.NewScope(related)
		s.Filter(query.NewFilter(related.Primary(), query.OpIn, primaries...))
		repo, err := db.Repository(ctx, related)
		if err != nil {
			return err
		}
		if _, err = repo.UpdateWhere(ctx, s, map[*mapping.StructField]interface{}{rel.ForeignKey(): fkValue}); err != nil {
			return err
		}
	case mapping.RelBelongsTo:
		if len(primaries) > 1 {
			return errors.NewDetf(ClassInvalidRelation, "belongs to relation: '%s' cannot relate multiple models", relation)
		}
		if err = mStruct.SetFieldValue(owner, rel.ForeignKey(), primaries[0]); err != nil {
			return err
		}
		if err = db.Update(ctx, owner, rel.ForeignKey()); err != nil {
			return err
		}
	default:
		return errors.NewDetf(ClassInvalidRelation, "relation: '%s' of unknown kind", relation)
	}
	logger.Debug2f("Added %d relations: '%s' for the model: '%v'", len(primaries), relation, ownerPrimary)
	return nil
}

// ClearRelations removes all the 'relation' relationships of the 'owner' model.
//	- Many2Many deletes the owner's join model rows,
//	- HasMany and HasOne clears the related models foreign key (nil or zero value),
//	- BelongsTo clears and updates the owner's foreign key.
func (db *DB) ClearRelations(ctx context.Context, owner interface{}, relation *mapping.StructField) error {
	mStruct, ownerPrimary, err := db.relationOwner(owner, relation)
	if err != nil {
		return err
	}
	rel := relation.Relationship()
	switch rel.Kind() {
	case mapping.RelMany2Many:
		s, err := ownerScope(rel.JoinModel(), rel.ForeignKey(), ownerPrimary)
		if err != nil {
			return err
		}
		if _, err = db.DeleteWhere(ctx, s); err != nil {
			return err
		}
	case mapping.RelHasOne, mapping.RelHasMany:
		s, err := ownerScope(rel.Struct(), rel.ForeignKey(), ownerPrimary)
		if err != nil {
			return err
		}
		repo, err := db.Repository(ctx, rel.Struct())
		if err != nil {
			return err
		}
		if _, err = repo.UpdateWhere(ctx, s, map[*mapping.StructField]interface{}{rel.ForeignKey(): clearedValue(rel.ForeignKey())}); err != nil {
			return err
		}
	case mapping.RelBelongsTo:
		if err = mStruct.SetFieldZero(owner, rel.ForeignKey()); err != nil {
			return err
		}
		if err = db.Update(ctx, owner, rel.ForeignKey()); err != nil {
			return err
		}
	default:
		return errors.NewDetf(ClassInvalidRelation, "relation: '%s' of unknown kind", relation)
	}
	logger.Debug2f("Cleared relations: '%s' for the model: '%v'", relation, ownerPrimary)
	return nil
}

// SetRelations replaces the 'relation' relationships of the 'owner' with the models of the 'primaries' keys.
func (db *DB) SetRelations(ctx context.Context, owner interface{}, relation *mapping.StructField, primaries ...interface{}) error {
	if err := db.ClearRelations(ctx, owner, relation); err != nil {
		return err
	}
	return db.AddRelations(ctx, owner, relation, primaries...)
}

// RelatedPrimaryKeys gets the primary keys of the models related with the 'owner' by the 'relation'.
// The keys are ordered by the related (or join) models primary keys.
func (db *DB) RelatedPrimaryKeys(ctx context.Context, owner interface{}, relation *mapping.StructField) ([]interface{}, error) {
	mStruct, ownerPrimary, err := db.relationOwner(owner, relation)
	if err != nil {
		return nil, err
	}
	rel := relation.Relationship()
	switch rel.Kind() {
	case mapping.RelBelongsTo:
		fk, err := mStruct.FieldValue(owner, rel.ForeignKey())
		if err != nil {
			return nil, err
		}
		if fk == nil || reflect.ValueOf(fk).IsZero() {
			return []interface{}{}, nil
		}
		return []interface{}{fk}, nil
	case mapping.RelHasOne, mapping.RelHasMany:
		s, err := ownerScope(rel.Struct(), rel.ForeignKey(), ownerPrimary)
		if err != nil {
			return nil, err
		}
		models, err := db.Find(ctx, s)
		if err != nil {
			return nil, err
		}
		return fieldValues(rel.Struct(), models, rel.Struct().Primary())
	case mapping.RelMany2Many:
		s, err := ownerScope(rel.JoinModel(), rel.ForeignKey(), ownerPrimary)
		if err != nil {
			return nil, err
		}
		models, err := db.Find(ctx, s)
		if err != nil {
			return nil, err
		}
		return fieldValues(rel.JoinModel(), models, rel.ManyToManyForeignKey())
	}
	return nil, errors.NewDetf(ClassInvalidRelation, "relation: '%s' of unknown kind", relation)
}

// RelatedModels gets the models related with the 'owner' by the 'relation' ordered by their primary keys.
func (db *DB) RelatedModels(ctx context.Context, owner interface{}, relation *mapping.StructField) ([]interface{}, error) {
	primaries, err := db.RelatedPrimaryKeys(ctx, owner, relation)
	if err != nil {
		return nil, err
	}
	if len(primaries) == 0 {
		return []interface{}{}, nil
	}
	related := relation.Relationship().Struct()
	s := query.NewScope(related)
	s.Filter(query.NewFilter(related.Primary(), query.OpIn, primaries...))
	return db.Find(ctx, s)
}

// CreateJoin creates the 'joinModel' row with the 'leftField' and 'rightField' values set.
// The fields are found by their Go or neuron names.
func (db *DB) CreateJoin(ctx context.Context, joinModel *mapping.ModelStruct, leftField string, leftValue interface{}, rightField string, rightValue interface{}) (interface{}, error) {
	model := joinModel.NewModel()
	for _, fv := range []struct {
		name  string
		value interface{}
	}{{leftField, leftValue}, {rightField, rightValue}} {
		field, ok := joinModel.FieldByName(fv.name)
		if !ok || field.IsRelationship() {
			return nil, errors.NewDetf(ClassInvalidRelation, "field: '%s' not found in the join model: '%s'", fv.name, joinModel)
		}
		if err := joinModel.SetFieldValue(model, field, fv.value); err != nil {
			return nil, err
		}
	}
	if err := db.Create(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (db *DB) relationOwner(owner interface{}, relation *mapping.StructField) (*mapping.ModelStruct, interface{}, error) {
	mStruct, err := db.ModelStruct(owner)
	if err != nil {
		return nil, nil, err
	}
	if relation == nil || !relation.IsRelationship() || relation.Struct() != mStruct {
		return nil, nil, errors.NewDetf(ClassInvalidRelation, "field: '%v' is not a relation of the model: '%s'", relation, mStruct)
	}
	if mStruct.IsPrimaryZero(owner) {
		return nil, nil, errors.NewDetf(ClassInvalidModel, "model: '%s' have zero primary key", mStruct)
	}
	primary, err := mStruct.PrimaryValue(owner)
	if err != nil {
		return nil, nil, err
	}
	return mStruct, primary, nil
}

// existingPrimaries converts the 'primaries' into the related primary key type and checks if
// all the related models exists. Duplicated keys are removed.
func (db *DB) existingPrimaries(ctx context.Context, related *mapping.ModelStruct, primaries []interface{}) ([]interface{}, error) {
	var unique []interface{}
	seen := map[interface{}]struct{}{}
	for _, primary := range primaries {
		converted, err := related.ConvertPrimary(primary)
		if err != nil || converted == nil {
			return nil, errors.NewDetf(ClassInvalidRelation, "invalid primary key: '%v' for the model: '%s'", primary, related)
		}
		if _, ok := seen[converted]; ok {
			continue
		}
		seen[converted] = struct{}{}
		unique = append(unique, converted)
	}

	s := query.NewScope(related)
	s.Filter(query.NewFilter(related.Primary(), query.OpIn, unique...))
	models, err := db.Find(ctx, s)
	if err != nil {
		return nil, err
	}
	found, err := fieldValues(related, models, related.Primary())
	if err != nil {
		return nil, err
	}
	if len(found) == len(unique) {
		return unique, nil
	}
	foundSet := map[interface{}]struct{}{}
	for _, primary := range found {
		foundSet[primary] = struct{}{}
	}
	for _, primary := range unique {
		if _, ok := foundSet[primary]; !ok {
			return nil, errors.NewDetf(ClassRelatedNotFound, "model: '%s' with primary key: '%v' not found", related, primary)
		}
	}
	return unique, nil
}

// joinValues gets the set of related primary keys already joined with the owner.
func (db *DB) joinValues(ctx context.Context, rel *mapping.Relationship, ownerPrimary interface{}, primaries []interface{}) (map[interface{}]struct{}, error) {
	s, err := ownerScope(rel.JoinModel(), rel.ForeignKey(), ownerPrimary)
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(primaries))
	for i, primary := range primaries {
		if values[i], err = mapping.ConvertFieldValue(rel.ManyToManyForeignKey(), primary); err != nil {
			return nil, err
		}
	}
	s.Filter(query.NewFilter(rel.ManyToManyForeignKey(), query.OpIn, values...))
	models, err := db.Find(ctx, s)
	if err != nil {
		return nil, err
	}
	joined, err := fieldValues(rel.JoinModel(), models, rel.ManyToManyForeignKey())
	if err != nil {
		return nil, err
	}
	existing := map[interface{}]struct{}{}
	for _, value := range joined {
		converted, err := rel.Struct().ConvertPrimary(value)
		if err != nil {
			return nil, err
		}
		existing[converted] = struct{}{}
	}
	return existing, nil
}

func ownerScope(mStruct *mapping.ModelStruct, foreignKey *mapping.StructField, ownerPrimary interface{}) (*query.Scope, error) {
	value, err := mapping.ConvertFieldValue(foreignKey, ownerPrimary)
	if err != nil {
		return nil, err
	}
	s := query.NewScope(mStruct)
	s.Filter(query.NewFilter(foreignKey, query.OpExact, value))
	return s, nil
}

// clearedValue is nil for the nullable foreign keys and the zero value for the others.
func clearedValue(field *mapping.StructField) interface{} {
	if field.IsPtr() {
		return nil
	}
	return reflect.Zero(field.BaseType()).Interface()
}
