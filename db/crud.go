package db

import (
	"context"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
)

// Create inserts the 'model' into its repository. The relationship fields are not stored.
func (db *DB) Create(ctx context.Context, model interface{}) error {
	mStruct, err := db.ModelStruct(model)
	if err != nil {
		return err
	}
	repo, err := db.Repository(ctx, mStruct)
	if err != nil {
		return err
	}
	if err = repo.Create(ctx, mStruct, model); err != nil {
		return err
	}
	logger.Debug2f("Created model: '%s' with primary: '%v'", mStruct, primaryString(mStruct, model))
	return nil
}

// Update updates the 'fields' of the 'model'. If no fields are provided all the stored fields are updated.
func (db *DB) Update(ctx context.Context, model interface{}, fields ...*mapping.StructField) error {
	mStruct, err := db.ModelStruct(model)
	if err != nil {
		return err
	}
	if mStruct.IsPrimaryZero(model) {
		return errors.NewDetf(ClassInvalidModel, "cannot update the model: '%s' with zero primary key", mStruct)
	}
	for _, field := range fields {
		if field.IsRelationship() {
			return errors.NewDetf(ClassInvalidRelation, "relationship field: '%s' cannot be updated directly", field)
		}
	}
	repo, err := db.Repository(ctx, mStruct)
	if err != nil {
		return err
	}
	if err = repo.Update(ctx, mStruct, model, fields...); err != nil {
		return err
	}
	logger.Debug2f("Updated model: '%s' with primary: '%v'", mStruct, primaryString(mStruct, model))
	return nil
}

// Delete deletes the 'model'. The model's many2many join rows are deleted and the
// has one / has many related models foreign keys are cleared.
func (db *DB) Delete(ctx context.Context, model interface{}) error {
	mStruct, err := db.ModelStruct(model)
	if err != nil {
		return err
	}
	if mStruct.IsPrimaryZero(model) {
		return errors.NewDetf(ClassInvalidModel, "cannot delete the model: '%s' with zero primary key", mStruct)
	}
	for _, relation := range mStruct.RelationFields() {
		if relation.Relationship().Kind() == mapping.RelBelongsTo {
			continue
		}
		if err = db.ClearRelations(ctx, model, relation); err != nil {
			return err
		}
	}
	primary, err := mStruct.PrimaryValue(model)
	if err != nil {
		return err
	}
	repo, err := db.Repository(ctx, mStruct)
	if err != nil {
		return err
	}
	return repo.Delete(ctx, mStruct, primary)
}

// DeleteWhere deletes all the models matching the scope.
func (db *DB) DeleteWhere(ctx context.Context, s *query.Scope) (int64, error) {
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
	return repo.DeleteWhere(ctx, reduced)
}

func primaryString(mStruct *mapping.ModelStruct, model interface{}) interface{} {
	primary, err := mStruct.PrimaryValue(model)
	if err != nil {
		return "<invalid>"
	}
	return primary
}
