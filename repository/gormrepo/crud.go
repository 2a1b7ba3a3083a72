package gormrepo

import (
	"context"

	"github.com/jinzhu/gorm"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// Create implements repository.Repository interface.
func (g *GORMRepository) Create(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}) error {
	if _, err := g.model(mStruct); err != nil {
		return err
	}
	if _, err := repository.AssignStringPrimary(mStruct, model); err != nil {
		return err
	}
	if err := g.NewDB().Create(model).Error; err != nil {
		return g.convertError(err, "create", mStruct)
	}
	logger.Debug3f("Created model: '%s'", mStruct)
	return nil
}

// Get implements repository.Repository interface.
func (g *GORMRepository) Get(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error) {
	gm, err := g.model(mStruct)
	if err != nil {
		return nil, err
	}
	converted, err := mStruct.ConvertPrimary(primary)
	if err != nil {
		return nil, errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", mStruct, primary)
	}
	where, err := primaryWhere(gm)
	if err != nil {
		return nil, err
	}
	model := mStruct.NewModel()
	if err = g.NewDB().Where(where, converted).First(model).Error; err != nil {
		return nil, g.convertError(err, "get", mStruct)
	}
	return model, nil
}

// Find implements repository.Repository interface.
func (g *GORMRepository) Find(ctx context.Context, s *query.Scope) ([]interface{}, error) {
	if s.None {
		return nil, nil
	}
	gm, err := g.model(s.ModelStruct)
	if err != nil {
		return nil, err
	}
	db, err := g.applyScope(g.NewDB(), gm, s)
	if err != nil {
		return nil, err
	}
	if db, err = g.applySorts(db, gm, s); err != nil {
		return nil, err
	}
	if s.Distinct {
		db = db.Select("DISTINCT " + gm.quote(gm.table) + ".*")
	}
	if s.Pagination != nil {
		db = db.Limit(s.Pagination.Limit).Offset(s.Pagination.Offset)
	}

	slice := s.ModelStruct.NewSlice()
	if err = db.Find(slice).Error; err != nil {
		return nil, g.convertError(err, "find", s.ModelStruct)
	}
	models := s.ModelStruct.Models(slice)
	logger.Debug3f("Found: %d models for: %s", len(models), s)
	return models, nil
}

// Count implements repository.Repository interface.
func (g *GORMRepository) Count(ctx context.Context, s *query.Scope) (int64, error) {
	if s.None {
		return 0, nil
	}
	gm, err := g.model(s.ModelStruct)
	if err != nil {
		return 0, err
	}
	db, err := g.applyScope(g.NewDB().Table(gm.table), gm, s)
	if err != nil {
		return 0, err
	}
	var count int64
	if err = db.Count(&count).Error; err != nil {
		return 0, g.convertError(err, "count", s.ModelStruct)
	}
	return count, nil
}

// Update implements repository.Repository interface.
func (g *GORMRepository) Update(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}, fields ...*mapping.StructField) error {
	gm, err := g.model(mStruct)
	if err != nil {
		return err
	}
	primary, err := mStruct.PrimaryValue(model)
	if err != nil {
		return err
	}
	values, err := columnValues(gm, model, repository.UpdatedFields(mStruct, fields))
	if err != nil {
		return err
	}
	where, err := primaryWhere(gm)
	if err != nil {
		return err
	}
	db := g.NewDB().Table(gm.table).Where(where, primary).UpdateColumns(values)
	if db.Error != nil {
		return g.convertError(db.Error, "update", mStruct)
	}
	if db.RowsAffected == 0 {
		// some drivers count only the changed rows.
		if _, err = g.Get(ctx, mStruct, primary); err != nil {
			return err
		}
	}
	logger.Debug3f("Updated model: '%s' with primary: '%v'", mStruct, primary)
	return nil
}

// Delete implements repository.Repository interface.
func (g *GORMRepository) Delete(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) error {
	gm, err := g.model(mStruct)
	if err != nil {
		return err
	}
	converted, err := mStruct.ConvertPrimary(primary)
	if err != nil {
		return errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", mStruct, primary)
	}
	where, err := primaryWhere(gm)
	if err != nil {
		return err
	}
	db := g.NewDB().Where(where, converted).Delete(mStruct.NewModel())
	if db.Error != nil {
		return g.convertError(db.Error, "delete", mStruct)
	}
	if db.RowsAffected == 0 {
		return errors.NewDetf(repository.ClassNotFound, "model: '%s' with primary key: '%v' not found", mStruct, primary)
	}
	return nil
}

// DeleteWhere implements repository.Repository interface.
func (g *GORMRepository) DeleteWhere(ctx context.Context, s *query.Scope) (int64, error) {
	if s.None {
		return 0, nil
	}
	gm, err := g.model(s.ModelStruct)
	if err != nil {
		return 0, err
	}
	db, err := g.applyScope(g.NewDB(), gm, s)
	if err != nil {
		return 0, err
	}
	db = db.Delete(s.ModelStruct.NewModel())
	if db.Error != nil {
		return 0, g.convertError(db.Error, "delete", s.ModelStruct)
	}
	return db.RowsAffected, nil
}

// UpdateWhere implements repository.Repository interface.
func (g *GORMRepository) UpdateWhere(ctx context.Context, s *query.Scope, values map[*mapping.StructField]interface{}) (int64, error) {
	if s.None || len(values) == 0 {
		return 0, nil
	}
	gm, err := g.model(s.ModelStruct)
	if err != nil {
		return 0, err
	}
	columns := make(map[string]interface{}, len(values))
	for field, value := range values {
		name, ok := gm.columns[field]
		if !ok || field.IsPrimary() {
			return 0, errors.NewDetf(repository.ClassModel, "field: '%s' can't be updated in the table: '%s'", field, gm.table)
		}
		if value != nil {
			if value, err = mapping.ConvertFieldValue(field, value); err != nil {
				return 0, err
			}
		}
		columns[name] = value
	}
	db, err := g.applyScope(g.NewDB().Table(gm.table), gm, s)
	if err != nil {
		return 0, err
	}
	db = db.UpdateColumns(columns)
	if db.Error != nil {
		return 0, g.convertError(db.Error, "update", s.ModelStruct)
	}
	return db.RowsAffected, nil
}

func (g *GORMRepository) convertError(err error, operation string, mStruct *mapping.ModelStruct) error {
	if gorm.IsRecordNotFoundError(err) {
		return errors.NewDetf(repository.ClassNotFound, "model: '%s' not found", mStruct)
	}
	logger.Errorf("%s '%s' failed: %v", operation, mStruct, err)
	e := errors.NewDetf(repository.ClassInternal, "%s '%s' failed", operation, mStruct)
	e.SetDetails(err.Error())
	e.Operation = operation
	return e
}
