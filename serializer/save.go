package serializer

import (
	"context"
	"sort"

	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
)

// Create implements Serializer interface. It creates the model from the scalar validated values.
// The relational values results in the ClassNestedWritesUnsupported error, use the nested write mixins for them.
func (s *ModelSerializer) Create(ctx context.Context, d *db.DB, data *Data) (interface{}, error) {
	model := s.mStruct.NewModel()
	if _, err := s.assign(ctx, d, model, data.Validated); err != nil {
		return nil, err
	}
	if err := d.Create(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// Update implements Serializer interface. It updates the model's scalar fields present in the validated data.
func (s *ModelSerializer) Update(ctx context.Context, d *db.DB, instance interface{}, data *Data) (interface{}, error) {
	fields, err := s.assign(ctx, d, instance, data.Validated)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return instance, nil
	}
	if err = d.Update(ctx, instance, fields...); err != nil {
		return nil, err
	}
	return instance, nil
}

// assign sets the validated values in the 'model'. The keys are the serializer fields sources
// or the model field names. Returns the assigned model fields.
func (s *ModelSerializer) assign(ctx context.Context, d *db.DB, model interface{}, validated map[string]interface{}) ([]*mapping.StructField, error) {
	keys := make([]string, 0, len(validated))
	for key := range validated {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fields []*mapping.StructField
	for _, key := range keys {
		value := validated[key]
		field, related, err := s.storedField(key)
		if err != nil {
			return nil, err
		}
		if related != nil && value != nil {
			if err = relatedExists(ctx, d, related, value); err != nil {
				if e, ok := err.(*errors.DetailedError); ok {
					e.WrapDetailsf("field: '%s'", key)
				}
				return nil, err
			}
		}
		if err = s.mStruct.SetFieldValue(model, field, value); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// storedField gets the model field for the validated 'key'. For the foreign keys it returns also
// the related model structure.
func (s *ModelSerializer) storedField(key string) (*mapping.StructField, *mapping.ModelStruct, error) {
	for _, field := range s.fields {
		if field.Source != key {
			continue
		}
		if field.Kind.IsRelational() {
			return nil, nil, errors.NewDetf(ClassNestedWritesUnsupported, "serializer: '%s' doesn't support nested writes for the field: '%s'", s.mStruct, field.Name)
		}
		if field.model == nil {
			return nil, nil, errors.NewDetf(ClassInvalidField, "field: '%s' is not writable", field.Name)
		}
		if field.relation != nil {
			return field.model, field.relation.Relationship().Struct(), nil
		}
		return field.model, foreignKeyModel(s.mStruct, field.model), nil
	}
	field, ok := modelField(s.mStruct, key)
	if !ok {
		return nil, nil, errors.NewDetf(ClassInvalidField, "field: '%s' not found in the model: '%s'", key, s.mStruct)
	}
	if field.IsRelationship() {
		return nil, nil, errors.NewDetf(ClassNestedWritesUnsupported, "serializer: '%s' doesn't support nested writes for the field: '%s'", s.mStruct, key)
	}
	return field, foreignKeyModel(s.mStruct, field), nil
}

// foreignKeyModel gets the related model of the 'belongs to' relation with the 'fk' foreign key.
func foreignKeyModel(mStruct *mapping.ModelStruct, fk *mapping.StructField) *mapping.ModelStruct {
	if fk.Kind() != mapping.KindForeignKey {
		return nil
	}
	for _, relation := range mStruct.RelationFields() {
		rel := relation.Relationship()
		if rel.Kind() == mapping.RelBelongsTo && rel.ForeignKey() == fk {
			return rel.Struct()
		}
	}
	return nil
}

func relatedExists(ctx context.Context, d *db.DB, related *mapping.ModelStruct, primary interface{}) error {
	if _, err := d.Get(ctx, related, primary); err != nil {
		if errors.IsClass(err, repository.ClassNotFound) {
			return errors.NewDetf(db.ClassRelatedNotFound, "Invalid pk \"%v\" - object does not exist.", primary)
		}
		return err
	}
	return nil
}
