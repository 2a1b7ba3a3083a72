package serializer

import (
	"context"

	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
)

// Represent implements Serializer interface. The write only fields are not represented.
func (s *ModelSerializer) Represent(ctx context.Context, d *db.DB, instance interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.fields))
	for _, field := range s.fields {
		if field.WriteOnly {
			continue
		}
		value, err := s.representField(ctx, d, field, instance)
		if err != nil {
			return nil, err
		}
		out[field.Name] = value
	}
	return out, nil
}

func (s *ModelSerializer) representField(ctx context.Context, d *db.DB, field *Field, instance interface{}) (interface{}, error) {
	switch field.Kind {
	case KindPrimaryKeyIDs:
		return d.RelatedPrimaryKeys(ctx, instance, field.relation)
	case KindNested:
		related, err := s.relatedSingle(ctx, d, field, instance)
		if err != nil || related == nil {
			return nil, err
		}
		return field.Child.Represent(ctx, d, related)
	case KindNestedList:
		related, err := d.RelatedModels(ctx, instance, field.relation)
		if err != nil {
			return nil, err
		}
		list := make([]interface{}, len(related))
		for i, model := range related {
			if list[i], err = field.Child.Represent(ctx, d, model); err != nil {
				return nil, err
			}
		}
		return list, nil
	case KindPrimaryKeyRelated:
		if field.model == nil {
			pks, err := d.RelatedPrimaryKeys(ctx, instance, field.relation)
			if err != nil || len(pks) == 0 {
				return nil, err
			}
			return pks[0], nil
		}
	}
	return s.mStruct.FieldValue(instance, field.model)
}

// relatedSingle gets the model related by the single relation field, nil if not related.
func (s *ModelSerializer) relatedSingle(ctx context.Context, d *db.DB, field *Field, instance interface{}) (interface{}, error) {
	rel := field.relation.Relationship()
	if rel.Kind() == mapping.RelBelongsTo {
		fk, err := s.mStruct.FieldValue(instance, rel.ForeignKey())
		if err != nil || fk == nil {
			return nil, err
		}
		related, err := d.Get(ctx, rel.Struct(), fk)
		if err != nil {
			if errors.IsClass(err, repository.ClassNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return related, nil
	}
	models, err := d.RelatedModels(ctx, instance, field.relation)
	if err != nil || len(models) == 0 {
		return nil, err
	}
	return models[0], nil
}
