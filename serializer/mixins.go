package serializer

import (
	"context"
	"sort"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
)

// CreateMixin extends the Serializer with the nested writes on create.
type CreateMixin struct {
	Serializer
}

// Create creates the model with its relations within a single transaction. The relational fields are prepared
// first, then the model is created from the remaining scalar values and finally the collected
// relations are set.
func (c *CreateMixin) Create(ctx context.Context, d *db.DB, data *Data) (instance interface{}, err error) {
	err = d.RunInTransaction(ctx, nil, func(tx *db.DB) error {
		instance, err = createNested(ctx, tx, c.Serializer, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// UpdateMixin extends the Serializer with the nested writes on update.
type UpdateMixin struct {
	Serializer
}

// Update updates the model with its relations within a single transaction. The relational fields are prepared
// first, then the collected relations replace the current ones and finally the scalar values are saved.
func (u *UpdateMixin) Update(ctx context.Context, d *db.DB, instance interface{}, data *Data) (updated interface{}, err error) {
	err = d.RunInTransaction(ctx, nil, func(tx *db.DB) error {
		updated, err = updateNested(ctx, tx, u.Serializer, instance, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// NestedSerializer is the serializer with both the create and update nested writes.
type NestedSerializer struct {
	Serializer
}

// Nested composes the CreateMixin and UpdateMixin over the serializer 's'.
func Nested(s Serializer) *NestedSerializer {
	return &NestedSerializer{Serializer: s}
}

// Create implements Serializer interface.
func (n *NestedSerializer) Create(ctx context.Context, d *db.DB, data *Data) (interface{}, error) {
	return (&CreateMixin{Serializer: n.Serializer}).Create(ctx, d, data)
}

// Update implements Serializer interface.
func (n *NestedSerializer) Update(ctx context.Context, d *db.DB, instance interface{}, data *Data) (interface{}, error) {
	return (&UpdateMixin{Serializer: n.Serializer}).Update(ctx, d, instance, data)
}

// relations are the primary keys collected for the relation fields.
type relations struct {
	names []string
	pks   map[string][]interface{}
}

func (r *relations) add(name string, pks ...interface{}) {
	if r.pks == nil {
		r.pks = map[string][]interface{}{}
	}
	if _, ok := r.pks[name]; !ok {
		r.names = append(r.names, name)
	}
	r.pks[name] = append(r.pks[name], pks...)
}

func createNested(ctx context.Context, d *db.DB, s Serializer, data *Data) (interface{}, error) {
	scalars, related, err := prepareRelationalFields(ctx, d, s, data)
	if err != nil {
		return nil, err
	}
	instance, err := s.Create(ctx, d, scalars)
	if err != nil {
		return nil, err
	}
	if err = saveRelations(ctx, d, s, instance, related); err != nil {
		return nil, err
	}
	return instance, nil
}

func updateNested(ctx context.Context, d *db.DB, s Serializer, instance interface{}, data *Data) (interface{}, error) {
	scalars, related, err := prepareRelationalFields(ctx, d, s, data)
	if err != nil {
		return nil, err
	}
	if err = saveRelations(ctx, d, s, instance, related); err != nil {
		return nil, err
	}
	return s.Update(ctx, d, instance, scalars)
}

// prepareRelationalFields walks over the initial payload keys:
//	- the nested list fields children are created and their primary keys collected for the relation,
//	- the '_ids' fields primary keys are collected for the relation named without the suffix,
//	- the nested single field child is created and its primary key is set as the 'belongs to' foreign key.
// The collected relations are removed from the returned scalar data.
func prepareRelationalFields(ctx context.Context, d *db.DB, s Serializer, data *Data) (*Data, *relations, error) {
	scalars := data.Copy()
	related := &relations{}

	for _, name := range data.InitialKeys() {
		field, ok := s.FieldByName(name)
		if !ok || field.ReadOnly {
			continue
		}
		value, validated := scalars.Validated[field.Source]
		if !validated {
			continue
		}
		switch {
		case field.Kind == KindNestedList:
			children, _ := value.([]*Data)
			for _, child := range children {
				pk, err := createChild(ctx, d, field, child)
				if err != nil {
					return nil, nil, err
				}
				related.add(field.Source, pk)
			}
			if len(children) == 0 {
				related.add(field.Source)
			}
		case strings.HasSuffix(name, annotation.IDsSuffix):
			relation := name[:strings.LastIndex(name, annotation.IDsSuffix)]
			if field.Kind == KindPrimaryKeyIDs {
				relation = field.Source
			}
			pks, _ := value.([]interface{})
			related.add(relation, pks...)
		case field.Kind == KindNested:
			delete(scalars.Validated, field.Source)
			if field.model == nil {
				return nil, nil, errors.NewDetf(ClassInvalidRelation, "nested field: '%s' is not a 'belongs to' relation", field.Name)
			}
			if value == nil {
				scalars.Validated[field.model.NeuronName()] = nil
				continue
			}
			child, _ := value.(*Data)
			pk, err := createChild(ctx, d, field, child)
			if err != nil {
				return nil, nil, err
			}
			scalars.Validated[field.model.NeuronName()] = pk
		}
	}
	for _, name := range related.names {
		delete(scalars.Validated, name)
	}
	return scalars, related, nil
}

func createChild(ctx context.Context, d *db.DB, field *Field, child *Data) (interface{}, error) {
	if child == nil {
		return nil, errors.NewDetf(ClassInvalidRelation, "nested field: '%s' have no validated data", field.Name)
	}
	model, err := field.Child.Create(ctx, d, child)
	if err != nil {
		return nil, err
	}
	return field.Child.ModelStruct().PrimaryValue(model)
}

// saveRelations replaces the instance relations with the collected primary keys.
func saveRelations(ctx context.Context, d *db.DB, s Serializer, instance interface{}, related *relations) error {
	names := append([]string{}, related.names...)
	sort.Strings(names)
	for _, name := range names {
		relation, ok := s.ModelStruct().RelationByName(name)
		if !ok {
			return errors.NewDetf(ClassInvalidRelation, "relation: '%s' not found in the model: '%s'", name, s.ModelStruct())
		}
		if err := d.SetRelations(ctx, instance, relation, related.pks[name]...); err != nil {
			return err
		}
	}
	return nil
}
