package mapping

import (
	"reflect"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
)

// Collectioner is the interface used to get the collection name from the provided model.
type Collectioner interface {
	NeuronCollectionName() string
}

// ModelMap contains mapped models ( as reflect.Type ) to its ModelStruct representation.
type ModelMap struct {
	models      map[reflect.Type]*ModelStruct
	collections map[string]*ModelStruct
	naming      NamingConvention
}

// NewModelMap creates new model map with the 'naming' convention.
func NewModelMap(naming NamingConvention) *ModelMap {
	if naming == 0 {
		naming = SnakeCase
	}
	return &ModelMap{
		models:      make(map[reflect.Type]*ModelStruct),
		collections: make(map[string]*ModelStruct),
		naming:      naming,
	}
}

// NamingConvention returns the model map naming convention.
func (m *ModelMap) NamingConvention() NamingConvention {
	return m.naming
}

// Get gets the *ModelStruct for the provided 'model' type.
func (m *ModelMap) Get(model reflect.Type) *ModelStruct {
	for model.Kind() == reflect.Ptr || model.Kind() == reflect.Slice {
		model = model.Elem()
	}
	return m.models[model]
}

// GetByCollection gets *ModelStruct by the 'collection'.
func (m *ModelMap) GetByCollection(collection string) *ModelStruct {
	return m.collections[collection]
}

// GetModelStruct gets the model struct for provided 'model' instance.
func (m *ModelMap) GetModelStruct(model interface{}) (*ModelStruct, error) {
	if mStruct, ok := model.(*ModelStruct); ok {
		return mStruct, nil
	}
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, errors.NewDet(ClassModelNotMapped, "nil model provided")
	}
	mStruct := m.Get(t)
	if mStruct == nil {
		return nil, errors.NewDetf(ClassModelNotMapped, "model: '%s' is not mapped", t.String())
	}
	return mStruct, nil
}

// ModelByName gets the model by its struct name or collection name.
func (m *ModelMap) ModelByName(name string) *ModelStruct {
	if mStruct, ok := m.collections[name]; ok {
		return mStruct
	}
	for _, model := range m.models {
		if model.Type().Name() == name {
			return model
		}
	}
	return nil
}

// Models returns all models set within given model map, sorted by the collection name.
func (m *ModelMap) Models() []*ModelStruct {
	structs := make([]*ModelStruct, 0, len(m.models))
	for _, model := range m.models {
		structs = append(structs, model)
	}
	sort.Slice(structs, func(i, j int) bool {
		return structs[i].collection < structs[j].collection
	})
	return structs
}

// RegisterModels registers the models within the model map container.
// The relationships are resolved after all provided models are mapped, thus
// the related and join models should be registered within the same call or before.
func (m *ModelMap) RegisterModels(models ...interface{}) error {
	for _, model := range models {
		mStruct, err := m.buildModelStruct(model)
		if err != nil {
			return err
		}
		if err = m.set(mStruct); err != nil {
			return err
		}
		log.Debug2f("Registered model: '%s'", mStruct.Collection())
	}

	for _, mStruct := range m.Models() {
		for _, relField := range mStruct.RelationFields() {
			if relField.relationship.mStruct != nil {
				continue
			}
			if err := m.resolveRelationship(mStruct, relField); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ModelMap) set(value *ModelStruct) error {
	if _, ok := m.models[value.modelType]; ok {
		return errors.NewDetf(ClassModelAlreadyRegistered, "model: %s already registered", value.Type())
	}
	if _, ok := m.collections[value.collection]; ok {
		return errors.NewDetf(ClassModelAlreadyRegistered, "collection: %s already registered", value.collection)
	}
	m.models[value.modelType] = value
	m.collections[value.collection] = value
	return nil
}

func (m *ModelMap) buildModelStruct(model interface{}) (*ModelStruct, error) {
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, errors.NewDet(ClassModelMapping, "nil model provided")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.NewDetf(ClassModelMapping, "provided model: '%s' is not a struct", t.String())
	}

	mStruct := &ModelStruct{
		modelType: t,
		byName:    make(map[string]*StructField),
	}
	if collectioner, ok := model.(Collectioner); ok {
		mStruct.collection = collectioner.NeuronCollectionName()
	} else {
		mStruct.collection = m.naming.Namer(inflection.Plural(t.Name()))
	}

	if err := m.mapFields(mStruct, t, nil); err != nil {
		return nil, err
	}

	if mStruct.primary == nil {
		return nil, errors.NewDetf(ClassModelMapping, "model: '%s' have no primary field defined", t.Name())
	}
	return mStruct, nil
}

func (m *ModelMap) mapFields(mStruct *ModelStruct, t reflect.Type, index []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fieldIndex := append(append([]int{}, index...), i)

		// embedded structs are flattened.
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Type != timeType {
			if err := m.mapFields(mStruct, sf.Type, fieldIndex); err != nil {
				return err
			}
			continue
		}
		if sf.PkgPath != "" {
			continue
		}

		tags := extractFieldTags(sf, annotation.Neuron)
		if len(tags) == 1 && tags[0].Key == "-" {
			continue
		}

		field := &StructField{
			mStruct:      mStruct,
			reflectField: sf,
			index:        fieldIndex,
			tags:         tags,
			neuronName:   m.naming.Namer(sf.Name),
		}
		if nameTag, ok := findTag(tags, annotation.Name); ok && len(nameTag.Values) > 0 {
			field.neuronName = nameTag.Values[0]
		}

		if err := m.setFieldKind(field); err != nil {
			return err
		}

		if field.kind == KindPrimary {
			if mStruct.primary != nil {
				return errors.NewDetf(ClassModelMapping, "model: '%s' have multiple primary fields", t.Name())
			}
			mStruct.primary = field
		}
		mStruct.addField(field)
	}
	return nil
}

func (m *ModelMap) setFieldKind(field *StructField) error {
	typeTag, ok := findTag(field.tags, annotation.FieldType)
	if ok && len(typeTag.Values) > 0 {
		switch typeTag.Values[0] {
		case annotation.Primary, annotation.PrimaryFull, annotation.PrimaryShort, annotation.ID:
			field.kind = KindPrimary
		case annotation.Attribute, annotation.AttributeFull:
			field.kind = KindAttribute
		case annotation.ForeignKey, annotation.ForeignKeyFull, annotation.ForeignKeyShort:
			field.kind = KindForeignKey
		case annotation.Relation, annotation.RelationFull:
			field.kind = KindRelationship
		default:
			return errors.NewDetf(ClassModelMapping, "unknown field type: '%s' for the field: '%s'", typeTag.Values[0], field.Name())
		}
	} else {
		baseType := field.BaseType()
		switch {
		case field.Name() == "ID":
			field.kind = KindPrimary
		case baseType.Kind() == reflect.Struct && baseType != timeType && (field.IsPtr() || field.IsSlice()):
			field.kind = KindRelationship
		default:
			field.kind = KindAttribute
		}
	}

	if field.kind != KindRelationship {
		return nil
	}
	if field.BaseType().Kind() != reflect.Struct {
		return errors.NewDetf(ClassModelMapping, "relationship field: '%s' is not a struct", field.Name())
	}
	rel := &Relationship{}
	if m2m, ok := findTag(field.tags, annotation.ManyToMany); ok {
		if !field.IsSlice() {
			return errors.NewDetf(ClassModelMapping, "many2many relationship field: '%s' is not a slice", field.Name())
		}
		rel.kind = RelMany2Many
		if len(m2m.Values) > 0 {
			rel.joinModelName = m2m.Values[0]
		}
	}
	if fk, ok := findTag(field.tags, annotation.ForeignKey, annotation.ForeignKeyFull, annotation.ForeignKeyShort); ok {
		rel.foreignNames = fk.Values
	}
	field.relationship = rel
	return nil
}

func (m *ModelMap) resolveRelationship(owner *ModelStruct, field *StructField) error {
	rel := field.relationship
	related := m.models[field.BaseType()]
	if related == nil {
		return errors.NewDetf(ClassModelNotMapped, "related model: '%s' for the field: '%s' is not mapped", field.BaseType().Name(), field)
	}
	rel.mStruct = related

	foreignName := func(i int, def string) string {
		if len(rel.foreignNames) > i && rel.foreignNames[i] != annotation.DefaultForeign && rel.foreignNames[i] != "" {
			return rel.foreignNames[i]
		}
		return def
	}

	switch {
	case rel.kind == RelMany2Many:
		joinName := rel.joinModelName
		if joinName == "" {
			joinName = inflection.Plural(exportedName(owner) + exportedName(related))
		}
		join := m.ModelByName(joinName)
		if join == nil {
			return errors.NewDetf(ClassModelNotMapped, "join model: '%s' for the field: '%s' is not mapped", joinName, field)
		}
		rel.joinModel = join

		fk, err := foreignKeyField(join, foreignName(0, exportedName(owner)+"ID"))
		if err != nil {
			return err
		}
		rel.foreignKey = fk
		if rel.manyToManyForeignKey, err = foreignKeyField(join, foreignName(1, exportedName(related)+"ID")); err != nil {
			return err
		}
		if rel.foreignKey == rel.manyToManyForeignKey {
			return errors.NewDetf(ClassModelMapping, "many2many field: '%s' requires distinct join model foreign keys", field)
		}
	case field.IsSlice():
		rel.kind = RelHasMany
		fk, err := foreignKeyField(related, foreignName(0, exportedName(owner)+"ID"))
		if err != nil {
			return err
		}
		rel.foreignKey = fk
	default:
		name := foreignName(0, field.Name()+"ID")
		if fk, ok := owner.FieldByName(name); ok && fk.kind != KindRelationship {
			rel.kind = RelBelongsTo
			fk.kind = KindForeignKey
			rel.foreignKey = fk
			break
		}
		if len(rel.foreignNames) == 0 {
			name = exportedName(owner) + "ID"
		}
		fk, err := foreignKeyField(related, name)
		if err != nil {
			return err
		}
		rel.kind = RelHasOne
		rel.foreignKey = fk
	}
	log.Debug3f("Resolved relationship: '%s' of kind: %s", field, rel.kind)
	return nil
}

func foreignKeyField(mStruct *ModelStruct, name string) (*StructField, error) {
	fk, ok := mStruct.FieldByName(name)
	if !ok || fk.kind == KindRelationship || fk.kind == KindPrimary {
		return nil, errors.NewDetf(ClassModelMapping, "foreign key: '%s' not found in the model: '%s'", name, mStruct.collection)
	}
	fk.kind = KindForeignKey
	return fk, nil
}

// CollectionName gets the collection name for the 'typeName' formatted with the map naming convention.
func (m *ModelMap) CollectionName(typeName string) string {
	return m.naming.Namer(inflection.Plural(strings.TrimSpace(typeName)))
}

// exportedName is the camel cased model type name, used for the default foreign key and join model names.
func exportedName(m *ModelStruct) string {
	return strcase.ToCamel(m.Type().Name())
}
