package mapping

import (
	"reflect"
)

// ModelStruct is the mapped structure definition of the registered model.
type ModelStruct struct {
	modelType  reflect.Type
	collection string
	primary    *StructField
	fields     []*StructField
	byName     map[string]*StructField
}

// Type returns the model's reflect.Type (non pointer struct).
func (m *ModelStruct) Type() reflect.Type {
	return m.modelType
}

// Collection returns the model's collection name.
func (m *ModelStruct) Collection() string {
	return m.collection
}

// Primary returns model's primary field.
func (m *ModelStruct) Primary() *StructField {
	return m.primary
}

// Fields returns all the mapped model fields.
func (m *ModelStruct) Fields() []*StructField {
	return m.fields
}

// Attributes returns the model's attribute fields.
func (m *ModelStruct) Attributes() []*StructField {
	return m.fieldsOfKind(KindAttribute)
}

// ForeignKeys returns the model's foreign key fields.
func (m *ModelStruct) ForeignKeys() []*StructField {
	return m.fieldsOfKind(KindForeignKey)
}

// RelationFields returns the model's relationship fields.
func (m *ModelStruct) RelationFields() []*StructField {
	return m.fieldsOfKind(KindRelationship)
}

// StoredFields returns the fields stored directly in the model's repository:
// primary, attributes and foreign keys.
func (m *ModelStruct) StoredFields() []*StructField {
	var fields []*StructField
	for _, field := range m.fields {
		if field.kind != KindRelationship {
			fields = append(fields, field)
		}
	}
	return fields
}

// FieldByName gets the StructField by the 'name' argument.
// The 'name' may be a StructField's Go name or NeuronName.
func (m *ModelStruct) FieldByName(name string) (*StructField, bool) {
	field, ok := m.byName[name]
	return field, ok
}

// RelationByName gets the relationship field by its Go or neuron name.
func (m *ModelStruct) RelationByName(name string) (*StructField, bool) {
	field, ok := m.byName[name]
	if !ok || field.kind != KindRelationship {
		return nil, false
	}
	return field, true
}

// String implements fmt.Stringer interface.
func (m *ModelStruct) String() string {
	return m.collection
}

func (m *ModelStruct) fieldsOfKind(kind FieldKind) []*StructField {
	var fields []*StructField
	for _, field := range m.fields {
		if field.kind == kind {
			fields = append(fields, field)
		}
	}
	return fields
}

func (m *ModelStruct) addField(field *StructField) {
	m.fields = append(m.fields, field)
	m.byName[field.Name()] = field
	m.byName[field.neuronName] = field
}
