package serializer

import (
	"reflect"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
)

// FieldKind is the serializer field kind enum.
type FieldKind int

const (
	// KindUnknown is the undefined field kind.
	KindUnknown FieldKind = iota
	// KindChar is the string field kind.
	KindChar
	// KindInteger is the integer field kind.
	KindInteger
	// KindFloat is the floating point number field kind.
	KindFloat
	// KindBoolean is the boolean field kind.
	KindBoolean
	// KindDateTime is the date time field kind.
	KindDateTime
	// KindPrimaryKeyRelated is the 'belongs to' relation represented by the related model primary key.
	KindPrimaryKeyRelated
	// KindPrimaryKeyIDs is the list of related models primary keys. Writable fields of this kind
	// are named with the '_ids' suffix.
	KindPrimaryKeyIDs
	// KindNested is the single nested model field.
	KindNested
	// KindNestedList is the nested list of models field.
	KindNestedList
)

// String implements fmt.Stringer interface.
func (k FieldKind) String() string {
	switch k {
	case KindChar:
		return "Char"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindDateTime:
		return "DateTime"
	case KindPrimaryKeyRelated:
		return "PrimaryKeyRelated"
	case KindPrimaryKeyIDs:
		return "PrimaryKeyIDs"
	case KindNested:
		return "Nested"
	case KindNestedList:
		return "NestedList"
	}
	return "Unknown"
}

// IsRelational checks if the field kind is written by the nested write mixins.
func (k FieldKind) IsRelational() bool {
	return k == KindPrimaryKeyIDs || k == KindNested || k == KindNestedList
}

// Field is the serializer field definition.
type Field struct {
	// Name is the payload and representation key.
	Name string
	// Kind is the field kind.
	Kind FieldKind
	// Source is the model field (Go or neuron name) the serializer field reads and writes.
	// It defaults to the Name. The '_ids' fields sources defaults to the Name without the suffix.
	Source string
	// ReadOnly fields are only represented.
	ReadOnly bool
	// WriteOnly fields are only validated and saved.
	WriteOnly bool
	// Required fields must be present in the non partial payloads.
	Required bool
	// AllowNull allows the null payload values.
	AllowNull bool
	// Validate is the 'gopkg.in/go-playground/validator.v9' tag applied on the converted value.
	Validate string
	// Child is the serializer of the nested fields.
	Child Serializer

	// declared is true for the fields provided to the serializer constructor.
	declared bool
	// model is the model field the value is stored in. For the 'belongs to' relations it is the foreign key.
	model *mapping.StructField
	// relation is the relationship field for the relational kinds.
	relation *mapping.StructField
}

// IsDeclared checks if the field was declared explicitly.
func (f *Field) IsDeclared() bool {
	return f.declared
}

// ModelField returns the model's field the serializer field value is stored in.
func (f *Field) ModelField() *mapping.StructField {
	return f.model
}

// Relation returns the relationship field for the relational fields.
func (f *Field) Relation() *mapping.StructField {
	return f.relation
}

// String implements fmt.Stringer interface.
func (f *Field) String() string {
	return f.Name + "(" + f.Kind.String() + ")"
}

// resolve binds the field with the model's fields.
func (f *Field) resolve(mStruct *mapping.ModelStruct) error {
	if f.Name == "" {
		return errors.NewDet(ClassInvalidField, "serializer field with no name")
	}
	if f.Source == "" {
		f.Source = f.Name
		if f.Kind == KindPrimaryKeyIDs && strings.HasSuffix(f.Name, annotation.IDsSuffix) {
			f.Source = f.Name[:strings.LastIndex(f.Name, annotation.IDsSuffix)]
		}
	}
	field, ok := modelField(mStruct, f.Source)
	if !ok {
		return errors.NewDetf(ClassInvalidField, "field: '%s' source: '%s' not found in the model: '%s'", f.Name, f.Source, mStruct)
	}

	switch f.Kind {
	case KindChar, KindInteger, KindFloat, KindBoolean, KindDateTime:
		if field.IsRelationship() {
			return errors.NewDetf(ClassInvalidField, "field: '%s' of kind: '%s' cannot use the relationship: '%s'", f.Name, f.Kind, field)
		}
		f.model = field
	case KindPrimaryKeyRelated:
		switch {
		case !field.IsRelationship():
			f.model = field
		case field.Relationship().Kind() == mapping.RelBelongsTo:
			f.relation = field
			f.model = field.Relationship().ForeignKey()
		case field.Relationship().Kind() == mapping.RelHasOne && f.ReadOnly:
			f.relation = field
		default:
			return errors.NewDetf(ClassInvalidField, "field: '%s' primary key related source must be a 'belongs to' relation", f.Name)
		}
	case KindPrimaryKeyIDs, KindNested, KindNestedList:
		if !field.IsRelationship() {
			return errors.NewDetf(ClassInvalidField, "field: '%s' of kind: '%s' requires relationship source", f.Name, f.Kind)
		}
		f.relation = field
		rel := field.Relationship()
		switch f.Kind {
		case KindPrimaryKeyIDs, KindNestedList:
			if !rel.IsToMany() {
				return errors.NewDetf(ClassInvalidField, "field: '%s' of kind: '%s' requires 'to many' relationship", f.Name, f.Kind)
			}
		case KindNested:
			if rel.IsToMany() {
				return errors.NewDetf(ClassInvalidField, "field: '%s' nested source must be a single relationship", f.Name)
			}
			if rel.Kind() == mapping.RelBelongsTo {
				f.model = rel.ForeignKey()
			}
		}
		if f.Kind != KindPrimaryKeyIDs {
			if f.Child == nil {
				return errors.NewDetf(ClassInvalidField, "nested field: '%s' have no child serializer", f.Name)
			}
			if f.Child.ModelStruct() != rel.Struct() {
				return errors.NewDetf(ClassInvalidField, "nested field: '%s' child serializer model: '%s' doesn't match related model: '%s'", f.Name, f.Child.ModelStruct(), rel.Struct())
			}
		}
	default:
		return errors.NewDetf(ClassInvalidField, "field: '%s' have unknown kind", f.Name)
	}
	return nil
}

// deriveField creates the serializer field for the model field named 'name'.
func deriveField(mStruct *mapping.ModelStruct, name string, readOnly bool) (*Field, error) {
	field, ok := modelField(mStruct, name)
	if !ok {
		return nil, errors.NewDetf(ClassInvalidField, "field: '%s' not found in the model: '%s'", name, mStruct)
	}
	f := &Field{Name: name, Source: name, ReadOnly: readOnly}

	if field.IsRelationship() {
		rel := field.Relationship()
		f.relation = field
		switch rel.Kind() {
		case mapping.RelBelongsTo:
			f.Kind = KindPrimaryKeyRelated
			f.model = rel.ForeignKey()
			f.AllowNull = rel.ForeignKey().IsPtr()
		case mapping.RelHasOne:
			f.Kind = KindPrimaryKeyRelated
			f.ReadOnly = true
		default:
			// the 'to many' relations are writable only by the nested write '_ids' fields.
			f.Kind = KindPrimaryKeyIDs
			f.ReadOnly = true
		}
		return f, nil
	}

	f.model = field
	f.AllowNull = field.IsPtr()
	if field.IsPrimary() {
		f.ReadOnly = true
	}
	kind, ok := kindOf(field)
	if !ok {
		return nil, errors.NewDetf(ClassInvalidField, "model field: '%s' of type: '%s' is not supported", field, field.BaseType())
	}
	f.Kind = kind
	return f, nil
}

func kindOf(field *mapping.StructField) (FieldKind, bool) {
	if field.IsTime() {
		return KindDateTime, true
	}
	switch k := field.BaseType().Kind(); {
	case k == reflect.String:
		return KindChar, true
	case k == reflect.Bool:
		return KindBoolean, true
	case k == reflect.Float32 || k == reflect.Float64:
		return KindFloat, true
	case mapping.IsNumericKind(k):
		return KindInteger, true
	}
	return KindUnknown, false
}

// modelField finds the model field by its Go or neuron name. The 'pk' alias refers to the primary key.
func modelField(mStruct *mapping.ModelStruct, name string) (*mapping.StructField, bool) {
	if name == "pk" {
		return mStruct.Primary(), true
	}
	return mStruct.FieldByName(name)
}
