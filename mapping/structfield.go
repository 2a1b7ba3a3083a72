package mapping

import (
	"reflect"
	"time"
)

// FieldKind is an enum that defines the following field types.
type FieldKind int

const (
	// KindUnknown is the undefined field kind.
	KindUnknown FieldKind = iota
	// KindPrimary is a field kind that uses the model's primary key.
	KindPrimary
	// KindAttribute is a field kind that defines the model's attribute.
	KindAttribute
	// KindForeignKey is the field kind that defines the relationship foreign key.
	KindForeignKey
	// KindRelationship is the field kind that defines the model's relationship.
	KindRelationship
)

// String implements fmt.Stringer interface.
func (f FieldKind) String() string {
	switch f {
	case KindPrimary:
		return "Primary"
	case KindAttribute:
		return "Attribute"
	case KindForeignKey:
		return "ForeignKey"
	case KindRelationship:
		return "Relationship"
	}
	return "Unknown"
}

var timeType = reflect.TypeOf(time.Time{})

// StructField represents a field structure with its reflect.StructField info and the fancy-specific
// properties like the kind, neuron name and relationship.
type StructField struct {
	mStruct      *ModelStruct
	reflectField reflect.StructField
	index        []int
	kind         FieldKind
	neuronName   string
	relationship *Relationship
	tags         []*FieldTag
}

// Name returns the Go struct field name.
func (s *StructField) Name() string {
	return s.reflectField.Name
}

// NeuronName returns the field name formatted by the model map naming convention.
func (s *StructField) NeuronName() string {
	return s.neuronName
}

// Kind returns the field kind.
func (s *StructField) Kind() FieldKind {
	return s.kind
}

// Struct returns the model struct the field belongs to.
func (s *StructField) Struct() *ModelStruct {
	return s.mStruct
}

// ReflectField returns the reflect.StructField.
func (s *StructField) ReflectField() reflect.StructField {
	return s.reflectField
}

// Index returns the field index sequence used by reflect.Value.FieldByIndex.
func (s *StructField) Index() []int {
	return s.index
}

// Relationship returns the field's relationship, nil for non relationship fields.
func (s *StructField) Relationship() *Relationship {
	return s.relationship
}

// IsPrimary checks if the field is the primary key field.
func (s *StructField) IsPrimary() bool {
	return s.kind == KindPrimary
}

// IsRelationship checks if the field is a relationship field.
func (s *StructField) IsRelationship() bool {
	return s.kind == KindRelationship
}

// IsPtr checks if the field is a pointer.
func (s *StructField) IsPtr() bool {
	return s.reflectField.Type.Kind() == reflect.Ptr
}

// IsSlice checks if the field is a slice (except []byte).
func (s *StructField) IsSlice() bool {
	t := s.reflectField.Type
	return t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8
}

// IsTime checks if the field is a time.Time or *time.Time.
func (s *StructField) IsTime() bool {
	return s.BaseType() == timeType
}

// IsNumeric checks if the field base type is a number.
func (s *StructField) IsNumeric() bool {
	return IsNumericKind(s.BaseType().Kind())
}

// IsString checks if the field base type is a string.
func (s *StructField) IsString() bool {
	return s.BaseType().Kind() == reflect.String
}

// BaseType returns the field type without the pointers and slices.
func (s *StructField) BaseType() reflect.Type {
	t := s.reflectField.Type
	for t.Kind() == reflect.Ptr || (t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8) {
		t = t.Elem()
	}
	return t
}

// String implements fmt.Stringer interface.
func (s *StructField) String() string {
	return s.mStruct.Collection() + "." + s.neuronName
}

// IsNumericKind checks if the reflect.Kind is a numeric kind.
func IsNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
