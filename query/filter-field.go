package query

import (
	"fmt"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/mapping"
)

// Filters is the wrapper over the slice of filter fields.
type Filters []*FilterField

// String implements fmt.Stringer interface.
func (f Filters) String() string {
	parts := make([]string, len(f))
	for i, filter := range f {
		parts[i] = filter.String()
	}
	return strings.Join(parts, " AND ")
}

// FilterField is a struct that keeps information about given query filter.
// It is based on the mapping.StructField.
//
// A filter on the relationship field has no operator nor values, but the
// Nested filter defined on the related model's field.
type FilterField struct {
	StructField *mapping.StructField
	Operator    *Operator
	Values      []interface{}
	Nested      *FilterField
}

// NewFilter creates new filter field for the 'field' with given operator and values.
func NewFilter(field *mapping.StructField, op *Operator, values ...interface{}) *FilterField {
	return &FilterField{StructField: field, Operator: op, Values: values}
}

// NewRelationFilter creates new relationship filter with the 'nested' filter defined on
// the related model field.
func NewRelationFilter(relation *mapping.StructField, nested *FilterField) *FilterField {
	return &FilterField{StructField: relation, Nested: nested}
}

// IsNested checks if the filter is defined on the relationship.
func (f *FilterField) IsNested() bool {
	return f.Nested != nil
}

// Last returns the last filter in the nested filters chain, the one that
// contains the operator and values.
func (f *FilterField) Last() *FilterField {
	last := f
	for last.Nested != nil {
		last = last.Nested
	}
	return last
}

// Path returns the lookup path of the filter i.e. 'author__name'.
func (f *FilterField) Path() string {
	var names []string
	for filter := f; filter != nil; filter = filter.Nested {
		names = append(names, filter.StructField.NeuronName())
	}
	return strings.Join(names, annotation.LookupSeparator)
}

// Copy returns the copy of the filter field.
func (f *FilterField) Copy() *FilterField {
	cp := &FilterField{StructField: f.StructField, Operator: f.Operator}
	if f.Values != nil {
		cp.Values = make([]interface{}, len(f.Values))
		copy(cp.Values, f.Values)
	}
	if f.Nested != nil {
		cp.Nested = f.Nested.Copy()
	}
	return cp
}

// String implements fmt.Stringer interface.
func (f *FilterField) String() string {
	last := f.Last()
	return fmt.Sprintf("%s.%s%s%s: %v", f.StructField.Struct().Collection(), f.Path(), annotation.LookupSeparator, last.Operator.Lookup, last.Values)
}
