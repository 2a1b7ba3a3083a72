package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/neuronlabs/fancy/annotation"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
)

// PrimaryKeyAlias is the lookup name that always refers to the model's primary key.
const PrimaryKeyAlias = "pk"

// Scope is the query scope definition for a single model. It contains the filters,
// search terms, sorting order and pagination. The filters are combined with the logical AND.
type Scope struct {
	// ModelStruct is the scope's model structure.
	ModelStruct *mapping.ModelStruct
	// Filters are the scope's filter fields.
	Filters Filters
	// Search contains the search terms and fields.
	Search *Search
	// Sorts are the sort fields used by the scope.
	Sorts []*Sort
	// Pagination is the limit/offset pagination of the query.
	Pagination *Pagination
	// Distinct defines if the query should return distinct results.
	Distinct bool
	// None marks the scope as empty - the queries never return any results for it.
	None bool
}

// NewScope creates new scope for the model.
func NewScope(model *mapping.ModelStruct) *Scope {
	return &Scope{ModelStruct: model}
}

// AddKeywords resolves and adds all the keywords into the scope filters.
func (s *Scope) AddKeywords(keywords ...*Keyword) error {
	for _, keyword := range keywords {
		if err := s.AddKeyword(keyword); err != nil {
			return err
		}
	}
	return nil
}

// AddKeyword resolves the keyword lookup path into the filter field and adds it to the scope.
func (s *Scope) AddKeyword(keyword *Keyword) error {
	filter, err := ParseKeyword(s.ModelStruct, keyword)
	if err != nil {
		return err
	}
	s.Filters = append(s.Filters, filter)
	return nil
}

// Filter adds the filters into the scope.
func (s *Scope) Filter(filters ...*FilterField) {
	s.Filters = append(s.Filters, filters...)
}

// OrderBy sets the scope's sort fields.
func (s *Scope) OrderBy(sorts ...*Sort) {
	s.Sorts = sorts
}

// SortsOrDefault returns the scope sort fields followed by the primary key ascending sort,
// unless the primary key is already sorted. The models equal on the sort fields keep a stable order.
func (s *Scope) SortsOrDefault() []*Sort {
	primary := s.ModelStruct.Primary()
	for _, sort := range s.Sorts {
		if sort.Field == primary {
			return s.Sorts
		}
	}
	sorts := make([]*Sort, len(s.Sorts), len(s.Sorts)+1)
	copy(sorts, s.Sorts)
	return append(sorts, &Sort{Field: primary})
}

// Copy creates the copy of the scope.
func (s *Scope) Copy() *Scope {
	cp := &Scope{
		ModelStruct: s.ModelStruct,
		Distinct:    s.Distinct,
		None:        s.None,
	}
	for _, filter := range s.Filters {
		cp.Filters = append(cp.Filters, filter.Copy())
	}
	if s.Search != nil {
		search := *s.Search
		cp.Search = &search
	}
	cp.Sorts = append(cp.Sorts, s.Sorts...)
	if s.Pagination != nil {
		pagination := *s.Pagination
		cp.Pagination = &pagination
	}
	return cp
}

// String implements fmt.Stringer interface.
func (s *Scope) String() string {
	sb := &strings.Builder{}
	sb.WriteString("SCOPE[" + s.ModelStruct.Collection() + "]")
	if s.None {
		sb.WriteString(" NONE")
	}
	if len(s.Filters) > 0 {
		sb.WriteString(" Filters: " + s.Filters.String())
	}
	if s.Search != nil {
		fmt.Fprintf(sb, " Search: %v", s.Search.Terms)
	}
	if len(s.Sorts) > 0 {
		fmt.Fprintf(sb, " Sorts: %v", s.Sorts)
	}
	if s.Pagination != nil {
		fmt.Fprintf(sb, " %s", s.Pagination)
	}
	if s.Distinct {
		sb.WriteString(" DISTINCT")
	}
	return sb.String()
}

// ParseKeyword resolves the keyword lookup path into the filter field of the 'model'.
// The path fields are separated with the '__' separator and the last part may be the
// operator lookup. Relationship fields are traversed to the related models. A path that
// ends on the relationship field filters by the related model's primary key.
func ParseKeyword(model *mapping.ModelStruct, keyword *Keyword) (*FilterField, error) {
	parts := strings.Split(keyword.Key, annotation.LookupSeparator)
	op := OpExact
	if len(parts) > 1 {
		if lookupOp, ok := FilterOperators.Get(parts[len(parts)-1]); ok {
			op = lookupOp
			parts = parts[:len(parts)-1]
		}
	}
	filter, err := resolvePath(model, parts, op, keyword)
	if err != nil {
		if e, ok := err.(*errors.DetailedError); ok {
			e.WrapDetailsf("keyword: '%s'", keyword.Key)
		}
		return nil, err
	}
	return filter, nil
}

func resolvePath(model *mapping.ModelStruct, parts []string, op *Operator, keyword *Keyword) (*FilterField, error) {
	field, err := lookupField(model, parts[0])
	if err != nil {
		return nil, err
	}
	rest := parts[1:]

	if field.IsRelationship() {
		related := field.Relationship().Struct()
		var nested *FilterField
		if len(rest) == 0 {
			nested, err = newValueFilter(related.Primary(), op, keyword)
		} else {
			nested, err = resolvePath(related, rest, op, keyword)
		}
		if err != nil {
			return nil, err
		}
		return NewRelationFilter(field, nested), nil
	}

	if len(rest) > 0 {
		return nil, errors.NewDetf(ClassInvalidOperator, "unsupported lookup: '%s' for the field: '%s'", strings.Join(rest, annotation.LookupSeparator), field)
	}
	return newValueFilter(field, op, keyword)
}

func lookupField(model *mapping.ModelStruct, name string) (*mapping.StructField, error) {
	if name == PrimaryKeyAlias {
		return model.Primary(), nil
	}
	field, ok := model.FieldByName(name)
	if !ok {
		return nil, errors.NewDetf(ClassInvalidField, "field: '%s' not found in the model: '%s'", name, model.Collection())
	}
	return field, nil
}

func newValueFilter(field *mapping.StructField, op *Operator, keyword *Keyword) (*FilterField, error) {
	value := keyword.Value
	switch op {
	case OpIn:
		values, ok := value.([]interface{})
		if !ok {
			values = []interface{}{value}
		}
		converted := make([]interface{}, len(values))
		for i, v := range values {
			c, err := convertFilterValue(field, op, v, "")
			if err != nil {
				return nil, err
			}
			converted[i] = c
		}
		return NewFilter(field, op, converted...), nil
	case OpIsNull:
		isNull, err := boolValue(value)
		if err != nil {
			return nil, err
		}
		return NewFilter(field, op, isNull), nil
	}

	if value == nil {
		switch op {
		case OpExact:
			return NewFilter(field, OpIsNull, true), nil
		case OpNotEqual:
			return NewFilter(field, OpIsNull, false), nil
		}
		return nil, errors.NewDetf(ClassFieldValue, "null value is not allowed for the '%s' operator", op.Lookup)
	}
	converted, err := convertFilterValue(field, op, value, keyword.Raw)
	if err != nil {
		return nil, err
	}
	return NewFilter(field, op, converted), nil
}

// convertFilterValue converts the filter value into the field's type. The string only operators
// and string fields takes the raw string value (if given) of the non string values.
func convertFilterValue(field *mapping.StructField, op *Operator, value interface{}, raw string) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	if op.IsStringOnly() || field.IsString() {
		if s, ok := value.(string); ok {
			return s, nil
		}
		if raw != "" {
			return raw, nil
		}
		return fmt.Sprint(value), nil
	}
	converted, err := mapping.ConvertFieldValue(field, value)
	if err != nil {
		return nil, errors.NewDetf(ClassFieldValue, "invalid value: '%v' for the field: '%s'", value, field)
	}
	return converted, nil
}

func boolValue(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, errors.NewDet(ClassFieldValue, "null value is not allowed for the 'isnull' operator")
	}
	rv := reflect.ValueOf(value)
	if mapping.IsNumericKind(rv.Kind()) {
		return !rv.IsZero(), nil
	}
	b, err := mapping.ConvertValue(reflect.TypeOf(true), value)
	if err != nil {
		return false, errors.NewDetf(ClassFieldValue, "invalid 'isnull' value: '%v'", value)
	}
	return b.Bool(), nil
}
