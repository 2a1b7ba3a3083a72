package memory

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/repository"
)

// matchesScope checks if the model matches all the scope filters and the search terms.
func matchesScope(s *query.Scope, model interface{}) (bool, error) {
	for _, filter := range s.Filters {
		if filter.IsNested() {
			return false, errors.NewDetf(repository.ClassFilter, "relationship filter: '%s' is not supported by the memory repository", filter.Path())
		}
		value, err := s.ModelStruct.FieldValue(model, filter.StructField)
		if err != nil {
			return false, err
		}
		ok, err := matchFilter(filter, value)
		if err != nil || !ok {
			return false, err
		}
	}
	if s.Search == nil {
		return true, nil
	}
	for _, term := range s.Search.Terms {
		term = fold(term)
		var found bool
		for _, field := range s.Search.Fields {
			value, err := s.ModelStruct.FieldValue(model, field)
			if err != nil {
				return false, err
			}
			if value != nil && strings.Contains(fold(stringValue(value)), term) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func matchFilter(filter *query.FilterField, value interface{}) (bool, error) {
	if filter.Operator == query.OpIsNull {
		if len(filter.Values) != 1 {
			return false, errors.NewDet(repository.ClassFilter, "isnull filter requires single value")
		}
		isNull, _ := filter.Values[0].(bool)
		return (value == nil) == isNull, nil
	}
	if filter.Operator == query.OpIn {
		if value == nil {
			return false, nil
		}
		for _, v := range filter.Values {
			if equal(value, v) {
				return true, nil
			}
		}
		return false, nil
	}
	if len(filter.Values) != 1 {
		return false, errors.NewDetf(repository.ClassFilter, "too many values for the filter: '%s'", filter)
	}
	// null values never match the comparison operators.
	if value == nil || filter.Values[0] == nil {
		return false, nil
	}
	expected := filter.Values[0]

	if filter.Operator.IsStringOnly() {
		actual, wanted := stringValue(value), stringValue(expected)
		if filter.Operator.IsCaseInsensitive() {
			actual, wanted = fold(actual), fold(wanted)
		}
		switch filter.Operator {
		case query.OpIExact:
			return actual == wanted, nil
		case query.OpContains, query.OpIContains:
			return strings.Contains(actual, wanted), nil
		case query.OpStartsWith, query.OpIStartsWith:
			return strings.HasPrefix(actual, wanted), nil
		case query.OpEndsWith, query.OpIEndsWith:
			return strings.HasSuffix(actual, wanted), nil
		}
	}

	switch filter.Operator {
	case query.OpExact:
		return equal(value, expected), nil
	case query.OpNotEqual:
		return !equal(value, expected), nil
	case query.OpGreaterThan, query.OpGreaterEqual, query.OpLessThan, query.OpLessEqual:
		c, ok := compare(value, expected)
		if !ok {
			return false, nil
		}
		switch filter.Operator {
		case query.OpGreaterThan:
			return c > 0, nil
		case query.OpGreaterEqual:
			return c >= 0, nil
		case query.OpLessThan:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	}
	return false, errors.NewDetf(repository.ClassFilter, "operator: '%s' is not supported by the memory repository", filter.Operator)
}

func sortModels(s *query.Scope, models []interface{}) {
	sorts := s.SortsOrDefault()
	sort.SliceStable(models, func(i, j int) bool {
		for _, sf := range sorts {
			a, _ := s.ModelStruct.FieldValue(models[i], sf.Field)
			b, _ := s.ModelStruct.FieldValue(models[j], sf.Field)
			var c int
			switch {
			case a == nil && b == nil:
				continue
			case a == nil:
				c = -1
			case b == nil:
				c = 1
			default:
				c, _ = compare(a, b)
			}
			if c == 0 {
				continue
			}
			if sf.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func paginate(models []interface{}, p *query.Pagination) []interface{} {
	if p.Offset >= len(models) {
		return nil
	}
	models = models[p.Offset:]
	if p.Limit > 0 && p.Limit < len(models) {
		models = models[:p.Limit]
	}
	return models
}

func equal(a, b interface{}) bool {
	c, ok := compare(a, b)
	return ok && c == 0
}

// compare compares the values 'a' and 'b'. The numbers are compared regardless of their types.
// Returns false if the values are not comparable.
func compare(a, b interface{}) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		}
		return 0, true
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(va.Kind()) && isInt(vb.Kind()):
		return compareOrdered(va.Int() < vb.Int(), va.Int() > vb.Int()), true
	case mapping.IsNumericKind(va.Kind()) && mapping.IsNumericKind(vb.Kind()):
		fa, fb := toFloat64(va), toFloat64(vb)
		return compareOrdered(fa < fb, fa > fb), true
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return strings.Compare(va.String(), vb.String()), true
	case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
		return compareOrdered(!va.Bool() && vb.Bool(), va.Bool() && !vb.Bool()), true
	}
	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func compareOrdered(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	}
	return v.Float()
}

func toInt64(value interface{}) (int64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), true
	}
	return 0, false
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(value)
}

// fold returns the case folded 's'. A new caser is created on each call as the casers are not
// safe for the concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}
