package mapping

import (
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/neuronlabs/fancy/errors"
)

// TimeLayouts are the layouts used to parse the string values into time fields.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewModel creates new pointer to the model instance.
func (m *ModelStruct) NewModel() interface{} {
	return reflect.New(m.modelType).Interface()
}

// NewSlice creates a pointer to the new empty slice of model pointers: *[]*Model.
func (m *ModelStruct) NewSlice() interface{} {
	return reflect.New(reflect.SliceOf(reflect.PtrTo(m.modelType))).Interface()
}

// Models extracts the model instances from the slice created by NewSlice.
func (m *ModelStruct) Models(slice interface{}) []interface{} {
	v := reflect.ValueOf(slice)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	models := make([]interface{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		models[i] = v.Index(i).Interface()
	}
	return models
}

// FieldValue gets the 'field' value from the 'model'. Pointer values are dereferenced
// and nil pointers result in a nil interface.
func (m *ModelStruct) FieldValue(model interface{}, field *StructField) (interface{}, error) {
	v, err := m.fieldValue(model, field)
	if err != nil {
		return nil, err
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	return v.Interface(), nil
}

// SetFieldValue sets the 'value' for the model's 'field'. The value is converted into
// the field's type with the ConvertValue function.
func (m *ModelStruct) SetFieldValue(model interface{}, field *StructField, value interface{}) error {
	v, err := m.fieldValue(model, field)
	if err != nil {
		return err
	}
	converted, err := ConvertValue(v.Type(), value)
	if err != nil {
		if e, ok := err.(*errors.DetailedError); ok {
			e.WrapDetailsf("field: '%s'", field.NeuronName())
		}
		return err
	}
	v.Set(converted)
	return nil
}

// SetFieldZero sets the zero value for the model's field.
func (m *ModelStruct) SetFieldZero(model interface{}, field *StructField) error {
	v, err := m.fieldValue(model, field)
	if err != nil {
		return err
	}
	v.Set(reflect.Zero(v.Type()))
	return nil
}

// PrimaryValue gets the model's primary key value.
func (m *ModelStruct) PrimaryValue(model interface{}) (interface{}, error) {
	return m.FieldValue(model, m.primary)
}

// SetPrimaryValue sets the model's primary key value.
func (m *ModelStruct) SetPrimaryValue(model interface{}, value interface{}) error {
	return m.SetFieldValue(model, m.primary, value)
}

// IsPrimaryZero checks if the primary key of the model is not set.
func (m *ModelStruct) IsPrimaryZero(model interface{}) bool {
	v, err := m.fieldValue(model, m.primary)
	if err != nil {
		return true
	}
	return v.IsZero()
}

// ConvertPrimary converts the 'value' into the primary key type.
func (m *ModelStruct) ConvertPrimary(value interface{}) (interface{}, error) {
	return ConvertFieldValue(m.primary, value)
}

// ConvertFieldValue converts the 'value' into the field's base type (dereferenced).
// Nil values stay nil.
func ConvertFieldValue(field *StructField, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	t := field.reflectField.Type
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	v, err := ConvertValue(t, value)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (m *ModelStruct) fieldValue(model interface{}, field *StructField) (reflect.Value, error) {
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, errors.NewDetf(ClassModelType, "provided model: '%T' is not a non nil pointer", model)
	}
	v = v.Elem()
	if v.Type() != m.modelType {
		return reflect.Value{}, errors.NewDetf(ClassModelType, "provided model: '%T' is not of type: '%s'", model, m.modelType)
	}
	if field == nil || field.mStruct != m {
		return reflect.Value{}, errors.NewDetf(ClassFieldNotFound, "field: '%v' doesn't belong to the model: '%s'", field, m.collection)
	}
	return v.FieldByIndex(field.index), nil
}

// ConvertValue converts the 'value' into the reflect.Value of type 't'.
// It supports the numeric conversions (checking overflows and fractions), string to number,
// bool and time parsing and pointer allocations. Nil values result in the zero value of type 't'.
func ConvertValue(t reflect.Type, value interface{}) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		v = v.Elem()
	}

	if t.Kind() == reflect.Ptr {
		elem, err := ConvertValue(t.Elem(), v.Interface())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if v.Type() == t {
		return v, nil
	}

	switch {
	case t == timeType:
		if v.Kind() == reflect.String {
			for _, layout := range TimeLayouts {
				if tm, err := time.Parse(layout, v.String()); err == nil {
					return reflect.ValueOf(tm), nil
				}
			}
		}
	case IsNumericKind(t.Kind()):
		return convertNumeric(t, v)
	case t.Kind() == reflect.String:
		if v.Kind() == reflect.String {
			return v.Convert(t), nil
		}
	case t.Kind() == reflect.Bool:
		switch v.Kind() {
		case reflect.Bool:
			return v.Convert(t), nil
		case reflect.String:
			b, err := strconv.ParseBool(v.String())
			if err == nil {
				return reflect.ValueOf(b).Convert(t), nil
			}
		}
	default:
		if v.Type().ConvertibleTo(t) && v.Kind() == t.Kind() {
			return v.Convert(t), nil
		}
	}
	return reflect.Value{}, errors.NewDetf(ClassFieldValue, "value of type: '%s' is not convertible to: '%s'", v.Type(), t)
}

func convertNumeric(t reflect.Type, v reflect.Value) (reflect.Value, error) {
	invalid := func() (reflect.Value, error) {
		return reflect.Value{}, errors.NewDetf(ClassFieldValue, "value: '%v' is not a valid '%s'", v.Interface(), t)
	}

	var f float64
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(t, v.Int(), invalid)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			if t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64 && !reflect.Zero(t).OverflowUint(v.Uint()) {
				return v.Convert(t), nil
			}
			return invalid()
		}
		return setInt(t, int64(v.Uint()), invalid)
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return setInt(t, i, invalid)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return invalid()
		}
		f = parsed
	default:
		return invalid()
	}

	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		out := reflect.New(t).Elem()
		if out.OverflowFloat(f) {
			return invalid()
		}
		out.SetFloat(f)
		return out, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return invalid()
	}
	// float64(math.MaxInt64) rounds up to 2^63 which already overflows.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return invalid()
	}
	return setInt(t, int64(f), invalid)
}

func setInt(t reflect.Type, i int64, invalid func() (reflect.Value, error)) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if out.OverflowInt(i) {
			return invalid()
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i < 0 || out.OverflowUint(uint64(i)) {
			return invalid()
		}
		out.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(float64(i))
	default:
		return invalid()
	}
	return out, nil
}
