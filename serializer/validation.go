package serializer

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/go-playground/validator.v9"

	"github.com/neuronlabs/fancy/mapping"
)

// Validation messages.
const (
	MsgRequired       = "This field is required."
	MsgNull           = "This field may not be null."
	MsgInvalidString  = "Not a valid string."
	MsgInvalidInteger = "A valid integer is required."
	MsgInvalidNumber  = "A valid number is required."
	MsgInvalidBoolean = "Must be a valid boolean."
	MsgInvalidTime    = "Datetime has wrong format."
)

// Data is the validated payload. The Validated values are stored by the fields sources, and the Initial
// is the raw payload. The nested field values are the *Data for the nested single fields and []*Data for
// the nested lists.
type Data struct {
	Initial   map[string]interface{}
	Validated map[string]interface{}
}

// InitialKeys returns the sorted keys of the initial payload.
func (d *Data) InitialKeys() []string {
	keys := make([]string, 0, len(d.Initial))
	for key := range d.Initial {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Copy creates a shallow copy of the data with the new Validated map.
func (d *Data) Copy() *Data {
	validated := make(map[string]interface{}, len(d.Validated))
	for k, v := range d.Validated {
		validated[k] = v
	}
	return &Data{Initial: d.Initial, Validated: validated}
}

// ValidationError is the payload validation error. The Errors map the field names to the messages.
// The nested fields errors are the maps, and nested lists errors are the slices of maps.
type ValidationError struct {
	Errors map[string]interface{}
}

// Error implements error interface.
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed for the fields: " + strings.Join(fields, ", ")
}

// MarshalJSON implements json.Marshaler interface.
func (v *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Errors)
}

func (v *ValidationError) add(field, message string) {
	if v.Errors == nil {
		v.Errors = map[string]interface{}{}
	}
	messages, _ := v.Errors[field].([]string)
	v.Errors[field] = append(messages, message)
}

func (v *ValidationError) set(field string, value interface{}) {
	if v.Errors == nil {
		v.Errors = map[string]interface{}{}
	}
	v.Errors[field] = value
}

// Validate implements Serializer interface. The read only and unknown payload keys are skipped.
func (s *ModelSerializer) Validate(initial map[string]interface{}, partial bool) (*Data, error) {
	if initial == nil {
		initial = map[string]interface{}{}
	}
	data := &Data{Initial: initial, Validated: map[string]interface{}{}}
	verr := &ValidationError{}

	for _, field := range s.fields {
		if field.ReadOnly {
			continue
		}
		raw, ok := initial[field.Name]
		if !ok {
			if field.Required && !partial {
				verr.add(field.Name, MsgRequired)
			}
			continue
		}
		if raw == nil {
			if !field.AllowNull {
				verr.add(field.Name, MsgNull)
				continue
			}
			data.Validated[field.Source] = nil
			continue
		}
		value, errValue := s.validateValue(field, raw, partial)
		if errValue != nil {
			verr.set(field.Name, errValue)
			continue
		}
		if field.Validate != "" {
			if messages := s.validateRules(field, value); len(messages) > 0 {
				verr.set(field.Name, messages)
				continue
			}
		}
		data.Validated[field.Source] = value
	}
	if len(verr.Errors) > 0 {
		logger.Debug2f("Serializer: '%s' validation failed: %v", s.mStruct, verr.Errors)
		return nil, verr
	}
	return data, nil
}

// validateValue converts the 'raw' payload value. On failure it returns the field's error value.
func (s *ModelSerializer) validateValue(field *Field, raw interface{}, partial bool) (interface{}, interface{}) {
	switch field.Kind {
	case KindChar:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case json.Number:
			return v.String(), nil
		case int, int32, int64, uint, uint32, uint64:
			return fmt.Sprint(v), nil
		}
		return nil, []string{MsgInvalidString}
	case KindInteger:
		if _, ok := raw.(bool); ok {
			return nil, []string{MsgInvalidInteger}
		}
		v, err := mapping.ConvertValue(reflect.TypeOf(int64(0)), raw)
		if err != nil {
			return nil, []string{MsgInvalidInteger}
		}
		return v.Interface(), nil
	case KindFloat:
		if _, ok := raw.(bool); ok {
			return nil, []string{MsgInvalidNumber}
		}
		v, err := mapping.ConvertValue(reflect.TypeOf(float64(0)), raw)
		if err != nil {
			return nil, []string{MsgInvalidNumber}
		}
		return v.Interface(), nil
	case KindBoolean:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(v) {
			case "true", "1", "yes", "on":
				return true, nil
			case "false", "0", "no", "off":
				return false, nil
			}
		case float64:
			if v == 1 || v == 0 {
				return v == 1, nil
			}
		}
		return nil, []string{MsgInvalidBoolean}
	case KindDateTime:
		if v, ok := raw.(string); ok {
			for _, layout := range mapping.TimeLayouts {
				if tm, err := time.Parse(layout, v); err == nil {
					return tm, nil
				}
			}
		}
		return nil, []string{MsgInvalidTime}
	case KindPrimaryKeyRelated:
		pk, ok := s.primaryKey(field, raw)
		if !ok {
			return nil, []string{incorrectType(raw)}
		}
		return pk, nil
	case KindPrimaryKeyIDs:
		list, ok := raw.([]interface{})
		if !ok {
			return nil, []string{notAList(raw)}
		}
		pks := make([]interface{}, len(list))
		for i, item := range list {
			pk, ok := s.primaryKey(field, item)
			if !ok {
				return nil, []string{incorrectType(item)}
			}
			pks[i] = pk
		}
		return pks, nil
	case KindNested:
		record, ok := raw.(map[string]interface{})
		if !ok {
			return nil, []string{notADict(raw)}
		}
		child, err := field.Child.Validate(record, partial)
		if err != nil {
			return nil, childErrors(err)
		}
		return child, nil
	case KindNestedList:
		list, ok := raw.([]interface{})
		if !ok {
			return nil, []string{notAList(raw)}
		}
		children := make([]*Data, len(list))
		itemErrors := make([]interface{}, len(list))
		var failed bool
		for i, item := range list {
			itemErrors[i] = map[string]interface{}{}
			record, ok := item.(map[string]interface{})
			if !ok {
				itemErrors[i] = map[string]interface{}{"non_field_errors": []string{notADict(item)}}
				failed = true
				continue
			}
			child, err := field.Child.Validate(record, false)
			if err != nil {
				itemErrors[i] = childErrors(err)
				failed = true
				continue
			}
			children[i] = child
		}
		if failed {
			return nil, itemErrors
		}
		return children, nil
	}
	return nil, []string{fmt.Sprintf("Unsupported field kind: %s.", field.Kind)}
}

// primaryKey converts the 'raw' value into the related model's primary key type.
func (s *ModelSerializer) primaryKey(field *Field, raw interface{}) (interface{}, bool) {
	if _, isBool := raw.(bool); isBool {
		return nil, false
	}
	var pkField *mapping.StructField
	if field.relation != nil {
		pkField = field.relation.Relationship().Struct().Primary()
	} else {
		pkField = field.model
	}
	pk, err := mapping.ConvertFieldValue(pkField, raw)
	if err != nil || pk == nil {
		return nil, false
	}
	return pk, true
}

// validateRules checks the 'validator.v9' tag rules of the field.
func (s *ModelSerializer) validateRules(field *Field, value interface{}) []string {
	if value == nil {
		return nil
	}
	err := s.validate.Var(value, field.Validate)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	var messages []string
	for _, fe := range fieldErrors {
		messages = append(messages, ruleMessage(fe))
	}
	return messages
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this value is no greater than %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is no less than %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	}
	return fmt.Sprintf("Ensure this value satisfies the '%s' rule.", fe.Tag())
}

func childErrors(err error) interface{} {
	if verr, ok := err.(*ValidationError); ok {
		return verr.Errors
	}
	return []string{err.Error()}
}

func incorrectType(value interface{}) string {
	return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", typeName(value))
}

func notAList(value interface{}) string {
	return fmt.Sprintf("Expected a list of items but got type \"%s\".", typeName(value))
}

func notADict(value interface{}) string {
	return fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeName(value))
}

// typeName returns the JSON type name of the decoded payload value.
func typeName(value interface{}) string {
	switch value.(type) {
	case string:
		return "str"
	case float64, json.Number:
		return "number"
	case bool:
		return "bool"
	case []interface{}:
		return "list"
	case map[string]interface{}:
		return "dict"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", value)
}
