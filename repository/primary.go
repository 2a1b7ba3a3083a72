package repository

import (
	"github.com/google/uuid"

	"github.com/neuronlabs/fancy/mapping"
)

// AssignStringPrimary sets the new uuid value as the model's primary key if the primary
// key is a zero value string. Returns true if the value was set.
func AssignStringPrimary(mStruct *mapping.ModelStruct, model interface{}) (bool, error) {
	if !mStruct.Primary().IsString() || !mStruct.IsPrimaryZero(model) {
		return false, nil
	}
	if err := mStruct.SetPrimaryValue(model, uuid.New().String()); err != nil {
		return false, err
	}
	return true, nil
}

// UpdatedFields returns the 'fields' or all the model's stored fields except the primary key if
// no fields are provided.
func UpdatedFields(mStruct *mapping.ModelStruct, fields []*mapping.StructField) []*mapping.StructField {
	if len(fields) > 0 {
		return fields
	}
	var updated []*mapping.StructField
	for _, field := range mStruct.StoredFields() {
		if !field.IsPrimary() {
			updated = append(updated, field)
		}
	}
	return updated
}
