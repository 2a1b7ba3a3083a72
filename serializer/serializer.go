package serializer

import (
	"context"

	"gopkg.in/go-playground/validator.v9"

	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
)

var logger = log.NewModuleLogger("serializer")

// Serializer is the interface that validates, represents and saves the models.
type Serializer interface {
	// ModelStruct returns the serialized model structure.
	ModelStruct() *mapping.ModelStruct
	// Meta returns the serializer meta options.
	Meta() Meta
	// Fields returns the serializer fields in the order of the Meta fields.
	Fields() []*Field
	// DeclaredFields returns the explicitly declared fields.
	DeclaredFields() []*Field
	// FieldByName gets the field by its payload name.
	FieldByName(name string) (*Field, bool)
	// Validate validates the 'initial' payload. The partial validation doesn't check the required fields.
	Validate(initial map[string]interface{}, partial bool) (*Data, error)
	// Represent creates the representation of the model 'instance'.
	Represent(ctx context.Context, d *db.DB, instance interface{}) (map[string]interface{}, error)
	// Create creates new model instance from the validated 'data'.
	Create(ctx context.Context, d *db.DB, data *Data) (interface{}, error)
	// Update updates the model 'instance' with the validated 'data'.
	Update(ctx context.Context, d *db.DB, instance interface{}, data *Data) (interface{}, error)
}

// Meta is the model serializer options.
type Meta struct {
	// Fields are the names of the serializer fields. The fields not declared explicitly are
	// derived from the model fields of the same names. If empty all the model's stored fields are used.
	Fields []string
	// ReadOnlyFields are the names of the derived fields that are read only.
	ReadOnlyFields []string
}

// HasField checks if the 'name' is within the Meta fields.
func (m Meta) HasField(name string) bool {
	for _, field := range m.Fields {
		if field == name {
			return true
		}
	}
	return false
}

// ModelSerializer is the serializer of the mapped model.
type ModelSerializer struct {
	mStruct  *mapping.ModelStruct
	meta     Meta
	declared []*Field
	fields   []*Field
	byName   map[string]*Field
	validate *validator.Validate
}

// compile time check for the Serializer interface.
var _ Serializer = &ModelSerializer{}

// New creates the model serializer for the 'model' mapped in the 'models' map.
// The 'declared' fields are used instead of the derived ones. The declared fields not listed
// in the non empty Meta fields are not used by the serializer.
func New(models *mapping.ModelMap, model interface{}, meta Meta, declared ...*Field) (*ModelSerializer, error) {
	mStruct, err := models.GetModelStruct(model)
	if err != nil {
		return nil, err
	}
	s := &ModelSerializer{
		mStruct:  mStruct,
		meta:     meta,
		byName:   make(map[string]*Field),
		validate: validator.New(),
	}

	declaredByName := map[string]*Field{}
	for _, field := range declared {
		if _, ok := declaredByName[field.Name]; ok {
			return nil, errors.NewDetf(ClassInvalidField, "field: '%s' declared multiple times", field.Name)
		}
		field.declared = true
		if err = field.resolve(mStruct); err != nil {
			return nil, err
		}
		declaredByName[field.Name] = field
		s.declared = append(s.declared, field)
	}

	names := meta.Fields
	if len(names) == 0 {
		for _, field := range declared {
			names = append(names, field.Name)
		}
		for _, field := range mStruct.StoredFields() {
			if _, ok := declaredByName[field.NeuronName()]; !ok {
				names = append(names, field.NeuronName())
			}
		}
	}

	readOnly := map[string]struct{}{}
	for _, name := range meta.ReadOnlyFields {
		readOnly[name] = struct{}{}
	}
	for _, name := range names {
		field, ok := declaredByName[name]
		if !ok {
			_, isReadOnly := readOnly[name]
			if field, err = deriveField(mStruct, name, isReadOnly); err != nil {
				return nil, err
			}
		}
		if _, ok := s.byName[field.Name]; ok {
			return nil, errors.NewDetf(ClassInvalidField, "field: '%s' listed multiple times", field.Name)
		}
		s.fields = append(s.fields, field)
		s.byName[field.Name] = field
	}
	for _, field := range s.declared {
		if _, ok := s.byName[field.Name]; !ok {
			logger.Debugf("Serializer: '%s' declared field: '%s' is not listed in the Meta fields", mStruct, field.Name)
		}
	}
	return s, nil
}

// MustNew creates new model serializer. Panics on error.
func MustNew(models *mapping.ModelMap, model interface{}, meta Meta, declared ...*Field) *ModelSerializer {
	s, err := New(models, model, meta, declared...)
	if err != nil {
		panic(err)
	}
	return s
}

// ModelStruct implements Serializer interface.
func (s *ModelSerializer) ModelStruct() *mapping.ModelStruct {
	return s.mStruct
}

// Meta implements Serializer interface.
func (s *ModelSerializer) Meta() Meta {
	return s.meta
}

// Fields implements Serializer interface.
func (s *ModelSerializer) Fields() []*Field {
	return s.fields
}

// DeclaredFields implements Serializer interface.
func (s *ModelSerializer) DeclaredFields() []*Field {
	return s.declared
}

// FieldByName implements Serializer interface.
func (s *ModelSerializer) FieldByName(name string) (*Field, bool) {
	field, ok := s.byName[name]
	return field, ok
}
