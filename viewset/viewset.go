package viewset

import (
	"net/http"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
	"github.com/neuronlabs/fancy/serializer"
)

var logger = log.NewModuleLogger("viewset")

// ViewSet is the model collection handler set. It filters the collection by the query parameters
// with type coerced values, and handles the search, ordering and limit offset pagination.
type ViewSet struct {
	serializer serializer.Serializer
	db         *db.DB
	settings   *config.Fancy
	scopers    []Scoper

	searchFields   []*mapping.StructField
	orderingFields []*mapping.StructField
	// restricted is set when the search and ordering fields were defined. In that case
	// no fields disables the ordering.
	restricted bool
}

// New creates the view set for the serializer's model stored in the 'd' database.
// If the serializer Meta fields are set, the search and ordering fields are its declared
// fields listed in the Meta fields, that are not write only and are of Char, Integer or DateTime kind.
func New(s serializer.Serializer, d *db.DB, options ...Option) (*ViewSet, error) {
	o := &Options{}
	for _, option := range options {
		option(o)
	}
	if o.Settings == nil {
		o.Settings = config.DefaultFancy()
	}
	v := &ViewSet{
		serializer: s,
		db:         d,
		settings:   o.Settings,
		scopers:    o.Scopers,
	}
	if len(s.Meta().Fields) > 0 {
		v.searchFields = deriveFields(s)
		v.orderingFields = v.searchFields
		v.restricted = true
	}
	var err error
	if o.SearchFields != nil {
		if v.searchFields, err = v.modelFields(o.SearchFields); err != nil {
			return nil, err
		}
	}
	if o.OrderingFields != nil {
		if v.orderingFields, err = v.modelFields(o.OrderingFields); err != nil {
			return nil, err
		}
		v.restricted = true
	}
	logger.Debug2f("View set: '%s' search fields: %v, ordering fields: %v", s.ModelStruct(), v.searchFields, v.orderingFields)
	return v, nil
}

// MustNew creates the view set. Panics on error.
func MustNew(s serializer.Serializer, d *db.DB, options ...Option) *ViewSet {
	v, err := New(s, d, options...)
	if err != nil {
		panic(err)
	}
	return v
}

// deriveFields gets the model fields of the declared serializer fields usable for the search and ordering.
func deriveFields(s serializer.Serializer) []*mapping.StructField {
	fields := []*mapping.StructField{}
	meta := s.Meta()
	for _, field := range s.DeclaredFields() {
		if !meta.HasField(field.Name) || field.WriteOnly {
			continue
		}
		switch field.Kind {
		case serializer.KindChar, serializer.KindInteger, serializer.KindDateTime:
		default:
			continue
		}
		if model := field.ModelField(); model != nil {
			fields = append(fields, model)
		}
	}
	return fields
}

// modelFields gets the stored model fields for the serializer field or model field 'names'.
func (v *ViewSet) modelFields(names []string) ([]*mapping.StructField, error) {
	fields := []*mapping.StructField{}
	for _, name := range names {
		if field, ok := v.serializer.FieldByName(name); ok && field.ModelField() != nil {
			fields = append(fields, field.ModelField())
			continue
		}
		field, ok := v.ModelStruct().FieldByName(name)
		if !ok || field.IsRelationship() {
			return nil, errors.NewDetf(ClassInitialization, "field: '%s' not found in the model: '%s'", name, v.ModelStruct())
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// ModelStruct returns the view set's model structure.
func (v *ViewSet) ModelStruct() *mapping.ModelStruct {
	return v.serializer.ModelStruct()
}

// Serializer returns the view set's serializer.
func (v *ViewSet) Serializer() serializer.Serializer {
	return v.serializer
}

// SearchFields returns the fields used by the search backend.
func (v *ViewSet) SearchFields() []*mapping.StructField {
	return v.searchFields
}

// OrderingFields returns the fields allowed by the ordering backend.
func (v *ViewSet) OrderingFields() []*mapping.StructField {
	return v.orderingFields
}

// Credential returns the request's credential or nil.
func (v *ViewSet) Credential(req *http.Request) *auth.Credential {
	return auth.CtxGetCredential(req.Context())
}

// Queryset creates the request's query scope. The query parameters are translated into the
// filters, the scope is distinct and all the view set scopers are applied.
func (v *ViewSet) Queryset(req *http.Request) (*query.Scope, error) {
	keywords, err := query.ParseParams(req.URL.Query(), v.settings)
	if err != nil {
		return nil, err
	}
	s := query.NewScope(v.ModelStruct())
	if err = s.AddKeywords(keywords...); err != nil {
		return nil, err
	}
	s.Distinct = true
	for _, scoper := range v.scopers {
		if err = scoper(req, s); err != nil {
			return nil, err
		}
	}
	logger.Debug3f("View set: '%s' queryset: %s", v.ModelStruct(), s)
	return s, nil
}

// filterQueryset applies the search, ordering and pagination backends on the scope.
func (v *ViewSet) filterQueryset(req *http.Request, s *query.Scope) {
	params := req.URL.Query()
	s.Search = query.NewSearch(params.Get(v.settings.SearchParam), v.searchFields)
	if raw := params.Get(v.settings.OrderingParam); raw != "" && (!v.restricted || len(v.orderingFields) > 0) {
		s.OrderBy(query.ParseOrdering(v.ModelStruct(), raw, v.orderingFields)...)
	}
	s.Pagination = query.ParsePagination(params, v.settings)
}
