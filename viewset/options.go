package viewset

import (
	"net/http"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/query"
)

// Scoper modifies the view set's query scope for given request.
type Scoper func(req *http.Request, s *query.Scope) error

// Options are the view set options.
type Options struct {
	// SearchFields are the names of the fields used by the search backend.
	// If nil, the fields are derived from the serializer.
	SearchFields []string
	// OrderingFields are the names of the fields allowed by the ordering backend.
	// If nil, the fields are derived from the serializer.
	OrderingFields []string
	// Settings are the query parameters settings.
	Settings *config.Fancy
	// Scopers are applied on each query scope after the query parameter filters.
	Scopers []Scoper
}

// Option sets the view set Options.
type Option func(o *Options)

// WithSearchFields sets the search fields. No fields disables the search.
func WithSearchFields(fields ...string) Option {
	return func(o *Options) {
		o.SearchFields = append([]string{}, fields...)
	}
}

// WithOrderingFields sets the fields allowed for the ordering. No fields disables the ordering.
func WithOrderingFields(fields ...string) Option {
	return func(o *Options) {
		o.OrderingFields = append([]string{}, fields...)
	}
}

// WithSettings sets the query parameters settings.
func WithSettings(settings *config.Fancy) Option {
	return func(o *Options) {
		o.Settings = settings
	}
}

// WithScoper adds the query scoper.
func WithScoper(scoper Scoper) Option {
	return func(o *Options) {
		o.Scopers = append(o.Scopers, scoper)
	}
}
