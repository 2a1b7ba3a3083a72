package config

// Fancy is the configuration used by the view sets while translating the
// query string parameters into the query filters.
type Fancy struct {
	// TypeCasting defines if the numeric query parameter values should be cast
	// into integer or float values.
	TypeCasting bool `mapstructure:"type_casting"`

	// ReservedParams are the query parameters that are never used as the filters.
	ReservedParams []string `mapstructure:"reserved_params"`

	// SearchParam is the query parameter name used by the search filter.
	SearchParam string `mapstructure:"search_param" validate:"required"`

	// OrderingParam is the query parameter name used by the ordering filter.
	OrderingParam string `mapstructure:"ordering_param" validate:"required"`

	// LimitParam is the query parameter name used by the limit-offset pagination.
	LimitParam string `mapstructure:"limit_param" validate:"required"`

	// OffsetParam is the query parameter name used by the limit-offset pagination.
	OffsetParam string `mapstructure:"offset_param" validate:"required"`

	// MaxLimit is the maximum page size. Zero means no limit.
	MaxLimit int `mapstructure:"max_limit" validate:"min=0"`
}

// IsReserved checks if the 'param' is one of the reserved parameters.
func (f *Fancy) IsReserved(param string) bool {
	for _, reserved := range f.ReservedParams {
		if reserved == param {
			return true
		}
	}
	return false
}
