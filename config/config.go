package config

import (
	"gopkg.in/go-playground/validator.v9"

	"github.com/neuronlabs/fancy/errors"
)

// Config contains general configurations for the fancy service.
type Config struct {
	// LogLevel is the current logging level.
	LogLevel string `mapstructure:"log_level" validate:"isdefault|oneof=debug3 debug2 debug info warning error critical"`

	// NamingConvention is the naming convention used while preparing the models.
	// Allowed values:
	// - camel
	// - lower_camel
	// - snake
	// - kebab
	NamingConvention string `mapstructure:"naming_convention" validate:"isdefault|oneof=camel lower_camel snake kebab"`

	// Fancy contains the view sets query parameters settings.
	Fancy *Fancy `mapstructure:"fancy" validate:"required"`

	// Gateway is the configuration for the gateway.
	Gateway *Gateway `mapstructure:"gateway" validate:"required"`

	// Repository defines the default repository connection.
	Repository *Repository `mapstructure:"repository" validate:"required"`

	// Auth defines the credential settings.
	Auth *Auth `mapstructure:"auth"`
}

// Validate validates the config values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.NewDet(ClassConfigInvalidValue, "invalid config").SetDetails(err.Error())
	}
	return nil
}
