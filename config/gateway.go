package config

import (
	"time"
)

// CredentialMiddleware is the name of the default middleware that attaches the request credential.
const CredentialMiddleware = "credential"

// Gateway defines the configuration for the gateway.
type Gateway struct {
	// Port is the port used by the gateway service.
	Port int `mapstructure:"port" validate:"required"`

	// Hostname is the hostname used by the gateway service.
	Hostname string `mapstructure:"hostname" validate:"isdefault|hostname"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// ReadHeaderTimeout is the amount of time allowed to read
	// request headers.
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out
	// writes of the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the
	// next request when keep-alives are enabled.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout defines the time in which the server would shutdown
	// on the os.Interrupt event.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Router defines the router configuration.
	Router *Router `mapstructure:"router" validate:"required"`
}

// Router contains information about the router used in the gateway.
type Router struct {
	// Prefix is the url prefix for the API.
	Prefix string `mapstructure:"prefix"`

	// DefaultMiddlewares are the names of the middlewares used for each endpoint.
	DefaultMiddlewares []string `mapstructure:"default_middlewares"`
}
