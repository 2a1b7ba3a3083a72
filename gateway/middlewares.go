package gateway

import (
	"net/http"
	"sync"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
)

const (
	// Credential is the name of the middleware that attaches the request credential.
	Credential = config.CredentialMiddleware
	// CredentialRequired is the name of the middleware that rejects the requests without the credential.
	CredentialRequired = "credential_required"
)

// MiddlewareFunc is the function used as a middleware for the gateway handlers.
type MiddlewareFunc func(next http.Handler) http.Handler

var defaultContainer = NewContainer()

func init() {
	if err := defaultContainer.RegisterMiddleware(CredentialRequired, auth.Required); err != nil {
		panic(err)
	}
}

// Container is the middleware container that stores the middleware functions by their names.
type Container struct {
	lock        sync.RWMutex
	middlewares map[string]MiddlewareFunc
}

// NewContainer creates new empty middleware container.
func NewContainer() *Container {
	return &Container{middlewares: make(map[string]MiddlewareFunc)}
}

// DefaultContainer returns the package level middleware container.
func DefaultContainer() *Container {
	return defaultContainer
}

// RegisterMiddleware registers provided middleware within the default container.
func RegisterMiddleware(name string, mid MiddlewareFunc) error {
	return defaultContainer.RegisterMiddleware(name, mid)
}

// Get returns the middleware function registered within the default container.
func Get(name string) (MiddlewareFunc, error) {
	return defaultContainer.Get(name)
}

// RegisterMiddleware registers the middleware with the 'name'. Returns the error if
// the name is already taken.
func (c *Container) RegisterMiddleware(name string, mid MiddlewareFunc) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.middlewares[name]; ok {
		logger.Errorf("Middleware with name: '%s' already registered.", name)
		return errors.NewDetf(ClassMiddlewareRegistered, "middleware: '%s' already registered", name)
	}
	c.middlewares[name] = mid
	logger.Debugf("Registered: '%s' middleware successfully.", name)
	return nil
}

// Get returns the middleware function by its name.
func (c *Container) Get(name string) (MiddlewareFunc, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	f, ok := c.middlewares[name]
	if !ok {
		logger.Errorf("Middleware with the name: '%s' is not registered.", name)
		return nil, errors.NewDetf(ClassMiddlewareNotRegistered, "middleware: '%s' not registered", name)
	}
	return f, nil
}
