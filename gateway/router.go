package gateway

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	adapter "github.com/gwatts/gin-adapter"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/viewset"
)

var logger = log.NewModuleLogger("gateway")

// Handlers are the collection handlers routed by the Router. Both the viewset.ViewSet
// and viewset.SelfViewSet implements it.
type Handlers interface {
	List(rw http.ResponseWriter, req *http.Request)
	Retrieve(rw http.ResponseWriter, req *http.Request)
	Create(rw http.ResponseWriter, req *http.Request)
	Update(rw http.ResponseWriter, req *http.Request)
	PartialUpdate(rw http.ResponseWriter, req *http.Request)
	Destroy(rw http.ResponseWriter, req *http.Request)
}

// compile time checks for the Handlers interface.
var (
	_ Handlers = &viewset.ViewSet{}
	_ Handlers = &viewset.SelfViewSet{}
)

// RouterOption sets the router options.
type RouterOption func(r *Router)

// WithContainer sets the middleware container used by the router.
func WithContainer(c *Container) RouterOption {
	return func(r *Router) {
		r.middlewares = c
	}
}

// Router routes the collections handlers with the gin engine.
type Router struct {
	engine      *gin.Engine
	config      *config.Router
	middlewares *Container
	collections []string
}

// compile time check for the http.Handler interface.
var _ http.Handler = &Router{}

// NewRouter creates new router with the 'cfg' configuration. The health route is registered at '<prefix>/health'.
func NewRouter(cfg *config.Router, options ...RouterOption) *Router {
	if cfg == nil {
		cfg = &config.Router{}
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	r := &Router{engine: engine, config: cfg, middlewares: defaultContainer}
	for _, option := range options {
		option(r)
	}
	engine.GET(r.path("health"), r.health)
	return r
}

// Engine returns the gin engine of the router.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Collections returns the names of the registered collections.
func (r *Router) Collections() []string {
	return r.collections
}

// ServeHTTP implements http.Handler interface.
func (r *Router) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(rw, req)
}

// Register routes the 'collection' handlers:
//	GET    /<prefix>/<collection>      - List
//	POST   /<prefix>/<collection>      - Create
//	GET    /<prefix>/<collection>/:id  - Retrieve
//	PUT    /<prefix>/<collection>/:id  - Update
//	PATCH  /<prefix>/<collection>/:id  - PartialUpdate
//	DELETE /<prefix>/<collection>/:id  - Destroy
// The router default middlewares followed by the 'middlewares' are chained before each handler.
func (r *Router) Register(collection string, h Handlers, middlewares ...string) error {
	if collection == "" || h == nil {
		return errors.NewDet(ClassRouting, "no collection or handlers provided")
	}
	names := append(append([]string{}, r.config.DefaultMiddlewares...), middlewares...)
	base := r.path(collection)
	item := path.Join(base, ":id")

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, base, h.List},
		{http.MethodPost, base, h.Create},
		{http.MethodGet, item, h.Retrieve},
		{http.MethodPut, item, h.Update},
		{http.MethodPatch, item, h.PartialUpdate},
		{http.MethodDelete, item, h.Destroy},
	}
	for _, route := range routes {
		hc, err := r.getHandlersChain(withLookup(route.handler), names...)
		if err != nil {
			logger.Errorf("Routing endpoint: '%s %s' failed: %v", route.method, route.path, err)
			return err
		}
		r.engine.Handle(route.method, route.path, hc...)
		logger.Debug2f("Routed: '%s %s'", route.method, route.path)
	}
	r.collections = append(r.collections, collection)
	logger.Debugf("Registered collection: '%s' with the middlewares: %v", collection, names)
	return nil
}

// getHandlersChain gets the middlewares by their names and wraps them into the gin handlers chain.
func (r *Router) getHandlersChain(f gin.HandlerFunc, middlewares ...string) (gin.HandlersChain, error) {
	var hc gin.HandlersChain
	for _, name := range middlewares {
		mid, err := r.middlewares.Get(name)
		if err != nil {
			return nil, err
		}
		hc = append(hc, adapter.Wrap(mid))
	}
	return append(hc, f), nil
}

func (r *Router) path(parts ...string) string {
	return path.Join(append([]string{"/", r.config.Prefix}, parts...)...)
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "collections": r.collections})
}

// withLookup stores the ':id' path parameter as the view set lookup.
func withLookup(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		if id := c.Param("id"); id != "" {
			req = req.WithContext(viewset.CtxWithLookup(req.Context(), id))
		}
		h(c.Writer, req)
	}
}
