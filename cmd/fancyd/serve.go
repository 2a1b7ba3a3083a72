package main

import (
	"context"
	"net/http"

	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/spf13/cobra"

	"github.com/neuronlabs/fancy/auth"
	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/db"
	"github.com/neuronlabs/fancy/gateway"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
	"github.com/neuronlabs/fancy/repository/gormrepo"
	"github.com/neuronlabs/fancy/repository/memory"
)

// serveCmd runs the bookshelf gateway.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the bookshelf collections",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "overrides the gateway port")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, err := cmd.Flags().GetInt("port"); err == nil && port != 0 {
		cfg.Gateway.Port = port
	}
	ctx := context.Background()
	handler, d, err := newHandler(ctx, cfg, gateway.DefaultContainer())
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(ctx); err != nil {
			log.Errorf("Closing repositories failed: %v", err)
		}
	}()
	return gateway.NewServer(cfg.Gateway, handler).Run(ctx)
}

// newHandler creates the bookshelf gateway handler for the config 'c'. The credential middleware
// is registered within the 'container'.
func newHandler(ctx context.Context, c *config.Config, container *gateway.Container) (http.Handler, *db.DB, error) {
	var naming mapping.NamingConvention
	if err := naming.Parse(c.NamingConvention); err != nil {
		return nil, nil, err
	}
	models := mapping.NewModelMap(naming)
	if err := models.RegisterModels(bookshelfModels()...); err != nil {
		return nil, nil, err
	}
	repo, err := newRepository(c.Repository)
	if err != nil {
		return nil, nil, err
	}
	d := db.New(models, repo)
	if err = d.Migrate(ctx); err != nil {
		return nil, nil, err
	}
	if err = registerCredential(c.Auth, container); err != nil {
		return nil, nil, err
	}

	router := gateway.NewRouter(c.Gateway.Router, gateway.WithContainer(container))
	routes, err := bookshelfRoutes(models, d, c.Fancy)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range routes {
		if err = router.Register(r.collection, r.handlers, r.middlewares...); err != nil {
			return nil, nil, err
		}
	}
	return router, d, nil
}

func newRepository(c *config.Repository) (repository.Repository, error) {
	if c.Driver == "memory" {
		return memory.New(), nil
	}
	return gormrepo.Open(c)
}

// registerCredential registers the gateway.Credential middleware. Without the auth secret the requests
// never have the credential.
func registerCredential(c *config.Auth, container *gateway.Container) error {
	if c == nil || c.Secret == "" {
		log.Warningf("No auth secret provided. The requests are not authenticated.")
		return container.RegisterMiddleware(gateway.Credential, func(next http.Handler) http.Handler { return next })
	}
	verifier, err := auth.NewJWTVerifier(auth.WithSecret([]byte(c.Secret)), auth.WithIDClaim(c.IDClaim))
	if err != nil {
		return err
	}
	return container.RegisterMiddleware(gateway.Credential, auth.Middleware(verifier, c.Header))
}
