package db

import (
	"context"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
)

var logger = log.NewModuleLogger("db")

// Option is the function that sets the DB options.
type Option func(db *DB)

// WithRepository sets the 'repo' for the model struct 'mStruct' instead of the default repository.
func WithRepository(mStruct *mapping.ModelStruct, repo repository.Repository) Option {
	return func(db *DB) {
		db.repositories[mStruct] = repo
	}
}

// DB is the model aware facade over the repositories.
type DB struct {
	models       *mapping.ModelMap
	repository   repository.Repository
	repositories map[*mapping.ModelStruct]repository.Repository
	tx           *transaction
}

// New creates new DB for the 'models' map with the default repository 'repo'.
func New(models *mapping.ModelMap, repo repository.Repository, options ...Option) *DB {
	db := &DB{
		models:       models,
		repository:   repo,
		repositories: make(map[*mapping.ModelStruct]repository.Repository),
	}
	for _, option := range options {
		option(db)
	}
	return db
}

// ModelMap returns the db model map.
func (db *DB) ModelMap() *mapping.ModelMap {
	return db.models
}

// ModelStruct gets the mapped model struct for the 'model'.
func (db *DB) ModelStruct(model interface{}) (*mapping.ModelStruct, error) {
	return db.models.GetModelStruct(model)
}

// InTransaction checks if the db is bound to the transaction.
func (db *DB) InTransaction() bool {
	return db.tx != nil
}

// Repository gets the repository for the model struct. Within the transaction it returns the repository
// transaction, which is started on the first use.
func (db *DB) Repository(ctx context.Context, mStruct *mapping.ModelStruct) (repository.Repository, error) {
	repo := db.baseRepository(mStruct)
	if repo == nil {
		return nil, errors.NewDetf(ClassNoRepository, "no repository found for the model: '%s'", mStruct)
	}
	if db.tx == nil {
		return repo, nil
	}
	return db.tx.repository(ctx, repo)
}

func (db *DB) baseRepository(mStruct *mapping.ModelStruct) repository.Repository {
	if repo, ok := db.repositories[mStruct]; ok {
		return repo
	}
	return db.repository
}

// Migrate migrates all the models from the model map into their repositories that
// implements repository.Migrator interface.
func (db *DB) Migrate(ctx context.Context) error {
	byRepository := map[repository.Repository][]*mapping.ModelStruct{}
	var order []repository.Repository
	for _, mStruct := range db.models.Models() {
		repo := db.baseRepository(mStruct)
		if repo == nil {
			continue
		}
		if _, ok := byRepository[repo]; !ok {
			order = append(order, repo)
		}
		byRepository[repo] = append(byRepository[repo], mStruct)
	}
	for _, repo := range order {
		migrator, ok := repo.(repository.Migrator)
		if !ok {
			continue
		}
		if err := migrator.MigrateModels(ctx, byRepository[repo]...); err != nil {
			return err
		}
		logger.Debugf("Migrated models in the repository: '%s'", repo.RepositoryName())
	}
	return nil
}

// Close closes all the repositories that implements repository.Closer.
func (db *DB) Close(ctx context.Context) error {
	closed := map[repository.Repository]struct{}{}
	repos := []repository.Repository{db.repository}
	for _, mStruct := range db.models.Models() {
		repos = append(repos, db.baseRepository(mStruct))
	}

	var multi errors.MultiError
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		if _, ok := closed[repo]; ok {
			continue
		}
		closed[repo] = struct{}{}
		if closer, ok := repo.(repository.Closer); ok {
			if err := closer.Close(ctx); err != nil {
				multi = append(multi, err)
			}
		}
	}
	if len(multi) > 0 {
		return multi
	}
	return nil
}
