package repository

import (
	"context"
	"database/sql"

	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/query"
)

// Repository is the interface that defines the basic fancy repository.
// All the 'model' arguments are the non nil pointers to the model structures.
type Repository interface {
	Namer
	// Create inserts the 'model' into the repository. If the model's primary key is zero
	// the repository sets it to the generated value.
	Create(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}) error
	// Get gets the model with the 'primary' key value. If the model is not found
	// the function returns ClassNotFound error.
	Get(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) (interface{}, error)
	// Find gets all the models matching the scope.
	Find(ctx context.Context, s *query.Scope) ([]interface{}, error)
	// Count counts the models matching the scope filters and search.
	Count(ctx context.Context, s *query.Scope) (int64, error)
	// Update updates the 'fields' of the model with the primary key set. If no fields are
	// provided all the stored fields except the primary key are updated.
	Update(ctx context.Context, mStruct *mapping.ModelStruct, model interface{}, fields ...*mapping.StructField) error
	// Delete deletes the model with the 'primary' key value.
	Delete(ctx context.Context, mStruct *mapping.ModelStruct, primary interface{}) error
	// DeleteWhere deletes all the models matching the scope filters. Returns the number of deleted models.
	DeleteWhere(ctx context.Context, s *query.Scope) (int64, error)
	// UpdateWhere sets the 'values' for all the models matching the scope filters.
	// Returns the number of updated models.
	UpdateWhere(ctx context.Context, s *query.Scope, values map[*mapping.StructField]interface{}) (int64, error)
}

// Namer is the interface that defines the repository name.
type Namer interface {
	RepositoryName() string
}

// Transactioner is the interface implemented by the repositories that supports transactions.
type Transactioner interface {
	Begin(ctx context.Context, options *sql.TxOptions) (Tx, error)
}

// Tx is the repository transaction. All the repository operations called on the Tx are
// executed within the transaction.
type Tx interface {
	Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Closer is the interface used to close the repository connections.
type Closer interface {
	Close(ctx context.Context) error
}

// Migrator migrates the models into the repository.
type Migrator interface {
	MigrateModels(ctx context.Context, models ...*mapping.ModelStruct) error
}
