package gormrepo

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jinzhu/gorm"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
	"github.com/neuronlabs/fancy/mapping"
	"github.com/neuronlabs/fancy/repository"
)

// Compile time check for the repository interfaces.
var (
	_ repository.Repository    = &GORMRepository{}
	_ repository.Transactioner = &GORMRepository{}
	_ repository.Closer        = &GORMRepository{}
	_ repository.Migrator      = &GORMRepository{}
)

var logger = log.NewModuleLogger("gormrepo")

// GORMRepository is the repository for the gorm accessed databases.
// The gorm associations are disabled - the relationships are handled by the db package.
// The models relationship fields needs to be ignored by the gorm (`gorm:"-"`) or
// defined as the gorm associations.
type GORMRepository struct {
	db     *gorm.DB
	models *modelCache
}

// Open opens the gorm database connection for the repository config and creates the repository.
func Open(cfg *config.Repository) (*GORMRepository, error) {
	db, err := gorm.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.NewDetf(repository.ClassInternal, "opening '%s' database failed: %v", cfg.Driver, err)
	}
	db.LogMode(cfg.LogMode)
	return New(db), nil
}

// New creates new GORM Repository for the provided database connection.
func New(db *gorm.DB) *GORMRepository {
	db.SetLogger(gormLogger{})
	return &GORMRepository{db: db, models: newModelCache()}
}

// RepositoryName implements repository.Namer interface.
func (g *GORMRepository) RepositoryName() string {
	return "gorm"
}

// DB returns the gorm database connection.
func (g *GORMRepository) DB() *gorm.DB {
	return g.db
}

// NewDB creates new database session with the associations set to false.
func (g *GORMRepository) NewDB() *gorm.DB {
	db := g.db.New()
	db = db.Set("gorm:association_autoupdate", false)
	db = db.Set("gorm:association_autocreate", false)
	db = db.Set("gorm:association_save_reference", false)
	db = db.Set("gorm:save_associations", false)
	return db
}

// Begin implements repository.Transactioner interface.
func (g *GORMRepository) Begin(ctx context.Context, options *sql.TxOptions) (repository.Tx, error) {
	tx := g.db.BeginTx(ctx, options)
	if tx.Error != nil {
		return nil, errors.NewDetf(repository.ClassTx, "begin transaction failed: %v", tx.Error)
	}
	logger.Debug3f("Transaction begins")
	return &Tx{GORMRepository: &GORMRepository{db: tx, models: g.models}}, nil
}

// MigrateModels implements repository.Migrator interface.
func (g *GORMRepository) MigrateModels(ctx context.Context, models ...*mapping.ModelStruct) error {
	for _, mStruct := range models {
		if _, err := g.model(mStruct); err != nil {
			return err
		}
		if err := g.NewDB().AutoMigrate(mStruct.NewModel()).Error; err != nil {
			return errors.NewDetf(repository.ClassInternal, "migrating model: '%s' failed: %v", mStruct, err)
		}
		logger.Debugf("Migrated model: '%s'", mStruct)
	}
	return nil
}

// Close implements repository.Closer interface.
func (g *GORMRepository) Close(ctx context.Context) error {
	return g.db.Close()
}

// Tx is the gorm repository transaction.
type Tx struct {
	*GORMRepository
}

// Commit implements repository.Tx interface.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.db.Commit().Error; err != nil {
		return errors.NewDetf(repository.ClassTx, "commit failed: %v", err)
	}
	logger.Debug3f("Transaction committed")
	return nil
}

// Rollback implements repository.Tx interface.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.db.Rollback().Error; err != nil {
		return errors.NewDetf(repository.ClassTx, "rollback failed: %v", err)
	}
	logger.Debug3f("Transaction rolled back")
	return nil
}

type modelCache struct {
	models map[*mapping.ModelStruct]*gormModel
	lock   sync.RWMutex
}

func newModelCache() *modelCache {
	return &modelCache{models: make(map[*mapping.ModelStruct]*gormModel)}
}

// gormLogger writes the gorm logs into the module logger.
type gormLogger struct{}

// Print implements gorm.logger interface.
func (gormLogger) Print(values ...interface{}) {
	logger.Debugf("%v", values)
}
