package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/repository"
)

// transaction is the state of the DB bound to the transaction. It keeps the unique
// repository transactions started within it.
type transaction struct {
	id      uuid.UUID
	options *sql.TxOptions
	txs     map[repository.Repository]repository.Tx
	order   []repository.Tx
}

func (t *transaction) repository(ctx context.Context, repo repository.Repository) (repository.Repository, error) {
	if tx, ok := t.txs[repo]; ok {
		return tx, nil
	}
	transactioner, ok := repo.(repository.Transactioner)
	if !ok {
		logger.Debug2f("Transaction: '%s' repository: '%s' doesn't support transactions", t.id, repo.RepositoryName())
		return repo, nil
	}
	tx, err := transactioner.Begin(ctx, t.options)
	if err != nil {
		return nil, err
	}
	logger.Debug2f("Transaction: '%s' began in the repository: '%s'", t.id, repo.RepositoryName())
	t.txs[repo] = tx
	t.order = append(t.order, tx)
	return tx, nil
}

func (t *transaction) commit(ctx context.Context) error {
	for i, tx := range t.order {
		if err := tx.Commit(ctx); err != nil {
			// the remaining transactions are rolled back.
			for _, rest := range t.order[i+1:] {
				if rerr := rest.Rollback(ctx); rerr != nil {
					logger.Errorf("Transaction: '%s' rollback failed: %v", t.id, rerr)
				}
			}
			return err
		}
	}
	logger.Debug2f("Transaction: '%s' committed", t.id)
	return nil
}

func (t *transaction) rollback(ctx context.Context) error {
	var multi errors.MultiError
	for i := len(t.order) - 1; i >= 0; i-- {
		if err := t.order[i].Rollback(ctx); err != nil {
			multi = append(multi, err)
		}
	}
	logger.Debug2f("Transaction: '%s' rolled back", t.id)
	if len(multi) > 0 {
		return multi
	}
	return nil
}

// RunInTransaction runs the function 'fn' with the DB bound to the transaction. If the 'fn' returns
// an error or panics, all the repository transactions are rolled back, otherwise they are committed.
// If the db is already bound to a transaction the 'fn' joins it.
func (db *DB) RunInTransaction(ctx context.Context, options *sql.TxOptions, fn func(db *DB) error) (err error) {
	if db.tx != nil {
		return fn(db)
	}
	txDB := &DB{
		models:       db.models,
		repository:   db.repository,
		repositories: db.repositories,
		tx: &transaction{
			id:      uuid.New(),
			options: options,
			txs:     make(map[repository.Repository]repository.Tx),
		},
	}
	logger.Debug3f("Transaction: '%s' starts", txDB.tx.id)

	defer func() {
		if r := recover(); r != nil {
			if rerr := txDB.tx.rollback(ctx); rerr != nil {
				logger.Errorf("Transaction: '%s' rollback after panic failed: %v", txDB.tx.id, rerr)
			}
			panic(r)
		}
	}()

	if err = fn(txDB); err != nil {
		if rerr := txDB.tx.rollback(ctx); rerr != nil {
			logger.Errorf("Transaction: '%s' rollback failed: %v", txDB.tx.id, rerr)
		}
		return err
	}
	return txDB.tx.commit(ctx)
}
