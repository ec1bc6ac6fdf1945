// Package stores provides the transaction runner shared by module stores.
package stores

import (
	"context"

	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// TransactionRunner executes store write functions in one database transaction.
type TransactionRunner struct {
	dbClient provider.DBClientInterface
}

var _ dbmodel.Transactioner = (*TransactionRunner)(nil)

// NewTransactionRunner creates a runner over the given client.
func NewTransactionRunner(dbClient provider.DBClientInterface) *TransactionRunner {
	return &TransactionRunner{dbClient: dbClient}
}

// ExecuteTransaction executes multiple store operations in a single transaction.
// The first failing function rolls back everything before it.
func (r *TransactionRunner) ExecuteTransaction(ctx context.Context, queries []func(tx dbmodel.TxInterface) error) error {
	logger := log.GetLogger().WithContext(ctx)
	logger.Debug("Starting transaction", log.Int("query_count", len(queries)))

	tx, err := r.dbClient.BeginTx(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", log.Error(err))
		return err
	}

	for i, query := range queries {
		if err := query(tx); err != nil {
			logger.Warn("Transaction query failed, rolling back",
				log.Error(err),
				log.Int("failed_query_index", i),
			)
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Rollback failed", log.Error(rbErr))
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", log.Error(err))
		return err
	}

	logger.Debug("Transaction committed successfully", log.Int("query_count", len(queries)))
	return nil
}
