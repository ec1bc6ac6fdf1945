/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */


package provider

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// DBClientInterface is the data access surface used by stores.
type DBClientInterface interface {
	Query(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error)
	Execute(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) (int64, error)
	BeginTx(ctx context.Context) (dbmodel.TxInterface, error)
}

// DBClient implements DBClientInterface over sqlx.
type DBClient struct {
	db     *sqlx.DB
	dbType string
}

// NewDBClient creates a new DBClient.
func NewDBClient(db *sqlx.DB, dbType string) *DBClient {
	return &DBClient{db: db, dbType: dbType}
}

// Query runs a read query and returns each row as a column-name keyed map.
// Byte slices are converted to strings so mappers can type-assert on string.
func (c *DBClient) Query(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.db.QueryxContext(ctx, query.Query, args...)
	if err != nil {
		log.GetLogger().WithContext(ctx).Debug("Query failed",
			log.String("query_id", query.GetID()), log.Error(err))
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("query %s scan failed: %w", query.GetID(), err)
		}
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s iteration failed: %w", query.GetID(), err)
	}

	return results, nil
}

// Execute runs a single write statement outside of a transaction and returns the affected row count.
func (c *DBClient) Execute(ctx context.Context, query dbmodel.DBQuery, args ...interface{}) (int64, error) {
	result, err := c.db.ExecContext(ctx, query.Query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute %s failed: %w", query.GetID(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute %s rows affected: %w", query.GetID(), err)
	}
	return affected, nil
}

// BeginTx starts a new transaction.
func (c *DBClient) BeginTx(ctx context.Context) (dbmodel.TxInterface, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}
