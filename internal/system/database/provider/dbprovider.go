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


// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"sync"

	"github.com/complyhub/compliance-management-api/internal/system/database"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetComplianceDBClient() DBClientInterface
}

// DBProviderCloser is a separate interface for closing the provider.
// Only the lifecycle manager should use this interface.
type DBProviderCloser interface {
	Close() error
}

type dbProvider struct {
	mu     sync.RWMutex
	client DBClientInterface
	db     *database.DB
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the database connection.
func InitDBProvider(db *database.DB) {
	once.Do(func() {
		instance = &dbProvider{
			db:     db,
			client: NewDBClient(db.DB, db.Type()),
		}
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider")).
			Debug("Compliance DB client initialized")
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetDBProviderCloser returns the DBProvider with closing capability.
// This should only be called from the main lifecycle manager.
func GetDBProviderCloser() DBProviderCloser {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetComplianceDBClient returns the client for the compliance datasource.
func (d *dbProvider) GetComplianceDBClient() DBClientInterface {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client
}

// Close drops the client and closes the underlying connection pool.
func (d *dbProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider")).
		Debug("Closing database connections")
	d.client = nil
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
