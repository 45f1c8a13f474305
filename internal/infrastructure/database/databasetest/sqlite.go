// Package databasetest opens throwaway sqlite databases with every
// registered schema migrated.
package databasetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"sovereign-chat/internal/infrastructure/database"
	_ "sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
)

// NewSQLite returns a migrated in-memory database private to t.
func NewSQLite(t *testing.T) *transaction.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(database.Config{
		Driver:      database.DriverSQLite,
		DatabaseURL: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
		LogLevel:    gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateSchemas(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return transaction.NewDatabase(db)
}
