// Package testutil opens throwaway journal databases for tests
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"moodgraph/backend/internal/store"
)

var dbSeq atomic.Int64

// DB returns a migrated in-memory sqlite database private to the calling test
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := store.Open(store.DriverSQLite, dsn)
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Store returns a Store over a fresh test database
func Store(tb testing.TB) *store.Store {
	tb.Helper()
	return store.New(DB(tb))
}
