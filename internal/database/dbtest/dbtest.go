// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderflow/internal/database"
	"orderflow/internal/database/models"
)

// Open returns a migrated SQLite database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateOrderDB(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func CreateMenuItem(t testing.TB, db *gorm.DB, name string, price int64) models.MenuItem {
	t.Helper()

	item := models.MenuItem{
		Name:        name,
		Description: name + " description",
		Price:       price,
		ImageURL:    "https://example.com/" + name + ".jpg",
		Category:    "Test",
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func CreatePromo(t testing.TB, db *gorm.DB, promo models.PromoCode) models.PromoCode {
	t.Helper()

	require.NoError(t, db.Create(&promo).Error)
	return promo
}
