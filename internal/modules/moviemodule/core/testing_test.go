package core

import (
	"testing"

	"github.com/mantonx/cinelog/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory test database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&database.User{},
		&database.Artist{},
		&database.Genre{},
		&database.Movie{},
		&database.Rating{},
	)
	require.NoError(t, err)

	return db
}
