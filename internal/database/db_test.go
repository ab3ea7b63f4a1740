package database

import (
	"testing"

	"estate-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

// The column tags must stay dialect-neutral: sqlite cannot parse a
// Postgres function as a column default, so ids are generated in the
// BeforeCreate hooks instead.
func TestMigrateRunsOnSqlite(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))

	partner := &model.Partner{Name: "Desert Estates"}
	require.NoError(t, db.Create(partner).Error)
	assert.NotEqual(t, uuid.Nil, partner.ID)

	var reloaded model.Partner
	require.NoError(t, db.First(&reloaded, "id = ?", partner.ID).Error)
	assert.Equal(t, "Desert Estates", reloaded.Name)
}

// Safe pins its table name; gorm's inflection would otherwise create
// "saves" and break the raw-SQL paths that address "safes" directly.
func TestMigrateCreatesSafesTable(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable("safes"))

	safe := &model.Safe{Name: "Main"}
	require.NoError(t, db.Create(safe).Error)

	var count int64
	require.NoError(t, db.Table("safes").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
