package database

import (
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open opens a database connection for the given DSN. SQLite is the
// default; a postgres:// DSN selects the Postgres driver instead.
// TranslateError is enabled so uniqueness violations surface as
// gorm.ErrDuplicatedKey regardless of the driver.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{TranslateError: true}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), config)
	}
	return gorm.Open(sqlite.Open(dsn), config)
}

// Connect initializes the shared database connection.
func Connect(dsn string) error {
	var err error
	DB, err = Open(dsn)
	return err
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}
