package config

import (
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database named by DATABASE_URL. A DSN with a mysql scheme
// or the user:pass@tcp(...) form uses the MySQL driver; anything else is
// treated as a SQLite file path (local development default).
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL

	if strings.HasPrefix(dsn, "mysql://") {
		return gorm.Open(mysql.Open(strings.TrimPrefix(dsn, "mysql://")), &gorm.Config{})
	}
	if strings.Contains(dsn, "@tcp(") {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
