package config

import (
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database configured via environment. A MySQL DSN takes
// precedence; otherwise a local SQLite file is used so the server runs with
// zero setup. Tests open their own in-memory SQLite instance.
func InitDB() (*gorm.DB, error) {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "tablemap.db"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}
