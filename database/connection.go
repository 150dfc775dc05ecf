// database/connection.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/utils"
	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
	_ "modernc.org/sqlite"             // pure-Go SQLite driver, registered as "sqlite"
)

// Open connects to the relational cache described by cfg and pings it. For
// SQLite the parent directory is created first. The caller owns the handle.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite path is not configured")
		}
		if err := utils.EnsureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
		return openSQLite(cfg.Path)
	case "mysql":
		return openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openExisting is Open without side effects on disk: a missing SQLite file
// is an error instead of being created empty.
func openExisting(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "sqlite" || cfg.Driver == "" {
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, fmt.Errorf("relational cache %s is not available: %w", cfg.Path, err)
		}
	}
	return Open(cfg)
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// One writer, one reader, never concurrent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 10000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout on %s: %w", path, err)
	}
	return db, nil
}

func openMySQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	// DSN: username:password@protocol(address)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// CacheExists reports whether the store is present and already holds table
// name. It never creates the store.
func CacheExists(cfg config.DatabaseConfig, name string) bool {
	if err := validateTableName(name); err != nil {
		return false
	}
	if cfg.Driver == "sqlite" || cfg.Driver == "" {
		if _, err := os.Stat(cfg.Path); errors.Is(err, fs.ErrNotExist) {
			return false
		}
	}
	db, err := openExisting(cfg)
	if err != nil {
		return false
	}
	defer db.Close()

	ok, err := tableExists(db, cfg.Driver, name)
	return err == nil && ok
}

func tableExists(db *sql.DB, driver, name string) (bool, error) {
	var n int
	var err error
	if driver == "mysql" {
		err = db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`, name).Scan(&n)
	} else {
		err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return n > 0, nil
}
