package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/storelens/storelens/internal/config"
)

type DB struct {
	*sql.DB
	driver string
}

// NewConnection opens a snapshot database. Driver is mysql or postgres;
// postgres rides on the pgx stdlib adapter.
func NewConnection(cfg *config.DBConfig) (*DB, error) {
	driverName := cfg.Driver
	if driverName == "postgres" {
		driverName = "pgx"
	}
	if driverName != "mysql" && driverName != "pgx" {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Placeholders returns the squirrel placeholder format matching the driver:
// $1 for postgres, ? for mysql.
func (db *DB) Placeholders() sq.PlaceholderFormat {
	if db.driver == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

// HealthCheck performs a simple health check on the database.
func (db *DB) HealthCheck() error {
	return db.Ping()
}
