// Package db embeds the SQL migrations and opens the gorm handle over a shared connection.
package db

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	MigrationsDir   = "migrations"
	MigrationsTable = "schema_migrations"
)

// GooseDialect maps a configured driver name to the goose dialect.
func GooseDialect(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}

func setupGoose(driver string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(MigrationsTable)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(GooseDialect(driver)); err != nil {
		return fmt.Errorf("goose: set dialect: %w", err)
	}
	return nil
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(sqlDB *sql.DB, driver string) error {
	if err := setupGoose(driver); err != nil {
		return err
	}
	if err := goose.Up(sqlDB, MigrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the latest applied migration.
func MigrateDown(sqlDB *sql.DB, driver string) error {
	if err := setupGoose(driver); err != nil {
		return err
	}
	if err := goose.Down(sqlDB, MigrationsDir); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// OpenGorm wraps an already opened connection pool so gorm, goose and the
// health check all share it.
func OpenGorm(sqlDB *sql.DB, driver string, silent bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite3", Conn: sqlDB})
	case "postgres":
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// OpenSQLiteMemory returns a migrated in-memory store pinned to one connection.
func OpenSQLiteMemory() (*gorm.DB, error) {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateUp(sqlDB, "sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return OpenGorm(sqlDB, "sqlite", true)
}
