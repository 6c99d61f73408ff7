package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

type Config struct {
	// Driver is "mysql" or "sqlite".
	Driver string
	DSN    string
}

// Open connects to the configured database, applies pending migrations
// and returns a store over it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Driver == "mysql" {
		dsn, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		cfg.DSN = dsn
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}
	switch cfg.Driver {
	case "mysql":
		db.SetConnMaxLifetime(time.Minute * 3)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
	case "sqlite":
		// one connection keeps in-memory databases alive and serializes writers
		db.SetMaxOpenConns(1)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}
	if err := Migrate(db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// Migrate applies the embedded migrations for driver to db.
func Migrate(db *sql.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	var target database.Driver
	switch driver {
	case "mysql":
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case "sqlite":
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// mysqlDSN turns on the options the store relies on: DATETIME columns scan
// into time.Time and migration files may hold several statements.
func mysqlDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	c.ParseTime = true
	c.MultiStatements = true
	return c.FormatDSN(), nil
}
