package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DefaultSQLiteDSN is used when no DSN is configured.
const DefaultSQLiteDSN = "file:finmanager.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Open creates and configures a connection pool for the given driver and DSN,
// verifies it with a ping and makes sure the key/value schema exists.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*sql.DB, error) {
	if dsn == "" {
		if driver != DriverSQLite {
			return nil, fmt.Errorf("database DSN required for driver %q", driver)
		}
		dsn = DefaultSQLiteDSN
	}

	// 1. Open a new connection pool.
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	// 2. Configure the connection pool settings.
	switch driver {
	case DriverSQLite:
		// SQLite has a single writer; one connection also keeps ':memory:' databases alive.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// 3. Ping the database to verify the connection.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	// 4. Create the schema.
	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connection pool established", zap.String("driver", driver))
	return db, nil
}

// Migrate creates the kv_store table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var ddl string
	switch driver {
	case DriverMySQL:
		ddl = `
			CREATE TABLE IF NOT EXISTS kv_store (
				k VARCHAR(191) NOT NULL PRIMARY KEY,
				v MEDIUMBLOB NOT NULL,
				updated_at BIGINT NOT NULL
			)`
	case DriverSQLite:
		ddl = `
			CREATE TABLE IF NOT EXISTS kv_store (
				k TEXT NOT NULL PRIMARY KEY,
				v BLOB NOT NULL,
				updated_at INTEGER NOT NULL
			)`
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}
