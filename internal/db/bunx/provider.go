package bunx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeSQLite     DatabaseType = "sqlite"
)

// PoolConfig bounds the SQL connection pool. For PostgreSQL, MaxConns caps
// both open and idle connections. MinConns is not applied by either driver:
// database/sql has no minimum pool size, so no connections are kept open
// ahead of demand. SQLite ignores PoolConfig and always uses one open
// connection (single writer).
type PoolConfig struct {
	MinConns int
	MaxConns int
}

// DefaultPoolConfig mirrors the previous hardcoded PostgreSQL pool size.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MinConns: 1, MaxConns: 25}
}

// DetectDatabaseType determines the database type from a DSN string. A
// "unix://" DSN addresses PostgreSQL over a Unix domain socket, so it is
// classified as PostgreSQL rather than falling through to SQLite.
func DetectDatabaseType(dsn string) DatabaseType {
	switch {
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.HasPrefix(dsn, "unix://"):
		return DatabaseTypePostgreSQL
	default:
		// SQLite patterns: file:, :memory:, or plain file path
		return DatabaseTypeSQLite
	}
}

// NewDB creates a new Bun database instance for PostgreSQL or SQLite based
// on DSN, using pool to bound the connection pool.
func NewDB(dsn string, pool PoolConfig) (*bun.DB, error) {
	switch DetectDatabaseType(dsn) {
	case DatabaseTypePostgreSQL:
		return newPostgreSQLDB(dsn, pool)
	case DatabaseTypeSQLite:
		return newSQLiteDB(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type for DSN: %s", dsn)
	}
}

// newPostgreSQLDB creates a PostgreSQL connection
func newPostgreSQLDB(dsn string, pool PoolConfig) (*bun.DB, error) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)

	maxConns := pool.MaxConns
	if maxConns <= 0 {
		maxConns = DefaultPoolConfig().MaxConns
	}
	sqldb.SetMaxOpenConns(maxConns)
	sqldb.SetMaxIdleConns(maxConns)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// newSQLiteDB creates a SQLite connection using modernc.org/sqlite driver
func newSQLiteDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	isInMemory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")

	if isInMemory {
		// In-memory databases are destroyed when all connections close, so a
		// single long-lived connection keeps the database alive.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxLifetime(0)
	} else {
		sqldb.SetMaxOpenConns(1) // single writer, SQLite best practice
		sqldb.SetMaxIdleConns(2)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if !isInMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
