package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	dbPingTimeout     = 5 * time.Second
	dbMaxOpenConns    = 4
	dbMaxIdleConns    = 4
	dbConnMaxLifetime = 5 * time.Minute
)

// Dialect is the SQL flavour behind a connection.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDSN picks the driver for a connection string. postgres:// URLs and
// key=value strings go to Postgres; sqlite:// URLs and bare paths are
// SQLite database files.
func ParseDSN(dsn string) (Dialect, string) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn
	case strings.Contains(dsn, "dbname=") || strings.Contains(dsn, "host="):
		return DialectPostgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://")
	default:
		return DialectSQLite, dsn
	}
}

// Open connects to the history database, verifies it with a ping and
// creates the schema if needed.
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	dialect, source := ParseDSN(dsn)

	db, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	if dialect == DialectSQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(dbMaxOpenConns)
		db.SetMaxIdleConns(dbMaxIdleConns)
		db.SetConnMaxLifetime(dbConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, "", err
	}

	log.Printf("INFO (Datastore): Connected to %s delivery history", dialect)
	return db, dialect, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	timestampType := "TIMESTAMP"
	if dialect == DialectPostgres {
		timestampType = "TIMESTAMPTZ"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS delivery_attempts (
			id               TEXT PRIMARY KEY,
			plan_fingerprint TEXT NOT NULL,
			day              INTEGER NOT NULL,
			reference        TEXT NOT NULL,
			destination_type TEXT NOT NULL,
			created_at       ` + timestampType + ` NOT NULL,
			status           TEXT NOT NULL,
			error_message    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS delivery_attempts_plan_day
			ON delivery_attempts (plan_fingerprint, day)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate delivery history: %w", err)
		}
	}
	return nil
}

var positionalParam = regexp.MustCompile(`\$\d+`)

// rebind rewrites Postgres $N placeholders for SQLite. Queries in this
// package reference each parameter once, in order.
func rebind(dialect Dialect, query string) string {
	if dialect == DialectPostgres {
		return query
	}
	return positionalParam.ReplaceAllString(query, "?")
}
