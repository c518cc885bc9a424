package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

// Open opens a database connection for the named driver and verifies it.
// driver accepts any name understood by ParseDialect.
//
// SQLite databases are created if missing and get pragmas for WAL mode,
// foreign key enforcement, and busy timeout.
func Open(driver, dsn string) (*sql.DB, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("opening %s database: dsn is required", d)
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d, err)
	}

	if d == SQLite {
		if err := configureSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", d, err)
	}
	return db, nil
}

// SetPoolSize caps the open connections of a database opened with driver.
// SQLite keeps its single connection whatever n is, and n <= 0 leaves the
// pool unchanged.
func SetPoolSize(db *sql.DB, driver string, n int) error {
	d, err := ParseDialect(driver)
	if err != nil {
		return err
	}
	if n > 0 && d != SQLite {
		db.SetMaxOpenConns(n)
	}
	return nil
}

func configureSQLite(db *sql.DB) error {
	// SQLite is single-writer; limit the pool to one connection to avoid
	// lock contention and make the single-connection intent explicit.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}
	return nil
}
