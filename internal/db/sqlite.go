// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the file-backed SQLite implementation of the
// backend seam. Plain files go through the pure-Go modernc driver;
// passphrase-protected files go through the SQLCipher driver, which
// encrypts pages with a key derived from the passphrase.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mutecomm/go-sqlcipher/v4" // registers "sqlite3", SQLCipher build
	_ "modernc.org/sqlite"                  // registers "sqlite", pure Go
)

const memoryPath = ":memory:"

// sqliteBackend wraps a single-connection database handle for one file.
type sqliteBackend struct {
	db   *bun.DB
	path string
}

// openSQLiteBackend opens or creates the database file. When a
// passphrase is supplied the SQLCipher driver keys the connection from
// it; on first creation that keys the file permanently. The key is
// probed immediately so a wrong passphrase fails here instead of
// masquerading as an empty database later.
func openSQLiteBackend(path, passphrase string) (*sqliteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, wrapStoreError("open", path, fmt.Errorf("create parent dir: %w", err))
	}

	driver, dsn := "sqlite", path
	if passphrase != "" {
		driver = "sqlite3"
		dsn = fmt.Sprintf("%s?_pragma_key=%s&_pragma_cipher_page_size=4096", path, url.QueryEscape(passphrase))
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, wrapStoreError("open", path, err)
	}
	// One logical connection per handle; the engine serializes statements
	// on it. More connections would also re-key per connection for the
	// SQLCipher driver, so keep it at exactly one.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := probeKey(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, wrapStoreError("open", path, MapDBError(err))
	}
	if err := configureSQLite(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, wrapStoreError("open", path, err)
	}

	return &sqliteBackend{
		db:   bun.NewDB(sqlDB, sqlitedialect.New()),
		path: path,
	}, nil
}

// probeKey issues a harmless read against the schema catalog. For an
// encrypted file under the wrong key (or a plain file opened with a
// key) SQLite reports SQLITE_NOTADB here.
func probeKey(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&n)
}

func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite %q: %w", stmt, err)
		}
	}
	return nil
}

// identArg wraps a column name as a safely quoted identifier argument
// for bun placeholder expressions.
func identArg(name string) any { return bun.Ident(name) }

func (b *sqliteBackend) ensureTable(ctx context.Context, schema *TableSchema) error {
	start := time.Now()
	if _, err := b.db.ExecContext(ctx, schema.createTableSQL()); err != nil {
		return err
	}
	dbLogf("db: ensured table %q in %s", schema.Name(), time.Since(start))
	return nil
}

func (b *sqliteBackend) insert(ctx context.Context, schema *TableSchema, row map[string]any) error {
	_, err := b.db.NewInsert().
		Model(&row).
		TableExpr("?", bun.Ident(schema.Name())).
		Exec(ctx)
	return err
}

func (b *sqliteBackend) selectRows(ctx context.Context, schema *TableSchema, filters []Filter) ([]map[string]any, error) {
	q := b.db.NewSelect().
		TableExpr("?", bun.Ident(schema.Name())).
		ColumnExpr("*")
	for _, f := range filters {
		expr, args := f.clause()
		q = q.Where(expr, args...)
	}

	var rows []map[string]any
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *sqliteBackend) deleteAll(ctx context.Context, schema *TableSchema) (int64, error) {
	// Raw DELETE: bun refuses Delete queries without a WHERE clause to
	// guard against accidental full-table deletes, which is exactly what
	// Clear is for.
	res, err := b.db.NewRaw("DELETE FROM ?", bun.Ident(schema.Name())).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (b *sqliteBackend) close() error {
	return b.db.Close()
}
