// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the store handle: the owner of one database file
// (or one in-memory table), bound to a schema, exposing the typed
// insert/query/delete surface. Backends implement the engine seam so
// that the file-backed and the mocked store share one contract.
package db

import (
	"context"
	"fmt"
)

// backend is the engine seam. The file-backed implementation lives in
// sqlite.go, the mocked one in memory.go.
type backend interface {
	ensureTable(ctx context.Context, schema *TableSchema) error
	insert(ctx context.Context, schema *TableSchema, row map[string]any) error
	selectRows(ctx context.Context, schema *TableSchema, filters []Filter) ([]map[string]any, error)
	deleteAll(ctx context.Context, schema *TableSchema) (int64, error)
	close() error
}

// Options configures Open.
type Options struct {
	// Path is the backing database file. Ignored when Mocked is set.
	Path string
	// Passphrase, when non-empty, opens or creates the file under
	// SQLCipher encryption. The first creation keys the file permanently.
	Passphrase string
	// Mocked selects the in-memory backend: identical contract, no file,
	// state discarded on Close.
	Mocked bool
}

// Handle owns the lifecycle of a single logical database bound to one
// table schema. Operations are safe to call from one goroutine; the
// engine serializes statements on the single underlying connection.
type Handle struct {
	schema  *TableSchema
	codec   codec
	opts    Options
	path    string // logical path; Rename rebinds it for future opens
	backend backend
	closed  bool
}

// Open establishes or creates the backing database and returns a handle
// bound to the schema. The table itself is not created here; call
// EnsureSchema. A wrong passphrase surfaces as ErrWrongPassphrase from
// the open-time key probe, never as an empty table.
func Open(schema *TableSchema, opts Options) (*Handle, error) {
	if schema == nil {
		return nil, fmt.Errorf("open store: nil schema")
	}

	h := &Handle{
		schema: schema,
		codec:  codec{schema: schema},
		opts:   opts,
		path:   opts.Path,
	}

	if opts.Mocked {
		h.path = memoryPath
		h.backend = newMemBackend()
		dbLogf("db: opened mocked store for table %q", schema.Name())
		return h, nil
	}

	if opts.Path == "" {
		return nil, fmt.Errorf("open store: empty path")
	}
	b, err := openSQLiteBackend(opts.Path, opts.Passphrase)
	if err != nil {
		return nil, err
	}
	h.backend = b
	dbLogf("db: opened store %s for table %q (encrypted=%t)", opts.Path, schema.Name(), opts.Passphrase != "")
	return h, nil
}

// Schema returns the bound table schema.
func (h *Handle) Schema() *TableSchema { return h.schema }

// Path returns the logical path the handle is bound to. For mocked
// stores it is ":memory:".
func (h *Handle) Path() string { return h.path }

// EnsureSchema idempotently creates the table if it does not exist.
// Repeated calls neither fail nor touch existing rows.
func (h *Handle) EnsureSchema(ctx context.Context) error {
	if err := h.usable(); err != nil {
		return wrapStoreError("ensure schema", h.path, err)
	}
	if err := h.backend.ensureTable(ctx, h.schema); err != nil {
		return wrapStoreError("ensure schema", h.path, MapDBError(err))
	}
	return nil
}

// Insert encodes and persists one record. A primary key collision
// returns an error matching ErrDuplicate; the existing row is untouched.
func (h *Handle) Insert(ctx context.Context, rec Record) error {
	if err := h.usable(); err != nil {
		return wrapStoreError("insert", h.path, err)
	}
	row, err := h.codec.encode(rec)
	if err != nil {
		return err
	}
	if err := h.backend.insert(ctx, h.schema, row); err != nil {
		return wrapStoreError("insert", h.path, MapDBError(err))
	}
	return nil
}

// GetByID returns the decoded record whose primary key column equals the
// given value, or an error matching ErrNotFound when no such row exists.
func (h *Handle) GetByID(ctx context.Context, id Value) (Record, error) {
	pk, ok := h.schema.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("get %q by id: %w", h.schema.Name(), ErrNoPrimaryKey)
	}
	rows, err := h.Query(ctx, Eq(pk.Name, id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, wrapStoreError("get by id", h.path, fmt.Errorf("%w: %s = %s", ErrNotFound, pk.Name, id))
	}
	return rows[0], nil
}

// Query applies the AND-combined filters and returns all matching rows
// decoded, in the engine's natural result order. Filter validation
// happens before the engine is touched; an empty filter sequence returns
// every row.
func (h *Handle) Query(ctx context.Context, filters ...Filter) ([]Record, error) {
	if err := validateFilters(h.schema, filters); err != nil {
		return nil, err
	}
	if err := h.usable(); err != nil {
		return nil, wrapStoreError("query", h.path, err)
	}
	rows, err := h.backend.selectRows(ctx, h.schema, filters)
	if err != nil {
		return nil, wrapStoreError("query", h.path, MapDBError(err))
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := h.codec.decode(row)
		if err != nil {
			return nil, wrapStoreError("query", h.path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clear deletes all rows without dropping the table. Subsequent queries
// return an empty result and subsequent inserts succeed.
func (h *Handle) Clear(ctx context.Context) error {
	if err := h.usable(); err != nil {
		return wrapStoreError("clear", h.path, err)
	}
	n, err := h.backend.deleteAll(ctx, h.schema)
	if err != nil {
		return wrapStoreError("clear", h.path, MapDBError(err))
	}
	dbLogf("db: cleared %d rows from %q", n, h.schema.Name())
	return nil
}

// Rename rebinds the handle's logical file name. Only future opens
// (Reopen) resolve to the new path; the live connection is untouched.
// Renaming a mocked store has no effect.
func (h *Handle) Rename(newPath string) {
	if h.opts.Mocked {
		return
	}
	h.opts.Path = newPath
	h.path = newPath
	dbLogf("db: store rebound to %s (effective on reopen)", newPath)
}

// Reopen closes the current backend and opens the file the handle is
// currently bound to, applying any earlier Rename. Mocked stores reopen
// empty, matching a fresh in-memory database.
func (h *Handle) Reopen(ctx context.Context) error {
	_ = ctx // reserved; the SQLite open path has no cancellation points
	if h.backend != nil {
		if err := h.backend.close(); err != nil {
			return wrapStoreError("reopen", h.path, err)
		}
	}
	h.closed = false
	if h.opts.Mocked {
		h.backend = newMemBackend()
		return nil
	}
	b, err := openSQLiteBackend(h.opts.Path, h.opts.Passphrase)
	if err != nil {
		h.closed = true
		return err
	}
	h.backend = b
	return nil
}

// Close releases the underlying connection. Operations on a closed
// handle return an error matching ErrClosed. Closing twice is harmless.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.backend == nil {
		return nil
	}
	if err := h.backend.close(); err != nil {
		return wrapStoreError("close", h.path, err)
	}
	return nil
}

func (h *Handle) usable() error {
	if h.closed {
		return ErrClosed
	}
	return nil
}
