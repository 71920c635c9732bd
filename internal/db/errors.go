// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains shared database errors and helpers.
package db

import (
	"errors"
	"fmt"
	"strings"
)

// Schema validation errors. These are always raised before any I/O.
var (
	// ErrEmptyTableName is returned when a schema is built without a table name.
	ErrEmptyTableName = errors.New("empty table name")

	// ErrNoColumns is returned when a schema declares no columns.
	ErrNoColumns = errors.New("no columns declared")

	// ErrEmptyColumnName is returned when a column has no name.
	ErrEmptyColumnName = errors.New("empty column name")

	// ErrInvalidColumnType is returned for a column type outside text/integer/real/blob.
	ErrInvalidColumnType = errors.New("invalid column type")

	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrMultiplePrimaryKeys is returned when more than one column is marked primary key.
	ErrMultiplePrimaryKeys = errors.New("more than one primary key column")
)

// Filter validation errors. Raised at render time, before any I/O.
var (
	// ErrUnknownColumn is returned when a filter references a column the
	// bound schema does not declare.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnsupportedOperator is returned for an operator with no engine mapping.
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// Store errors.
var (
	// ErrDuplicate is returned when attempting to insert a record whose
	// primary key value already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound is returned when no record matches the requested primary key.
	ErrNotFound = errors.New("record not found")

	// ErrNoPrimaryKey is returned when a by-id operation is issued against
	// a schema that declares no primary key.
	ErrNoPrimaryKey = errors.New("schema declares no primary key")

	// ErrWrongPassphrase is returned when the backing file cannot be read
	// under the supplied passphrase, or is not a database at all.
	ErrWrongPassphrase = errors.New("wrong passphrase or not a database")

	// ErrClosed is returned when using a handle after Close.
	ErrClosed = errors.New("store is closed")
)

// StoreError wraps engine-originated failures with the operation and the
// file path for diagnosis. It never carries the passphrase.
type StoreError struct {
	Op   string // operation name, e.g. "open", "insert"
	Path string // backing file path, or ":memory:" for mocked stores
	Err  error  // underlying cause
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// wrapStoreError attaches operation and path context to an engine error.
// A nil err passes through unchanged.
func wrapStoreError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Path: path, Err: err}
}

// MapDBError inspects low-level driver errors and maps common failures to
// package-level sentinel errors. This is a conservative, string-based
// mapping to avoid importing SQL driver packages into this package file.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// SQLite unique/primary key constraint violations.
	if strings.Contains(le, "unique constraint") || strings.Contains(le, "constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	// SQLITE_NOTADB: the file exists but is unreadable under the current
	// key. This is how a wrong SQLCipher passphrase surfaces; it must stay
	// distinguishable from an empty table.
	if strings.Contains(le, "not a database") || strings.Contains(le, "file is encrypted") {
		return fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
	}
	return err
}
