// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db implements a schema-described single-table record store on
// top of SQLite, with optional transparent encryption of the backing
// file.
//
// A caller builds a TableSchema once, opens a Handle bound to a file
// path (or to the mocked in-memory backend), and then issues typed
// operations: Insert a Record, GetByID, Query with AND-combined Filters,
// Clear. Records travel as column-name-to-Value mappings; Value is a
// tagged scalar union over text, integer, real, blob and null.
//
// When Options.Passphrase is set, the file is opened through the
// SQLCipher driver and its pages are encrypted under a key derived from
// the passphrase. Opening an existing file with the wrong passphrase
// fails with ErrWrongPassphrase at open time; it is never reported as an
// empty database.
package db
