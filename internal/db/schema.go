// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the typed persistence layer of psqlite.
// This file contains the schema model: an immutable description of a
// single table as an ordered set of typed, optionally-primary-key columns.
package db // import "github.com/River-Szasz/psqlite-sqlcipher/internal/db"

import (
	"fmt"
	"strings"
)

// ColumnType enumerates the scalar storage classes a column may declare.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeInteger ColumnType = "integer"
	TypeReal    ColumnType = "real"
	TypeBlob    ColumnType = "blob"
)

// sqlType returns the SQLite type name for the column type.
func (t ColumnType) sqlType() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	case TypeBlob:
		return "BLOB"
	default:
		return ""
	}
}

// valid reports whether t is one of the declared column types.
func (t ColumnType) valid() bool {
	return t.sqlType() != ""
}

// Column describes a single typed column. PrimaryKey may be set on at
// most one column per table; the engine enforces uniqueness on it.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
}

// TableSchema is an immutable, validated description of one table.
// Construct it with NewTableSchema; the zero value is not usable.
type TableSchema struct {
	name    string
	columns []Column
	pkIndex int // index into columns, -1 when no primary key is declared
}

// NewTableSchema validates and builds a TableSchema. It fails when the
// table name is empty, no columns are given, a column has an empty name,
// an unknown type, a duplicate name, or more than one column is marked
// as primary key.
func NewTableSchema(name string, columns ...Column) (*TableSchema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("table schema: %w", ErrEmptyTableName)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table schema %q: %w", name, ErrNoColumns)
	}

	seen := make(map[string]struct{}, len(columns))
	pkIndex := -1
	for i, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, fmt.Errorf("table schema %q: column %d: %w", name, i, ErrEmptyColumnName)
		}
		if !col.Type.valid() {
			return nil, fmt.Errorf("table schema %q: column %q: %w: %q", name, col.Name, ErrInvalidColumnType, col.Type)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("table schema %q: column %q: %w", name, col.Name, ErrDuplicateColumn)
		}
		seen[col.Name] = struct{}{}
		if col.PrimaryKey {
			if pkIndex >= 0 {
				return nil, fmt.Errorf("table schema %q: columns %q and %q: %w", name, columns[pkIndex].Name, col.Name, ErrMultiplePrimaryKeys)
			}
			pkIndex = i
		}
	}

	s := &TableSchema{
		name:    name,
		columns: make([]Column, len(columns)),
		pkIndex: pkIndex,
	}
	copy(s.columns, columns)
	return s, nil
}

// Name returns the table name.
func (s *TableSchema) Name() string { return s.name }

// Columns returns the ordered column list. The returned slice is a copy;
// mutating it does not affect the schema.
func (s *TableSchema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// PrimaryKey returns the primary key column and true, or false when the
// schema declares none.
func (s *TableSchema) PrimaryKey() (Column, bool) {
	if s.pkIndex < 0 {
		return Column{}, false
	}
	return s.columns[s.pkIndex], true
}

// Column looks up a column by name.
func (s *TableSchema) Column(name string) (Column, bool) {
	for _, col := range s.columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// createTableSQL renders the idempotent table creation statement for the
// schema. Identifiers are quoted; the statement carries no values, so no
// parameter binding is needed here.
func (s *TableSchema) createTableSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(s.name))
	b.WriteString(" (")
	for i, col := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(col.Name))
		b.WriteByte(' ')
		b.WriteString(col.Type.sqlType())
		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}

// quoteIdent quotes a SQL identifier with double quotes, doubling any
// embedded quote characters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
