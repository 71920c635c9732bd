// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "fmt"

// Record is a generic row: a mapping from column name to scalar value.
// Records are created transiently per operation and never held by the
// store beyond the call that produced them.
type Record map[string]Value

// Get returns the value stored under the column name, or Null when the
// record carries no entry for it.
func (r Record) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Equal reports whether two records hold the same values for the same
// columns. A missing entry and an explicit null are considered equal.
func (r Record) Equal(other Record) bool {
	for name, v := range r {
		if !v.Equal(other.Get(name)) {
			return false
		}
	}
	for name, v := range other {
		if _, ok := r[name]; !ok && !v.IsNull() {
			return false
		}
	}
	return true
}

// codec maps records to and from the generic column-name-to-driver-value
// form the engine consumes. It is bound to a schema and is total over the
// schema's declared columns.
type codec struct {
	schema *TableSchema
}

// encode produces one driver value per declared column. Columns absent
// from the record encode as NULL; a value whose kind does not fit the
// declared column type is rejected before any I/O. Keys outside the
// schema are rejected as unknown columns.
func (c codec) encode(rec Record) (map[string]any, error) {
	for name := range rec {
		if _, ok := c.schema.Column(name); !ok {
			return nil, fmt.Errorf("encode record for %q: %w: %q", c.schema.Name(), ErrUnknownColumn, name)
		}
	}
	out := make(map[string]any, len(c.schema.columns))
	for _, col := range c.schema.columns {
		v := rec.Get(col.Name)
		if !v.matchesType(col.Type) {
			return nil, fmt.Errorf("encode record for %q: column %q declared %s, got %s value",
				c.schema.Name(), col.Name, col.Type, v.Kind())
		}
		out[col.Name] = v.driverValue()
	}
	return out, nil
}

// decode rebuilds a Record from scanned driver values. It is total:
// declared columns missing from the row decode as null, keys outside the
// schema are ignored.
func (c codec) decode(row map[string]any) (Record, error) {
	rec := make(Record, len(c.schema.columns))
	for _, col := range c.schema.columns {
		raw, ok := row[col.Name]
		if !ok {
			rec[col.Name] = Null()
			continue
		}
		v, err := valueFromDriver(raw, col.Type)
		if err != nil {
			return nil, fmt.Errorf("decode row from %q: column %q: %w", c.schema.Name(), col.Name, err)
		}
		rec[col.Name] = v
	}
	return rec, nil
}
