// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the mocked in-memory implementation of the backend
// seam. It mirrors the file-backed contract exactly, including the
// requirement that the table exists before rows can be touched, but its
// state lives for the lifetime of one handle and never reaches disk.
package db

import (
	"context"
	"fmt"
	"sync"
)

// memBackend keeps rows in insertion order plus a primary key index for
// uniqueness enforcement.
type memBackend struct {
	mu      sync.Mutex
	created bool
	rows    []map[string]any
	pkSeen  map[string]struct{}
}

func newMemBackend() *memBackend {
	return &memBackend{pkSeen: make(map[string]struct{})}
}

func (m *memBackend) ensureTable(ctx context.Context, schema *TableSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	return nil
}

func (m *memBackend) insert(ctx context.Context, schema *TableSchema, row map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return m.noSuchTable(schema)
	}

	if pk, ok := schema.PrimaryKey(); ok {
		key := pkIndexKey(row[pk.Name])
		if _, dup := m.pkSeen[key]; dup {
			// Same wording the engine uses, so MapDBError treats both
			// backends alike.
			return fmt.Errorf("UNIQUE constraint failed: %s.%s", schema.Name(), pk.Name)
		}
		m.pkSeen[key] = struct{}{}
	}

	cp := make(map[string]any, len(row))
	for k, v := range row {
		cp[k] = v
	}
	m.rows = append(m.rows, cp)
	return nil
}

func (m *memBackend) selectRows(ctx context.Context, schema *TableSchema, filters []Filter) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return nil, m.noSuchTable(schema)
	}

	c := codec{schema: schema}
	out := make([]map[string]any, 0, len(m.rows))
	for _, row := range m.rows {
		rec, err := c.decode(row)
		if err != nil {
			return nil, err
		}
		if !matchesAll(rec, filters) {
			continue
		}
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *memBackend) deleteAll(ctx context.Context, schema *TableSchema) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return 0, m.noSuchTable(schema)
	}
	n := int64(len(m.rows))
	m.rows = nil
	m.pkSeen = make(map[string]struct{})
	return n, nil
}

func (m *memBackend) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	m.pkSeen = make(map[string]struct{})
	m.created = false
	return nil
}

func (m *memBackend) noSuchTable(schema *TableSchema) error {
	return fmt.Errorf("no such table: %s", schema.Name())
}

// pkIndexKey builds a uniqueness key for a primary key driver value.
// NULL primary keys are indexed by their formatted form too: SQLite
// would accept several NULL keys, but a single-table typed store has no
// use for that and the stricter rule keeps GetByID unambiguous.
func pkIndexKey(v any) string {
	switch x := v.(type) {
	case []byte:
		return "b:" + string(x)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
