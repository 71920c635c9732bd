// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"
)

func TestFilter_Validate(t *testing.T) {
	schema := testSchema(t)

	if err := Eq("id", Text("x")).validate(schema); err != nil {
		t.Errorf("valid filter rejected: %v", err)
	}
	if err := Eq("nope", Text("x")).validate(schema); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("unknown column error = %v, want ErrUnknownColumn", err)
	}
	bad := Filter{Column: "id", Op: Op(99), Value: Text("x")}
	if err := bad.validate(schema); !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("unsupported operator error = %v, want ErrUnsupportedOperator", err)
	}
}

func TestValidateFilters_FailsFast(t *testing.T) {
	schema := testSchema(t)
	filters := []Filter{
		Eq("id", Text("x")),
		Gt("missing", Int(1)),
	}
	if err := validateFilters(schema, filters); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("validateFilters = %v, want ErrUnknownColumn", err)
	}
	if err := validateFilters(schema, nil); err != nil {
		t.Errorf("empty filter sequence should validate: %v", err)
	}
}

func TestFilter_Clause(t *testing.T) {
	tests := []struct {
		f    Filter
		want string
	}{
		{Eq("count", Int(1)), "? = ?"},
		{Ne("count", Int(1)), "? <> ?"},
		{Gt("count", Int(1)), "? > ?"},
		{Lt("count", Int(1)), "? < ?"},
		{Ge("count", Int(1)), "? >= ?"},
		{Le("count", Int(1)), "? <= ?"},
	}
	for _, tt := range tests {
		expr, args := tt.f.clause()
		if expr != tt.want {
			t.Errorf("clause() expr = %q, want %q", expr, tt.want)
		}
		if len(args) != 2 {
			t.Errorf("clause() returned %d args, want 2 (identifier + value)", len(args))
		}
	}
}

func TestFilter_Matches(t *testing.T) {
	rec := Record{
		"id":    Text("abc"),
		"count": Int(10),
		"ratio": Real(0.5),
	}

	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"eq text hit", Eq("id", Text("abc")), true},
		{"eq text miss", Eq("id", Text("xyz")), false},
		{"ne", Ne("id", Text("xyz")), true},
		{"gt hit", Gt("count", Int(5)), true},
		{"gt miss", Gt("count", Int(10)), false},
		{"ge boundary", Ge("count", Int(10)), true},
		{"lt", Lt("ratio", Real(1)), true},
		{"le boundary", Le("ratio", Real(0.5)), true},
		{"int filter on real column", Gt("ratio", Int(0)), true},
		{"null column never matches", Eq("payload", Blob(nil)), false},
		{"eq against null value never matches", Eq("id", Null()), false},
		{"kind mismatch never matches", Eq("count", Text("10")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.matches(rec); got != tt.want {
				t.Errorf("matches = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestMatchesAll(t *testing.T) {
	rec := Record{"id": Text("abc"), "count": Int(10)}

	if !matchesAll(rec, nil) {
		t.Errorf("empty filter sequence must match everything")
	}
	both := []Filter{Eq("id", Text("abc")), Ge("count", Int(10))}
	if !matchesAll(rec, both) {
		t.Errorf("record should satisfy both filters")
	}
	oneMiss := []Filter{Eq("id", Text("abc")), Gt("count", Int(10))}
	if matchesAll(rec, oneMiss) {
		t.Errorf("AND semantics: one failing filter must reject the record")
	}
}
