// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the filter expression language: typed predicates
// that render into parameterized WHERE clauses, or evaluate directly
// against records for the in-memory backend.
package db

import "fmt"

// Op is a comparison operator. Operators map 1:1 onto the engine's
// native comparison operators.
type Op int

const (
	OpEq Op = iota // =
	OpNe           // <>
	OpGt           // >
	OpLt           // <
	OpGe           // >=
	OpLe           // <=
)

// sql returns the engine-native operator token.
func (o Op) sql() (string, bool) {
	switch o {
	case OpEq:
		return "=", true
	case OpNe:
		return "<>", true
	case OpGt:
		return ">", true
	case OpLt:
		return "<", true
	case OpGe:
		return ">=", true
	case OpLe:
		return "<=", true
	default:
		return "", false
	}
}

// String returns the operator token, or a placeholder for unknown operators.
func (o Op) String() string {
	if s, ok := o.sql(); ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Filter is a single typed predicate on one column. Filters are
// schema-agnostic until applied to a query: validation against the bound
// schema happens at render time, not at construction.
type Filter struct {
	Column string
	Op     Op
	Value  Value
}

// Eq builds an equality filter.
func Eq(column string, value Value) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

// Ne builds an inequality filter.
func Ne(column string, value Value) Filter { return Filter{Column: column, Op: OpNe, Value: value} }

// Gt builds a greater-than filter.
func Gt(column string, value Value) Filter { return Filter{Column: column, Op: OpGt, Value: value} }

// Lt builds a less-than filter.
func Lt(column string, value Value) Filter { return Filter{Column: column, Op: OpLt, Value: value} }

// Ge builds a greater-or-equal filter.
func Ge(column string, value Value) Filter { return Filter{Column: column, Op: OpGe, Value: value} }

// Le builds a less-or-equal filter.
func Le(column string, value Value) Filter { return Filter{Column: column, Op: OpLe, Value: value} }

// validate checks the filter against the bound schema. It fails with
// ErrUnknownColumn for a column the schema does not declare and with
// ErrUnsupportedOperator for an operator outside the supported set.
func (f Filter) validate(schema *TableSchema) error {
	if _, ok := schema.Column(f.Column); !ok {
		return fmt.Errorf("filter on %q: %w: %q", schema.Name(), ErrUnknownColumn, f.Column)
	}
	if _, ok := f.Op.sql(); !ok {
		return fmt.Errorf("filter on %q.%q: %w: %v", schema.Name(), f.Column, ErrUnsupportedOperator, f.Op)
	}
	return nil
}

// validateFilters checks a whole filter sequence before any engine call.
func validateFilters(schema *TableSchema, filters []Filter) error {
	for _, f := range filters {
		if err := f.validate(schema); err != nil {
			return err
		}
	}
	return nil
}

// clause renders the filter into a bun placeholder expression and its
// arguments. The column is bound as an identifier and the value as a
// parameter; no value is ever interpolated into the SQL text.
func (f Filter) clause() (string, []any) {
	op, _ := f.Op.sql()
	return fmt.Sprintf("? %s ?", op), []any{identArg(f.Column), f.Value.driverValue()}
}

// matches evaluates the filter against a record, mirroring the engine's
// comparison semantics: comparisons against NULL are never true, and
// values of different storage classes do not match.
func (f Filter) matches(rec Record) bool {
	cmp, ok := rec.Get(f.Column).compare(f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGe:
		return cmp >= 0
	case OpLe:
		return cmp <= 0
	default:
		return false
	}
}

// matchesAll reports whether the record satisfies every filter
// (AND-combined). An empty sequence matches everything.
func matchesAll(rec Record, filters []Filter) bool {
	for _, f := range filters {
		if !f.matches(rec) {
			return false
		}
	}
	return true
}
