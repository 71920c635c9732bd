// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"unique constraint", errors.New("constraint failed: UNIQUE constraint failed: persons.id"), ErrDuplicate},
		{"generic constraint", errors.New("SQL logic error: constraint failed"), ErrDuplicate},
		{"not a database", errors.New("file is not a database (26)"), ErrWrongPassphrase},
		{"encrypted", errors.New("file is encrypted or is not a database"), ErrWrongPassphrase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("MapDBError(nil) = %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("MapDBError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	// Unrelated errors pass through unchanged.
	plain := errors.New("disk I/O error")
	if got := MapDBError(plain); got != plain {
		t.Errorf("unrelated error was rewritten: %v", got)
	}
}

func TestStoreError_Format(t *testing.T) {
	cause := errors.New("boom")
	err := wrapStoreError("insert", "/tmp/x.db", cause)

	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("wrapStoreError did not produce a *StoreError: %T", err)
	}
	if se.Op != "insert" || se.Path != "/tmp/x.db" {
		t.Errorf("context lost: %+v", se)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Unwrap chain broken")
	}
	want := "store: insert /tmp/x.db: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if wrapStoreError("op", "p", nil) != nil {
		t.Errorf("wrapping nil must stay nil")
	}
}
