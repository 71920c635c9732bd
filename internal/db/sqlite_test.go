// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openFileStore(t *testing.T, path, passphrase string) *Handle {
	t.Helper()
	h, err := Open(personSchema(t), Options{Path: path, Passphrase: passphrase})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.EnsureSchema(context.Background()))
	return h
}

func TestSQLite_PersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.db")
	ctx := context.Background()

	h := openFileStore(t, path, "")
	require.NoError(t, h.Insert(ctx, johnDoe()))
	require.NoError(t, h.Close())

	h2 := openFileStore(t, path, "")
	got, err := h2.GetByID(ctx, Text("1"))
	require.NoError(t, err)
	require.True(t, got.Equal(johnDoe()))
}

func TestSQLite_EncryptedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.db")
	ctx := context.Background()

	h := openFileStore(t, path, "correct horse")
	require.NoError(t, h.Insert(ctx, johnDoe()))
	require.NoError(t, h.Close())

	// Correct passphrase: previously written rows come back unchanged.
	h2 := openFileStore(t, path, "correct horse")
	got, err := h2.GetByID(ctx, Text("1"))
	require.NoError(t, err)
	require.True(t, got.Equal(johnDoe()))
	require.NoError(t, h2.Close())

	// The bytes on disk must not leak the plaintext.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "John")
	require.NotContains(t, string(raw), "SQLite format 3")
}

func TestSQLite_WrongPassphraseFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.db")
	ctx := context.Background()

	h := openFileStore(t, path, "right")
	require.NoError(t, h.Insert(ctx, johnDoe()))
	require.NoError(t, h.Close())

	_, err := Open(personSchema(t), Options{Path: path, Passphrase: "wrong"})
	require.ErrorIs(t, err, ErrWrongPassphrase,
		"a wrong passphrase must fail open, not read as an empty table")
}

func TestSQLite_MissingPassphraseFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.db")
	ctx := context.Background()

	h := openFileStore(t, path, "right")
	require.NoError(t, h.Insert(ctx, johnDoe()))
	require.NoError(t, h.Close())

	_, err := Open(personSchema(t), Options{Path: path})
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSQLite_PassphraseOnPlainFileFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.db")
	ctx := context.Background()

	h := openFileStore(t, path, "")
	require.NoError(t, h.Insert(ctx, johnDoe()))
	require.NoError(t, h.Close())

	_, err := Open(personSchema(t), Options{Path: path, Passphrase: "anything"})
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestSQLite_OpenErrorNamesPathNotPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.db")
	h := openFileStore(t, path, "hunter2")
	require.NoError(t, h.Close())

	_, err := Open(personSchema(t), Options{Path: path, Passphrase: "nope"})
	require.Error(t, err)
	require.Contains(t, err.Error(), path)
	require.NotContains(t, err.Error(), "hunter2")
	require.NotContains(t, err.Error(), "nope")
}

func TestSQLite_RenameAffectsOnlyFutureOpens(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.db")
	second := filepath.Join(dir, "second.db")
	ctx := context.Background()

	h := openFileStore(t, first, "")
	require.NoError(t, h.Insert(ctx, johnDoe()))

	// Rebinding the name leaves the live connection on the old file.
	h.Rename(second)
	require.Equal(t, second, h.Path())
	rows, err := h.Query(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "live connection still serves the original file")
	_, err = os.Stat(second)
	require.True(t, os.IsNotExist(err), "rename alone must not create the new file")

	// Reopen resolves the rebound path.
	require.NoError(t, h.Reopen(ctx))
	require.NoError(t, h.EnsureSchema(ctx))
	rows, err = h.Query(ctx)
	require.NoError(t, err)
	require.Empty(t, rows, "the new file starts empty")

	// The original file kept its data.
	back, err := Open(personSchema(t), Options{Path: first})
	require.NoError(t, err)
	t.Cleanup(func() { _ = back.Close() })
	rows, err = back.Query(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestSQLite_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "store.db")
	h := openFileStore(t, path, "")
	require.NoError(t, h.Insert(context.Background(), johnDoe()))
}
