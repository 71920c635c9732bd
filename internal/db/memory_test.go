// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMockedStore(t *testing.T) *Handle {
	t.Helper()
	h, err := Open(personSchema(t), Options{Mocked: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.EnsureSchema(context.Background()))
	return h
}

func TestMemory_StateInvisibleAcrossHandles(t *testing.T) {
	ctx := context.Background()
	a := openMockedStore(t)
	b := openMockedStore(t)

	require.NoError(t, a.Insert(ctx, johnDoe()))

	rows, err := b.Query(ctx)
	require.NoError(t, err)
	require.Empty(t, rows, "mocked state must not leak between handles")
}

func TestMemory_StateDiscardedOnReopen(t *testing.T) {
	ctx := context.Background()
	h := openMockedStore(t)
	require.NoError(t, h.Insert(ctx, johnDoe()))

	require.NoError(t, h.Reopen(ctx))
	require.NoError(t, h.EnsureSchema(ctx))

	rows, err := h.Query(ctx)
	require.NoError(t, err)
	require.Empty(t, rows, "reopen discards in-memory state")
}

func TestMemory_RenameIsNoOp(t *testing.T) {
	h := openMockedStore(t)
	h.Rename("/somewhere/else.db")
	require.Equal(t, memoryPath, h.Path())
}

func TestMemory_PathIsMemory(t *testing.T) {
	h := openMockedStore(t)
	require.Equal(t, memoryPath, h.Path())
}

func TestMemory_QueryPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	h := openMockedStore(t)
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		require.NoError(t, h.Insert(ctx, Record{"id": Text(id), "name": Text("n"), "lastName": Text("l"), "age": Int(1)}))
	}

	rows, err := h.Query(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, id := range ids {
		require.True(t, rows[i].Get("id").Equal(Text(id)))
	}
}

func TestMemory_ContextCancellation(t *testing.T) {
	h := openMockedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Insert(ctx, johnDoe())
	require.ErrorIs(t, err, context.Canceled)
}
