package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "inventory_data.json"))
}

func TestFileStore_LoadMissingFileReturnsBootstrap(t *testing.T) {
	fs := newTestFileStore(t)

	doc, err := fs.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Bootstrap(), doc)
	_, statErr := os.Stat(fs.Path())
	assert.True(t, os.IsNotExist(statErr), "load must not create the file")
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	doc := Bootstrap()
	doc.ItemCounter = 1
	doc.Inventory = append(doc.Inventory, Item{Code: "ITM-0001", Name: "Bolt", Qty: 100})
	doc.History = append(doc.History, HistoryEntry{
		Action: ActionAddItem, Item: "Bolt", Qty: 100, Stock: 100,
		User: "admin", Event: NoEvent, Timestamp: "2024-01-01 09:00:00",
	})

	require.NoError(t, fs.Save(ctx, doc))

	loaded, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestFileStore_SaveOfLoadIsNoOp(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(fs.Path(), []byte(legacyDocument), 0o644))

	first, err := fs.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, first))
	afterFirstSave, err := os.ReadFile(fs.Path())
	require.NoError(t, err)

	second, err := fs.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, second))
	afterSecondSave, err := os.ReadFile(fs.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, string(afterFirstSave), string(afterSecondSave))
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, Bootstrap()))
	require.NoError(t, fs.Save(ctx, Bootstrap()))

	entries, err := os.ReadDir(filepath.Dir(fs.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inventory_data.json", entries[0].Name())
}

func TestFileStore_SaveIntoMissingDirectoryFails(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing", "data.json"))

	err := fs.Save(context.Background(), Bootstrap())

	assert.Error(t, err)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	fs := newTestFileStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{\"users\": "), 0o644))

	_, err := fs.Load(context.Background())

	assert.Error(t, err)
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, fs.Save(ctx, Bootstrap()), context.Canceled)
}

func TestMemoryStore_SaveThenLoad(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	doc, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Bootstrap(), doc)
	assert.Nil(t, ms.Bytes())

	doc.ItemCounter = 3
	require.NoError(t, ms.Save(ctx, doc))
	doc.ItemCounter = 99

	loaded, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.ItemCounter)
	assert.NotEmpty(t, ms.Bytes())
}
