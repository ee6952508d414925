package journal

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		err := store.Append(&Record{
			Bucket:    "b",
			Key:       fmt.Sprintf("p/obj-%d", i),
			Operation: "upload",
			Status:    StatusSuccess,
			Bytes:     int64(i * 10),
		})
		require.NoError(t, err)
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "p/obj-4", records[0].Key)
	assert.Equal(t, "p/obj-2", records[2].Key)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestAppendFailureRecord(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(&Record{
		Bucket:    "b",
		Key:       "p/bad",
		Operation: "delete",
		Status:    StatusFailed,
		LastError: "key not found",
	})
	require.NoError(t, err)

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
	assert.Equal(t, "key not found", records[0].LastError)
}

func TestConcurrentAppends(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Append(&Record{
				Bucket:    "b",
				Key:       fmt.Sprintf("p/obj-%d", i),
				Operation: "upload",
				Status:    StatusSuccess,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := store.Recent(100)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
