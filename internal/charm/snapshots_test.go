// ABOUTME: Tests for snapshot key layout, listing, fetching, and pruning.
// ABOUTME: Uses an in-memory badger store in place of Charm KV.
package charm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	db       *badger.DB
	readOnly bool
	syncs    int
}

func (m *memKV) Set(key, value []byte) error {
	return m.db.Update(func(txn *badger.Txn) error { return txn.Set(key, value) })
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	var out []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (m *memKV) Delete(key []byte) error {
	return m.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) })
}

func (m *memKV) View(fn func(txn *badger.Txn) error) error { return m.db.View(fn) }
func (m *memKV) IsReadOnly() bool                          { return m.readOnly }
func (m *memKV) Sync() error                               { m.syncs++; return nil }
func (m *memKV) Reset() error                              { return m.db.DropAll() }
func (m *memKV) Close() error                              { return m.db.Close() }

func newTestClient(t *testing.T) (*Client, *memKV) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := &memKV{db: db}
	c := newClient(store, true)
	t.Cleanup(func() { _ = c.Close() })
	return c, store
}

func exportAt(user models.UserID, at time.Time) *storage.ExportData {
	return &storage.ExportData{
		Version:    storage.ExportVersion,
		ExportedAt: at,
		Tool:       "biosync",
		User:       user,
	}
}

var base = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func TestSnapshotKeyRoundTrip(t *testing.T) {
	key := snapshotKey("ann:smith", base)
	assert.Equal(t, "snapshot:ann%3Asmith:20260301T083000.000000Z", key)

	user, taken, err := parseSnapshotKey(key)
	require.NoError(t, err)
	assert.Equal(t, models.UserID("ann:smith"), user)
	assert.True(t, taken.Equal(base))

	for _, bad := range []string{"metric:x", "snapshot:nouser", "snapshot:u:notatime"} {
		_, _, err := parseSnapshotKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestUserPrefixIsolation(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Push(exportAt("al", base))
	require.NoError(t, err)
	_, err = c.Push(exportAt("alice", base))
	require.NoError(t, err)

	snaps, err := c.List("al")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, models.UserID("al"), snaps[0].User)
}

func TestPushListNewestFirst(t *testing.T) {
	c, store := newTestClient(t)

	for i := range 3 {
		snap, err := c.Push(exportAt("alice", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		assert.Positive(t, snap.Size)
	}
	assert.Equal(t, 3, store.syncs)

	snaps, err := c.List("alice")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.True(t, snaps[0].Taken.Equal(base.Add(2*time.Hour)))
	assert.True(t, snaps[2].Taken.Equal(base))
}

func TestPushRequiresUser(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Push(exportAt("", base))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPushReadOnly(t *testing.T) {
	c, store := newTestClient(t)
	store.readOnly = true

	_, err := c.Push(exportAt("alice", base))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Zero(t, store.syncs)
}

func TestFetch(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Push(exportAt("alice", base))
	require.NoError(t, err)
	_, err = c.Push(exportAt("alice", base.Add(24*time.Hour)))
	require.NoError(t, err)

	latest, err := c.Fetch("alice", "")
	require.NoError(t, err)
	assert.True(t, latest.ExportedAt.Equal(base.Add(24*time.Hour)))

	first, err := c.Fetch("alice", "20260301")
	require.NoError(t, err)
	assert.True(t, first.ExportedAt.Equal(base))

	_, err = c.Fetch("alice", "2026030")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = c.Fetch("alice", "1999")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = c.Fetch("bob", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPrune(t *testing.T) {
	c, _ := newTestClient(t)
	for i := range 5 {
		_, err := c.Push(exportAt("alice", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := c.Push(exportAt("bob", base))
	require.NoError(t, err)

	removed, err := c.Prune("alice", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	snaps, err := c.List("alice")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[1].Taken.Equal(base.Add(3*time.Minute)))

	bobs, err := c.List("bob")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)

	removed, err = c.Prune("alice", 10)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = c.Prune("alice", -1)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSnapshotRestoresIntoFreshDatabase(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	src, err := storage.Open(filepath.Join(t.TempDir(), "src.db"))
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	require.NoError(t, src.CreateGoal(ctx, models.NewGoal("alice", "Run 100km", decimal.NewFromInt(100), "km")))

	data, err := src.GetAllData(ctx, "alice")
	require.NoError(t, err)
	_, err = c.Push(data)
	require.NoError(t, err)

	restored, err := c.Fetch("alice", "")
	require.NoError(t, err)

	dst, err := storage.Open(filepath.Join(t.TempDir(), "dst.db"))
	require.NoError(t, err)
	defer func() { _ = dst.Close() }()
	require.NoError(t, dst.ImportData(ctx, restored))

	goals, err := dst.ListGoals(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Run 100km", goals[0].Title)
}

func TestResetDropsLocalData(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Push(exportAt("alice", base))
	require.NoError(t, err)

	require.NoError(t, c.Reset())
	snaps, err := c.List("alice")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestReadOnlyErrorIsDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrReadOnly, models.ErrValidation))
}
