package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/arrnfo/internal/migrations"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the cache schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(migrations.CacheSQL)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "test-key"
	value := []byte(`{"id": 123, "name": "Test Show"}`)
	ttl := 1 * time.Hour

	// Set the value
	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	// Get the value back
	got, ok := cache.Get(ctx, key)
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	// Try to get a non-existent key
	got, ok := cache.Get(ctx, "nonexistent-key")
	assert.False(t, ok, "expected not to find cached value")
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "expiring-key"
	value := []byte("expiring value")
	ttl := 50 * time.Millisecond

	// Set with short TTL
	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	// Verify it's there initially
	got, ok := cache.Get(ctx, key)
	assert.True(t, ok, "expected to find cached value before expiration")
	assert.Equal(t, value, got)

	// Wait for expiration
	time.Sleep(100 * time.Millisecond)

	// Now it should be expired
	got, ok = cache.Get(ctx, key)
	assert.False(t, ok, "expected not to find cached value after expiration")
	assert.Nil(t, got)
}

func TestCache_Set_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "overwrite-key"
	value1 := []byte("first value")
	value2 := []byte("second value")
	ttl := 1 * time.Hour

	// Set first value
	err := cache.Set(ctx, key, value1, ttl)
	require.NoError(t, err)

	// Verify first value
	got, ok := cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value1, got)

	// Set second value (overwrite)
	err = cache.Set(ctx, key, value2, ttl)
	require.NoError(t, err)

	// Verify second value replaced first
	got, ok = cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value2, got)
}

func TestCache_Set_OverwriteExtendsTTL(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "ttl-extend-key"
	value := []byte("value")

	// Set with short TTL
	err := cache.Set(ctx, key, value, 50*time.Millisecond)
	require.NoError(t, err)

	// Wait a bit but not long enough to expire
	time.Sleep(30 * time.Millisecond)

	// Overwrite with longer TTL
	err = cache.Set(ctx, key, value, 1*time.Hour)
	require.NoError(t, err)

	// Wait past original expiration
	time.Sleep(50 * time.Millisecond)

	// Should still be valid because TTL was extended
	got, ok := cache.Get(ctx, key)
	assert.True(t, ok, "expected value to still be cached after TTL extension")
	assert.Equal(t, value, got)
}

func TestCache_Delete(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "delete-key"
	value := []byte("to be deleted")
	ttl := 1 * time.Hour

	// Set the value
	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	// Verify it's there
	got, ok := cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value, got)

	// Delete it
	err = cache.Delete(ctx, key)
	require.NoError(t, err)

	// Verify it's gone
	got, ok = cache.Get(ctx, key)
	assert.False(t, ok, "expected value to be deleted")
	assert.Nil(t, got)
}

func TestCache_Delete_NonExistent(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	// Delete a non-existent key should not error
	err := cache.Delete(ctx, "nonexistent-key")
	assert.NoError(t, err)
}

func TestCache_Prune(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	// Insert some entries with different TTLs
	err := cache.Set(ctx, "short-ttl-1", []byte("value1"), 50*time.Millisecond)
	require.NoError(t, err)
	err = cache.Set(ctx, "short-ttl-2", []byte("value2"), 50*time.Millisecond)
	require.NoError(t, err)
	err = cache.Set(ctx, "long-ttl", []byte("value3"), 1*time.Hour)
	require.NoError(t, err)

	// Wait for short TTL entries to expire
	time.Sleep(100 * time.Millisecond)

	// Prune expired entries
	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned, "expected 2 expired entries to be pruned")

	// Verify short TTL entries are gone
	_, ok := cache.Get(ctx, "short-ttl-1")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "short-ttl-2")
	assert.False(t, ok)

	// Verify long TTL entry still exists
	got, ok := cache.Get(ctx, "long-ttl")
	assert.True(t, ok)
	assert.Equal(t, []byte("value3"), got)
}

func TestCache_Prune_NoExpired(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	// Insert entries with long TTL
	err := cache.Set(ctx, "key1", []byte("value1"), 1*time.Hour)
	require.NoError(t, err)
	err = cache.Set(ctx, "key2", []byte("value2"), 1*time.Hour)
	require.NoError(t, err)

	// Prune should remove nothing
	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pruned, "expected no entries to be pruned")

	// Verify both entries still exist
	_, ok := cache.Get(ctx, "key1")
	assert.True(t, ok)
	_, ok = cache.Get(ctx, "key2")
	assert.True(t, ok)
}

func TestCache_Prune_EmptyCache(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	// Prune empty cache should not error
	pruned, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pruned)
}

func TestCache_BinaryData(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "binary-key"
	// Include various bytes including null bytes and high values
	value := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00, 0x80}
	ttl := 1 * time.Hour

	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	got, ok := cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value, got)
}

func TestCache_EmptyValue(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "empty-value-key"
	value := []byte{}
	ttl := 1 * time.Hour

	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	got, ok := cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value, got)
}

func TestCache_LargeValue(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	key := "large-key"
	// Create a 1MB value
	value := make([]byte, 1024*1024)
	for i := range value {
		value[i] = byte(i % 256)
	}
	ttl := 1 * time.Hour

	err := cache.Set(ctx, key, value, ttl)
	require.NoError(t, err)

	got, ok := cache.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, value, got)
}

func TestCache_SpecialCharactersInKey(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	testCases := []struct {
		name string
		key  string
	}{
		{"spaces", "key with spaces"},
		{"unicode", "key-\u4e2d\u6587-\u65e5\u672c\u8a9e"},
		{"special chars", "key:with/special?chars&more=stuff"},
		{"quotes", `key"with'quotes`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value := []byte("value for " + tc.key)
			ttl := 1 * time.Hour

			err := cache.Set(ctx, tc.key, value, ttl)
			require.NoError(t, err)

			got, ok := cache.Get(ctx, tc.key)
			assert.True(t, ok)
			assert.Equal(t, value, got)
		})
	}
}

func TestCache_Clear_Prefix(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tmdb:search:a", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "tmdb:details:b", []byte("2"), time.Hour))
	require.NoError(t, cache.Set(ctx, "tag:c", []byte("3"), time.Hour))

	removed, err := cache.Clear(ctx, "tmdb:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, found := cache.Get(ctx, "tag:c")
	assert.True(t, found)

	removed, err = cache.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCache_Count_SkipsExpired(t *testing.T) {
	db := setupTestDB(t)
	cache := NewCache(db)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "live", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "dead", []byte("2"), -time.Hour))

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestHashKey(t *testing.T) {
	a := HashKey("tmdb:search", "tv", "zh-CN", "Friends")
	b := HashKey("tmdb:search", "tv", "zh-CN", "Friends")
	c := HashKey("tmdb:search", "tv", "en-US", "Friends")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^tmdb:search:[0-9a-f]{32}$`, a)
	// Parts are separated so concatenation collisions do not alias.
	assert.NotEqual(t, HashKey("p", "ab", "c"), HashKey("p", "a", "bc"))
}

func TestOpenCache_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()

	cache, err := OpenCache(ctx, path)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, cache.Close())

	// Reopening keeps data and tolerates the existing schema.
	cache, err = OpenCache(ctx, path)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	got, found := cache.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, "v", string(got))
}
