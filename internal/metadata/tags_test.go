package metadata

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCache_StoreAndLookup(t *testing.T) {
	tags := NewTagCache(NewCache(setupTestDB(t)), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	tags.Store(ctx, map[string]string{"time travel": "时间旅行", "dragon": "龙", "blank": "  "})

	found, missing := tags.Lookup(ctx, []string{"Time Travel", "dragon", "blank", "robot"})
	assert.Equal(t, map[string]string{"Time Travel": "时间旅行", "dragon": "龙"}, found)
	assert.Equal(t, []string{"blank", "robot"}, missing)
}

func TestTagCache_KeyIgnoresCaseAndSpace(t *testing.T) {
	assert.Equal(t, tagKey("Dragon"), tagKey(" dragon "))
	assert.NotEqual(t, tagKey("dragon"), tagKey("dragons"))
}

func TestTagCache_EmptyLookup(t *testing.T) {
	tags := NewTagCache(NewCache(setupTestDB(t)), slog.New(slog.DiscardHandler))

	found, missing := tags.Lookup(context.Background(), nil)
	require.Empty(t, found)
	assert.Empty(t, missing)
}
