package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries map[string]string
	stored  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]string{}}
}

func (m *memoryStore) Lookup(_ context.Context, tags []string) (map[string]string, []string) {
	found := map[string]string{}
	var missing []string
	for _, tag := range tags {
		if v, ok := m.entries[strings.ToLower(tag)]; ok {
			found[tag] = v
			continue
		}
		missing = append(missing, tag)
	}
	return found, missing
}

func (m *memoryStore) Store(_ context.Context, translations map[string]string) {
	for k, v := range translations {
		m.entries[strings.ToLower(k)] = v
		m.stored++
	}
}

func TestTagTranslator_BatchAndCache(t *testing.T) {
	store := newMemoryStore()
	store.entries["dragon"] = "龙"

	p := &fakeProvider{reply: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "magic\nthrone")
		assert.NotContains(t, prompt, "dragon")
		return "魔法\n\n王座\n", nil
	}}
	tr := NewTagTranslator(p, store, "zh-CN")

	got := tr.Tags(context.Background(), []string{"dragon", "magic", "dragon", "", "throne"})
	assert.Equal(t, []string{"龙", "魔法", "龙", "", "王座"}, got)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 2*tokensPerTag, p.calls[0].MaxTokens)
	assert.Equal(t, "魔法", store.entries["magic"])

	// Second run is served entirely from the store.
	got = tr.Tags(context.Background(), []string{"Magic", "throne"})
	assert.Equal(t, []string{"魔法", "王座"}, got)
	assert.Len(t, p.calls, 1)
}

func TestTagTranslator_FallbackNotCached(t *testing.T) {
	tests := []struct {
		name  string
		reply func(string) (string, error)
	}{
		{name: "provider error", reply: func(string) (string, error) { return "", errors.New("down") }},
		{name: "line count mismatch", reply: func(string) (string, error) { return "只有一行", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			tr := NewTagTranslator(&fakeProvider{reply: tt.reply}, store, "zh-CN")

			got := tr.Tags(context.Background(), []string{"magic", "throne"})
			assert.Equal(t, []string{"magic", "throne"}, got)
			assert.Zero(t, store.stored)
		})
	}
}

func TestTagTranslator_NoStore(t *testing.T) {
	p := &fakeProvider{reply: func(string) (string, error) { return "魔法", nil }}
	tr := NewTagTranslator(p, nil, "zh-CN")

	assert.Equal(t, []string{"魔法"}, tr.Tags(context.Background(), []string{"magic"}))
	assert.Nil(t, tr.Tags(context.Background(), nil))
}

func TestTagTranslator_OneOutputPerInput(t *testing.T) {
	p := &fakeProvider{reply: func(prompt string) (string, error) {
		assert.Equal(t, 1, strings.Count(prompt, "magic"))
		return "魔法", nil
	}}
	tr := NewTagTranslator(p, newMemoryStore(), "zh-CN")

	in := []string{"magic", "magic", "", "magic"}
	got := tr.Tags(context.Background(), in)
	require.Len(t, got, len(in))
	assert.Equal(t, []string{"魔法", "魔法", "", "魔法"}, got)
	assert.Len(t, p.calls, 1)

	assert.Equal(t, []string{"", ""}, tr.Tags(context.Background(), []string{"", ""}))
	assert.Len(t, p.calls, 1)
}
