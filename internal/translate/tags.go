package translate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vmunix/arrnfo/internal/ai"
)

// TagStore persists individual tag translations.
type TagStore interface {
	Lookup(ctx context.Context, tags []string) (map[string]string, []string)
	Store(ctx context.Context, translations map[string]string)
}

// TagTranslator translates tag lists in one batch, one tag per line, backed
// by an optional cache.
type TagTranslator struct {
	provider ai.Provider
	store    TagStore
	target   string
	log      *slog.Logger
}

// NewTagTranslator creates a tag translator. store may be nil.
func NewTagTranslator(provider ai.Provider, store TagStore, target string, opts ...Option) *TagTranslator {
	o := buildOptions(opts)
	return &TagTranslator{
		provider: provider,
		store:    store,
		target:   LanguageName(target),
		log:      o.log,
	}
}

func (t *TagTranslator) systemPrompt() string {
	return fmt.Sprintf(`You are a professional translator specializing in media tags and keywords.
Your task is to translate English tags/keywords to %[1]s. You must return the same number of translations as input tags.
Each translation should be accurate, natural, and commonly used in %[1]s media contexts.

Rules:
- Return only the translated tags, one per line
- Do not add any explanations, comments, or extra text
- Maintain the exact same number of output lines as input
- Keep technical terms appropriately translated`, t.target)
}

// Tags returns one translation per input tag, in input order. Each distinct
// tag is looked up and translated once. Tags the model could not translate
// come back unchanged and are not cached.
func (t *TagTranslator) Tags(ctx context.Context, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	unique := dedupe(tags)
	if len(unique) == 0 {
		return slices.Clone(tags)
	}

	known := map[string]string{}
	missing := unique
	if t.store != nil {
		known, missing = t.store.Lookup(ctx, unique)
	}

	if len(missing) > 0 {
		fresh, err := t.batch(ctx, missing)
		if err != nil {
			t.log.Warn("tag translation failed", "tags", len(missing), "error", err)
		} else {
			for i, tag := range missing {
				known[tag] = fresh[i]
			}
			if t.store != nil {
				stored := make(map[string]string, len(missing))
				for i, tag := range missing {
					stored[tag] = fresh[i]
				}
				t.store.Store(ctx, stored)
			}
		}
	}

	out := make([]string, len(tags))
	for i, tag := range tags {
		if v, ok := known[tag]; ok {
			out[i] = v
			continue
		}
		out[i] = tag
	}
	return out
}

func (t *TagTranslator) batch(ctx context.Context, tags []string) ([]string, error) {
	prompt := fmt.Sprintf("Translate these tags to %s:\n\n%s\n\nReturn one translated tag per line:",
		t.target, strings.Join(tags, "\n"))
	resp, err := t.provider.Chat(ctx, []ai.Message{ai.System(t.systemPrompt()), ai.User(prompt)},
		ai.ChatOptions{Temperature: temperature, MaxTokens: len(tags) * tokensPerTag})
	if err != nil {
		return nil, err
	}

	lines := splitNonEmpty(resp.Content, "\n")
	if len(lines) != len(tags) {
		return nil, fmt.Errorf("expected %d translations, got %d", len(tags), len(lines))
	}
	return lines, nil
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
