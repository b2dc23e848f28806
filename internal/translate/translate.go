// Package translate localizes metadata text through an LLM provider.
//
// Every operation degrades to the source text: a translation failure never
// fails the caller.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/vmunix/arrnfo/internal/ai"
)

const (
	temperature    = 0.1
	maxTokensText  = 1000
	tokensPerTag   = 50
	keywordJoinSep = ", "
)

// Option configures a Translator or TagTranslator.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log.With("component", "translator")
	}
}

func buildOptions(opts []Option) options {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LanguageName returns the English name of a BCP 47 tag's base language
// ("zh-CN" -> "Chinese"). Unknown tags are returned unchanged.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	base, _ := t.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return tag
}

// Translator translates free text and keyword lists.
type Translator struct {
	provider ai.Provider
	target   string
	log      *slog.Logger
}

// New creates a translator into the target language (BCP 47 tag).
func New(provider ai.Provider, target string, opts ...Option) *Translator {
	o := buildOptions(opts)
	return &Translator{
		provider: provider,
		target:   LanguageName(target),
		log:      o.log,
	}
}

func (t *Translator) systemPrompt() string {
	return fmt.Sprintf("You are a professional translator. Translate the given text to %s. "+
		"Return only the translated text without any explanation.", t.target)
}

func (t *Translator) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := t.provider.Chat(ctx, []ai.Message{ai.System(t.systemPrompt()), ai.User(prompt)},
		ai.ChatOptions{Temperature: temperature, MaxTokens: maxTokensText})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Text translates a single string. Empty input, provider errors and empty
// replies return the input unchanged.
func (t *Translator) Text(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out, err := t.chat(ctx, fmt.Sprintf("Translate to %s: %s", t.target, text))
	if err != nil {
		t.log.Warn("translation failed", "error", err)
		return text
	}
	if out == "" {
		return text
	}
	return out
}

// Keywords translates a keyword list in one request. The result has the same
// length as the input; any other reply keeps the source list.
func (t *Translator) Keywords(ctx context.Context, keywords []string) []string {
	if len(keywords) == 0 {
		return keywords
	}
	prompt := fmt.Sprintf("Translate these keywords/tags to %s, keep them as comma-separated list: %s",
		t.target, strings.Join(keywords, keywordJoinSep))
	out, err := t.chat(ctx, prompt)
	if err != nil {
		t.log.Warn("keyword translation failed", "error", err)
		return keywords
	}

	translated := splitNonEmpty(out, ",")
	if len(translated) != len(keywords) {
		t.log.Debug("keyword translation count mismatch", "want", len(keywords), "got", len(translated))
		return keywords
	}
	return translated
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
