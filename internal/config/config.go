// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	TMDB       TMDBConfig       `toml:"tmdb"`
	OMDB       OMDBConfig       `toml:"omdb"`
	WebSearch  WebSearchConfig  `toml:"websearch"`
	Translator TranslatorConfig `toml:"translator"`
	Cache      CacheConfig      `toml:"cache"`
	Images     ImagesConfig     `toml:"images"`
	HTTP       HTTPConfig       `toml:"http"`
	Log        LogConfig        `toml:"log"`
	Naming     NamingConfig     `toml:"naming"`
}

type TMDBConfig struct {
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
	BaseURL  string `toml:"base_url"`
}

type OMDBConfig struct {
	APIKey string `toml:"api_key"`
}

// WebSearchConfig selects the fallback search. With an API key and engine id
// the Custom Search JSON API is used, otherwise the HTML results page.
type WebSearchConfig struct {
	Enabled  bool   `toml:"enabled"`
	APIKey   string `toml:"api_key"`
	EngineID string `toml:"engine_id"`
}

type TranslatorConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	// Tags enables cached batch translation of keyword tags.
	Tags bool `toml:"tags"`
}

type CacheConfig struct {
	Path string `toml:"path"`
}

type ImagesConfig struct {
	Skip    bool   `toml:"skip"`
	Extra   bool   `toml:"extra"`
	BaseURL string `toml:"base_url"`
}

type HTTPConfig struct {
	Proxy      string        `toml:"proxy"`
	Timeout    time.Duration `toml:"timeout"`
	Retries    int           `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type NamingConfig struct {
	Episode string `toml:"episode"`
}

// Load reads, substitutes, decodes and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation loads the file and applies defaults but reports
// neither unresolved variables nor validation errors.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with only defaults set.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.TMDB.Language == "" {
		c.TMDB.Language = "zh-CN"
	}
	if c.Translator.BaseURL == "" {
		c.Translator.BaseURL = "https://api.openai.com/v1"
	}
	if c.Translator.Model == "" {
		c.Translator.Model = "gpt-4o-mini"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath()
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.HTTP.Retries == 0 {
		c.HTTP.Retries = 3
	}
	if c.HTTP.RetryDelay == 0 {
		c.HTTP.RetryDelay = time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported in missing; a
// ":?" reference reports "VAR: message".
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if value == "" {
				return arg
			}
			return value
		case "?":
			if value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		}

		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
