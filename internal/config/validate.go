package config

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validProxySchemes = map[string]bool{
	"http": true, "https": true, "socks5": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if c.TMDB.Language != "" {
		if _, err := language.Parse(c.TMDB.Language); err != nil {
			errs = append(errs, fmt.Sprintf("tmdb.language: invalid language tag %q", c.TMDB.Language))
		}
	}

	if (c.WebSearch.APIKey == "") != (c.WebSearch.EngineID == "") {
		errs = append(errs, "websearch: api_key and engine_id must be set together")
	}

	if c.Translator.Enabled {
		if c.Translator.APIKey == "" {
			errs = append(errs, "translator.api_key: required when translator is enabled")
		}
		if c.Translator.Model == "" {
			errs = append(errs, "translator.model: required when translator is enabled")
		}
		if u, err := url.Parse(c.Translator.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("translator.base_url: invalid URL %q", c.Translator.BaseURL))
		}
	}
	if c.Translator.Tags && !c.Translator.Enabled {
		errs = append(errs, "translator.tags: requires translator.enabled")
	}

	if c.HTTP.Proxy != "" {
		u, err := url.Parse(c.HTTP.Proxy)
		if err != nil || !validProxySchemes[u.Scheme] || u.Host == "" {
			errs = append(errs, fmt.Sprintf("http.proxy: must be an http, https or socks5 URL; got %q", c.HTTP.Proxy))
		}
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("http.timeout: must not be negative, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, fmt.Sprintf("http.retries: must not be negative, got %d", c.HTTP.Retries))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, "log: rotation limits must not be negative")
	}

	if tpl := c.Naming.Episode; tpl != "" {
		if !strings.Contains(tpl, "{season") || !strings.Contains(tpl, "{episode") {
			errs = append(errs, fmt.Sprintf("naming.episode: must contain {season} and {episode}; got %q", tpl))
		}
	}

	return errs
}
