// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

// CacheSQL creates the lookup cache schema. It is idempotent.
//
//go:embed sql/001_metadata_cache.sql
var CacheSQL string
