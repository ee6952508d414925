// Package keymap converts between local filesystem paths and object keys.
// Keys are always forward-slash-delimited with no leading slash, regardless
// of the host path separator.
package keymap

import (
	"path"
	"path/filepath"
	"strings"
)

// ToKey joins a key prefix and a relative local path into an object key.
// Host separators in rel are normalized to forward slashes.
func ToKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimLeft(rel, "/")

	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return rel
	}
	if rel == "" {
		return prefix
	}

	return path.Join(prefix, rel)
}

// ToLocalPath maps an object key onto a destination directory, stripping the
// queried prefix and any leading slash remnant, joining with host-native
// separators.
func ToLocalPath(destRoot, key, strippedPrefix string) string {
	rel := strings.TrimPrefix(key, strippedPrefix)
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		// Key equals the prefix exactly; keep its last element.
		rel = path.Base(key)
	}

	return filepath.Join(destRoot, filepath.FromSlash(rel))
}
