// Package walker enumerates the work for a transfer: local directory trees
// for uploads and remote key listings for downloads, deletes and listings.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"s3batch/internal/storage"
)

// LocalEntry is one file found under a local root
type LocalEntry struct {
	Path string // absolute or root-relative path usable for opening the file
	Rel  string // path relative to the walked root, host-native separators
	Size int64
}

// Local walks root depth-first and returns every regular file beneath it.
// The walk is lexical, so the order is deterministic within one run. Empty
// directories produce nothing. Any read error aborts the whole enumeration.
func Local(root string) ([]LocalEntry, error) {
	var entries []LocalEntry

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			// root itself is a regular file
			rel = filepath.Base(p)
		}

		entries = append(entries, LocalEntry{
			Path: p,
			Rel:  rel,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return entries, nil
}

// Remote lists every object under the given prefix, transparently paging
// through the backend's continuation-token mechanism. Pages are concatenated
// in order. A prefix matching nothing returns an empty slice.
func Remote(ctx context.Context, client storage.Client, bucket, prefix string) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo

	token := ""
	for {
		page, err := client.ListPage(ctx, bucket, prefix, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, err)
		}

		objects = append(objects, page.Objects...)

		if page.NextToken == "" {
			return objects, nil
		}
		token = page.NextToken
	}
}
