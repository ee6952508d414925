package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"s3batch/internal/keymap"
	"s3batch/internal/progress"
	"s3batch/internal/walker"
	"s3batch/internal/worker"

	"go.uber.org/zap"
)

// DownloadRequest describes one download invocation
type DownloadRequest struct {
	Bucket      string
	Key         string
	Dest        string
	Recursive   bool
	Parallelism int
}

// Download fetches a single object or, with Recursive set, every object
// under the key treated as a prefix, reproducing the key structure beneath
// the destination directory.
func (a *App) Download(ctx context.Context, req DownloadRequest) error {
	var items []worker.Item

	if req.Recursive {
		objects, err := walker.Remote(ctx, a.client, req.Bucket, req.Key)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			items = append(items, worker.Item{
				Op:        worker.OpDownload,
				Key:       obj.Key,
				LocalPath: keymap.ToLocalPath(req.Dest, obj.Key, req.Key),
				Size:      obj.Size,
			})
		}
		if len(items) == 0 {
			a.logger.Info("No objects under prefix", zap.String("prefix", req.Key))
			return nil
		}
	} else {
		info, err := a.client.StatObject(ctx, req.Bucket, req.Key)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", req.Key, err)
		}
		items = append(items, worker.Item{
			Op:        worker.OpDownload,
			Key:       req.Key,
			LocalPath: destPath(req.Dest, req.Key),
			Size:      info.Size,
		})
	}

	a.logger.Info("Starting download",
		zap.String("bucket", req.Bucket),
		zap.String("key", req.Key),
		zap.Int("objects", len(items)),
		zap.Int("parallelism", req.Parallelism),
	)

	tracker := a.metrics.GetProgressTracker()
	summary := a.execute(ctx, req.Bucket, items, req.Parallelism, func(ctx context.Context, item worker.Item) error {
		return a.downloadOne(ctx, req.Bucket, item, tracker)
	})

	fmt.Printf("downloaded %d of %d object(s)\n", summary.Succeeded, summary.Total)
	return summary.Err("download")
}

func (a *App) downloadOne(ctx context.Context, bucket string, item worker.Item, tracker *progress.Tracker) error {
	obj, err := a.client.GetObject(ctx, bucket, item.Key)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", item.Key, err)
	}
	defer obj.Close()

	if err := os.MkdirAll(filepath.Dir(item.LocalPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", item.LocalPath, err)
	}

	f, err := os.Create(item.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", item.LocalPath, err)
	}

	_, err = io.Copy(f, progress.NewReader(obj, tracker))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(item.LocalPath)
		return fmt.Errorf("failed to write %s: %w", item.LocalPath, err)
	}

	return nil
}

// destPath resolves the target path for a single-object download. An
// existing directory receives the key's base name; anything else is taken
// as the target file itself.
func destPath(dest, key string) string {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, path.Base(key))
	}
	return dest
}
