package app

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"s3batch/internal/keymap"
	"s3batch/internal/progress"
	"s3batch/internal/storage"
	"s3batch/internal/walker"
	"s3batch/internal/worker"

	"go.uber.org/zap"
)

// UploadRequest describes one upload invocation
type UploadRequest struct {
	Bucket      string
	Src         string
	DestPrefix  string
	Parallelism int
}

// Upload uploads a single file or, when src is a directory, every file
// beneath it, preserving the relative structure under the destination prefix.
func (a *App) Upload(ctx context.Context, req UploadRequest) error {
	info, err := os.Stat(req.Src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", req.Src, err)
	}

	var items []worker.Item
	if info.IsDir() {
		entries, err := walker.Local(req.Src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			items = append(items, worker.Item{
				Op:        worker.OpUpload,
				Key:       keymap.ToKey(req.DestPrefix, entry.Rel),
				LocalPath: entry.Path,
				Size:      entry.Size,
			})
		}
	} else {
		items = append(items, worker.Item{
			Op:        worker.OpUpload,
			Key:       keymap.ToKey(req.DestPrefix, filepath.Base(req.Src)),
			LocalPath: req.Src,
			Size:      info.Size(),
		})
	}

	if len(items) == 0 {
		a.logger.Info("Nothing to upload", zap.String("src", req.Src))
		return nil
	}

	a.logger.Info("Starting upload",
		zap.String("bucket", req.Bucket),
		zap.String("src", req.Src),
		zap.Int("objects", len(items)),
		zap.Int("parallelism", req.Parallelism),
	)

	tracker := a.metrics.GetProgressTracker()
	summary := a.execute(ctx, req.Bucket, items, req.Parallelism, func(ctx context.Context, item worker.Item) error {
		return a.uploadOne(ctx, req.Bucket, item, tracker)
	})

	fmt.Printf("uploaded %d of %d object(s)\n", summary.Succeeded, summary.Total)
	return summary.Err("upload")
}

func (a *App) uploadOne(ctx context.Context, bucket string, item worker.Item, tracker *progress.Tracker) error {
	f, err := os.Open(item.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", item.LocalPath, err)
	}
	defer f.Close()

	opts := storage.PutOptions{
		ContentType: mime.TypeByExtension(filepath.Ext(item.LocalPath)),
	}

	reader := progress.NewReader(f, tracker)
	if err := a.client.PutObject(ctx, bucket, item.Key, reader, item.Size, opts); err != nil {
		return fmt.Errorf("failed to put %s: %w", item.Key, err)
	}

	return nil
}
