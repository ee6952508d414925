package app

import (
	"context"
	"fmt"

	"s3batch/internal/progress"
	"s3batch/internal/walker"
	"s3batch/internal/worker"

	"go.uber.org/zap"
)

// DeleteRequest describes one delete invocation
type DeleteRequest struct {
	Bucket      string
	Key         string
	Recursive   bool
	DryRun      bool
	Confirmed   bool
	Parallelism int
}

// Delete removes a single object or, with Recursive set, every object under
// the key treated as a prefix. Dry-run short-circuits before the confirmation
// gate: it enumerates and reports, deleting nothing regardless of Confirmed.
// Without dry-run, an unconfirmed delete fails with ErrConfirmationRequired
// carrying the affected count, with zero side effects.
func (a *App) Delete(ctx context.Context, req DeleteRequest) error {
	if req.Recursive {
		return a.deleteRecursive(ctx, req)
	}
	return a.deleteSingle(ctx, req)
}

func (a *App) deleteSingle(ctx context.Context, req DeleteRequest) error {
	if req.DryRun {
		fmt.Printf("would delete: %s\n", req.Key)
		fmt.Println("dry run: 1 object, nothing deleted")
		return nil
	}
	if !req.Confirmed {
		return &ConfirmationRequiredError{Count: 1}
	}

	items := []worker.Item{{Op: worker.OpDelete, Key: req.Key}}
	summary := a.execute(ctx, req.Bucket, items, 1, func(ctx context.Context, item worker.Item) error {
		return a.client.RemoveObject(ctx, req.Bucket, item.Key)
	})

	fmt.Printf("deleted %d of %d object(s)\n", summary.Succeeded, summary.Total)
	return summary.Err("delete")
}

func (a *App) deleteRecursive(ctx context.Context, req DeleteRequest) error {
	objects, err := walker.Remote(ctx, a.client, req.Bucket, req.Key)
	if err != nil {
		return err
	}

	if req.DryRun {
		for _, obj := range objects {
			fmt.Printf("would delete: %s (%s)\n", obj.Key, progress.FormatBytes(obj.Size))
		}
		fmt.Printf("dry run: %d object(s), nothing deleted\n", len(objects))
		return nil
	}

	if !req.Confirmed {
		return &ConfirmationRequiredError{Count: len(objects)}
	}

	if len(objects) == 0 {
		a.logger.Info("No objects under prefix", zap.String("prefix", req.Key))
		return nil
	}

	items := make([]worker.Item, 0, len(objects))
	for _, obj := range objects {
		items = append(items, worker.Item{
			Op:   worker.OpDelete,
			Key:  obj.Key,
			Size: obj.Size,
		})
	}

	a.logger.Info("Starting recursive delete",
		zap.String("bucket", req.Bucket),
		zap.String("prefix", req.Key),
		zap.Int("objects", len(items)),
		zap.Int("parallelism", req.Parallelism),
	)

	summary := a.execute(ctx, req.Bucket, items, req.Parallelism, func(ctx context.Context, item worker.Item) error {
		return a.client.RemoveObject(ctx, req.Bucket, item.Key)
	})

	fmt.Printf("deleted %d of %d object(s)\n", summary.Succeeded, summary.Total)
	return summary.Err("delete")
}
