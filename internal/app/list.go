package app

import (
	"context"
	"fmt"

	"s3batch/internal/progress"
	"s3batch/internal/walker"
)

// List prints every object under the prefix with its size, followed by the
// aggregate count and byte total.
func (a *App) List(ctx context.Context, bucket, prefix string) error {
	objects, err := walker.Remote(ctx, a.client, bucket, prefix)
	if err != nil {
		return err
	}

	var totalBytes int64
	for _, obj := range objects {
		totalBytes += obj.Size
		fmt.Printf("%s  %10s  %s\n",
			obj.LastModified.Format("2006-01-02 15:04:05"),
			progress.FormatBytes(obj.Size),
			obj.Key,
		)
	}

	fmt.Printf("total: %d object(s), %s\n", len(objects), progress.FormatBytes(totalBytes))
	return nil
}
