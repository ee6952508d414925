package app

import (
	"fmt"

	"s3batch/internal/journal"
	"s3batch/internal/progress"
)

// History prints the most recent journalled transfer outcomes, newest first.
func (a *App) History(limit int) error {
	records, err := a.journal.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-8s  %-7s  %10s  %s/%s",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Operation,
			rec.Status,
			progress.FormatBytes(rec.Bytes),
			rec.Bucket,
			rec.Key,
		)
		if rec.Status == journal.StatusFailed && rec.LastError != "" {
			line += "  " + rec.LastError
		}
		fmt.Println(line)
	}

	fmt.Printf("%d record(s)\n", len(records))
	return nil
}
