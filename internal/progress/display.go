package progress

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Display handles the console progress display
type Display struct {
	tracker  *Tracker
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDisplay creates a new progress display
func NewDisplay(tracker *Tracker, interval time.Duration) *Display {
	return &Display{
		tracker:  tracker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start starts the progress display
func (d *Display) Start() {
	go d.displayLoop()
}

// Stop stops the progress display and prints the final line
func (d *Display) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

func (d *Display) displayLoop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.render(false)
		case <-d.stopCh:
			d.render(true)
			fmt.Println()
			return
		}
	}
}

// render redraws the single-line progress bar in place
func (d *Display) render(final bool) {
	status := d.tracker.GetStatus()
	percent := d.tracker.GetProgressPercent()

	line := fmt.Sprintf("\r%s %d/%d objects  %s/%s  %s",
		bar(percent, 30),
		status.ProcessedObjects, status.TotalObjects,
		FormatBytes(status.ProcessedBytes), FormatBytes(status.TotalBytes),
		FormatSpeed(status.AverageSpeed),
	)
	if !final && status.ETA > 0 {
		line += fmt.Sprintf("  ETA %s", status.ETA.Round(time.Second))
	}
	if status.FailedObjects > 0 {
		line += fmt.Sprintf("  (%d failed)", status.FailedObjects)
	}

	fmt.Print(line)
}

func bar(percent float64, width int) string {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	filled := int(percent * float64(width) / 100)
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat("=", filled), strings.Repeat(" ", width-filled), percent)
}

// IsTerminalSupported checks if stdout is a terminal that can carry the
// in-place progress bar
func IsTerminalSupported() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
