package progress

import (
	"fmt"
	"sync"
	"time"
)

// Status represents the current transfer status
type Status struct {
	TotalObjects     int64
	ProcessedObjects int64
	SuccessObjects   int64
	FailedObjects    int64
	TotalBytes       int64
	ProcessedBytes   int64
	StartTime        time.Time
	LastUpdateTime   time.Time
	AverageSpeed     float64 // bytes/second
	ETA              time.Duration
}

// Tracker tracks transfer progress. All methods are safe for concurrent use
// by workers; the display polls it on an interval so a slow terminal can
// never block a transfer.
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

// NewTracker creates a new progress tracker
func NewTracker() *Tracker {
	now := time.Now()
	return &Tracker{
		status: Status{
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// SetTotal sets the total number of objects and bytes
func (t *Tracker) SetTotal(objects, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.TotalObjects = objects
	t.status.TotalBytes = bytes
}

// AddBytes records streamed bytes during a get or put
func (t *Tracker) AddBytes(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.ProcessedBytes += bytes
	t.recalculate()
}

// AddSuccess records one completed object
func (t *Tracker) AddSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.SuccessObjects++
	t.status.ProcessedObjects++
	t.recalculate()
}

// AddFailed records one failed object
func (t *Tracker) AddFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.FailedObjects++
	t.status.ProcessedObjects++
	t.recalculate()
}

// recalculate updates speed and ETA (must be called with lock held)
func (t *Tracker) recalculate() {
	now := time.Now()

	elapsed := now.Sub(t.status.StartTime)
	if elapsed > 0 {
		t.status.AverageSpeed = float64(t.status.ProcessedBytes) / elapsed.Seconds()
	}

	remaining := t.status.TotalBytes - t.status.ProcessedBytes
	if remaining > 0 && t.status.AverageSpeed > 0 {
		t.status.ETA = time.Duration(float64(remaining)/t.status.AverageSpeed) * time.Second
	} else {
		t.status.ETA = 0
	}

	t.status.LastUpdateTime = now
}

// GetStatus returns the current status
func (t *Tracker) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status
}

// GetProgressPercent returns the object progress percentage
func (t *Tracker) GetProgressPercent() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.status.TotalObjects == 0 {
		return 0
	}

	return float64(t.status.ProcessedObjects) / float64(t.status.TotalObjects) * 100
}

// FormatSpeed formats speed in human readable format
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.1f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	} else if bytes < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
}
