package worker

// Op identifies the kind of work an item carries
type Op string

const (
	OpUpload   Op = "upload"
	OpDownload Op = "download"
	OpDelete   Op = "delete"
)

// Item is one unit of transfer work. Immutable once created; owned by the
// runner for the duration of its execution.
type Item struct {
	Op        Op
	Key       string
	LocalPath string
	Size      int64
}

// Outcome pairs an item with the result of executing it. Err is nil on
// success.
type Outcome struct {
	Item Item
	Err  error
}
