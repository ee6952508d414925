package progress

import "io"

// countingReader reports bytes to the tracker as they stream through a
// get or put call
type countingReader struct {
	r       io.Reader
	tracker *Tracker
}

// NewReader wraps r so every read is reported to the tracker
func NewReader(r io.Reader, tracker *Tracker) io.Reader {
	if tracker == nil {
		return r
	}
	return &countingReader{r: r, tracker: tracker}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.tracker.AddBytes(int64(n))
	}
	return n, err
}
