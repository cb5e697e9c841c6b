// Package output holds writers shared by long-running commands.
package output

import (
	"bytes"
	"io"
	"sync"
)

// DeduplicatingWriter drops a line when it repeats the line written just before
// it. Partial lines are held until their newline arrives.
type DeduplicatingWriter struct {
	mu      sync.Mutex
	w       io.Writer
	pending []byte
	last    []byte
	wrote   bool
}

// NewDeduplicatingWriter wraps w.
func NewDeduplicatingWriter(w io.Writer) *DeduplicatingWriter {
	return &DeduplicatingWriter{w: w}
}

// Write reports len(p) on success even when lines were dropped.
func (d *DeduplicatingWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = append(d.pending, p...)
	for {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := d.pending[:i]
		if err := d.emit(line, d.pending[:i+1]); err != nil {
			return 0, err
		}
		d.pending = d.pending[i+1:]
	}
	// Compact so the buffer does not grow with the stream.
	d.pending = append([]byte(nil), d.pending...)
	return len(p), nil
}

func (d *DeduplicatingWriter) emit(line, raw []byte) error {
	if d.wrote && bytes.Equal(line, d.last) {
		return nil
	}
	if _, err := d.w.Write(raw); err != nil {
		return err
	}
	d.last = append(d.last[:0], line...)
	d.wrote = true
	return nil
}

// Flush writes a trailing partial line.
func (d *DeduplicatingWriter) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return nil
	}
	rest := d.pending
	d.pending = nil
	return d.emit(rest, rest)
}

// Reset forgets the previous line so the next one is always written.
func (d *DeduplicatingWriter) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = d.last[:0]
	d.wrote = false
	d.pending = nil
}
