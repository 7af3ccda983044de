package uci

import (
	"bytes"
	"io"
	"sync"
)

// pipe feeds lines to a running handler.
type pipe struct {
	w *io.PipeWriter
}

func newPipe() (*io.PipeReader, pipe) {
	r, w := io.Pipe()
	return r, pipe{w: w}
}

func (p pipe) write(s string) {
	io.WriteString(p.w, s)
}

// safeBuffer is a bytes.Buffer that the search goroutine and the test can
// share.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
