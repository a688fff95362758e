package push

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTransportClosed       = errors.New("transport is closed")
	ErrStreamingNotSupported = errors.New("response writer does not support streaming")
)

const defaultWriteTimeout = 5 * time.Second

// SSETransport writes Server-Sent Events to one HTTP response. Send and Close may be called
// from any goroutine; once Close returns no further write reaches the response.
type SSETransport struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
	opened  bool
	closed  bool
	done    chan struct{}

	writeTimeout time.Duration
}

func NewSSETransport(w http.ResponseWriter) (*SSETransport, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingNotSupported
	}
	return &SSETransport{
		w:            w,
		flusher:      flusher,
		rc:           http.NewResponseController(w),
		done:         make(chan struct{}),
		writeTimeout: defaultWriteTimeout,
	}, nil
}

// Open writes the stream headers and a comment so clients see the stream right away.
// A Send before Open opens the stream itself.
func (t *SSETransport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openLocked()
}

func (t *SSETransport) openLocked() error {
	if t.opened {
		return nil
	}
	t.opened = true

	h := t.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	t.w.WriteHeader(http.StatusOK)

	if _, err := t.w.Write([]byte(": connected\n\n")); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// Send writes data as one event. Multi-line payloads become several data fields.
func (t *SSETransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTransportClosed
	}
	if err := t.openLocked(); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, line := range bytes.Split(data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	// deadline support depends on the server; streams without it just block longer
	_ = t.rc.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	defer func() { _ = t.rc.SetWriteDeadline(time.Time{}) }()

	if _, err := t.w.Write(buf.Bytes()); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

func (t *SSETransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	close(t.done)
}

// Done is closed when the transport is closed, by eviction or by the owner.
func (t *SSETransport) Done() <-chan struct{} {
	return t.done
}
