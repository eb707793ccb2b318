// Package spinner shows a progress indicator on stderr while sources are read.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an animated progress line that can report how many bytes have been read.
type Spinner struct {
	frames []string
	delay  time.Duration
	writer io.Writer
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	active  bool
	message string
	bytes   atomic.Int64 // bytes read through Track since the last UpdateMessage
}

// New creates a spinner that writes to writer. Cancelling ctx stops the animation.
func New(ctx context.Context, writer io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		frames:  defaultFrames,
		delay:   80 * time.Millisecond,
		writer:  writer,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
	}
}

// ShouldAnimate reports whether w is an interactive terminal.
// Redirected output gets no spinner.
func ShouldAnimate(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true

	s.wg.Add(1)
	go s.run()
}

// Stop stops the animation and clears the line. A stopped spinner cannot be restarted.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	if ShouldAnimate(s.writer) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the spinner is currently running
func (s *Spinner) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// UpdateMessage replaces the message and resets the byte counter.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.bytes.Store(0)
}

// Track returns a reader that adds everything read from r to the spinner's byte counter.
func (s *Spinner) Track(r io.Reader) io.Reader {
	return &trackingReader{r: r, s: s}
}

type trackingReader struct {
	r io.Reader
	s *Spinner
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.s.bytes.Add(int64(n))
	return n, err
}

// line renders the text shown next to the current frame
func (s *Spinner) line() string {
	s.mu.RLock()
	message := s.message
	s.mu.RUnlock()

	if n := s.bytes.Load(); n > 0 {
		return fmt.Sprintf("%s (%s)", message, humanize.Bytes(uint64(n)))
	}
	return message
}

// run is the main spinner loop.
func (s *Spinner) run() {
	defer s.wg.Done()

	frameIndex := 0
	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			frame := s.frames[frameIndex%len(s.frames)]
			// clear to end of line; the message may have shrunk
			fmt.Fprintf(s.writer, "\r%s %s\033[K", frame, s.line())
			frameIndex++
		}
	}
}
