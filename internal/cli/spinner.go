package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Spinner animates a status line on uiOut while a batch runs. With a
// positive total it also shows how many jobs have finished.
type Spinner struct {
	message string
	total   int
	count   atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	started atomic.Bool
	stopped chan struct{}
	once    sync.Once
	frames  []string

	mu    sync.Mutex
	width int // widest line written so far
}

// newSpinner creates a spinner that stops when ctx is cancelled.
func newSpinner(ctx context.Context, message string, total int) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		total:   total,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Advance records one finished job. It is safe for concurrent use.
func (s *Spinner) Advance() {
	s.count.Add(1)
}

// text is the status line without the animation frame.
func (s *Spinner) text() string {
	if s.total <= 0 {
		return s.message
	}
	return fmt.Sprintf("%s %d/%d", s.message, s.count.Load(), s.total)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.render(s.frames[i%len(s.frames)])
			}
		}
	}()
}

func (s *Spinner) render(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.text()
	s.width = max(s.width, len(text))
	fmt.Fprintf(uiOut, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

// Stop stops the spinner and clears the line. Further calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.stopped
		}
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(uiOut, "\r%s\r", strings.Repeat(" ", s.width+2))
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}
