package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows a running solve on one terminal line: the message, the
// elapsed time and, when set, the time limit.
type Spinner struct {
	w       io.Writer
	message string
	limit   time.Duration
	start   time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
	byStop   atomic.Bool
	width    int
}

// newSpinner creates a spinner that also stops when ctx is done. A zero
// limit hides the limit.
func newSpinner(ctx context.Context, w io.Writer, message string, limit time.Duration) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		limit:   limit,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	line := fmt.Sprintf("%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), s.clock())
	s.width = max(s.width, len(line))
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *Spinner) clock() string {
	elapsed := time.Since(s.start).Round(100 * time.Millisecond)
	if s.limit > 0 {
		return StyleDim.Render(fmt.Sprintf("%s / %s", elapsed, s.limit))
	}
	return StyleDim.Render(elapsed.String())
}

func (s *Spinner) clear() {
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Stop ends the animation and clears the line. It may be called more than
// once, and never returns before the drawing goroutine is gone.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.byStop.Store(s.ctx.Err() == nil)
		s.cancel()
	})
	if s.start.IsZero() {
		return
	}
	<-s.stopped
}

// Cancelled reports whether the parent context ended the spinner.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !s.byStop.Load()
}
