// Package spinner draws a progress indicator on stderr while a question is being answered.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

// Spinner is a single-line progress indicator whose message can change between phases.
type Spinner struct {
	writer io.Writer
	delay  time.Duration

	mu      sync.Mutex
	message string
	cancel  context.CancelFunc // nil while stopped
	done    chan struct{}
}

// New creates a stopped spinner that writes to writer.
func New(writer io.Writer, message string) *Spinner {
	return &Spinner{
		writer:  writer,
		delay:   100 * time.Millisecond,
		message: message,
	}
}

// Start begins drawing until Stop is called or ctx is cancelled. Starting a running
// spinner has no effect.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop halts the spinner and clears its line. Stopping a stopped spinner has no effect.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	cancel()
	<-done

	if f, ok := s.writer.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// Active reports whether the spinner is drawing.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()

			fmt.Fprintf(s.writer, "\r%s %s", frames[i%len(frames)], message)
		}
	}
}
