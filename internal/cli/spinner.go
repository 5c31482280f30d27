package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner draws a single status line while a layout or render runs:
// an animated frame, the current stage and the elapsed time. The stage
// can be replaced while it runs, which the level hooks use to report
// refinement progress.
type Spinner struct {
	w      io.Writer
	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	stop   sync.Once

	mu      sync.Mutex
	stage   string
	started time.Time
	width   int // widest line drawn so far, for clearing
}

// newSpinner draws to stderr.
func newSpinner(ctx context.Context, stage string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, stage)
}

func newSpinnerTo(ctx context.Context, w io.Writer, stage string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: w, ctx: ctx, cancel: cancel, exited: make(chan struct{}), stage: stage}
}

// Start launches the animation. It ends on Stop or when the parent context
// is done.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the stage text.
func (s *Spinner) SetMessage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// Stop ends the animation, clears the line and returns the time since
// Start. Calling it again is a no-op returning the same duration.
func (s *Spinner) Stop() time.Duration {
	s.stop.Do(func() {
		s.cancel()
		s.mu.Lock()
		running := !s.started.IsZero()
		s.mu.Unlock()
		if running {
			<-s.exited
		}
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// StopWithError stops the spinner and prints message as a failure.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context is done, either through
// Stop or because the parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	plain := fmt.Sprintf("%s %s %s", frame, s.stage, elapsed)
	line := fmt.Sprintf("%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.stage), StyleDim.Render(elapsed.String()))
	if pad := s.width - len(plain); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	s.width = max(s.width, len(plain))
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}
