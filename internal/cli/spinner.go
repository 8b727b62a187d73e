package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress indicator on stderr until stopped or until
// the context is cancelled.
type Spinner struct {
	message string
	ctx     context.Context
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func newSpinner(ctx context.Context, message string) *Spinner {
	return &Spinner{
		message: message,
		ctx:     ctx,
		quit:    make(chan struct{}),
	}
}

// Start begins the animation in a background goroutine.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go s.loop()
}

func (s *Spinner) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-s.quit:
			s.clearLine()
			return
		case <-ticker.C:
			glyph := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(glyph), StyleDim.Render(s.message))
		}
	}
}

// Stop halts the animation and clears the spinner line. Safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

func (s *Spinner) clearLine() {
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
