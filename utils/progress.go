package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const (
	ErrorColor   = "\x1b[31m"
	SuccessColor = "\x1b[92m"
	DefaultColor = "\x1b[0m"
)

// ProgressIndicator shows a spinner with the number of processed frames.
type ProgressIndicator struct {
	mu         sync.Mutex
	delay      time.Duration
	writer     io.Writer
	message    string
	lastOutput string
	frames     atomic.Uint64
	stopChan   chan struct{}
	doneChan   chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
	started    atomic.Bool

	// StopMsg is printed when the indicator stops.
	StopMsg string
}

// NewProgressIndicator instantiates a new progress indicator writing to stderr.
func NewProgressIndicator(msg string, d time.Duration) *ProgressIndicator {
	return NewProgressIndicatorTo(os.Stderr, msg, d)
}

// NewProgressIndicatorTo instantiates a new progress indicator writing to w.
func NewProgressIndicatorTo(w io.Writer, msg string, d time.Duration) *ProgressIndicator {
	return &ProgressIndicator{
		delay:    d,
		writer:   w,
		message:  msg,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Add increments the processed frame counter.
func (pi *ProgressIndicator) Add(n uint64) {
	pi.frames.Add(n)
}

// Frames returns the processed frame counter.
func (pi *ProgressIndicator) Frames() uint64 {
	return pi.frames.Load()
}

// Start starts the progress indicator. Further calls are no-ops.
func (pi *ProgressIndicator) Start() {
	pi.startOnce.Do(pi.start)
}

func (pi *ProgressIndicator) start() {
	pi.started.Store(true)
	go func() {
		defer close(pi.doneChan)
		for {
			for _, r := range `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏` {
				select {
				case <-pi.stopChan:
					return
				default:
					pi.mu.Lock()
					pi.clear()
					output := fmt.Sprintf("\r%s %d frames %s%c%s", pi.message, pi.frames.Load(), SuccessColor, r, DefaultColor)
					fmt.Fprint(pi.writer, output)
					pi.lastOutput = output
					pi.mu.Unlock()

					time.Sleep(pi.delay)
				}
			}
		}
	}()
}

// Stop stops the progress indicator and prints StopMsg.
// It is safe to call Stop more than once, or without Start.
func (pi *ProgressIndicator) Stop() {
	pi.stopOnce.Do(func() {
		// Once stopped the indicator cannot be started.
		pi.startOnce.Do(func() {})
		close(pi.stopChan)
		if pi.started.Load() {
			<-pi.doneChan
		}

		pi.mu.Lock()
		defer pi.mu.Unlock()

		pi.clear()
		if len(pi.StopMsg) > 0 {
			fmt.Fprint(pi.writer, pi.StopMsg)
		}
	})
}

// clear deletes the last line. Caller must hold the locker.
func (pi *ProgressIndicator) clear() {
	if pi.lastOutput == "" {
		return
	}
	n := utf8.RuneCountInString(pi.lastOutput)
	if runtime.GOOS == "windows" {
		fmt.Fprint(pi.writer, "\r"+strings.Repeat(" ", n)+"\r")
		pi.lastOutput = ""
		return
	}
	fmt.Fprint(pi.writer, "\r\033[K") // clear line
	pi.lastOutput = ""
}
