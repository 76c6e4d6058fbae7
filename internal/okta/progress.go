package okta

import (
	"fmt"
	"io"
	"time"
)

// ProgressIndicator prints a mark every interval until stopped.
type ProgressIndicator struct {
	w      io.Writer
	ticker *time.Ticker
	done   chan bool
}

// NewProgressIndicator creates and starts a new progress indicator
func NewProgressIndicator(w io.Writer, interval time.Duration) *ProgressIndicator {
	p := &ProgressIndicator{
		w:      w,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
	go p.run()
	return p
}

func (p *ProgressIndicator) run() {
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.w, "#")
		case <-p.done:
			return
		}
	}
}

// Stop stops the progress indicator and prints a newline
func (p *ProgressIndicator) Stop() {
	p.ticker.Stop()
	p.done <- true
	fmt.Fprintln(p.w)
}
