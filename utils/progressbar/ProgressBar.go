// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressBar implements a progress bar that is manually managed: the
// Display() function must be called whenever an updated progress bar
// should be printed.
//
// The bar is purely cosmetic and writes to the supplied io.Writer, so
// callers running without a terminal can pass io.Discard.
type ProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	description     string
	status          string
	bar             strings.Builder
	startTime       time.Time
	out             io.Writer
}

// New returns a new ProgressBar that is width characters wide and
// reaches 100% after max Increment() calls.
func New(out io.Writer, width, max int, description string) *ProgressBar {
	return &ProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		description: description,
		startTime:   time.Now(),
		out:         out,
	}
}

// Increment increments the internal progress counter and updates the
// status text shown next to the bar. Each time an iteration is
// performed, Increment should be called.
func (p *ProgressBar) Increment(status string) {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
	p.status = status
}

// Display displays the progress bar on the screen, overwriting the
// previously displayed bar.
func (p *ProgressBar) Display() {
	p.bar.Reset()
	p.bar.WriteString(p.description)
	p.bar.WriteString(" |")

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v] %v",
		p.currentProgress/p.maxProgress*100,
		time.Since(p.startTime).Truncate(time.Second), p.status))

	fmt.Fprintf(p.out, "\r\033[K%v", p.bar.String())
}

// Close finishes the progress bar, jumping to the next terminal line
func (p *ProgressBar) Close() {
	fmt.Fprintln(p.out)
}
