package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar shows how many of a known number of operations are done.
// It is safe for concurrent use; redraws are throttled.
type ProgressBar struct {
	w        io.Writer
	title    string
	total    int64
	current  int64
	width    int
	started  time.Time
	interval time.Duration
	lastDraw time.Time
	mu       sync.Mutex
}

// NewProgressBar creates a progress bar for total operations.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{
		w:        w,
		title:    title,
		total:    total,
		width:    40,
		started:  time.Now(),
		interval: 100 * time.Millisecond,
	}
}

// Increment records n more completed operations.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if now := time.Now(); now.Sub(p.lastDraw) >= p.interval {
		p.lastDraw = now
		p.render(now)
	}
}

// Current returns the number of completed operations.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render(time.Now())
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render(now time.Time) {
	rate := opsPerSecond(p.current, now.Sub(p.started))

	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d ops (%s)", p.title, p.current, rate)
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d, %s)",
		p.title,
		bar,
		percent*100,
		p.current,
		p.total,
		rate,
	)
}

// opsPerSecond formats a throughput such as "12.3k ops/s".
func opsPerSecond(n int64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "- ops/s"
	}
	r := float64(n) / elapsed.Seconds()
	switch {
	case r >= 1e6:
		return fmt.Sprintf("%.1fM ops/s", r/1e6)
	case r >= 1e3:
		return fmt.Sprintf("%.1fk ops/s", r/1e3)
	default:
		return fmt.Sprintf("%.0f ops/s", r)
	}
}
