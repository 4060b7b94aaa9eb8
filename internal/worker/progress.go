package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// partial blocks for the bar's leading edge, in eighths.
var eighths = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

const barWidth = 24

// Progress draws a row bar and keeps per-band timings for the summary.
// Update and Observe plug into Config.OnProgress and Config.OnResult.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	start   time.Time

	total  int
	done   int
	failed int

	bands   int
	busy    time.Duration // summed band render time across workers
	slowest Result
}

// NewProgress tracks total rows. A disabled Progress still collects
// timings for Summary but never writes.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		enabled: enabled,
		start:   time.Now(),
		total:   total,
	}
}

// SetOutput redirects the bar, which goes to stderr by default.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	p.out = w
	p.mu.Unlock()
}

// Update records processed rows and redraws the bar.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.done, p.total, p.failed = completed, total, failed
	line := p.line(time.Since(p.start))
	p.mu.Unlock()

	if p.enabled {
		fmt.Fprint(p.out, "\r"+line)
	}
}

// Callback returns Update as a ProgressFunc.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Observe records the timing of a finished band.
func (p *Progress) Observe(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bands++
	p.busy += r.Elapsed
	if r.Elapsed > p.slowest.Elapsed || p.bands == 1 {
		p.slowest = r
	}
}

// line renders the bar without carriage return. Callers hold mu.
func (p *Progress) line(elapsed time.Duration) string {
	frac := 1.0
	if p.total > 0 {
		frac = float64(p.done) / float64(p.total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %3.0f%% %d/%d rows", bar(frac, barWidth), frac*100, p.done, p.total)
	if p.failed > 0 {
		fmt.Fprintf(&b, ", %d failed", p.failed)
	}
	if secs := elapsed.Seconds(); p.done > 0 && secs > 0 {
		rate := float64(p.done) / secs
		fmt.Fprintf(&b, ", %.0f rows/s", rate)
		if p.done < p.total {
			eta := time.Duration(float64(p.total-p.done) / rate * float64(time.Second))
			fmt.Fprintf(&b, ", ETA %s", roundDuration(eta))
		}
	}
	return b.String()
}

// bar draws frac of width cells, using eighth blocks for the last cell.
func bar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	units := int(frac * float64(width*8))
	full, rem := units/8, units%8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	cells := full
	if rem > 0 {
		b.WriteString(eighths[rem])
		cells++
	}
	b.WriteString(strings.Repeat(" ", width-cells))
	return "▕" + b.String() + "▏"
}

// Done ends the bar line.
func (p *Progress) Done() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	line := p.line(time.Since(p.start))
	out := p.out
	p.mu.Unlock()
	fmt.Fprintln(out, "\r"+line)
}

// Summary describes the finished render: rows, wall time, band count, the
// slowest band and how much of the wall time workers overlapped.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary(time.Since(p.start))
}

func (p *Progress) summary(elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rendered %d/%d rows in %s", p.done-p.failed, p.total, roundDuration(elapsed))
	if p.failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", p.failed)
	}
	if p.bands == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "; %d bands, slowest rows %d-%d in %s",
		p.bands, p.slowest.Band.Start, p.slowest.Band.End, roundDuration(p.slowest.Elapsed))
	if elapsed > 0 {
		fmt.Fprintf(&b, ", %.1fx parallel", p.busy.Seconds()/elapsed.Seconds())
	}
	return b.String()
}

// roundDuration trims a duration to a readable precision.
func roundDuration(d time.Duration) time.Duration {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond)
	case d < time.Second:
		return d.Round(time.Millisecond)
	case d < time.Minute:
		return d.Round(100 * time.Millisecond)
	default:
		return d.Round(time.Second)
	}
}
