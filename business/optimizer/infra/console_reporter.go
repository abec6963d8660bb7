// Package infra contains infrastructure adapters for the optimizer context.
package infra

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

var _ app.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a new ConsoleReporter writing to w, or stdout
// when w is nil.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{out: w}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(surfaces int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Optimal Input Radar Started")
	fmt.Fprintln(r.out, "===========================")
	fmt.Fprintf(r.out, "Surfaces: %d\n", surfaces)
}

// Report prints lifecycle events. Progress and coarse samples are skipped.
func (r *ConsoleReporter) Report(ev app.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := ev.At.Format("15:04:05")
	switch ev.Type {
	case app.EventScanStarted:
		fmt.Fprintf(r.out, "[%s] %s: scan started (%s)\n", ts, ev.Surface, ev.Session)
	case app.EventResult:
		if ev.Result == nil {
			return
		}
		res := ev.Result
		fmt.Fprintln(r.out, "")
		fmt.Fprintln(r.out, "================================================================================")
		fmt.Fprintf(r.out, "SCAN RESULT: %s\n", ev.Surface)
		fmt.Fprintln(r.out, "================================================================================")
		fmt.Fprintf(r.out, "Completed:      %s\n", res.CompletedAt.Format(time.RFC3339))
		fmt.Fprintf(r.out, "Best input:     %.6f\n", res.BestInput)
		if math.IsInf(res.BestProfit, -1) {
			fmt.Fprintln(r.out, "Best profit:    unquotable")
		} else {
			fmt.Fprintf(r.out, "Best profit:    %+.6f\n", res.BestProfit)
		}
		fmt.Fprintf(r.out, "Evaluations:    %d\n", res.Evaluations)
		status := "Not profitable"
		if res.Profitable {
			status = "PROFITABLE"
		}
		fmt.Fprintf(r.out, "Status:         %s\n", status)
		fmt.Fprintln(r.out, "================================================================================")
	case app.EventCancelled:
		fmt.Fprintf(r.out, "[%s] %s: scan cancelled\n", ts, ev.Surface)
	case app.EventRateLimited:
		fmt.Fprintf(r.out, "[%s] %s: rate limited, previous result kept\n", ts, ev.Surface)
	case app.EventFailed:
		fmt.Fprintf(r.out, "[%s] %s: scan failed: %s\n", ts, ev.Surface, ev.Error)
	}
}

// Stop prints the shutdown line.
func (r *ConsoleReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Optimal Input Radar Stopped")
}
