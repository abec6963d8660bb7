package infra

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/pkg/ui"
)

// TUIReporter implements Reporter for the Bubble Tea dashboard.
type TUIReporter struct {
	send func(tea.Msg)
}

var _ app.Reporter = (*TUIReporter)(nil)

// NewTUIReporter creates a reporter that hands events to send, usually
// ui.Send.
func NewTUIReporter(send func(tea.Msg)) *TUIReporter {
	if send == nil {
		send = ui.Send
	}
	return &TUIReporter{send: send}
}

// Report forwards ev to the dashboard. Coarse samples are skipped since the
// dashboard reads the curve from snapshots.
func (r *TUIReporter) Report(ev app.Event) {
	if ev.Type == app.EventEvaluation || ev.Type == app.EventProgress {
		return
	}
	r.send(ui.EventMsg{Event: ev})
}
