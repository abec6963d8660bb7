// Package ui provides the Bubble Tea dashboard for the radar.
package ui

import (
	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
)

// Message types for TUI updates

// EventMsg carries one scan lifecycle event from a surface.
type EventMsg struct {
	Event app.Event
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// ReadyMsg is sent once the radar is running and snapshots are available.
type ReadyMsg struct {
	Radar Radar
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
