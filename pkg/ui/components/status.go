// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Notice is a dismissible message shown above the help line.
type Notice struct {
	Surface string
	Text    string
	Shown   time.Time
	TTL     time.Duration
}

// StatusComponent renders notices and drops them once expired.
type StatusComponent struct {
	notices []Notice
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		notices: make([]Notice, 0),
	}
}

// Update adds a notice, replacing an existing one for the same surface.
func (s *StatusComponent) Update(n Notice) {
	for i, cur := range s.notices {
		if cur.Surface == n.Surface {
			s.notices[i] = n
			return
		}
	}
	s.notices = append(s.notices, n)
}

// Prune removes notices whose TTL has elapsed at now.
func (s *StatusComponent) Prune(now time.Time) {
	kept := s.notices[:0]
	for _, n := range s.notices {
		if n.TTL <= 0 || now.Sub(n.Shown) < n.TTL {
			kept = append(kept, n)
		}
	}
	s.notices = kept
}

// Dismiss clears every notice.
func (s *StatusComponent) Dismiss() {
	s.notices = s.notices[:0]
}

// Len returns the number of live notices.
func (s *StatusComponent) Len() int {
	return len(s.notices)
}

// View renders the status component.
func (s *StatusComponent) View() string {
	if len(s.notices) == 0 {
		return ""
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	var result string
	for _, n := range s.notices {
		line := style.Render(fmt.Sprintf("⚠ %s: %s", n.Surface, n.Text))
		if n.TTL > 0 {
			left := n.TTL - time.Since(n.Shown)
			line += muted.Render(fmt.Sprintf(" (%s)", left.Round(time.Second)))
		}
		result += line + "\n"
	}

	return result
}
