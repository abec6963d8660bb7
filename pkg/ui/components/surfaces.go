// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// SurfaceRow is one surface as the dashboard shows it. Values arrive
// formatted-ready; the component does no domain math.
type SurfaceRow struct {
	Key      string
	Name     string
	Chain    string
	Route    string
	Mode     string
	Range    string
	State    string
	Scanning bool
	Progress int

	HasResult  bool
	BestInput  float64
	BestProfit float64
	Profitable bool
	Base       string
	Evals      int

	NextScan time.Duration
	Selected bool
}

// SurfacesComponent renders the surface list with one progress bar each.
type SurfacesComponent struct {
	rows []SurfaceRow
	bar  progress.Model
}

// NewSurfacesComponent creates a new surfaces component.
func NewSurfacesComponent() *SurfacesComponent {
	return &SurfacesComponent{
		rows: make([]SurfaceRow, 0),
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
	}
}

// Update replaces the rows.
func (c *SurfacesComponent) Update(rows []SurfaceRow) {
	c.rows = rows
}

// Len returns the number of rows.
func (c *SurfacesComponent) Len() int {
	return len(c.rows)
}

// View renders the surfaces component.
func (c *SurfacesComponent) View() string {
	if len(c.rows) == 0 {
		return "No surfaces configured..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	profitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unprofitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("SURFACES (%d)", len(c.rows))))
	sb.WriteString("\n\n")

	for _, row := range c.rows {
		cursor := "  "
		nameStyle := mutedStyle
		if row.Selected {
			cursor = "▸ "
			nameStyle = selectedStyle
		}

		sb.WriteString(cursor)
		sb.WriteString(nameStyle.Render(fmt.Sprintf("%-18s", row.Name)))
		sb.WriteString(mutedStyle.Render(fmt.Sprintf(" %-9s %-8s %s", row.Chain, row.Mode, row.Route)))
		sb.WriteString("\n  ")

		sb.WriteString(c.bar.ViewAs(float64(row.Progress) / 100))
		sb.WriteString(fmt.Sprintf(" %3d%% ", row.Progress))

		switch row.State {
		case "scanning":
			sb.WriteString(warnStyle.Render("scanning"))
		case "rate_limited":
			sb.WriteString(warnStyle.Render("rate limited"))
		case "failed":
			sb.WriteString(unprofitableStyle.Render("failed"))
		case "cancelled":
			sb.WriteString(mutedStyle.Render("cancelled"))
		default:
			sb.WriteString(mutedStyle.Render(row.State))
		}
		if !row.Scanning && row.NextScan > 0 {
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  next scan in %s", row.NextScan.Round(time.Second))))
		}
		sb.WriteString("\n  ")

		if row.HasResult {
			style, icon := profitableStyle, "✓"
			if !row.Profitable {
				style, icon = unprofitableStyle, "✗"
			}
			sb.WriteString(style.Render(fmt.Sprintf("%s best %.6g %s → %+.6g %s", icon, row.BestInput, row.Base, row.BestProfit, row.Base)))
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d evals, range %s)", row.Evals, row.Range)))
		} else {
			sb.WriteString(mutedStyle.Render("no result yet, range " + row.Range))
		}
		sb.WriteString("\n\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
