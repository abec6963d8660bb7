// Package ui provides the Bubble Tea dashboard for the radar.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// RateLimitNoticeTTL is how long a rate-limit notice stays on screen.
const RateLimitNoticeTTL = 10 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

var stepOrder = []string{"config", "modules", "radar"}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	surfaces *components.SurfacesComponent
	status   *components.StatusComponent
	stats    *components.StatsComponent
	keys     KeyMap
	help     help.Model

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	radar      Radar
	snaps      []app.Snapshot
	selected   int
	quitting   bool
	width      int
	height     int
	lastUpdate time.Time
	errors     []ErrorEntry // Persistent error panel (last 3)
	logs       []string     // Recent log messages

	// Startup state
	startupSteps map[string]*StartupStep
	startupTime  time.Time

	activityFeed []string
	now          func() time.Time
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		surfaces:     components.NewSurfacesComponent(),
		status:       components.NewStatusComponent(),
		stats:        components.NewStatsComponent(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
		activityFeed: make([]string, 0, 8),
		startupSteps: map[string]*StartupStep{
			"config":  {Name: "Loading configuration", Status: "pending"},
			"modules": {Name: "Starting modules", Status: "pending"},
			"radar":   {Name: "Starting surfaces", Status: "pending"},
		},
		startupTime: now,
		now:         time.Now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) startModules() Model {
	m.phase = PhaseStartup
	m.startupTime = m.now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
	return m
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			return m.startModules(), tickCmd()
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && m.now().Sub(m.welcomeStart) >= WelcomeDuration {
			m = m.startModules()
		}
		m.status.Prune(m.now())
		m.refresh()
		return m, tickCmd()

	case ReadyMsg:
		m.radar = msg.Radar
		m.phase = PhaseDashboard
		for _, step := range m.startupSteps {
			step.Status = "done"
		}
		m.refresh()

	case EventMsg:
		m.handleEvent(msg.Event)

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{Message: msg.Error.Error(), Timestamp: m.now()})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.refresh()
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.snaps)-1 {
			m.selected++
		}
		m.refresh()
	case key.Matches(msg, m.keys.Rescan):
		return m, m.act(func(r Radar, key string) error {
			_, err := r.Restart(key)
			return err
		})
	case key.Matches(msg, m.keys.Cancel):
		return m, m.act(func(r Radar, key string) error {
			return r.Cancel(key)
		})
	case key.Matches(msg, m.keys.Direction):
		return m, m.act(func(r Radar, key string) error {
			s, err := r.Surface(key)
			if err != nil {
				return err
			}
			_, err = s.SetDirection(s.Plan().Direction.Flip())
			return err
		})
	case key.Matches(msg, m.keys.Base):
		return m, m.act(func(r Radar, key string) error {
			s, err := r.Surface(key)
			if err != nil {
				return err
			}
			_, err = s.SetBase(s.Plan().Base.Flip())
			return err
		})
	case key.Matches(msg, m.keys.Dismiss):
		m.status.Dismiss()
		m.errors = make([]ErrorEntry, 0, 3)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// act runs fn against the selected surface off the update loop; switching a
// surface waits for its live session to stop.
func (m Model) act(fn func(r Radar, key string) error) tea.Cmd {
	if m.radar == nil || m.selected >= len(m.snaps) {
		return nil
	}
	r, key := m.radar, m.snaps[m.selected].Key
	return func() tea.Msg {
		if err := fn(r, key); err != nil {
			return ErrorMsg{Error: err}
		}
		return nil
	}
}

func (m *Model) handleEvent(ev app.Event) {
	m.lastUpdate = m.now()
	st := m.stats.Stats()

	switch ev.Type {
	case app.EventScanStarted:
		st.Scans++
	case app.EventResult:
		st.Published++
		if ev.Result != nil {
			if ev.Result.Profitable {
				st.Profitable++
			}
			m.activityFeed = addActivity(m.activityFeed, fmt.Sprintf("%s: best %.6g → %+.6g",
				ev.Surface, ev.Result.BestInput, ev.Result.BestProfit))
		}
	case app.EventCancelled:
		st.Cancelled++
	case app.EventRateLimited:
		st.RateLimited++
		m.status.Update(components.Notice{
			Surface: ev.Surface,
			Text:    "rate limited, showing the previous result",
			Shown:   m.now(),
			TTL:     RateLimitNoticeTTL,
		})
		m.activityFeed = addActivity(m.activityFeed, ev.Surface+": rate limited")
	case app.EventFailed:
		st.Errors++
		m.errors = append(m.errors, ErrorEntry{Message: ev.Surface + ": " + ev.Error, Timestamp: m.now()})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	m.stats.Update(st)
}

// refresh pulls fresh snapshots from the radar.
func (m *Model) refresh() {
	if m.radar == nil {
		return
	}
	m.snaps = m.radar.Snapshot()
	if m.selected >= len(m.snaps) {
		m.selected = max(len(m.snaps)-1, 0)
	}

	now := m.now()
	rows := make([]components.SurfaceRow, 0, len(m.snaps))
	for i, s := range m.snaps {
		rows = append(rows, surfaceRow(s, i == m.selected, now))
	}
	m.surfaces.Update(rows)
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ◎ Optimal Input Radar "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.surfaces.View()
	rightCol := m.renderDetail()

	if m.width > 110 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := max(m.width-4, 40)
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n\n")

	if notices := m.status.View(); notices != "" {
		b.WriteString(notices)
		b.WriteString("\n")
	}

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := m.now().Sub(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderDetail renders the selected surface: curve, activity and stats.
func (m Model) renderDetail() string {
	headerStyle := HeaderStyle.Padding(0)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var sb strings.Builder
	if m.selected < len(m.snaps) {
		s := m.snaps[m.selected]
		sb.WriteString(headerStyle.Render("PROFIT CURVE · " + s.Name))
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s → %s, %s", s.Base, s.First, s.Second, s.Direction)))
		sb.WriteString("\n\n")

		width := 40
		if m.width > 110 {
			width = max(m.width/2-20, 20)
		}
		pts, best := curvePoints(s)
		sb.WriteString(components.RenderCurve(pts, best, width, 8))
		sb.WriteString("\n")
		if r := s.Result; r != nil {
			style := NegativeValue
			if r.Profitable {
				style = PositiveValue
			}
			sb.WriteString(style.Render(fmt.Sprintf("best %+.6f at %.6f %s", r.BestProfit, r.BestInput, s.Base)))
			sb.WriteString("\n")
		}
		if s.LastError != "" {
			sb.WriteString(NegativeValue.Render("last error: " + s.LastError))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(headerStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n")
	if len(m.activityFeed) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for the first result..."))
		sb.WriteString("\n")
	}
	for _, activity := range m.activityFeed {
		sb.WriteString(mutedStyle.Render("  " + activity))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.stats.View())

	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	mutedStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	greenStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	// Animated dots based on time
	elapsed := m.now().Sub(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ██████╗  █████╗ ██████╗  █████╗ ██████╗
   ██╔══██╗██╔══██╗██╔══██╗██╔══██╗██╔══██╗
   ██████╔╝███████║██║  ██║███████║██████╔╝
   ██╔══██╗██╔══██║██║  ██║██╔══██║██╔══██╗
   ██║  ██║██║  ██║██████╔╝██║  ██║██║  ██║
   ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("         O P T I M A L   I N P U T"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("              Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("        Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	successStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	failedStyle := lipgloss.NewStyle().Foreground(ColorDanger)

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  ◎ Optimal Input Radar"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon = "✓"
			statusText = "Ready"
			style = successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(m.now().Sub(m.startupTime).Milliseconds()/200) % len(spinners)
			icon = spinners[idx]
			statusText = "Starting..."
			style = connectingStyle
		case "failed":
			icon = "✗"
			statusText = "Failed"
			style = failedStyle
		default:
			icon = "○"
			statusText = "Pending"
			style = mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := m.now().Sub(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n")

	for _, line := range m.logs {
		sb.WriteString(mutedStyle.Render("  " + line))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	scanning := 0
	for _, s := range m.snaps {
		if s.Scanning {
			scanning++
		}
	}
	if scanning > 0 {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(m.now().UnixMilli()/100) % len(spinners)
		scanningStyle := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
		parts = append(parts, scanningStyle.Render(fmt.Sprintf("%s Scanning %d", spinners[idx], scanning)))
	}

	parts = append(parts, fmt.Sprintf("Surfaces: %d", len(m.snaps)))

	if n := m.status.Len(); n > 0 {
		parts = append(parts, NoticeStyle.Render(fmt.Sprintf("Notices: %d", n)))
	}

	if !m.lastUpdate.IsZero() {
		ago := m.now().Sub(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪" // Recent activity indicator
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
