// Package tui provides a Bubble Tea terminal user interface for mediakeep.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mediakeep/mediakeep/internal/config"
	"github.com/mediakeep/mediakeep/internal/diskspace"
	"github.com/mediakeep/mediakeep/internal/lockfile"
	"github.com/mediakeep/mediakeep/internal/retention"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateSweeping
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   retention.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	settings  *config.Settings
	logs      []LogEntry
	report    *retention.Report
	freeMB    int64
	err       error

	// Sweep context
	ctx    context.Context
	cancel context.CancelFunc

	// Event relay from the sweeper callback into the update loop
	events chan retention.Event

	// Options
	dryRun   bool
	parallel bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/downloads"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		settings:  config.DefaultSettings(),
		logs:      make([]LogEntry, 0),
		freeMB:    diskspace.UnknownFreeMegabytes,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan retention.Event, 64),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// SweepEventMsg carries one sweep progress event.
	SweepEventMsg struct {
		Event retention.Event
	}

	// SweepDoneMsg is sent when the sweep completes.
	SweepDoneMsg struct {
		Report *retention.Report
		FreeMB int64
		Err    error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateSweeping {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateSweeping
				return m, tea.Batch(m.startSweep(), m.waitForEvent(), m.spinner.Tick)
			}

		case "d":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "p":
			if m.state == StateInput {
				m.parallel = !m.parallel
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new sweep
				m.state = StateInput
				m.logs = nil
				m.report = nil
				m.err = nil
				m.freeMB = diskspace.UnknownFreeMegabytes
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.events = make(chan retention.Event, 64)
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SweepEventMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == retention.LevelVerbose && !m.verbose {
			return m, m.waitForEvent()
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		return m, m.waitForEvent()

	case SweepDoneMsg:
		m.report = msg.Report
		m.freeMB = msg.FreeMB
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startSweep runs the sweep in the background and reports completion.
func (m *Model) startSweep() tea.Cmd {
	root := m.textInput.Value()
	settings := m.settings
	settings.ParallelCleanup = m.parallel
	settings.CleanupDryRun = m.dryRun

	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		locks := lockfile.NewRegistry()
		defer locks.Close()

		sweeper := retention.NewSweeper(settings, locks, func(event retention.Event) {
			select {
			case events <- event:
			default: // never block the sweep on a slow UI
			}
		})

		free := diskspace.FreeSpace(root)

		report, err := sweeper.Sweep(ctx, retention.Request{
			Root:          root,
			Patterns:      settings.CleanupPatterns,
			RetentionDays: settings.RetentionDays,
		})

		// Sweep has returned; no further callback sends can happen.
		close(events)

		return SweepDoneMsg{Report: report, FreeMB: free, Err: err}
	}
}

// waitForEvent relays the next sweep event into the update loop.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return SweepEventMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🧹 mediakeep"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Retention cleanup for downloaded media"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateSweeping:
		b.WriteString(m.viewSweeping())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter directory to sweep:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	// Options
	dryRunCheck := "[ ]"
	if m.dryRun {
		dryRunCheck = "[×]"
	}
	parallelCheck := "[ ]"
	if m.parallel {
		parallelCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Dry run (d)\n", dryRunCheck))
	b.WriteString(fmt.Sprintf("  %s Parallel pattern search (p)\n", parallelCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Retention: %d days | Patterns: %s",
		m.settings.RetentionDays, strings.Join(m.settings.CleanupPatterns, " "))))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewSweeping() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Sweeping..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	freeLine := "unknown"
	if m.freeMB != diskspace.UnknownFreeMegabytes {
		freeLine = fmt.Sprintf("%d MB", m.freeMB)
	}

	verb := "Deleted"
	deleted := 0
	if m.report != nil {
		deleted = m.report.Deleted
		if m.dryRun {
			verb = "Would delete"
			deleted = m.report.Candidates
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Sweep Complete!\n\n"+
			"Candidates: %d\n"+
			"%s: %d\n"+
			"Skipped (locked): %d\n"+
			"Failed: %d\n"+
			"Free space: %s",
		m.reportCandidates(),
		verb, deleted,
		m.reportSkipped(),
		m.reportFailed(),
		freeLine,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) reportCandidates() int {
	if m.report == nil {
		return 0
	}
	return m.report.Candidates
}

func (m Model) reportSkipped() int {
	if m.report == nil {
		return 0
	}
	return m.report.SkippedLocked
}

func (m Model) reportFailed() int {
	if m.report == nil {
		return 0
	}
	return m.report.Failed
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case retention.LevelError:
			style = errorStyle
			prefix = "✗"
		case retention.LevelWarning:
			style = warningStyle
			prefix = "!"
		case retention.LevelInfo:
			style = successStyle
			prefix = "✓"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: sweep • d: dry run • p: parallel • v: verbose • esc: quit"
	case StateSweeping:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new sweep • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
