// Package tui provides a Bubble Tea terminal user interface for emoji-kitchen-dl.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/emoji-kitchen-dl/internal/config"
	"github.com/handiism/emoji-kitchen-dl/internal/download"
	fetch "github.com/handiism/emoji-kitchen-dl/internal/http"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/handiism/emoji-kitchen-dl/internal/pairs"
	"github.com/handiism/emoji-kitchen-dl/internal/report"
	"github.com/handiism/emoji-kitchen-dl/internal/resultlog"
	"github.com/handiism/emoji-kitchen-dl/internal/storage"
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

	emojiStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// errCancelled is shown when the user aborts a run.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	orchestrator *download.Orchestrator
	results      *resultlog.Logger
	events       chan download.ProgressEvent
	batchDone    chan struct{} // closed once DownloadBatch has returned

	emojis []string
	pairs  []model.Pair
	done   int64
	total  int64
	stats  download.Stats

	// Options
	skipExisting bool
	normalize    bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model using settings as the base configuration.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "😀 😎 🐶   (or \"top100\")"
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateInput,
		textInput:    ti,
		spinner:      sp,
		progress:     prog,
		settings:     settings,
		logs:         make([]LogEntry, 0),
		ctx:          ctx,
		cancel:       cancel,
		skipExisting: settings.SkipExisting,
		normalize:    settings.Normalize,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one orchestrator event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when the stores and logs are ready.
	InitDoneMsg struct {
		Emojis       []string
		Pairs        []model.Pair
		Orchestrator *download.Orchestrator
		Results      *resultlog.Logger
		Events       chan download.ProgressEvent
		Err          error
	}

	// DownloadDoneMsg is sent when the batch finishes.
	DownloadDoneMsg struct {
		Stats download.Stats
		Err   error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// ParseEmojis splits the input into emojis. "top100" selects pairs.Top100.
// Repeated emojis are dropped.
func ParseEmojis(input string) []string {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "top100") {
		return pairs.Top100
	}

	seen := make(map[string]bool)
	var out []string
	for _, f := range strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			// The result log stays open until the batch has unwound; Run closes it.
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && len(ParseEmojis(m.textInput.Value())) > 0 {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.skipExisting = !m.skipExisting
			}

		case "ctrl+n":
			if m.state == StateInput {
				m.normalize = !m.normalize
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if (m.state == StateComplete || m.state == StateError) && !m.running() {
				// Reset for new run
				m.closeResults()
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.emojis = nil
				m.pairs = nil
				m.done = 0
				m.total = 0
				m.stats = download.Stats{}
				m.orchestrator = nil
				m.events = nil
				m.batchDone = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.emojis = msg.Emojis
			m.pairs = msg.Pairs
			m.orchestrator = msg.Orchestrator
			m.results = msg.Results
			m.events = msg.Events
			m.batchDone = make(chan struct{})
			m.total = int64(len(msg.Pairs))
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress(), waitForEvent(m.events))
		}

	case DownloadDoneMsg:
		if m.state == StateInput {
			// stale result of a run that was reset
			break
		}
		m.stats = msg.Stats
		m.done = int64(msg.Stats.Processed())
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = errCancelled
		} else if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.orchestrator != nil && m.state == StateDownloading {
			m.done, m.total = m.orchestrator.Progress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next orchestrator event as a ProgressMsg.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🍳 Emoji Kitchen Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download emoji combinations"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
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

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter emojis to combine (every ordered pair is downloaded):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	if emojis := ParseEmojis(m.textInput.Value()); len(emojis) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d emojis → %d pairs", len(emojis), len(emojis)*len(emojis))))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Skip existing files (ctrl+s)\n", checkbox(m.skipExisting)))
	b.WriteString(fmt.Sprintf("  %s Normalize image size (ctrl+n)\n", checkbox(m.normalize)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+l)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s | Size: %dpx | Logs: %s",
		m.settings.OutputDir, m.settings.Size, m.settings.LogDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Preparing output and logs..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.emojis) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Combining %d emoji(s):", len(m.emojis))))
		b.WriteString("\n")
		b.WriteString(emojiStyle.Render("  " + strings.Join(m.emojis, " ")))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Pairs: %d/%d", m.done, m.total)))
	if m.orchestrator != nil {
		s := m.orchestrator.Stats()
		b.WriteString(infoStyle.Render(fmt.Sprintf(" | ok %d · skipped %d · 404 %d · failed %d",
			s.Successes, s.Skipped, s.NotFound, s.Failures)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(report.Summary(m.stats))
	b.WriteString("\n")
	b.WriteString(report.Verdict(m.stats, m.settings.SuccessThreshold))
	b.WriteString("\n")
	if m.results != nil {
		b.WriteString(dimStyle.Render("Session: " + m.results.SessionID()))
		b.WriteString("\n")
	}

	return b.String()
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
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
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
		return "enter: start • ctrl+s: skip existing • ctrl+n: normalize • ctrl+l: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// running reports whether a batch started by this model is still in progress.
func (m *Model) running() bool {
	if m.batchDone == nil {
		return false
	}
	select {
	case <-m.batchDone:
		return false
	default:
		return true
	}
}

// shutdown cancels the run, waits for the batch to return, then closes the
// result log.
func (m *Model) shutdown() {
	m.cancel()
	if m.batchDone != nil {
		<-m.batchDone
	}
	m.closeResults()
}

func (m *Model) closeResults() {
	if m.results != nil {
		m.results.Close()
		m.results = nil
	}
}

// initializeDownload opens the store and result log and builds the orchestrator.
func (m *Model) initializeDownload() tea.Cmd {
	emojis := ParseEmojis(m.textInput.Value())
	settings := *m.settings
	settings.SkipExisting = m.skipExisting
	settings.Normalize = m.normalize

	return func() tea.Msg {
		results, err := resultlog.Open(settings.LogDir, "", resultlog.Options{
			MaxDebugSizeMB: settings.MaxDebugLogMB,
		})
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		logger := results.Log()

		store, err := storage.New(settings.OutputDir, settings.Format(), logger)
		if err != nil {
			results.Close()
			return InitDoneMsg{Err: err}
		}

		events := make(chan download.ProgressEvent, 256)
		client := fetch.NewClient(settings.ToClientConfig(), logger)
		orch := download.New(client, store, results, settings.ToDownloadOptions(), func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
				// drop when the UI is behind
			}
		})

		return InitDoneMsg{
			Emojis:       emojis,
			Pairs:        pairs.Product(emojis),
			Orchestrator: orch,
			Results:      results,
			Events:       events,
		}
	}
}

// startDownload runs the batch in the background.
func (m *Model) startDownload() tea.Cmd {
	orch, batch, size, ctx, events, done := m.orchestrator, m.pairs, m.settings.Size, m.ctx, m.events, m.batchDone
	return func() tea.Msg {
		if done != nil {
			defer close(done)
		}
		if orch == nil {
			return DownloadDoneMsg{Err: errors.New("no orchestrator")}
		}
		stats, err := orch.DownloadBatch(ctx, batch, size)
		if events != nil {
			close(events)
		}
		return DownloadDoneMsg{Stats: stats, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	// The debug log is the only diagnostic sink while the alt screen is up.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.shutdown()
	}
	return err
}
