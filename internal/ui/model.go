package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/swupd/internal/updater"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// failStyle defines the style for a failure status.
	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// ProgressMsg is a [tea.Msg] containing [updater.Progress] information.
type ProgressMsg struct {
	t    time.Time
	data updater.Progress
}

// OperationMsg is a [tea.Msg] carrying the label of the running operation.
type OperationMsg string

// FinishedMsg is a [tea.Msg] carrying the final status of an update run.
type FinishedMsg struct {
	Status updater.Status
	Err    error
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders  int
	splitWidthWithBorders int

	started   time.Time
	data      updater.Progress
	operation string
	finished  *FinishedMsg

	validateProgress progress.Model
	backupProgress   progress.Model
	updateProgress   progress.Model
	logsViewport     viewport.Model
	logs             []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, cancel context.CancelFunc) TeaModel {
	newBar := func() progress.Model {
		return progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		)
	}

	return TeaModel{
		uiHandler:        uiHandler,
		started:          time.Now(),
		validateProgress: newBar(),
		backupProgress:   newBar(),
		updateProgress:   newBar(),
		logsViewport:     viewport.New(80, 20),
		logs:             make([]string, 0, 100),
		cancel:           cancel,
		ready:            false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	m.uiHandler.Initialized.Store(true)

	return tea.Batch(
		tea.EnterAltScreen,
		updateProgress(m.uiHandler.source),
	)
}

// updateProgress produces a [tea.Cmd] for later scheduling in a
// [tea.Program]. When executed, a [ProgressMsg] with the source's
// [updater.Progress] is returned.
func updateProgress(source progressProvider) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		return ProgressMsg{
			t:    t,
			data: source.Progress(),
		}
	})
}

func percent(c updater.Counter) float64 {
	if c.Total == 0 {
		return 1
	}

	return float64(c.Done) / float64(c.Total)
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 3) - 2

		// Progress bars should match the content width.
		m.validateProgress.Width = m.splitWidthWithBorders
		m.backupProgress.Width = m.splitWidthWithBorders
		m.updateProgress.Width = m.splitWidthWithBorders

		// We want upper panels to take about 40% of the height.
		upperHeight := m.height * 2 / 5
		lowerHeight := m.height - upperHeight

		// Viewport height: lower section minus borders and title.
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = lowerHeight - 3

		m.refreshLogs()

		m.ready = true

	case ProgressMsg:
		m.data = msg.data

		cmds = append(cmds,
			m.validateProgress.SetPercent(percent(m.data.Validate)),
			m.backupProgress.SetPercent(percent(m.data.Backup)),
			m.updateProgress.SetPercent(percent(m.data.Update)),
		)

		// Queue the next update.
		cmds = append(cmds, updateProgress(m.uiHandler.source))

	case OperationMsg:
		m.operation = string(msg)

	case FinishedMsg:
		m.finished = &msg
		m.operation = ""

	case LogMsg:
		if len(m.logs) >= 100 {
			m.logs = m.logs[1:]
		}
		m.logs = append(m.logs, string(msg))

		m.refreshLogs()

	case progress.FrameMsg:
		for _, bar := range []*progress.Model{&m.validateProgress, &m.backupProgress, &m.updateProgress} {
			updated, cmd := bar.Update(msg)
			if progressModel, ok := updated.(progress.Model); ok {
				*bar = progressModel
			}
			cmds = append(cmds, cmd)
		}
	}

	// Handle viewport updates.
	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TeaModel) refreshLogs() {
	if len(m.logs) == 0 {
		return
	}

	logs := lipgloss.NewStyle().
		Width(m.logsViewport.Width).
		Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

	m.logsViewport.SetContent(logs)
	m.logsViewport.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	progressSection := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(m.splitWidthWithBorders).Render(
			m.formatProgressView("Validate", updater.PhaseValidate, m.validateProgress.View(), m.data.Validate)),
		borderStyle.Width(m.splitWidthWithBorders).Render(
			m.formatProgressView("Backup", updater.PhaseBackup, m.backupProgress.View(), m.data.Backup)),
		borderStyle.Width(m.splitWidthWithBorders).Render(
			m.formatProgressView("Update", updater.PhaseUpdate, m.updateProgress.View(), m.data.Update)),
	)

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Update Information"),
				m.formatStatusLine(),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		progressSection,
		logsSection,
		helpSection,
	)
}

func (m TeaModel) formatStatusLine() string {
	elapsed := humanize.RelTime(m.started, time.Now(), "ago", "from now")

	if m.finished != nil {
		line := fmt.Sprintf("Finished: %s (started %s)", m.finished.Status, elapsed)
		if m.finished.Status != updater.StatusOk {
			if m.finished.Err != nil {
				line += ": " + m.finished.Err.Error()
			}

			return failStyle.Width(m.fullWidthWithBorders).Render(line)
		}

		return infoStyle.Width(m.fullWidthWithBorders).Render(line)
	}

	line := fmt.Sprintf("Phase: %s (started %s)", m.data.Phase, elapsed)
	if m.operation != "" {
		line += "\nRunning: " + m.operation
	}

	return infoStyle.Width(m.fullWidthWithBorders).Render(line)
}

// formatProgressView is a helper function for rendering the progress panels.
func (m TeaModel) formatProgressView(title string, phase updater.Phase, progressBar string, c updater.Counter) string {
	var state string

	switch {
	case m.data.Phase == phase:
		state = "running"
	case c.Total > 0 && c.Done == c.Total:
		state = "complete"
	case c.Total == 0:
		state = "nothing to do"
	default:
		state = "waiting"
	}

	details := fmt.Sprintf(
		"Progress: %.2f%% (%d/%d)\nState: %s\n",
		percent(c)*100, //nolint:mnd
		c.Done,
		c.Total,
		state,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render(title),
		"", // Empty line for spacing.
		progressBar,
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)
}
