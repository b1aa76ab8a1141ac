package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
	"github.com/adamgarcia4/goLearning/turnsync/peer"
)

const logLines = 15

type model struct {
	manager   *peer.Manager
	statuses  []peer.Status
	cancel    context.CancelFunc
	results   []peer.Result
	runErr    error
	done      bool
	stopping  bool
	logBuffer *logger.LogBuffer
	logScroll int // for scrolling logs
	width     int
	height    int
}

func initialModel(manager *peer.Manager, cancel context.CancelFunc, logBuffer *logger.LogBuffer) model {
	return model{
		manager:   manager,
		cancel:    cancel,
		logBuffer: logBuffer,
	}
}

type tickMsg struct{}

type statusesMsg struct {
	statuses []peer.Status
}

type matchDoneMsg struct {
	results []peer.Result
	err     error
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func refreshStatuses(manager *peer.Manager) tea.Cmd {
	return func() tea.Msg {
		peers := manager.GetPeers()
		statuses := make([]peer.Status, 0, len(peers))
		for _, p := range peers {
			statuses = append(statuses, p.Status())
		}
		return statusesMsg{statuses: statuses}
	}
}

// runMatch plays the match and reports when every peer has returned
func runMatch(ctx context.Context, manager *peer.Manager) tea.Cmd {
	return func() tea.Msg {
		results, err := manager.RunAll(ctx)
		return matchDoneMsg{results: results, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), refreshStatuses(m.manager))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			// Peers withdraw on cancellation; quit once they all returned
			m.stopping = true
			m.cancel()
			return m, nil

		case "up", "k":
			// Scroll logs up (show older logs)
			maxScroll := len(m.logBuffer.GetAll()) - logLines
			if m.logScroll < maxScroll {
				m.logScroll++
			}
			return m, nil

		case "down", "j":
			// Scroll logs down (show newer logs)
			if m.logScroll > 0 {
				m.logScroll--
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(tick(), refreshStatuses(m.manager))

	case statusesMsg:
		m.statuses = msg.statuses
		return m, nil

	case matchDoneMsg:
		m.done = true
		m.results = msg.results
		m.runErr = msg.err
		if m.stopping {
			return m, tea.Quit
		}
		return m, refreshStatuses(m.manager)
	}

	return m, nil
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("turnsync match"))
	s.WriteString("\n\n")

	if m.runErr != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.runErr)))
		s.WriteString("\n\n")
	}

	if len(m.statuses) == 0 {
		s.WriteString("No players.\n\n")
	} else {
		s.WriteString(fmt.Sprintf("  %-8s %-18s %-6s %-10s %-6s %s\n", "PLAYER", "PHASE", "TURN", "LOCATION", "POWER", "TRACKED"))
		for _, st := range m.statuses {
			turn := "-"
			if st.Turn >= 0 {
				turn = fmt.Sprintf("%d", st.Turn+1)
			}
			s.WriteString(fmt.Sprintf("  %-8d %s %-6s %-10s %-6d %d\n",
				st.ID,
				phaseStyle(st.Phase).Render(st.Phase.String()),
				turn,
				fmt.Sprintf("(%d,%d)", st.Location.X, st.Location.Y),
				st.Power,
				st.Tracked,
			))
		}
		s.WriteString("\n")
	}

	s.WriteString(m.renderLogs())
	s.WriteString("\n\n")

	switch {
	case m.done:
		s.WriteString(helpStyle.Render("Match over | ↑/↓/j/k to scroll logs | Q to quit"))
	case m.stopping:
		s.WriteString(helpStyle.Render("Stopping players..."))
	default:
		s.WriteString(helpStyle.Render("↑/↓/j/k to scroll logs | Q to stop the match"))
	}

	return s.String()
}

// renderLogs shows the newest log entries first, shifted back by logScroll
func (m model) renderLogs() string {
	entries := m.logBuffer.GetAll()

	var lines []string
	if len(entries) == 0 {
		lines = []string{"     | (no logs yet)"}
	} else {
		end := len(entries) - m.logScroll
		if end < 0 {
			end = 0
		}
		start := end - logLines
		if start < 0 {
			start = 0
		}
		for i := end - 1; i >= start; i-- {
			// Most recent entry is line 0
			lineNumber := len(entries) - 1 - i
			lines = append(lines, fmt.Sprintf("%4d | %s", lineNumber, logger.FormatLogEntry(entries[i])))
		}
	}

	boxWidth := 100
	if m.width > 0 {
		boxWidth = m.width - 4 // Leave some margin
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Height(logLines - 2).
		Width(boxWidth)

	return logStyle.Render("Logs:\n" + strings.Join(lines, "\n"))
}

func runSimulateTUI(paths []string) {
	// Initialize logger for interactive mode (no stdout, only log buffer)
	logBuffer := logger.GetGlobalLogBuffer()
	setupLogger(false)
	if err := logger.AddOutput(logger.NewLogBufferWriter(logBuffer)); err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		return
	}

	manager, err := newSimulation(afero.NewOsFs(), paths)
	if err != nil {
		fmt.Printf("Error setting up match: %v\n", err)
		return
	}
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(initialModel(manager, cancel, logBuffer))
	go func() {
		msg := runMatch(ctx, manager)()
		p.Send(msg)
	}()

	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running interactive mode: %v\n", err)
		return
	}
	if m, ok := final.(model); ok && m.done {
		fmt.Println(renderResults(manager.GetPeers(), m.results))
	}
}
