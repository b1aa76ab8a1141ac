package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/turnsync/game"
	"github.com/adamgarcia4/goLearning/turnsync/logger"
	"github.com/adamgarcia4/goLearning/turnsync/peer"
)

var useTUI bool

var simulateCmd = &cobra.Command{
	Use:   "simulate SCRIPT...",
	Short: "Play a whole match in one process",
	Long: `Run one peer per move script in this process, connected through an
in-memory bus. Player ids follow argument order.

Keyboard shortcuts (--tui):
  ↑/↓/j/k - Scroll logs
  Q       - Stop the match, then quit

Examples:
  turnsync simulate player-1.txt player-2.txt
  turnsync simulate --tui --interval=200ms p1.txt p2.txt p3.txt`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the match in a terminal UI")
	simulateCmd.Flags().DurationVar(&pollInterval, "interval", peer.DefaultPollInterval, "Barrier poll interval (env "+EnvPollInterval+")")
	simulateCmd.Flags().DurationVar(&presenceTimeout, "presence-timeout", 0, "Give up waiting for players after this long (0 waits forever)")
	simulateCmd.Flags().DurationVar(&turnTimeout, "turn-timeout", 0, "Give up waiting for a turn after this long (0 waits forever)")
	simulateCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", peer.DefaultShutdownTimeout, "Deadline for each final withdrawal publish")
}

func runSimulate(cmd *cobra.Command, args []string) {
	if useTUI {
		runSimulateTUI(args)
		return
	}

	setupLogger(true)

	manager, err := newSimulation(afero.NewOsFs(), args)
	if err != nil {
		log.Fatalf("failed to set up match: %v", err)
	}
	defer manager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := manager.RunAll(ctx)
	fmt.Println(renderResults(manager.GetPeers(), results))
	if err != nil {
		logger.Errorf("Match aborted: %v", err)
		stop()
		_ = manager.Close()
		os.Exit(1)
	}
}

// newSimulation loads every script and adds one peer per script
func newSimulation(fs afero.Fs, paths []string) (*peer.Manager, error) {
	manager := peer.NewManager(peer.Config{
		PollInterval:    pollInterval,
		PresenceTimeout: presenceTimeout,
		TurnTimeout:     turnTimeout,
		ShutdownTimeout: shutdownTimeout,
	})

	for _, path := range paths {
		script, err := game.LoadScript(fs, path)
		if err != nil {
			_ = manager.Close()
			return nil, err
		}
		if _, err := manager.AddPeer(script); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return manager, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(1, 2)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			PaddingTop(1)
)

// phaseStyle colours a phase name
func phaseStyle(phase peer.Phase) lipgloss.Style {
	style := lipgloss.NewStyle().Width(18)
	switch phase {
	case peer.PhaseWon:
		return style.Foreground(lipgloss.Color("42")).Bold(true)
	case peer.PhaseEliminated:
		return style.Foreground(lipgloss.Color("196"))
	case peer.PhaseInterrupted:
		return style.Foreground(lipgloss.Color("214"))
	default:
		return style
	}
}

// renderResults formats the outcome of every peer, one line each
func renderResults(peers []*peer.Peer, results []peer.Result) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Match result"))
	s.WriteString("\n")

	byID := make(map[game.PeerID]*peer.Peer, len(peers))
	for _, p := range peers {
		byID[p.ID()] = p
	}
	for _, r := range results {
		line := "exiting"
		if p, ok := byID[r.ID]; ok {
			line = p.Report(r.Outcome)
		}
		s.WriteString(fmt.Sprintf("  player %-3d %s %s", r.ID, phaseStyle(r.Outcome.Phase).Render(r.Outcome.Phase.String()), line))
		if r.Err != nil {
			s.WriteString("  " + errorStyle.Render(r.Err.Error()))
		}
		s.WriteString("\n")
	}
	return s.String()
}
