package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/turnsync/game"
	"github.com/adamgarcia4/goLearning/turnsync/logger"
	"github.com/adamgarcia4/goLearning/turnsync/peer"
	"github.com/adamgarcia4/goLearning/turnsync/transport"
)

var (
	playerID        int
	brokerAddr      string
	scriptPath      string
	pollInterval    time.Duration
	presenceTimeout time.Duration
	turnTimeout     time.Duration
	shutdownTimeout time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one player of a match",
	Long: `Connect to a broker and play one player of a match.

The move script is a text file. The first line is the number of players in the
match; every following line is one turn's move: "x y power". A power of 0 is a
passive move, anything else an attack.

Examples:
  # Start the broker, then one peer per player
  turnsync broker
  turnsync play -n 1
  turnsync play -n 2 --script moves/p2.txt

  # Give up if a turn doesn't complete within 30s
  turnsync play -n 1 --turn-timeout=30s`,
	Run: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&playerID, "id", "n", 0, "Player id, 1..N (required)")
	playCmd.Flags().StringVarP(&brokerAddr, "broker", "b", peer.DefaultBrokerAddress, "Broker address (env "+EnvBroker+")")
	playCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Move script (default player-<id>.txt)")

	playCmd.Flags().DurationVar(&pollInterval, "interval", peer.DefaultPollInterval, "Barrier poll interval (env "+EnvPollInterval+")")
	playCmd.Flags().DurationVar(&presenceTimeout, "presence-timeout", 0, "Give up waiting for players after this long (0 waits forever)")
	playCmd.Flags().DurationVar(&turnTimeout, "turn-timeout", 0, "Give up waiting for a turn after this long (0 waits forever)")
	playCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", peer.DefaultShutdownTimeout, "Deadline for the final withdrawal publish")

	_ = playCmd.MarkFlagRequired("id")
}

func runPlay(cmd *cobra.Command, args []string) {
	// Initialize logger for non-interactive mode (write to stdout)
	setupLogger(true)

	if scriptPath == "" {
		scriptPath = fmt.Sprintf("player-%d.txt", playerID)
	}
	script, err := game.LoadScript(afero.NewOsFs(), scriptPath)
	if err != nil {
		log.Fatalf("failed to load move script: %v", err)
	}

	// Create peer configuration with defaults, override with CLI flags
	config := peer.DefaultConfig(game.PeerID(playerID), script.Peers())
	config.PollInterval = pollInterval
	config.PresenceTimeout = presenceTimeout
	config.TurnTimeout = turnTimeout
	config.ShutdownTimeout = shutdownTimeout
	if err := config.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	client, err := transport.Dial(brokerAddr)
	if err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}

	p, err := peer.New(config, script, client)
	if err != nil {
		_ = client.Close()
		log.Fatalf("failed to create peer: %v", err)
	}

	// Interrupt cancels the run; the peer still withdraws before exiting
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Player %d of %d, broker %s, script %s", playerID, script.Peers(), brokerAddr, scriptPath)
	if _, err := p.Run(ctx); err != nil {
		logger.Errorf("Match aborted: %v", err)
		stop()
		os.Exit(1)
	}
}
