package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
)

// Environment variables that feed flag defaults. They can also come from a
// .env file in the working directory.
const (
	EnvBroker       = "TURNSYNC_BROKER"
	EnvPollInterval = "TURNSYNC_POLL_INTERVAL"
)

// envFlags maps environment variables to the flag they default
var envFlags = map[string]string{
	EnvBroker:       "broker",
	EnvPollInterval: "interval",
}

var debug bool

var rootCmd = &cobra.Command{
	Use:   "turnsync",
	Short: "Turn-synchronised peer for a scripted multiplayer game",
	Long: `Each player runs one peer. Peers follow a scripted list of moves and agree,
without a central authority, on every player's move for a turn before anyone
advances. A passive player standing next to an attacker is eliminated; the last
player left wins.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error loading .env file: %w", err)
		}
		return applyEnv(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug lines (barrier progress, discarded messages)")
}

// applyEnv sets every flag that has an environment variable and was not given
// on the command line.
func applyEnv(cmd *cobra.Command) error {
	for env, name := range envFlags {
		value, ok := os.LookupEnv(env)
		if !ok || value == "" {
			continue
		}
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", env, value, err)
		}
	}
	return nil
}

// setupLogger initialises the global logger. Interactive mode writes only to
// the log buffer.
func setupLogger(writeToStdout bool) {
	logger.Init("", writeToStdout)
	if err := logger.SetDebug(debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
