package cmd

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
	"github.com/adamgarcia4/goLearning/turnsync/transport"
)

var (
	address string
	port    string
)

var brokerCmd = &cobra.Command{
	Use:   "broker",
	Short: "Run the message broker",
	Long: `Run the gRPC broker peers publish their states through.

Examples:
  # Listen on the default address
  turnsync broker

  # Listen on every interface
  turnsync broker --address=0.0.0.0 --port=6000`,
	Run: runBroker,
}

func init() {
	rootCmd.AddCommand(brokerCmd)

	brokerCmd.Flags().StringVarP(&address, "address", "a", "127.0.0.1", "Address to bind the broker to")
	brokerCmd.Flags().StringVarP(&port, "port", "p", "50051", "Port to bind the broker to")
}

func runBroker(cmd *cobra.Command, args []string) {
	setupLogger(true)

	b, err := transport.NewBroker(net.JoinHostPort(address, port))
	if err != nil {
		log.Fatalf("failed to create broker: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("failed to start broker: %v", err)
	}
	logger.Infof("Broker listening on %s", b.Addr())

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if err := b.Stop(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
