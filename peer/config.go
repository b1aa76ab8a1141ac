package peer

import (
	"time"

	"github.com/adamgarcia4/goLearning/turnsync/game"
)

// Default configuration constants
const (
	DefaultBrokerAddress   = "127.0.0.1:50051"
	DefaultPollInterval    = 1 * time.Second
	DefaultShutdownTimeout = 2 * time.Second
)

// Config holds the configuration for a peer
type Config struct {
	// Identification
	ID    game.PeerID
	Peers int // total number of players in the match, self included

	// Barrier polling. One interval is the protocol's time unit: the
	// presence loop, the turn barrier and the post-turn grace sleep all use it.
	PollInterval time.Duration

	// Optional bounds on the barriers; zero waits forever
	PresenceTimeout time.Duration
	TurnTimeout     time.Duration

	// Deadline for the final withdrawal publish
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig(id game.PeerID, peers int) *Config {
	return &Config{
		ID:              id,
		Peers:           peers,
		PollInterval:    DefaultPollInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.ID < 1 {
		return ErrPeerIDRequired
	}
	if c.Peers < 1 {
		return ErrInvalidPeerCount
	}
	if int(c.ID) > c.Peers {
		return ErrPeerIDOutOfRange
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.PresenceTimeout < 0 || c.TurnTimeout < 0 || c.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// PeerIDs returns the ids of every player in the match, 1..Peers
func (c *Config) PeerIDs() []game.PeerID {
	ids := make([]game.PeerID, 0, c.Peers)
	for i := 1; i <= c.Peers; i++ {
		ids = append(ids, game.PeerID(i))
	}
	return ids
}
