package peer

import "errors"

var (
	ErrPeerIDRequired      = errors.New("peer ID must be at least 1")
	ErrInvalidPeerCount    = errors.New("peer count must be at least 1")
	ErrPeerIDOutOfRange    = errors.New("peer ID is larger than the peer count")
	ErrInvalidPollInterval = errors.New("poll interval must be greater than 0")
	ErrInvalidTimeout      = errors.New("timeouts must not be negative and the shutdown timeout must be greater than 0")
	ErrScriptRequired      = errors.New("move script is required")
	ErrBusRequired         = errors.New("transport bus is required")
	ErrAlreadyRunning      = errors.New("peer has already been run")
	ErrPeerCountMismatch   = errors.New("scripts disagree on the number of players")
	ErrInvalidTopic        = errors.New("topic is not a player topic")

	ErrPresenceTimeout = errors.New("timed out waiting for every player to come online")
	ErrTurnTimeout     = errors.New("timed out waiting for every player to report the turn")
)
