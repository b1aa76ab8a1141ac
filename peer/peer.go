package peer

import (
	"context"
	"fmt"
	"sync"

	"github.com/adamgarcia4/goLearning/turnsync/game"
	"github.com/adamgarcia4/goLearning/turnsync/logger"
	"github.com/adamgarcia4/goLearning/turnsync/transport"
)

/*
Peer

A peer plays one player of the match. Run drives it through

	AWAITING_PRESENCE -> PLAYING -> WON | ELIMINATED

with INTERRUPTED reported instead when the run context is cancelled (or an
optional barrier timeout fires) before a terminal phase is reached.

Two goroutines share the roster:
	receiving - one per subscription, owned by the transport. Decodes a
	            payload and calls Roster.RecordIncoming, nothing else.
	main      - the caller of Run. Prunes and reads the roster, publishes.

File Organization:
	peer.go     - Peer, phases, lifecycle and the receive path
	presence.go - presence barrier
	turn.go     - turn loop and turn barrier
	kill.go     - elimination of the local player
	shutdown.go - withdrawal publish and the outcome report
	poll.go     - bounded-interval polling helpers
	manager.go  - runs several peers in one process on a shared hub
*/

// Phase is where a peer is in the match
type Phase int

const (
	PhaseAwaitingPresence Phase = iota
	PhasePlaying
	PhaseWon
	PhaseEliminated
	PhaseInterrupted
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingPresence:
		return "AWAITING_PRESENCE"
	case PhasePlaying:
		return "PLAYING"
	case PhaseWon:
		return "WON"
	case PhaseEliminated:
		return "ELIMINATED"
	case PhaseInterrupted:
		return "INTERRUPTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the match is over for the peer
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseEliminated || p == PhaseInterrupted
}

// Outcome is how the match ended for the local peer
type Outcome struct {
	Phase Phase
	// Killer and Turn are set when Phase is PhaseEliminated. Turn is 0-based.
	Killer game.PeerID
	Turn   int
}

// Status is a point-in-time view of a peer, for display
type Status struct {
	ID       game.PeerID
	Phase    Phase
	Turn     int
	Location game.Location
	Power    int
	Tracked  int
}

// Peer is one player of the match
type Peer struct {
	config *Config
	script *game.Script
	bus    transport.Bus
	roster *game.Roster
	log    logger.Scoped

	mu      sync.RWMutex
	phase   Phase
	current game.PeerState
	started bool
}

// New creates a peer. The bus is owned by the peer from here on and is
// closed when Run returns.
func New(config *Config, script *game.Script, bus transport.Bus) (*Peer, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if script == nil {
		return nil, ErrScriptRequired
	}
	if bus == nil {
		return nil, ErrBusRequired
	}

	return &Peer{
		config:  config,
		script:  script,
		bus:     bus,
		roster:  game.NewRoster(config.PeerIDs(), config.ID),
		log:     logger.For(fmt.Sprintf("player-%d", config.ID)),
		phase:   PhaseAwaitingPresence,
		current: game.InitialState(),
	}, nil
}

// ID returns the local player id
func (p *Peer) ID() game.PeerID {
	return p.config.ID
}

// GetConfig returns the peer configuration
func (p *Peer) GetConfig() *Config {
	return p.config
}

// Roster returns the roster shared by the receive path and the turn loop
func (p *Peer) Roster() *game.Roster {
	return p.roster
}

// Phase returns the current phase
func (p *Peer) Phase() Phase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.phase
}

// Status returns a snapshot of the peer for display
func (p *Peer) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{
		ID:       p.config.ID,
		Phase:    p.phase,
		Turn:     p.current.TurnID,
		Location: p.current.Location,
		Power:    p.current.Power,
		Tracked:  p.roster.Len(),
	}
}

func (p *Peer) setPhase(phase Phase) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}

func (p *Peer) setCurrent(state game.PeerState) {
	p.mu.Lock()
	p.current = state
	p.mu.Unlock()
}

// Run plays the match until the peer wins, is eliminated or ctx is
// cancelled. The withdrawal publish and the report happen in every case and
// the bus is closed before Run returns.
//
// Cancellation is not an error: the outcome is PhaseInterrupted and err is
// nil. err is non-nil for setup failures and barrier timeouts.
func (p *Peer) Run(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return Outcome{}, ErrAlreadyRunning
	}
	p.started = true
	p.mu.Unlock()

	if err := p.subscribe(ctx); err != nil {
		if closeErr := p.bus.Close(); closeErr != nil {
			p.log.Errorf("Error closing transport: %v", closeErr)
		}
		p.setPhase(PhaseInterrupted)
		return Outcome{Phase: PhaseInterrupted}, err
	}

	outcome, err := p.play(ctx)
	p.shutdown(ctx, outcome)
	return outcome, err
}

func (p *Peer) play(ctx context.Context) (Outcome, error) {
	if err := p.awaitPresence(ctx); err != nil {
		return interrupted(ctx, err)
	}
	p.setPhase(PhasePlaying)
	p.log.Printf("All %d players online, starting play", p.config.Peers)

	return p.playTurns(ctx)
}

// interrupted maps a barrier error to the outcome of an aborted run
func interrupted(ctx context.Context, err error) (Outcome, error) {
	if ctx.Err() != nil {
		return Outcome{Phase: PhaseInterrupted}, nil
	}
	return Outcome{Phase: PhaseInterrupted}, err
}

// subscribe listens to every other player's topic. The local topic is not
// subscribed; own states go into the roster directly.
func (p *Peer) subscribe(ctx context.Context) error {
	for _, id := range p.config.PeerIDs() {
		if id == p.config.ID {
			continue
		}
		if err := p.bus.Subscribe(ctx, TopicFor(id), p.receive); err != nil {
			return fmt.Errorf("failed to subscribe to player %d: %w", id, err)
		}
	}
	return nil
}

// receive is the transport handler for every subscribed topic. It runs on the
// transport's goroutine and must stay short: decode, record, and drop the
// subscription of a player that left.
func (p *Peer) receive(_ context.Context, topic string, payload []byte) error {
	from, err := ParseTopic(topic)
	if err != nil {
		p.log.Debugf("Discarding message: %v", err)
		return nil
	}
	state, err := game.DecodeState(payload)
	if err != nil {
		p.log.Debugf("Discarding message from player %d: %v", from, err)
		return nil
	}

	switch result := p.roster.RecordIncoming(from, state); result {
	case game.RecordRemoved:
		p.log.Printf("Player %d left the game", from)
		if err := p.bus.Unsubscribe(topic); err != nil {
			p.log.Warnf("Failed to unsubscribe from %s: %v", topic, err)
		}
	case game.RecordUnknown:
		p.log.Debugf("Ignoring state for turn %d: %v", state.TurnID, fmt.Errorf("player %d: %w", from, game.ErrUnknownPeer))
	default:
		p.log.Debugf("Player %d turn %d: %s", from, state.TurnID, result)
	}
	return nil
}

// publish sends a state on the local topic. Failures are logged, not
// returned: there is no reconnection, a lost transport shows up as a stalled
// barrier.
func (p *Peer) publish(ctx context.Context, state game.PeerState) {
	payload, err := game.EncodeState(state)
	if err != nil {
		p.log.Errorf("Failed to encode state for turn %d: %v", state.TurnID, err)
		return
	}
	if err := p.bus.Publish(ctx, TopicFor(p.config.ID), payload); err != nil {
		p.log.Warnf("Failed to publish state for turn %d: %v", state.TurnID, err)
	}
}
