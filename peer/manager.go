package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/adamgarcia4/goLearning/turnsync/game"
	"github.com/adamgarcia4/goLearning/turnsync/transport"
)

// Result is the outcome of one peer of a simulation
type Result struct {
	ID      game.PeerID
	Outcome Outcome
	Err     error
}

// Manager runs several peers in one process, all connected to one in-memory hub
type Manager struct {
	hub      *transport.Hub
	template Config
	peers    []*Peer // maintain order with slice
	mu       sync.RWMutex
	nextID   int // ids are handed out in AddPeer order, starting at 1
	running  bool
}

// NewManager creates a manager. template supplies the timing settings for
// every peer; ID and Peers are filled in by AddPeer.
func NewManager(template Config) *Manager {
	return &Manager{
		hub:      transport.NewHub(),
		template: template,
		peers:    make([]*Peer, 0),
		nextID:   1,
	}
}

// AddPeer creates the next player from its script
func (m *Manager) AddPeer(script *game.Script) (*Peer, error) {
	if script == nil {
		return nil, ErrScriptRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil, ErrAlreadyRunning
	}

	config := m.template
	config.ID = game.PeerID(m.nextID)
	config.Peers = script.Peers()

	p, err := New(&config, script, m.hub.Connect())
	if err != nil {
		return nil, fmt.Errorf("failed to create player %d: %w", config.ID, err)
	}
	m.nextID++
	m.peers = append(m.peers, p)
	return p, nil
}

// GetPeers returns a list of all peers (maintains order)
func (m *Manager) GetPeers() []*Peer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	peers := make([]*Peer, len(m.peers))
	copy(peers, m.peers)
	return peers
}

// RunAll runs every peer concurrently and waits for all of them. Every
// script must name the number of peers that were added.
func (m *Manager) RunAll(ctx context.Context) ([]Result, error) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	peers := make([]*Peer, len(m.peers))
	copy(peers, m.peers)
	for _, p := range peers {
		if p.config.Peers != len(peers) {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: player %d expects %d players, %d were added",
				ErrPeerCountMismatch, p.config.ID, p.config.Peers, len(peers))
		}
	}
	m.running = true
	m.mu.Unlock()

	results := make([]Result, len(peers))
	var wg sync.WaitGroup
	for i, p := range peers {
		wg.Add(1)
		go func(i int, p *Peer) {
			defer wg.Done()
			outcome, err := p.Run(ctx)
			results[i] = Result{ID: p.ID(), Outcome: outcome, Err: err}
		}(i, p)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("player %d: %w", r.ID, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// Close shuts the shared hub down
func (m *Manager) Close() error {
	return m.hub.Close()
}
